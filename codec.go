package iso8583

import (
	"bytes"
	"log/slog"

	"github.com/pkg/errors"
)

// Codec writes messages to the wire layout
//
//	[MTI 4][primary bitmap 8][secondary bitmap 8 if bit 1][fields 2..128]
//
// and parses them back. A Codec is immutable and safe for concurrent use.
type Codec struct {
	registry       *Registry
	bitmapEncoding BitmapEncoding
	logger         *slog.Logger
}

var defaultCodec = NewCodec()

// NewCodec creates a codec over the default registry with binary bitmaps.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{bitmapEncoding: BitmapBinary}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	return c
}

// Encode serializes m with the default codec.
func Encode(m *Message) ([]byte, error) {
	return defaultCodec.Encode(m)
}

// Decode parses data with the default codec.
func Decode(data []byte) (*Message, error) {
	return defaultCodec.Decode(data)
}

// Registry returns the schema table the codec reads and writes with.
func (c *Codec) Registry() *Registry {
	return c.registry
}

func (c *Codec) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Encode serializes m. The returned slice is owned by the caller.
func (c *Codec) Encode(m *Message) ([]byte, error) {
	buf, err := c.Append(getBuffer(), m)
	if err != nil {
		putBuffer(buf)
		return nil, err
	}
	out := bytes.Clone(buf)
	putBuffer(buf)
	return out, nil
}

// Append serializes m onto dst and returns the extended slice. On failure
// dst is returned unchanged in length alongside an *EncodingError.
func (c *Codec) Append(dst []byte, m *Message) ([]byte, error) {
	start := len(dst)
	fail := func(field int, err error) ([]byte, error) {
		return dst[:start], &EncodingError{Field: field, Err: err}
	}

	if len(m.mti) != MTILength || !isDigits(m.mti) {
		return fail(0, errors.Wrapf(ErrInvalidMTI, "%q", m.mti))
	}

	entries, err := SelectPresent(m.bitmap, m.fields[:], c.registry)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return fail(fe.Field, err)
		}
		return fail(0, err)
	}

	dst = append(dst, m.mti...)
	dst = m.bitmap.AppendWire(dst, c.bitmapEncoding)

	for _, e := range entries {
		v, err := normalize(e.Schema, e.Value, false)
		if err != nil {
			return fail(e.Number, err)
		}
		if dst, err = appendField(dst, e.Schema, v); err != nil {
			return fail(e.Number, err)
		}
	}
	return dst, nil
}

// appendField writes one normalized value, with its length prefix when the
// field is variable.
func appendField(dst []byte, s Schema, v Value) ([]byte, error) {
	if s.LengthType == Fixed {
		return appendContent(dst, s, v)
	}

	prefixAt := len(dst)
	dst = appendPadded(dst, 0, s.PrefixDigits)
	dst, err := appendContent(dst, s, v)
	if err != nil {
		return dst, err
	}

	n := len(dst) - prefixAt - s.PrefixDigits
	if limit := s.prefixCapacity(); n > limit {
		return dst, &FieldError{
			Field:    s.Number,
			Err:      ErrLengthExceeded,
			Expected: limit,
			Actual:   n,
			Detail:   "content does not fit a " + s.prefixLabel() + " length prefix",
		}
	}
	appendPadded(dst[:prefixAt], n, s.PrefixDigits)
	return dst, nil
}

func appendContent(dst []byte, s Schema, v Value) ([]byte, error) {
	switch val := v.(type) {
	case Numeric:
		if s.Signed {
			if val.Decimal.Sign() < 0 {
				dst = append(dst, 'D')
			} else {
				dst = append(dst, 'C')
			}
		}
		digits := val.digits()
		if s.LengthType == Fixed {
			for i := len(digits); i < s.Length; i++ {
				dst = append(dst, '0')
			}
		}
		return append(dst, digits...), nil
	case Text:
		return append(dst, val...), nil
	case Binary:
		return append(dst, val...), nil
	case Nested:
		out, err := PackTLV(dst, s.TLV, val)
		if err != nil {
			return dst, &FieldError{Field: s.Number, Err: err}
		}
		return out, nil
	}
	return dst, &FieldError{Field: s.Number, Err: ErrTypeMismatch}
}

// Decode parses a complete message. Any failure returns a nil Message and
// a *DecodingError; bytes left after the last field are an error.
func (c *Codec) Decode(data []byte) (*Message, error) {
	m, err := c.decode(data)
	if err != nil {
		var de *DecodingError
		if errors.As(err, &de) {
			c.log().Debug("iso8583 decode failed", "field", de.Field, "offset", de.Offset, "error", de.Err)
		}
		return nil, err
	}
	return m, nil
}

func (c *Codec) decode(data []byte) (*Message, error) {
	if len(data) < MTILength {
		return nil, &DecodingError{Field: 0, Err: &FieldError{Err: ErrTruncatedInput, Expected: MTILength, Actual: len(data)}}
	}
	mti := string(data[:MTILength])
	if !isDigits(mti) {
		return nil, &DecodingError{Field: 0, Err: errors.Wrapf(ErrInvalidMTI, "%q", mti)}
	}

	bm, n, err := ParseBitmap(data[MTILength:], c.bitmapEncoding)
	if err != nil {
		return nil, &DecodingError{Field: 1, Offset: MTILength, Err: err}
	}

	m := &Message{mti: mti, registry: c.registry, bitmap: bm}
	offset := MTILength + n
	last := 1

	for _, fieldNum := range bm.Present() {
		s, err := c.registry.Get(fieldNum)
		if err != nil {
			return nil, &DecodingError{Field: fieldNum, Offset: offset, Err: err}
		}

		v, next, err := readField(s, data, offset)
		if err != nil {
			return nil, &DecodingError{Field: fieldNum, Offset: offset, Err: err}
		}
		nv, err := normalize(s, v, false)
		if err != nil {
			return nil, &DecodingError{Field: fieldNum, Offset: offset, Err: err}
		}

		m.fields[fieldNum] = nv
		offset = next
		last = fieldNum
	}

	if offset != len(data) {
		return nil, &DecodingError{
			Field:  last,
			Offset: offset,
			Err:    errors.Wrapf(ErrTrailingData, "%d bytes", len(data)-offset),
		}
	}
	return m, nil
}

// readField slices the content of one field starting at offset and builds
// its value. It returns the offset just past the field.
func readField(s Schema, data []byte, offset int) (Value, int, error) {
	size := s.width()
	if s.LengthType == Variable {
		end := offset + s.PrefixDigits
		if end > len(data) {
			return nil, offset, &FieldError{Field: s.Number, Err: ErrTruncatedInput, Expected: s.PrefixDigits, Actual: len(data) - offset, Detail: "length prefix"}
		}
		n, ok := parseDigits(data[offset:end])
		if !ok {
			return nil, offset, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: "length prefix " + string(data[offset:end]) + " is not decimal"}
		}
		size = n
		offset = end
	}

	if offset+size > len(data) {
		return nil, offset, &FieldError{Field: s.Number, Err: ErrTruncatedInput, Expected: size, Actual: len(data) - offset}
	}
	raw := data[offset : offset+size]
	next := offset + size

	switch s.Type {
	case TypeNumeric:
		v, err := parseNumeric(s, raw)
		return v, next, err
	case TypeAlpha:
		return Text(raw), next, nil
	case TypeBinary:
		return Binary(bytes.Clone(raw)), next, nil
	case TypeNested:
		tlvs, err := ParseTLV(s.TLV, raw)
		if err != nil {
			return nil, next, &FieldError{Field: s.Number, Err: err}
		}
		return Nested(tlvs), next, nil
	}
	return nil, next, &FieldError{Field: s.Number, Err: ErrTypeMismatch}
}

func parseNumeric(s Schema, raw []byte) (Value, error) {
	negative := false
	if s.Signed {
		if len(raw) == 0 {
			return nil, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: "missing sign"}
		}
		switch raw[0] {
		case 'C':
		case 'D':
			negative = true
		default:
			return nil, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: "sign must be C or D, got " + string(raw[:1])}
		}
		raw = raw[1:]
	}

	if len(raw) == 0 || !isDigits(string(raw)) {
		return nil, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: "numeric content " + string(raw) + " is not decimal"}
	}
	n, err := NumericFromString(string(raw))
	if err != nil {
		return nil, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: err.Error()}
	}
	if negative {
		n.Decimal = n.Decimal.Neg()
	}
	return n, nil
}
