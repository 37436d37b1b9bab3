package iso8583

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/pkg/errors"
)

// TLV is one tag-length-value entry of a nested field. The length is
// implied by Value.
type TLV struct {
	Tag   []byte
	Value []byte
}

// PackTLV appends the wire form of tlvs in the given dialect to dst.
func PackTLV(dst []byte, tlvType TLVType, tlvs []TLV) ([]byte, error) {
	switch tlvType {
	case TLVStandard:
		return packStandardTLV(dst, tlvs)
	case TLVEMV:
		return packEMVTLV(dst, tlvs)
	}
	return nil, errors.Wrapf(ErrInvalidTLV, "unsupported TLV type %d", int(tlvType))
}

// ParseTLV parses data in the given dialect. Returned tags and values are
// copies and do not alias data.
func ParseTLV(tlvType TLVType, data []byte) ([]TLV, error) {
	switch tlvType {
	case TLVStandard:
		return parseStandardTLV(data)
	case TLVEMV:
		return parseEMVTLV(data)
	}
	return nil, errors.Wrapf(ErrInvalidTLV, "unsupported TLV type %d", int(tlvType))
}

// packedTLVSize returns the number of bytes PackTLV would write.
func packedTLVSize(tlvType TLVType, tlvs []TLV) (int, error) {
	b, err := PackTLV(nil, tlvType, tlvs)
	return len(b), err
}

// packStandardTLV writes T=1 byte, L=1 byte, V=variable.
func packStandardTLV(dst []byte, tlvs []TLV) ([]byte, error) {
	for _, t := range tlvs {
		if len(t.Tag) != 1 {
			return nil, errors.Wrapf(ErrInvalidTLV, "standard TLV tag must be 1 byte, got %d", len(t.Tag))
		}
		if len(t.Value) > 0xFF {
			return nil, errors.Wrapf(ErrInvalidTLV, "standard TLV value too long (%d > 255)", len(t.Value))
		}
		dst = append(dst, t.Tag[0], byte(len(t.Value)))
		dst = append(dst, t.Value...)
	}
	return dst, nil
}

func parseStandardTLV(data []byte) ([]TLV, error) {
	var out []TLV
	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			return nil, errors.Wrapf(ErrInvalidTLV, "truncated header at offset %d", offset)
		}
		tag := data[offset : offset+1]
		length := int(data[offset+1])
		offset += 2

		if offset+length > len(data) {
			return nil, errors.Wrapf(ErrInvalidTLV, "value of tag %X needs %d bytes, have %d", tag, length, len(data)-offset)
		}
		out = append(out, TLV{Tag: bytes.Clone(tag), Value: bytes.Clone(data[offset : offset+length])})
		offset += length
	}
	return out, nil
}

// packEMVTLV writes BER-TLV: tags as given, short-form lengths below 0x80
// and long-form 0x8N lengths above.
func packEMVTLV(dst []byte, tlvs []TLV) ([]byte, error) {
	for _, t := range tlvs {
		if err := checkEMVTag(t.Tag); err != nil {
			return nil, err
		}
		dst = append(dst, t.Tag...)

		n := len(t.Value)
		switch {
		case n < 0x80:
			dst = append(dst, byte(n))
		case n <= 0xFF:
			dst = append(dst, 0x81, byte(n))
		case n <= 0xFFFF:
			dst = append(dst, 0x82, byte(n>>8), byte(n))
		default:
			dst = append(dst, 0x83, byte(n>>16), byte(n>>8), byte(n))
		}
		dst = append(dst, t.Value...)
	}
	return dst, nil
}

// checkEMVTag verifies that tag is exactly one BER tag: if the low five bits
// of the first byte are all set, subsequent bytes continue while their MSB is 1.
func checkEMVTag(tag []byte) error {
	if len(tag) == 0 {
		return errors.Wrap(ErrInvalidTLV, "empty tag")
	}
	end := 1
	if tag[0]&0x1F == 0x1F {
		for end < len(tag) && tag[end]&0x80 != 0 {
			end++
		}
		end++
	}
	if end != len(tag) {
		return errors.Wrapf(ErrInvalidTLV, "malformed EMV tag %X", tag)
	}
	return nil
}

func parseEMVTLV(data []byte) ([]TLV, error) {
	var out []TLV
	offset := 0
	for offset < len(data) {
		tagStart := offset
		first := data[offset]
		offset++
		if first&0x1F == 0x1F {
			for offset < len(data) && data[offset]&0x80 != 0 {
				offset++
			}
			if offset >= len(data) {
				return nil, errors.Wrapf(ErrInvalidTLV, "truncated tag at offset %d", tagStart)
			}
			offset++
		}
		tag := data[tagStart:offset]

		if offset >= len(data) {
			return nil, errors.Wrapf(ErrInvalidTLV, "missing length for tag %X", tag)
		}
		lengthByte := data[offset]
		offset++

		length := int(lengthByte)
		if lengthByte&0x80 != 0 {
			numBytes := int(lengthByte & 0x7F)
			if numBytes == 0 || numBytes > 3 {
				return nil, errors.Wrapf(ErrInvalidTLV, "unsupported length form %#x for tag %X", lengthByte, tag)
			}
			if offset+numBytes > len(data) {
				return nil, errors.Wrapf(ErrInvalidTLV, "truncated length for tag %X", tag)
			}
			length = 0
			for i := 0; i < numBytes; i++ {
				length = length<<8 | int(data[offset])
				offset++
			}
		}

		if offset+length > len(data) {
			return nil, errors.Wrapf(ErrInvalidTLV, "value of tag %X needs %d bytes, have %d", tag, length, len(data)-offset)
		}
		out = append(out, TLV{Tag: bytes.Clone(tag), Value: bytes.Clone(data[offset : offset+length])})
		offset += length
	}
	return out, nil
}

// FindTLV returns the first entry with the given tag.
func FindTLV(tlvs []TLV, tag []byte) (TLV, bool) {
	for _, t := range tlvs {
		if bytes.Equal(t.Tag, tag) {
			return t, true
		}
	}
	return TLV{}, false
}

// TLVToMap keys entries by their upper-case hex tag, e.g. "9F02".
// Later duplicates overwrite earlier ones.
func TLVToMap(tlvs []TLV) map[string][]byte {
	out := make(map[string][]byte, len(tlvs))
	for _, t := range tlvs {
		out[Binary(t.Tag).String()] = t.Value
	}
	return out
}

// MapToTLV is the inverse of TLVToMap. Entries are ordered by tag so the
// packed form is deterministic.
func MapToTLV(m map[string][]byte) ([]TLV, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TLV, 0, len(m))
	for _, k := range keys {
		tag, err := hex.DecodeString(k)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidTLV, "tag %q is not hex", k)
		}
		out = append(out, TLV{Tag: tag, Value: m[k]})
	}
	return out, nil
}
