package iso8583

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Message is a single ISO8583 message: an MTI, a bitmap, and the values of
// the fields the bitmap marks present. A Message is owned by one goroutine
// at a time; concurrent mutation is not supported.
type Message struct {
	mti      string
	registry *Registry
	bitmap   Bitmap
	fields   [MaxFieldNumber + 1]Value
}

// NewMessage creates an empty message bound to the default registry unless
// WithRegistry says otherwise.
func NewMessage(opts ...MessageOption) (*Message, error) {
	m := &Message{registry: DefaultRegistry()}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the schema table the message validates against.
func (m *Message) Registry() *Registry {
	return m.registry
}

// MTI returns the Message Type Indicator, or "" if it was never set.
func (m *Message) MTI() string {
	return m.mti
}

// SetMTI sets the 4-digit Message Type Indicator.
func (m *Message) SetMTI(mti string) error {
	if len(mti) != MTILength || !isDigits(mti) {
		return errors.Wrapf(ErrInvalidMTI, "%q", mti)
	}
	m.mti = mti
	return nil
}

// Set validates v against the schema of fieldNum, stores the normalized
// value and marks the field present. On failure the message is unchanged.
func (m *Message) Set(fieldNum int, v Value) error {
	s, err := m.schemaForSet(fieldNum)
	if err != nil {
		return err
	}
	nv, err := normalize(s, v, true)
	if err != nil {
		return err
	}
	m.store(fieldNum, nv)
	return nil
}

func (m *Message) schemaForSet(fieldNum int) (Schema, error) {
	if fieldNum < 2 || fieldNum > MaxFieldNumber {
		return Schema{}, &FieldError{Field: fieldNum, Err: ErrInvalidField, Detail: "settable fields are 2-128"}
	}
	s, err := m.registry.Get(fieldNum)
	if err != nil {
		return Schema{}, &FieldError{Field: fieldNum, Err: ErrSchemaNotFound}
	}
	return s, nil
}

// store assumes fieldNum is in 2-128, so Mark cannot fail.
func (m *Message) store(fieldNum int, v Value) {
	m.fields[fieldNum] = v
	_ = m.bitmap.Mark(fieldNum)
}

// SetNumeric sets a numeric field.
func (m *Message) SetNumeric(fieldNum int, d decimal.Decimal) error {
	return m.Set(fieldNum, Numeric{Decimal: d})
}

// SetInt sets a numeric field from an integer.
func (m *Message) SetInt(fieldNum int, v int64) error {
	return m.Set(fieldNum, NumericFromInt(v))
}

// SetString sets an alpha field, or a numeric field from its decimal text.
func (m *Message) SetString(fieldNum int, v string) error {
	s, err := m.schemaForSet(fieldNum)
	if err != nil {
		return err
	}
	if s.Type != TypeNumeric {
		return m.Set(fieldNum, Text(v))
	}
	n, err := NumericFromString(v)
	if err != nil {
		return &FieldError{Field: fieldNum, Err: ErrTypeMismatch, Detail: "not a decimal number: " + strconv.Quote(v)}
	}
	return m.Set(fieldNum, n)
}

// SetBytes sets a binary field. The slice is copied.
func (m *Message) SetBytes(fieldNum int, v []byte) error {
	return m.Set(fieldNum, Binary(bytes.Clone(v)))
}

// SetTLV sets a nested field.
func (m *Message) SetTLV(fieldNum int, tlvs ...TLV) error {
	return m.Set(fieldNum, cloneValue(Nested(tlvs)))
}

// SetTime formats t with the field's date pattern and sets the result.
func (m *Message) SetTime(fieldNum int, t time.Time) error {
	s, err := m.schemaForSet(fieldNum)
	if err != nil {
		return err
	}
	if s.DatePattern == "" {
		return &FieldError{Field: fieldNum, Err: ErrDateFormat, Detail: "field has no date pattern"}
	}
	text, err := FormatTime(s.DatePattern, t)
	if err != nil {
		return err
	}
	return m.Set(fieldNum, Text(text))
}

// Get returns the stored value of fieldNum.
func (m *Message) Get(fieldNum int) (Value, error) {
	if fieldNum < 2 || fieldNum > MaxFieldNumber || m.fields[fieldNum] == nil {
		return nil, &FieldError{Field: fieldNum, Err: ErrFieldNotPresent}
	}
	return m.fields[fieldNum], nil
}

// String returns the content of an alpha field, including fixed-width padding.
func (m *Message) String(fieldNum int) (string, error) {
	v, err := m.Get(fieldNum)
	if err != nil {
		return "", err
	}
	t, ok := v.(Text)
	if !ok {
		return "", mismatch(fieldNum, TypeAlpha, v)
	}
	return string(t), nil
}

// Decimal returns the content of a numeric field.
func (m *Message) Decimal(fieldNum int) (decimal.Decimal, error) {
	v, err := m.Get(fieldNum)
	if err != nil {
		return decimal.Decimal{}, err
	}
	n, ok := v.(Numeric)
	if !ok {
		return decimal.Decimal{}, mismatch(fieldNum, TypeNumeric, v)
	}
	return n.Decimal, nil
}

// Bytes returns a copy of the content of a binary field.
func (m *Message) Bytes(fieldNum int) ([]byte, error) {
	v, err := m.Get(fieldNum)
	if err != nil {
		return nil, err
	}
	b, ok := v.(Binary)
	if !ok {
		return nil, mismatch(fieldNum, TypeBinary, v)
	}
	return bytes.Clone(b), nil
}

// TLVs returns a copy of the entries of a nested field.
func (m *Message) TLVs(fieldNum int) ([]TLV, error) {
	v, err := m.Get(fieldNum)
	if err != nil {
		return nil, err
	}
	n, ok := v.(Nested)
	if !ok {
		return nil, mismatch(fieldNum, TypeNested, v)
	}
	return cloneValue(n).(Nested), nil
}

// Time parses a date-carrying field with its date pattern.
func (m *Message) Time(fieldNum int) (time.Time, error) {
	text, err := m.String(fieldNum)
	if err != nil {
		return time.Time{}, err
	}
	s, err := m.registry.Get(fieldNum)
	if err != nil {
		return time.Time{}, &FieldError{Field: fieldNum, Err: ErrSchemaNotFound}
	}
	if s.DatePattern == "" {
		return time.Time{}, &FieldError{Field: fieldNum, Err: ErrDateFormat, Detail: "field has no date pattern"}
	}
	return ParseTime(s.DatePattern, text)
}

func mismatch(fieldNum int, want DataType, got Value) error {
	return &FieldError{
		Field:  fieldNum,
		Err:    ErrTypeMismatch,
		Detail: "field holds " + got.DataType().String() + ", not " + want.String(),
	}
}

// Has reports whether fieldNum is present. Has(1) reports whether the
// secondary bitmap is in use.
func (m *Message) Has(fieldNum int) bool {
	return m.bitmap.Contains(fieldNum)
}

// Bitmap returns a copy of the presence bitmap.
func (m *Message) Bitmap() Bitmap {
	return m.bitmap
}

// Fields returns the present field numbers in ascending order.
func (m *Message) Fields() []int {
	return m.bitmap.Present()
}

// FieldEntry is one present field as yielded by SelectPresent.
type FieldEntry struct {
	Number int
	Schema Schema
	Value  Value
}

// Present returns every present field with its schema, ascending.
func (m *Message) Present() ([]FieldEntry, error) {
	return SelectPresent(m.bitmap, m.fields[:], m.registry)
}

// SelectPresent walks bitmap in ascending order and pairs each present
// field with its schema and its value from fields, which is indexed by
// field number. Field 1 is never yielded.
func SelectPresent(bitmap Bitmap, fields []Value, registry *Registry) ([]FieldEntry, error) {
	present := bitmap.Present()
	out := make([]FieldEntry, 0, len(present))
	for _, n := range present {
		s, err := registry.Get(n)
		if err != nil {
			return nil, &FieldError{Field: n, Err: ErrSchemaNotFound}
		}
		if n >= len(fields) || fields[n] == nil {
			return nil, &FieldError{Field: n, Err: ErrFieldNotPresent, Detail: "bitmap marks a field with no value"}
		}
		out = append(out, FieldEntry{Number: n, Schema: s, Value: fields[n]})
	}
	return out, nil
}

// Clone returns a deep copy of the message sharing only the registry.
func (m *Message) Clone() *Message {
	c := &Message{mti: m.mti, registry: m.registry, bitmap: m.bitmap}
	for n, v := range m.fields {
		if v != nil {
			c.fields[n] = cloneValue(v)
		}
	}
	return c
}

// CreateResponse clones a request, advances its MTI to the matching
// response (0100 -> 0110, 0200 -> 0210, 0800 -> 0810) and sets the
// response code in field 39.
func (m *Message) CreateResponse(responseCode string) (*Message, error) {
	if len(m.mti) != MTILength || (m.mti[2]-'0')%2 != 0 {
		return nil, errors.Wrapf(ErrInvalidMTI, "cannot create response from MTI %q", m.mti)
	}

	res := m.Clone()
	mti := []byte(m.mti)
	mti[2]++
	res.mti = string(mti)

	if err := res.SetString(39, responseCode); err != nil {
		return nil, err
	}
	return res, nil
}

// maskedFields hold cardholder secrets that must not reach the logs.
var maskedFields = map[int]bool{2: true, 35: true, 36: true, 45: true, 52: true}

// LogValue implements the slog.LogValuer interface for structured logging.
func (m *Message) LogValue() slog.Value {
	present := m.bitmap.Present()

	fieldArgs := make([]any, 0, len(present))
	for _, n := range present {
		v := m.fields[n]
		if v == nil {
			continue
		}
		fieldArgs = append(fieldArgs, slog.String(strconv.Itoa(n), logString(n, v)))
	}

	return slog.GroupValue(
		slog.String("MTI", m.mti),
		slog.Group("Fields", fieldArgs...),
	)
}

func logString(fieldNum int, v Value) string {
	s := v.String()
	if !maskedFields[fieldNum] {
		return s
	}
	if fieldNum == 2 && len(s) > 10 {
		return s[:6] + strings.Repeat("*", len(s)-10) + s[len(s)-4:]
	}
	return strings.Repeat("*", len(s))
}
