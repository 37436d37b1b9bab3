package iso8583

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Value is the content of one field. It is one of Numeric, Text, Binary or
// Nested, and its DataType must match the field's schema.
type Value interface {
	DataType() DataType
	Equal(other Value) bool
	String() string

	isValue()
}

// Numeric holds an integral decimal amount or code.
type Numeric struct {
	Decimal decimal.Decimal
}

// NumericFromInt returns a Numeric holding v.
func NumericFromInt(v int64) Numeric {
	return Numeric{Decimal: decimal.NewFromInt(v)}
}

// NumericFromString parses a decimal string such as "4000001234567890" or "-125".
func NumericFromString(s string) (Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Numeric{}, err
	}
	return Numeric{Decimal: d}, nil
}

func (Numeric) DataType() DataType { return TypeNumeric }

func (v Numeric) Equal(other Value) bool {
	o, ok := other.(Numeric)
	return ok && v.Decimal.Equal(o.Decimal)
}

func (v Numeric) String() string { return v.Decimal.String() }

// digits returns the magnitude as plain decimal digits.
func (v Numeric) digits() string {
	return v.Decimal.Abs().BigInt().String()
}

func (Numeric) isValue() {}

// Text holds alpha content.
type Text string

func (Text) DataType() DataType { return TypeAlpha }

func (v Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && v == o
}

func (v Text) String() string { return string(v) }

func (Text) isValue() {}

// Binary holds raw bytes.
type Binary []byte

func (Binary) DataType() DataType { return TypeBinary }

func (v Binary) Equal(other Value) bool {
	o, ok := other.(Binary)
	return ok && bytes.Equal(v, o)
}

func (v Binary) String() string {
	buf := make([]byte, len(v)*2)
	encodeHexUpper(buf, v)
	return string(buf)
}

func (Binary) isValue() {}

// Nested holds the tag-length-value entries of a nested field.
type Nested []TLV

func (Nested) DataType() DataType { return TypeNested }

func (v Nested) Equal(other Value) bool {
	o, ok := other.(Nested)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if !bytes.Equal(v[i].Tag, o[i].Tag) || !bytes.Equal(v[i].Value, o[i].Value) {
			return false
		}
	}
	return true
}

func (v Nested) String() string {
	var b []byte
	for i, t := range v {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, Binary(t.Tag).String()...)
		b = append(b, '=')
		b = append(b, Binary(t.Value).String()...)
	}
	return string(b)
}

func (Nested) isValue() {}

// cloneValue returns a deep copy so a clone never shares byte slices.
func cloneValue(v Value) Value {
	switch t := v.(type) {
	case Binary:
		return Binary(bytes.Clone(t))
	case Nested:
		out := make(Nested, len(t))
		for i := range t {
			out[i] = TLV{Tag: bytes.Clone(t[i].Tag), Value: bytes.Clone(t[i].Value)}
		}
		return out
	}
	return v
}
