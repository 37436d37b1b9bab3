package iso8583

import (
	"strings"

	"github.com/pkg/errors"
)

// DataType is the wire representation class of a field.
type DataType int

const (
	TypeNumeric DataType = iota + 1
	TypeAlpha
	TypeBinary
	TypeNested
)

func (t DataType) String() string {
	switch t {
	case TypeNumeric:
		return "n"
	case TypeAlpha:
		return "an"
	case TypeBinary:
		return "b"
	case TypeNested:
		return "nested"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t DataType) MarshalText() ([]byte, error) {
	if t < TypeNumeric || t > TypeNested {
		return nil, errors.Errorf("unknown data type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts the short ISO notation used in field tables
// ("n", "a", "an", "ans", "b", "nested"), case-insensitive.
func (t *DataType) UnmarshalText(text []byte) error {
	v, err := parseDataType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func parseDataType(s string) (DataType, error) {
	switch strings.ToLower(s) {
	case "n", "numeric":
		return TypeNumeric, nil
	case "a", "an", "ans", "ns", "z", "alpha":
		return TypeAlpha, nil
	case "b", "binary":
		return TypeBinary, nil
	case "nested", "tlv":
		return TypeNested, nil
	}
	return 0, errors.Errorf("unknown data type %q", s)
}

// LengthType says whether a field has a fixed width or a length prefix.
type LengthType int

const (
	Fixed LengthType = iota + 1
	Variable
)

func (l LengthType) String() string {
	switch l {
	case Fixed:
		return "fixed"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LengthType) MarshalText() ([]byte, error) {
	if l != Fixed && l != Variable {
		return nil, errors.Errorf("unknown length type %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts "fixed", "variable", "llvar" and "lllvar".
// The LL forms only select the length type; prefix digits are set on the schema.
func (l *LengthType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fixed":
		*l = Fixed
	case "variable", "llvar", "lllvar":
		*l = Variable
	default:
		return errors.Errorf("unknown length type %q", text)
	}
	return nil
}

// BitmapEncoding selects how bitmaps are written on the wire.
type BitmapEncoding int

const (
	BitmapBinary BitmapEncoding = iota
	BitmapHex
)

// TLVType selects the tag-length-value dialect of a nested field.
type TLVType int

const (
	TLVStandard TLVType = iota
	TLVEMV
)

// MarshalText implements encoding.TextMarshaler.
func (t TLVType) MarshalText() ([]byte, error) {
	switch t {
	case TLVStandard:
		return []byte("standard"), nil
	case TLVEMV:
		return []byte("emv"), nil
	}
	return nil, errors.Errorf("unknown TLV type %d", int(t))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TLVType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "standard", "":
		*t = TLVStandard
	case "emv", "ber":
		*t = TLVEMV
	default:
		return errors.Errorf("unknown TLV type %q", text)
	}
	return nil
}

// Schema describes the wire representation of one field number.
type Schema struct {
	Number       int        `json:"number"`
	Name         string     `json:"name"`
	Type         DataType   `json:"type"`
	LengthType   LengthType `json:"length_type"`
	Length       int        `json:"length"`
	PrefixDigits int        `json:"prefix_digits,omitzero"`

	// Signed numerics carry one leading C/D character in front of Length digits.
	Signed bool `json:"signed,omitzero"`

	AllowLetters bool `json:"letters,omitzero"`
	AllowDigits  bool `json:"digits,omitzero"`
	AllowSpecial bool `json:"special,omitzero"`

	// Truncate cuts oversized alpha values to Length instead of rejecting them.
	Truncate bool `json:"truncate,omitzero"`

	DatePattern string  `json:"date_pattern,omitzero"`
	TLV         TLVType `json:"tlv,omitzero"`
}

// prefixCapacity is the largest content length the length prefix can state.
func (s Schema) prefixCapacity() int {
	switch s.PrefixDigits {
	case 2:
		return 99
	case 3:
		return 999
	}
	return 0
}

func (s Schema) prefixLabel() string {
	if s.PrefixDigits == 3 {
		return "LLLVAR"
	}
	return "LLVAR"
}

// width is the number of wire units a fixed field occupies.
func (s Schema) width() int {
	if s.Type == TypeNumeric && s.Signed {
		return s.Length + 1
	}
	return s.Length
}

const (
	MaxFieldNumber = 128
	BitmapSize     = 8
	MTILength      = 4

	DefaultBufferSize = 4096
)
