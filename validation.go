package iso8583

import (
	"strconv"
	"strings"
)

// normalize checks v against the schema and returns the canonical form to
// store. Fixed alpha values are padded with spaces to the full width.
// allowTruncate is false on the decode path, where an oversized value can
// only mean a corrupt wire.
func normalize(s Schema, v Value, allowTruncate bool) (Value, error) {
	if v == nil || v.DataType() != s.Type {
		got := "nil"
		if v != nil {
			got = v.DataType().String()
		}
		return nil, &FieldError{Field: s.Number, Err: ErrTypeMismatch, Detail: "schema wants " + s.Type.String() + ", got " + got}
	}

	switch val := v.(type) {
	case Numeric:
		return val, checkNumeric(s, val)
	case Text:
		return normalizeText(s, val, allowTruncate)
	case Binary:
		if len(val) != s.Length {
			return nil, &FieldError{Field: s.Number, Err: ErrLengthMismatch, Expected: s.Length, Actual: len(val)}
		}
		return val, nil
	case Nested:
		size, err := packedTLVSize(s.TLV, val)
		if err != nil {
			return nil, &FieldError{Field: s.Number, Err: err}
		}
		if size > s.Length {
			return nil, &FieldError{Field: s.Number, Err: ErrLengthExceeded, Expected: s.Length, Actual: size}
		}
		return val, nil
	}
	return nil, &FieldError{Field: s.Number, Err: ErrTypeMismatch}
}

func checkNumeric(s Schema, v Numeric) error {
	if !v.Decimal.IsInteger() {
		return &FieldError{Field: s.Number, Err: ErrTypeMismatch, Detail: "numeric fields hold integers, got " + v.String()}
	}
	if v.Decimal.Sign() < 0 && !s.Signed {
		return &FieldError{Field: s.Number, Err: ErrSignNotAllowed, Detail: v.String()}
	}
	if n := len(v.digits()); n > s.Length {
		return &FieldError{Field: s.Number, Err: ErrDigitOverflow, Expected: s.Length, Actual: n}
	}
	return nil
}

func normalizeText(s Schema, v Text, allowTruncate bool) (Value, error) {
	if len(v) > s.Length {
		if !allowTruncate || !s.Truncate {
			return nil, &FieldError{Field: s.Number, Err: ErrLengthExceeded, Expected: s.Length, Actual: len(v)}
		}
		v = v[:s.Length]
	}

	if i, ok := checkCharset(s, string(v)); !ok {
		return nil, &FieldError{Field: s.Number, Err: ErrCharsetViolation, Detail: "invalid character at position " + strconv.Itoa(i)}
	}

	if s.LengthType == Fixed && len(v) < s.Length {
		v += Text(strings.Repeat(" ", s.Length-len(v)))
	}
	return v, nil
}

// checkCharset returns the position of the first character outside the
// schema's alphabet. Space belongs to every alpha alphabet; special means
// printable ASCII that is neither a letter nor a digit.
func checkCharset(s Schema, v string) (int, bool) {
	for i := 0; i < len(v); i++ {
		b := v[i]
		switch {
		case b == ' ':
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z'):
			if !s.AllowLetters {
				return i, false
			}
		case b >= '0' && b <= '9':
			if !s.AllowDigits {
				return i, false
			}
		case b > ' ' && b <= '~':
			if !s.AllowSpecial {
				return i, false
			}
		default:
			return i, false
		}
	}
	return 0, true
}
