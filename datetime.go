package iso8583

import (
	"time"
)

// dateLayouts maps the field-table patterns to Go reference layouts.
var dateLayouts = map[string]string{
	"MMddHHmmss": "0102150405",
	"HHmmss":     "150405",
	"MMdd":       "0102",
	"yyMM":       "0601",
	"yyMMdd":     "060102",
	"yyyyMMdd":   "20060102",
}

// FormatTime renders t with one of the fixed date patterns used by
// date-carrying fields, e.g. "MMddHHmmss" for field 7.
func FormatTime(pattern string, t time.Time) (string, error) {
	layout, ok := dateLayouts[pattern]
	if !ok {
		return "", &DateFormatError{Pattern: pattern}
	}
	return t.Format(layout), nil
}

// ParseTime is the inverse of FormatTime. Components missing from the
// pattern take their zero value, so "MMdd" yields year 0 in UTC.
func ParseTime(pattern, value string) (time.Time, error) {
	layout, ok := dateLayouts[pattern]
	if !ok {
		return time.Time{}, &DateFormatError{Pattern: pattern, Value: value}
	}
	if len(value) != len(layout) {
		return time.Time{}, &DateFormatError{Pattern: pattern, Value: value}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, &DateFormatError{Pattern: pattern, Value: value, Err: err}
	}
	return t, nil
}
