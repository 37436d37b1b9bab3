package iso8583

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
)

// Registry is an immutable table of field schemas keyed by field number.
// It holds exactly one schema per number and is safe for concurrent use.
type Registry struct {
	schemas [MaxFieldNumber + 1]Schema
	present [MaxFieldNumber + 1]bool
	byName  map[string]int
}

var defaultRegistry = MustNewRegistry(DefaultSchemas())

// DefaultRegistry returns the process-wide registry built from DefaultSchemas.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry validates schemas and freezes them into a Registry.
func NewRegistry(schemas []Schema) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(schemas))}

	for _, s := range schemas {
		if err := validateSchema(s); err != nil {
			return nil, err
		}
		if r.present[s.Number] {
			return nil, &SchemaError{Field: s.Number, Reason: "registered twice", Err: ErrDuplicateSchema}
		}
		if s.Name != "" {
			if other, ok := r.byName[s.Name]; ok {
				return nil, &SchemaError{
					Field:  s.Number,
					Reason: fmt.Sprintf("name %q already used by field %d", s.Name, other),
					Err:    ErrDuplicateSchema,
				}
			}
			r.byName[s.Name] = s.Number
		}
		r.schemas[s.Number] = s
		r.present[s.Number] = true
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid table.
func MustNewRegistry(schemas []Schema) *Registry {
	r, err := NewRegistry(schemas)
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistryJSON builds a Registry from a JSON array of schemas.
func LoadRegistryJSON(data []byte) (*Registry, error) {
	var schemas []Schema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return nil, errors.Wrap(err, "failed to parse field schemas")
	}
	return NewRegistry(schemas)
}

// Get returns the schema registered for fieldNum.
func (r *Registry) Get(fieldNum int) (Schema, error) {
	if fieldNum < 1 || fieldNum > MaxFieldNumber || !r.present[fieldNum] {
		return Schema{}, errors.Wrapf(ErrSchemaNotFound, "field %d", fieldNum)
	}
	return r.schemas[fieldNum], nil
}

// Lookup returns the schema registered under a mnemonic name.
func (r *Registry) Lookup(name string) (Schema, error) {
	n, ok := r.byName[name]
	if !ok {
		return Schema{}, errors.Wrapf(ErrSchemaNotFound, "name %q", name)
	}
	return r.schemas[n], nil
}

// All returns every registered schema in ascending field order.
func (r *Registry) All() []Schema {
	out := make([]Schema, 0, MaxFieldNumber)
	for n := 1; n <= MaxFieldNumber; n++ {
		if r.present[n] {
			out = append(out, r.schemas[n])
		}
	}
	return out
}

func validateSchema(s Schema) error {
	bad := func(format string, args ...any) error {
		return &SchemaError{Field: s.Number, Reason: fmt.Sprintf(format, args...)}
	}

	if s.Number < 1 || s.Number > MaxFieldNumber {
		return bad("number out of range 1-%d", MaxFieldNumber)
	}
	if s.Length <= 0 {
		return bad("length must be positive, got %d", s.Length)
	}

	switch s.LengthType {
	case Fixed:
		if s.PrefixDigits != 0 {
			return bad("fixed field declares %d prefix digits", s.PrefixDigits)
		}
	case Variable:
		if s.PrefixDigits != 2 && s.PrefixDigits != 3 {
			return bad("variable field needs 2 or 3 prefix digits, got %d", s.PrefixDigits)
		}
	default:
		return bad("unknown length type %d", int(s.LengthType))
	}

	switch s.Type {
	case TypeNumeric:
	case TypeAlpha:
		if !s.AllowLetters && !s.AllowDigits && !s.AllowSpecial {
			return bad("alpha field enables no characters")
		}
	case TypeBinary:
		if s.LengthType != Fixed {
			return bad("binary fields must be fixed length")
		}
	case TypeNested:
		if s.LengthType != Variable {
			return bad("nested fields must be variable length")
		}
		if s.TLV != TLVStandard && s.TLV != TLVEMV {
			return bad("unknown TLV type %d", int(s.TLV))
		}
	default:
		return bad("unknown data type %d", int(s.Type))
	}

	if s.Signed && s.Type != TypeNumeric {
		return bad("only numeric fields can be signed")
	}
	if s.Truncate && s.Type != TypeAlpha {
		return bad("only alpha fields can be truncated")
	}
	if s.DatePattern != "" {
		if _, ok := dateLayouts[s.DatePattern]; !ok {
			return bad("unsupported date pattern %q", s.DatePattern)
		}
		if s.LengthType != Fixed || s.Length != len(s.DatePattern) {
			return bad("date pattern %q needs a fixed length of %d", s.DatePattern, len(s.DatePattern))
		}
	}
	return nil
}
