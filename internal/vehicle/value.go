package vehicle

import (
	"encoding/json"
	"strconv"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/types"
)

// Kind tells what a Value holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
)

// Value is a scalar field value: text, a number, or empty.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Text returns a text value. An empty string is an empty value.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// ValueOf converts a raw cell into a Value. Numeric Go types become numbers,
// nil becomes empty and anything else is kept as text.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case string:
		return Text(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	default:
		return Text(types.Stringify(v))
	}
}

// Kind returns the kind of value held.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Float returns the numeric value, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String renders the value as text; numbers print without trailing zeros.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON writes numbers as JSON numbers, text as strings and empty
// values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON for gopkg.in/yaml.v3.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindText:
		return v.text, nil
	case KindNumber:
		return v.num, nil
	default:
		return nil, nil
	}
}

// Record is one vehicle after mapping and normalization.
type Record map[schema.FieldKey]Value

// Get returns the value for key, empty when unset.
func (r Record) Get(key schema.FieldKey) Value {
	return r[key]
}
