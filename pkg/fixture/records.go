package fixture

import (
	"maps"
	"reflect"
)

// IsNull reports whether v is nil, a typed nil or JSONNull.
func IsNull(v any) bool {
	if v == nil || v == any(JSONNull) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Clone copies the slice and every record in it.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = maps.Clone(r)
	}
	return out
}

// WithJSONNull returns a copy of records where nil values of the given JSON
// fields are replaced by JSONNull. Absent keys stay absent.
func WithJSONNull(records []Record, fields ...string) []Record {
	if len(fields) == 0 {
		return records
	}
	out := Clone(records)
	for _, r := range out {
		for _, f := range fields {
			if v, ok := r[f]; ok && v == nil {
				r[f] = JSONNull
			}
		}
	}
	return out
}

// HasMatch reports whether any record holds value in field.
func HasMatch(records []Record, field string, value any) bool {
	for _, r := range records {
		if v, ok := r[field]; ok && valuesEqual(value, v) {
			return true
		}
	}
	return false
}

// Seed builds a record from factory and overrides field with value.
func Seed(factory func() Record, field string, value any) Record {
	r := maps.Clone(factory())
	if r == nil {
		r = Record{}
	}
	r[field] = value
	return r
}
