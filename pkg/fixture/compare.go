package fixture

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
)

// AssertFunc compares expected partial records against the actual rows of
// one model. sortKeys may be empty.
type AssertFunc func(expected, actual []Record, sortKeys []string) error

// CompareRecords is the default AssertFunc. Lengths must match; with sort
// keys both sides are sorted first, then records are matched by position,
// checking only the fields listed in the expected record.
func CompareRecords(expected, actual []Record, sortKeys []string) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("%w: expected %d records, got %d", ErrLengthMismatch, len(expected), len(actual))
	}
	if len(sortKeys) > 0 {
		expected = SortRecords(expected, sortKeys)
		actual = SortRecords(actual, sortKeys)
	}
	for i := range expected {
		if err := matchRecord(i, expected[i], actual[i]); err != nil {
			return err
		}
	}
	return nil
}

// MatchRecord checks that every field of expected is present in actual with
// an equal value.
func MatchRecord(expected, actual Record) error {
	return matchRecord(-1, expected, actual)
}

func matchRecord(index int, expected, actual Record) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		want := expected[k]
		got, ok := actual[k]
		if !ok {
			return &MismatchError{Index: index, Field: k, Expected: want, Missing: true}
		}
		if !valuesEqual(want, got) {
			return &MismatchError{Index: index, Field: k, Expected: want, Actual: got}
		}
	}
	return nil
}

// SortRecords returns a copy of records stably sorted ascending by the
// compound key. Null values sort after everything else.
func SortRecords(records []Record, keys []string) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		for _, k := range keys {
			av, bv := a[k], b[k]
			an, bn := IsNull(av), IsNull(bv)
			switch {
			case an && bn:
				continue
			case an:
				return 1
			case bn:
				return -1
			}
			if c := compareValues(av, bv); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func compareValues(a, b any) int {
	if ai, ok := asInt(a); ok {
		if bi, ok := asInt(b); ok {
			return cmp.Compare(ai, bi)
		}
	}
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return bytes.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asInt(v any) (int64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return cast.ToInt64(v), true
	case uint64:
		if n := v.(uint64); n <= 1<<63-1 {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// valuesEqual is a loose equality that tolerates the representation changes
// drivers apply: integer widths, time formats, bytes for text and JSON
// documents stored as text.
func valuesEqual(expected, actual any) bool {
	if IsNull(expected) || IsNull(actual) {
		if expected == any(JSONNull) {
			return IsNull(actual) || isJSONNullText(actual)
		}
		return IsNull(expected) && IsNull(actual)
	}

	if ei, ok := asInt(expected); ok {
		if ai, ok := asInt(actual); ok {
			return ei == ai
		}
	}
	if ef, ok := asFloat(expected); ok {
		if af, ok := asFloat(actual); ok {
			return ef == af
		}
		if s, ok := textOf(actual); ok {
			af, err := cast.ToFloat64E(s)
			return err == nil && ef == af
		}
	}

	switch ev := expected.(type) {
	case time.Time:
		if at, ok := actual.(time.Time); ok {
			return ev.Equal(at)
		}
		if s, ok := textOf(actual); ok {
			at, err := cast.ToTimeE(s)
			return err == nil && ev.Equal(at)
		}
		return false
	case bool:
		if ab, err := cast.ToBoolE(actual); err == nil {
			return ev == ab
		}
		return false
	case string:
		if s, ok := textOf(actual); ok {
			return ev == s
		}
		if at, ok := actual.(time.Time); ok {
			et, err := cast.ToTimeE(ev)
			return err == nil && et.Equal(at)
		}
	case []byte:
		if s, ok := textOf(actual); ok {
			return string(ev) == s
		}
	}

	switch reflect.TypeOf(expected).Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct:
		if jsonEqual(expected, actual) {
			return true
		}
	}

	return assert.ObjectsAreEqualValues(expected, actual)
}

func textOf(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func isJSONNullText(v any) bool {
	s, ok := textOf(v)
	return ok && strings.TrimSpace(s) == "null"
}

// jsonEqual compares two values by their decoded JSON form. Text values on
// the actual side are treated as JSON documents.
func jsonEqual(expected, actual any) bool {
	want, err := normalizeJSON(expected)
	if err != nil {
		return false
	}
	var got any
	if s, ok := textOf(actual); ok {
		if err := json.Unmarshal([]byte(s), &got); err != nil {
			return false
		}
	} else if got, err = normalizeJSON(actual); err != nil {
		return false
	}
	return reflect.DeepEqual(want, got)
}

func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchJSON checks that actual contains expected after both are converted to
// their JSON form: objects match on the listed keys, arrays element-wise and
// scalars by equality.
func MatchJSON(expected, actual any) error {
	want, err := normalizeJSON(expected)
	if err != nil {
		return fmt.Errorf("failed to encode expected value: %w", err)
	}
	got, err := normalizeJSON(actual)
	if err != nil {
		return fmt.Errorf("failed to encode actual value: %w", err)
	}
	return subsetMatch("$", want, got)
}

func subsetMatch(path string, want, got any) error {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return fmt.Errorf("%w at %s: expected object, got %v", ErrFieldMismatch, path, got)
		}
		for k, wv := range w {
			gv, ok := g[k]
			if !ok {
				return fmt.Errorf("%w at %s.%s: field is missing", ErrFieldMismatch, path, k)
			}
			if err := subsetMatch(path+"."+k, wv, gv); err != nil {
				return err
			}
		}
		return nil
	case []any:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return fmt.Errorf("%w at %s: expected %d elements, got %v", ErrFieldMismatch, path, len(w), got)
		}
		for i := range w {
			if err := subsetMatch(fmt.Sprintf("%s[%d]", path, i), w[i], g[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if !reflect.DeepEqual(want, got) {
			return fmt.Errorf("%w at %s: expected %v, got %v", ErrFieldMismatch, path, want, got)
		}
		return nil
	}
}
