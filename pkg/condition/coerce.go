package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

// valueLength returns the length the operator table reasons about: runes for
// strings, elements for slices/arrays/maps. The second return is false when
// the value has no meaningful length.
func valueLength(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		return utf8.RuneCountInString(v), true
	case []byte:
		return utf8.RuneCount(v), true
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	case map[string]any:
		return len(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// isFalsy mirrors loose boolean coercion: nil, empty string, zero numbers,
// and false are all falsy. Non-empty collections are truthy.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	default:
		if n, ok := coerceNumber(value); ok {
			return n == 0
		}
		if length, ok := valueLength(v); ok {
			return length == 0
		}
		return false
	}
}

// looseEquals compares two values the way the condition language expects:
// numeric values compare numerically regardless of their concrete Go type,
// everything else requires matching types and deep equality.
func looseEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok && bok {
		return an == bn
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// numericValue is coerceNumber restricted to values that are numbers by type,
// keeping string-vs-number comparisons strict.
func numericValue(value any) (float64, bool) {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return coerceNumber(value)
	default:
		return 0, false
	}
}

// numericPair parses expected values shaped like [min, max].
func numericPair(value any) (float64, float64, bool) {
	items, ok := anySlice(value)
	if !ok || len(items) != 2 {
		return 0, 0, false
	}
	lo, ok := coerceNumber(items[0])
	if !ok {
		return 0, 0, false
	}
	hi, ok := coerceNumber(items[1])
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func anySlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
