package condition

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Built-in operator names. Schema documents reference operators by these
// strings; unknown names evaluate to false rather than failing the run.
const (
	OpIsNumber           = "isNumber"
	OpLength             = "length"
	OpEquals             = "equals"
	OpNotEquals          = "notEquals"
	OpContains           = "contains"
	OpNotContains        = "notContains"
	OpStartsWith         = "startsWith"
	OpEndsWith           = "endsWith"
	OpGreaterThan        = "greaterThan"
	OpLessThan           = "lessThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpBetween            = "between"
	OpRegex              = "regex"
	OpMinLength          = "minLength"
	OpMaxLength          = "maxLength"
	OpIsEmpty            = "isEmpty"
	OpIsNotEmpty         = "isNotEmpty"
	OpIsInteger          = "isInteger"
	OpIsFloat            = "isFloat"
	OpIsAlpha            = "isAlpha"
	OpIsAlphanumeric     = "isAlphanumeric"
	OpIsEmail            = "isEmail"
	OpIsURL              = "isURL"
	OpIsDate             = "isDate"
	OpIsFalsy            = "isFalsy"
	OpCompareWithOffset  = "compareWithOffset"
)

// Offset comparison modes accepted by compareWithOffset.
const (
	OffsetDifference        = "difference"
	OffsetMinimumDifference = "minimumDifference"
	OffsetMaximumDifference = "maximumDifference"
)

// Func is a named binary predicate over (actual, expected). Implementations
// must be pure and must tolerate nil and mistyped inputs by returning false.
type Func func(actual, expected any) bool

// OffsetParams is the expected payload for compareWithOffset: actual is
// compared against Value adjusted by Offset using Operator.
type OffsetParams struct {
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
	Offset   float64 `json:"offset" yaml:"offset"`
}

// Operators is a named, extensible table of predicates. Registration replaces
// on name collision, so late registrations win. The zero value is unusable;
// construct with NewOperators.
type Operators struct {
	mu  sync.RWMutex
	fns map[string]Func
}

// NewOperators returns a table preloaded with every built-in operator.
func NewOperators() *Operators {
	ops := &Operators{fns: make(map[string]Func, 32)}
	ops.registerBuiltins()
	return ops
}

// Register adds or replaces the operator under name. Empty names and nil
// functions are ignored.
func (o *Operators) Register(name string, fn Func) {
	if o == nil || fn == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	o.mu.Lock()
	o.fns[trimmed] = fn
	o.mu.Unlock()
}

// Lookup returns the operator registered under name.
func (o *Operators) Lookup(name string) (Func, bool) {
	if o == nil {
		return nil, false
	}
	o.mu.RLock()
	fn, ok := o.fns[name]
	o.mu.RUnlock()
	return fn, ok
}

// Apply runs the named operator, returning false for unknown names.
func (o *Operators) Apply(name string, actual, expected any) bool {
	fn, ok := o.Lookup(name)
	if !ok {
		return false
	}
	return fn(actual, expected)
}

var (
	alphaPattern        = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC822,
}

func (o *Operators) registerBuiltins() {
	o.Register(OpIsNumber, func(a, _ any) bool {
		_, ok := coerceNumber(a)
		return ok
	})
	o.Register(OpLength, func(a, b any) bool {
		length, ok := valueLength(a)
		if !ok {
			return false
		}
		want, ok := coerceNumber(b)
		return ok && float64(length) == want
	})
	o.Register(OpEquals, func(a, b any) bool { return looseEquals(a, b) })
	o.Register(OpNotEquals, func(a, b any) bool { return !looseEquals(a, b) })
	o.Register(OpContains, func(a, b any) bool {
		if a == nil {
			return false
		}
		return strings.Contains(coerceString(a), coerceString(b))
	})
	o.Register(OpNotContains, func(a, b any) bool {
		if a == nil {
			return true
		}
		return !strings.Contains(coerceString(a), coerceString(b))
	})
	o.Register(OpStartsWith, func(a, b any) bool {
		if a == nil {
			return false
		}
		return strings.HasPrefix(coerceString(a), coerceString(b))
	})
	o.Register(OpEndsWith, func(a, b any) bool {
		if a == nil {
			return false
		}
		return strings.HasSuffix(coerceString(a), coerceString(b))
	})
	o.Register(OpGreaterThan, numericCompare(func(a, b float64) bool { return a > b }))
	o.Register(OpLessThan, numericCompare(func(a, b float64) bool { return a < b }))
	o.Register(OpGreaterThanOrEqual, numericCompare(func(a, b float64) bool { return a >= b }))
	o.Register(OpLessThanOrEqual, numericCompare(func(a, b float64) bool { return a <= b }))
	o.Register(OpBetween, func(a, b any) bool {
		value, ok := coerceNumber(a)
		if !ok {
			return false
		}
		lo, hi, ok := numericPair(b)
		return ok && value >= lo && value <= hi
	})
	o.Register(OpRegex, func(a, b any) bool {
		pattern, err := regexp.Compile("(?i)" + coerceString(b))
		if err != nil {
			return false
		}
		return pattern.MatchString(coerceString(a))
	})
	o.Register(OpMinLength, func(a, b any) bool {
		length, ok := valueLength(a)
		if !ok {
			return false
		}
		want, ok := coerceNumber(b)
		return ok && float64(length) >= want
	})
	o.Register(OpMaxLength, func(a, b any) bool {
		length, ok := valueLength(a)
		if !ok {
			return false
		}
		want, ok := coerceNumber(b)
		return ok && float64(length) <= want
	})
	o.Register(OpIsEmpty, func(a, _ any) bool {
		if isFalsy(a) {
			return true
		}
		length, ok := valueLength(a)
		return ok && length == 0
	})
	o.Register(OpIsNotEmpty, func(a, _ any) bool {
		if isFalsy(a) {
			return false
		}
		length, ok := valueLength(a)
		if !ok {
			return true
		}
		return length > 0
	})
	o.Register(OpIsInteger, func(a, _ any) bool {
		value, ok := coerceNumber(a)
		return ok && value == math.Trunc(value)
	})
	o.Register(OpIsFloat, func(a, _ any) bool {
		value, ok := coerceNumber(a)
		return ok && value != math.Trunc(value)
	})
	o.Register(OpIsAlpha, func(a, _ any) bool {
		return alphaPattern.MatchString(coerceString(a))
	})
	o.Register(OpIsAlphanumeric, func(a, _ any) bool {
		return alphanumericPattern.MatchString(coerceString(a))
	})
	o.Register(OpIsEmail, func(a, _ any) bool {
		return emailPattern.MatchString(coerceString(a))
	})
	o.Register(OpIsURL, func(a, _ any) bool {
		raw := coerceString(a)
		if strings.TrimSpace(raw) == "" {
			return false
		}
		parsed, err := url.Parse(raw)
		return err == nil && parsed.Scheme != "" && parsed.Host != ""
	})
	o.Register(OpIsDate, func(a, _ any) bool {
		raw := strings.TrimSpace(coerceString(a))
		if raw == "" {
			return false
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, raw); err == nil {
				return true
			}
		}
		return false
	})
	o.Register(OpIsFalsy, func(a, _ any) bool { return isFalsy(a) })
	o.Register(OpCompareWithOffset, compareWithOffset)
}

func numericCompare(cmp func(a, b float64) bool) Func {
	return func(a, b any) bool {
		left, ok := coerceNumber(a)
		if !ok {
			return false
		}
		right, ok := coerceNumber(b)
		if !ok {
			return false
		}
		return cmp(left, right)
	}
}

func compareWithOffset(a, expected any) bool {
	params, ok := offsetParams(expected)
	if !ok {
		return false
	}
	actual, ok := coerceNumber(a)
	if !ok {
		return false
	}
	base, ok := coerceNumber(params.Value)
	if !ok {
		return false
	}
	offset := params.Offset

	switch params.Operator {
	case OpGreaterThan:
		return actual > base+offset
	case OpLessThan:
		return actual < base+offset
	case OpEquals:
		return actual == base+offset
	case OpGreaterThanOrEqual:
		return actual >= base+offset
	case OpLessThanOrEqual:
		return actual <= base+offset
	case OffsetDifference:
		return math.Abs(actual-base) == offset
	case OffsetMinimumDifference:
		// Direction-aware: negative gaps count by magnitude.
		return math.Abs(actual-base) >= offset
	case OffsetMaximumDifference:
		return actual-base <= offset
	default:
		return false
	}
}

func offsetParams(expected any) (OffsetParams, bool) {
	switch v := expected.(type) {
	case OffsetParams:
		return v, true
	case *OffsetParams:
		if v == nil {
			return OffsetParams{}, false
		}
		return *v, true
	case map[string]any:
		operator, _ := v["operator"].(string)
		offset, ok := coerceNumber(v["offset"])
		if !ok {
			return OffsetParams{}, false
		}
		return OffsetParams{Operator: operator, Value: v["value"], Offset: offset}, true
	default:
		return OffsetParams{}, false
	}
}
