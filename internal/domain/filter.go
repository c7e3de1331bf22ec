package domain

import (
	"fmt"
	"strings"
)

// Operator combines filters.
type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpNot Operator = "not"
)

// Comparator compares a metadata attribute with a value.
type Comparator string

const (
	CmpEq      Comparator = "eq"
	CmpNe      Comparator = "ne"
	CmpGt      Comparator = "gt"
	CmpGte     Comparator = "gte"
	CmpLt      Comparator = "lt"
	CmpLte     Comparator = "lte"
	CmpContain Comparator = "contain"
	CmpIn      Comparator = "in"
)

// Filter is a node of a structured metadata filter. Exactly one of
// Comparison or Operation is set.
type Filter struct {
	Comparison *Comparison `json:"-"`
	Operation  *Operation  `json:"-"`
}

// Comparison is a leaf filter.
type Comparison struct {
	Comparator Comparator `json:"comparator"`
	Attribute  string     `json:"attribute"`
	Value      any        `json:"value"`
}

// Operation combines child filters.
type Operation struct {
	Operator  Operator `json:"operator"`
	Arguments []Filter `json:"arguments"`
}

// StructuredQuery is a free-text query split into a semantic part and filters.
type StructuredQuery struct {
	Query  string
	Filter *Filter
	Limit  int
}

// Compare builds a comparison filter.
func Compare(c Comparator, attribute string, value any) *Filter {
	return &Filter{Comparison: &Comparison{Comparator: c, Attribute: attribute, Value: value}}
}

// Combine builds an operation filter.
func Combine(op Operator, args ...*Filter) *Filter {
	children := make([]Filter, 0, len(args))
	for _, a := range args {
		if a != nil {
			children = append(children, *a)
		}
	}
	return &Filter{Operation: &Operation{Operator: op, Arguments: children}}
}

func (f Filter) String() string {
	switch {
	case f.Comparison != nil:
		return fmt.Sprintf("%s(%q, %v)", f.Comparison.Comparator, f.Comparison.Attribute, f.Comparison.Value)
	case f.Operation != nil:
		parts := make([]string, len(f.Operation.Arguments))
		for i, a := range f.Operation.Arguments {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", f.Operation.Operator, strings.Join(parts, ", "))
	}
	return "<empty>"
}

// Match evaluates the filter against metadata. A nil filter matches everything.
func (f *Filter) Match(m MovieMetadata) bool {
	if f == nil {
		return true
	}
	switch {
	case f.Comparison != nil:
		return f.Comparison.match(m)
	case f.Operation != nil:
		args := f.Operation.Arguments
		switch f.Operation.Operator {
		case OpAnd:
			for i := range args {
				if !args[i].Match(m) {
					return false
				}
			}
			return true
		case OpOr:
			for i := range args {
				if args[i].Match(m) {
					return true
				}
			}
			return len(args) == 0
		case OpNot:
			for i := range args {
				if args[i].Match(m) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func (c *Comparison) match(m MovieMetadata) bool {
	actual, ok := m.Attribute(c.Attribute)
	if !ok {
		return false
	}
	if c.Comparator == CmpIn {
		values, ok := c.Value.([]any)
		if !ok {
			return false
		}
		for _, v := range values {
			if (&Comparison{Comparator: CmpEq, Attribute: c.Attribute, Value: v}).match(m) {
				return true
			}
		}
		return false
	}
	switch a := actual.(type) {
	case string:
		want, ok := c.Value.(string)
		if !ok {
			return false
		}
		return compareStrings(c.Comparator, a, want)
	case int:
		want, ok := ToFloat(c.Value)
		if !ok {
			return false
		}
		return compareNumbers(c.Comparator, float64(a), want)
	case float64:
		want, ok := ToFloat(c.Value)
		if !ok {
			return false
		}
		return compareNumbers(c.Comparator, a, want)
	}
	return false
}

func compareStrings(c Comparator, actual, want string) bool {
	switch c {
	case CmpEq:
		return strings.EqualFold(actual, want)
	case CmpNe:
		return !strings.EqualFold(actual, want)
	case CmpContain:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(want))
	case CmpGt:
		return actual > want
	case CmpGte:
		return actual >= want
	case CmpLt:
		return actual < want
	case CmpLte:
		return actual <= want
	}
	return false
}

func compareNumbers(c Comparator, actual, want float64) bool {
	switch c {
	case CmpEq:
		return actual == want
	case CmpNe:
		return actual != want
	case CmpGt:
		return actual > want
	case CmpGte:
		return actual >= want
	case CmpLt:
		return actual < want
	case CmpLte:
		return actual <= want
	}
	return false
}

// ToFloat converts JSON-decoded numeric values.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
