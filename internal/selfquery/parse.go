package selfquery

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"cinechat/internal/domain"
)

// ErrInvalidFilter reports a translation that does not fit the schema.
var ErrInvalidFilter = errors.New("invalid structured query")

type rawQuery struct {
	Query  string          `json:"query"`
	Filter json.RawMessage `json:"filter"`
	Limit  *int            `json:"limit"`
}

type rawNode struct {
	Operator   string            `json:"operator"`
	Arguments  []json.RawMessage `json:"arguments"`
	Comparator string            `json:"comparator"`
	Attribute  string            `json:"attribute"`
	Value      any               `json:"value"`
}

// Parse decodes and validates a structured query produced by the translator.
func (s Schema) Parse(data []byte) (domain.StructuredQuery, error) {
	var raw rawQuery
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.StructuredQuery{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	sq := domain.StructuredQuery{Query: strings.TrimSpace(raw.Query)}
	if raw.Limit != nil {
		if *raw.Limit < 0 {
			return domain.StructuredQuery{}, fmt.Errorf("%w: negative limit", ErrInvalidFilter)
		}
		sq.Limit = *raw.Limit
	}
	trimmed := strings.TrimSpace(string(raw.Filter))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return sq, nil
	}
	f, err := s.node(raw.Filter)
	if err != nil {
		return domain.StructuredQuery{}, err
	}
	sq.Filter = f
	return sq, nil
}

func (s Schema) node(data json.RawMessage) (*domain.Filter, error) {
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	switch {
	case n.Operator != "":
		op := domain.Operator(strings.ToLower(n.Operator))
		if op != domain.OpAnd && op != domain.OpOr && op != domain.OpNot {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, n.Operator)
		}
		args := make([]*domain.Filter, 0, len(n.Arguments))
		for _, a := range n.Arguments {
			child, err := s.node(a)
			if err != nil {
				return nil, err
			}
			args = append(args, child)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: %s without arguments", ErrInvalidFilter, op)
		}
		return domain.Combine(op, args...), nil
	case n.Comparator != "":
		return s.comparison(n)
	}
	return nil, fmt.Errorf("%w: node is neither operation nor comparison", ErrInvalidFilter)
}

func (s Schema) comparison(n rawNode) (*domain.Filter, error) {
	attr, ok := s.attribute(n.Attribute)
	if !ok {
		return nil, fmt.Errorf("%w: unknown attribute %q", ErrInvalidFilter, n.Attribute)
	}
	cmp := domain.Comparator(strings.ToLower(n.Comparator))
	if !slices.Contains(allowedComparators[attr.Type], cmp) {
		return nil, fmt.Errorf("%w: %s not allowed on %s attribute %q", ErrInvalidFilter, cmp, attr.Type, attr.Name)
	}
	if cmp == domain.CmpIn {
		list, ok := n.Value.([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("%w: in on %q needs a non-empty list", ErrInvalidFilter, attr.Name)
		}
		values := make([]any, len(list))
		for i, v := range list {
			cv, err := coerce(attr, v)
			if err != nil {
				return nil, err
			}
			values[i] = cv
		}
		return domain.Compare(cmp, attr.Name, values), nil
	}
	v, err := coerce(attr, n.Value)
	if err != nil {
		return nil, err
	}
	return domain.Compare(cmp, attr.Name, v), nil
}

// coerce normalizes a value to the attribute type: strings stay strings,
// numbers become float64. Numeric strings are accepted for numeric attributes.
func coerce(attr AttributeInfo, v any) (any, error) {
	switch attr.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q expects a string, got %T", ErrInvalidFilter, attr.Name, v)
		}
		return s, nil
	default:
		if n, ok := domain.ToFloat(v); ok {
			return n, nil
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("%w: %q expects a number, got %v", ErrInvalidFilter, attr.Name, v)
	}
}
