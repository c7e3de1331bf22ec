package qdrant

import (
	"fmt"
	"strings"

	"cinechat/internal/domain"
)

// Filter translates a metadata filter into a Qdrant filter object.
func Filter(f *domain.Filter) (map[string]any, error) {
	if f.Operation == nil {
		cond, err := condition(*f)
		if err != nil {
			return nil, err
		}
		return map[string]any{"must": []any{cond}}, nil
	}
	return operation(f.Operation)
}

func operation(op *domain.Operation) (map[string]any, error) {
	conds := make([]any, 0, len(op.Arguments))
	for _, a := range op.Arguments {
		c, err := condition(a)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	switch op.Operator {
	case domain.OpAnd:
		return map[string]any{"must": conds}, nil
	case domain.OpOr:
		return map[string]any{"should": conds}, nil
	case domain.OpNot:
		return map[string]any{"must_not": conds}, nil
	}
	return nil, fmt.Errorf("qdrant: unsupported operator %q", op.Operator)
}

func condition(f domain.Filter) (any, error) {
	if f.Operation != nil {
		return operation(f.Operation)
	}
	c := f.Comparison
	if c == nil {
		return nil, fmt.Errorf("qdrant: empty filter")
	}
	switch c.Comparator {
	case domain.CmpEq:
		return match(c.Attribute, c.Value)
	case domain.CmpNe:
		m, err := match(c.Attribute, c.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"must_not": []any{m}}, nil
	case domain.CmpContain:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("qdrant: contain on %q needs a string, got %T", c.Attribute, c.Value)
		}
		// without a full-text index Qdrant runs match.text as a substring test
		return map[string]any{"key": lowerKey(c.Attribute), "match": map[string]any{"text": strings.ToLower(s)}}, nil
	case domain.CmpIn:
		return matchAny(c.Attribute, c.Value)
	case domain.CmpGt, domain.CmpGte, domain.CmpLt, domain.CmpLte:
		v, ok := domain.ToFloat(c.Value)
		if !ok {
			return nil, fmt.Errorf("qdrant: %s on %q needs a number, got %T", c.Comparator, c.Attribute, c.Value)
		}
		return map[string]any{"key": c.Attribute, "range": map[string]any{string(c.Comparator): v}}, nil
	}
	return nil, fmt.Errorf("qdrant: unsupported comparator %q", c.Comparator)
}

// match compares strings against the lowercased copy and numbers with a
// closed range, which works for both integer and float payloads.
func match(attr string, v any) (map[string]any, error) {
	if n, ok := domain.ToFloat(v); ok {
		return map[string]any{"key": attr, "range": map[string]any{"gte": n, "lte": n}}, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("qdrant: unsupported value %T for %q", v, attr)
	}
	return map[string]any{"key": lowerKey(attr), "match": map[string]any{"value": strings.ToLower(s)}}, nil
}

// matchAny uses match.any for strings. Numbers become a should of ranges
// since match.any only accepts keywords and integers.
func matchAny(attr string, v any) (map[string]any, error) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("qdrant: in on %q needs a non-empty list", attr)
	}
	if _, isString := list[0].(string); isString {
		values := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("qdrant: mixed values in list for %q", attr)
			}
			values[i] = strings.ToLower(s)
		}
		return map[string]any{"key": lowerKey(attr), "match": map[string]any{"any": values}}, nil
	}
	should := make([]any, len(list))
	for i, item := range list {
		if _, ok := domain.ToFloat(item); !ok {
			return nil, fmt.Errorf("qdrant: mixed values in list for %q", attr)
		}
		m, err := match(attr, item)
		if err != nil {
			return nil, err
		}
		should[i] = m
	}
	return map[string]any{"should": should}, nil
}

func lowerKey(attr string) string { return "lc." + attr }
