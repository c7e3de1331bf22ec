package pgvector

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cinechat/internal/domain"
)

// Where renders a metadata filter as a SQL predicate over the JSONB metadata
// column, appending bind values to args. Attribute names are bound too.
func Where(f *domain.Filter, args *[]any) (string, error) {
	switch {
	case f.Operation != nil:
		parts := make([]string, 0, len(f.Operation.Arguments))
		for i := range f.Operation.Arguments {
			p, err := Where(&f.Operation.Arguments[i], args)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		switch f.Operation.Operator {
		case domain.OpAnd:
			if len(parts) == 0 {
				return "TRUE", nil
			}
			return "(" + strings.Join(parts, " AND ") + ")", nil
		case domain.OpOr:
			if len(parts) == 0 {
				return "TRUE", nil
			}
			return "(" + strings.Join(parts, " OR ") + ")", nil
		case domain.OpNot:
			if len(parts) == 0 {
				return "TRUE", nil
			}
			return "NOT (" + strings.Join(parts, " OR ") + ")", nil
		}
		return "", fmt.Errorf("pgvector: unsupported operator %q", f.Operation.Operator)
	case f.Comparison != nil:
		return comparison(f.Comparison, args)
	}
	return "", fmt.Errorf("pgvector: empty filter")
}

func comparison(c *domain.Comparison, args *[]any) (string, error) {
	bind := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}
	field := "(metadata->>" + bind(c.Attribute) + "::text)"

	if c.Comparator == domain.CmpIn {
		values, ok := c.Value.([]any)
		if !ok || len(values) == 0 {
			return "", fmt.Errorf("pgvector: in on %q needs a non-empty list", c.Attribute)
		}
		if _, numeric := domain.ToFloat(values[0]); numeric {
			nums := make([]float64, 0, len(values))
			for _, v := range values {
				n, ok := domain.ToFloat(v)
				if !ok {
					return "", fmt.Errorf("pgvector: mixed list for %q", c.Attribute)
				}
				nums = append(nums, n)
			}
			return field + "::numeric = ANY(" + bind(pq.Array(nums)) + "::numeric[])", nil
		}
		strs := make([]string, 0, len(values))
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return "", fmt.Errorf("pgvector: mixed list for %q", c.Attribute)
			}
			strs = append(strs, strings.ToLower(s))
		}
		return "lower" + field + " = ANY(" + bind(pq.Array(strs)) + ")", nil
	}

	if n, ok := domain.ToFloat(c.Value); ok {
		op, ok := sqlOps[c.Comparator]
		if !ok {
			return "", fmt.Errorf("pgvector: %s not supported on numbers", c.Comparator)
		}
		return field + "::numeric " + op + " " + bind(n), nil
	}
	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("pgvector: unsupported value %T for %q", c.Value, c.Attribute)
	}
	if c.Comparator == domain.CmpContain {
		return field + " ILIKE '%' || " + bind(s) + " || '%'", nil
	}
	op, ok := sqlOps[c.Comparator]
	if !ok {
		return "", fmt.Errorf("pgvector: %s not supported on strings", c.Comparator)
	}
	if c.Comparator == domain.CmpEq || c.Comparator == domain.CmpNe {
		return "lower" + field + " " + op + " lower(" + bind(s) + ")", nil
	}
	return field + " " + op + " " + bind(s), nil
}

var sqlOps = map[domain.Comparator]string{
	domain.CmpEq:  "=",
	domain.CmpNe:  "<>",
	domain.CmpGt:  ">",
	domain.CmpGte: ">=",
	domain.CmpLt:  "<",
	domain.CmpLte: "<=",
}
