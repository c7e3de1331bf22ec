package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var heat = MovieMetadata{
	Title:    "Heat",
	Director: "Michael Mann",
	Actors:   "Al Pacino, Robert De Niro, Val Kilmer",
	Genres:   "Crime, Drama",
	Year:     1995,
	Rating:   8.3,
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"eq folds case", Compare(CmpEq, "director", "michael mann"), true},
		{"ne", Compare(CmpNe, "director", "Ridley Scott"), true},
		{"contain", Compare(CmpContain, "actors", "de niro"), true},
		{"contain miss", Compare(CmpContain, "actors", "Pesci"), false},
		{"int year gte float", Compare(CmpGte, "year", float64(1990)), true},
		{"int year lt", Compare(CmpLt, "year", 1990), false},
		{"rating gt", Compare(CmpGt, "rating", 8.0), true},
		{"in", Compare(CmpIn, "title", []any{"Ronin", "heat"}), true},
		{"in miss", Compare(CmpIn, "year", []any{float64(1994), float64(1996)}), false},
		{"wrong value type", Compare(CmpEq, "year", "1995"), false},
		{"unknown attribute", Compare(CmpEq, "budget", 1), false},
		{"and", Combine(OpAnd, Compare(CmpContain, "actors", "Al Pacino"), Compare(CmpGte, "year", 1990)), true},
		{"and miss", Combine(OpAnd, Compare(CmpContain, "actors", "Al Pacino"), Compare(CmpLt, "year", 1990)), false},
		{"or", Combine(OpOr, Compare(CmpEq, "title", "Ronin"), Compare(CmpEq, "title", "Heat")), true},
		{"not", Combine(OpNot, Compare(CmpContain, "genres", "Comedy")), true},
		{"not miss", Combine(OpNot, Compare(CmpContain, "genres", "Crime")), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Match(heat))
		})
	}
}

func TestFilterString(t *testing.T) {
	f := Combine(OpOr, Compare(CmpEq, "director", "Michael Mann"), nil, Compare(CmpLte, "rating", 7.5))
	assert.Equal(t, `or(eq("director", Michael Mann), lte("rating", 7.5))`, f.String())
	assert.Equal(t, "<empty>", Filter{}.String())
}

func TestAttribute(t *testing.T) {
	v, ok := heat.Attribute("year")
	assert.True(t, ok)
	assert.Equal(t, 1995, v)
	_, ok = heat.Attribute("summary")
	assert.False(t, ok)
}

func TestResponseConstructors(t *testing.T) {
	r := Recommendation("Try Thief.", []EnrichedMovie{{Title: "Heat"}})
	if assert.NotNil(t, r.GPTResponse) {
		assert.Equal(t, "Try Thief.", *r.GPTResponse)
	}
	assert.Equal(t, Response{Message: "none"}, Notice("none"))
}
