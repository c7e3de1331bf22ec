// Package selfquery turns natural-language movie queries into a semantic
// search string plus structured metadata filters, and runs them against the
// vector store.
package selfquery

import (
	"fmt"
	"strings"

	"cinechat/internal/domain"
)

// AttributeType is the declared type of a filterable attribute.
type AttributeType string

const (
	TypeString  AttributeType = "string"
	TypeInteger AttributeType = "integer"
	TypeFloat   AttributeType = "float"
)

// AttributeInfo describes one filterable metadata field.
type AttributeInfo struct {
	Name        string
	Description string
	Type        AttributeType
}

// Schema describes the indexed corpus to the query translator.
type Schema struct {
	ContentDescription string
	Attributes         []AttributeInfo
}

// MovieSchema is the schema of the movie catalog.
func MovieSchema() Schema {
	return Schema{
		ContentDescription: "Detailed information about movies, including title, director, actors, genres, plot, and summary.",
		Attributes: []AttributeInfo{
			{Name: "title", Description: "The title of the movie", Type: TypeString},
			{Name: "director", Description: "The director of the movie", Type: TypeString},
			{Name: "actors", Description: "The actors in the movie", Type: TypeString},
			{Name: "genres", Description: "The genres of the movie", Type: TypeString},
			{Name: "year", Description: "The release year of the movie", Type: TypeInteger},
			{Name: "rating", Description: "The rating of the movie", Type: TypeFloat},
		},
	}
}

func (s Schema) attribute(name string) (AttributeInfo, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeInfo{}, false
}

var allowedComparators = map[AttributeType][]domain.Comparator{
	TypeString:  {domain.CmpEq, domain.CmpNe, domain.CmpContain, domain.CmpIn},
	TypeInteger: {domain.CmpEq, domain.CmpNe, domain.CmpGt, domain.CmpGte, domain.CmpLt, domain.CmpLte, domain.CmpIn},
	TypeFloat:   {domain.CmpEq, domain.CmpNe, domain.CmpGt, domain.CmpGte, domain.CmpLt, domain.CmpLte, domain.CmpIn},
}

// render writes the attribute table used in the translation prompt.
func (s Schema) render() string {
	var b strings.Builder
	for _, a := range s.Attributes {
		fmt.Fprintf(&b, "- %s (%s): %s\n", a.Name, a.Type, a.Description)
	}
	return b.String()
}
