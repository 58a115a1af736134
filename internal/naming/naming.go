// Package naming converts GraphQL type and field names into the identifiers
// used by generated code: table names, column names, Rust and Go identifiers.
package naming

import (
	"strings"

	"github.com/ettle/strcase"
	"github.com/jinzhu/inflection"

	"github.com/gqlorm/gqlorm/internal/target"
)

// Snake converts s to snake_case ("authorId" -> "author_id").
func Snake(s string) string {
	return strcase.ToSnake(s)
}

// Camel converts s to camelCase.
func Camel(s string) string {
	return strcase.ToCamel(s)
}

// Pascal converts s to PascalCase ("blog_post" -> "BlogPost").
func Pascal(s string) string {
	return strcase.ToPascal(s)
}

// GoPascal converts s to an exported Go identifier, honoring Go initialisms
// ("author_id" -> "AuthorID").
func GoPascal(s string) string {
	return strcase.ToGoPascal(s)
}

// Apply renders s in the given convention.
func Apply(convention target.Naming, s string) string {
	switch convention {
	case target.CamelCase:
		return Camel(s)
	case target.PascalCase:
		return Pascal(s)
	default:
		return Snake(s)
	}
}

// Pluralizer turns a singular noun into its plural.
type Pluralizer interface {
	Plural(word string) string
}

// Pluralizer kinds accepted by NewPluralizer.
const (
	PluralizerSimple  = "simple"
	PluralizerEnglish = "english"
)

// NewPluralizer returns the pluralizer for kind. Overrides map a singular
// (matched case-insensitively) to a fixed plural and win over the rule.
// Unknown kinds fall back to the simple rule.
func NewPluralizer(kind string, overrides map[string]string) Pluralizer {
	lowered := make(map[string]string, len(overrides))
	for k, v := range overrides {
		lowered[strings.ToLower(k)] = v
	}
	if strings.EqualFold(kind, PluralizerEnglish) {
		return &englishPluralizer{overrides: lowered}
	}
	return &simplePluralizer{overrides: lowered}
}

type simplePluralizer struct {
	overrides map[string]string
}

func (p *simplePluralizer) Plural(word string) string {
	if plural, ok := p.overrides[strings.ToLower(word)]; ok {
		return plural
	}
	return Pluralize(word)
}

type englishPluralizer struct {
	overrides map[string]string
}

func (p *englishPluralizer) Plural(word string) string {
	if plural, ok := p.overrides[strings.ToLower(word)]; ok {
		return plural
	}
	return inflection.Plural(word)
}

// Pluralize applies the fixed pluralization rule:
//
//	consonant + "y"         -> "ies"   (category -> categories)
//	"s", "x", "z", "ch", "sh" -> + "es"  (address -> addresses)
//	anything else           -> + "s"   (user -> users)
//
// Only the final word matters, so snake_case input pluralizes its last
// segment.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	switch {
	case len(lower) > 1 && lower[len(lower)-1] == 'y' && !isVowel(lower[len(lower)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"), strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return word + "es"
	}
	return word + "s"
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}

// Namer derives generated identifiers under one naming convention.
type Namer struct {
	convention target.Naming
	plural     Pluralizer
}

// NewNamer creates a Namer. A nil pluralizer selects the simple rule.
func NewNamer(convention target.Naming, plural Pluralizer) *Namer {
	if plural == nil {
		plural = NewPluralizer(PluralizerSimple, nil)
	}
	if convention == "" {
		convention = target.SnakeCase
	}
	return &Namer{convention: convention, plural: plural}
}

// Convention returns the naming convention in use.
func (n *Namer) Convention() target.Naming {
	return n.convention
}

// TableName pluralizes the snake_case form of a type name and renders it in
// the configured convention: "BlogPost" -> "blog_posts" | "blogPosts" |
// "BlogPosts".
func (n *Namer) TableName(typeName string) string {
	return Apply(n.convention, n.plural.Plural(Snake(typeName)))
}

// Plural pluralizes word with the configured pluralizer.
func (n *Namer) Plural(word string) string {
	return n.plural.Plural(word)
}

// ColumnName renders a field name in the configured convention.
func (n *Namer) ColumnName(field string) string {
	return Apply(n.convention, field)
}

// ModuleName is the snake_case file or module name for a type.
func (n *Namer) ModuleName(typeName string) string {
	return Snake(typeName)
}

// TypeName is the PascalCase Rust type name for a GraphQL type.
func (n *Namer) TypeName(typeName string) string {
	return Pascal(typeName)
}

// FieldName is the snake_case Rust struct field for a GraphQL field.
func (n *Namer) FieldName(field string) string {
	return Snake(field)
}

// VariantName is the PascalCase variant for an enum value ("IN_REVIEW" ->
// "InReview").
func (n *Namer) VariantName(value string) string {
	return Pascal(strings.ToLower(value))
}
