package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gqlorm/gqlorm/internal/target"
)

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		in     string
		snake  string
		camel  string
		pascal string
	}{
		{in: "authorId", snake: "author_id", camel: "authorId", pascal: "AuthorId"},
		{in: "BlogPost", snake: "blog_post", camel: "blogPost", pascal: "BlogPost"},
		{in: "created_at", snake: "created_at", camel: "createdAt", pascal: "CreatedAt"},
		{in: "id", snake: "id", camel: "id", pascal: "Id"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, Snake(tt.in))
			assert.Equal(t, tt.camel, Camel(tt.in))
			assert.Equal(t, tt.pascal, Pascal(tt.in))
		})
	}

	// Test: Go identifiers keep initialisms upper-case
	assert.Equal(t, "AuthorID", GoPascal("author_id"))
}

func TestPluralize(t *testing.T) {
	tests := map[string]string{
		"user":      "users",
		"category":  "categories",
		"day":       "days",
		"address":   "addresses",
		"box":       "boxes",
		"match":     "matches",
		"wish":      "wishes",
		"buzz":      "buzzes",
		"blog_post": "blog_posts",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Pluralize(in), in)
	}
}

func TestPluralizer(t *testing.T) {
	// Test: overrides win over both rules and match case-insensitively
	simple := NewPluralizer(PluralizerSimple, map[string]string{"Person": "people"})
	assert.Equal(t, "people", simple.Plural("person"))
	assert.Equal(t, "mouses", simple.Plural("mouse"))

	english := NewPluralizer("English", nil)
	assert.Equal(t, "people", english.Plural("person"))
	assert.Equal(t, "categories", english.Plural("category"))

	// Test: unknown kinds fall back to the simple rule
	fallback := NewPluralizer("klingon", nil)
	assert.Equal(t, "persons", fallback.Plural("person"))
}

func TestNamer_TableName(t *testing.T) {
	tests := []struct {
		convention target.Naming
		typeName   string
		want       string
	}{
		{target.SnakeCase, "User", "users"},
		{target.SnakeCase, "BlogPost", "blog_posts"},
		{target.SnakeCase, "Category", "categories"},
		{target.CamelCase, "BlogPost", "blogPosts"},
		{target.PascalCase, "BlogPost", "BlogPosts"},
	}
	for _, tt := range tests {
		t.Run(string(tt.convention)+"/"+tt.typeName, func(t *testing.T) {
			n := NewNamer(tt.convention, nil)
			assert.Equal(t, tt.want, n.TableName(tt.typeName))
		})
	}
}

func TestNamer_Identifiers(t *testing.T) {
	n := NewNamer("", nil)

	assert.Equal(t, target.SnakeCase, n.Convention())
	assert.Equal(t, "author_id", n.ColumnName("authorId"))
	assert.Equal(t, "blog_post", n.ModuleName("BlogPost"))
	assert.Equal(t, "BlogPost", n.TypeName("blogPost"))
	assert.Equal(t, "published_at", n.FieldName("publishedAt"))
	assert.Equal(t, "InReview", n.VariantName("IN_REVIEW"))
	assert.Equal(t, "Admin", n.VariantName("ADMIN"))
}

func TestNamer_Plural(t *testing.T) {
	n := NewNamer(target.SnakeCase, NewPluralizer(PluralizerSimple, map[string]string{"child": "children"}))
	assert.Equal(t, "children", n.Plural("child"))
	assert.Equal(t, "comments", n.Plural("comment"))
	assert.Equal(t, "children", n.TableName("Child"))
}
