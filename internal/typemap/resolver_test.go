package typemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
)

const resolverSDL = `
scalar DateTime
scalar Money
scalar Email
enum Status { DRAFT PUBLISHED }

type Post {
  id: ID!
  title: String!
  price: Money
  contact: Email
  status: Status!
  tags: [String!]
  createdAt: DateTime!
  author: User
}

type User {
  name: String!
}
`

func mustGraph(t *testing.T, sdl string) *schema.SchemaGraph {
	t.Helper()
	g, err := schema.FromSDL(sdl)
	require.NoError(t, err)
	return g
}

func mustField(t *testing.T, g *schema.SchemaGraph, owner, name string) schema.FieldDef {
	t.Helper()
	def, ok := g.Lookup(owner)
	require.True(t, ok)
	f, ok := def.Field(name)
	require.True(t, ok)
	return f
}

func TestBuiltin_Exhaustive(t *testing.T) {
	// Test: every default scalar resolves to a non-empty type on every dialect
	for _, orm := range []target.ORM{target.Diesel, target.SeaOrm, target.Gorm} {
		for _, dialect := range target.Dialects {
			r, err := New(Options{ORM: orm, Dialect: dialect})
			require.NoError(t, err)
			for _, scalar := range Scalars() {
				rt, err := r.Scalar(scalar)
				require.NoError(t, err, "%s/%s/%s", orm, dialect, scalar)
				assert.NotEmpty(t, rt.Target, "%s/%s/%s", orm, dialect, scalar)
				assert.NotEmpty(t, rt.SQL, "%s/%s/%s", orm, dialect, scalar)
				assert.NotEmpty(t, rt.Diesel, "%s/%s/%s", orm, dialect, scalar)
				assert.Equal(t, OriginBuiltin, rt.Origin)
			}
		}
	}
}

func TestResolver_IDPerDialect(t *testing.T) {
	tests := []struct {
		dialect target.Dialect
		want    ResolvedType
	}{
		{target.Sqlite, ResolvedType{Target: "i32", SQL: "INTEGER", Diesel: "Integer"}},
		{target.Postgres, ResolvedType{Target: "uuid::Uuid", SQL: "UUID", Diesel: "Uuid"}},
		{target.Mysql, ResolvedType{Target: "u32", SQL: "INT UNSIGNED", Diesel: "Unsigned<Integer>"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			r, err := New(Options{ORM: target.Diesel, Dialect: tt.dialect})
			require.NoError(t, err)
			rt, err := r.Scalar(schema.ScalarID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt)
		})
	}

	// Test: Go targets use Go types
	r, err := New(Options{ORM: target.Gorm, Dialect: target.Postgres})
	require.NoError(t, err)
	rt, err := r.Scalar(schema.ScalarID)
	require.NoError(t, err)
	assert.Equal(t, "string", rt.Target)
}

func TestResolver_UnmappedScalar(t *testing.T) {
	g := mustGraph(t, resolverSDL)
	r, err := New(Options{ORM: target.Diesel, Dialect: target.Sqlite})
	require.NoError(t, err)

	_, err = r.Field(g, "Post", mustField(t, g, "Post", "price"))
	require.Error(t, err)

	var unmapped *UnmappedScalarError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, "Money", unmapped.Scalar)
	assert.Equal(t, "Post", unmapped.Type)
	assert.Equal(t, "price", unmapped.Field)
	assert.True(t, errors.Is(err, ErrUnmappedScalar))
	assert.True(t, IsUnmappedScalarError(err))
	assert.Contains(t, err.Error(), "scalar Money has no type mapping (used by Post.price)")
}

func TestResolver_OverridePrecedence(t *testing.T) {
	g := mustGraph(t, resolverSDL)
	r, err := New(Options{
		ORM:               target.Diesel,
		Dialect:           target.Postgres,
		TypeMappings:      map[string]string{"Money": "rust_decimal::Decimal", "String": "compact_str::CompactString"},
		SQLTypeMappings:   map[string]string{"Money": "NUMERIC(12,2)"},
		FieldOverrides:    map[string]string{"Post.price": "i64", "Post.contact": "String"},
		FieldSQLOverrides: map[string]string{"Post.contact": "VARCHAR(320)"},
	})
	require.NoError(t, err)

	// Test: scalar mapping is reflected verbatim
	title, err := r.Field(g, "Post", mustField(t, g, "Post", "title"))
	require.NoError(t, err)
	assert.Equal(t, "compact_str::CompactString", title.Target)
	assert.Equal(t, "TEXT", title.SQL)
	assert.Equal(t, OriginScalarOverride, title.Origin)

	// Test: field override beats the scalar mapping for the same scalar
	price, err := r.Field(g, "Post", mustField(t, g, "Post", "price"))
	require.NoError(t, err)
	assert.Equal(t, "i64", price.Target)
	assert.Equal(t, "NUMERIC(12,2)", price.SQL)
	assert.Equal(t, "Numeric", price.Diesel)
	assert.Equal(t, OriginFieldOverride, price.Origin)

	// Test: a field override rescues an otherwise unmapped scalar
	contact, err := r.Field(g, "Post", mustField(t, g, "Post", "contact"))
	require.NoError(t, err)
	assert.Equal(t, ResolvedType{Target: "String", SQL: "VARCHAR(320)", Diesel: "Text", Origin: OriginFieldOverride}, contact)
}

func TestResolver_CustomScalarSQLOnly(t *testing.T) {
	// Test: a SQL-only mapping derives the target type from the column category
	r, err := New(Options{ORM: target.Gorm, Dialect: target.Mysql, SQLTypeMappings: map[string]string{"Money": "DECIMAL(10,2)"}})
	require.NoError(t, err)

	rt, err := r.Scalar("Money")
	require.NoError(t, err)
	assert.Equal(t, ResolvedType{Target: "string", SQL: "DECIMAL(10,2)", Diesel: "Numeric", Origin: OriginScalarOverride}, rt)

	// Test: a target-only mapping is stored as text
	r, err = New(Options{ORM: target.Diesel, Dialect: target.Sqlite, TypeMappings: map[string]string{"Email": "String"}})
	require.NoError(t, err)
	rt, err = r.Scalar("Email")
	require.NoError(t, err)
	assert.Equal(t, "TEXT", rt.SQL)
	assert.Equal(t, "Text", rt.Diesel)
}

func TestResolver_Enums(t *testing.T) {
	g := mustGraph(t, resolverSDL)
	status := mustField(t, g, "Post", "status")

	tests := []struct {
		dialect target.Dialect
		want    ResolvedType
	}{
		{target.Sqlite, ResolvedType{Target: "Status", SQL: "TEXT", Diesel: "Text", Origin: OriginEnum, Enum: "Status"}},
		{target.Postgres, ResolvedType{Target: "Status", SQL: "status", Diesel: "crate::schema::sql_types::Status", Origin: OriginEnum, Enum: "Status", NativeEnum: true}},
		{target.Mysql, ResolvedType{Target: "Status", SQL: "ENUM('DRAFT', 'PUBLISHED')", Diesel: "Text", Origin: OriginEnum, Enum: "Status"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			r, err := New(Options{ORM: target.SeaOrm, Dialect: tt.dialect})
			require.NoError(t, err)
			rt, err := r.Field(g, "Post", status)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt)
		})
	}

	// Test: enum SQL type is overridable by name
	r, err := New(Options{Dialect: target.Postgres, SQLTypeMappings: map[string]string{"Status": "TEXT"}})
	require.NoError(t, err)
	rt, err := r.Field(g, "Post", status)
	require.NoError(t, err)
	assert.Equal(t, "TEXT", rt.SQL)
	assert.False(t, rt.NativeEnum)
}

func TestResolver_ListsAndNavigation(t *testing.T) {
	g := mustGraph(t, resolverSDL)
	r, err := New(Options{ORM: target.Diesel, Dialect: target.Postgres})
	require.NoError(t, err)

	// Test: scalar lists are JSON documents
	tags, err := r.Field(g, "Post", mustField(t, g, "Post", "tags"))
	require.NoError(t, err)
	assert.Equal(t, "serde_json::Value", tags.Target)
	assert.Equal(t, "JSONB", tags.SQL)

	// Test: object-typed fields are not columns
	_, err = r.Field(g, "Post", mustField(t, g, "Post", "author"))
	require.Error(t, err)
	assert.False(t, IsUnmappedScalarError(err))
}

func TestResolver_ListOfUnmappedScalar(t *testing.T) {
	g := mustGraph(t, `
scalar Money
type Invoice { id: ID! totals: [Money!]! }
`)
	r, err := New(Options{ORM: target.Diesel, Dialect: target.Postgres})
	require.NoError(t, err)
	totals := mustField(t, g, "Invoice", "totals")

	// Test: a list does not hide an unmapped element scalar
	_, err = r.Field(g, "Invoice", totals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmappedScalar))
	assert.Contains(t, err.Error(), "used by Invoice.totals")

	// Test: once the scalar is mapped the list is a JSON column again
	r, err = New(Options{ORM: target.Diesel, Dialect: target.Postgres, TypeMappings: map[string]string{"Money": "rust_decimal::Decimal"}})
	require.NoError(t, err)
	rt, err := r.Field(g, "Invoice", totals)
	require.NoError(t, err)
	assert.Equal(t, "serde_json::Value", rt.Target)
	assert.Equal(t, "JSONB", rt.SQL)
}

func TestResolver_Key(t *testing.T) {
	g := mustGraph(t, resolverSDL)
	r, err := New(Options{ORM: target.Diesel, Dialect: target.Mysql, FieldOverrides: map[string]string{"Post.id": "u64"}})
	require.NoError(t, err)

	post, _ := g.Lookup("Post")
	key, err := r.Key(g, post)
	require.NoError(t, err)
	assert.Equal(t, "u64", key.Target)
	assert.Equal(t, "INT UNSIGNED", key.SQL)

	// Test: entities without an id field get the ID scalar
	user, _ := g.Lookup("User")
	key, err = r.Key(g, user)
	require.NoError(t, err)
	assert.Equal(t, "u32", key.Target)
}

func TestNew_InvalidOverride(t *testing.T) {
	_, err := New(Options{Dialect: target.Postgres, SQLTypeMappings: map[string]string{"Money": "definitely_not_a_type"}})
	require.Error(t, err)

	var oe *OverrideError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "Money", oe.Key)
}
