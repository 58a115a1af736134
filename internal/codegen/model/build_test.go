package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/target"
	"github.com/gqlorm/gqlorm/internal/testutil"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

func entityNames(m *model.Model) []string {
	var names []string
	for _, e := range m.Entities {
		names = append(names, e.Name)
	}
	return names
}

func TestBuild_Blog(t *testing.T) {
	m := testutil.Model(t, testutil.BlogSDL, testutil.ModelOptions{})

	assert.Equal(t, target.Diesel, m.ORM)
	assert.Equal(t, target.Sqlite, m.Dialect)
	assert.Equal(t, []string{"User", "Post"}, entityNames(m))
	assert.Empty(t, m.Deferred)
	assert.Equal(t, 2, m.MigrationCount())
	assert.Equal(t, "001_create_users", m.MigrationName(1, "create_users"))

	user, ok := m.Entity("User")
	require.True(t, ok)
	assert.Equal(t, "users", user.Table)
	assert.Equal(t, "user", user.Module)
	assert.Equal(t, 1, user.Sequence)
	require.NotNil(t, user.PrimaryKey)
	assert.True(t, user.PrimaryKey.AutoGenerated)
	assert.False(t, user.PrimaryKey.Synthesized)

	email, ok := user.Column("email")
	require.True(t, ok)
	assert.True(t, email.Nullable)
	assert.Equal(t, "TEXT", email.Type.SQL)
	assert.Equal(t, "String", email.Type.Target)

	post, ok := m.Entity("Post")
	require.True(t, ok)
	assert.Equal(t, 2, post.Sequence)

	author, ok := post.Column("authorId")
	require.True(t, ok)
	assert.Equal(t, "author_id", author.Name)
	assert.Equal(t, "author_id", author.Ident)
	assert.Equal(t, "INTEGER", author.Type.SQL)
	assert.False(t, author.Nullable)
	require.NotNil(t, author.ForeignKey)
	assert.Same(t, user, author.ForeignKey.Target)
	assert.False(t, author.ForeignKey.Deferred)
	assert.Equal(t, "fk_posts_author_id", author.ForeignKey.ConstraintName())
	assert.Equal(t, "idx_posts_author_id", author.ForeignKey.IndexName())

	require.Len(t, post.BelongsTo, 1)
	assert.Equal(t, "Author", post.BelongsTo[0].Name)
	assert.Equal(t, relations.BelongsTo, post.BelongsTo[0].Cardinality)
	assert.True(t, post.BelongsTo[0].Primary)

	require.Len(t, user.HasMany, 1)
	assert.Equal(t, "Posts", user.HasMany[0].Name)
	assert.Same(t, post, user.HasMany[0].Target)
	assert.Len(t, m.Relations, 2)
}

func TestBuild_ColumnsSkipNavigationFields(t *testing.T) {
	sdl := `
type User { id: ID! posts: [Post!]! tags: [String!]! }
type Post { id: ID! author: User! }
`
	m := testutil.Model(t, sdl, testutil.ModelOptions{})

	user, _ := m.Entity("User")
	_, hasPosts := user.Column("posts")
	assert.False(t, hasPosts)

	// Test: scalar lists are stored through the JSON mapping
	tags, ok := user.Column("tags")
	require.True(t, ok)
	assert.Equal(t, "serde_json::Value", tags.Type.Target)

	post, _ := m.Entity("Post")
	assert.Len(t, post.Columns, 1)
	assert.Empty(t, post.ForeignKeys)
}

func TestBuild_SynthesizedPrimaryKey(t *testing.T) {
	sdl := `type Tag { label: String! }`
	m := testutil.Model(t, sdl, testutil.ModelOptions{})

	tag, ok := m.Entity("Tag")
	require.True(t, ok)
	require.Len(t, tag.Columns, 2)

	// Test: the synthesized key comes first and uses the ID mapping
	pk := tag.Columns[0]
	assert.Same(t, tag.PrimaryKey, pk)
	assert.Equal(t, "id", pk.Name)
	assert.True(t, pk.Synthesized)
	assert.True(t, pk.AutoGenerated)
	assert.False(t, pk.Nullable)
	assert.Equal(t, "INTEGER", pk.Type.SQL)
	assert.Equal(t, "label", tag.Columns[1].Name)
}

func TestBuild_DeclaredNonIDKeyIsNotAutoGenerated(t *testing.T) {
	sdl := `type Country { id: String! name: String! }`
	m := testutil.Model(t, sdl, testutil.ModelOptions{})

	country, _ := m.Entity("Country")
	require.NotNil(t, country.PrimaryKey)
	assert.Equal(t, "TEXT", country.PrimaryKey.Type.SQL)
	assert.False(t, country.PrimaryKey.AutoGenerated)
}

func TestBuild_PostgresEnums(t *testing.T) {
	sdl := `
enum Status { DRAFT IN_REVIEW PUBLISHED }
enum Unused { A }
type User { id: ID! name: String! }
type Post { id: ID! status: Status! authorId: ID! }
`
	m := testutil.Model(t, sdl, testutil.ModelOptions{Dialect: target.Postgres})

	require.Len(t, m.Enums, 2)
	status := m.Enums[0]
	assert.Equal(t, "Status", status.TypeName)
	assert.Equal(t, "status", status.SQLName)
	assert.True(t, status.Native)
	assert.Equal(t, []model.EnumValue{
		{Name: "DRAFT", Variant: "Draft"},
		{Name: "IN_REVIEW", Variant: "InReview"},
		{Name: "PUBLISHED", Variant: "Published"},
	}, status.Values)

	user, _ := m.Entity("User")
	post, _ := m.Entity("Post")

	// Test: an enum is created by the first migration using it; unused
	// enums go with the first table
	require.Len(t, post.Enums, 1)
	assert.Same(t, status, post.Enums[0])
	require.Len(t, user.Enums, 1)
	assert.Equal(t, "Unused", user.Enums[0].Name)

	col, _ := post.Column("status")
	assert.Same(t, status, col.Enum)
	assert.True(t, col.Type.NativeEnum)

	// Test: foreign keys take the target's key type
	author, _ := post.Column("authorId")
	assert.Equal(t, "UUID", author.Type.SQL)
	assert.True(t, user.PrimaryKey.AutoGenerated)
}

func TestBuild_SqliteEnumsAreNotNative(t *testing.T) {
	sdl := `
enum Role { ADMIN USER }
type User { id: ID! role: Role! }
`
	m := testutil.Model(t, sdl, testutil.ModelOptions{})

	user, _ := m.Entity("User")
	assert.Empty(t, user.Enums)
	assert.Empty(t, m.NativeEnums())

	role, _ := user.Column("role")
	require.NotNil(t, role.Enum)
	assert.Equal(t, "TEXT", role.Type.SQL)
}

func TestBuild_MutualCycle(t *testing.T) {
	sdl := `
type A { id: ID! bId: ID }
type B { id: ID! aId: ID! }
`
	m := testutil.Model(t, sdl, testutil.ModelOptions{Dialect: target.Postgres})

	assert.Equal(t, []string{"A", "B"}, entityNames(m))
	// Test: both keys of the cycle are deferred, in table order
	require.Len(t, m.Deferred, 2)
	assert.Equal(t, "b_id", m.Deferred[0].Column.Name)
	assert.Equal(t, "a_id", m.Deferred[1].Column.Name)
	assert.True(t, m.Deferred[0].Deferred)
	assert.Equal(t, 3, m.MigrationCount())

	b, _ := m.Entity("B")
	aID, _ := b.Column("aId")
	assert.True(t, aID.ForeignKey.Deferred)
}

func TestBuild_SelfReference(t *testing.T) {
	sdl := `type Employee { id: ID! name: String! managerId: ID }`
	m := testutil.Model(t, sdl, testutil.ModelOptions{Aliases: map[string]string{"manager": "Employee"}})

	employee, _ := m.Entity("Employee")
	require.Len(t, employee.BelongsTo, 1)
	assert.True(t, employee.BelongsTo[0].SelfReferential())
	assert.Equal(t, "Manager", employee.BelongsTo[0].Name)
	require.Len(t, employee.HasMany, 1)
	assert.Equal(t, "Employees", employee.HasMany[0].Name)

	require.Len(t, m.Deferred, 1)
	assert.Same(t, employee, m.Deferred[0].Target)
}

func TestBuild_SecondForeignKeyToSameTarget(t *testing.T) {
	sdl := `
type User { id: ID! name: String! }
type Message { id: ID! senderId: ID! recipientId: ID! }
`
	m := testutil.Model(t, sdl, testutil.ModelOptions{})

	msg, _ := m.Entity("Message")
	require.Len(t, msg.BelongsTo, 2)
	assert.Equal(t, "Sender", msg.BelongsTo[0].Name)
	assert.True(t, msg.BelongsTo[0].Primary)
	assert.Equal(t, "Recipient", msg.BelongsTo[1].Name)
	assert.False(t, msg.BelongsTo[1].Primary)

	user, _ := m.Entity("User")
	require.Len(t, user.HasMany, 2)
	assert.Equal(t, "Messages", user.HasMany[0].Name)
	assert.Equal(t, "RecipientMessages", user.HasMany[1].Name)
}

func TestBuild_ModuleCollision(t *testing.T) {
	tests := []struct {
		name    string
		sdl     string
		orm     target.ORM
		wantErr string
	}{
		{
			name:    "entities under diesel",
			sdl:     "type BlogPost { id: ID! }\ntype Blog_Post { id: ID! }",
			orm:     target.Diesel,
			wantErr: "BlogPost and Blog_Post both map to module blog_post.rs",
		},
		{
			name:    "entity and enum under seaorm",
			sdl:     "enum OrderState { OPEN }\ntype Order_State { id: ID! }",
			orm:     target.SeaOrm,
			wantErr: "both map to module order_state.rs",
		},
		{
			name: "entity and enum under diesel",
			sdl:  "enum OrderState { OPEN }\ntype Order_State { id: ID! }",
			orm:  target.Diesel,
		},
		{
			name: "gorm writes no module files",
			sdl:  "type BlogPost { id: ID! }\ntype Blog_Post { id: ID! }",
			orm:  target.Gorm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test: colliding module names fail the build before any emitter runs
			_, err := testutil.TryModel(t, tt.sdl, testutil.ModelOptions{ORM: tt.orm})
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_UnmappedScalar(t *testing.T) {
	sdl := `
scalar Money
type Item { id: ID! price: Money! }
`
	_, err := testutil.TryModel(t, sdl, testutil.ModelOptions{})
	require.Error(t, err)
	assert.True(t, typemap.IsUnmappedScalarError(err))
	assert.Contains(t, err.Error(), "Item.price")

	// Test: a scalar mapping rescues the same schema
	m := testutil.Model(t, sdl, testutil.ModelOptions{
		TypeMappings:    map[string]string{"Money": "rust_decimal::Decimal"},
		SQLTypeMappings: map[string]string{"Money": "NUMERIC(10,2)"},
	})
	item, _ := m.Entity("Item")
	price, _ := item.Column("price")
	assert.Equal(t, "rust_decimal::Decimal", price.Type.Target)
	assert.Equal(t, "NUMERIC(10,2)", price.Type.SQL)
}

func TestModel_MigrationName(t *testing.T) {
	m := &model.Model{GenerateMigrations: true, Entities: make([]*model.Entity, 1200)}
	assert.Equal(t, "0007_create_tags", m.MigrationName(7, "create_tags"))

	m.GenerateMigrations = false
	assert.Equal(t, 0, m.MigrationCount())
	assert.Equal(t, "001_x", m.MigrationName(1, "x"))
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "Post.ownerId: no entity", model.Warning{Type: "Post", Field: "ownerId", Message: "no entity"}.String())
	assert.Equal(t, "Post: skipped", model.Warning{Type: "Post", Message: "skipped"}.String())
	assert.Equal(t, "plain", model.Warning{Message: "plain"}.String())
}
