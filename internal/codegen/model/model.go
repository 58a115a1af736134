// Package model is the resolved, emitter-facing view of a generation run.
// Every emitter consumes the same Model, so adding an ORM target never
// touches schema building, type resolution, inference or ordering.
package model

import (
	"fmt"
	"strconv"

	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/target"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

// Model is the complete emitter input. Entities are in creation order.
type Model struct {
	ORM     target.ORM
	Dialect target.Dialect
	Naming  target.Naming

	Entities  []*Entity
	Enums     []*Enum
	Relations []*Relation
	// Deferred foreign keys are added after every table exists.
	Deferred []*ForeignKey

	GenerateEntities   bool
	GenerateMigrations bool
}

// Entity maps one GraphQL object type to one table.
type Entity struct {
	// Name is the GraphQL type name.
	Name string
	// TypeName is the PascalCase struct name.
	TypeName string
	// Module is the snake_case file and module name.
	Module string
	// Table is the table name in the configured naming convention.
	Table       string
	Description string

	Columns     []*Column
	PrimaryKey  *Column
	ForeignKeys []*ForeignKey
	BelongsTo   []*Relation
	HasMany     []*Relation

	// Sequence is the 1-based migration number of the CREATE TABLE.
	Sequence int
	// Enums lists native enum types first needed by this entity's migration.
	Enums []*Enum
}

// Column is one persisted field.
type Column struct {
	// Field is the GraphQL field name ("id" for a synthesized key).
	Field string
	// Name is the SQL column name.
	Name string
	// Ident is the snake_case struct field identifier.
	Ident       string
	Type        typemap.ResolvedType
	Nullable    bool
	PrimaryKey  bool
	Synthesized bool
	// AutoGenerated marks a key the database fills in on insert.
	AutoGenerated bool
	Enum          *Enum
	ForeignKey    *ForeignKey
	Description   string
}

// ForeignKey is a column constraint referencing another entity's key.
type ForeignKey struct {
	Entity   *Entity
	Column   *Column
	Target   *Entity
	Deferred bool
}

// ConstraintName is the name used when the constraint is added separately.
func (fk *ForeignKey) ConstraintName() string {
	return "fk_" + fk.Entity.Table + "_" + fk.Column.Name
}

// IndexName is the name of the index every foreign key column gets.
func (fk *ForeignKey) IndexName() string {
	return "idx_" + fk.Entity.Table + "_" + fk.Column.Name
}

// Relation is a navigable association between two entities.
type Relation struct {
	// Name is the PascalCase accessor name ("Author", "Posts").
	Name        string
	Entity      *Entity
	Target      *Entity
	ForeignKey  *ForeignKey
	Cardinality relations.Cardinality
	// Primary is set on the first relation between an entity pair; only
	// primary relations get join declarations and Related impls.
	Primary bool
}

// SelfReferential reports whether the relation points at its own entity.
func (r *Relation) SelfReferential() bool {
	return r.Entity == r.Target
}

// Enum is a GraphQL enum used by at least one column, or declared in the
// schema.
type Enum struct {
	Name string
	// TypeName is the PascalCase Rust or Go type name.
	TypeName string
	// Module is the snake_case file name.
	Module string
	// SQLName is the native type name on dialects with CREATE TYPE.
	SQLName     string
	Native      bool
	Description string
	Values      []EnumValue
}

// EnumValue is one enum member.
type EnumValue struct {
	// Name is the GraphQL value, stored verbatim in the database.
	Name string
	// Variant is the PascalCase variant identifier.
	Variant string
}

// MigrationCount returns the number of migrations the model produces.
func (m *Model) MigrationCount() int {
	if !m.GenerateMigrations {
		return 0
	}
	n := len(m.Entities)
	if len(m.Deferred) > 0 {
		n++
	}
	return n
}

// MigrationName formats a migration directory name with a zero-padded
// sequence number: three digits, widened when the run needs more.
func (m *Model) MigrationName(seq int, name string) string {
	width := len(strconv.Itoa(m.MigrationCount()))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%0*d_%s", width, seq, name)
}

// Entity returns the entity for a GraphQL type name.
func (m *Model) Entity(name string) (*Entity, bool) {
	for _, e := range m.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// NativeEnums returns the enums that need a CREATE TYPE.
func (m *Model) NativeEnums() []*Enum {
	var out []*Enum
	for _, e := range m.Enums {
		if e.Native {
			out = append(out, e)
		}
	}
	return out
}

// Column returns the column for a GraphQL field name.
func (e *Entity) Column(field string) (*Column, bool) {
	for _, c := range e.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return nil, false
}

// GeneratedFile is one output file, relative to the output directory.
type GeneratedFile struct {
	Path    string
	Content string
}

// Warning is a non-fatal finding reported with the summary.
type Warning struct {
	Stage   string
	Type    string
	Field   string
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Type != "" && w.Field != "":
		return fmt.Sprintf("%s.%s: %s", w.Type, w.Field, w.Message)
	case w.Type != "":
		return fmt.Sprintf("%s: %s", w.Type, w.Message)
	}
	return w.Message
}

// Summary describes a finished generation run.
type Summary struct {
	Entities      int
	Enums         int
	Migrations    int
	Relationships int
	Files         int
	Warnings      []Warning
}
