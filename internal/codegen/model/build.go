package model

import (
	"fmt"
	"strings"

	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/ordering"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

// Input bundles the upstream results a Model is built from.
type Input struct {
	Graph     *schema.SchemaGraph
	Relations *relations.Graph
	Plan      *ordering.Plan
	Resolver  *typemap.Resolver
	Namer     *naming.Namer
	ORM       target.ORM

	GenerateEntities   bool
	GenerateMigrations bool
}

// Build resolves every column and relation. All type resolution errors
// surface here, before any emitter runs.
func Build(in Input) (*Model, error) {
	m := &Model{
		ORM:                in.ORM,
		Dialect:            in.Resolver.Dialect(),
		Naming:             in.Namer.Convention(),
		GenerateEntities:   in.GenerateEntities,
		GenerateMigrations: in.GenerateMigrations,
	}

	enums := make(map[string]*Enum)
	for _, def := range in.Graph.OfKind(schema.KindEnum) {
		enum := buildEnum(in, def)
		enums[def.Name] = enum
		m.Enums = append(m.Enums, enum)
	}

	for i, name := range in.Plan.Order {
		def, ok := in.Graph.Types[name]
		if !ok {
			return nil, fmt.Errorf("ordered entity %s is not in the schema", name)
		}
		entity, err := buildEntity(in, def, enums)
		if err != nil {
			return nil, err
		}
		entity.Sequence = i + 1
		m.Entities = append(m.Entities, entity)
	}
	if err := checkModules(m); err != nil {
		return nil, err
	}

	if err := linkRelations(in, m); err != nil {
		return nil, err
	}
	placeNativeEnums(m)
	return m, nil
}

// checkModules rejects type names that would share a Rust module file.
// Diesel writes one file per entity, SeaORM one per entity and enum.
func checkModules(m *Model) error {
	if !m.GenerateEntities || m.ORM.Language() != "rust" {
		return nil
	}
	owners := make(map[string]string)
	claim := func(module, name string) error {
		if other, ok := owners[module]; ok {
			return fmt.Errorf("%s and %s both map to module %s.rs", other, name, module)
		}
		owners[module] = name
		return nil
	}
	for _, e := range m.Entities {
		if err := claim(e.Module, e.Name); err != nil {
			return err
		}
	}
	if m.ORM != target.SeaOrm {
		return nil
	}
	for _, enum := range m.Enums {
		if err := claim(enum.Module, enum.Name); err != nil {
			return err
		}
	}
	return nil
}

func buildEnum(in Input, def *schema.TypeDef) *Enum {
	rt := in.Resolver.Enum(def)
	enum := &Enum{
		Name:        def.Name,
		TypeName:    in.Namer.TypeName(def.Name),
		Module:      in.Namer.ModuleName(def.Name),
		Native:      rt.NativeEnum,
		Description: def.Description,
	}
	if rt.NativeEnum {
		enum.SQLName = rt.SQL
	}
	for _, v := range def.Values {
		enum.Values = append(enum.Values, EnumValue{Name: v, Variant: in.Namer.VariantName(v)})
	}
	return enum
}

func buildEntity(in Input, def *schema.TypeDef, enums map[string]*Enum) (*Entity, error) {
	e := &Entity{
		Name:        def.Name,
		TypeName:    in.Namer.TypeName(def.Name),
		Module:      in.Namer.ModuleName(def.Name),
		Table:       in.Namer.TableName(def.Name),
		Description: def.Description,
	}

	idBuiltin, _ := typemap.Builtin(schema.ScalarID, in.Resolver.Dialect())

	for _, f := range def.Fields {
		kind, _ := in.Graph.KindOf(f.Type)
		if kind != schema.KindScalar && kind != schema.KindEnum {
			continue
		}

		rt, err := in.Resolver.Field(in.Graph, def.Name, f)
		if err != nil {
			return nil, err
		}

		if edge, ok := in.Relations.ForeignKey(def.Name, f.Name); ok && rt.Origin != typemap.OriginFieldOverride {
			key, err := in.Resolver.Key(in.Graph, in.Graph.Types[edge.To])
			if err != nil {
				return nil, err
			}
			rt = key
		}

		col := &Column{
			Field:       f.Name,
			Name:        in.Namer.ColumnName(f.Name),
			Ident:       in.Namer.FieldName(f.Name),
			Type:        rt,
			Nullable:    f.Nullable,
			Description: f.Description,
		}
		if rt.Enum != "" {
			col.Enum = enums[rt.Enum]
		}
		if f.Name == "id" && !f.IsList {
			col.PrimaryKey = true
			col.Nullable = false
			col.AutoGenerated = rt.SQL == idBuiltin.SQL && rt.Origin == typemap.OriginBuiltin
			e.PrimaryKey = col
		}
		e.Columns = append(e.Columns, col)
	}

	if e.PrimaryKey == nil {
		key, err := in.Resolver.Scalar(schema.ScalarID)
		if err != nil {
			return nil, err
		}
		e.PrimaryKey = &Column{
			Field:         "id",
			Name:          in.Namer.ColumnName("id"),
			Ident:         "id",
			Type:          key,
			PrimaryKey:    true,
			Synthesized:   true,
			AutoGenerated: key.SQL == idBuiltin.SQL,
		}
		e.Columns = append([]*Column{e.PrimaryKey}, e.Columns...)
	}
	return e, nil
}

func linkRelations(in Input, m *Model) error {
	pairs := make(map[[2]string]bool)

	for _, edge := range in.Relations.BelongsTo() {
		from, okFrom := m.Entity(edge.From)
		to, okTo := m.Entity(edge.To)
		if !okFrom || !okTo {
			continue
		}
		col, ok := from.Column(edge.ForeignKey)
		if !ok {
			return fmt.Errorf("foreign key %s.%s has no column", edge.From, edge.ForeignKey)
		}

		fk := &ForeignKey{Entity: from, Column: col, Target: to, Deferred: in.Plan.IsDeferred(edge.From, edge.ForeignKey)}
		col.ForeignKey = fk
		from.ForeignKeys = append(from.ForeignKeys, fk)

		pair := [2]string{edge.From, edge.To}
		primary := !pairs[pair]
		pairs[pair] = true

		noun := referenceNoun(edge.ForeignKey)
		belongs := &Relation{
			Name:        naming.Pascal(noun),
			Entity:      from,
			Target:      to,
			ForeignKey:  fk,
			Cardinality: relations.BelongsTo,
			Primary:     primary,
		}
		hasMany := &Relation{
			Name:        naming.Pascal(in.Namer.Plural(naming.Snake(edge.From))),
			Entity:      to,
			Target:      from,
			ForeignKey:  fk,
			Cardinality: relations.HasMany,
			Primary:     primary,
		}
		if !primary {
			hasMany.Name = naming.Pascal(noun) + hasMany.Name
		}
		from.BelongsTo = append(from.BelongsTo, belongs)
		to.HasMany = append(to.HasMany, hasMany)
		m.Relations = append(m.Relations, belongs, hasMany)
	}

	for _, edge := range in.Plan.Deferred {
		from, ok := m.Entity(edge.From)
		if !ok {
			continue
		}
		for _, fk := range from.ForeignKeys {
			if fk.Column.Field == edge.ForeignKey {
				m.Deferred = append(m.Deferred, fk)
			}
		}
	}
	return nil
}

// referenceNoun strips the Id suffix: "authorId" -> "author".
func referenceNoun(field string) string {
	noun := field
	if len(noun) > 2 && strings.EqualFold(noun[len(noun)-2:], "id") {
		noun = noun[:len(noun)-2]
	}
	return strings.TrimRight(noun, "_")
}

// placeNativeEnums assigns each native enum to the first migration whose
// table uses it. Unused native enums go with the first table.
func placeNativeEnums(m *Model) {
	placed := make(map[*Enum]bool)
	for _, e := range m.Entities {
		for _, col := range e.Columns {
			if col.Enum != nil && col.Enum.Native && col.Type.NativeEnum && !placed[col.Enum] {
				placed[col.Enum] = true
				e.Enums = append(e.Enums, col.Enum)
			}
		}
	}
	if len(m.Entities) == 0 {
		return
	}
	for _, enum := range m.NativeEnums() {
		if !placed[enum] {
			m.Entities[0].Enums = append(m.Entities[0].Enums, enum)
		}
	}
}
