// Package seaorm emits Sea-ORM entity modules and SQL migrations.
package seaorm

import (
	"fmt"
	"strings"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/codegen/rustgen"
	"github.com/gqlorm/gqlorm/internal/codegen/sqlddl"
	"github.com/gqlorm/gqlorm/internal/codegen/writer"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/target"
)

// EntitiesDir holds every generated module.
const EntitiesDir = "src/entities"

// Generator emits Sea-ORM code.
type Generator struct{}

// NewGenerator creates a Sea-ORM generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// ORM returns target.SeaOrm.
func (g *Generator) ORM() target.ORM {
	return target.SeaOrm
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "rust"
}

// Generate renders mod.rs, one module per entity and enum, and the
// migrations.
func (g *Generator) Generate(m *model.Model) ([]model.GeneratedFile, error) {
	var files []model.GeneratedFile
	if m.GenerateEntities {
		files = append(files, model.GeneratedFile{Path: EntitiesDir + "/mod.rs", Content: g.mod(m)})
		for _, e := range m.Entities {
			files = append(files, model.GeneratedFile{Path: modulePath(e.Module), Content: g.entity(m, e)})
		}
		for _, enum := range m.Enums {
			files = append(files, model.GeneratedFile{Path: modulePath(enum.Module), Content: g.enum(m, enum)})
		}
	}
	files = append(files, sqlddl.Files(m)...)
	return files, nil
}

func modulePath(module string) string {
	return fmt.Sprintf("%s/%s.rs", EntitiesDir, module)
}

func (g *Generator) mod(m *model.Model) string {
	w := rustgen.NewFile()

	var modules []string
	for _, e := range m.Entities {
		modules = append(modules, e.Module)
	}
	for _, enum := range m.Enums {
		modules = append(modules, enum.Module)
	}
	for _, mod := range modules {
		w.WriteLinef("pub mod %s;", rustgen.Ident(mod))
	}

	w.BlankLine()
	w.WriteBlock("pub mod prelude {", "}", func() {
		for _, e := range m.Entities {
			mod := rustgen.Ident(e.Module)
			w.WriteLinef("pub use super::%s::{ActiveModel as %sActiveModel, Column as %sColumn, Entity as %s, Model as %sModel};",
				mod, e.TypeName, e.TypeName, e.TypeName, e.TypeName)
		}
		for _, enum := range m.Enums {
			w.WriteLinef("pub use super::%s::%s;", rustgen.Ident(enum.Module), enum.TypeName)
		}
	})
	return w.String()
}

func enumPath(e *model.Enum) string {
	return "super::" + rustgen.Ident(e.Module) + "::" + e.TypeName
}

func columnVariant(c *model.Column) string {
	return naming.Pascal(c.Ident)
}

func (g *Generator) entity(m *model.Model, e *model.Entity) string {
	w := rustgen.NewFile()
	w.WriteLine("use sea_orm::entity::prelude::*;")
	w.WriteLine("use serde::{Deserialize, Serialize};")
	w.BlankLine()

	w.WriteDocComment(e.Description)
	w.WriteLine("#[derive(Clone, Debug, PartialEq, DeriveEntityModel, Serialize, Deserialize)]")
	w.WriteLinef("#[sea_orm(table_name = %s)]", rustgen.Quote(e.Table))
	w.WriteBlock("pub struct Model {", "}", func() {
		for _, col := range e.Columns {
			w.WriteDocComment(col.Description)
			if attrs := columnAttributes(col); len(attrs) > 0 {
				w.WriteLinef("#[sea_orm(%s)]", strings.Join(attrs, ", "))
			}
			w.WriteLinef("pub %s: %s,", rustgen.Ident(col.Ident), rustgen.FieldType(col, enumPath))
		}
	})

	w.BlankLine()
	rels := navigable(e)
	w.WriteLine("#[derive(Copy, Clone, Debug, EnumIter, DeriveRelation)]")
	if len(rels) == 0 {
		w.WriteLine("pub enum Relation {}")
	} else {
		w.WriteBlock("pub enum Relation {", "}", func() {
			for _, rel := range rels {
				writeRelationVariant(w, rel)
			}
		})
	}

	for _, rel := range rels {
		if !rel.Primary || rel.SelfReferential() {
			continue
		}
		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("impl Related<%s> for Entity {", entityPath(rel.Target)), "}", func() {
			w.WriteBlock("fn to() -> RelationDef {", "}", func() {
				w.WriteLinef("Relation::%s.def()", rel.Name)
			})
		})
	}

	w.BlankLine()
	w.WriteLine("impl ActiveModelBehavior for ActiveModel {}")
	return w.String()
}

// navigable lists the relation variants of an entity. Every BelongsTo gets
// one; a HasMany needs the reverse Related impl, which only primary
// relations between distinct entities have.
func navigable(e *model.Entity) []*model.Relation {
	rels := append([]*model.Relation(nil), e.BelongsTo...)
	for _, rel := range e.HasMany {
		if rel.Primary && !rel.SelfReferential() {
			rels = append(rels, rel)
		}
	}
	return rels
}

func entityPath(e *model.Entity) string {
	return "super::" + rustgen.Ident(e.Module) + "::Entity"
}

func writeRelationVariant(w *writer.Writer, rel *model.Relation) {
	if rel.Cardinality == relations.HasMany {
		w.WriteLinef("#[sea_orm(has_many = %s)]", rustgen.Quote(entityPath(rel.Target)))
		w.WriteLinef("%s,", rel.Name)
		return
	}

	targetEntity := entityPath(rel.Target)
	to := "super::" + rustgen.Ident(rel.Target.Module) + "::Column::" + columnVariant(rel.Target.PrimaryKey)
	if rel.SelfReferential() {
		targetEntity = "Entity"
		to = "Column::" + columnVariant(rel.Target.PrimaryKey)
	}
	w.WriteLine("#[sea_orm(")
	w.Indent()
	w.WriteLinef("belongs_to = %s,", rustgen.Quote(targetEntity))
	w.WriteLinef("from = %s,", rustgen.Quote("Column::"+columnVariant(rel.ForeignKey.Column)))
	w.WriteLinef("to = %s,", rustgen.Quote(to))
	w.WriteLine(`on_update = "Cascade",`)
	w.WriteLine(`on_delete = "Cascade"`)
	w.Dedent()
	w.WriteLine(")]")
	w.WriteLinef("%s,", rel.Name)
}

func columnAttributes(col *model.Column) []string {
	var attrs []string
	if col.PrimaryKey {
		attrs = append(attrs, "primary_key")
		if !col.AutoGenerated || !rustgen.IsInteger(col.Type.Target) {
			attrs = append(attrs, "auto_increment = false")
		}
	}
	if col.Name != rustgen.Ident(col.Ident) {
		attrs = append(attrs, "column_name = "+rustgen.Quote(col.Name))
	}
	if col.Type.Target == "String" && col.Type.SQL == "TEXT" {
		attrs = append(attrs, `column_type = "Text"`)
	}
	return attrs
}

func (g *Generator) enum(m *model.Model, enum *model.Enum) string {
	w := rustgen.NewFile()
	w.WriteLine("use sea_orm::entity::prelude::*;")
	w.WriteLine("use serde::{Deserialize, Serialize};")
	w.BlankLine()

	w.WriteDocComment(enum.Description)
	w.WriteLine("#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash, EnumIter, DeriveActiveEnum, Serialize, Deserialize)]")
	if enum.Native {
		w.WriteLinef(`#[sea_orm(rs_type = "String", db_type = "Enum", enum_name = %s)]`, rustgen.Quote(enum.SQLName))
	} else {
		w.WriteLine(`#[sea_orm(rs_type = "String", db_type = "String(StringLen::None)")]`)
	}
	w.WriteBlock(fmt.Sprintf("pub enum %s {", enum.TypeName), "}", func() {
		for _, v := range enum.Values {
			w.WriteLinef("#[sea_orm(string_value = %s)]", rustgen.Quote(v.Name))
			w.WriteLinef("#[serde(rename = %s)]", rustgen.Quote(v.Name))
			w.WriteLinef("%s,", v.Variant)
		}
	})
	return w.String()
}
