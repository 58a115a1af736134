// Package diesel emits Diesel table declarations, model structs and SQL
// migrations.
package diesel

import (
	"fmt"
	"strings"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/codegen/rustgen"
	"github.com/gqlorm/gqlorm/internal/codegen/sqlddl"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Output paths relative to the output directory.
const (
	SchemaPath   = "src/schema.rs"
	EntitiesDir  = "src/entities"
	EnumsPath    = "src/enums.rs"
	enumsModPath = "crate::enums::"
)

// Generator emits Diesel code.
type Generator struct{}

// NewGenerator creates a Diesel generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// ORM returns target.Diesel.
func (g *Generator) ORM() target.ORM {
	return target.Diesel
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "rust"
}

// Generate renders schema.rs, one model file per entity, the enum module
// and the migrations.
func (g *Generator) Generate(m *model.Model) ([]model.GeneratedFile, error) {
	var files []model.GeneratedFile
	if m.GenerateEntities {
		files = append(files, model.GeneratedFile{Path: SchemaPath, Content: g.schema(m)})
		files = append(files, model.GeneratedFile{Path: EntitiesDir + "/mod.rs", Content: g.entitiesMod(m)})
		for _, e := range m.Entities {
			files = append(files, model.GeneratedFile{
				Path:    fmt.Sprintf("%s/%s.rs", EntitiesDir, e.Module),
				Content: g.entity(m, e),
			})
		}
		if len(m.Enums) > 0 {
			enums, err := g.enums(m)
			if err != nil {
				return nil, err
			}
			files = append(files, model.GeneratedFile{Path: EnumsPath, Content: enums})
		}
	}
	files = append(files, sqlddl.Files(m)...)
	return files, nil
}

func tableIdent(e *model.Entity) string {
	return rustgen.Ident(naming.Snake(e.Table))
}

func columnIdent(c *model.Column) string {
	return rustgen.Ident(c.Ident)
}

func backend(d target.Dialect) string {
	switch d {
	case target.Postgres:
		return "diesel::pg::Pg"
	case target.Mysql:
		return "diesel::mysql::Mysql"
	}
	return "diesel::sqlite::Sqlite"
}

func (g *Generator) schema(m *model.Model) string {
	w := rustgen.NewFile()

	if native := m.NativeEnums(); len(native) > 0 {
		w.WriteBlock("pub mod sql_types {", "}", func() {
			for i, enum := range native {
				if i > 0 {
					w.BlankLine()
				}
				w.WriteLine("#[derive(diesel::query_builder::QueryId, diesel::sql_types::SqlType)]")
				w.WriteLinef("#[diesel(postgres_type(name = %s))]", rustgen.Quote(enum.SQLName))
				w.WriteLinef("pub struct %s;", enum.TypeName)
			}
		})
		w.BlankLine()
	}

	for _, e := range m.Entities {
		w.WriteBlock("diesel::table! {", "}", func() {
			w.WriteLine("use diesel::sql_types::*;")
			w.BlankLine()
			w.WriteDocComment(e.Description)
			if ident := tableIdent(e); ident != e.Table {
				w.WriteLinef("#[sql_name = %s]", rustgen.Quote(e.Table))
			}
			w.WriteBlock(fmt.Sprintf("%s (%s) {", tableIdent(e), columnIdent(e.PrimaryKey)), "}", func() {
				for _, col := range e.Columns {
					w.WriteDocComment(col.Description)
					if ident := columnIdent(col); ident != col.Name {
						w.WriteLinef("#[sql_name = %s]", rustgen.Quote(col.Name))
					}
					sqlType := col.Type.Diesel
					if col.Nullable {
						sqlType = "Nullable<" + sqlType + ">"
					}
					w.WriteLinef("%s -> %s,", columnIdent(col), sqlType)
				}
			})
		})
		w.BlankLine()
	}

	var joins []string
	for _, e := range m.Entities {
		for _, rel := range e.BelongsTo {
			if rel.Primary && !rel.SelfReferential() {
				joins = append(joins, fmt.Sprintf("diesel::joinable!(%s -> %s (%s));",
					tableIdent(e), tableIdent(rel.Target), columnIdent(rel.ForeignKey.Column)))
			}
		}
	}
	for _, j := range joins {
		w.WriteLine(j)
	}
	if len(joins) > 0 {
		w.BlankLine()
	}

	if len(m.Entities) > 1 {
		w.WriteBlock("diesel::allow_tables_to_appear_in_same_query!(", ");", func() {
			for _, e := range m.Entities {
				w.WriteLinef("%s,", tableIdent(e))
			}
		})
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

func (g *Generator) entitiesMod(m *model.Model) string {
	w := rustgen.NewFile()
	for _, e := range m.Entities {
		w.WriteLinef("pub mod %s;", rustgen.Ident(e.Module))
	}
	if len(m.Entities) > 0 {
		w.BlankLine()
	}
	for _, e := range m.Entities {
		exports := []string{e.TypeName}
		if len(insertable(e)) > 0 {
			exports = []string{"New" + e.TypeName, e.TypeName}
		}
		w.WriteLinef("pub use %s::{%s};", rustgen.Ident(e.Module), strings.Join(exports, ", "))
	}
	return w.String()
}

// insertable lists the columns of the New<T> struct: everything but a key
// the database fills in.
func insertable(e *model.Entity) []*model.Column {
	var cols []*model.Column
	for _, col := range e.Columns {
		if col.PrimaryKey && col.AutoGenerated {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func enumPath(e *model.Enum) string {
	return enumsModPath + e.TypeName
}

func (g *Generator) entity(m *model.Model, e *model.Entity) string {
	w := rustgen.NewFile()
	table := tableIdent(e)

	var parents []*model.Relation
	for _, rel := range e.BelongsTo {
		if rel.Primary && !rel.SelfReferential() {
			parents = append(parents, rel)
		}
	}

	w.WriteLine("use diesel::prelude::*;")
	w.WriteLine("use serde::{Deserialize, Serialize};")
	w.BlankLine()
	w.WriteLinef("use crate::schema::%s;", table)
	seen := make(map[string]bool)
	for _, rel := range parents {
		if !seen[rel.Target.Name] {
			seen[rel.Target.Name] = true
			w.WriteLinef("use super::%s::%s;", rustgen.Ident(rel.Target.Module), rel.Target.TypeName)
		}
	}
	w.BlankLine()

	derives := []string{"Debug", "Clone", "PartialEq", "Queryable", "Selectable", "Identifiable"}
	if len(parents) > 0 {
		derives = append(derives, "Associations")
	}
	derives = append(derives, "Serialize", "Deserialize")

	w.WriteDocComment(e.Description)
	w.WriteLinef("#[derive(%s)]", strings.Join(derives, ", "))
	w.WriteLinef("#[diesel(table_name = %s)]", table)
	for _, rel := range parents {
		w.WriteLinef("#[diesel(belongs_to(%s, foreign_key = %s))]", rel.Target.TypeName, columnIdent(rel.ForeignKey.Column))
	}
	w.WriteLinef("#[diesel(check_for_backend(%s))]", backend(m.Dialect))
	w.WriteBlock(fmt.Sprintf("pub struct %s {", e.TypeName), "}", func() {
		for _, col := range e.Columns {
			w.WriteDocComment(col.Description)
			w.WriteLinef("pub %s: %s,", columnIdent(col), rustgen.FieldType(col, enumPath))
		}
	})

	if cols := insertable(e); len(cols) > 0 {
		w.BlankLine()
		w.WriteLinef("/// Insertable form of [`%s`].", e.TypeName)
		w.WriteLine("#[derive(Debug, Clone, Insertable, Serialize, Deserialize)]")
		w.WriteLinef("#[diesel(table_name = %s)]", table)
		w.WriteBlock(fmt.Sprintf("pub struct New%s {", e.TypeName), "}", func() {
			for _, col := range cols {
				w.WriteLinef("pub %s: %s,", columnIdent(col), rustgen.FieldType(col, enumPath))
			}
		})
	}
	return w.String()
}

func (g *Generator) enums(m *model.Model) (string, error) {
	w := rustgen.NewFile()
	back := backend(m.Dialect)

	w.WriteLine("use diesel::deserialize::{self, FromSql, FromSqlRow};")
	w.WriteLine("use diesel::expression::AsExpression;")
	w.WriteLine("use diesel::serialize::{self, IsNull, Output, ToSql};")
	if m.Dialect != target.Sqlite {
		w.WriteLine("use std::io::Write;")
	}
	w.WriteLine("use serde::{Deserialize, Serialize};")

	for _, enum := range m.Enums {
		if len(enum.Values) == 0 {
			return "", fmt.Errorf("enum %s has no values", enum.Name)
		}
		sqlType := "diesel::sql_types::Text"
		if enum.Native {
			sqlType = "crate::schema::sql_types::" + enum.TypeName
		}

		w.BlankLine()
		w.WriteDocComment(enum.Description)
		w.WriteLine("#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash, AsExpression, FromSqlRow, Serialize, Deserialize)]")
		w.WriteLinef("#[diesel(sql_type = %s)]", sqlType)
		w.WriteBlock(fmt.Sprintf("pub enum %s {", enum.TypeName), "}", func() {
			for _, v := range enum.Values {
				w.WriteLinef("#[serde(rename = %s)]", rustgen.Quote(v.Name))
				w.WriteLinef("%s,", v.Variant)
			}
		})

		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("impl %s {", enum.TypeName), "}", func() {
			w.WriteBlock("pub fn as_str(&self) -> &'static str {", "}", func() {
				w.WriteBlock("match self {", "}", func() {
					for _, arm := range rustgen.Variants(enum) {
						w.WriteLine(arm)
					}
				})
			})
		})

		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("impl std::str::FromStr for %s {", enum.TypeName), "}", func() {
			w.WriteLine("type Err = String;")
			w.BlankLine()
			w.WriteBlock("fn from_str(s: &str) -> Result<Self, Self::Err> {", "}", func() {
				w.WriteBlock("match s {", "}", func() {
					for _, v := range enum.Values {
						w.WriteLinef("%s => Ok(%s::%s),", rustgen.Quote(v.Name), enum.TypeName, v.Variant)
					}
					w.WriteLinef("other => Err(format!(\"unknown %s value: {other}\")),", enum.TypeName)
				})
			})
		})

		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("impl ToSql<%s, %s> for %s {", sqlType, back, enum.TypeName), "}", func() {
			w.WriteBlock(fmt.Sprintf("fn to_sql<'b>(&'b self, out: &mut Output<'b, '_, %s>) -> serialize::Result {", back), "}", func() {
				if m.Dialect == target.Sqlite {
					w.WriteLine("out.set_value(self.as_str());")
				} else {
					w.WriteLine("out.write_all(self.as_str().as_bytes())?;")
				}
				w.WriteLine("Ok(IsNull::No)")
			})
		})

		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("impl FromSql<%s, %s> for %s {", sqlType, back, enum.TypeName), "}", func() {
			w.WriteBlock(fmt.Sprintf("fn from_sql(bytes: <%s as diesel::backend::Backend>::RawValue<'_>) -> deserialize::Result<Self> {", back), "}", func() {
				if enum.Native {
					w.WriteLine("let value = std::str::from_utf8(bytes.as_bytes())?;")
				} else {
					w.WriteLinef("let value = <String as FromSql<diesel::sql_types::Text, %s>>::from_sql(bytes)?;", back)
				}
				w.WriteLine("value.parse().map_err(Into::into)")
			})
		})
	}
	return w.String(), nil
}
