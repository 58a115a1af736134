// Package sqlddl renders the SQL migrations shared by every emitter.
package sqlddl

import (
	"path"
	"regexp"
	"strings"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/codegen/writer"
	"github.com/gqlorm/gqlorm/internal/target"
)

// MigrationsDir is the output subdirectory holding migration folders.
const MigrationsDir = "migrations"

// DeferredMigrationName names the follow-up migration for deferred keys.
const DeferredMigrationName = "add_deferred_foreign_keys"

var plainIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var reserved = map[string]bool{
	"user": true, "order": true, "group": true, "table": true, "select": true, "from": true,
	"where": true, "key": true, "index": true, "default": true, "check": true, "column": true,
	"references": true, "limit": true, "offset": true, "desc": true, "asc": true, "to": true,
	"as": true, "by": true, "in": true, "is": true, "on": true, "or": true, "and": true, "not": true,
	"null": true, "all": true, "case": true, "primary": true, "foreign": true, "unique": true,
}

// Quote returns ident as written when it is a plain lower-case identifier
// and quoted for dialect otherwise.
func Quote(dialect target.Dialect, ident string) string {
	if plainIdent.MatchString(ident) && !reserved[ident] {
		return ident
	}
	if dialect == target.Mysql {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Migration is one up/down pair.
type Migration struct {
	Name string
	Up   string
	Down string
}

// Files returns the migration's up.sql and down.sql.
func (m Migration) Files() []model.GeneratedFile {
	dir := path.Join(MigrationsDir, m.Name)
	return []model.GeneratedFile{
		{Path: path.Join(dir, "up.sql"), Content: m.Up},
		{Path: path.Join(dir, "down.sql"), Content: m.Down},
	}
}

// Migrations renders one CREATE TABLE migration per entity in creation
// order, followed by the deferred foreign key migration when needed.
func Migrations(m *model.Model) []Migration {
	if !m.GenerateMigrations {
		return nil
	}
	out := make([]Migration, 0, m.MigrationCount())
	for _, e := range m.Entities {
		up, down := CreateTable(m, e)
		out = append(out, Migration{
			Name: m.MigrationName(e.Sequence, "create_"+e.Table),
			Up:   up,
			Down: down,
		})
	}
	if len(m.Deferred) > 0 {
		up, down := DeferredForeignKeys(m)
		out = append(out, Migration{
			Name: m.MigrationName(len(m.Entities)+1, DeferredMigrationName),
			Up:   up,
			Down: down,
		})
	}
	return out
}

// Files flattens Migrations into generated files.
func Files(m *model.Model) []model.GeneratedFile {
	var files []model.GeneratedFile
	for _, mig := range Migrations(m) {
		files = append(files, mig.Files()...)
	}
	return files
}

// CreateTable renders the up and down scripts for one entity.
func CreateTable(m *model.Model, e *model.Entity) (up, down string) {
	d := m.Dialect
	table := Quote(d, e.Table)

	w := writer.SQL()
	w.WriteComment("Create " + e.Table + " table")
	for _, enum := range e.Enums {
		w.WriteLinef("CREATE TYPE %s AS ENUM (%s);", Quote(d, enum.SQLName), enumValues(enum))
	}

	defs := make([]string, 0, len(e.Columns)+len(e.ForeignKeys))
	for _, col := range e.Columns {
		defs = append(defs, ColumnDefinition(d, col))
	}
	for _, fk := range e.ForeignKeys {
		if fk.Deferred && d != target.Sqlite {
			continue
		}
		def := "FOREIGN KEY (" + Quote(d, fk.Column.Name) + ") REFERENCES " + references(d, fk)
		if fk.Deferred {
			def += " DEFERRABLE INITIALLY DEFERRED"
		}
		defs = append(defs, def)
	}

	w.WriteLinef("CREATE TABLE %s (", table)
	w.Indent()
	w.WriteList(defs, ",", "")
	w.Dedent()
	w.WriteLine(");")

	if len(e.ForeignKeys) > 0 {
		w.BlankLine()
		for _, fk := range e.ForeignKeys {
			w.WriteLinef("CREATE INDEX %s ON %s (%s);", Quote(d, fk.IndexName()), table, Quote(d, fk.Column.Name))
		}
	}

	dw := writer.SQL()
	dw.WriteComment("Drop " + e.Table + " table")
	dw.WriteLinef("DROP TABLE %s;", table)
	for i := len(e.Enums) - 1; i >= 0; i-- {
		dw.WriteLinef("DROP TYPE %s;", Quote(d, e.Enums[i].SQLName))
	}
	return w.String(), dw.String()
}

// ColumnDefinition renders one column of a CREATE TABLE.
func ColumnDefinition(d target.Dialect, col *model.Column) string {
	def := Quote(d, col.Name) + " " + col.Type.SQL
	if col.PrimaryKey {
		def += " PRIMARY KEY"
		if col.AutoGenerated {
			switch d {
			case target.Sqlite:
				def += " AUTOINCREMENT"
			case target.Postgres:
				def += " DEFAULT gen_random_uuid()"
			case target.Mysql:
				def += " AUTO_INCREMENT"
			}
		}
		return def
	}
	if !col.Nullable {
		def += " NOT NULL"
	}
	return def
}

// DeferredForeignKeys renders the follow-up migration that adds the
// constraints left out of CREATE TABLE. SQLite cannot alter constraints, so
// there the keys were declared deferrable inline and this migration only
// records them.
func DeferredForeignKeys(m *model.Model) (up, down string) {
	d := m.Dialect
	w := writer.SQL()
	dw := writer.SQL()

	if d == target.Sqlite {
		w.WriteComment("SQLite cannot add foreign keys to existing tables.")
		w.WriteComment("These constraints are declared DEFERRABLE INITIALLY DEFERRED in CREATE TABLE:")
		for _, fk := range m.Deferred {
			w.WriteComment("  " + fk.Entity.Table + "." + fk.Column.Name + " -> " + fk.Target.Table + "(" + fk.Target.PrimaryKey.Name + ")")
		}
		dw.WriteComment("Nothing to undo: deferred foreign keys live in their CREATE TABLE.")
		return w.String(), dw.String()
	}

	w.WriteComment("Add foreign keys deferred by reference cycles")
	for _, fk := range m.Deferred {
		w.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s;",
			Quote(d, fk.Entity.Table), Quote(d, fk.ConstraintName()), Quote(d, fk.Column.Name), references(d, fk))
	}

	dw.WriteComment("Drop deferred foreign keys")
	for i := len(m.Deferred) - 1; i >= 0; i-- {
		fk := m.Deferred[i]
		drop := "DROP CONSTRAINT"
		if d == target.Mysql {
			drop = "DROP FOREIGN KEY"
		}
		dw.WriteLinef("ALTER TABLE %s %s %s;", Quote(d, fk.Entity.Table), drop, Quote(d, fk.ConstraintName()))
	}
	return w.String(), dw.String()
}

func references(d target.Dialect, fk *model.ForeignKey) string {
	return Quote(d, fk.Target.Table) + "(" + Quote(d, fk.Target.PrimaryKey.Name) + ")"
}

func enumValues(e *model.Enum) string {
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = "'" + strings.ReplaceAll(v.Name, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
