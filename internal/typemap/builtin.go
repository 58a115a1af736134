// Package typemap resolves GraphQL scalars, enums and fields to the target
// language type and SQL column type of a generation run.
package typemap

import (
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Extended scalars recognized without configuration. They still have to be
// declared in the schema (`scalar DateTime`).
const (
	ScalarDateTime = "DateTime"
	ScalarJSON     = "JSON"
	ScalarBigInt   = "BigInt"
)

// Entry is the default mapping of one scalar under one dialect.
type Entry struct {
	Rust   string
	Go     string
	SQL    string
	Diesel string
}

type dialectEntries map[target.Dialect]Entry

func same(e Entry) dialectEntries {
	return dialectEntries{target.Sqlite: e, target.Postgres: e, target.Mysql: e}
}

// builtins is read-only after package initialization.
var builtins = map[string]dialectEntries{
	schema.ScalarID: {
		target.Sqlite:   {Rust: "i32", Go: "uint", SQL: "INTEGER", Diesel: "Integer"},
		target.Postgres: {Rust: "uuid::Uuid", Go: "string", SQL: "UUID", Diesel: "Uuid"},
		target.Mysql:    {Rust: "u32", Go: "uint", SQL: "INT UNSIGNED", Diesel: "Unsigned<Integer>"},
	},
	schema.ScalarString: same(Entry{Rust: "String", Go: "string", SQL: "TEXT", Diesel: "Text"}),
	schema.ScalarInt:    same(Entry{Rust: "i32", Go: "int32", SQL: "INTEGER", Diesel: "Integer"}),
	schema.ScalarFloat: {
		target.Sqlite:   {Rust: "f64", Go: "float64", SQL: "REAL", Diesel: "Double"},
		target.Postgres: {Rust: "f64", Go: "float64", SQL: "DOUBLE PRECISION", Diesel: "Double"},
		target.Mysql:    {Rust: "f64", Go: "float64", SQL: "DOUBLE", Diesel: "Double"},
	},
	schema.ScalarBoolean: {
		target.Sqlite:   {Rust: "bool", Go: "bool", SQL: "INTEGER", Diesel: "Bool"},
		target.Postgres: {Rust: "bool", Go: "bool", SQL: "BOOLEAN", Diesel: "Bool"},
		target.Mysql:    {Rust: "bool", Go: "bool", SQL: "TINYINT(1)", Diesel: "Bool"},
	},
	ScalarDateTime: {
		target.Sqlite:   {Rust: "chrono::NaiveDateTime", Go: "time.Time", SQL: "TEXT", Diesel: "Timestamp"},
		target.Postgres: {Rust: "chrono::DateTime<chrono::Utc>", Go: "time.Time", SQL: "TIMESTAMPTZ", Diesel: "Timestamptz"},
		target.Mysql:    {Rust: "chrono::NaiveDateTime", Go: "time.Time", SQL: "DATETIME", Diesel: "Datetime"},
	},
	ScalarJSON: {
		target.Sqlite:   {Rust: "serde_json::Value", Go: "json.RawMessage", SQL: "TEXT", Diesel: "Text"},
		target.Postgres: {Rust: "serde_json::Value", Go: "json.RawMessage", SQL: "JSONB", Diesel: "Jsonb"},
		target.Mysql:    {Rust: "serde_json::Value", Go: "json.RawMessage", SQL: "JSON", Diesel: "Json"},
	},
	ScalarBigInt: same(Entry{Rust: "i64", Go: "int64", SQL: "BIGINT", Diesel: "BigInt"}),
}

// Builtin returns the default mapping for scalar under dialect.
func Builtin(scalar string, dialect target.Dialect) (Entry, bool) {
	entries, ok := builtins[scalar]
	if !ok {
		return Entry{}, false
	}
	e, ok := entries[dialect]
	return e, ok
}

// HasDefault reports whether scalar resolves without configuration.
func HasDefault(scalar string) bool {
	_, ok := builtins[scalar]
	return ok
}

// Scalars returns the names of every scalar with a default mapping.
func Scalars() []string {
	return []string{
		schema.ScalarID, schema.ScalarString, schema.ScalarInt, schema.ScalarFloat, schema.ScalarBoolean,
		ScalarDateTime, ScalarJSON, ScalarBigInt,
	}
}

// targetOf picks the language-specific half of an entry.
func (e Entry) targetOf(orm target.ORM) string {
	if orm.Language() == "go" {
		return e.Go
	}
	return e.Rust
}
