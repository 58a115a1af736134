package typemap

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/target"
)

// SQLType is a user-supplied column type that the dialect recognizes.
type SQLType struct {
	// Raw is the type exactly as configured; it is emitted verbatim.
	Raw string
	// Diesel is the diesel::sql_types name for the column.
	Diesel string
	// Rust and Go are the natural target types for the column category.
	Rust string
	Go   string
}

// ParseSQLType checks raw against dialect's type grammar and derives the
// Diesel column type and default target types from the parsed category.
// Types the dialect does not know (user-defined or unsupported) are errors.
func ParseSQLType(dialect target.Dialect, raw string) (SQLType, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SQLType{}, fmt.Errorf("empty SQL type")
	}
	lowered := strings.ToLower(trimmed)

	var (
		t   schema.Type
		err error
	)
	switch dialect {
	case target.Sqlite:
		t, err = sqlite.ParseType(lowered)
	case target.Postgres:
		t, err = postgres.ParseType(lowered)
	case target.Mysql:
		t, err = mysql.ParseType(lowered)
	default:
		return SQLType{}, fmt.Errorf("unknown dialect %q", dialect)
	}
	if err != nil {
		return SQLType{}, fmt.Errorf("invalid %s type %q: %w", dialect, raw, err)
	}

	out := SQLType{Raw: trimmed}
	switch t := t.(type) {
	case *sqlite.UserDefinedType, *postgres.UserDefinedType, *schema.UnsupportedType:
		return SQLType{}, fmt.Errorf("%s does not recognize type %q", dialect, raw)
	case *schema.BoolType:
		out.Diesel, out.Rust, out.Go = "Bool", "bool", "bool"
	case *schema.IntegerType:
		out.Diesel, out.Rust, out.Go = integerDiesel(t.T)
		if t.Unsigned {
			out.Diesel = "Unsigned<" + out.Diesel + ">"
			out.Rust = "u" + strings.TrimPrefix(out.Rust, "i")
			out.Go = "u" + out.Go
		}
	case *postgres.SerialType:
		out.Diesel, out.Rust, out.Go = integerDiesel(strings.Replace(t.T, "serial", "int", 1))
	case *schema.DecimalType:
		out.Diesel, out.Rust, out.Go = "Numeric", "bigdecimal::BigDecimal", "string"
	case *schema.FloatType:
		out.Diesel, out.Rust, out.Go = "Double", "f64", "float64"
		if dialect != target.Sqlite && (t.T == "real" || t.T == "float4" || t.T == "float") {
			out.Diesel, out.Rust, out.Go = "Float", "f32", "float32"
		}
	case *schema.StringType, *mysql.SetType:
		out.Diesel, out.Rust, out.Go = "Text", "String", "string"
	case *schema.EnumType:
		out.Diesel, out.Rust, out.Go = "Text", "String", "string"
	case *schema.TimeType:
		out.Diesel, out.Rust, out.Go = timeDiesel(dialect, t.T)
	case *schema.JSONType:
		out.Diesel, out.Rust, out.Go = "Json", "serde_json::Value", "json.RawMessage"
		switch {
		case dialect == target.Sqlite:
			out.Diesel = "Text"
		case t.T == "jsonb":
			out.Diesel = "Jsonb"
		}
	case *schema.UUIDType:
		out.Diesel, out.Rust, out.Go = "Uuid", "uuid::Uuid", "string"
	case *schema.BinaryType:
		out.Diesel, out.Rust, out.Go = "Binary", "Vec<u8>", "[]byte"
	default:
		// Dialect-specific categories (inet, money, interval, ...) share their
		// name with the Diesel type.
		base := strings.FieldsFunc(lowered, func(r rune) bool { return r == '(' || r == ' ' })[0]
		out.Diesel, out.Rust, out.Go = naming.Pascal(base), "String", "string"
	}
	return out, nil
}

func integerDiesel(t string) (diesel, rust, goType string) {
	switch t {
	case "bigint", "int8", "int64", "uint64", "unsigned big int":
		return "BigInt", "i64", "int64"
	case "smallint", "int2":
		return "SmallInt", "i16", "int16"
	case "tinyint":
		return "TinyInt", "i8", "int8"
	}
	return "Integer", "i32", "int32"
}

func timeDiesel(dialect target.Dialect, t string) (diesel, rust, goType string) {
	switch {
	case t == "date":
		return "Date", "chrono::NaiveDate", "time.Time"
	case strings.HasPrefix(t, "time") && !strings.HasPrefix(t, "timestamp"):
		return "Time", "chrono::NaiveTime", "time.Time"
	case t == "timestamptz" || t == "timestamp with time zone":
		return "Timestamptz", "chrono::DateTime<chrono::Utc>", "time.Time"
	case t == "datetime" && dialect == target.Mysql:
		return "Datetime", "chrono::NaiveDateTime", "time.Time"
	}
	return "Timestamp", "chrono::NaiveDateTime", "time.Time"
}
