// Package target holds the vocabulary shared by every stage of a generation
// run: which ORM is emitted, which SQL dialect it runs against, and how
// generated identifiers are cased.
package target

import (
	"fmt"
	"strings"
)

// ORM identifies an emitter.
type ORM string

const (
	Diesel ORM = "diesel"
	SeaOrm ORM = "seaorm"
	Gorm   ORM = "gorm"
)

// Language returns the programming language the ORM's entity code is written in.
func (o ORM) Language() string {
	if o == Gorm {
		return "go"
	}
	return "rust"
}

func (o ORM) String() string { return string(o) }

// ParseORM accepts the spellings used across config files and flags
// (Diesel, diesel, SeaOrm, sea-orm, sea_orm, ...).
func ParseORM(s string) (ORM, error) {
	switch normalize(s) {
	case "diesel":
		return Diesel, nil
	case "seaorm":
		return SeaOrm, nil
	case "gorm":
		return Gorm, nil
	}
	return "", fmt.Errorf("unknown orm %q (expected diesel, seaorm or gorm)", s)
}

// Dialect identifies a relational database's SQL type vocabulary.
type Dialect string

const (
	Sqlite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	Mysql    Dialect = "mysql"
)

// Dialects lists every supported dialect in a stable order.
var Dialects = []Dialect{Sqlite, Postgres, Mysql}

func (d Dialect) String() string { return string(d) }

// ParseDialect accepts Sqlite, sqlite3, Postgres, postgresql, pg, Mysql, ...
func ParseDialect(s string) (Dialect, error) {
	switch normalize(s) {
	case "sqlite", "sqlite3":
		return Sqlite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mariadb":
		return Mysql, nil
	}
	return "", fmt.Errorf("unknown database %q (expected sqlite, postgres or mysql)", s)
}

// Naming is the case convention applied to generated identifiers.
type Naming string

const (
	SnakeCase  Naming = "snake_case"
	CamelCase  Naming = "camel_case"
	PascalCase Naming = "pascal_case"
)

func (n Naming) String() string { return string(n) }

// ParseNaming accepts snake_case, camelCase, PascalCase and their variants.
func ParseNaming(s string) (Naming, error) {
	switch normalize(s) {
	case "snakecase", "snake":
		return SnakeCase, nil
	case "camelcase", "camel":
		return CamelCase, nil
	case "pascalcase", "pascal":
		return PascalCase, nil
	}
	return "", fmt.Errorf("unknown naming convention %q (expected snake_case, camel_case or pascal_case)", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
