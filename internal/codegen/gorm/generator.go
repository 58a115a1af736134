// Package gorm emits GORM model structs and SQL migrations.
package gorm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/codegen/sqlddl"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Output paths relative to the output directory.
const (
	ModelsPath  = "models/models.go"
	EnumsPath   = "models/enums.go"
	PackageName = "models"
)

// packages resolves the package qualifier of a mapped Go type
// ("decimal.Decimal") to its import path.
var packages = map[string]string{
	"time":    "time",
	"json":    "encoding/json",
	"sql":     "database/sql",
	"big":     "math/big",
	"uuid":    "github.com/google/uuid",
	"decimal": "github.com/shopspring/decimal",
}

// Generator emits GORM code.
type Generator struct {
	packageName string
}

// NewGenerator creates a GORM generator writing package models.
func NewGenerator() *Generator {
	return &Generator{packageName: PackageName}
}

// ORM returns target.Gorm.
func (g *Generator) ORM() target.ORM {
	return target.Gorm
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "go"
}

// Generate renders the models and enums files and the migrations.
func (g *Generator) Generate(m *model.Model) ([]model.GeneratedFile, error) {
	var files []model.GeneratedFile
	if m.GenerateEntities {
		models, err := render(g.models(m))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", ModelsPath, err)
		}
		files = append(files, model.GeneratedFile{Path: ModelsPath, Content: models})

		if len(m.Enums) > 0 {
			enums, err := render(g.enums(m))
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", EnumsPath, err)
			}
			files = append(files, model.GeneratedFile{Path: EnumsPath, Content: enums})
		}
	}
	files = append(files, sqlddl.Files(m)...)
	return files, nil
}

func render(f *jen.File) (string, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.packageName)
	f.HeaderComment("Code generated by gqlorm. DO NOT EDIT.")
	return f
}

func (g *Generator) models(m *model.Model) *jen.File {
	f := g.newFile()
	for _, e := range m.Entities {
		g.entity(f, m, e)
	}
	return f
}

func (g *Generator) entity(f *jen.File, m *model.Model, e *model.Entity) {
	if e.Description != "" {
		f.Comment(e.Description)
	} else {
		f.Commentf("%s is a row of the %s table.", e.TypeName, e.Table)
	}

	used := make(map[string]bool)
	var fields []jen.Code
	for _, col := range e.Columns {
		name := fieldName(col)
		used[name] = true
		field := jen.Id(name).Add(goType(col.Type.Target, col.Nullable)).Tag(map[string]string{
			"gorm": gormTag(m.Dialect, col),
			"json": jsonTag(col.Field, col.Nullable),
		})
		if col.Description != "" {
			fields = append(fields, jen.Comment(col.Description))
		}
		fields = append(fields, field)
	}

	for _, rel := range e.BelongsTo {
		name := unique(used, rel.Name)
		fields = append(fields, jen.Id(name).Op("*").Id(rel.Target.TypeName).Tag(map[string]string{
			"gorm": "foreignKey:" + fieldName(rel.ForeignKey.Column),
			"json": jsonTag(naming.Camel(rel.Name), true),
		}))
	}
	for _, rel := range e.HasMany {
		name := unique(used, rel.Name)
		fields = append(fields, jen.Id(name).Index().Id(rel.Target.TypeName).Tag(map[string]string{
			"gorm": "foreignKey:" + fieldName(rel.ForeignKey.Column),
			"json": jsonTag(naming.Camel(rel.Name), true),
		}))
	}

	f.Type().Id(e.TypeName).Struct(fields...)
	f.Line()

	f.Commentf("TableName overrides the table name used by %s to `%s`.", e.TypeName, e.Table)
	f.Func().Params(jen.Id(e.TypeName)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(e.Table)),
	)
	f.Line()
}

// unique suffixes name with "Ref" until it no longer collides with a field.
func unique(used map[string]bool, name string) string {
	for used[name] {
		name += "Ref"
	}
	used[name] = true
	return name
}

func fieldName(col *model.Column) string {
	return naming.GoPascal(col.Field)
}

// goType turns a Go type expression ("uint", "*time.Time", "[]byte",
// "decimal.Decimal", "github.com/x/y.Z") into jennifer code so that imports
// are collected. Nullable non-pointer types become pointers.
func goType(t string, nullable bool) *jen.Statement {
	s := &jen.Statement{}
	if nullable && !strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "[]") {
		s.Op("*")
	}
	for {
		if strings.HasPrefix(t, "*") {
			s.Op("*")
			t = t[1:]
			continue
		}
		if strings.HasPrefix(t, "[]") {
			s.Index()
			t = t[2:]
			continue
		}
		break
	}

	dot := strings.LastIndex(t, ".")
	if dot < 0 || strings.ContainsAny(t, "[]()") {
		return s.Id(t)
	}
	pkg, name := t[:dot], t[dot+1:]
	if path, ok := packages[pkg]; ok {
		pkg = path
	}
	return s.Qual(pkg, name)
}

func gormTag(d target.Dialect, col *model.Column) string {
	parts := []string{"column:" + col.Name, "type:" + col.Type.SQL}
	if col.PrimaryKey {
		parts = append(parts, "primaryKey")
		if col.AutoGenerated {
			if d == target.Postgres {
				parts = append(parts, "default:gen_random_uuid()")
			} else {
				parts = append(parts, "autoIncrement")
			}
		}
	} else if !col.Nullable {
		parts = append(parts, "not null")
	}
	if col.ForeignKey != nil {
		parts = append(parts, "index:"+col.ForeignKey.IndexName())
	}
	return strings.Join(parts, ";")
}

// jsonTag generates the JSON struct tag; optional fields are omitted when
// empty.
func jsonTag(name string, optional bool) string {
	if optional {
		return name + ",omitempty"
	}
	return name
}

func (g *Generator) enums(m *model.Model) *jen.File {
	f := g.newFile()
	for _, enum := range m.Enums {
		typeName := enum.TypeName
		if enum.Description != "" {
			f.Comment(enum.Description)
		}
		f.Type().Id(typeName).String()
		f.Line()

		f.Const().DefsFunc(func(defs *jen.Group) {
			for _, v := range enum.Values {
				defs.Id(typeName + v.Variant).Id(typeName).Op("=").Lit(v.Name)
			}
		})
		f.Line()

		cases := make([]jen.Code, len(enum.Values))
		for i, v := range enum.Values {
			cases[i] = jen.Id(typeName + v.Variant)
		}
		f.Commentf("Valid reports whether e is a declared %s value.", typeName)
		f.Func().Params(jen.Id("e").Id(typeName)).Id("Valid").Params().Bool().Block(
			jen.Switch(jen.Id("e")).Block(
				jen.Case(cases...).Block(jen.Return(jen.True())),
			),
			jen.Return(jen.False()),
		)
		f.Line()
	}
	return f
}
