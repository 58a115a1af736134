package typemap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Origin records which layer produced a resolution.
type Origin int

const (
	OriginBuiltin Origin = iota
	OriginScalarOverride
	OriginFieldOverride
	OriginEnum
)

func (o Origin) String() string {
	switch o {
	case OriginScalarOverride:
		return "scalar override"
	case OriginFieldOverride:
		return "field override"
	case OriginEnum:
		return "enum"
	}
	return "builtin"
}

// ResolvedType is the outcome of resolving one scalar, enum or field.
type ResolvedType struct {
	// Target is the language type (Rust or Go) before nullability wrapping.
	Target string
	// SQL is the column type emitted in migrations.
	SQL string
	// Diesel is the diesel::sql_types column type.
	Diesel string
	Origin Origin
	// Enum names the GraphQL enum behind the column, if any.
	Enum string
	// NativeEnum is set when the dialect needs a CREATE TYPE for Enum.
	NativeEnum bool
}

// Options configures a Resolver. Mapping keys are scalar or enum names;
// override keys are "Type.field".
type Options struct {
	ORM               target.ORM
	Dialect           target.Dialect
	TypeMappings      map[string]string
	SQLTypeMappings   map[string]string
	FieldOverrides    map[string]string
	FieldSQLOverrides map[string]string
}

// Resolver merges the builtin table with configured overrides. It is
// immutable once created.
type Resolver struct {
	opts      Options
	sqlScalar map[string]SQLType
	sqlField  map[string]SQLType
}

// New validates every SQL override against the dialect and returns a
// Resolver. The first invalid override, in key order, is returned as an
// *OverrideError.
func New(opts Options) (*Resolver, error) {
	if opts.ORM == "" {
		opts.ORM = target.Diesel
	}
	if opts.Dialect == "" {
		opts.Dialect = target.Sqlite
	}

	r := &Resolver{opts: opts}
	var err error
	if r.sqlScalar, err = parseOverrides(opts.Dialect, opts.SQLTypeMappings); err != nil {
		return nil, err
	}
	if r.sqlField, err = parseOverrides(opts.Dialect, opts.FieldSQLOverrides); err != nil {
		return nil, err
	}
	return r, nil
}

func parseOverrides(dialect target.Dialect, in map[string]string) (map[string]SQLType, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]SQLType, len(in))
	for _, k := range keys {
		t, err := ParseSQLType(dialect, in[k])
		if err != nil {
			return nil, &OverrideError{Key: k, Cause: err}
		}
		out[k] = t
	}
	return out, nil
}

// Dialect returns the dialect the resolver targets.
func (r *Resolver) Dialect() target.Dialect {
	return r.opts.Dialect
}

// Scalar resolves a scalar name: configured mapping first, then the builtin
// table. A scalar with neither is an *UnmappedScalarError.
func (r *Resolver) Scalar(name string) (ResolvedType, error) {
	builtin, hasBuiltin := Builtin(name, r.opts.Dialect)
	mapped, hasMapped := r.opts.TypeMappings[name]
	sqlType, hasSQL := r.sqlScalar[name]

	if !hasBuiltin && !hasMapped && !hasSQL {
		return ResolvedType{}, &UnmappedScalarError{Scalar: name}
	}

	rt := ResolvedType{Origin: OriginBuiltin}
	switch {
	case hasMapped:
		rt.Target = mapped
		rt.Origin = OriginScalarOverride
	case hasBuiltin:
		rt.Target = builtin.targetOf(r.opts.ORM)
	default:
		rt.Target = sqlType.targetOf(r.opts.ORM)
	}

	switch {
	case hasSQL:
		rt.SQL, rt.Diesel = sqlType.Raw, sqlType.Diesel
		rt.Origin = OriginScalarOverride
	case hasBuiltin:
		rt.SQL, rt.Diesel = builtin.SQL, builtin.Diesel
	default:
		// A custom scalar mapped only to a target type is stored as text.
		rt.SQL, rt.Diesel = "TEXT", "Text"
	}
	return rt, nil
}

// Enum resolves an enum column. Postgres gets a native enum type, Mysql an
// inline ENUM(...) and Sqlite TEXT, unless the enum's name is mapped.
func (r *Resolver) Enum(def *schema.TypeDef) ResolvedType {
	rt := ResolvedType{
		Target: naming.Pascal(def.Name),
		Origin: OriginEnum,
		Enum:   def.Name,
	}
	if mapped, ok := r.opts.TypeMappings[def.Name]; ok {
		rt.Target = mapped
	}

	if sqlType, ok := r.sqlScalar[def.Name]; ok {
		rt.SQL, rt.Diesel = sqlType.Raw, sqlType.Diesel
		return rt
	}

	switch r.opts.Dialect {
	case target.Postgres:
		rt.SQL = naming.Snake(def.Name)
		rt.Diesel = "crate::schema::sql_types::" + naming.Pascal(def.Name)
		rt.NativeEnum = true
	case target.Mysql:
		quoted := make([]string, len(def.Values))
		for i, v := range def.Values {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		rt.SQL = "ENUM(" + strings.Join(quoted, ", ") + ")"
		rt.Diesel = "Text"
	default:
		rt.SQL, rt.Diesel = "TEXT", "Text"
	}
	return rt
}

// Field resolves a column field of owner. Precedence, highest first: the
// "Type.field" override, the scalar-wide mapping, the builtin default.
// Lists of scalars or enums resolve through the JSON scalar once their
// element type resolves.
func (r *Resolver) Field(g *schema.SchemaGraph, owner string, f schema.FieldDef) (ResolvedType, error) {
	key := owner + "." + f.Name
	fieldTarget, hasFieldTarget := r.opts.FieldOverrides[key]
	fieldSQL, hasFieldSQL := r.sqlField[key]

	rt, err := r.base(g, f)
	if err != nil {
		var unmapped *UnmappedScalarError
		if !errors.As(err, &unmapped) {
			return ResolvedType{}, err
		}
		if !hasFieldTarget && !hasFieldSQL {
			return ResolvedType{}, &UnmappedScalarError{Scalar: unmapped.Scalar, Type: owner, Field: f.Name}
		}
		// The field override stands in for the missing scalar mapping.
		rt = ResolvedType{SQL: "TEXT", Diesel: "Text"}
		if hasFieldSQL {
			rt.Target = fieldSQL.targetOf(r.opts.ORM)
		}
	}

	if hasFieldTarget {
		rt.Target = fieldTarget
		rt.Origin = OriginFieldOverride
	}
	if hasFieldSQL {
		rt.SQL, rt.Diesel = fieldSQL.Raw, fieldSQL.Diesel
		rt.Origin = OriginFieldOverride
		rt.NativeEnum = false
	}
	return rt, nil
}

func (r *Resolver) base(g *schema.SchemaGraph, f schema.FieldDef) (ResolvedType, error) {
	kind, ok := g.KindOf(f.Type)
	if !ok {
		return ResolvedType{}, fmt.Errorf("field %s references undefined type %s", f.Name, f.Type)
	}
	switch {
	case kind != schema.KindScalar && kind != schema.KindEnum:
		return ResolvedType{}, fmt.Errorf("field %s of type %s is not a column", f.Name, f.Type)
	case f.IsList:
		if kind == schema.KindScalar {
			// The element type must still be known, even though the column is JSON.
			if _, err := r.Scalar(f.Type); err != nil {
				return ResolvedType{}, err
			}
		}
		return r.Scalar(ScalarJSON)
	case kind == schema.KindEnum:
		return r.Enum(g.Types[f.Type]), nil
	}
	return r.Scalar(f.Type)
}

// Key resolves the primary key type of an entity: its declared id field, or
// the ID scalar when the key is synthesized. Foreign keys reuse this so both
// sides of a reference agree.
func (r *Resolver) Key(g *schema.SchemaGraph, entity *schema.TypeDef) (ResolvedType, error) {
	if id, ok := entity.Field("id"); ok && !id.IsList {
		if kind, _ := g.KindOf(id.Type); kind == schema.KindScalar {
			return r.Field(g, entity.Name, id)
		}
	}
	return r.Scalar(schema.ScalarID)
}

func (t SQLType) targetOf(orm target.ORM) string {
	if orm.Language() == "go" {
		return t.Go
	}
	return t.Rust
}
