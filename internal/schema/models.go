package schema

import "strings"

// Kind is the variant of a TypeDef.
type Kind int

const (
	KindObject Kind = iota + 1
	KindEnum
	KindUnion
	KindInterface
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "OBJECT"
	case KindEnum:
		return "ENUM"
	case KindUnion:
		return "UNION"
	case KindInterface:
		return "INTERFACE"
	case KindScalar:
		return "SCALAR"
	}
	return "UNKNOWN"
}

// Built-in GraphQL scalars. They are always resolvable and never stored in
// SchemaGraph.Types.
const (
	ScalarID      = "ID"
	ScalarString  = "String"
	ScalarInt     = "Int"
	ScalarFloat   = "Float"
	ScalarBoolean = "Boolean"
)

var builtinScalars = map[string]bool{
	ScalarID:      true,
	ScalarString:  true,
	ScalarInt:     true,
	ScalarFloat:   true,
	ScalarBoolean: true,
}

// IsBuiltinScalar reports whether name is one of the five GraphQL scalars.
func IsBuiltinScalar(name string) bool {
	return builtinScalars[name]
}

// SchemaGraph is the source-agnostic representation of a GraphQL type
// system. It is built once per run and only read afterwards.
type SchemaGraph struct {
	// Types maps a type name (case-sensitive) to its definition.
	Types map[string]*TypeDef `json:"types"`
	// Order lists type names in declaration order.
	Order []string `json:"order"`
	// Roots are the operation root type names (query, mutation, subscription).
	Roots RootTypes `json:"roots"`
}

// RootTypes names the operation root types of a schema.
type RootTypes struct {
	Query        string `json:"query"`
	Mutation     string `json:"mutation"`
	Subscription string `json:"subscription"`
}

// DefaultRoots is what a schema without an explicit schema block uses.
var DefaultRoots = RootTypes{Query: "Query", Mutation: "Mutation", Subscription: "Subscription"}

// TypeDef is a variant over object, enum, union, interface and scalar types.
// Only the fields relevant to Kind are populated.
type TypeDef struct {
	Name        string     `json:"name"`
	Kind        Kind       `json:"kind"`
	Description string     `json:"description,omitempty"`
	Fields      []FieldDef `json:"fields,omitempty"`     // object, interface
	Implements  []string   `json:"implements,omitempty"` // object
	Members     []string   `json:"members,omitempty"`    // union
	Values      []string   `json:"values,omitempty"`     // enum
}

// Field returns the field with the given name.
func (t *TypeDef) Field(name string) (FieldDef, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FieldDef is a single field of an object or interface.
type FieldDef struct {
	Name string `json:"name"`
	// Type is the named type after unwrapping NON_NULL and LIST.
	Type        string `json:"type"`
	Nullable    bool   `json:"nullable"`
	IsList      bool   `json:"isList"`
	ItemNonNull bool   `json:"itemNonNull,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewGraph returns an empty graph with default root names.
func NewGraph() *SchemaGraph {
	return &SchemaGraph{
		Types: make(map[string]*TypeDef),
		Roots: DefaultRoots,
	}
}

// add appends a definition, keeping declaration order. Duplicate names are a
// schema error.
func (g *SchemaGraph) add(def *TypeDef, stage string) error {
	if _, exists := g.Types[def.Name]; exists {
		return &SchemaError{Stage: stage, Type: def.Name, Message: "type is defined more than once"}
	}
	g.Types[def.Name] = def
	g.Order = append(g.Order, def.Name)
	return nil
}

// Lookup returns the definition for name.
func (g *SchemaGraph) Lookup(name string) (*TypeDef, bool) {
	def, ok := g.Types[name]
	return def, ok
}

// Definitions returns every type in declaration order.
func (g *SchemaGraph) Definitions() []*TypeDef {
	defs := make([]*TypeDef, 0, len(g.Order))
	for _, name := range g.Order {
		defs = append(defs, g.Types[name])
	}
	return defs
}

// OfKind returns the types of the given kind in declaration order.
func (g *SchemaGraph) OfKind(kind Kind) []*TypeDef {
	var defs []*TypeDef
	for _, name := range g.Order {
		if def := g.Types[name]; def.Kind == kind {
			defs = append(defs, def)
		}
	}
	return defs
}

// IsRoot reports whether name is an operation root type.
func (g *SchemaGraph) IsRoot(name string) bool {
	return name != "" && (name == g.Roots.Query || name == g.Roots.Mutation || name == g.Roots.Subscription)
}

// Entities returns the object types that map to tables: every object type
// except the operation roots, in declaration order.
func (g *SchemaGraph) Entities() []*TypeDef {
	var defs []*TypeDef
	for _, def := range g.OfKind(KindObject) {
		if !g.IsRoot(def.Name) {
			defs = append(defs, def)
		}
	}
	return defs
}

// FindObject resolves name against object types: exact match first, then a
// case-insensitive match. Scalars, enums and the other kinds never match.
func (g *SchemaGraph) FindObject(name string) (*TypeDef, bool) {
	if def, ok := g.Types[name]; ok {
		if def.Kind == KindObject {
			return def, true
		}
	}
	for _, n := range g.Order {
		def := g.Types[n]
		if def.Kind == KindObject && strings.EqualFold(n, name) {
			return def, true
		}
	}
	return nil, false
}

// KindOf returns the kind of a referenced type name, treating built-in
// scalars as KindScalar.
func (g *SchemaGraph) KindOf(name string) (Kind, bool) {
	if IsBuiltinScalar(name) {
		return KindScalar, true
	}
	def, ok := g.Types[name]
	if !ok {
		return 0, false
	}
	return def.Kind, true
}
