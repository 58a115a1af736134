package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Introspection is the `__schema` object of a GraphQL introspection result.
type Introspection struct {
	QueryType        *NamedTypeRef       `json:"queryType"`
	MutationType     *NamedTypeRef       `json:"mutationType"`
	SubscriptionType *NamedTypeRef       `json:"subscriptionType"`
	Types            []IntrospectionType `json:"types"`
}

// NamedTypeRef is the `{ name }` shape used for operation root types.
type NamedTypeRef struct {
	Name string `json:"name"`
}

// IntrospectionType is one entry of `__schema.types`.
type IntrospectionType struct {
	Kind          string               `json:"kind"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Fields        []IntrospectionField `json:"fields"`
	Interfaces    []TypeRef            `json:"interfaces"`
	PossibleTypes []TypeRef            `json:"possibleTypes"`
	EnumValues    []IntrospectionValue `json:"enumValues"`
}

// IntrospectionField is one output field of an object or interface.
type IntrospectionField struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Type        TypeRef `json:"type"`
}

// IntrospectionValue is one enum value.
type IntrospectionValue struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TypeRef is the recursive `{ kind name ofType }` wrapper structure.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// Introspection type kinds.
const (
	introKindScalar      = "SCALAR"
	introKindObject      = "OBJECT"
	introKindInterface   = "INTERFACE"
	introKindUnion       = "UNION"
	introKindEnum        = "ENUM"
	introKindInputObject = "INPUT_OBJECT"
	introKindList        = "LIST"
	introKindNonNull     = "NON_NULL"
)

var introspectionKinds = map[string]Kind{
	introKindObject:    KindObject,
	introKindEnum:      KindEnum,
	introKindUnion:     KindUnion,
	introKindInterface: KindInterface,
	introKindScalar:    KindScalar,
}

// DecodeIntrospection accepts a full introspection response
// (`{"data": {"__schema": ...}}`), a `{"__schema": ...}` object, or the bare
// schema object.
func DecodeIntrospection(data []byte) (*Introspection, error) {
	var envelope struct {
		Data *struct {
			Schema *Introspection `json:"__schema"`
		} `json:"data"`
		Schema *Introspection `json:"__schema"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &SchemaError{Stage: StageIntrospection, Message: "invalid introspection JSON", Cause: err}
	}

	switch {
	case envelope.Data != nil && envelope.Data.Schema != nil:
		return envelope.Data.Schema, nil
	case envelope.Schema != nil:
		return envelope.Schema, nil
	}

	var bare Introspection
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, &SchemaError{Stage: StageIntrospection, Message: "invalid introspection JSON", Cause: err}
	}
	if bare.Types == nil {
		return nil, &SchemaError{Stage: StageIntrospection, Message: "document has no __schema.types"}
	}
	return &bare, nil
}

// FromIntrospection normalizes an introspection result into a validated
// SchemaGraph. Meta-schema types (prefixed `__`) and input objects are
// dropped before construction.
func FromIntrospection(in *Introspection) (*SchemaGraph, error) {
	if in == nil {
		return nil, &SchemaError{Stage: StageIntrospection, Message: "introspection result is empty"}
	}

	graph := NewGraph()
	graph.Roots = RootTypes{
		Query:        rootName(in.QueryType),
		Mutation:     rootName(in.MutationType),
		Subscription: rootName(in.SubscriptionType),
	}

	for i := range in.Types {
		it := &in.Types[i]
		if it.Name == "" {
			return nil, &SchemaError{Stage: StageIntrospection, Message: fmt.Sprintf("type #%d has no name", i)}
		}
		if strings.HasPrefix(it.Name, "__") || it.Kind == introKindInputObject || IsBuiltinScalar(it.Name) {
			continue
		}

		kind, ok := introspectionKinds[it.Kind]
		if !ok {
			return nil, &SchemaError{Stage: StageIntrospection, Type: it.Name, Message: fmt.Sprintf("unknown type kind %q", it.Kind)}
		}

		def, err := convertIntrospectionType(it, kind)
		if err != nil {
			return nil, err
		}
		if err := graph.add(def, StageIntrospection); err != nil {
			return nil, err
		}
	}

	// The wrapper kinds carry the referenced kind; it must agree with the
	// declared type.
	for _, it := range in.Types {
		if _, kept := graph.Types[it.Name]; !kept {
			continue
		}
		for _, f := range it.Fields {
			named := innermost(&f.Type)
			if named == nil || named.Name == nil {
				continue
			}
			if err := checkReferencedKind(graph, it.Name, f.Name, *named.Name, named.Kind); err != nil {
				return nil, err
			}
		}
	}

	if err := Validate(graph); err != nil {
		return nil, err
	}
	return graph, nil
}

func convertIntrospectionType(it *IntrospectionType, kind Kind) (*TypeDef, error) {
	def := &TypeDef{
		Name:        it.Name,
		Kind:        kind,
		Description: strings.TrimSpace(it.Description),
	}

	switch kind {
	case KindObject, KindInterface:
		for _, f := range it.Fields {
			field, err := convertField(it.Name, f)
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, field)
		}
		if kind == KindObject {
			for _, ref := range it.Interfaces {
				if ref.Name != nil {
					def.Implements = append(def.Implements, *ref.Name)
				}
			}
		}
	case KindUnion:
		for _, ref := range it.PossibleTypes {
			if ref.Name == nil {
				return nil, &SchemaError{Stage: StageIntrospection, Type: it.Name, Message: "union member has no name"}
			}
			def.Members = append(def.Members, *ref.Name)
		}
	case KindEnum:
		for _, v := range it.EnumValues {
			def.Values = append(def.Values, v.Name)
		}
	}
	return def, nil
}

func convertField(owner string, f IntrospectionField) (FieldDef, error) {
	field := FieldDef{Name: f.Name, Description: strings.TrimSpace(f.Description), Nullable: true}

	ref := &f.Type
	if ref.Kind == introKindNonNull {
		field.Nullable = false
		ref = ref.OfType
	}
	for ref != nil && ref.Kind == introKindList {
		field.IsList = true
		field.ItemNonNull = false
		ref = ref.OfType
		if ref != nil && ref.Kind == introKindNonNull {
			field.ItemNonNull = true
			ref = ref.OfType
		}
	}

	if ref == nil || ref.Name == nil || *ref.Name == "" {
		return FieldDef{}, &SchemaError{Stage: StageIntrospection, Type: owner, Field: f.Name, Message: "type reference does not end in a named type"}
	}
	if ref.Kind == introKindList || ref.Kind == introKindNonNull {
		return FieldDef{}, &SchemaError{Stage: StageIntrospection, Type: owner, Field: f.Name, Message: "malformed type wrapper"}
	}
	field.Type = *ref.Name
	return field, nil
}

func innermost(ref *TypeRef) *TypeRef {
	for ref != nil && (ref.Kind == introKindList || ref.Kind == introKindNonNull) {
		ref = ref.OfType
	}
	return ref
}

func checkReferencedKind(graph *SchemaGraph, owner, field, name, kind string) error {
	if kind == "" {
		return nil
	}
	declared, ok := graph.KindOf(name)
	if !ok {
		// Unknown references are reported by Validate with full context.
		return nil
	}
	if expected, known := introspectionKinds[kind]; !known || expected != declared {
		return &SchemaError{
			Stage:   StageIntrospection,
			Type:    owner,
			Field:   field,
			Message: fmt.Sprintf("field references %s as %s but it is declared as %s", name, kind, declared),
		}
	}
	return nil
}

func rootName(ref *NamedTypeRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
