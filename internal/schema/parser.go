package schema

import (
	"fmt"
	"strings"

	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

// FromSDL parses GraphQL SDL text into a validated SchemaGraph. Directives
// and input object types are ignored.
func FromSDL(input string) (*SchemaGraph, error) {
	preprocessed, roots := PreprocessSDL(input)

	doc, report := astparser.ParseGraphqlDocumentString(preprocessed)
	if report.HasErrors() {
		return nil, &SchemaError{Stage: StageSDL, Message: "failed to parse GraphQL", Cause: fmt.Errorf("%v", report)}
	}

	graph := NewGraph()
	graph.Roots = roots

	// Extensions are applied after every definition is known so that
	// `extend type` may precede the type it extends.
	var extensions []int

	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		var def *TypeDef
		switch node.Kind {
		case ast.NodeKindObjectTypeDefinition:
			def = parseObjectType(&doc, node.Ref)
		case ast.NodeKindInterfaceTypeDefinition:
			def = parseInterfaceType(&doc, node.Ref)
		case ast.NodeKindUnionTypeDefinition:
			def = parseUnionType(&doc, node.Ref)
		case ast.NodeKindEnumTypeDefinition:
			def = parseEnumType(&doc, node.Ref)
		case ast.NodeKindScalarTypeDefinition:
			def = parseScalarType(&doc, node.Ref)
		case ast.NodeKindObjectTypeExtension:
			extensions = append(extensions, node.Ref)
			continue
		default:
			continue
		}

		if IsBuiltinScalar(def.Name) {
			continue
		}
		if err := graph.add(def, StageSDL); err != nil {
			return nil, err
		}
	}

	for _, ref := range extensions {
		if err := applyObjectExtension(&doc, ref, graph); err != nil {
			return nil, err
		}
	}

	if err := Validate(graph); err != nil {
		return nil, err
	}
	return graph, nil
}

func parseObjectType(doc *ast.Document, ref int) *TypeDef {
	typeDef := doc.ObjectTypeDefinitions[ref]

	def := &TypeDef{
		Name:        doc.Input.ByteSliceString(typeDef.Name),
		Kind:        KindObject,
		Description: getDescription(doc, typeDef.Description),
		Fields:      parseFields(doc, typeDef.FieldsDefinition.Refs),
	}
	for _, typeRef := range typeDef.ImplementsInterfaces.Refs {
		def.Implements = append(def.Implements, doc.TypeNameString(typeRef))
	}
	return def
}

func parseInterfaceType(doc *ast.Document, ref int) *TypeDef {
	typeDef := doc.InterfaceTypeDefinitions[ref]

	return &TypeDef{
		Name:        doc.Input.ByteSliceString(typeDef.Name),
		Kind:        KindInterface,
		Description: getDescription(doc, typeDef.Description),
		Fields:      parseFields(doc, typeDef.FieldsDefinition.Refs),
	}
}

func parseUnionType(doc *ast.Document, ref int) *TypeDef {
	unionDef := doc.UnionTypeDefinitions[ref]

	def := &TypeDef{
		Name:        doc.Input.ByteSliceString(unionDef.Name),
		Kind:        KindUnion,
		Description: getDescription(doc, unionDef.Description),
	}
	for _, typeRef := range unionDef.UnionMemberTypes.Refs {
		def.Members = append(def.Members, doc.TypeNameString(typeRef))
	}
	return def
}

func parseEnumType(doc *ast.Document, ref int) *TypeDef {
	enumDef := doc.EnumTypeDefinitions[ref]

	def := &TypeDef{
		Name:        doc.Input.ByteSliceString(enumDef.Name),
		Kind:        KindEnum,
		Description: getDescription(doc, enumDef.Description),
	}
	for _, valueRef := range enumDef.EnumValuesDefinition.Refs {
		valueDef := doc.EnumValueDefinitions[valueRef]
		def.Values = append(def.Values, doc.Input.ByteSliceString(valueDef.EnumValue))
	}
	return def
}

func parseScalarType(doc *ast.Document, ref int) *TypeDef {
	scalarDef := doc.ScalarTypeDefinitions[ref]

	return &TypeDef{
		Name:        doc.Input.ByteSliceString(scalarDef.Name),
		Kind:        KindScalar,
		Description: getDescription(doc, scalarDef.Description),
	}
}

func applyObjectExtension(doc *ast.Document, ref int, graph *SchemaGraph) error {
	ext := doc.ObjectTypeExtensions[ref]
	name := doc.Input.ByteSliceString(ext.Name)

	def, ok := graph.Types[name]
	if !ok || def.Kind != KindObject {
		return &SchemaError{Stage: StageSDL, Type: name, Message: "extension of an undefined object type"}
	}

	for _, field := range parseFields(doc, ext.FieldsDefinition.Refs) {
		if _, exists := def.Field(field.Name); exists {
			return &SchemaError{Stage: StageSDL, Type: name, Field: field.Name, Message: "extension redefines an existing field"}
		}
		def.Fields = append(def.Fields, field)
	}
	for _, typeRef := range ext.ImplementsInterfaces.Refs {
		def.Implements = append(def.Implements, doc.TypeNameString(typeRef))
	}
	return nil
}

func parseFields(doc *ast.Document, refs []int) []FieldDef {
	fields := make([]FieldDef, 0, len(refs))
	for _, fieldRef := range refs {
		fieldDef := doc.FieldDefinitions[fieldRef]

		field := FieldDef{
			Name:        doc.Input.ByteSliceString(fieldDef.Name),
			Description: getDescription(doc, fieldDef.Description),
		}
		field.Type, field.Nullable, field.IsList, field.ItemNonNull = parseType(doc, fieldDef.Type)
		fields = append(fields, field)
	}
	return fields
}

// parseType unwraps NonNull and List wrappers. Nested lists collapse into a
// single list flag since they map to the same column shape.
func parseType(doc *ast.Document, typeRef int) (name string, nullable, isList, itemNonNull bool) {
	nullable = true
	current := doc.Types[typeRef]

	if current.TypeKind == ast.TypeKindNonNull {
		nullable = false
		current = doc.Types[current.OfType]
	}

	for current.TypeKind == ast.TypeKindList {
		isList = true
		current = doc.Types[current.OfType]
		itemNonNull = false
		if current.TypeKind == ast.TypeKindNonNull {
			itemNonNull = true
			current = doc.Types[current.OfType]
		}
	}

	return doc.Input.ByteSliceString(current.Name), nullable, isList, itemNonNull
}

func getDescription(doc *ast.Document, desc ast.Description) string {
	if !desc.IsDefined {
		return ""
	}

	return strings.TrimSpace(doc.Input.ByteSliceString(desc.Content))
}
