package schema

import "fmt"

// Validate checks the invariants every later stage relies on: field names are
// unique per type, every referenced type exists, objects only implement
// interfaces and unions only contain object types.
func Validate(g *SchemaGraph) error {
	for _, def := range g.Definitions() {
		switch def.Kind {
		case KindObject, KindInterface:
			if len(def.Fields) == 0 {
				return &SchemaError{Stage: StageValidate, Type: def.Name, Message: "type declares no fields"}
			}
			if err := validateFields(g, def); err != nil {
				return err
			}
			for _, iface := range def.Implements {
				kind, ok := g.KindOf(iface)
				if !ok || kind != KindInterface {
					return &SchemaError{Stage: StageValidate, Type: def.Name, Message: fmt.Sprintf("implements %s, which is not an interface type", iface)}
				}
			}
		case KindUnion:
			if len(def.Members) == 0 {
				return &SchemaError{Stage: StageValidate, Type: def.Name, Message: "union has no members"}
			}
			for _, member := range def.Members {
				kind, ok := g.KindOf(member)
				if !ok {
					return &SchemaError{Stage: StageValidate, Type: def.Name, Message: fmt.Sprintf("union member %s is not defined", member)}
				}
				if kind != KindObject {
					return &SchemaError{Stage: StageValidate, Type: def.Name, Message: fmt.Sprintf("union member %s is a %s, not an object type", member, kind)}
				}
			}
		case KindEnum:
			if len(def.Values) == 0 {
				return &SchemaError{Stage: StageValidate, Type: def.Name, Message: "enum has no values"}
			}
		}
	}
	return nil
}

func validateFields(g *SchemaGraph, def *TypeDef) error {
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Name] {
			return &SchemaError{Stage: StageValidate, Type: def.Name, Field: f.Name, Message: "field is declared more than once"}
		}
		seen[f.Name] = true

		if _, ok := g.KindOf(f.Type); !ok {
			return &SchemaError{Stage: StageValidate, Type: def.Name, Field: f.Name, Message: fmt.Sprintf("references undefined type %s", f.Type)}
		}
	}
	return nil
}
