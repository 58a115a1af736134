package schema

// Source carries exactly one raw schema form.
type Source struct {
	// SDL is GraphQL schema definition text.
	SDL string
	// Introspection is a decoded introspection result.
	Introspection *Introspection
}

// Build normalizes whichever form src carries into a SchemaGraph. Supplying
// both forms, or neither, is rejected.
func Build(src Source) (*SchemaGraph, error) {
	hasSDL := src.SDL != ""
	hasIntrospection := src.Introspection != nil

	switch {
	case hasSDL && hasIntrospection:
		return nil, &SchemaError{Stage: StageSource, Message: "both SDL and introspection input were supplied; provide exactly one"}
	case hasSDL:
		return FromSDL(src.SDL)
	case hasIntrospection:
		return FromIntrospection(src.Introspection)
	}
	return nil, &SchemaError{Stage: StageSource, Message: "no schema input was supplied"}
}
