package schema

import (
	"strings"

	"github.com/gqlorm/gqlorm/internal/codegen/writer"
)

// PrintSDL renders g as GraphQL SDL in declaration order. A schema block is
// emitted only when the roots differ from the conventional names.
func PrintSDL(g *SchemaGraph) string {
	w := writer.GraphQL()

	if g.Roots != DefaultRoots {
		w.WriteBlock("schema {", "}", func() {
			if g.Roots.Query != "" {
				w.WriteLinef("query: %s", g.Roots.Query)
			}
			if g.Roots.Mutation != "" {
				w.WriteLinef("mutation: %s", g.Roots.Mutation)
			}
			if g.Roots.Subscription != "" {
				w.WriteLinef("subscription: %s", g.Roots.Subscription)
			}
		})
		w.BlankLine()
	}

	for _, def := range g.Definitions() {
		writeDescription(w, def.Description)
		switch def.Kind {
		case KindScalar:
			w.WriteLinef("scalar %s", def.Name)
		case KindEnum:
			w.WriteBlock("enum "+def.Name+" {", "}", func() {
				for _, v := range def.Values {
					w.WriteLine(v)
				}
			})
		case KindUnion:
			w.WriteLinef("union %s = %s", def.Name, strings.Join(def.Members, " | "))
		case KindInterface:
			w.WriteBlock("interface "+def.Name+" {", "}", func() { writeFields(w, def.Fields) })
		case KindObject:
			header := "type " + def.Name
			if len(def.Implements) > 0 {
				header += " implements " + strings.Join(def.Implements, " & ")
			}
			w.WriteBlock(header+" {", "}", func() { writeFields(w, def.Fields) })
		}
		w.BlankLine()
	}

	return strings.TrimRight(w.String(), "\n") + "\n"
}

func writeFields(w *writer.Writer, fields []FieldDef) {
	for _, f := range fields {
		writeDescription(w, f.Description)
		w.WriteLinef("%s: %s", f.Name, f.TypeString())
	}
}

func writeDescription(w *writer.Writer, desc string) {
	if desc == "" {
		return
	}
	if !strings.Contains(desc, "\n") && !strings.Contains(desc, `"`) {
		w.WriteLinef("%q", desc)
		return
	}
	w.WriteLine(`"""`)
	for _, line := range strings.Split(desc, "\n") {
		w.WriteLine(strings.ReplaceAll(line, `"""`, `\"""`))
	}
	w.WriteLine(`"""`)
}

// TypeString renders the field's type in SDL notation, e.g. [String!]!.
func (f FieldDef) TypeString() string {
	s := f.Type
	if f.IsList {
		if f.ItemNonNull {
			s += "!"
		}
		s = "[" + s + "]"
	}
	if !f.Nullable {
		s += "!"
	}
	return s
}
