package schema

import (
	"fmt"
	"path"
)

// Filter selects which object types become entities. Patterns are exact type
// names or path.Match globs. An empty Include selects every object type and
// Exclude always wins over Include. Operation roots are never filtered.
type Filter struct {
	Include []string
	Exclude []string
}

// Empty reports whether the filter keeps every type.
func (f Filter) Empty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Apply returns a copy of g without the object types the filter rejects.
// Fields and union members that pointed at a removed object are dropped with
// it so the copy still satisfies Validate's reference invariant. The second
// result lists patterns that matched no object type.
func (f Filter) Apply(g *SchemaGraph) (*SchemaGraph, []string) {
	if f.Empty() {
		return g, nil
	}

	used := make(map[string]bool)
	removed := make(map[string]bool)
	for _, def := range g.Entities() {
		if !f.keeps(def.Name, used) {
			removed[def.Name] = true
		}
	}

	out := NewGraph()
	out.Roots = g.Roots
	for _, def := range g.Definitions() {
		if removed[def.Name] {
			continue
		}
		out.Types[def.Name] = pruneReferences(def, removed)
		out.Order = append(out.Order, def.Name)
	}

	var unmatched []string
	for _, p := range append(append([]string{}, f.Include...), f.Exclude...) {
		if !used[p] {
			unmatched = append(unmatched, fmt.Sprintf("filter pattern %q matched no object type", p))
		}
	}
	return out, unmatched
}

func (f Filter) keeps(name string, used map[string]bool) bool {
	for _, p := range f.Exclude {
		if match(p, name) {
			used[p] = true
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	kept := false
	for _, p := range f.Include {
		if match(p, name) {
			used[p] = true
			kept = true
		}
	}
	return kept
}

func match(pattern, name string) bool {
	if pattern == name {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

func pruneReferences(def *TypeDef, removed map[string]bool) *TypeDef {
	cp := *def
	cp.Fields = nil
	for _, field := range def.Fields {
		if !removed[field.Type] {
			cp.Fields = append(cp.Fields, field)
		}
	}
	cp.Members = nil
	for _, m := range def.Members {
		if !removed[m] {
			cp.Members = append(cp.Members, m)
		}
	}
	return &cp
}
