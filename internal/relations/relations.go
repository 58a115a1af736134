// Package relations infers foreign-key relationships between entities from
// field naming conventions.
package relations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gqlorm/gqlorm/internal/schema"
)

// Cardinality is the direction of an edge.
type Cardinality int

const (
	BelongsTo Cardinality = iota + 1
	HasMany
)

func (c Cardinality) String() string {
	switch c {
	case BelongsTo:
		return "belongs_to"
	case HasMany:
		return "has_many"
	}
	return "unknown"
}

// Edge is one directed relationship. For BelongsTo, From holds the foreign
// key field; for the mirrored HasMany, To holds it.
type Edge struct {
	From        string
	To          string
	ForeignKey  string
	Cardinality Cardinality
}

// SelfReferential reports whether the edge points back at its own entity.
func (e Edge) SelfReferential() bool {
	return e.From == e.To
}

// Mirror returns the opposite edge.
func (e Edge) Mirror() Edge {
	m := Edge{From: e.To, To: e.From, ForeignKey: e.ForeignKey, Cardinality: HasMany}
	if e.Cardinality == HasMany {
		m.Cardinality = BelongsTo
	}
	return m
}

// Warning is a non-fatal inference finding.
type Warning struct {
	Type    string
	Field   string
	Message string
}

// Graph is the inferred relationship set in a stable order: entities in
// declaration order, fields in declaration order, each BelongsTo followed by
// its HasMany mirror.
type Graph struct {
	Edges    []Edge
	Warnings []Warning
}

// BelongsTo returns the BelongsTo edges only.
func (g *Graph) BelongsTo() []Edge {
	return g.filter(func(e Edge) bool { return e.Cardinality == BelongsTo })
}

// From returns every edge leaving entity, in order.
func (g *Graph) From(entity string) []Edge {
	return g.filter(func(e Edge) bool { return e.From == entity })
}

// ForeignKey returns the BelongsTo edge created by owner.field, if any.
func (g *Graph) ForeignKey(owner, field string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Cardinality == BelongsTo && e.From == owner && e.ForeignKey == field {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) filter(keep func(Edge) bool) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// DefaultAliases map person-role nouns to the entity they conventionally
// reference, so authorId links to User when no Author type exists.
var DefaultAliases = map[string]string{
	"author":    "User",
	"owner":     "User",
	"creator":   "User",
	"createdBy": "User",
	"updatedBy": "User",
	"assignee":  "User",
	"reporter":  "User",
	"reviewer":  "User",
	"sender":    "User",
	"recipient": "User",
}

// Infer walks every entity and creates a BelongsTo edge for each scalar ID
// field named <noun>Id (suffix matched case-insensitively) whose noun names
// an entity. The noun is matched exactly first, then case-insensitively,
// then through aliases (nil selects DefaultAliases). Fields with no matching
// entity stay plain columns and produce a warning.
func Infer(g *schema.SchemaGraph, aliases map[string]string) *Graph {
	if aliases == nil {
		aliases = DefaultAliases
	}
	out := &Graph{}
	entities := make(map[string]bool)
	for _, def := range g.Entities() {
		entities[def.Name] = true
	}

	for _, def := range g.Entities() {
		for _, f := range def.Fields {
			noun, ok := referenceNoun(f)
			if !ok {
				continue
			}

			targetDef, found := findEntity(g, entities, noun)
			if !found {
				if alias, ok := lookupAlias(aliases, noun); ok {
					targetDef, found = findEntity(g, entities, alias)
				}
			}
			if !found {
				out.Warnings = append(out.Warnings, Warning{
					Type:    def.Name,
					Field:   f.Name,
					Message: fmt.Sprintf("field looks like a foreign key but no entity named %s exists; treating it as a plain column", upperFirst(noun)),
				})
				continue
			}

			edge := Edge{From: def.Name, To: targetDef.Name, ForeignKey: f.Name, Cardinality: BelongsTo}
			out.Edges = append(out.Edges, edge, edge.Mirror())
		}
	}

	out.Warnings = append(out.Warnings, collisions(out)...)
	return out
}

func referenceNoun(f schema.FieldDef) (string, bool) {
	if f.Type != schema.ScalarID || f.IsList {
		return "", false
	}
	if len(f.Name) <= 2 || !strings.EqualFold(f.Name[len(f.Name)-2:], "id") {
		return "", false
	}
	noun := strings.TrimRight(f.Name[:len(f.Name)-2], "_")
	return noun, noun != ""
}

func findEntity(g *schema.SchemaGraph, entities map[string]bool, noun string) (*schema.TypeDef, bool) {
	for _, candidate := range []string{noun, upperFirst(noun)} {
		if def, ok := g.Types[candidate]; ok && entities[candidate] {
			return def, true
		}
	}
	def, ok := g.FindObject(noun)
	if !ok || !entities[def.Name] {
		return nil, false
	}
	return def, true
}

func lookupAlias(aliases map[string]string, noun string) (string, bool) {
	if alias, ok := aliases[noun]; ok {
		return alias, true
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	// Sorted so that keys differing only in case resolve the same way every run.
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, noun) {
			return aliases[k], true
		}
	}
	return "", false
}

// collisions warns when one entity references the same target through more
// than one foreign key. Join declarations can only name one of them.
func collisions(g *Graph) []Warning {
	var warnings []Warning
	seen := make(map[[2]string]string)
	for _, e := range g.BelongsTo() {
		key := [2]string{e.From, e.To}
		if first, dup := seen[key]; dup {
			warnings = append(warnings, Warning{
				Type:    e.From,
				Field:   e.ForeignKey,
				Message: fmt.Sprintf("%s references %s through both %s and %s; only %s is used for join declarations", e.From, e.To, first, e.ForeignKey, first),
			})
			continue
		}
		seen[key] = e.ForeignKey
	}
	return warnings
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
