// Package ordering computes the table creation order of a generation run.
package ordering

import (
	"github.com/gqlorm/gqlorm/internal/relations"
)

// Plan is a total order over entities plus the foreign keys that cannot be
// created inline because their target is not created first or they close a
// cycle.
type Plan struct {
	// Order lists entity names, referenced tables before referencing ones
	// wherever the graph allows it.
	Order []string
	// Deferred are the BelongsTo edges whose constraint must be added after
	// every table exists: those pointing at a later table and every edge
	// inside a cycle. Listed in Order position of their source.
	Deferred []relations.Edge
	// Cyclic lists the entities that take part in at least one cycle,
	// including self-references, in Order position.
	Cyclic []string
}

// IsDeferred reports whether the foreign key owner.field is deferred.
func (p *Plan) IsDeferred(owner, field string) bool {
	for _, e := range p.Deferred {
		if e.From == owner && e.ForeignKey == field {
			return true
		}
	}
	return false
}

// Position returns the index of entity in Order, or -1.
func (p *Plan) Position(entity string) int {
	for i, name := range p.Order {
		if name == entity {
			return i
		}
	}
	return -1
}

// Order sorts entities (given in declaration order) so that every BelongsTo
// target precedes its source. It uses Kahn's algorithm over an index-based
// adjacency list; ties go to the earliest declared entity. When only cyclic
// entities remain, the earliest declared one is placed and the sort resumes,
// so Order never fails. Edges between unknown entities are ignored.
func Order(entities []string, edges []relations.Edge) *Plan {
	index := make(map[string]int, len(entities))
	for i, name := range entities {
		index[name] = i
	}

	n := len(entities)
	dependents := make([][]int, n)
	dependsOn := make([][]int, n)
	inDegree := make([]int, n)
	var belongsTo []relations.Edge
	for _, e := range edges {
		if e.Cardinality != relations.BelongsTo {
			continue
		}
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		belongsTo = append(belongsTo, e)
		dependsOn[from] = append(dependsOn[from], to)
		if from == to {
			continue
		}
		dependents[to] = append(dependents[to], from)
		inDegree[from]++
	}

	placed := make([]bool, n)
	position := make([]int, n)
	order := make([]string, 0, n)
	place := func(i int) {
		placed[i] = true
		position[i] = len(order)
		order = append(order, entities[i])
		for _, d := range dependents[i] {
			inDegree[d]--
		}
	}

	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !placed[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			// Every remaining entity waits on a cycle; break the earliest
			// declared one that is itself on a cycle.
			for i := 0; i < n; i++ {
				if !placed[i] && reaches(dependsOn, placed, i, i) {
					next = i
					break
				}
			}
		}
		place(next)
	}

	plan := &Plan{Order: order}
	none := make([]bool, n)
	for _, e := range belongsTo {
		from, to := index[e.From], index[e.To]
		// An edge whose target can reach back to its source is part of a
		// cycle, even when the order happens to satisfy it.
		if position[to] >= position[from] || reaches(dependsOn, none, to, from) {
			plan.Deferred = append(plan.Deferred, e)
		}
	}
	sortByPosition(plan.Deferred, index, position)

	for _, name := range order {
		if i := index[name]; reaches(dependsOn, none, i, i) {
			plan.Cyclic = append(plan.Cyclic, name)
		}
	}
	return plan
}

// reaches reports whether target is reachable from start in one or more
// steps, skipping nodes marked in skip.
func reaches(adj [][]int, skip []bool, start, target int) bool {
	visited := make([]bool, len(adj))
	stack := append([]int(nil), adj[start]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if skip[cur] || visited[cur] {
			continue
		}
		if cur == target {
			return true
		}
		visited[cur] = true
		stack = append(stack, adj[cur]...)
	}
	return false
}

// sortByPosition orders edges by their source's position, keeping input
// order among edges of the same source.
func sortByPosition(edges []relations.Edge, index map[string]int, position []int) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && position[index[edges[j].From]] < position[index[edges[j-1].From]]; j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}
