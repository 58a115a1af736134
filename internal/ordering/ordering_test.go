package ordering

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/relations"
)

func belongsTo(from, to, fk string) relations.Edge {
	return relations.Edge{From: from, To: to, ForeignKey: fk, Cardinality: relations.BelongsTo}
}

func TestOrder_ReferencedFirst(t *testing.T) {
	// Test: Post is declared first but depends on User
	edges := []relations.Edge{belongsTo("Post", "User", "authorId")}
	edges = append(edges, edges[0].Mirror())

	plan := Order([]string{"Post", "User"}, edges)

	assert.Equal(t, []string{"User", "Post"}, plan.Order)
	assert.Empty(t, plan.Deferred)
	assert.Empty(t, plan.Cyclic)
	assert.Equal(t, 0, plan.Position("User"))
	assert.Equal(t, -1, plan.Position("Ghost"))
}

func TestOrder_DeclarationTieBreak(t *testing.T) {
	// Test: unconstrained entities keep declaration order
	plan := Order([]string{"C", "A", "B"}, nil)
	assert.Equal(t, []string{"C", "A", "B"}, plan.Order)

	plan = Order([]string{"Comment", "Tag", "Post", "User"}, []relations.Edge{
		belongsTo("Comment", "Post", "postId"),
		belongsTo("Post", "User", "authorId"),
	})
	assert.Equal(t, []string{"Tag", "User", "Post", "Comment"}, plan.Order)
}

func TestOrder_MutualCycle(t *testing.T) {
	// Test: A belongsTo B and B belongsTo A still yields both, both FKs deferred
	plan := Order([]string{"A", "B"}, []relations.Edge{
		belongsTo("A", "B", "bId"),
		belongsTo("B", "A", "aId"),
	})

	assert.Equal(t, []string{"A", "B"}, plan.Order)
	assert.Equal(t, []relations.Edge{belongsTo("A", "B", "bId"), belongsTo("B", "A", "aId")}, plan.Deferred)
	assert.Equal(t, []string{"A", "B"}, plan.Cyclic)
	assert.True(t, plan.IsDeferred("A", "bId"))
	assert.True(t, plan.IsDeferred("B", "aId"))
}

func TestOrder_SelfReference(t *testing.T) {
	plan := Order([]string{"Employee", "Team"}, []relations.Edge{
		belongsTo("Employee", "Employee", "managerId"),
		belongsTo("Employee", "Team", "teamId"),
	})

	assert.Equal(t, []string{"Team", "Employee"}, plan.Order)
	assert.Equal(t, []relations.Edge{belongsTo("Employee", "Employee", "managerId")}, plan.Deferred)
	assert.Equal(t, []string{"Employee"}, plan.Cyclic)
}

func TestOrder_CycleBreaksOnCycleMember(t *testing.T) {
	// Test: D only depends on the cycle, so the cycle is broken at B, not D
	plan := Order([]string{"D", "B", "C"}, []relations.Edge{
		belongsTo("D", "B", "bId"),
		belongsTo("B", "C", "cId"),
		belongsTo("C", "B", "bId"),
	})

	assert.Equal(t, []string{"B", "D", "C"}, plan.Order)
	assert.Equal(t, []relations.Edge{belongsTo("B", "C", "cId"), belongsTo("C", "B", "bId")}, plan.Deferred)
	assert.Equal(t, []string{"B", "C"}, plan.Cyclic)
	assert.False(t, plan.IsDeferred("D", "bId"))
}

func TestOrder_LongCycleDefersEveryEdge(t *testing.T) {
	// Test: a three table cycle defers all three FKs, the edge into it stays inline
	plan := Order([]string{"A", "B", "C", "D"}, []relations.Edge{
		belongsTo("A", "B", "bId"),
		belongsTo("B", "C", "cId"),
		belongsTo("C", "A", "aId"),
		belongsTo("D", "A", "aId"),
	})

	assert.Equal(t, []string{"A", "C", "B", "D"}, plan.Order)
	require.Len(t, plan.Deferred, 3)
	assert.True(t, plan.IsDeferred("A", "bId"))
	assert.True(t, plan.IsDeferred("B", "cId"))
	assert.True(t, plan.IsDeferred("C", "aId"))
	assert.False(t, plan.IsDeferred("D", "aId"))
	assert.Equal(t, []string{"A", "C", "B"}, plan.Cyclic)
}

func TestOrder_IgnoresUnknownEntities(t *testing.T) {
	plan := Order([]string{"Post"}, []relations.Edge{belongsTo("Post", "User", "authorId")})
	assert.Equal(t, []string{"Post"}, plan.Order)
	assert.Empty(t, plan.Deferred)
}

func TestOrder_RandomGraphs(t *testing.T) {
	// Test plan:
	// - Every entity appears exactly once
	// - Every non-deferred edge has its target strictly earlier
	// - Every edge inside a cycle is deferred
	// - Acyclic graphs never defer anything
	// - Repeated runs give the same plan
	r := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		n := 1 + r.Intn(10)
		entities := make([]string, n)
		for i := range entities {
			entities[i] = fmt.Sprintf("E%d", i)
		}

		acyclic := r.Intn(2) == 0
		var edges []relations.Edge
		for i := 0; i < r.Intn(2*n+1); i++ {
			from, to := r.Intn(n), r.Intn(n)
			if acyclic && to >= from {
				continue
			}
			edges = append(edges, belongsTo(entities[from], entities[to], fmt.Sprintf("f%dId", i)))
		}

		plan := Order(entities, edges)
		require.ElementsMatch(t, entities, plan.Order)

		reach := closure(entities, edges)
		for _, e := range edges {
			if reach[e.To][e.From] || e.To == e.From {
				assert.True(t, plan.IsDeferred(e.From, e.ForeignKey), "iteration %d cyclic edge %+v", iter, e)
			}
		}

		for _, e := range edges {
			if plan.IsDeferred(e.From, e.ForeignKey) {
				continue
			}
			assert.Less(t, plan.Position(e.To), plan.Position(e.From), "iteration %d edge %+v", iter, e)
		}
		if acyclic {
			assert.Empty(t, plan.Deferred, "iteration %d", iter)
			assert.Empty(t, plan.Cyclic, "iteration %d", iter)
		}

		assert.Equal(t, plan, Order(entities, edges))
	}
}

// closure returns reach[a][b] for every b reachable from a along BelongsTo
// edges in one or more steps.
func closure(entities []string, edges []relations.Edge) map[string]map[string]bool {
	reach := make(map[string]map[string]bool, len(entities))
	for _, name := range entities {
		reach[name] = map[string]bool{}
	}
	for _, e := range edges {
		reach[e.From][e.To] = true
	}
	for _, k := range entities {
		for _, i := range entities {
			if !reach[i][k] {
				continue
			}
			for _, j := range entities {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}
	return reach
}
