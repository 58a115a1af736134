// Package testutil builds generation fixtures for emitter and pipeline tests.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/ordering"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

// BlogSDL is the two-entity schema most tests start from.
const BlogSDL = `
type User {
  id: ID!
  name: String!
  email: String
}

type Post {
  id: ID!
  title: String!
  authorId: ID!
}

type Query {
  users: [User!]!
}
`

// graphCache holds parsed graphs keyed by the SHA-256 of their SDL. Graphs
// are read-only after parsing, so sharing them across tests is safe.
var graphCache = struct {
	mu     sync.RWMutex
	graphs map[string]*schema.SchemaGraph
}{graphs: make(map[string]*schema.SchemaGraph)}

// Graph parses sdl once per test binary and fails the test on error.
func Graph(t *testing.T, sdl string) *schema.SchemaGraph {
	t.Helper()

	sum := sha256.Sum256([]byte(sdl))
	key := hex.EncodeToString(sum[:])

	graphCache.mu.RLock()
	g, ok := graphCache.graphs[key]
	graphCache.mu.RUnlock()
	if ok {
		return g
	}

	graphCache.mu.Lock()
	defer graphCache.mu.Unlock()
	if g, ok := graphCache.graphs[key]; ok {
		return g
	}
	g, err := schema.FromSDL(sdl)
	require.NoError(t, err)
	graphCache.graphs[key] = g
	return g
}

// ModelOptions selects the run a fixture model is built for. Zero values
// select Diesel, Sqlite and snake_case.
type ModelOptions struct {
	ORM             target.ORM
	Dialect         target.Dialect
	Naming          target.Naming
	TypeMappings    map[string]string
	SQLTypeMappings map[string]string
	Aliases         map[string]string
	// SkipEntities and SkipMigrations turn off the respective output.
	SkipEntities   bool
	SkipMigrations bool
}

// Model runs schema parsing, inference, ordering and resolution on sdl and
// returns a fresh Model.
func Model(t *testing.T, sdl string, opts ModelOptions) *model.Model {
	t.Helper()

	m, err := TryModel(t, sdl, opts)
	require.NoError(t, err)
	return m
}

// TryModel is Model without the error assertion, for tests expecting a
// resolution failure.
func TryModel(t *testing.T, sdl string, opts ModelOptions) (*model.Model, error) {
	t.Helper()

	if opts.ORM == "" {
		opts.ORM = target.Diesel
	}
	if opts.Dialect == "" {
		opts.Dialect = target.Sqlite
	}

	g := Graph(t, sdl)
	rel := relations.Infer(g, opts.Aliases)

	var names []string
	for _, def := range g.Entities() {
		names = append(names, def.Name)
	}
	plan := ordering.Order(names, rel.Edges)

	resolver, err := typemap.New(typemap.Options{
		ORM:             opts.ORM,
		Dialect:         opts.Dialect,
		TypeMappings:    opts.TypeMappings,
		SQLTypeMappings: opts.SQLTypeMappings,
	})
	require.NoError(t, err)

	return model.Build(model.Input{
		Graph:              g,
		Relations:          rel,
		Plan:               plan,
		Resolver:           resolver,
		Namer:              naming.NewNamer(opts.Naming, nil),
		ORM:                opts.ORM,
		GenerateEntities:   !opts.SkipEntities,
		GenerateMigrations: !opts.SkipMigrations,
	})
}

// FileMap indexes generated files by path.
func FileMap(files []model.GeneratedFile) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = f.Content
	}
	return out
}

// Paths lists generated file paths in emission order.
func Paths(files []model.GeneratedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
