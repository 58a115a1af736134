package codegen

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/ordering"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

// Warning stages.
const (
	StageFilter    = "filter"
	StageRelations = "relations"
	StageOrdering  = "ordering"
)

// Options is the resolved configuration of one generation run.
type Options struct {
	ORM     target.ORM
	Dialect target.Dialect
	Naming  target.Naming
	// Pluralizer defaults to the simple rule.
	Pluralizer naming.Pluralizer

	TypeMappings      map[string]string
	SQLTypeMappings   map[string]string
	FieldOverrides    map[string]string
	FieldSQLOverrides map[string]string
	// Aliases map a foreign key noun to an entity; nil selects
	// relations.DefaultAliases.
	Aliases map[string]string

	Filter schema.Filter

	GenerateEntities   bool
	GenerateMigrations bool
}

// Result is the complete output of a run.
type Result struct {
	Files   []model.GeneratedFile
	Summary model.Summary
	Model   *model.Model
}

// Pipeline runs schema graph → relations → ordering → model → emitter.
type Pipeline struct {
	registry *Registry
	logger   zerolog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r *Registry) PipelineOption {
	return func(p *Pipeline) { p.registry = r }
}

// WithLogger sets the pipeline logger. The default discards everything.
func WithLogger(logger zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline creates a pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{registry: DefaultRegistry, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "codegen").Logger()
	return p
}

// Run generates every file for g. Either the full file set is returned or an
// error is; every fatal condition is detected before the emitter runs.
func (p *Pipeline) Run(g *schema.SchemaGraph, opts Options) (*Result, error) {
	gen, err := p.registry.Get(opts.ORM)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(g); err != nil {
		return nil, err
	}

	var warnings []model.Warning

	graph, unmatched := opts.Filter.Apply(g)
	for _, msg := range unmatched {
		warnings = append(warnings, model.Warning{Stage: StageFilter, Message: msg})
	}

	rel := relations.Infer(graph, opts.Aliases)
	for _, w := range rel.Warnings {
		warnings = append(warnings, model.Warning{Stage: StageRelations, Type: w.Type, Field: w.Field, Message: w.Message})
	}

	var names []string
	for _, def := range graph.Entities() {
		names = append(names, def.Name)
	}
	plan := ordering.Order(names, rel.Edges)
	for _, e := range plan.Deferred {
		warnings = append(warnings, model.Warning{
			Stage:   StageOrdering,
			Type:    e.From,
			Field:   e.ForeignKey,
			Message: fmt.Sprintf("reference to %s is part of a cycle; its constraint is deferred", e.To),
		})
	}
	p.logger.Debug().
		Strs("order", plan.Order).
		Int("deferred", len(plan.Deferred)).
		Strs("cyclic", plan.Cyclic).
		Msg("entity order resolved")

	resolver, err := typemap.New(typemap.Options{
		ORM:               opts.ORM,
		Dialect:           opts.Dialect,
		TypeMappings:      opts.TypeMappings,
		SQLTypeMappings:   opts.SQLTypeMappings,
		FieldOverrides:    opts.FieldOverrides,
		FieldSQLOverrides: opts.FieldSQLOverrides,
	})
	if err != nil {
		return nil, err
	}

	m, err := model.Build(model.Input{
		Graph:              graph,
		Relations:          rel,
		Plan:               plan,
		Resolver:           resolver,
		Namer:              naming.NewNamer(opts.Naming, opts.Pluralizer),
		ORM:                opts.ORM,
		GenerateEntities:   opts.GenerateEntities,
		GenerateMigrations: opts.GenerateMigrations,
	})
	if err != nil {
		return nil, err
	}

	files, err := gen.Generate(m)
	if err != nil {
		return nil, fmt.Errorf("%s generator: %w", gen.ORM(), err)
	}

	summary := model.Summary{
		Entities:      len(m.Entities),
		Enums:         len(m.Enums),
		Migrations:    m.MigrationCount(),
		Relationships: len(rel.BelongsTo()),
		Files:         len(files),
		Warnings:      warnings,
	}
	p.logger.Info().
		Str("orm", string(opts.ORM)).
		Str("db", string(opts.Dialect)).
		Int("entities", summary.Entities).
		Int("files", summary.Files).
		Int("warnings", len(warnings)).
		Msg("generation complete")

	return &Result{Files: files, Summary: summary, Model: m}, nil
}
