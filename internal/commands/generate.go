package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/gqlorm/gqlorm/internal/codegen"
	"github.com/gqlorm/gqlorm/internal/config"
	"github.com/gqlorm/gqlorm/internal/introspect"
	"github.com/gqlorm/gqlorm/internal/output"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/watch"
)

type GenerateOptions struct {
	// ConfigPath is auto-detected in the working directory when empty.
	ConfigPath string

	// Overrides of the loaded configuration; empty values keep the file's.
	OutputDir string
	ORM       string
	DB        string
	Headers   map[string]string

	Watch  bool
	DryRun bool
}

func (o GenerateOptions) overrides() config.Overrides {
	ov := config.Overrides{}
	if o.OutputDir != "" {
		ov["output_dir"] = o.OutputDir
	}
	if o.ORM != "" {
		ov["orm"] = o.ORM
	}
	if o.DB != "" {
		ov["db"] = o.DB
	}
	if len(o.Headers) > 0 {
		ov["headers"] = o.Headers
	}
	return ov
}

// SchemaLoader obtains the schema graph a configuration points at.
type SchemaLoader interface {
	Load(ctx context.Context, cfg *config.Config) (*schema.SchemaGraph, error)
}

type sourceLoader struct {
	client *introspect.Client
}

func (l *sourceLoader) Load(ctx context.Context, cfg *config.Config) (*schema.SchemaGraph, error) {
	if cfg.SchemaFile != "" {
		return introspect.LoadFile(cfg.SchemaFile)
	}
	return l.client.Load(ctx, cfg.IntrospectRequest())
}

type GenerateCommand struct {
	loader   SchemaLoader
	pipeline *codegen.Pipeline
	report   *Reporter
	logger   zerolog.Logger
	// dir is searched for a config file when none is given.
	dir string
}

func NewGenerateCommand(logger zerolog.Logger, out io.Writer) *GenerateCommand {
	return &GenerateCommand{
		loader:   &sourceLoader{client: introspect.NewClient(introspect.WithLogger(logger))},
		pipeline: codegen.NewPipeline(codegen.WithLogger(logger)),
		report:   NewReporter(out),
		logger:   logger.With().Str("component", "generate").Logger(),
		dir:      ".",
	}
}

func (gc *GenerateCommand) Run(ctx context.Context, opts GenerateOptions) error {
	cfg, path, err := gc.loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.Watch {
		return gc.watch(ctx, cfg, path, opts)
	}
	return gc.generate(ctx, cfg, opts.DryRun)
}

func (gc *GenerateCommand) loadConfig(opts GenerateOptions) (*config.Config, string, error) {
	path := opts.ConfigPath
	if path == "" {
		found, err := config.Find(gc.dir)
		if err != nil {
			return nil, "", fmt.Errorf("%w; run `gqlorm init` to create one", err)
		}
		path = found
	}
	gc.logger.Debug().Str("path", path).Msg("loading config")

	cfg, err := config.Load(path, opts.overrides())
	if err != nil {
		return nil, "", err
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		gc.report.Warn("%s", w)
	}
	if err := result.Err(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func (gc *GenerateCommand) generate(ctx context.Context, cfg *config.Config, dryRun bool) error {
	source := cfg.URL
	if cfg.SchemaFile != "" {
		source = cfg.SchemaFile
	}
	gc.logger.Info().Str("source", source).Msg("loading schema")

	g, err := gc.loader.Load(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	result, err := gc.pipeline.Run(g, cfg.PipelineOptions())
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if dryRun {
		for _, f := range result.Files {
			gc.report.Info("%s", f.Path)
		}
		gc.report.Summary(result.Summary, nil, cfg.OutputDir)
		return nil
	}

	stats, err := output.NewWriter(cfg.OutputDir, gc.logger).Write(ctx, result.Files)
	if err != nil {
		return err
	}
	gc.report.Summary(result.Summary, &stats, cfg.OutputDir)
	return nil
}

// watch regenerates whenever the config or the schema file changes. A failed
// run is reported and watching continues.
func (gc *GenerateCommand) watch(ctx context.Context, cfg *config.Config, path string, opts GenerateOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gc.generate(ctx, cfg, opts.DryRun); err != nil {
		gc.report.Error(err)
	}

	files := []string{path}
	if cfg.SchemaFile != "" {
		files = append(files, cfg.SchemaFile)
	}

	fw, err := watch.NewFileWatcher(files, watch.DefaultDebounce, func(changed []string) {
		gc.logger.Info().Strs("files", changed).Msg("regenerating")
		next, _, err := gc.loadConfig(GenerateOptions{
			ConfigPath: path,
			OutputDir:  opts.OutputDir,
			ORM:        opts.ORM,
			DB:         opts.DB,
			Headers:    opts.Headers,
		})
		if err != nil {
			gc.report.Error(err)
			return
		}
		if err := gc.generate(ctx, next, opts.DryRun); err != nil {
			gc.report.Error(err)
		}
	}, gc.logger)
	if err != nil {
		return fmt.Errorf("failed to watch files: %w", err)
	}
	defer fw.Close()

	gc.report.Info("Watching %d file(s) for changes, press Ctrl+C to stop", len(files))
	if err := fw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
