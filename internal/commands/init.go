package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/gqlorm/gqlorm/internal/config"
	"github.com/gqlorm/gqlorm/internal/target"
)

type InitOptions struct {
	URL        string
	SchemaFile string
	ORM        string
	DB         string
	OutputDir  string
	Headers    map[string]string

	// Path of the config file to create; defaults to gqlorm.toml.
	Path     string
	Force    bool
	Generate bool
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

type InitCommand struct {
	filesystem  FileSystem
	report      *Reporter
	interactive func() bool
	// generate runs the first generation for --generate.
	generate func(ctx context.Context, path string) error
}

func NewInitCommand(out io.Writer) *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		report:     NewReporter(out),
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (ic *InitCommand) Run(ctx context.Context, opts InitOptions) error {
	return ic.RunWithOptions(ctx, opts)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts InitOptions, teaOpts ...tea.ProgramOption) error {
	if opts.Path == "" {
		opts.Path = config.DefaultFileName
	}
	if _, err := ic.filesystem.Stat(opts.Path); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists; use --force to overwrite it", opts.Path)
	}

	if opts.URL == "" && opts.SchemaFile == "" {
		if len(teaOpts) == 0 && !ic.interactive() {
			return errors.New("a schema source is required: pass --url or --schema-file")
		}
		if err := ic.promptInitOptions(&opts, teaOpts...); err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		ic.report.Warn("%s", w)
	}
	if err := result.Err(); err != nil {
		return err
	}

	if err := config.Save(cfg, opts.Path); err != nil {
		return err
	}
	ic.report.Success("Created %s (%s on %s, output in %s)", opts.Path, cfg.ORM, cfg.DB, cfg.OutputDir)

	if !opts.Generate {
		ic.report.Info("Run 'gqlorm generate' to generate your database code.")
		return nil
	}
	if ic.generate == nil {
		return errors.New("generation is not available")
	}
	return ic.generate(ctx, opts.Path)
}

func newConfig(opts InitOptions) (*config.Config, error) {
	cfg := config.New()
	cfg.URL = opts.URL
	cfg.SchemaFile = opts.SchemaFile
	cfg.Headers = opts.Headers

	if opts.ORM != "" {
		orm, err := target.ParseORM(opts.ORM)
		if err != nil {
			return nil, err
		}
		cfg.ORM = orm
	}
	if opts.DB != "" {
		db, err := target.ParseDialect(opts.DB)
		if err != nil {
			return nil, err
		}
		cfg.DB = db
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	return cfg, nil
}

func (ic *InitCommand) promptInitOptions(opts *InitOptions, teaOpts ...tea.ProgramOption) error {
	if opts.ORM == "" {
		opts.ORM = config.DefaultORM.String()
	}
	if opts.DB == "" {
		opts.DB = config.DefaultDialect.String()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}

	form := ic.createInitForm(opts)

	if len(teaOpts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, teaOpts...)
		if _, err := program.Run(); err != nil {
			return err
		}
		return nil
	}
	return form.Run()
}

func (ic *InitCommand) createInitForm(opts *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GraphQL endpoint").
				Description("URL the schema is introspected from").
				Value(&opts.URL).
				Validate(validateEndpoint),

			huh.NewSelect[string]().
				Title("ORM").
				Options(
					huh.NewOption("Diesel", target.Diesel.String()),
					huh.NewOption("Sea-ORM", target.SeaOrm.String()),
					huh.NewOption("GORM", target.Gorm.String()),
				).
				Value(&opts.ORM),

			huh.NewSelect[string]().
				Title("Database").
				Options(
					huh.NewOption("SQLite", target.Sqlite.String()),
					huh.NewOption("PostgreSQL", target.Postgres.String()),
					huh.NewOption("MySQL", target.Mysql.String()),
				).
				Value(&opts.DB),

			huh.NewInput().
				Title("Output directory").
				Value(&opts.OutputDir).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("output directory cannot be empty")
					}
					return nil
				}),
		),
	)
}

func validateEndpoint(s string) error {
	if s == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}
