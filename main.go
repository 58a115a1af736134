package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gqlorm/gqlorm/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

// parseHeaders turns repeated -H "Key: value" flags into a map.
func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, h := range values {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header format %q; headers must be in 'key:value' format, e.g. -H 'Authorization:Bearer token123'", h)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid header %q: key cannot be empty", h)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

func headerFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "header",
		Aliases: []string{"H"},
		Usage:   "additional request header as key:value (repeatable)",
	}
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:                   "gqlorm",
		Usage:                  "Generate ORM entities and SQL migrations from a GraphQL schema",
		Version:                build(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("GQLORM_LOG_LEVEL"),
				Value:       "warn",
				Destination: &ctrl.Flags.LogLevel,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "increase verbosity (-v info, -vv debug, -vvv trace)",
				Config:  cli.BoolConfig{Count: &ctrl.Flags.Verbose},
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := ctrl.Flags.Level()
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return ctrl.Generate(ctx, commands.GenerateOptions{})
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate code from an existing configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (auto-detected when omitted)"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory (overrides config)"},
					&cli.StringFlag{Name: "orm", Usage: "diesel, seaorm or gorm (overrides config)"},
					&cli.StringFlag{Name: "db", Usage: "sqlite, postgres or mysql (overrides config)"},
					headerFlag(),
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "regenerate when the schema file or config changes"},
					&cli.BoolFlag{Name: "dry-run", Usage: "list the files without writing them"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					headers, err := parseHeaders(c.StringSlice("header"))
					if err != nil {
						return err
					}
					return ctrl.Generate(ctx, commands.GenerateOptions{
						ConfigPath: c.String("config"),
						OutputDir:  c.String("output"),
						ORM:        c.String("orm"),
						DB:         c.String("db"),
						Headers:    headers,
						Watch:      c.Bool("watch"),
						DryRun:     c.Bool("dry-run"),
					})
				},
			},
			{
				Name:  "init",
				Usage: "Create a gqlorm.toml configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "GraphQL endpoint URL"},
					&cli.StringFlag{Name: "schema-file", Usage: "SDL or introspection JSON file instead of a URL"},
					&cli.StringFlag{Name: "orm", Aliases: []string{"o"}, Usage: "diesel, seaorm or gorm", Value: "diesel"},
					&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Usage: "sqlite, postgres or mysql", Value: "sqlite"},
					&cli.StringFlag{Name: "output", Usage: "output directory for generated code", Value: "./generated"},
					headerFlag(),
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file to create", Value: "gqlorm.toml"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing config file"},
					&cli.BoolFlag{Name: "generate", Usage: "run a first generation after saving"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					headers, err := parseHeaders(c.StringSlice("header"))
					if err != nil {
						return err
					}
					return ctrl.Init(ctx, commands.InitOptions{
						URL:        c.String("url"),
						SchemaFile: c.String("schema-file"),
						ORM:        c.String("orm"),
						DB:         c.String("db"),
						OutputDir:  c.String("output"),
						Headers:    headers,
						Path:       c.String("config"),
						Force:      c.Bool("force"),
						Generate:   c.Bool("generate"),
					})
				},
			},
			{
				Name:  "integrate",
				Usage: "Add gqlorm to an existing GraphQL Code Generator project",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory for generated code", Value: "./generated"},
					&cli.BoolFlag{Name: "no-scripts", Usage: "do not add scripts to package.json"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing rust_codegen section"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Integrate(ctx, commands.IntegrateOptions{
						OutputDir: c.String("output"),
						NoScripts: c.Bool("no-scripts"),
						Force:     c.Bool("force"),
					})
				},
			},
			{
				Name:      "introspect",
				Usage:     "Fetch a schema by introspection and print it as SDL",
				ArgsUsage: "[url]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config to take the endpoint from when no url is given"},
					&cli.StringFlag{Name: "out", Usage: "file to write instead of stdout"},
					&cli.DurationFlag{Name: "timeout", Usage: "request timeout"},
					headerFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					headers, err := parseHeaders(c.StringSlice("header"))
					if err != nil {
						return err
					}
					return ctrl.Introspect(ctx, commands.IntrospectOptions{
						URL:        c.Args().First(),
						ConfigPath: c.String("config"),
						Headers:    headers,
						Timeout:    c.Duration("timeout"),
						Out:        c.String("out"),
					})
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run gqlorm")
	}
}
