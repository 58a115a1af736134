// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type Flags struct {
	LogLevel string
	Verbose  int
}

// Level returns the log level the flags select. A -v count wins over
// --log-level.
func (f *Flags) Level() (zerolog.Level, error) {
	switch {
	case f.Verbose >= 3:
		return zerolog.TraceLevel, nil
	case f.Verbose == 2:
		return zerolog.DebugLevel, nil
	case f.Verbose == 1:
		return zerolog.InfoLevel, nil
	}
	if f.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(f.LogLevel)
}

type Controller struct {
	Flags  *Flags
	Logger zerolog.Logger
	// Out receives user-facing results; nil means stdout.
	Out io.Writer
}

func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	return NewGenerateCommand(c.Logger, c.Out).Run(ctx, opts)
}

func (c *Controller) Init(ctx context.Context, opts InitOptions) error {
	cmd := NewInitCommand(c.Out)
	cmd.generate = func(ctx context.Context, path string) error {
		return c.Generate(ctx, GenerateOptions{ConfigPath: path})
	}
	return cmd.Run(ctx, opts)
}

func (c *Controller) Integrate(ctx context.Context, opts IntegrateOptions) error {
	return NewIntegrateCommand(c.Out).Run(ctx, opts)
}

func (c *Controller) Introspect(ctx context.Context, opts IntrospectOptions) error {
	return NewIntrospectCommand(c.Logger, c.Out).Run(ctx, opts)
}
