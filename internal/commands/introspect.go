package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gqlorm/gqlorm/internal/config"
	"github.com/gqlorm/gqlorm/internal/introspect"
	"github.com/gqlorm/gqlorm/internal/schema"
)

type IntrospectOptions struct {
	// URL of the endpoint. When empty, the url, headers and auth of the
	// config file are used.
	URL        string
	ConfigPath string
	Headers    map[string]string
	Timeout    time.Duration
	// Out is the SDL file to write; empty prints to stdout.
	Out string
}

type IntrospectCommand struct {
	client *introspect.Client
	report *Reporter
	stdout io.Writer
	dir    string
}

func NewIntrospectCommand(logger zerolog.Logger, out io.Writer) *IntrospectCommand {
	if out == nil {
		out = os.Stdout
	}
	return &IntrospectCommand{
		client: introspect.NewClient(introspect.WithLogger(logger)),
		report: NewReporter(os.Stderr),
		stdout: out,
		dir:    ".",
	}
}

func (ic *IntrospectCommand) Run(ctx context.Context, opts IntrospectOptions) error {
	req, err := ic.request(opts)
	if err != nil {
		return err
	}

	g, err := ic.client.Load(ctx, req)
	if err != nil {
		return err
	}
	sdl := schema.PrintSDL(g)

	if opts.Out == "" {
		_, err := io.WriteString(ic.stdout, sdl)
		return err
	}
	if dir := filepath.Dir(opts.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", opts.Out, err)
		}
	}
	if err := os.WriteFile(opts.Out, []byte(sdl), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Out, err)
	}
	ic.report.Success("Wrote schema for %s to %s", req.URL, opts.Out)
	return nil
}

func (ic *IntrospectCommand) request(opts IntrospectOptions) (introspect.Request, error) {
	if opts.URL != "" {
		return introspect.Request{URL: opts.URL, Headers: opts.Headers, Timeout: opts.Timeout}, nil
	}

	path := opts.ConfigPath
	if path == "" {
		found, err := config.Find(ic.dir)
		if err != nil {
			return introspect.Request{}, fmt.Errorf("pass --url or create a config: %w", err)
		}
		path = found
	}
	overrides := config.Overrides{}
	if len(opts.Headers) > 0 {
		overrides["headers"] = opts.Headers
	}
	if opts.Timeout > 0 {
		overrides["timeout"] = opts.Timeout
	}
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return introspect.Request{}, err
	}
	if cfg.URL == "" {
		return introspect.Request{}, fmt.Errorf("%s has no url to introspect", path)
	}
	return cfg.IntrospectRequest(), nil
}
