package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/config"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Test plan:
// 1. Flags alone produce a loadable config
// 2. An existing config is kept unless --force is given
// 3. A missing source without a terminal is an error
// 4. Bad ORM, database and URL values are rejected before saving
// 5. --generate runs the first generation against the new file
// 6. Form input with tea.WithInput

type mockFileSystem struct {
	files     map[string]bool
	statCalls []string
}

func (m *mockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.statCalls = append(m.statCalls, name)
	if m.files[name] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func newTestInit(buf *bytes.Buffer) *InitCommand {
	cmd := NewInitCommand(buf)
	cmd.interactive = func() bool { return false }
	return cmd
}

func TestInitCommand_Run_Flags(t *testing.T) {
	// Test: flag values are saved and load back unchanged
	path := filepath.Join(t.TempDir(), "gqlorm.toml")
	var buf bytes.Buffer

	err := newTestInit(&buf).Run(context.Background(), InitOptions{
		URL:       "https://api.example.com/graphql",
		ORM:       "SeaOrm",
		DB:        "postgresql",
		OutputDir: "./db",
		Headers:   map[string]string{"Authorization": "Bearer token"},
		Path:      path,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created "+path)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/graphql", cfg.URL)
	assert.Equal(t, target.SeaOrm, cfg.ORM)
	assert.Equal(t, target.Postgres, cfg.DB)
	assert.Equal(t, "./db", cfg.OutputDir)
	assert.Equal(t, "Bearer token", cfg.Headers["authorization"])
	assert.True(t, cfg.GenerateMigrations)
	assert.True(t, cfg.GenerateEntities)
}

func TestInitCommand_Run_SchemaFile(t *testing.T) {
	// Test: a schema file source needs no URL and no prompt
	path := filepath.Join(t.TempDir(), "gqlorm.toml")

	err := newTestInit(&bytes.Buffer{}).Run(context.Background(), InitOptions{
		SchemaFile: "schema.graphql",
		Path:       path,
	})
	require.NoError(t, err)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "schema.graphql", cfg.SchemaFile)
	assert.Empty(t, cfg.URL)
	assert.Equal(t, config.DefaultORM, cfg.ORM)
	assert.Equal(t, config.DefaultDialect, cfg.DB)
}

func TestInitCommand_Run_ExistingFile(t *testing.T) {
	// Test: an existing file is refused without --force
	mockFS := &mockFileSystem{files: map[string]bool{"gqlorm.toml": true}}
	cmd := newTestInit(&bytes.Buffer{})
	cmd.filesystem = mockFS

	err := cmd.Run(context.Background(), InitOptions{URL: "https://api.example.com/graphql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, []string{config.DefaultFileName}, mockFS.statCalls)
}

func TestInitCommand_Run_Force(t *testing.T) {
	// Test: --force overwrites an existing config
	path := filepath.Join(t.TempDir(), "gqlorm.toml")
	require.NoError(t, os.WriteFile(path, []byte("orm = \"diesel\"\n"), 0o644))

	err := newTestInit(&bytes.Buffer{}).Run(context.Background(), InitOptions{
		URL:   "https://api.example.com/graphql",
		ORM:   "gorm",
		Path:  path,
		Force: true,
	})
	require.NoError(t, err)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, target.Gorm, cfg.ORM)
}

func TestInitCommand_Run_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    InitOptions
		wantErr string
	}{
		{
			name:    "no source without a terminal",
			opts:    InitOptions{},
			wantErr: "--url or --schema-file",
		},
		{
			name:    "unknown orm",
			opts:    InitOptions{URL: "https://api.example.com/graphql", ORM: "hibernate"},
			wantErr: "unknown orm",
		},
		{
			name:    "unknown database",
			opts:    InitOptions{URL: "https://api.example.com/graphql", DB: "oracle"},
			wantErr: "unknown database",
		},
		{
			name:    "non http url",
			opts:    InitOptions{URL: "ftp://api.example.com"},
			wantErr: "not an http(s) URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test: invalid input fails and writes no file
			tt.opts.Path = filepath.Join(t.TempDir(), "gqlorm.toml")

			err := newTestInit(&bytes.Buffer{}).Run(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoFileExists(t, tt.opts.Path)
		})
	}
}

func TestInitCommand_Run_Generate(t *testing.T) {
	// Test: --generate hands the new config path to the generator
	path := filepath.Join(t.TempDir(), "gqlorm.toml")
	cmd := newTestInit(&bytes.Buffer{})

	var generated []string
	cmd.generate = func(_ context.Context, p string) error {
		generated = append(generated, p)
		return nil
	}

	err := cmd.Run(context.Background(), InitOptions{URL: "https://api.example.com/graphql", Path: path, Generate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, generated)

	// Test: generation errors are returned after the config is saved
	cmd.generate = func(context.Context, string) error { return errors.New("introspection failed") }
	err = cmd.Run(context.Background(), InitOptions{URL: "https://api.example.com/graphql", Path: path, Generate: true, Force: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "introspection failed")
	assert.FileExists(t, path)
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"https://api.example.com/graphql", true},
		{"http://localhost:4000/graphql", true},
		{"", false},
		{"api.example.com/graphql", false},
		{"ws://api.example.com/graphql", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			// Test: only absolute http(s) URLs pass form validation
			err := validateEndpoint(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInitCommand_createInitForm(t *testing.T) {
	// Test: the form is built over the option fields
	cmd := newTestInit(&bytes.Buffer{})
	opts := &InitOptions{ORM: "diesel", DB: "sqlite", OutputDir: "./generated"}
	form := cmd.createInitForm(opts)
	assert.NotNil(t, form)
}

// Integration test for the form - skip in CI but useful for local development
func TestInitCommand_promptInitOptions_Interactive(t *testing.T) {
	// Always skip this test in automated runs to prevent deadlocks
	if os.Getenv("INTERACTIVE_TEST") != "true" {
		t.Skip("Skipping interactive test. Set INTERACTIVE_TEST=true to run")
	}

	// Test: form accepts input via tea.WithInput
	cmd := newTestInit(&bytes.Buffer{})

	// URL + enter, ORM down once + enter, database default + enter, output default + enter
	input := strings.NewReader("https://api.example.com/graphql\n\x1b[B\n\n\n")

	opts := &InitOptions{}
	err := cmd.promptInitOptions(opts, tea.WithInput(input), tea.WithoutRenderer())
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/graphql", opts.URL)
	assert.Equal(t, target.SeaOrm.String(), opts.ORM)
	assert.Equal(t, target.Sqlite.String(), opts.DB)
	assert.Equal(t, config.DefaultOutputDir, opts.OutputDir)
}
