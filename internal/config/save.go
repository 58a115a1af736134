package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultFileName is the file init writes.
const DefaultFileName = "gqlorm.toml"

// Save writes the settings init collects (schema source, target, output and
// headers) to path. The format follows the extension.
func Save(c *Config, path string) error {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))

	if c.URL != "" {
		v.Set("url", c.URL)
	}
	if c.SchemaFile != "" {
		v.Set("schema_file", c.SchemaFile)
	}
	v.Set("orm", c.ORM.String())
	v.Set("db", c.DB.String())
	v.Set("output_dir", c.OutputDir)
	v.Set("table_naming", c.TableNaming.String())
	v.Set("generate_migrations", c.GenerateMigrations)
	v.Set("generate_entities", c.GenerateEntities)
	if len(c.Headers) > 0 {
		v.Set("headers", c.Headers)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
