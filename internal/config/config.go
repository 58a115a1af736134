// Package config loads, validates and saves gqlorm configuration files.
package config

import (
	"time"

	"github.com/gqlorm/gqlorm/internal/codegen"
	"github.com/gqlorm/gqlorm/internal/introspect"
	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/relations"
	"github.com/gqlorm/gqlorm/internal/schema"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Defaults applied before any file or environment value.
const (
	DefaultORM        = target.Diesel
	DefaultDialect    = target.Sqlite
	DefaultOutputDir  = "./generated"
	DefaultNaming     = target.SnakeCase
	DefaultPluralizer = naming.PluralizerSimple
	DefaultTimeout    = introspect.DefaultTimeout
)

// Config is a gqlorm configuration.
type Config struct {
	URL        string `mapstructure:"url"`
	SchemaFile string `mapstructure:"schema_file"`

	ORM       target.ORM     `mapstructure:"orm"`
	DB        target.Dialect `mapstructure:"db"`
	OutputDir string         `mapstructure:"output_dir"`

	Headers map[string]string `mapstructure:"headers"`
	Auth    Auth              `mapstructure:"auth"`
	Timeout time.Duration     `mapstructure:"timeout"`

	// TypeMappings map a scalar or enum to a target-language type.
	TypeMappings map[string]string `mapstructure:"type_mappings"`
	// SQLTypeMappings map a scalar or enum to a SQL type. ScalarMappings is
	// the older name of the same table and is merged into it on load.
	SQLTypeMappings map[string]string `mapstructure:"sql_type_mappings"`
	ScalarMappings  map[string]string `mapstructure:"scalar_mappings"`
	// FieldOverrides and FieldSQLOverrides are keyed by "Type.field".
	FieldOverrides    map[string]string `mapstructure:"field_overrides"`
	FieldSQLOverrides map[string]string `mapstructure:"field_sql_overrides"`
	// RelationAliases map a foreign key noun to the entity it references.
	RelationAliases map[string]string `mapstructure:"relation_aliases"`

	IncludeTypes []string `mapstructure:"include_types"`
	ExcludeTypes []string `mapstructure:"exclude_types"`

	TableNaming     target.Naming     `mapstructure:"table_naming"`
	Pluralizer      string            `mapstructure:"pluralizer"`
	PluralOverrides map[string]string `mapstructure:"plural_overrides"`

	GenerateMigrations bool `mapstructure:"generate_migrations"`
	GenerateEntities   bool `mapstructure:"generate_entities"`
}

// Auth holds optional OAuth2 client credentials for introspection.
type Auth struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether any credential is configured.
func (a Auth) Enabled() bool {
	return a.ClientID != "" || a.ClientSecret != "" || a.TokenURL != ""
}

// New returns a Config holding only the defaults.
func New() *Config {
	return &Config{
		ORM:                DefaultORM,
		DB:                 DefaultDialect,
		OutputDir:          DefaultOutputDir,
		TableNaming:        DefaultNaming,
		Pluralizer:         DefaultPluralizer,
		Timeout:            DefaultTimeout,
		GenerateMigrations: true,
		GenerateEntities:   true,
	}
}

// PipelineOptions converts the configuration into a generation run.
func (c *Config) PipelineOptions() codegen.Options {
	return codegen.Options{
		ORM:                c.ORM,
		Dialect:            c.DB,
		Naming:             c.TableNaming,
		Pluralizer:         naming.NewPluralizer(c.Pluralizer, c.PluralOverrides),
		TypeMappings:       c.TypeMappings,
		SQLTypeMappings:    c.SQLTypeMappings,
		FieldOverrides:     c.FieldOverrides,
		FieldSQLOverrides:  c.FieldSQLOverrides,
		Aliases:            c.aliases(),
		Filter:             schema.Filter{Include: c.IncludeTypes, Exclude: c.ExcludeTypes},
		GenerateEntities:   c.GenerateEntities,
		GenerateMigrations: c.GenerateMigrations,
	}
}

// aliases extends the default relation aliases; configured entries win.
func (c *Config) aliases() map[string]string {
	if len(c.RelationAliases) == 0 {
		return nil
	}
	out := make(map[string]string, len(relations.DefaultAliases)+len(c.RelationAliases))
	for k, v := range relations.DefaultAliases {
		out[k] = v
	}
	for k, v := range c.RelationAliases {
		out[k] = v
	}
	return out
}

// IntrospectRequest describes the introspection call for c.URL.
func (c *Config) IntrospectRequest() introspect.Request {
	req := introspect.Request{
		URL:     c.URL,
		Headers: c.Headers,
		Timeout: c.Timeout,
	}
	if c.Auth.Enabled() {
		req.Auth = &introspect.Auth{
			ClientID:     c.Auth.ClientID,
			ClientSecret: c.Auth.ClientSecret,
			TokenURL:     c.Auth.TokenURL,
			Scopes:       c.Auth.Scopes,
		}
	}
	return req
}
