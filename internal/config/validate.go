package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/gqlorm/gqlorm/internal/naming"
	"github.com/gqlorm/gqlorm/internal/typemap"
)

// ConflictError reports a configuration that cannot produce a run: a missing
// or contradictory setting, or a value the target rejects.
type ConflictError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// IsConflictError reports whether err is or wraps a ConflictError.
func IsConflictError(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []*ConflictError
	Warnings []string
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns nil, the only error, or every error joined.
func (r *ValidationResult) Err() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return r.Errors[0]
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) fail(field, format string, args ...any) {
	r.Errors = append(r.Errors, &ConflictError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the configuration for errors and returns validation results.
// Every problem is collected before the result is returned.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.validateSource(result)
	c.validateTargets(result)
	c.validateMappings(result)
	c.validateFilters(result)
	c.validateAuth(result)

	return result
}

func (c *Config) validateSource(r *ValidationResult) {
	switch {
	case c.URL == "" && c.SchemaFile == "":
		r.fail("url", "either url or schema_file is required")
	case c.URL != "" && c.SchemaFile != "":
		r.fail("schema_file", "url and schema_file are mutually exclusive; set exactly one")
	case c.URL != "":
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			r.fail("url", "%q is not an http(s) URL", c.URL)
		}
	}
	if c.Timeout <= 0 {
		r.fail("timeout", "must be positive, got %s", c.Timeout)
	}
}

func (c *Config) validateTargets(r *ValidationResult) {
	if strings.TrimSpace(c.OutputDir) == "" {
		r.fail("output_dir", "must not be empty")
	}
	if !strings.EqualFold(c.Pluralizer, naming.PluralizerSimple) && !strings.EqualFold(c.Pluralizer, naming.PluralizerEnglish) {
		r.fail("pluralizer", "unknown pluralizer %q (expected %s or %s)", c.Pluralizer, naming.PluralizerSimple, naming.PluralizerEnglish)
	}
	if !c.GenerateEntities && !c.GenerateMigrations {
		r.Warnings = append(r.Warnings, "generate_entities and generate_migrations are both false; nothing will be written")
	}
}

func (c *Config) validateMappings(r *ValidationResult) {
	for _, k := range sortedKeys(c.ScalarMappings) {
		if v, ok := c.SQLTypeMappings[k]; ok && v != c.ScalarMappings[k] {
			r.fail("scalar_mappings."+k, "conflicts with sql_type_mappings.%s (%q vs %q)", k, c.ScalarMappings[k], v)
		}
	}

	for _, k := range sortedKeys(c.SQLTypeMappings) {
		if _, err := typemap.ParseSQLType(c.DB, c.SQLTypeMappings[k]); err != nil {
			r.Errors = append(r.Errors, &ConflictError{Field: "sql_type_mappings." + k, Message: err.Error(), Cause: err})
		}
	}
	for _, k := range sortedKeys(c.FieldSQLOverrides) {
		if !isFieldKey(k) {
			r.fail("field_sql_overrides."+k, "key must have the form Type.field")
			continue
		}
		if _, err := typemap.ParseSQLType(c.DB, c.FieldSQLOverrides[k]); err != nil {
			r.Errors = append(r.Errors, &ConflictError{Field: "field_sql_overrides." + k, Message: err.Error(), Cause: err})
		}
	}
	for _, k := range sortedKeys(c.FieldOverrides) {
		if !isFieldKey(k) {
			r.fail("field_overrides."+k, "key must have the form Type.field")
		}
	}
	for _, k := range sortedKeys(c.TypeMappings) {
		if strings.TrimSpace(c.TypeMappings[k]) == "" {
			r.fail("type_mappings."+k, "target type must not be empty")
		}
	}
	for _, k := range sortedKeys(c.RelationAliases) {
		if strings.TrimSpace(c.RelationAliases[k]) == "" {
			r.fail("relation_aliases."+k, "entity name must not be empty")
		}
	}
}

func (c *Config) validateFilters(r *ValidationResult) {
	include := make(map[string]bool, len(c.IncludeTypes))
	for _, name := range c.IncludeTypes {
		include[name] = true
	}
	for _, name := range c.ExcludeTypes {
		if include[name] {
			r.fail("exclude_types", "%s is both included and excluded", name)
		}
	}
}

func (c *Config) validateAuth(r *ValidationResult) {
	if !c.Auth.Enabled() {
		return
	}
	if c.Auth.ClientID == "" {
		r.fail("auth.client_id", "required when auth is configured")
	}
	if c.Auth.TokenURL == "" {
		r.fail("auth.token_url", "required when auth is configured")
	}
	if c.SchemaFile != "" {
		r.Warnings = append(r.Warnings, "auth is ignored when schema_file is set")
	}
}

func isFieldKey(k string) bool {
	typeName, field, ok := strings.Cut(k, ".")
	return ok && typeName != "" && field != "" && !strings.Contains(field, ".")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
