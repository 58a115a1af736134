package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gqlorm/gqlorm/internal/target"
)

// FileNames lists the config files Find looks for, in priority order.
var FileNames = []string{
	"gqlorm.toml",
	"gqlorm.yaml",
	"gqlorm.yml",
	"graphql-codegen-rust.toml",
	"codegen.yml",
	"codegen.yaml",
}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("no config file found")

// EnvPrefix prefixes environment overrides: GQLORM_ORM, GQLORM_AUTH_CLIENT_ID.
const EnvPrefix = "GQLORM"

// CodegenSection is the key holding gqlorm settings inside a GraphQL Code
// Generator config.
const CodegenSection = "rust_codegen"

// keyDelim replaces viper's "." so "Type.field" map keys stay flat.
const keyDelim = "::"

// caseSensitiveKeys are map sections whose keys are GraphQL names or header
// names. viper lowercases keys, so these are restored from the raw file.
var caseSensitiveKeys = []string{
	"headers",
	"type_mappings",
	"sql_type_mappings",
	"scalar_mappings",
	"field_overrides",
	"field_sql_overrides",
	"relation_aliases",
	"plural_overrides",
}

// Overrides are explicit values, usually from command line flags. Keys use
// the file's names; nested keys are joined with "::" (e.g. "auth::client_id").
// Map values are merged over the file's map.
type Overrides map[string]any

// Find returns the first of FileNames present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(FileNames, ", "))
}

// IsCodegenYAML reports whether path is a GraphQL Code Generator config.
func IsCodegenYAML(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == "codegen.yml" || base == "codegen.yaml"
}

// Load reads the config at path with the following precedence:
// 1. Explicit overrides
// 2. Environment variables (GQLORM_ prefix)
// 3. Config file
// 4. Default values
// An empty path loads defaults, environment and overrides only.
func Load(path string, overrides Overrides) (*Config, error) {
	raw := map[string]any{}
	if path != "" {
		var err error
		if raw, err = readFile(path); err != nil {
			return nil, err
		}
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	setDefaults(v)
	// viper lowercases the keys of the map it merges; raw keeps the file's case.
	if err := v.MergeConfigMap(copyMap(raw)); err != nil {
		return nil, fmt.Errorf("failed to merge config %s: %w", path, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		if _, isMap := value.(map[string]string); isMap {
			continue
		}
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.UnmarshalExact(cfg, viper.DecodeHook(decodeHook())); err != nil {
		if path == "" {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := restoreKeyCase(cfg, raw); err != nil {
		return nil, err
	}
	applyMapOverrides(cfg, overrides)

	for k, val := range cfg.ScalarMappings {
		if cfg.SQLTypeMappings == nil {
			cfg.SQLTypeMappings = make(map[string]string)
		}
		if _, ok := cfg.SQLTypeMappings[k]; !ok {
			cfg.SQLTypeMappings[k] = val
		}
	}

	if err := expandHeaders(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", "")
	v.SetDefault("schema_file", "")
	v.SetDefault("orm", string(DefaultORM))
	v.SetDefault("db", string(DefaultDialect))
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("table_naming", string(DefaultNaming))
	v.SetDefault("pluralizer", DefaultPluralizer)
	v.SetDefault("include_types", []string{})
	v.SetDefault("exclude_types", []string{})
	v.SetDefault("generate_migrations", true)
	v.SetDefault("generate_entities", true)
	v.SetDefault("auth"+keyDelim+"client_id", "")
	v.SetDefault("auth"+keyDelim+"client_secret", "")
	v.SetDefault("auth"+keyDelim+"token_url", "")
	v.SetDefault("auth"+keyDelim+"scopes", []string{})
}

// readFile decodes a TOML or YAML file into a generic map. A Code Generator
// config is reduced to its gqlorm section first.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported config file type %q (expected .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if IsCodegenYAML(path) {
		return fromCodegenYAML(path, raw)
	}
	return raw, nil
}

// fromCodegenYAML flattens a GraphQL Code Generator config: settings come
// from the rust_codegen section, and the endpoint from `schema` unless the
// section names one itself.
func fromCodegenYAML(path string, raw map[string]any) (map[string]any, error) {
	section, ok := raw[CodegenSection].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s has no %s section; run `gqlorm integrate` to add one", path, CodegenSection)
	}

	out := make(map[string]any, len(section)+2)
	for k, v := range section {
		out[k] = v
	}
	if _, hasURL := out["url"]; hasURL {
		return out, nil
	}
	if _, hasFile := out["schema_file"]; hasFile {
		return out, nil
	}

	if err := applySchemaPointer(out, raw["schema"]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func applySchemaPointer(out map[string]any, pointer any) error {
	switch s := pointer.(type) {
	case nil:
		return nil
	case string:
		if isURL(s) {
			out["url"] = s
		} else {
			out["schema_file"] = s
		}
		return nil
	case []any:
		if len(s) != 1 {
			return fmt.Errorf("schema lists %d sources; exactly one is supported", len(s))
		}
		return applySchemaPointer(out, s[0])
	case map[string]any:
		if u, ok := s["url"].(string); ok {
			out["url"] = u
			if headers, ok := s["headers"]; ok {
				out["headers"] = headers
			}
			return nil
		}
		// Code Generator's own form: { <url>: { headers: {...} } }
		if len(s) == 1 {
			for u, opts := range s {
				out["url"] = u
				if m, ok := opts.(map[string]any); ok {
					if headers, ok := m["headers"]; ok {
						out["headers"] = headers
					}
				}
			}
			return nil
		}
	}
	return fmt.Errorf("unsupported schema pointer %v", pointer)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToStringSliceHookFunc(","),
		targetHookFunc(),
	)
}

// stringToStringSliceHookFunc splits "a, b" into ["a", "b"] so list settings
// can come from environment variables.
func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(reflect.ValueOf(data).String())
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

var (
	ormType     = reflect.TypeOf(target.ORM(""))
	dialectType = reflect.TypeOf(target.Dialect(""))
	namingType  = reflect.TypeOf(target.Naming(""))
)

// targetHookFunc accepts every spelling target.Parse* accepts ("SeaOrm",
// "sea-orm", "Postgres", "pg", "camelCase").
func targetHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s := reflect.ValueOf(data).String()
		switch to {
		case ormType:
			return target.ParseORM(s)
		case dialectType:
			return target.ParseDialect(s)
		case namingType:
			return target.ParseNaming(s)
		}
		return data, nil
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

func restoreKeyCase(cfg *Config, raw map[string]any) error {
	for _, key := range caseSensitiveKeys {
		section, ok := raw[key]
		if !ok {
			continue
		}
		m, err := stringMap(section)
		if err != nil {
			return &ConflictError{Field: key, Message: err.Error()}
		}
		*mapField(cfg, key) = m
	}
	return nil
}

func applyMapOverrides(cfg *Config, overrides Overrides) {
	for key, value := range overrides {
		m, ok := value.(map[string]string)
		if !ok {
			continue
		}
		dst := mapField(cfg, key)
		if dst == nil {
			continue
		}
		if *dst == nil {
			*dst = make(map[string]string, len(m))
		}
		for k, v := range m {
			(*dst)[k] = v
		}
	}
}

func mapField(cfg *Config, key string) *map[string]string {
	switch key {
	case "headers":
		return &cfg.Headers
	case "type_mappings":
		return &cfg.TypeMappings
	case "sql_type_mappings":
		return &cfg.SQLTypeMappings
	case "scalar_mappings":
		return &cfg.ScalarMappings
	case "field_overrides":
		return &cfg.FieldOverrides
	case "field_sql_overrides":
		return &cfg.FieldSQLOverrides
	case "relation_aliases":
		return &cfg.RelationAliases
	case "plural_overrides":
		return &cfg.PluralOverrides
	}
	return nil
}

func stringMap(section any) (map[string]string, error) {
	m, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a table of strings, got %T", section)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value of %q must be a string, got %T", k, v)
		}
		out[k] = s
	}
	return out, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandHeaders substitutes ${VAR} in header values and the client secret.
// A reference to an unset variable is an error naming it.
func expandHeaders(cfg *Config) error {
	keys := make([]string, 0, len(cfg.Headers))
	for k := range cfg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		expanded, err := expandEnv(cfg.Headers[k])
		if err != nil {
			return &ConflictError{Field: "headers." + k, Message: err.Error()}
		}
		cfg.Headers[k] = expanded
	}

	secret, err := expandEnv(cfg.Auth.ClientSecret)
	if err != nil {
		return &ConflictError{Field: "auth.client_secret", Message: err.Error()}
	}
	cfg.Auth.ClientSecret = secret
	return nil
}

func expandEnv(s string) (string, error) {
	var missing string
	out := envRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := envRef.FindStringSubmatch(ref)[1]
		val, ok := os.LookupEnv(name)
		if !ok && missing == "" {
			missing = name
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %s is not set", missing)
	}
	return out, nil
}
