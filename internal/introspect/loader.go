package introspect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gqlorm/gqlorm/internal/schema"
)

// SDLExtensions are the file extensions read as schema definition language.
var SDLExtensions = []string{".graphql", ".graphqls", ".gql"}

// IsSDLFile reports whether path names an SDL schema file.
func IsSDLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SDLExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads a schema file. `.json` files are introspection results,
// SDL extensions are parsed as SDL, and anything else is sniffed: a leading
// `{` means JSON.
func LoadFile(path string) (*schema.SchemaGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".json":
		return loadIntrospection(path, data)
	case IsSDLFile(path):
		return loadSDL(path, data)
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")):
		return loadIntrospection(path, data)
	}
	return loadSDL(path, data)
}

func loadIntrospection(path string, data []byte) (*schema.SchemaGraph, error) {
	in, err := schema.DecodeIntrospection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := schema.Build(schema.Source{Introspection: in})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func loadSDL(path string, data []byte) (*schema.SchemaGraph, error) {
	g, err := schema.Build(schema.Source{SDL: string(data)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
