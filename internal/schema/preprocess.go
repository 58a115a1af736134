package schema

import (
	"regexp"
	"strings"
)

// schemaBlockRegex matches a top-level `schema { ... }` definition. An
// `extend schema` block is not matched because of the leading anchor.
var schemaBlockRegex = regexp.MustCompile(`(?m)^\s*schema\s*(?:@[^{]*)?\{([^}]*)\}`)

// rootOperationRegex matches one `operation: TypeName` entry of a schema block.
var rootOperationRegex = regexp.MustCompile(`\b(query|mutation|subscription)\s*:\s*([_A-Za-z][_0-9A-Za-z]*)`)

// PreprocessSDL normalizes SDL text before parsing and reports the operation
// root types it declares. Without a schema block the conventional names
// Query, Mutation and Subscription are the roots.
func PreprocessSDL(input string) (string, RootTypes) {
	input = strings.TrimPrefix(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")

	block := schemaBlockRegex.FindStringSubmatch(input)
	if block == nil {
		return input, DefaultRoots
	}

	var roots RootTypes
	for _, m := range rootOperationRegex.FindAllStringSubmatch(block[1], -1) {
		switch m[1] {
		case "query":
			roots.Query = m[2]
		case "mutation":
			roots.Mutation = m[2]
		case "subscription":
			roots.Subscription = m[2]
		}
	}
	return input, roots
}
