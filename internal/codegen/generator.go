package codegen

import (
	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Generator is the interface every ORM emitter implements. Emitters are pure:
// they turn a resolved Model into files and perform no I/O.
type Generator interface {
	// ORM returns the ORM target the generator emits.
	ORM() target.ORM

	// Language returns the name of the target language (e.g., "rust", "go")
	Language() string

	// Generate renders every file for m. Files are returned in a stable
	// order, relative to the output directory.
	Generate(m *model.Model) ([]model.GeneratedFile, error)
}
