package codegen

import (
	"github.com/gqlorm/gqlorm/internal/codegen/diesel"
	"github.com/gqlorm/gqlorm/internal/codegen/gorm"
	"github.com/gqlorm/gqlorm/internal/codegen/seaorm"
	"github.com/gqlorm/gqlorm/internal/target"
)

// DefaultRegistry is the global registry instance with pre-registered generators
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(target.Diesel, func() Generator {
		return diesel.NewGenerator()
	})

	DefaultRegistry.Register(target.SeaOrm, func() Generator {
		return seaorm.NewGenerator()
	})

	DefaultRegistry.Register(target.Gorm, func() Generator {
		return gorm.NewGenerator()
	})
}
