package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/target"
)

// mockGenerator is a test generator
type mockGenerator struct {
	orm target.ORM
}

func (m *mockGenerator) ORM() target.ORM { return m.orm }

func (m *mockGenerator) Language() string { return "mock" }

func (m *mockGenerator) Generate(*model.Model) ([]model.GeneratedFile, error) {
	return []model.GeneratedFile{{Path: "mock.txt", Content: "mock output"}}, nil
}

func TestRegistry_NewRegistry(t *testing.T) {
	// Test: New registry is empty by default
	r := NewRegistry()
	assert.NotNil(t, r)
	assert.Empty(t, r.ORMs())

	_, err := r.Get(target.Diesel)
	assert.Error(t, err)
}

func TestRegistry_Register(t *testing.T) {
	// Test: Register custom generator
	r := NewRegistry()
	r.Register("mock", func() Generator {
		return &mockGenerator{orm: "mock"}
	})

	gen, err := r.Get("mock")
	require.NoError(t, err)
	assert.Equal(t, target.ORM("mock"), gen.ORM())
	assert.Equal(t, "mock", gen.Language())
}

func TestRegistry_UnsupportedORM(t *testing.T) {
	// Test: Error for unsupported orm
	r := NewRegistry()

	gen, err := r.Get("hibernate")
	assert.Error(t, err)
	assert.Nil(t, gen)
	assert.Contains(t, err.Error(), "unsupported orm: hibernate")
}

func TestRegistry_ORMs(t *testing.T) {
	// Test: ORMs are listed sorted
	r := NewRegistry()
	for _, orm := range []target.ORM{"zeta", "alpha", "mid"} {
		orm := orm
		r.Register(orm, func() Generator { return &mockGenerator{orm: orm} })
	}
	assert.Equal(t, []target.ORM{"alpha", "mid", "zeta"}, r.ORMs())
}

func TestDefaultRegistry(t *testing.T) {
	// Test: every emitter is registered and reports its own ORM
	assert.Equal(t, []target.ORM{target.Diesel, target.Gorm, target.SeaOrm}, DefaultRegistry.ORMs())
	for _, orm := range DefaultRegistry.ORMs() {
		gen, err := DefaultRegistry.Get(orm)
		require.NoError(t, err)
		assert.Equal(t, orm, gen.ORM())
		assert.Equal(t, orm.Language(), gen.Language())
	}
}
