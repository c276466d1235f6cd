package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedGeneratorReturnsIDsInOrder(t *testing.T) {
	gen := NewFixedGenerator("run-001", "run-002")
	assert.Equal(t, "run-001", gen.Generate())
	assert.Equal(t, "run-002", gen.Generate())
}

func TestFixedGeneratorPanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("run-001")
	gen.Generate()
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7GeneratorProducesUniqueIDs(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		require.Len(t, id, 36)
		require.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}
}
