package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pcc/internal/ir"
	"github.com/roach88/pcc/internal/parser"
)

func mustParse(t *testing.T, src string) *ir.Comp {
	t.Helper()
	comp, err := parser.Parse(src)
	require.NoError(t, err)
	return comp
}

func TestInfer_Defaults(t *testing.T) {
	comp := mustParse(t, "sum(i*i for i in range(1,6) if i%2==1)")
	annotated, err := Infer(comp, Config{})
	require.NoError(t, err)

	require.NotNil(t, annotated.Types)
	assert.Equal(t, ir.TypeInt, annotated.Types.ElementType)
	assert.Equal(t, 64, annotated.Types.IntWidth)
	assert.False(t, annotated.Types.Fallback)
}

func TestInfer_DoesNotMutateInput(t *testing.T) {
	comp := mustParse(t, "[x for x in range(3)]")
	_, err := Infer(comp, Config{})
	require.NoError(t, err)
	assert.Nil(t, comp.Types, "input IR must stay unannotated")
}

func TestInfer_Idempotent(t *testing.T) {
	comp := mustParse(t, "{i: i*i for i in range(5) if i > 1}")

	first, err := Infer(comp, Config{IntWidth: 32})
	require.NoError(t, err)
	second, err := Infer(comp, Config{IntWidth: 32})
	require.NoError(t, err)
	assert.Equal(t, first.Types, second.Types)

	// And re-inferring an already annotated tree changes nothing.
	again, err := Infer(first, Config{IntWidth: 32})
	require.NoError(t, err)
	assert.Equal(t, first.Types, again.Types)
}

func TestInfer_BooleanElement(t *testing.T) {
	comp := mustParse(t, "any(i%2==0 for i in range(10))")
	annotated, err := Infer(comp, Config{})
	require.NoError(t, err)
	assert.Equal(t, ir.TypeBool, annotated.Types.ElementType)
}

func TestInfer_DictKeyValueIndependent(t *testing.T) {
	comp := mustParse(t, "{i: i%2==0 for i in range(5)}")
	annotated, err := Infer(comp, Config{})
	require.NoError(t, err)
	assert.Equal(t, ir.TypeInt, annotated.Types.KeyType)
	assert.Equal(t, ir.TypeBool, annotated.Types.ValueType)
}

func TestInfer_Width32(t *testing.T) {
	comp := mustParse(t, "[i for i in range(3)]")
	annotated, err := Infer(comp, Config{IntWidth: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, annotated.Types.IntWidth)
}

func TestInfer_InvalidWidth(t *testing.T) {
	comp := mustParse(t, "[i for i in range(3)]")
	_, err := Infer(comp, Config{IntWidth: 16})
	assert.Error(t, err)
}

func TestInfer_FallbackSignal(t *testing.T) {
	// Opaque iterable: element type cannot be resolved.
	comp := mustParse(t, "[x for x in xs]")
	annotated, err := Infer(comp, Config{})
	require.NoError(t, err)
	assert.True(t, annotated.Types.Fallback)

	// Uninterpreted call: same.
	comp = mustParse(t, "[f(i) for i in range(3)]")
	annotated, err = Infer(comp, Config{})
	require.NoError(t, err)
	assert.True(t, annotated.Types.Fallback)
}

func TestInfer_StrictPromotesFallback(t *testing.T) {
	comp := mustParse(t, "[x for x in xs]")
	_, err := Infer(comp, Config{Strict: true})
	require.Error(t, err)
	assert.True(t, IsFallbackError(err))

	// Fully resolvable input is fine in strict mode.
	comp = mustParse(t, "sum(i for i in range(10))")
	annotated, err := Infer(comp, Config{Strict: true})
	require.NoError(t, err)
	assert.False(t, annotated.Types.Fallback)
}
