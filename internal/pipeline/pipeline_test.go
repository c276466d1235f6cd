package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pcc/internal/infer"
	"github.com/roach88/pcc/internal/parser"
	"github.com/roach88/pcc/internal/render"
)

const oddSquareSum = "sum(i * i for i in range(1, 6) if i % 2 == 1)"

func TestRenderAllBackends(t *testing.T) {
	for _, backend := range render.ValidBackends {
		out, err := Render(oddSquareSum, Options{Backend: backend})
		require.NoError(t, err, "backend %s", backend)
		assert.NotEmpty(t, out, "backend %s", backend)
	}
}

func TestRenderPropagatesParseErrors(t *testing.T) {
	_, err := Render("sum(i ** 2 for i in range(10))", Options{Backend: render.BackendRust})
	require.Error(t, err)
	assert.True(t, parser.IsUnsupportedError(err))

	_, err = Render("sum(i for i in", Options{Backend: render.BackendRust})
	require.Error(t, err)
	assert.True(t, parser.IsSyntaxError(err))
}

func TestRenderStrictTypesRejectsOpaqueSources(t *testing.T) {
	_, err := Render("[x * x for x in xs]", Options{
		Backend:     render.BackendRust,
		StrictTypes: true,
	})
	require.Error(t, err)
	assert.True(t, infer.IsFallbackError(err))
}

func TestRenderSQLRunsRewritePass(t *testing.T) {
	out, err := Render("sum(i for i in range(5, 0))", Options{Backend: render.BackendSQL})
	require.NoError(t, err)
	assert.Contains(t, out, "WHERE 1 = 0")
}

func TestEmitIRDeterministic(t *testing.T) {
	a, err := EmitIR(oddSquareSum, Options{})
	require.NoError(t, err)
	b, err := EmitIR("sum( i*i   for i in range( 1, 6 ) if i % 2 == 1 )", Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmitIRCarriesAnnotations(t *testing.T) {
	b, err := EmitIR(oddSquareSum, Options{})
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"ir_version"`)
	assert.Contains(t, s, `"element_type":"int"`)
	assert.Contains(t, s, `"int_width":64`)
}

func TestEmitIROptimizeMarksEmptyRanges(t *testing.T) {
	plain, err := EmitIR("sum(i for i in range(5, 0))", Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(plain), `"empty":true`)

	opt, err := EmitIR("sum(i for i in range(5, 0))", Options{Optimize: true})
	require.NoError(t, err)
	assert.Contains(t, string(opt), `"empty":true`)
}
