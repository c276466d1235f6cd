package sqlopt

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

func TestOptimize_DoesNotMutateInput(t *testing.T) {
	comp := mustParse(t, "[i+1*2 for i in range(10,5)]")
	before := comp.Clone()
	_ = Optimize(comp)
	assert.Equal(t, before, comp)
}

func TestClip_EmptyPositiveRange(t *testing.T) {
	comp := mustParse(t, "sum(i for i in range(10,5))")
	out := Optimize(comp)

	assert.True(t, out.Empty)
	rng := out.Generators[0].Source.(ir.RangeExpr)
	start, stop, _, ok := rng.StaticBounds()
	require.True(t, ok)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(0), stop)
}

func TestClip_EmptyNegativeStep(t *testing.T) {
	comp := mustParse(t, "[i for i in range(0, 10, -1)]")
	out := Optimize(comp)
	assert.True(t, out.Empty)
}

func TestClip_NonEmptyRangesUntouched(t *testing.T) {
	comp := mustParse(t, "[i for i in range(1,6)]")
	out := Optimize(comp)
	assert.False(t, out.Empty)

	// Descending range with negative step is live.
	comp = mustParse(t, "[i for i in range(10, 0, -2)]")
	out = Optimize(comp)
	assert.False(t, out.Empty)
}

func TestClip_SkipsNonStaticBounds(t *testing.T) {
	// Bounds with free variables cannot be proven empty.
	comp := mustParse(t, "[i for i in range(n, m)]")
	out := Optimize(comp)
	assert.False(t, out.Empty)
}

func TestPushdown_SingleGeneratorFilterMoves(t *testing.T) {
	// j-independent filter sits on generator 1 in source order but only
	// references i, so it pushes down to generator 0.
	comp := mustParse(t, "[i*j for i in range(10) for j in range(10) if i%2==0]")
	require.Equal(t, 1, comp.Filters[0].GenIndex)

	out := Optimize(comp)
	assert.Equal(t, 0, out.Filters[0].GenIndex)
}

func TestPushdown_CrossGeneratorFilterStays(t *testing.T) {
	comp := mustParse(t, "[i*j for i in range(10) for j in range(10) if j>i]")
	out := Optimize(comp)
	assert.Equal(t, 1, out.Filters[0].GenIndex)
}

func TestPushdown_SkipsExternalNames(t *testing.T) {
	// The filter references a name bound by no generator: provability
	// fails, so the filter stays put.
	comp := mustParse(t, "[i*j for i in range(10) for j in range(10) if i < limit]")
	out := Optimize(comp)
	assert.Equal(t, 1, out.Filters[0].GenIndex)
}

func TestPushdown_SkipsShadowedVariables(t *testing.T) {
	comp := mustParse(t, "[i for i in range(10) for i in range(5) if i>2]")
	out := Optimize(comp)
	assert.Equal(t, 1, out.Filters[0].GenIndex)
}

func TestPushdown_ConstantPredicateToOutermost(t *testing.T) {
	comp := mustParse(t, "[i*j for i in range(3) for j in range(3) if 1<2]")
	out := Optimize(comp)
	assert.Equal(t, 0, out.Filters[0].GenIndex)
}

func TestFold_Arithmetic(t *testing.T) {
	comp := mustParse(t, "[i+2*3 for i in range(5)]")
	out := Optimize(comp)

	add, ok := out.Element.(ir.Binary)
	require.True(t, ok)
	assert.Equal(t, ir.Expr(ir.IntLit{Value: 6}), add.Right)
}

func TestFold_FilterComparison(t *testing.T) {
	comp := mustParse(t, "[i for i in range(5) if i > 1+1]")
	out := Optimize(comp)

	cmp, ok := out.Filters[0].Pred.(ir.Compare)
	require.True(t, ok)
	assert.Equal(t, ir.Expr(ir.IntLit{Value: 2}), cmp.Right)
}

func TestFold_RangeBounds(t *testing.T) {
	comp := mustParse(t, "[i for i in range(2+3, 4*5)]")
	out := Optimize(comp)

	rng := out.Generators[0].Source.(ir.RangeExpr)
	assert.Equal(t, ir.Expr(ir.IntLit{Value: 5}), rng.Start)
	assert.Equal(t, ir.Expr(ir.IntLit{Value: 20}), rng.Stop)
}

func TestFold_LeavesFreeVariablesAlone(t *testing.T) {
	comp := mustParse(t, "[i*2 for i in range(5)]")
	out := Optimize(comp)
	_, ok := out.Element.(ir.Binary)
	assert.True(t, ok)
}

func TestFold_DivisionByZeroUnfolded(t *testing.T) {
	comp := mustParse(t, "[1/0 for i in range(5)]")
	out := Optimize(comp)
	_, ok := out.Element.(ir.Binary)
	assert.True(t, ok, "division by constant zero must not fold")
}

func TestOptimize_Idempotent(t *testing.T) {
	comp := mustParse(t, "[i*j+1*3 for i in range(10) for j in range(10,5) if i%2==0]")
	once := Optimize(comp)
	twice := Optimize(once)
	assert.Equal(t, once, twice)
}
