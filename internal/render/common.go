package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// writer accumulates indented source lines. String always terminates the
// output with a single trailing newline.
type writer struct {
	lines  []string
	indent int
	tab    string
}

func newWriter(tab string) *writer {
	return &writer{tab: tab}
}

func (w *writer) line(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if text == "" {
		w.lines = append(w.lines, "")
		return
	}
	w.lines = append(w.lines, strings.Repeat(w.tab, w.indent)+text)
}

func (w *writer) blank() { w.lines = append(w.lines, "") }
func (w *writer) in() { w.indent++ }
func (w *writer) out() { w.indent-- }

func (w *writer) String() string {
	return strings.Join(w.lines, "\n") + "\n"
}

// rangeInfo carries a generator range with bounds rendered in the target
// style plus static values when the bounds fold to constants. The step
// often folds even when a bound depends on an outer generator variable,
// so it is tracked separately.
type rangeInfo struct {
	startS, stopS, stepS string
	start, stop, step    int64
	static               bool
	stepKnown            bool
}

func rangeOf(src ir.Source, s exprStyle) (rangeInfo, bool) {
	rng, ok := src.(ir.RangeExpr)
	if !ok {
		return rangeInfo{}, false
	}
	info := rangeInfo{
		startS: s.expr(rng.Start),
		stopS:  s.expr(rng.Stop),
		stepS:  s.expr(rng.Step),
	}
	info.start, info.stop, info.step, info.static = rng.StaticBounds()
	if lit, ok := rng.Step.(ir.IntLit); ok {
		info.step, info.stepKnown = lit.Value, true
	}
	return info, true
}

// descending reports whether the range counts down. Non-static steps are
// assumed ascending; the parser normalizes the default step to 1.
func (r rangeInfo) descending() bool {
	return r.static && r.step < 0
}

// unitStep reports a statically-known step of exactly 1.
func (r rangeInfo) unitStep() bool {
	return r.static && r.step == 1
}

// count returns the number of iterations for a static range.
func (r rangeInfo) count() int64 {
	if !r.static {
		return 0
	}
	if r.step > 0 {
		if r.start >= r.stop {
			return 0
		}
		return (r.stop - r.start + r.step - 1) / r.step
	}
	if r.start <= r.stop {
		return 0
	}
	step := -r.step
	return (r.start - r.stop + step - 1) / step
}

// chunkable decides whether the chunked-parallel form applies: exactly
// one generator, a reduction, and a statically-known ascending unit-step
// range. Everything else renders sequentially regardless of the Parallel
// option.
func chunkable(c *ir.Comp, opts Options) bool {
	if !opts.Parallel || c.Reduce == nil || len(c.Generators) != 1 {
		return false
	}
	info, ok := rangeOf(c.Generators[0].Source, cStyle)
	return ok && info.unitStep()
}

// reduceSeed returns the identity literal of a reduction operator, with
// intMin/intMax standing in for the width-dependent extremes.
func reduceSeed(op ir.ReduceOp, intMin, intMax string) string {
	switch op {
	case ir.ReduceSum:
		return "0"
	case ir.ReduceProd:
		return "1"
	case ir.ReduceMax:
		return intMin
	case ir.ReduceMin:
		return intMax
	case ir.ReduceAny:
		return "false"
	case ir.ReduceAll:
		return "true"
	}
	return "0"
}

// annotationOf returns the comprehension's type annotation, or the
// 64-bit integer default when the inferencer has not run.
func annotationOf(c *ir.Comp) ir.TypeAnnotation {
	if c.Types != nil {
		return *c.Types
	}
	return ir.TypeAnnotation{ElementType: ir.TypeInt, IntWidth: 64}
}

// singleUnitRange reports a single generator over a statically-known
// ascending unit-step range - the shape iterator-chain forms require.
func singleUnitRange(c *ir.Comp) bool {
	if len(c.Generators) != 1 {
		return false
	}
	info, ok := rangeOf(c.Generators[0].Source, cStyle)
	return ok && info.unitStep()
}

// opaqueParams lists the external collections the comprehension iterates,
// in generator order without duplicates. Renderers surface them as
// function parameters.
func opaqueParams(c *ir.Comp) []string {
	var params []string
	seen := make(map[string]bool)
	for _, g := range c.Generators {
		if src, ok := g.Source.(ir.OpaqueIterable); ok && !seen[src.Ident] {
			seen[src.Ident] = true
			params = append(params, src.Ident)
		}
	}
	return params
}

// reduceExpr returns the expression a reduction folds over.
func reduceExpr(c *ir.Comp) ir.Expr {
	if c.Kind == ir.KindDict {
		return c.Value
	}
	return c.Element
}
