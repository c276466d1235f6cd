// Package sqlopt rewrites annotated comprehension IR ahead of SQL
// rendering. The rewritten IR is query-equivalent to the original under
// nested-loop-with-early-filtering semantics.
//
// Three rules run in order: range clipping, predicate pushdown, constant
// folding. Each rule is conservative: when applicability cannot be proven
// (shadowed variables, non-static ranges, external names) the rule skips
// and the IR passes through unchanged. A skip is expected and frequent,
// never an error.
package sqlopt

import (
	"github.com/roach88/pcc/internal/ir"
)

// Optimize returns a rewritten copy of the comprehension. The input is
// never mutated and no shared substructure leaks into the result.
func Optimize(c *ir.Comp) *ir.Comp {
	out := c.Clone()
	clipRanges(out)
	pushDownPredicates(out)
	foldConstants(out)
	return out
}

// clipRanges detects generators whose static bounds prove the range is
// empty (start >= stop with positive step, or start <= stop with negative
// step). Any empty generator makes the whole nested loop empty: the range
// collapses to a canonical empty range and the comprehension is marked so
// rendering emits a trivially-empty query instead of one that scans for
// zero rows at runtime.
func clipRanges(c *ir.Comp) {
	for i, g := range c.Generators {
		rng, ok := g.Source.(ir.RangeExpr)
		if !ok {
			continue
		}
		start, stop, step, ok := rng.StaticBounds()
		if !ok {
			continue
		}
		if (step > 0 && start >= stop) || (step < 0 && start <= stop) {
			c.Generators[i].Source = ir.RangeExpr{
				Start: ir.IntLit{Value: 0},
				Stop:  ir.IntLit{Value: 0},
				Step:  ir.IntLit{Value: 1},
			}
			c.Empty = true
		}
	}
}

// pushDownPredicates moves each filter to the earliest generator that
// binds every variable it references. A filter over a single generator's
// variable lands in that generator's sub-selection, ahead of any cross
// join; a filter spanning multiple generators stays where it is as a
// post-join condition.
//
// Skipped (cannot prove safety):
//   - a referenced variable is bound by no generator (external name)
//   - a variable name is bound by more than one generator (shadowing)
func pushDownPredicates(c *ir.Comp) {
	binder := make(map[string]int, len(c.Generators))
	shadowed := make(map[string]bool)
	for i, g := range c.Generators {
		if _, seen := binder[g.Var]; seen {
			shadowed[g.Var] = true
		}
		binder[g.Var] = i
	}

	for fi, f := range c.Filters {
		vars := ir.FreeVars(f.Pred)

		latest := 0
		safe := true
		for v := range vars {
			idx, bound := binder[v]
			if !bound || shadowed[v] {
				safe = false
				break
			}
			if idx > latest {
				latest = idx
			}
		}
		if !safe {
			continue
		}
		// A constant predicate (no free variables) pushes to the
		// outermost generator.
		if latest < f.GenIndex {
			c.Filters[fi].GenIndex = latest
		}
	}
}

// foldConstants replaces every sub-expression with no free variables by
// its literal value. Division by a constant zero is left unfolded.
func foldConstants(c *ir.Comp) {
	if c.Element != nil {
		c.Element = foldExpr(c.Element)
	}
	if c.Key != nil {
		c.Key = foldExpr(c.Key)
	}
	if c.Value != nil {
		c.Value = foldExpr(c.Value)
	}
	for i, f := range c.Filters {
		c.Filters[i].Pred = foldExpr(f.Pred)
	}
	for i, g := range c.Generators {
		if rng, ok := g.Source.(ir.RangeExpr); ok {
			c.Generators[i].Source = ir.RangeExpr{
				Start: foldExpr(rng.Start),
				Stop:  foldExpr(rng.Stop),
				Step:  foldExpr(rng.Step),
			}
		}
	}
}

func foldExpr(e ir.Expr) ir.Expr {
	// Fold children first so partially-constant trees shrink bottom-up.
	switch x := e.(type) {
	case ir.Unary:
		e = ir.Unary{Op: x.Op, Operand: foldExpr(x.Operand)}
	case ir.Binary:
		e = ir.Binary{Op: x.Op, Left: foldExpr(x.Left), Right: foldExpr(x.Right)}
	case ir.Compare:
		e = ir.Compare{Op: x.Op, Left: foldExpr(x.Left), Right: foldExpr(x.Right)}
	case ir.Logic:
		e = ir.Logic{Op: x.Op, Left: foldExpr(x.Left), Right: foldExpr(x.Right)}
	case ir.Call:
		args := make([]ir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = foldExpr(a)
		}
		e = ir.Call{Func: x.Func, Args: args}
	}

	if _, isLit := e.(ir.IntLit); isLit {
		return e
	}
	if _, isLit := e.(ir.BoolLit); isLit {
		return e
	}
	if v, ok := ir.ConstInt(e); ok {
		return ir.IntLit{Value: v}
	}
	if v, ok := ir.ConstBool(e); ok {
		return ir.BoolLit{Value: v}
	}
	return e
}
