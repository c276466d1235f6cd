package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderJulia emits a Julia function. Single-generator unit-step ranges
// become comprehension or generator forms; the parallel form splits the
// range under Threads.@threads with one partials slot per chunk so the
// recombine loop reads them in chunk index order. Half-open ranges map
// onto Julia's inclusive ones as start:step:(stop-1) for positive steps
// and (stop+1) for negative ones.
func renderJulia(c *ir.Comp, opts Options) (string, error) {
	intType := "Int64"
	if opts.intWidth() == 32 {
		intType = "Int32"
	}
	elemType := func(t string) string {
		if t == ir.TypeBool {
			return "Bool"
		}
		return intType
	}
	types := annotationOf(c)
	parallel := chunkable(c, opts)

	w := newWriter("    ")
	w.line("function %s(%s)", opts.funcName(), jlParams(c, intType))
	w.in()
	switch {
	case parallel:
		jlParallel(w, c, intType)
	case singleUnitRange(c):
		jlComprehension(w, c, intType)
	default:
		jlLoops(w, c, intType, elemType, types)
	}
	w.out()
	w.line("end")
	return w.String(), nil
}

func jlParams(c *ir.Comp, intType string) string {
	params := opaqueParams(c)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s::Vector{%s}", p, intType)
	}
	return strings.Join(parts, ", ")
}

// jlRange prints a generator source as a Julia range literal.
func jlRange(src ir.Source) (string, bool) {
	info, ok := rangeOf(src, juliaStyle)
	if !ok {
		return "", false
	}
	switch {
	case info.static && info.step == 1:
		return fmt.Sprintf("%d:%d", info.start, info.stop-1), true
	case info.static && info.step > 0:
		return fmt.Sprintf("%d:%d:%d", info.start, info.step, info.stop-1), true
	case info.static:
		return fmt.Sprintf("%d:%d:%d", info.start, info.step, info.stop+1), true
	default:
		return fmt.Sprintf("%s:%s:(%s - 1)", info.startS, info.stepS, info.stopS), true
	}
}

// jlComprehension emits the one-expression form for a single unit-step
// range: a comprehension for collections, a guarded fold for
// reductions. Reductions pass init so an empty or filtered-out range
// still yields the operator identity.
func jlComprehension(w *writer, c *ir.Comp, intType string) {
	gen := c.Generators[0]
	rng, _ := jlRange(gen.Source)

	var preds []string
	for _, f := range c.FiltersFor(0) {
		preds = append(preds, juliaStyle.expr(f.Pred))
	}
	guard := ""
	if len(preds) > 0 {
		guard = " if " + strings.Join(preds, " && ")
	}
	inner := func(e ir.Expr) string {
		return fmt.Sprintf("%s for %s in %s%s", juliaStyle.expr(e), gen.Var, rng, guard)
	}

	if c.Reduce != nil {
		expr := reduceExpr(c)
		switch c.Reduce.Op {
		case ir.ReduceSum:
			w.line("return sum((%s); init = %s(0))", inner(expr), intType)
		case ir.ReduceProd:
			w.line("return prod((%s); init = %s(1))", inner(expr), intType)
		case ir.ReduceMax:
			w.line("return maximum((%s); init = typemin(%s))", inner(expr), intType)
		case ir.ReduceMin:
			w.line("return minimum((%s); init = typemax(%s))", inner(expr), intType)
		case ir.ReduceAny:
			w.line("return any(%s)", inner(expr))
		case ir.ReduceAll:
			w.line("return all(%s)", inner(expr))
		}
		return
	}

	switch c.Kind {
	case ir.KindSet:
		w.line("return Set(%s)", inner(c.Element))
	case ir.KindDict:
		w.line("return Dict(%s => %s for %s in %s%s)",
			juliaStyle.expr(c.Key), juliaStyle.expr(c.Value), gen.Var, rng, guard)
	default:
		w.line("return [%s]", inner(c.Element))
	}
}

// jlLoops emits the sequential nested-loop form.
func jlLoops(w *writer, c *ir.Comp, intType string, elemType func(string) string, types ir.TypeAnnotation) {
	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny, ir.ReduceAll:
		default:
			seed := reduceSeed(c.Reduce.Op, fmt.Sprintf("typemin(%s)", intType), fmt.Sprintf("typemax(%s)", intType))
			if seed == "0" || seed == "1" {
				seed = fmt.Sprintf("%s(%s)", intType, seed)
			}
			w.line("acc = %s", seed)
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("out = Set{%s}()", elemType(types.ElementType))
		case ir.KindDict:
			w.line("out = Dict{%s, %s}()", elemType(types.KeyType), elemType(types.ValueType))
		default:
			w.line("out = %s[]", elemType(types.ElementType))
		}
	}

	for i, gen := range c.Generators {
		if rng, ok := jlRange(gen.Source); ok {
			w.line("for %s in %s", gen.Var, rng)
		} else {
			src := gen.Source.(ir.OpaqueIterable)
			w.line("for %s in %s", gen.Var, src.Ident)
		}
		w.in()
		for _, f := range c.FiltersFor(i) {
			w.line("if !(%s)", juliaStyle.expr(f.Pred))
			w.in()
			w.line("continue")
			w.out()
			w.line("end")
		}
	}

	if c.Reduce != nil {
		expr := juliaStyle.expr(reduceExpr(c))
		switch c.Reduce.Op {
		case ir.ReduceSum:
			w.line("acc += %s", expr)
		case ir.ReduceProd:
			w.line("acc *= %s", expr)
		case ir.ReduceMax:
			w.line("acc = max(acc, %s)", expr)
		case ir.ReduceMin:
			w.line("acc = min(acc, %s)", expr)
		case ir.ReduceAny:
			w.line("if %s", expr)
			w.in()
			w.line("return true")
			w.out()
			w.line("end")
		case ir.ReduceAll:
			w.line("if !(%s)", expr)
			w.in()
			w.line("return false")
			w.out()
			w.line("end")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("push!(out, %s)", juliaStyle.expr(c.Element))
		case ir.KindDict:
			w.line("out[%s] = %s", juliaStyle.expr(c.Key), juliaStyle.expr(c.Value))
		default:
			w.line("push!(out, %s)", juliaStyle.expr(c.Element))
		}
	}

	for range c.Generators {
		w.out()
		w.line("end")
	}

	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny:
			w.line("return false")
		case ir.ReduceAll:
			w.line("return true")
		default:
			w.line("return acc")
		}
	} else {
		w.line("return out")
	}
}

// jlParallel emits the Threads.@threads chunked form. Each task folds
// its own contiguous chunk into partials[w]; the recombine loop then
// walks partials front to back.
func jlParallel(w *writer, c *ir.Comp, intType string) {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, juliaStyle)
	op := c.Reduce.Op
	expr := juliaStyle.expr(reduceExpr(c))

	seed := reduceSeed(op, fmt.Sprintf("typemin(%s)", intType), fmt.Sprintf("typemax(%s)", intType))
	if seed == "0" || seed == "1" {
		seed = fmt.Sprintf("%s(%s)", intType, seed)
	}

	w.line("lo = %s(%s)", intType, info.startS)
	w.line("hi = %s(%s)", intType, info.stopS)
	w.line("n = Threads.nthreads()")
	w.line("chunk = max(1, cld(hi - lo, n))")
	w.line("partials = fill(%s, n)", seed)
	w.line("Threads.@threads for w in 1:n")
	w.in()
	w.line("from = lo + (w - 1) * chunk")
	w.line("upto = min(from + chunk, hi)")
	w.line("acc = %s", seed)
	w.line("for %s in from:(upto - 1)", gen.Var)
	w.in()
	for _, f := range c.FiltersFor(0) {
		w.line("if !(%s)", juliaStyle.expr(f.Pred))
		w.in()
		w.line("continue")
		w.out()
		w.line("end")
	}
	switch op {
	case ir.ReduceSum:
		w.line("acc += %s", expr)
	case ir.ReduceProd:
		w.line("acc *= %s", expr)
	case ir.ReduceMax:
		w.line("acc = max(acc, %s)", expr)
	case ir.ReduceMin:
		w.line("acc = min(acc, %s)", expr)
	case ir.ReduceAny:
		w.line("acc = acc || (%s)", expr)
	case ir.ReduceAll:
		w.line("acc = acc && (%s)", expr)
	}
	w.out()
	w.line("end")
	w.line("partials[w] = acc")
	w.out()
	w.line("end")
	w.line("acc = %s", seed)
	w.line("for part in partials")
	w.in()
	switch op {
	case ir.ReduceSum:
		w.line("acc += part")
	case ir.ReduceProd:
		w.line("acc *= part")
	case ir.ReduceMax:
		w.line("acc = max(acc, part)")
	case ir.ReduceMin:
		w.line("acc = min(acc, part)")
	case ir.ReduceAny:
		w.line("acc = acc || part")
	case ir.ReduceAll:
		w.line("acc = acc && part")
	}
	w.out()
	w.line("end")
	w.line("return acc")
}
