package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderRust emits a Rust function. Single-generator unit-step ranges
// become iterator chains (rayon parallel iterators when the chunked
// policy applies); everything else becomes nested loops with an
// accumulator so reductions stay in fold form.
func renderRust(c *ir.Comp, opts Options) (string, error) {
	intType := "i64"
	if opts.intWidth() == 32 {
		intType = "i32"
	}
	elemType := func(t string) string {
		if t == ir.TypeBool {
			return "bool"
		}
		return intType
	}
	types := annotationOf(c)

	parallel := chunkable(c, opts)
	chain := parallel || singleUnitRange(c)

	w := newWriter("    ")
	if c.Reduce == nil {
		switch c.Kind {
		case ir.KindSet:
			w.line("use std::collections::HashSet;")
		case ir.KindDict:
			w.line("use std::collections::HashMap;")
		}
	}
	if parallel {
		w.line("use rayon::prelude::*;")
	}
	if len(w.lines) > 0 {
		w.blank()
	}

	retType := rustReturnType(c, types, intType, elemType)
	w.line("fn %s(%s) -> %s {", opts.funcName(), rustParams(c, intType), retType)
	w.in()

	if chain {
		rustChain(w, c, parallel, intType)
	} else {
		rustLoops(w, c, intType, elemType, types)
	}

	w.out()
	w.line("}")
	return w.String(), nil
}

func rustReturnType(c *ir.Comp, types ir.TypeAnnotation, intType string, elemType func(string) string) string {
	if c.Reduce != nil {
		if c.Reduce.Op == ir.ReduceAny || c.Reduce.Op == ir.ReduceAll {
			return "bool"
		}
		return intType
	}
	switch c.Kind {
	case ir.KindSet:
		return fmt.Sprintf("HashSet<%s>", elemType(types.ElementType))
	case ir.KindDict:
		return fmt.Sprintf("HashMap<%s, %s>", elemType(types.KeyType), elemType(types.ValueType))
	default:
		return fmt.Sprintf("Vec<%s>", elemType(types.ElementType))
	}
}

func rustParams(c *ir.Comp, intType string) string {
	params := opaqueParams(c)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: &[%s]", p, intType)
	}
	return strings.Join(parts, ", ")
}

// rustChain emits the iterator-chain form for a single unit-step range.
func rustChain(w *writer, c *ir.Comp, parallel bool, intType string) {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, cStyle)

	parts := []string{fmt.Sprintf("(%s..%s)", info.startS, info.stopS)}
	if parallel {
		parts = append(parts, ".into_par_iter()")
	}
	for _, f := range c.FiltersFor(0) {
		parts = append(parts, fmt.Sprintf(".filter(|&%s| %s)", gen.Var, cStyle.expr(f.Pred)))
	}

	if c.Reduce != nil {
		expr := cStyle.expr(reduceExpr(c))
		switch c.Reduce.Op {
		case ir.ReduceSum:
			parts = append(parts, fmt.Sprintf(".map(|%s| %s)", gen.Var, expr), ".sum()")
		case ir.ReduceProd:
			parts = append(parts, fmt.Sprintf(".map(|%s| %s)", gen.Var, expr), ".product()")
		case ir.ReduceMax:
			parts = append(parts,
				fmt.Sprintf(".map(|%s| %s)", gen.Var, expr),
				fmt.Sprintf(".max().unwrap_or(%s::MIN)", intType))
		case ir.ReduceMin:
			parts = append(parts,
				fmt.Sprintf(".map(|%s| %s)", gen.Var, expr),
				fmt.Sprintf(".min().unwrap_or(%s::MAX)", intType))
		case ir.ReduceAny:
			parts = append(parts, fmt.Sprintf(".any(|%s| %s)", gen.Var, expr))
		case ir.ReduceAll:
			parts = append(parts, fmt.Sprintf(".all(|%s| %s)", gen.Var, expr))
		}
	} else {
		switch c.Kind {
		case ir.KindDict:
			parts = append(parts, fmt.Sprintf(".map(|%s| (%s, %s))",
				gen.Var, cStyle.expr(c.Key), cStyle.expr(c.Value)), ".collect()")
		default:
			parts = append(parts, fmt.Sprintf(".map(|%s| %s)", gen.Var, cStyle.expr(c.Element)), ".collect()")
		}
	}

	w.line("%s", parts[0])
	w.in()
	for _, p := range parts[1:] {
		w.line("%s", p)
	}
	w.out()
}

// rustLoops emits the sequential nested-loop form.
func rustLoops(w *writer, c *ir.Comp, intType string, elemType func(string) string, types ir.TypeAnnotation) {
	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny, ir.ReduceAll:
			// Early-exit form needs no accumulator.
		default:
			seed := reduceSeed(c.Reduce.Op, intType+"::MIN", intType+"::MAX")
			w.line("let mut acc: %s = %s;", intType, seed)
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("let mut out: HashSet<%s> = HashSet::new();", elemType(types.ElementType))
		case ir.KindDict:
			w.line("let mut out: HashMap<%s, %s> = HashMap::new();",
				elemType(types.KeyType), elemType(types.ValueType))
		default:
			w.line("let mut out: Vec<%s> = Vec::new();", elemType(types.ElementType))
		}
	}

	for i, gen := range c.Generators {
		if info, ok := rangeOf(gen.Source, cStyle); ok {
			switch {
			case !info.stepKnown || info.step == 1:
				w.line("for %s in %s..%s {", gen.Var, info.startS, info.stopS)
			case info.descending():
				w.line("for %s in (%d..=%d).rev().step_by(%d) {",
					gen.Var, info.stop+1, info.start, -info.step)
			case info.step > 1:
				w.line("for %s in (%s..%s).step_by(%d) {", gen.Var, info.startS, info.stopS, info.step)
			default:
				// Negative step over non-static bounds; treated as
				// ascending like the other loop forms.
				w.line("for %s in %s..%s {", gen.Var, info.startS, info.stopS)
			}
		} else {
			src := gen.Source.(ir.OpaqueIterable)
			w.line("for %s in %s.iter().copied() {", gen.Var, src.Ident)
		}
		w.in()
		for _, f := range c.FiltersFor(i) {
			w.line("if !(%s) {", cStyle.expr(f.Pred))
			w.in()
			w.line("continue;")
			w.out()
			w.line("}")
		}
	}

	if c.Reduce != nil {
		expr := cStyle.expr(reduceExpr(c))
		switch c.Reduce.Op {
		case ir.ReduceSum:
			w.line("acc += %s;", expr)
		case ir.ReduceProd:
			w.line("acc *= %s;", expr)
		case ir.ReduceMax:
			w.line("acc = acc.max(%s);", expr)
		case ir.ReduceMin:
			w.line("acc = acc.min(%s);", expr)
		case ir.ReduceAny:
			w.line("if %s {", expr)
			w.in()
			w.line("return true;")
			w.out()
			w.line("}")
		case ir.ReduceAll:
			w.line("if !(%s) {", expr)
			w.in()
			w.line("return false;")
			w.out()
			w.line("}")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("out.insert(%s);", cStyle.expr(c.Element))
		case ir.KindDict:
			w.line("out.insert(%s, %s);", cStyle.expr(c.Key), cStyle.expr(c.Value))
		default:
			w.line("out.push(%s);", cStyle.expr(c.Element))
		}
	}

	for range c.Generators {
		w.out()
		w.line("}")
	}

	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny:
			w.line("false")
		case ir.ReduceAll:
			w.line("true")
		default:
			w.line("acc")
		}
	} else {
		w.line("out")
	}
}
