package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderCSharp emits a C# static method. Single-generator unit-step
// ranges become LINQ chains over Enumerable.Range; the parallel form
// adds AsParallel().AsOrdered() so PLINQ preserves source order.
// Everything else is the nested-loop form with Allman braces.
func renderCSharp(c *ir.Comp, opts Options) (string, error) {
	intType := "long"
	suffix := "L"
	if opts.intWidth() == 32 {
		intType = "int"
		suffix = ""
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
	if !chain && c.Reduce != nil &&
		(c.Reduce.Op == ir.ReduceMax || c.Reduce.Op == ir.ReduceMin) {
		w.line("using System;")
	}
	if chain {
		w.line("using System.Linq;")
	}
	if c.Reduce == nil {
		w.line("using System.Collections.Generic;")
	}
	if len(w.lines) > 0 {
		w.blank()
	}

	w.line("public static %s %s(%s)", csReturnType(c, types, intType, elemType), opts.funcName(), csParams(c, intType))
	w.line("{")
	w.in()
	if chain {
		csChain(w, c, parallel, intType, suffix)
	} else {
		csLoops(w, c, intType, elemType, types)
	}
	w.out()
	w.line("}")
	return w.String(), nil
}

func csReturnType(c *ir.Comp, types ir.TypeAnnotation, intType string, elemType func(string) string) string {
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
		return fmt.Sprintf("Dictionary<%s, %s>", elemType(types.KeyType), elemType(types.ValueType))
	default:
		return fmt.Sprintf("List<%s>", elemType(types.ElementType))
	}
}

func csParams(c *ir.Comp, intType string) string {
	params := opaqueParams(c)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s[] %s", intType, p)
	}
	return strings.Join(parts, ", ")
}

// csChain emits the LINQ chain form for a single unit-step range.
func csChain(w *writer, c *ir.Comp, parallel bool, intType, suffix string) {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, cStyle)

	parts := []string{fmt.Sprintf("Enumerable.Range(%d, %d)", info.start, info.count())}
	if intType == "long" {
		parts = append(parts, fmt.Sprintf(".Select(%s => (long)%s)", gen.Var, gen.Var))
	}
	if parallel {
		parts = append(parts, ".AsParallel()", ".AsOrdered()")
	}
	for _, f := range c.FiltersFor(0) {
		parts = append(parts, fmt.Sprintf(".Where(%s => %s)", gen.Var, cStyle.expr(f.Pred)))
	}

	if c.Reduce != nil {
		expr := cStyle.expr(reduceExpr(c))
		mapped := fmt.Sprintf(".Select(%s => %s)", gen.Var, expr)
		switch c.Reduce.Op {
		case ir.ReduceSum:
			parts = append(parts, mapped, ".Sum()")
		case ir.ReduceProd:
			parts = append(parts, mapped, fmt.Sprintf(".Aggregate(1%s, (acc, v) => acc * v)", suffix))
		case ir.ReduceMax:
			parts = append(parts, mapped, fmt.Sprintf(".DefaultIfEmpty(%s.MinValue).Max()", intType))
		case ir.ReduceMin:
			parts = append(parts, mapped, fmt.Sprintf(".DefaultIfEmpty(%s.MaxValue).Min()", intType))
		case ir.ReduceAny:
			parts = append(parts, fmt.Sprintf(".Any(%s => %s)", gen.Var, expr))
		case ir.ReduceAll:
			parts = append(parts, fmt.Sprintf(".All(%s => %s)", gen.Var, expr))
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			parts = append(parts, fmt.Sprintf(".Select(%s => %s)", gen.Var, cStyle.expr(c.Element)), ".ToHashSet()")
		case ir.KindDict:
			parts = append(parts, fmt.Sprintf(".ToDictionary(%s => %s, %s => %s)",
				gen.Var, cStyle.expr(c.Key), gen.Var, cStyle.expr(c.Value)))
		default:
			parts = append(parts, fmt.Sprintf(".Select(%s => %s)", gen.Var, cStyle.expr(c.Element)), ".ToList()")
		}
	}

	w.line("return %s", parts[0])
	w.in()
	for i, p := range parts[1:] {
		suffix := ""
		if i == len(parts)-2 {
			suffix = ";"
		}
		w.line("%s%s", p, suffix)
	}
	w.out()
}

// csLoops emits the sequential nested-loop form.
func csLoops(w *writer, c *ir.Comp, intType string, elemType func(string) string, types ir.TypeAnnotation) {
	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny, ir.ReduceAll:
		default:
			w.line("%s acc = %s;", intType, reduceSeed(c.Reduce.Op, intType+".MinValue", intType+".MaxValue"))
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("var outSet = new HashSet<%s>();", elemType(types.ElementType))
		case ir.KindDict:
			w.line("var outDict = new Dictionary<%s, %s>();", elemType(types.KeyType), elemType(types.ValueType))
		default:
			w.line("var outList = new List<%s>();", elemType(types.ElementType))
		}
	}

	for i, gen := range c.Generators {
		if info, ok := rangeOf(gen.Source, cStyle); ok {
			cmp, advance := "<", fmt.Sprintf("%s += %s", gen.Var, info.stepS)
			if info.descending() {
				cmp, advance = ">", fmt.Sprintf("%s -= %d", gen.Var, -info.step)
			}
			w.line("for (%s %s = %s; %s %s %s; %s)", intType, gen.Var, info.startS, gen.Var, cmp, info.stopS, advance)
		} else {
			src := gen.Source.(ir.OpaqueIterable)
			w.line("foreach (var %s in %s)", gen.Var, src.Ident)
		}
		w.line("{")
		w.in()
		for _, f := range c.FiltersFor(i) {
			w.line("if (!(%s))", cStyle.expr(f.Pred))
			w.line("{")
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
			w.line("acc = Math.Max(acc, %s);", expr)
		case ir.ReduceMin:
			w.line("acc = Math.Min(acc, %s);", expr)
		case ir.ReduceAny:
			w.line("if (%s)", expr)
			w.line("{")
			w.in()
			w.line("return true;")
			w.out()
			w.line("}")
		case ir.ReduceAll:
			w.line("if (!(%s))", expr)
			w.line("{")
			w.in()
			w.line("return false;")
			w.out()
			w.line("}")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("outSet.Add(%s);", cStyle.expr(c.Element))
		case ir.KindDict:
			w.line("outDict[%s] = %s;", cStyle.expr(c.Key), cStyle.expr(c.Value))
		default:
			w.line("outList.Add(%s);", cStyle.expr(c.Element))
		}
	}

	for range c.Generators {
		w.out()
		w.line("}")
	}

	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny:
			w.line("return false;")
		case ir.ReduceAll:
			w.line("return true;")
		default:
			w.line("return acc;")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("return outSet;")
		case ir.KindDict:
			w.line("return outDict;")
		default:
			w.line("return outList;")
		}
	}
}
