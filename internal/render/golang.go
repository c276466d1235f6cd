package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderGo emits a Go function. Sequential output is the nested-loop
// form; the chunked-parallel form fans out per-chunk goroutines that
// send partial fold results over a channel, recombined with the same
// associative operator.
func renderGo(c *ir.Comp, opts Options) (string, error) {
	intType := "int64"
	minConst, maxConst := "math.MinInt64", "math.MaxInt64"
	if opts.intWidth() == 32 {
		intType = "int32"
		minConst, maxConst = "math.MinInt32", "math.MaxInt32"
	}
	elemType := func(t string) string {
		if t == ir.TypeBool {
			return "bool"
		}
		return intType
	}
	types := annotationOf(c)
	parallel := chunkable(c, opts)

	w := newWriter("\t")
	needsMath := c.Reduce != nil && (c.Reduce.Op == ir.ReduceMax || c.Reduce.Op == ir.ReduceMin)
	switch {
	case parallel && needsMath:
		w.line("import (")
		w.in()
		w.line(`"math"`)
		w.line(`"runtime"`)
		w.line(`"sync"`)
		w.out()
		w.line(")")
		w.blank()
	case parallel:
		w.line("import (")
		w.in()
		w.line(`"runtime"`)
		w.line(`"sync"`)
		w.out()
		w.line(")")
		w.blank()
	case needsMath:
		w.line(`import "math"`)
		w.blank()
	}

	w.line("func %s(%s) %s {", opts.funcName(), goParams(c, intType), goReturnType(c, types, intType, elemType))
	w.in()
	if parallel {
		goParallel(w, c, intType, minConst, maxConst)
	} else {
		goLoops(w, c, intType, minConst, maxConst, elemType, types)
	}
	w.out()
	w.line("}")
	return w.String(), nil
}

func goReturnType(c *ir.Comp, types ir.TypeAnnotation, intType string, elemType func(string) string) string {
	if c.Reduce != nil {
		if c.Reduce.Op == ir.ReduceAny || c.Reduce.Op == ir.ReduceAll {
			return "bool"
		}
		return intType
	}
	switch c.Kind {
	case ir.KindSet:
		return fmt.Sprintf("map[%s]struct{}", elemType(types.ElementType))
	case ir.KindDict:
		return fmt.Sprintf("map[%s]%s", elemType(types.KeyType), elemType(types.ValueType))
	default:
		return "[]" + elemType(types.ElementType)
	}
}

func goParams(c *ir.Comp, intType string) string {
	params := opaqueParams(c)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s []%s", p, intType)
	}
	return strings.Join(parts, ", ")
}

// goLoopHeader opens the loop for one generator.
func goLoopHeader(w *writer, gen ir.Generator, intType string) {
	info, ok := rangeOf(gen.Source, cStyle)
	if !ok {
		src := gen.Source.(ir.OpaqueIterable)
		w.line("for _, %s := range %s {", gen.Var, src.Ident)
		return
	}
	cmp := "<"
	advance := fmt.Sprintf("%s += %s", gen.Var, info.stepS)
	if info.descending() {
		cmp = ">"
		advance = fmt.Sprintf("%s -= %d", gen.Var, -info.step)
	}
	w.line("for %s := %s(%s); %s %s %s; %s {",
		gen.Var, intType, info.startS, gen.Var, cmp, info.stopS, advance)
}

func goFilters(w *writer, c *ir.Comp, genIndex int) {
	for _, f := range c.FiltersFor(genIndex) {
		w.line("if !(%s) {", cStyle.expr(f.Pred))
		w.in()
		w.line("continue")
		w.out()
		w.line("}")
	}
}

func goLoops(w *writer, c *ir.Comp, intType, minConst, maxConst string, elemType func(string) string, types ir.TypeAnnotation) {
	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny, ir.ReduceAll:
		default:
			w.line("var acc %s = %s", intType, reduceSeed(c.Reduce.Op, minConst, maxConst))
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("out := make(map[%s]struct{})", elemType(types.ElementType))
		case ir.KindDict:
			w.line("out := make(map[%s]%s)", elemType(types.KeyType), elemType(types.ValueType))
		default:
			w.line("out := make([]%s, 0)", elemType(types.ElementType))
		}
	}

	for i, gen := range c.Generators {
		goLoopHeader(w, gen, intType)
		w.in()
		goFilters(w, c, i)
	}

	if c.Reduce != nil {
		expr := cStyle.expr(reduceExpr(c))
		switch c.Reduce.Op {
		case ir.ReduceSum:
			w.line("acc += %s", expr)
		case ir.ReduceProd:
			w.line("acc *= %s", expr)
		case ir.ReduceMax:
			w.line("if v := %s; v > acc {", expr)
			w.in()
			w.line("acc = v")
			w.out()
			w.line("}")
		case ir.ReduceMin:
			w.line("if v := %s; v < acc {", expr)
			w.in()
			w.line("acc = v")
			w.out()
			w.line("}")
		case ir.ReduceAny:
			w.line("if %s {", expr)
			w.in()
			w.line("return true")
			w.out()
			w.line("}")
		case ir.ReduceAll:
			w.line("if !(%s) {", expr)
			w.in()
			w.line("return false")
			w.out()
			w.line("}")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("out[%s] = struct{}{}", cStyle.expr(c.Element))
		case ir.KindDict:
			w.line("out[%s] = %s", cStyle.expr(c.Key), cStyle.expr(c.Value))
		default:
			w.line("out = append(out, %s)", cStyle.expr(c.Element))
		}
	}

	for range c.Generators {
		w.out()
		w.line("}")
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

// goParallel emits the goroutine/channel fan-out form: the range is cut
// into contiguous chunks, each goroutine folds its chunk, and partials
// recombine through a channel. Every reduction operator here is
// associative and commutative, so channel arrival order cannot change
// the result.
func goParallel(w *writer, c *ir.Comp, intType, minConst, maxConst string) {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, cStyle)
	op := c.Reduce.Op

	partType := intType
	if op == ir.ReduceAny || op == ir.ReduceAll {
		partType = "bool"
	}
	seed := reduceSeed(op, minConst, maxConst)

	w.line("workers := runtime.NumCPU()")
	w.line("lo := %s(%s)", intType, info.startS)
	w.line("hi := %s(%s)", intType, info.stopS)
	w.line("chunk := (hi - lo + %s(workers) - 1) / %s(workers)", intType, intType)
	w.line("if chunk < 1 {")
	w.in()
	w.line("chunk = 1")
	w.out()
	w.line("}")
	w.line("results := make(chan %s, workers)", partType)
	w.line("var wg sync.WaitGroup")
	w.line("for w := 0; w < workers; w++ {")
	w.in()
	w.line("wg.Add(1)")
	w.line("go func(w int) {")
	w.in()
	w.line("defer wg.Done()")
	w.line("start := lo + %s(w)*chunk", intType)
	w.line("end := start + chunk")
	w.line("if end > hi {")
	w.in()
	w.line("end = hi")
	w.out()
	w.line("}")
	w.line("var acc %s = %s", partType, seed)
	w.line("for %s := start; %s < end; %s++ {", gen.Var, gen.Var, gen.Var)
	w.in()
	goFilters(w, c, 0)
	expr := cStyle.expr(reduceExpr(c))
	switch op {
	case ir.ReduceSum:
		w.line("acc += %s", expr)
	case ir.ReduceProd:
		w.line("acc *= %s", expr)
	case ir.ReduceMax:
		w.line("if v := %s; v > acc {", expr)
		w.in()
		w.line("acc = v")
		w.out()
		w.line("}")
	case ir.ReduceMin:
		w.line("if v := %s; v < acc {", expr)
		w.in()
		w.line("acc = v")
		w.out()
		w.line("}")
	case ir.ReduceAny:
		w.line("acc = acc || (%s)", expr)
	case ir.ReduceAll:
		w.line("acc = acc && (%s)", expr)
	}
	w.out()
	w.line("}")
	w.line("results <- acc")
	w.out()
	w.line("}(w)")
	w.out()
	w.line("}")
	w.line("wg.Wait()")
	w.line("close(results)")
	w.line("var acc %s = %s", partType, seed)
	w.line("for part := range results {")
	w.in()
	switch op {
	case ir.ReduceSum:
		w.line("acc += part")
	case ir.ReduceProd:
		w.line("acc *= part")
	case ir.ReduceMax:
		w.line("if part > acc {")
		w.in()
		w.line("acc = part")
		w.out()
		w.line("}")
	case ir.ReduceMin:
		w.line("if part < acc {")
		w.in()
		w.line("acc = part")
		w.out()
		w.line("}")
	case ir.ReduceAny:
		w.line("acc = acc || part")
	case ir.ReduceAll:
		w.line("acc = acc && part")
	}
	w.out()
	w.line("}")
	w.line("return acc")
}
