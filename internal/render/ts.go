package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// renderTS emits a TypeScript function. Single-generator unit-step
// ranges become Array.from chains; the chunked-parallel form splits the
// range across Web Workers built from an inline Blob and recombines the
// partials in chunk index order. TypeScript has no fixed-width integer
// type, so both widths print as number.
func renderTS(c *ir.Comp, opts Options) (string, error) {
	if chunkable(c, opts) {
		return tsParallel(c, opts), nil
	}

	w := newWriter("  ")
	w.line("export function %s(%s): %s {", opts.funcName(), tsParams(c), tsReturnType(c))
	w.in()
	if singleUnitRange(c) {
		tsChain(w, c)
	} else {
		tsLoops(w, c)
	}
	w.out()
	w.line("}")
	return w.String(), nil
}

func tsElem(t string) string {
	if t == ir.TypeBool {
		return "boolean"
	}
	return "number"
}

func tsReturnType(c *ir.Comp) string {
	types := annotationOf(c)
	if c.Reduce != nil {
		if c.Reduce.Op == ir.ReduceAny || c.Reduce.Op == ir.ReduceAll {
			return "boolean"
		}
		return "number"
	}
	switch c.Kind {
	case ir.KindSet:
		return fmt.Sprintf("Set<%s>", tsElem(types.ElementType))
	case ir.KindDict:
		return fmt.Sprintf("Map<%s, %s>", tsElem(types.KeyType), tsElem(types.ValueType))
	default:
		return tsElem(types.ElementType) + "[]"
	}
}

func tsParams(c *ir.Comp) string {
	params := opaqueParams(c)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p + ": number[]"
	}
	return strings.Join(parts, ", ")
}

// tsChain emits the Array.from chain form for a single unit-step range.
func tsChain(w *writer, c *ir.Comp) {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, tsStyle)

	base := fmt.Sprintf("Array.from({ length: %d }, (_, k) => k)", info.count())
	if info.start != 0 {
		base = fmt.Sprintf("Array.from({ length: %d }, (_, k) => %d + k)", info.count(), info.start)
	}
	parts := []string{base}
	for _, f := range c.FiltersFor(0) {
		parts = append(parts, fmt.Sprintf(".filter((%s) => %s)", gen.Var, tsStyle.expr(f.Pred)))
	}

	if c.Reduce != nil {
		expr := tsStyle.expr(reduceExpr(c))
		mapped := fmt.Sprintf(".map((%s) => %s)", gen.Var, expr)
		switch c.Reduce.Op {
		case ir.ReduceSum:
			parts = append(parts, mapped, ".reduce((acc, v) => acc + v, 0)")
		case ir.ReduceProd:
			parts = append(parts, mapped, ".reduce((acc, v) => acc * v, 1)")
		case ir.ReduceMax:
			parts = append(parts, mapped, ".reduce((acc, v) => Math.max(acc, v), Number.MIN_SAFE_INTEGER)")
		case ir.ReduceMin:
			parts = append(parts, mapped, ".reduce((acc, v) => Math.min(acc, v), Number.MAX_SAFE_INTEGER)")
		case ir.ReduceAny:
			parts = append(parts, fmt.Sprintf(".some((%s) => %s)", gen.Var, expr))
		case ir.ReduceAll:
			parts = append(parts, fmt.Sprintf(".every((%s) => %s)", gen.Var, expr))
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
		return
	}

	switch c.Kind {
	case ir.KindSet:
		parts = append(parts, fmt.Sprintf(".map((%s) => %s)", gen.Var, tsStyle.expr(c.Element)))
		w.line("return new Set(%s", parts[0])
	case ir.KindDict:
		types := annotationOf(c)
		parts = append(parts, fmt.Sprintf(".map((%s): [%s, %s] => [%s, %s])",
			gen.Var, tsElem(types.KeyType), tsElem(types.ValueType),
			tsStyle.expr(c.Key), tsStyle.expr(c.Value)))
		w.line("return new Map(%s", parts[0])
	default:
		parts = append(parts, fmt.Sprintf(".map((%s) => %s)", gen.Var, tsStyle.expr(c.Element)))
		w.line("return %s", parts[0])
	}
	w.in()
	for i, p := range parts[1:] {
		last := i == len(parts)-2
		switch {
		case last && c.Kind != ir.KindList && c.Kind != ir.KindGenerator:
			w.line("%s);", p)
		case last:
			w.line("%s;", p)
		default:
			w.line("%s", p)
		}
	}
	w.out()
}

// tsLoops emits the sequential nested-loop form.
func tsLoops(w *writer, c *ir.Comp) {
	if c.Reduce != nil {
		switch c.Reduce.Op {
		case ir.ReduceAny, ir.ReduceAll:
		default:
			w.line("let acc = %s;", reduceSeed(c.Reduce.Op, "Number.MIN_SAFE_INTEGER", "Number.MAX_SAFE_INTEGER"))
		}
	} else {
		types := annotationOf(c)
		switch c.Kind {
		case ir.KindSet:
			w.line("const out = new Set<%s>();", tsElem(types.ElementType))
		case ir.KindDict:
			w.line("const out = new Map<%s, %s>();", tsElem(types.KeyType), tsElem(types.ValueType))
		default:
			w.line("const out: %s[] = [];", tsElem(types.ElementType))
		}
	}

	for i, gen := range c.Generators {
		if info, ok := rangeOf(gen.Source, tsStyle); ok {
			cmp, advance := "<", fmt.Sprintf("%s += %s", gen.Var, info.stepS)
			if info.descending() {
				cmp, advance = ">", fmt.Sprintf("%s -= %d", gen.Var, -info.step)
			}
			w.line("for (let %s = %s; %s %s %s; %s) {", gen.Var, info.startS, gen.Var, cmp, info.stopS, advance)
		} else {
			src := gen.Source.(ir.OpaqueIterable)
			w.line("for (const %s of %s) {", gen.Var, src.Ident)
		}
		w.in()
		for _, f := range c.FiltersFor(i) {
			w.line("if (!(%s)) {", tsStyle.expr(f.Pred))
			w.in()
			w.line("continue;")
			w.out()
			w.line("}")
		}
	}

	if c.Reduce != nil {
		expr := tsStyle.expr(reduceExpr(c))
		switch c.Reduce.Op {
		case ir.ReduceSum:
			w.line("acc += %s;", expr)
		case ir.ReduceProd:
			w.line("acc *= %s;", expr)
		case ir.ReduceMax:
			w.line("acc = Math.max(acc, %s);", expr)
		case ir.ReduceMin:
			w.line("acc = Math.min(acc, %s);", expr)
		case ir.ReduceAny:
			w.line("if (%s) {", expr)
			w.in()
			w.line("return true;")
			w.out()
			w.line("}")
		case ir.ReduceAll:
			w.line("if (!(%s)) {", expr)
			w.in()
			w.line("return false;")
			w.out()
			w.line("}")
		}
	} else {
		switch c.Kind {
		case ir.KindSet:
			w.line("out.add(%s);", tsStyle.expr(c.Element))
		case ir.KindDict:
			w.line("out.set(%s, %s);", tsStyle.expr(c.Key), tsStyle.expr(c.Value))
		default:
			w.line("out.push(%s);", tsStyle.expr(c.Element))
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
		w.line("return out;")
	}
}

// tsParallel emits the Web Worker chunked form. The per-chunk fold runs
// inside an inline worker; Promise.all keeps the partials in chunk
// index order before the recombine loop.
func tsParallel(c *ir.Comp, opts Options) string {
	gen := c.Generators[0]
	info, _ := rangeOf(gen.Source, tsStyle)
	op := c.Reduce.Op
	expr := tsStyle.expr(reduceExpr(c))
	seed := reduceSeed(op, "Number.MIN_SAFE_INTEGER", "Number.MAX_SAFE_INTEGER")
	retType := "number"
	if op == ir.ReduceAny || op == ir.ReduceAll {
		retType = "boolean"
	}

	w := newWriter("  ")
	w.line("export async function %s(): Promise<%s> {", opts.funcName(), retType)
	w.in()
	w.line("const lo = %s;", info.startS)
	w.line("const hi = %s;", info.stopS)
	w.line("const workers = navigator.hardwareConcurrency || 4;")
	w.line("const chunk = Math.max(1, Math.ceil((hi - lo) / workers));")
	w.line("const source = `onmessage = (e) => {")

	// Worker body: plain JS, printed at fixed indent inside the template
	// literal.
	body := newWriter("  ")
	body.in()
	body.line("const [start, end] = e.data;")
	body.line("let acc = %s;", seed)
	body.line("for (let %s = start; %s < end; %s += 1) {", gen.Var, gen.Var, gen.Var)
	body.in()
	for _, f := range c.FiltersFor(0) {
		body.line("if (!(%s)) {", tsStyle.expr(f.Pred))
		body.in()
		body.line("continue;")
		body.out()
		body.line("}")
	}
	switch op {
	case ir.ReduceSum:
		body.line("acc += %s;", expr)
	case ir.ReduceProd:
		body.line("acc *= %s;", expr)
	case ir.ReduceMax:
		body.line("acc = Math.max(acc, %s);", expr)
	case ir.ReduceMin:
		body.line("acc = Math.min(acc, %s);", expr)
	case ir.ReduceAny:
		body.line("acc = acc || (%s);", expr)
	case ir.ReduceAll:
		body.line("acc = acc && (%s);", expr)
	}
	body.out()
	body.line("}")
	body.line("postMessage(acc);")
	body.out()
	for _, l := range body.lines {
		w.lines = append(w.lines, l)
	}

	w.line("};`;")
	w.line(`const url = URL.createObjectURL(new Blob([source], { type: "application/javascript" }));`)
	w.line("const tasks: Promise<%s>[] = [];", retType)
	w.line("for (let w = 0; w < workers; w += 1) {")
	w.in()
	w.line("const start = lo + w * chunk;")
	w.line("const end = Math.min(start + chunk, hi);")
	w.line("tasks.push(")
	w.in()
	w.line("new Promise((resolve) => {")
	w.in()
	w.line("const worker = new Worker(url);")
	w.line("worker.onmessage = (e) => {")
	w.in()
	w.line("resolve(e.data);")
	w.line("worker.terminate();")
	w.out()
	w.line("};")
	w.line("worker.postMessage([start, end]);")
	w.out()
	w.line("}),")
	w.out()
	w.line(");")
	w.out()
	w.line("}")
	w.line("const partials = await Promise.all(tasks);")
	w.line("URL.revokeObjectURL(url);")
	w.line("let acc = %s;", seed)
	w.line("for (const part of partials) {")
	w.in()
	switch op {
	case ir.ReduceSum:
		w.line("acc += part;")
	case ir.ReduceProd:
		w.line("acc *= part;")
	case ir.ReduceMax:
		w.line("acc = Math.max(acc, part);")
	case ir.ReduceMin:
		w.line("acc = Math.min(acc, part);")
	case ir.ReduceAny:
		w.line("acc = acc || part;")
	case ir.ReduceAll:
		w.line("acc = acc && part;")
	}
	w.out()
	w.line("}")
	w.line("return acc;")
	w.out()
	w.line("}")
	return w.String()
}
