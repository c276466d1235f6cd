package ir

// Source is a sealed interface over generator iterables.
//
// Source types:
//   - RangeExpr:      statically analyzable integer range
//   - OpaqueIterable: named external collection (unsupported by SQL backend)
type Source interface {
	sourceNode() // Marker method - seals interface to this package
}

// RangeExpr is an integer range with constant-foldable bounds.
// Semantics follow half-open ranges: start inclusive, stop exclusive,
// advancing by step. Use ir.ConstInt to resolve bounds statically.
type RangeExpr struct {
	Start Expr
	Stop  Expr
	Step  Expr
}

func (RangeExpr) sourceNode() {}

// StaticBounds resolves the range bounds to integer constants.
// Returns ok=false when any bound contains free variables or calls.
func (r RangeExpr) StaticBounds() (start, stop, step int64, ok bool) {
	start, sok := ConstInt(r.Start)
	stop, pok := ConstInt(r.Stop)
	step, tok := ConstInt(r.Step)
	if !sok || !pok || !tok || step == 0 {
		return 0, 0, 0, false
	}
	return start, stop, step, true
}

// OpaqueIterable is a reference to an external collection by name.
// Renderers iterate it without knowing its element layout; the SQL
// backend rejects it.
type OpaqueIterable struct {
	Ident string
}

func (OpaqueIterable) sourceNode() {}

// Generator is one `for variable in iterable` binding.
type Generator struct {
	Var    string
	Source Source
}

// Filter is a boolean predicate bound to a generator position.
// It is evaluated after generator GenIndex binds its variable and
// before any later generator runs.
type Filter struct {
	GenIndex int
	Pred     Expr
}

// CompKind distinguishes the comprehension flavors.
type CompKind string

const (
	KindList      CompKind = "list"
	KindSet       CompKind = "set"
	KindDict      CompKind = "dict"
	KindGenerator CompKind = "generator"
)

// ReduceOp identifies a reduction operator. All of them are associative,
// which is what makes chunked parallel rendering sound.
type ReduceOp string

const (
	ReduceSum  ReduceOp = "sum"
	ReduceProd ReduceOp = "prod"
	ReduceMax  ReduceOp = "max"
	ReduceMin  ReduceOp = "min"
	ReduceAny  ReduceOp = "any"
	ReduceAll  ReduceOp = "all"
)

// ValidReduceOps defines the reduction calls the parser accepts.
var ValidReduceOps = map[string]ReduceOp{
	"sum":  ReduceSum,
	"prod": ReduceProd,
	"max":  ReduceMax,
	"min":  ReduceMin,
	"any":  ReduceAny,
	"all":  ReduceAll,
}

// Reduce marks a comprehension as a reduction over its generator
// expression. Renderers must emit a fold, never build-then-reduce.
type Reduce struct {
	Op ReduceOp
}

// TypeAnnotation is attached by the inferencer. Once attached it is
// immutable; re-running inference yields an identical annotation.
type TypeAnnotation struct {
	ElementType string
	KeyType     string // dict only
	ValueType   string // dict only
	IntWidth    int    // 32 or 64
	Fallback    bool   // true when any type came from the default
}

// Type name constants used in annotations.
const (
	TypeInt  = "int"
	TypeBool = "bool"
)

// Comp is the root IR node: a comprehension, generator expression, or
// reduction over a generator expression.
//
// Invariants:
//   - every Filter.GenIndex refers to an existing generator index
//   - generators run outer-to-inner in slice order (nested loop semantics)
//   - filters run in source order at their generator position
//   - Element is set for list/set/generator kinds, Key/Value for dict
type Comp struct {
	Kind       CompKind
	Element    Expr // nil for dict
	Key        Expr // dict only
	Value      Expr // dict only
	Generators []Generator
	Filters    []Filter
	Reduce     *Reduce

	// Empty is set by the SQL optimizer when range clipping proves the
	// result is statically empty.
	Empty bool

	// Types is nil until the inferencer runs.
	Types *TypeAnnotation
}

// Clone returns a deep copy of the comprehension. Passes that rewrite the
// IR clone first so no shared substructure is ever mutated.
func (c *Comp) Clone() *Comp {
	out := &Comp{
		Kind:  c.Kind,
		Empty: c.Empty,
	}
	if c.Element != nil {
		out.Element = CloneExpr(c.Element)
	}
	if c.Key != nil {
		out.Key = CloneExpr(c.Key)
	}
	if c.Value != nil {
		out.Value = CloneExpr(c.Value)
	}
	out.Generators = make([]Generator, len(c.Generators))
	for i, g := range c.Generators {
		out.Generators[i] = Generator{Var: g.Var, Source: cloneSource(g.Source)}
	}
	out.Filters = make([]Filter, len(c.Filters))
	for i, f := range c.Filters {
		out.Filters[i] = Filter{GenIndex: f.GenIndex, Pred: CloneExpr(f.Pred)}
	}
	if c.Reduce != nil {
		out.Reduce = &Reduce{Op: c.Reduce.Op}
	}
	if c.Types != nil {
		t := *c.Types
		out.Types = &t
	}
	return out
}

func cloneSource(s Source) Source {
	switch src := s.(type) {
	case RangeExpr:
		return RangeExpr{
			Start: CloneExpr(src.Start),
			Stop:  CloneExpr(src.Stop),
			Step:  CloneExpr(src.Step),
		}
	case OpaqueIterable:
		return src
	default:
		return s
	}
}

// FiltersFor returns the filters attached to generator index i, in
// source order.
func (c *Comp) FiltersFor(i int) []Filter {
	var out []Filter
	for _, f := range c.Filters {
		if f.GenIndex == i {
			out = append(out, f)
		}
	}
	return out
}
