// Package infer assigns type annotations to parsed comprehension IR.
//
// Inference is a pure transform: it clones the input tree and returns a
// new annotated value, never mutating its argument. Running it twice on
// the same IR yields identical annotations, which keeps golden-snapshot
// comparison trivial.
//
// Inference never guesses beyond the documented default: when the
// expression shape does not determine a type, the annotation falls back
// to the default integer type and records that it did. The fallback is a
// soft signal unless strict mode promotes it to a hard error.
package infer

import (
	"errors"
	"fmt"

	"github.com/roach88/pcc/internal/ir"
)

// Config controls inference behavior.
type Config struct {
	// IntWidth is the default integer width, 32 or 64. Zero means 64.
	IntWidth int

	// Strict promotes a silent type fallback into a hard error. Useful
	// for catching inference gaps in test suites; off by default.
	Strict bool
}

// FallbackError is returned in strict mode when inference had to use the
// default type.
type FallbackError struct {
	Detail string
}

// Error implements the error interface.
func (e *FallbackError) Error() string {
	return fmt.Sprintf("STRICT_TYPES: inference fell back to the default type: %s", e.Detail)
}

// IsFallbackError returns true if the error is a strict-mode fallback.
// Uses errors.As to handle wrapped errors.
func IsFallbackError(err error) bool {
	var fe *FallbackError
	return errors.As(err, &fe)
}

// Infer returns an annotated copy of the comprehension. The input is
// never mutated. The only failure mode is strict-mode fallback promotion.
func Infer(c *ir.Comp, cfg Config) (*ir.Comp, error) {
	width := cfg.IntWidth
	if width == 0 {
		width = 64
	}
	if width != 32 && width != 64 {
		return nil, fmt.Errorf("invalid int width %d: must be 32 or 64", width)
	}

	out := c.Clone()
	env, envFallback := bindGenerators(out)

	ann := &ir.TypeAnnotation{IntWidth: width, Fallback: envFallback}
	var detail string
	if envFallback {
		detail = "opaque iterable element type"
	}

	note := func(t string, fell bool, what string) string {
		if fell {
			ann.Fallback = true
			if detail == "" {
				detail = what
			}
		}
		return t
	}

	switch out.Kind {
	case ir.KindDict:
		kt, kf := exprType(out.Key, env)
		vt, vf := exprType(out.Value, env)
		ann.KeyType = note(kt, kf, "dict key expression")
		ann.ValueType = note(vt, vf, "dict value expression")
		ann.ElementType = ann.ValueType
	default:
		et, ef := exprType(out.Element, env)
		ann.ElementType = note(et, ef, "element expression")
	}

	// Filter predicates are checked for fallback too: a predicate whose
	// type cannot be resolved still renders, but strict mode flags it.
	for _, f := range out.Filters {
		if _, fell := exprType(f.Pred, env); fell {
			note(ir.TypeBool, true, "filter predicate")
		}
	}

	if cfg.Strict && ann.Fallback {
		return nil, &FallbackError{Detail: detail}
	}

	out.Types = ann
	return out, nil
}

// bindGenerators maps each generator variable to its element type.
// Range-driven variables are integers; opaque iterables default to the
// integer type and raise the fallback signal.
func bindGenerators(c *ir.Comp) (map[string]string, bool) {
	env := make(map[string]string, len(c.Generators))
	fallback := false
	for _, g := range c.Generators {
		switch g.Source.(type) {
		case ir.RangeExpr:
			env[g.Var] = ir.TypeInt
		default:
			env[g.Var] = ir.TypeInt
			fallback = true
		}
	}
	return env, fallback
}

// exprType resolves the type of an expression from its shape.
// Returns the type and whether the default had to be used anywhere.
func exprType(e ir.Expr, env map[string]string) (string, bool) {
	switch x := e.(type) {
	case ir.IntLit:
		return ir.TypeInt, false
	case ir.BoolLit:
		return ir.TypeBool, false
	case ir.Name:
		if t, ok := env[x.Ident]; ok {
			return t, false
		}
		return ir.TypeInt, true
	case ir.Unary:
		t, fell := exprType(x.Operand, env)
		if x.Op == ir.OpNot {
			return ir.TypeBool, fell || t != ir.TypeBool
		}
		return ir.TypeInt, fell || t != ir.TypeInt
	case ir.Binary:
		// Arithmetic on two same-typed operands preserves that type.
		lt, lf := exprType(x.Left, env)
		rt, rf := exprType(x.Right, env)
		if lt == rt {
			return lt, lf || rf
		}
		return ir.TypeInt, true
	case ir.Compare:
		_, lf := exprType(x.Left, env)
		_, rf := exprType(x.Right, env)
		return ir.TypeBool, lf || rf
	case ir.Logic:
		lt, lf := exprType(x.Left, env)
		rt, rf := exprType(x.Right, env)
		return ir.TypeBool, lf || rf || lt != ir.TypeBool || rt != ir.TypeBool
	case ir.Call:
		// Uninterpreted calls have no resolvable type.
		return ir.TypeInt, true
	default:
		return ir.TypeInt, true
	}
}
