package render

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/ir"
)

// exprStyle holds the per-language surface for printing IR expressions.
// One shared printer walks the tree with precedence-aware
// parenthesization; only operator spellings differ between targets.
type exprStyle struct {
	trueLit  string
	falseLit string
	andOp    string
	orOp     string
	eqOp     string
	neOp     string

	// notFmt formats logical negation; the operand arrives
	// pre-parenthesized when it is not an atom.
	notFmt string // e.g. "!%s" or "NOT %s"

	// divFmt/modFmt, when set, print division/modulo as a call form
	// (e.g. Julia's div(a, b)) instead of an infix operator.
	divFmt string
	modFmt string
}

var cStyle = exprStyle{
	trueLit: "true", falseLit: "false",
	andOp: "&&", orOp: "||",
	eqOp: "==", neOp: "!=",
	notFmt: "!%s",
}

var tsStyle = exprStyle{
	trueLit: "true", falseLit: "false",
	andOp: "&&", orOp: "||",
	eqOp: "===", neOp: "!==",
	notFmt: "!%s",
	divFmt: "Math.trunc(%s / %s)",
}

var juliaStyle = exprStyle{
	trueLit: "true", falseLit: "false",
	andOp: "&&", orOp: "||",
	eqOp: "==", neOp: "!=",
	notFmt: "!%s",
	divFmt: "div(%s, %s)",
	modFmt: "mod(%s, %s)",
}

var sqlStyle = exprStyle{
	trueLit: "TRUE", falseLit: "FALSE",
	andOp: "AND", orOp: "OR",
	eqOp: "=", neOp: "<>",
	notFmt: "NOT %s",
}

// Operator precedence levels for parenthesization. Higher binds tighter.
const (
	precOr   = 1
	precAnd  = 2
	precNot  = 3
	precCmp  = 4
	precAdd  = 5
	precMul  = 6
	precNeg  = 7
	precAtom = 9
)

// expr prints e in this style's syntax.
func (s exprStyle) expr(e ir.Expr) string {
	str, _ := s.print(e)
	return str
}

func (s exprStyle) print(e ir.Expr) (string, int) {
	switch x := e.(type) {
	case ir.IntLit:
		if x.Value < 0 {
			return fmt.Sprintf("%d", x.Value), precNeg
		}
		return fmt.Sprintf("%d", x.Value), precAtom
	case ir.BoolLit:
		if x.Value {
			return s.trueLit, precAtom
		}
		return s.falseLit, precAtom
	case ir.Name:
		return x.Ident, precAtom
	case ir.Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = s.expr(a)
		}
		return fmt.Sprintf("%s(%s)", x.Func, strings.Join(args, ", ")), precAtom
	case ir.Unary:
		if x.Op == ir.OpNot {
			operand, prec := s.print(x.Operand)
			if prec < precAtom {
				operand = "(" + operand + ")"
			}
			return fmt.Sprintf(s.notFmt, operand), precNot
		}
		operand := s.child(x.Operand, precNeg, false)
		return "-" + operand, precNeg
	case ir.Binary:
		return s.printBinary(x)
	case ir.Compare:
		op := string(x.Op)
		switch x.Op {
		case ir.OpEq:
			op = s.eqOp
		case ir.OpNe:
			op = s.neOp
		}
		left := s.child(x.Left, precCmp, false)
		right := s.child(x.Right, precCmp, true)
		return fmt.Sprintf("%s %s %s", left, op, right), precCmp
	case ir.Logic:
		op, prec := s.andOp, precAnd
		if x.Op == ir.OpOr {
			op, prec = s.orOp, precOr
		}
		left := s.child(x.Left, prec, false)
		right := s.child(x.Right, prec, false)
		return fmt.Sprintf("%s %s %s", left, op, right), prec
	default:
		// Unreachable on well-formed IR; a new Expr variant is a
		// programmer error upstream.
		panic(fmt.Sprintf("render: unknown expression type %T", e))
	}
}

func (s exprStyle) printBinary(b ir.Binary) (string, int) {
	if b.Op == ir.OpDiv && s.divFmt != "" {
		return fmt.Sprintf(s.divFmt, s.expr(b.Left), s.expr(b.Right)), precAtom
	}
	if b.Op == ir.OpMod && s.modFmt != "" {
		return fmt.Sprintf(s.modFmt, s.expr(b.Left), s.expr(b.Right)), precAtom
	}

	prec := precMul
	if b.Op == ir.OpAdd || b.Op == ir.OpSub {
		prec = precAdd
	}
	// Subtraction, division, and modulo are left-associative: the right
	// child needs parens at equal precedence.
	rightAssocSensitive := b.Op == ir.OpSub || b.Op == ir.OpDiv || b.Op == ir.OpMod
	left := s.child(b.Left, prec, false)
	right := s.child(b.Right, prec, rightAssocSensitive)
	return fmt.Sprintf("%s %s %s", left, b.Op, right), prec
}

// child prints a sub-expression, parenthesizing when its precedence is
// too low for the surrounding context (or equal, for the right operand
// of a non-associative operator).
func (s exprStyle) child(e ir.Expr, parent int, strict bool) string {
	str, prec := s.print(e)
	if prec < parent || (strict && prec == parent) {
		return "(" + str + ")"
	}
	return str
}
