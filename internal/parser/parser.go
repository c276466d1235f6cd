// Package parser turns a single source fragment into comprehension IR.
//
// The accepted grammar is the comprehension subset: list/set/dict
// comprehensions, generator expressions, and the reduction calls
// sum/prod/max/min/any/all over a generator expression. Everything else is
// rejected with a ParseError that names the offending construct, so a
// caller can decide whether the input can be simplified.
package parser

import (
	"strconv"

	"github.com/roach88/pcc/internal/ir"
)

// Parse parses one top-level comprehension or reduction from src.
// On failure no partial IR is returned.
func Parse(src string) (*ir.Comp, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	comp, err := p.parseTop()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokEOF {
		return nil, syntaxErr(p.cur().Pos, "unexpected trailing input %q", p.cur().Lexeme)
	}
	return comp, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) cur() Token { return p.tokens[p.pos] }
func (p *parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, syntaxErr(p.cur().Pos, "expected %s, found %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) parseTop() (*ir.Comp, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokLBracket:
		return p.parseListComp()
	case TokLBrace:
		return p.parseBraceComp()
	case TokLParen:
		return p.parseGenExp()
	case TokIdent:
		if p.peek().Kind == TokAssign {
			return nil, unsupportedErr(p.peek().Pos, "assignment", "assignment statements are not supported")
		}
		if p.peek().Kind == TokLParen {
			return p.parseReduction()
		}
		return nil, unsupportedErr(tok.Pos, "bare expression", "expected a comprehension or reduction call")
	default:
		return nil, unsupportedErr(tok.Pos, tok.Lexeme, "expected a comprehension or reduction call")
	}
}

// parseListComp parses [element for ... if ...].
func (p *parser) parseListComp() (*ir.Comp, error) {
	p.advance() // '['
	element, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	comp, err := p.parseClauses(ir.KindList)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	comp.Element = element
	return comp, nil
}

// parseBraceComp parses {element for ...} (set) or {key: value for ...} (dict).
func (p *parser) parseBraceComp() (*ir.Comp, error) {
	p.advance() // '{'
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == TokColon {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		comp, err := p.parseClauses(ir.KindDict)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBrace, "'}'"); err != nil {
			return nil, err
		}
		comp.Key = first
		comp.Value = value
		return comp, nil
	}

	comp, err := p.parseClauses(ir.KindSet)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	comp.Element = first
	return comp, nil
}

// parseGenExp parses (element for ...).
func (p *parser) parseGenExp() (*ir.Comp, error) {
	p.advance() // '('
	element, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	comp, err := p.parseClauses(ir.KindGenerator)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	comp.Element = element
	return comp, nil
}

// parseReduction parses name(element for ...) where name is one of the
// supported reduction calls. Python allows the generator expression to
// drop its own parentheses when it is the sole call argument.
func (p *parser) parseReduction() (*ir.Comp, error) {
	nameTok := p.advance()
	op, ok := ir.ValidReduceOps[nameTok.Lexeme]
	if !ok {
		return nil, unsupportedErr(nameTok.Pos, "call:"+nameTok.Lexeme,
			"unsupported function %q: only sum/prod/max/min/any/all reductions are supported", nameTok.Lexeme)
	}
	p.advance() // '('

	var comp *ir.Comp
	var err error
	if p.cur().Kind == TokLParen {
		// Explicit inner parens: sum((x for x in ...))
		comp, err = p.parseGenExp()
		if err != nil {
			return nil, err
		}
	} else {
		element, exprErr := p.parseExpr()
		if exprErr != nil {
			return nil, exprErr
		}
		if p.cur().Kind != TokFor {
			return nil, unsupportedErr(p.cur().Pos, "call argument",
				"%s expects a generator expression argument", nameTok.Lexeme)
		}
		comp, err = p.parseClauses(ir.KindGenerator)
		if err != nil {
			return nil, err
		}
		comp.Element = element
	}

	if p.cur().Kind == TokComma {
		return nil, unsupportedErr(p.cur().Pos, "call arity",
			"%s expects exactly one argument", nameTok.Lexeme)
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	comp.Reduce = &ir.Reduce{Op: op}
	return comp, nil
}

// parseClauses parses one or more `for NAME in iterable` clauses, each
// followed by zero or more `if predicate` clauses. Every `if` binds to the
// nearest preceding generator, preserving nested-loop short-circuiting.
func (p *parser) parseClauses(kind ir.CompKind) (*ir.Comp, error) {
	comp := &ir.Comp{Kind: kind}

	if p.cur().Kind != TokFor {
		return nil, syntaxErr(p.cur().Pos, "expected 'for', found %q", p.cur().Lexeme)
	}

	for p.cur().Kind == TokFor {
		p.advance()
		varTok, err := p.expect(TokIdent, "loop variable")
		if err != nil {
			return nil, err
		}
		if p.cur().Kind == TokComma {
			return nil, unsupportedErr(p.cur().Pos, "tuple target",
				"destructuring loop targets are not supported; bind a single name")
		}
		if _, err := p.expect(TokIn, "'in'"); err != nil {
			return nil, err
		}
		source, err := p.parseSource()
		if err != nil {
			return nil, err
		}
		comp.Generators = append(comp.Generators, ir.Generator{Var: varTok.Lexeme, Source: source})

		genIndex := len(comp.Generators) - 1
		for p.cur().Kind == TokIf {
			p.advance()
			pred, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			comp.Filters = append(comp.Filters, ir.Filter{GenIndex: genIndex, Pred: pred})
		}
	}
	return comp, nil
}

// parseSource parses a generator iterable: range(...) or a named external
// collection.
func (p *parser) parseSource() (ir.Source, error) {
	tok := p.cur()
	if tok.Kind != TokIdent {
		return nil, unsupportedErr(tok.Pos, "iterable expression",
			"iterables must be range(...) or a named collection")
	}

	if tok.Lexeme == "range" && p.peek().Kind == TokLParen {
		return p.parseRange()
	}

	p.advance()
	if p.cur().Kind == TokLParen {
		return nil, unsupportedErr(tok.Pos, "call iterable",
			"iterating over a call result is not supported")
	}
	return ir.OpaqueIterable{Ident: tok.Lexeme}, nil
}

// parseRange parses range(stop), range(start, stop) or
// range(start, stop, step), normalizing to explicit start/stop/step.
func (p *parser) parseRange() (ir.Source, error) {
	rangeTok := p.advance() // 'range'
	p.advance()             // '('

	var args []ir.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Kind != TokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}

	switch len(args) {
	case 1:
		return ir.RangeExpr{Start: ir.IntLit{Value: 0}, Stop: args[0], Step: ir.IntLit{Value: 1}}, nil
	case 2:
		return ir.RangeExpr{Start: args[0], Stop: args[1], Step: ir.IntLit{Value: 1}}, nil
	case 3:
		return ir.RangeExpr{Start: args[0], Stop: args[1], Step: args[2]}, nil
	default:
		return nil, syntaxErr(rangeTok.Pos, "range expects 1 to 3 arguments, got %d", len(args))
	}
}

// Expression parsing, lowest precedence first: or < and < not < comparison
// < additive < multiplicative < unary < atom.

func (p *parser) parseExpr() (ir.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ir.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ir.Logic{Op: ir.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ir.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ir.Logic{Op: ir.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ir.Expr, error) {
	if p.cur().Kind == TokNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ir.Unary{Op: ir.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var cmpOps = map[TokenKind]ir.CmpOp{
	TokEq: ir.OpEq,
	TokNe: ir.OpNe,
	TokLt: ir.OpLt,
	TokLe: ir.OpLe,
	TokGt: ir.OpGt,
	TokGe: ir.OpGe,
}

func (p *parser) parseComparison() (ir.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := cmpOps[p.cur().Kind]
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, chained := cmpOps[p.cur().Kind]; chained {
		return nil, unsupportedErr(p.cur().Pos, "chained comparison",
			"chained comparisons are not supported; split with 'and'")
	}
	return ir.Compare{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAdditive() (ir.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokPlus || p.cur().Kind == TokMinus {
		op := ir.OpAdd
		if p.cur().Kind == TokMinus {
			op = ir.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ir.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ir.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ir.BinOp
		switch p.cur().Kind {
		case TokStar:
			op = ir.OpMul
		case TokSlash:
			op = ir.OpDiv
		case TokPercent:
			op = ir.OpMod
		case TokStarStar:
			return nil, unsupportedErr(p.cur().Pos, "power operator",
				"the ** operator has no uniform integer rendering across targets")
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ir.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (ir.Expr, error) {
	switch p.cur().Kind {
	case TokMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ir.Unary{Op: ir.OpNeg, Operand: operand}, nil
	case TokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (ir.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokInt:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, syntaxErr(tok.Pos, "integer literal %s out of range", tok.Lexeme)
		}
		return ir.IntLit{Value: value}, nil
	case TokTrue:
		p.advance()
		return ir.BoolLit{Value: true}, nil
	case TokFalse:
		p.advance()
		return ir.BoolLit{Value: false}, nil
	case TokIdent:
		p.advance()
		if p.cur().Kind == TokLParen {
			return p.parseCallArgs(tok.Lexeme)
		}
		return ir.Name{Ident: tok.Lexeme}, nil
	case TokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokLBracket, TokLBrace:
		return nil, unsupportedErr(tok.Pos, "nested collection",
			"collection literals and nested comprehensions are not supported inside expressions")
	case TokAssign:
		return nil, syntaxErr(tok.Pos, "unexpected '='")
	default:
		return nil, syntaxErr(tok.Pos, "unexpected token %q", tok.Lexeme)
	}
}

// parseCallArgs parses the arguments of an uninterpreted call. The call is
// carried through the IR opaquely; no lowering happens here or later.
func (p *parser) parseCallArgs(name string) (ir.Expr, error) {
	p.advance() // '('
	var args []ir.Expr
	if p.cur().Kind != TokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Kind != TokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return ir.Call{Func: name, Args: args}, nil
}
