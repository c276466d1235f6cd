package ir

// Expr is a sealed interface over the expression forms the pipeline
// understands. Only types in this package implement it; the marker method
// enables exhaustive type switches in the inferencer, optimizer, and
// renderers, with an explicit error arm instead of duck-typed probing.
//
// Expression forms:
//   - IntLit:  integer literal
//   - BoolLit: boolean literal (True/False in source)
//   - Name:    variable reference
//   - Unary:   -x, not x
//   - Binary:  arithmetic (+ - * / %)
//   - Compare: == != < <= > >=
//   - Logic:   and / or
//   - Call:    uninterpreted function call, passed through opaquely
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// UnaryOp identifies a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "not"
)

// BinOp identifies an arithmetic operator. Division is integer division
// under every backend's rendering of the IR.
type BinOp string

const (
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpMul BinOp = "*"
	OpDiv BinOp = "/"
	OpMod BinOp = "%"
)

// CmpOp identifies a comparison operator.
type CmpOp string

const (
	OpEq CmpOp = "=="
	OpNe CmpOp = "!="
	OpLt CmpOp = "<"
	OpLe CmpOp = "<="
	OpGt CmpOp = ">"
	OpGe CmpOp = ">="
)

// LogicOp identifies a boolean connective.
type LogicOp string

const (
	OpAnd LogicOp = "and"
	OpOr  LogicOp = "or"
)

// IntLit is an integer literal. Always int64 in the IR; the rendered width
// is chosen by the type annotation (32 or 64 bits).
type IntLit struct {
	Value int64
}

func (IntLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

func (BoolLit) exprNode() {}

// Name is a variable reference, usually a generator-bound variable.
type Name struct {
	Ident string
}

func (Name) exprNode() {}

// Unary is a unary operation.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

func (Unary) exprNode() {}

// Binary is an arithmetic operation over two operands.
type Binary struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (Binary) exprNode() {}

// Compare is a comparison producing a boolean.
type Compare struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

func (Compare) exprNode() {}

// Logic is a boolean connective over two operands.
type Logic struct {
	Op    LogicOp
	Left  Expr
	Right Expr
}

func (Logic) exprNode() {}

// Call is an uninterpreted function call. The pipeline never lowers it:
// renderers emit name(args) verbatim in the target syntax and the
// inferencer falls back to the default type for it.
type Call struct {
	Func string
	Args []Expr
}

func (Call) exprNode() {}

// CloneExpr returns a structurally identical deep copy of e.
func CloneExpr(e Expr) Expr {
	switch x := e.(type) {
	case IntLit, BoolLit, Name:
		return x
	case Unary:
		return Unary{Op: x.Op, Operand: CloneExpr(x.Operand)}
	case Binary:
		return Binary{Op: x.Op, Left: CloneExpr(x.Left), Right: CloneExpr(x.Right)}
	case Compare:
		return Compare{Op: x.Op, Left: CloneExpr(x.Left), Right: CloneExpr(x.Right)}
	case Logic:
		return Logic{Op: x.Op, Left: CloneExpr(x.Left), Right: CloneExpr(x.Right)}
	case Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = CloneExpr(a)
		}
		return Call{Func: x.Func, Args: args}
	default:
		return e
	}
}

// FreeVars returns the set of variable names referenced by e.
func FreeVars(e Expr) map[string]bool {
	vars := make(map[string]bool)
	collectFreeVars(e, vars)
	return vars
}

func collectFreeVars(e Expr, vars map[string]bool) {
	switch x := e.(type) {
	case Name:
		vars[x.Ident] = true
	case Unary:
		collectFreeVars(x.Operand, vars)
	case Binary:
		collectFreeVars(x.Left, vars)
		collectFreeVars(x.Right, vars)
	case Compare:
		collectFreeVars(x.Left, vars)
		collectFreeVars(x.Right, vars)
	case Logic:
		collectFreeVars(x.Left, vars)
		collectFreeVars(x.Right, vars)
	case Call:
		for _, a := range x.Args {
			collectFreeVars(a, vars)
		}
	}
}

// ConstInt folds e down to an integer constant if it contains no free
// variables, no calls, and no non-integer forms. Division or modulo by a
// constant zero is reported as non-constant rather than an error; the
// expression is then rendered as-is and fails (or not) in the target
// language, which is the conservative choice.
func ConstInt(e Expr) (int64, bool) {
	switch x := e.(type) {
	case IntLit:
		return x.Value, true
	case Unary:
		if x.Op != OpNeg {
			return 0, false
		}
		v, ok := ConstInt(x.Operand)
		if !ok {
			return 0, false
		}
		return -v, true
	case Binary:
		l, ok := ConstInt(x.Left)
		if !ok {
			return 0, false
		}
		r, ok := ConstInt(x.Right)
		if !ok {
			return 0, false
		}
		switch x.Op {
		case OpAdd:
			return l + r, true
		case OpSub:
			return l - r, true
		case OpMul:
			return l * r, true
		case OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ConstBool folds e down to a boolean constant where possible.
func ConstBool(e Expr) (bool, bool) {
	switch x := e.(type) {
	case BoolLit:
		return x.Value, true
	case Unary:
		if x.Op != OpNot {
			return false, false
		}
		v, ok := ConstBool(x.Operand)
		if !ok {
			return false, false
		}
		return !v, true
	case Compare:
		l, lok := ConstInt(x.Left)
		r, rok := ConstInt(x.Right)
		if !lok || !rok {
			return false, false
		}
		switch x.Op {
		case OpEq:
			return l == r, true
		case OpNe:
			return l != r, true
		case OpLt:
			return l < r, true
		case OpLe:
			return l <= r, true
		case OpGt:
			return l > r, true
		case OpGe:
			return l >= r, true
		}
		return false, false
	case Logic:
		l, lok := ConstBool(x.Left)
		r, rok := ConstBool(x.Right)
		if !lok || !rok {
			return false, false
		}
		if x.Op == OpAnd {
			return l && r, true
		}
		return l || r, true
	default:
		return false, false
	}
}
