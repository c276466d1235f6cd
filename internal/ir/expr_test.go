package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstInt_Literals(t *testing.T) {
	v, ok := ConstInt(IntLit{Value: 42})
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestConstInt_Arithmetic(t *testing.T) {
	testCases := []struct {
		name string
		expr Expr
		want int64
	}{
		{"add", Binary{Op: OpAdd, Left: IntLit{Value: 2}, Right: IntLit{Value: 3}}, 5},
		{"sub", Binary{Op: OpSub, Left: IntLit{Value: 2}, Right: IntLit{Value: 3}}, -1},
		{"mul", Binary{Op: OpMul, Left: IntLit{Value: 4}, Right: IntLit{Value: 3}}, 12},
		{"div", Binary{Op: OpDiv, Left: IntLit{Value: 7}, Right: IntLit{Value: 2}}, 3},
		{"mod", Binary{Op: OpMod, Left: IntLit{Value: 7}, Right: IntLit{Value: 2}}, 1},
		{"neg", Unary{Op: OpNeg, Operand: IntLit{Value: 5}}, -5},
		{"nested", Binary{Op: OpMul,
			Left:  Binary{Op: OpAdd, Left: IntLit{Value: 1}, Right: IntLit{Value: 2}},
			Right: IntLit{Value: 10}}, 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := ConstInt(tc.expr)
			assert.True(t, ok)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestConstInt_NotConstant(t *testing.T) {
	// Free variables are not constant
	_, ok := ConstInt(Binary{Op: OpAdd, Left: Name{Ident: "i"}, Right: IntLit{Value: 1}})
	assert.False(t, ok)

	// Calls are never folded
	_, ok = ConstInt(Call{Func: "f", Args: []Expr{IntLit{Value: 1}}})
	assert.False(t, ok)

	// Division by constant zero is reported as non-constant, not an error
	_, ok = ConstInt(Binary{Op: OpDiv, Left: IntLit{Value: 1}, Right: IntLit{Value: 0}})
	assert.False(t, ok)

	_, ok = ConstInt(Binary{Op: OpMod, Left: IntLit{Value: 1}, Right: IntLit{Value: 0}})
	assert.False(t, ok)
}

func TestConstBool(t *testing.T) {
	v, ok := ConstBool(Compare{Op: OpLt, Left: IntLit{Value: 1}, Right: IntLit{Value: 2}})
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ConstBool(Logic{Op: OpAnd,
		Left:  BoolLit{Value: true},
		Right: Compare{Op: OpEq, Left: IntLit{Value: 1}, Right: IntLit{Value: 2}}})
	assert.True(t, ok)
	assert.False(t, v)

	v, ok = ConstBool(Unary{Op: OpNot, Operand: BoolLit{Value: false}})
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = ConstBool(Compare{Op: OpLt, Left: Name{Ident: "i"}, Right: IntLit{Value: 2}})
	assert.False(t, ok)
}

func TestFreeVars(t *testing.T) {
	// i % 2 == 1 and j > i
	expr := Logic{Op: OpAnd,
		Left: Compare{Op: OpEq,
			Left:  Binary{Op: OpMod, Left: Name{Ident: "i"}, Right: IntLit{Value: 2}},
			Right: IntLit{Value: 1}},
		Right: Compare{Op: OpGt, Left: Name{Ident: "j"}, Right: Name{Ident: "i"}},
	}

	vars := FreeVars(expr)
	assert.Equal(t, map[string]bool{"i": true, "j": true}, vars)
}

func TestFreeVars_Call(t *testing.T) {
	vars := FreeVars(Call{Func: "f", Args: []Expr{Name{Ident: "x"}}})
	assert.Equal(t, map[string]bool{"x": true}, vars)
}

func TestCloneExpr_Independent(t *testing.T) {
	orig := Binary{Op: OpAdd, Left: Name{Ident: "i"}, Right: IntLit{Value: 1}}
	clone := CloneExpr(orig)
	assert.Equal(t, Expr(orig), clone)
}
