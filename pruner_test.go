package latc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prune(t *testing.T, prog *Program) {
	t.Helper()
	st, err := (&StateLoader{}).Load(prog)
	require.NoError(t, err)
	require.NoError(t, (&Analyzer{}).Analyze(st, prog))
	require.NoError(t, (&ConstEvaluator{}).Evaluate(prog))
	(&Pruner{}).Prune(prog)
}

func TestPrunerCollapsesIfTrueToThenBranch(t *testing.T) {
	thenBranch := block(ret(intLit(1)))
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				ifStmt(boolLit(true), thenBranch),
				ret(intLit(0)),
			)),
		},
	}
	prune(t, prog)

	body := prog.Funcs[0].Body
	require.Len(t, body.Stmts, 2)
	assert.Same(t, thenBranch, body.Stmts[0], "if(true) should collapse directly to its then-branch")
}

func TestPrunerCollapsesIfFalseToEmptyAndDropsIt(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				ifStmt(boolLit(false), block(ret(intLit(1)))),
				ret(intLit(0)),
			)),
		},
	}
	prune(t, prog)

	body := prog.Funcs[0].Body
	require.Len(t, body.Stmts, 1)
	_, isReturn := body.Stmts[0].(*Return)
	assert.True(t, isReturn)
}

func TestPrunerReplacesConstantFoldedExpressionWithLiteral(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				varDecl(TInt, item("x", addOp("+", intLit(2), intLit(3)))),
				ret(intLit(0)),
			)),
		},
	}
	prune(t, prog)

	decl := prog.Funcs[0].Body.Stmts[0].(*VarDecl)
	lit, ok := decl.Items[0].Init.(*IntLit)
	require.True(t, ok, "folded expression should be replaced by a fresh IntLit node")
	assert.Equal(t, 5, lit.Value)
}

func TestPrunerDoesNotMutateOriginalAddOpNode(t *testing.T) {
	original := addOp("+", intLit(2), intLit(3))
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				varDecl(TInt, item("x", original)),
				ret(intLit(0)),
			)),
		},
	}
	prune(t, prog)

	decl := prog.Funcs[0].Body.Stmts[0].(*VarDecl)
	assert.NotSame(t, original, decl.Items[0].Init)
}

func TestPrunerCollapsesWhileFalseToEmpty(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				whileStmt(boolLit(false), block(exprStmt(funcCall("printInt", intLit(1))))),
				ret(intLit(0)),
			)),
		},
	}
	prune(t, prog)

	body := prog.Funcs[0].Body
	require.Len(t, body.Stmts, 1)
	_, isReturn := body.Stmts[0].(*Return)
	assert.True(t, isReturn, "while(false) should be dropped entirely")
}
