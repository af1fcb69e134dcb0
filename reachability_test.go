package latc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkReturns(t *testing.T, prog *Program) error {
	t.Helper()
	require.NoError(t, (&ConstEvaluator{}).Evaluate(prog))
	return (&ReachabilityChecker{}).CheckReturns(prog)
}

func TestReachabilityAcceptsSimpleReturn(t *testing.T) {
	prog := &Program{Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))}}
	assert.NoError(t, checkReturns(t, prog))
}

func TestReachabilityRejectsMissingReturn(t *testing.T) {
	prog := &Program{Funcs: []*FuncDecl{fn("f", TInt, nil, block())}}
	err := checkReturns(t, prog)
	require.Error(t, err)
	assert.IsType(t, UnreachableReturnError{}, err)
}

func TestReachabilityAllowsVoidFunctionsToFallOff(t *testing.T) {
	prog := &Program{Funcs: []*FuncDecl{fn("f", TVoid, nil, block())}}
	assert.NoError(t, checkReturns(t, prog))
}

func TestReachabilityAcceptsIfTrueReturn(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("f", TInt, nil, block(ifStmt(boolLit(true), block(ret(intLit(0)))))),
		},
	}
	assert.NoError(t, checkReturns(t, prog))
}

func TestReachabilityRejectsIfWithUnknownCondition(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("f", TInt, []Param{{Name: "c", Type: TBool}}, block(
				ifStmt(ident("c"), block(ret(intLit(0)))),
			)),
		},
	}
	err := checkReturns(t, prog)
	require.Error(t, err)
	assert.IsType(t, UnreachableReturnError{}, err)
}

func TestReachabilityAcceptsIfElseBothReturning(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("f", TInt, []Param{{Name: "c", Type: TBool}}, block(
				ifElse(ident("c"), block(ret(intLit(1))), block(ret(intLit(2)))),
			)),
		},
	}
	assert.NoError(t, checkReturns(t, prog))
}

func TestReachabilityAcceptsWhileTrueAsAlwaysReturning(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("f", TInt, nil, block(whileStmt(boolLit(true), block(ret(intLit(0)))))),
		},
	}
	assert.NoError(t, checkReturns(t, prog))
}

func TestReachabilityRejectsWhileWithUnknownCondition(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("f", TInt, []Param{{Name: "c", Type: TBool}}, block(
				whileStmt(ident("c"), block(ret(intLit(0)))),
			)),
		},
	}
	err := checkReturns(t, prog)
	require.Error(t, err)
	assert.IsType(t, UnreachableReturnError{}, err)
}
