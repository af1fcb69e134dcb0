package latc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, prog *Program) (*SymbolTable, error) {
	t.Helper()
	st, err := (&StateLoader{}).Load(prog)
	require.NoError(t, err)
	return st, (&Analyzer{}).Analyze(st, prog)
}

func TestAnalyzerAcceptsSmallestValidProgram(t *testing.T) {
	_, err := analyze(t, mainReturning0())
	assert.NoError(t, err)
}

func TestAnalyzerResolvesSelfFieldBareName(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{
			class("Counter", "", []*FieldDecl{field(TInt, "n")}, []*FuncDecl{
				fn("bump", TVoid, nil, block(incr("n"))),
				fn("get", TInt, nil, block(ret(ident("n")))),
			}),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := analyze(t, prog)
	assert.NoError(t, err)
}

func TestAnalyzerRejectsUndeclaredVariable(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(exprStmt(ident("missing")), ret(intLit(0)))),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, UndeclaredVariableError{}, err)
}

func TestAnalyzerRejectsUndeclaredFunction(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(exprStmt(funcCall("nope")), ret(intLit(0)))),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, UndeclaredFunctionError{}, err)
}

func TestAnalyzerResolvesImplicitSelfCallToOwnMethod(t *testing.T) {
	// No global function named "helper" exists; the bare call inside
	// bump() must resolve against Counter's own vtable, not be rejected
	// as an undeclared function.
	prog := &Program{
		Classes: []*ClassDecl{
			class("Counter", "", nil, []*FuncDecl{
				fn("helper", TInt, nil, block(ret(intLit(1)))),
				fn("bump", TInt, nil, block(ret(funcCall("helper")))),
			}),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := analyze(t, prog)
	assert.NoError(t, err)
}

func TestAnalyzerImplicitSelfCallPrefersMethodOverSameNamedFunction(t *testing.T) {
	// A top-level "helper(int)->int" and Counter's own "helper()->int"
	// coexist; the implicit call inside bump() must type-check against
	// the method's (zero-arg) signature, matching codegen's vtable-first
	// dispatch for *FuncCall. Calling with one argument must fail.
	prog := &Program{
		Classes: []*ClassDecl{
			class("Counter", "", nil, []*FuncDecl{
				fn("helper", TInt, nil, block(ret(intLit(1)))),
				fn("bump", TInt, nil, block(ret(funcCall("helper", intLit(1))))),
			}),
		},
		Funcs: []*FuncDecl{
			fn("helper", TInt, []Param{{Name: "x", Type: TInt}}, block(ret(ident("x")))),
			fn("main", TInt, nil, block(ret(intLit(0)))),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, ArgumentMismatchError{}, err)
}

func TestAnalyzerRejectsTypeMismatchOnVarDecl(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				varDecl(TInt, item("x", strLit("oops"))),
				ret(intLit(0)),
			)),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, TypeMismatchError{}, err)
}

func TestAnalyzerRejectsNonBooleanCondition(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				ifStmt(intLit(1), ret(intLit(0))),
				ret(intLit(0)),
			)),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, BadConditionError{}, err)
}

func TestAnalyzerRejectsSelfOutsideMethod(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(exprStmt(selfExpr()), ret(intLit(0)))),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, InvalidReferenceError{}, err)
}

func TestAnalyzerRejectsArgumentMismatch(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("helper", TVoid, []Param{{Name: "x", Type: TInt}}, block()),
			fn("main", TInt, nil, block(exprStmt(funcCall("helper")), ret(intLit(0)))),
		},
	}
	_, err := analyze(t, prog)
	require.Error(t, err)
	assert.IsType(t, ArgumentMismatchError{}, err)
}

func TestAnalyzerAnnotatesExpressionTypes(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				varDecl(TInt, item("x", addOp("+", intLit(1), intLit(2)))),
				ret(intLit(0)),
			)),
		},
	}
	_, err := analyze(t, prog)
	require.NoError(t, err)

	decl := prog.Funcs[0].Body.Stmts[0].(*VarDecl)
	assert.Equal(t, TInt, decl.Items[0].Init.Type())
}

func TestAnalyzerAcceptsStringConcatButRejectsStringMinus(t *testing.T) {
	ok := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				varDecl(TString, item("s", addOp("+", strLit("a"), strLit("b")))),
				ret(intLit(0)),
			)),
		},
	}
	_, err := analyze(t, ok)
	assert.NoError(t, err)

	bad := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(
				exprStmt(addOp("-", strLit("a"), strLit("b"))),
				ret(intLit(0)),
			)),
		},
	}
	_, err = analyze(t, bad)
	require.Error(t, err)
	assert.IsType(t, UnsupportedOperandError{}, err)
}
