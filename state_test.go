package latc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLoaderFlattensAttrsWithParentAsPrefix(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{
			class("Animal", "", []*FieldDecl{field(TInt, "age")}, nil),
			class("Dog", "Animal", []*FieldDecl{field(TString, "breed")}, nil),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	st, err := (&StateLoader{}).Load(prog)
	require.NoError(t, err)

	assert.Equal(t, []string{"age"}, st.Attrs["Animal"].Keys())
	assert.Equal(t, []string{"age", "breed"}, st.Attrs["Dog"].Keys())
}

func TestStateLoaderVTableSlotStableUnderOverride(t *testing.T) {
	speak := fn("speak", TVoid, nil, block())
	override := fn("speak", TVoid, nil, block())
	prog := &Program{
		Classes: []*ClassDecl{
			class("Animal", "", nil, []*FuncDecl{speak}),
			class("Dog", "Animal", nil, []*FuncDecl{override}),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	st, err := (&StateLoader{}).Load(prog)
	require.NoError(t, err)

	baseIdx, ok := st.VTables["Animal"].IndexOf("speak")
	require.True(t, ok)
	subIdx, ok := st.VTables["Dog"].IndexOf("speak")
	require.True(t, ok)
	assert.Equal(t, baseIdx, subIdx)

	owner, _ := st.VTables["Dog"].Get("speak")
	assert.Equal(t, "Dog", owner)
}

func TestStateLoaderDetectsCyclicInheritance(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{
			class("A", "B", nil, nil),
			class("B", "A", nil, nil),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, CyclicInheritanceError{}, err)
}

func TestStateLoaderDetectsUndeclaredParent(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{class("Dog", "Animal", nil, nil)},
		Funcs:   []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, UndeclaredClassError{}, err)
}

func TestStateLoaderDetectsDuplicateClass(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{class("Dog", "", nil, nil), class("Dog", "", nil, nil)},
		Funcs:   []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, ClassRedeclarationError{}, err)
}

func TestStateLoaderDetectsDuplicateField(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{class("Dog", "", []*FieldDecl{field(TInt, "age", "age")}, nil)},
		Funcs:   []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, VariableRedeclarationError{}, err)
}

func TestStateLoaderDetectsDuplicateMethod(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{
			class("Dog", "", nil, []*FuncDecl{
				fn("bark", TVoid, nil, block()),
				fn("bark", TVoid, nil, block()),
			}),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, FunctionRedeclarationError{}, err)
}

func TestStateLoaderDetectsDuplicateFunction(t *testing.T) {
	prog := &Program{
		Funcs: []*FuncDecl{
			fn("main", TInt, nil, block(ret(intLit(0)))),
			fn("main", TInt, nil, block(ret(intLit(0)))),
		},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, FunctionRedeclarationError{}, err)
}

func TestStateLoaderDetectsBadOverride(t *testing.T) {
	prog := &Program{
		Classes: []*ClassDecl{
			class("Animal", "", nil, []*FuncDecl{fn("speak", TVoid, nil, block())}),
			class("Dog", "Animal", nil, []*FuncDecl{fn("speak", TInt, nil, block(ret(intLit(0))))}),
		},
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
	_, err := (&StateLoader{}).Load(prog)
	require.Error(t, err)
	assert.IsType(t, BadOverrideError{}, err)
}

func TestStateLoaderDetectsMissingMain(t *testing.T) {
	_, err := (&StateLoader{}).Load(&Program{})
	require.Error(t, err)
	assert.IsType(t, MissingMainFunctionError{}, err)
}

func TestStateLoaderRegistersRuntimeFuncs(t *testing.T) {
	st, err := (&StateLoader{}).Load(mainReturning0())
	require.NoError(t, err)

	sig, ok := st.LookupFunc(FnPrintInt)
	require.True(t, ok)
	assert.Equal(t, GlobalOwner, sig.OwnerClass)
}
