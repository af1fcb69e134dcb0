package latc

import "fmt"

// MethodSig is one entry in a class's (or the global scope's) function
// table: name, declared return type and parameter list, plus enough
// provenance (OwnerClass, Line) to report errors against it later.
type MethodSig struct {
	Name       string
	RetType    string
	Params     []Param
	OwnerClass string // GlobalOwner for a top-level function
	Line       int
}

// SymbolTable is the global symbol model spec.md §3 describes: class
// hierarchy, flattened (inherited) attribute layout per class, each
// class's own method declarations, the per-class virtual dispatch
// table, and the global function table (user functions plus the fixed
// runtime library). Every ordered collection here uses orderedMap so
// that "first introduction wins the slot" is an explicit, testable
// property instead of an accident of map iteration.
type SymbolTable struct {
	Classes    map[string]string // class name -> parent name (GlobalOwner if none)
	ClassDecls map[string]*ClassDecl

	Attrs      map[string]*orderedMap[string, string]     // class -> flattened field name -> type
	OwnMethods map[string]*orderedMap[string, *MethodSig]  // class -> its own declared methods
	VTables    map[string]*orderedMap[string, string]      // class -> method name -> defining class

	Funcs *orderedMap[string, *MethodSig] // global functions, runtime builtins included
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		Classes:    make(map[string]string),
		ClassDecls: make(map[string]*ClassDecl),
		Attrs:      make(map[string]*orderedMap[string, string]),
		OwnMethods: make(map[string]*orderedMap[string, *MethodSig]),
		VTables:    make(map[string]*orderedMap[string, string]),
		Funcs:      newOrderedMap[string, *MethodSig](),
	}
}

// LookupAttr returns the flattened type of a field on class, following
// inheritance.
func (st *SymbolTable) LookupAttr(class, name string) (string, bool) {
	attrs, ok := st.Attrs[class]
	if !ok {
		return "", false
	}
	return attrs.Get(name)
}

// LookupMethod resolves name on class to the MethodSig of whichever
// class currently provides the implementation (the vtable's defining
// class for that slot), which is the most-derived override.
func (st *SymbolTable) LookupMethod(class, name string) (*MethodSig, bool) {
	vt, ok := st.VTables[class]
	if !ok {
		return nil, false
	}
	owner, ok := vt.Get(name)
	if !ok {
		return nil, false
	}
	return st.OwnMethods[owner].Get(name)
}

// LookupFunc resolves a global (non-method) function, including the
// runtime library.
func (st *SymbolTable) LookupFunc(name string) (*MethodSig, bool) {
	return st.Funcs.Get(name)
}

// findInherited walks class's parent chain looking for a pre-existing
// declaration of name, used to validate method overrides.
func (st *SymbolTable) findInherited(class, name string) (*MethodSig, bool) {
	for cls := st.Classes[class]; cls != ""; cls = st.Classes[cls] {
		if om, ok := st.OwnMethods[cls]; ok {
			if sig, ok := om.Get(name); ok {
				return sig, true
			}
		}
	}
	return nil, false
}

var runtimeFuncs = []*MethodSig{
	{Name: FnPrintInt, RetType: TVoid, Params: []Param{{Name: "n", Type: TInt}}, OwnerClass: GlobalOwner},
	{Name: FnPrintString, RetType: TVoid, Params: []Param{{Name: "s", Type: TString}}, OwnerClass: GlobalOwner},
	{Name: FnReadInt, RetType: TInt, OwnerClass: GlobalOwner},
	{Name: FnReadString, RetType: TString, OwnerClass: GlobalOwner},
	{Name: FnError, RetType: TVoid, OwnerClass: GlobalOwner},
}

// StateLoader builds a SymbolTable out of a Program, validating the
// structural properties that later passes depend on: no duplicate
// declarations, no unknown parent classes, no inheritance cycles, and
// overrides with compatible signatures. It leaves statement- and
// expression-level type checking to the analyzer (spec.md §4.2).
//
// Grounded on latte_state.py's LatteStateLoader, which performs this
// same two-phase "register everything, then flatten and validate the
// hierarchy" walk before the error checker ever runs.
type StateLoader struct {
	built map[string]bool
}

// Load builds and validates the SymbolTable for prog.
func (l *StateLoader) Load(prog *Program) (*SymbolTable, error) {
	st := newSymbolTable()
	for _, f := range runtimeFuncs {
		st.Funcs.Set(f.Name, f)
	}

	if err := l.registerClasses(st, prog); err != nil {
		return nil, err
	}
	if err := l.checkParents(st); err != nil {
		return nil, err
	}
	if err := l.checkCycles(st); err != nil {
		return nil, err
	}

	l.built = make(map[string]bool)
	for name := range st.Classes {
		if err := l.buildClass(st, name); err != nil {
			return nil, err
		}
	}

	if err := l.registerFuncs(st, prog); err != nil {
		return nil, err
	}
	if err := l.checkMain(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (l *StateLoader) registerClasses(st *SymbolTable, prog *Program) error {
	for _, c := range prog.Classes {
		if _, exists := st.Classes[c.Name]; exists {
			return ClassRedeclarationError{CompileError{c.Line, fmt.Sprintf("class %q already declared", c.Name)}}
		}
		st.Classes[c.Name] = c.Parent
		st.ClassDecls[c.Name] = c
	}
	return nil
}

func (l *StateLoader) checkParents(st *SymbolTable) error {
	for name, parent := range st.Classes {
		if parent == "" {
			continue
		}
		if _, ok := st.Classes[parent]; !ok {
			decl := st.ClassDecls[name]
			return UndeclaredClassError{CompileError{decl.Line, fmt.Sprintf("class %q extends undeclared class %q", name, parent)}}
		}
	}
	return nil
}

func (l *StateLoader) checkCycles(st *SymbolTable) error {
	for name := range st.Classes {
		seen := map[string]bool{name: true}
		for cls := st.Classes[name]; cls != ""; cls = st.Classes[cls] {
			if seen[cls] {
				decl := st.ClassDecls[name]
				return CyclicInheritanceError{CompileError{decl.Line, fmt.Sprintf("class %q participates in a cyclic inheritance chain", name)}}
			}
			seen[cls] = true
		}
	}
	return nil
}

// buildClass flattens attrs, collects own methods and builds the
// vtable for name, recursing into its parent first if not already
// built. checkCycles having already run guarantees termination.
func (l *StateLoader) buildClass(st *SymbolTable, name string) error {
	if l.built[name] {
		return nil
	}
	decl := st.ClassDecls[name]
	parent := st.Classes[name]
	if parent != "" {
		if err := l.buildClass(st, parent); err != nil {
			return err
		}
	}

	attrs := newOrderedMap[string, string]()
	if parent != "" {
		attrs = st.Attrs[parent].Clone()
	}
	for _, field := range decl.Fields {
		for _, fname := range field.Names {
			if attrs.Has(fname) {
				return VariableRedeclarationError{CompileError{field.Line, fmt.Sprintf("attribute %q already declared", fname)}}
			}
			attrs.Set(fname, field.Type)
		}
	}
	st.Attrs[name] = attrs

	own := newOrderedMap[string, *MethodSig]()
	for _, m := range decl.Methods {
		if own.Has(m.Name) {
			return FunctionRedeclarationError{CompileError{m.Line, fmt.Sprintf("method %q already declared in class %q", m.Name, name)}}
		}
		m.OwnerClass = name
		sig := &MethodSig{Name: m.Name, RetType: m.RetType, Params: m.Params, OwnerClass: name, Line: m.Line}
		own.Set(m.Name, sig)

		if parentSig, ok := st.findInherited(name, m.Name); ok {
			if err := checkOverride(st, parentSig, sig); err != nil {
				return err
			}
		}
	}
	st.OwnMethods[name] = own

	vtable := newOrderedMap[string, string]()
	if parent != "" {
		vtable = st.VTables[parent].Clone()
	}
	own.Each(func(mname string, _ *MethodSig) {
		vtable.Set(mname, name)
	})
	st.VTables[name] = vtable

	l.built[name] = true
	return nil
}

// checkOverride enforces spec.md §3's override rule: an override must
// match both the return type and the full parameter type list exactly
// — no covariance, unlike assignment/argument-passing subtyping.
func checkOverride(st *SymbolTable, base, override *MethodSig) error {
	if len(base.Params) != len(override.Params) {
		return BadOverrideError{CompileError{override.Line, fmt.Sprintf("method %q overrides %q with a different number of parameters", override.Name, base.OwnerClass)}}
	}
	for i := range base.Params {
		if base.Params[i].Type != override.Params[i].Type {
			return BadOverrideError{CompileError{override.Line, fmt.Sprintf("method %q overrides %q with an incompatible parameter type", override.Name, base.OwnerClass)}}
		}
	}
	if base.RetType != override.RetType {
		return BadOverrideError{CompileError{override.Line, fmt.Sprintf("method %q overrides %q with an incompatible return type", override.Name, base.OwnerClass)}}
	}
	return nil
}

func (l *StateLoader) registerFuncs(st *SymbolTable, prog *Program) error {
	for _, f := range prog.Funcs {
		if st.Funcs.Has(f.Name) {
			return FunctionRedeclarationError{CompileError{f.Line, fmt.Sprintf("function %q already declared", f.Name)}}
		}
		f.OwnerClass = GlobalOwner
		st.Funcs.Set(f.Name, &MethodSig{Name: f.Name, RetType: f.RetType, Params: f.Params, OwnerClass: GlobalOwner, Line: f.Line})
	}
	return nil
}

func (l *StateLoader) checkMain(st *SymbolTable) error {
	main, ok := st.Funcs.Get("main")
	if !ok || main.OwnerClass != GlobalOwner || len(main.Params) != 0 || main.RetType != TInt {
		return MissingMainFunctionError{CompileError{0, "program must declare `int main()`"}}
	}
	return nil
}
