package latc

import "fmt"

// Analyzer is the semantic pass (spec.md §4.2): given a SymbolTable
// already built and validated by StateLoader, it walks every function
// and method body, resolves every identifier against a scope stack,
// and annotates each expression node's StaticType. It reports the
// first violation it finds from the closed error taxonomy in errors.go.
//
// Grounded on the teacher's type-checking passes in query_analysis.go
// (one recursive "check this node, recurse into children" walk per
// node shape) generalized from query results to this AST's statement
// and expression kinds.
type Analyzer struct {
	st      *SymbolTable
	scopes  []map[string]string
	self    string // current class name, "" outside any method
	retType string // current function's declared return type
}

func (a *Analyzer) enterScope() { a.scopes = append(a.scopes, map[string]string{}) }
func (a *Analyzer) leaveScope() { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *Analyzer) declare(name, typ string, line int) error {
	top := a.scopes[len(a.scopes)-1]
	if _, ok := top[name]; ok {
		return VariableRedeclarationError{CompileError{line, fmt.Sprintf("variable %q already declared in this scope", name)}}
	}
	top[name] = typ
	return nil
}

func (a *Analyzer) lookup(name string) (string, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// varType resolves name the way §4.2's "bare name" rules require: first
// as a local/parameter in the current scope stack, then — inside a
// method — as an inherited field of the current class, matching
// error_checker.py's _var_type fallback chain (locals, then globals,
// then attrs[current_object]).
func (a *Analyzer) varType(name string) (string, bool) {
	if t, ok := a.lookup(name); ok {
		return t, true
	}
	if a.self == "" {
		return "", false
	}
	return a.st.LookupAttr(a.self, name)
}

func (a *Analyzer) isKnownType(t string) bool {
	if isGenericType(t) || t == TVoid {
		return true
	}
	_, ok := a.st.Classes[t]
	return ok
}

// Analyze type-checks every function and method body in prog.
func (a *Analyzer) Analyze(st *SymbolTable, prog *Program) error {
	a.st = st
	for _, f := range prog.Funcs {
		if err := a.checkFunc(f, ""); err != nil {
			return err
		}
	}
	for _, c := range prog.Classes {
		for _, m := range c.Methods {
			if err := a.checkFunc(m, c.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) checkFunc(f *FuncDecl, self string) error {
	if !a.isKnownType(f.RetType) {
		return UnknownReturnTypeError{CompileError{f.Line, fmt.Sprintf("unknown return type %q", f.RetType)}}
	}
	a.self = self
	a.retType = f.RetType
	a.scopes = nil
	a.enterScope()
	defer a.leaveScope()

	for _, p := range f.Params {
		if !a.isKnownType(p.Type) {
			return UnknownArgumentTypeError{CompileError{f.Line, fmt.Sprintf("unknown parameter type %q", p.Type)}}
		}
		if err := a.declare(p.Name, p.Type, f.Line); err != nil {
			return err
		}
	}
	return a.checkStmt(f.Body)
}

func (a *Analyzer) checkStmt(s Stmt) error {
	switch n := s.(type) {
	case *Block:
		a.enterScope()
		defer a.leaveScope()
		for _, st := range n.Stmts {
			if err := a.checkStmt(st); err != nil {
				return err
			}
		}
		return nil

	case *VarDecl:
		if !a.isKnownType(n.Type) {
			return UnknownTypeError{CompileError{n.Line, fmt.Sprintf("unknown type %q", n.Type)}}
		}
		for _, item := range n.Items {
			if item.Init != nil {
				vt, err := a.checkExpr(item.Init)
				if err != nil {
					return err
				}
				if !IsSubtype(a.st.Classes, vt, n.Type) {
					return TypeMismatchError{CompileError{item.Line, fmt.Sprintf("cannot initialize %q of type %q with value of type %q", item.Name, n.Type, vt)}}
				}
			}
			if err := a.declare(item.Name, n.Type, item.Line); err != nil {
				return err
			}
		}
		return nil

	case *Assign:
		vt, ok := a.varType(n.Name)
		if !ok {
			return UndeclaredVariableError{CompileError{n.Line, fmt.Sprintf("undeclared variable %q", n.Name)}}
		}
		et, err := a.checkExpr(n.Value)
		if err != nil {
			return err
		}
		if !IsSubtype(a.st.Classes, et, vt) {
			return TypeMismatchError{CompileError{n.Line, fmt.Sprintf("cannot assign value of type %q to variable %q of type %q", et, n.Name, vt)}}
		}
		return nil

	case *AttrAssign:
		ct, err := a.checkExpr(n.Obj)
		if err != nil {
			return err
		}
		ft, ok := a.st.LookupAttr(ct, n.Field)
		if !ok {
			return MissingAttributeError{CompileError{n.Line, fmt.Sprintf("class %q has no attribute %q", ct, n.Field)}}
		}
		et, err := a.checkExpr(n.Value)
		if err != nil {
			return err
		}
		if !IsSubtype(a.st.Classes, et, ft) {
			return TypeMismatchError{CompileError{n.Line, fmt.Sprintf("cannot assign value of type %q to attribute %q of type %q", et, n.Field, ft)}}
		}
		return nil

	case *ArrayAssign:
		return ArraysNotImplementedError{CompileError{n.Line, "array assignment is not implemented"}}

	case *ForEach:
		return ArraysNotImplementedError{CompileError{n.Line, "foreach is not implemented"}}

	case *IncrStmt:
		vt, ok := a.varType(n.Name)
		if !ok {
			return UndeclaredVariableError{CompileError{n.Line, fmt.Sprintf("undeclared variable %q", n.Name)}}
		}
		if vt != TInt {
			return UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("cannot increment variable of type %q", vt)}}
		}
		return nil

	case *DecrStmt:
		vt, ok := a.varType(n.Name)
		if !ok {
			return UndeclaredVariableError{CompileError{n.Line, fmt.Sprintf("undeclared variable %q", n.Name)}}
		}
		if vt != TInt {
			return UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("cannot decrement variable of type %q", vt)}}
		}
		return nil

	case *AttrIncrStmt:
		ct, err := a.checkExpr(n.Obj)
		if err != nil {
			return err
		}
		ft, ok := a.st.LookupAttr(ct, n.Field)
		if !ok {
			return MissingAttributeError{CompileError{n.Line, fmt.Sprintf("class %q has no attribute %q", ct, n.Field)}}
		}
		if ft != TInt {
			return UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("cannot increment attribute of type %q", ft)}}
		}
		return nil

	case *AttrDecrStmt:
		ct, err := a.checkExpr(n.Obj)
		if err != nil {
			return err
		}
		ft, ok := a.st.LookupAttr(ct, n.Field)
		if !ok {
			return MissingAttributeError{CompileError{n.Line, fmt.Sprintf("class %q has no attribute %q", ct, n.Field)}}
		}
		if ft != TInt {
			return UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("cannot decrement attribute of type %q", ft)}}
		}
		return nil

	case *Return:
		if n.Value == nil {
			if a.retType != TVoid {
				return InvalidReturnTypeError{CompileError{n.Line, fmt.Sprintf("function must return a value of type %q", a.retType)}}
			}
			return nil
		}
		vt, err := a.checkExpr(n.Value)
		if err != nil {
			return err
		}
		if !IsSubtype(a.st.Classes, vt, a.retType) {
			return InvalidReturnTypeError{CompileError{n.Line, fmt.Sprintf("cannot return value of type %q from function declared to return %q", vt, a.retType)}}
		}
		return nil

	case *If:
		ct, err := a.checkExpr(n.Cond)
		if err != nil {
			return err
		}
		if ct != TBool {
			return BadConditionError{CompileError{n.Line, "condition must be boolean"}}
		}
		return a.checkStmt(n.Then)

	case *IfElse:
		ct, err := a.checkExpr(n.Cond)
		if err != nil {
			return err
		}
		if ct != TBool {
			return BadConditionError{CompileError{n.Line, "condition must be boolean"}}
		}
		if err := a.checkStmt(n.Then); err != nil {
			return err
		}
		return a.checkStmt(n.Else)

	case *While:
		ct, err := a.checkExpr(n.Cond)
		if err != nil {
			return err
		}
		if ct != TBool {
			return BadConditionError{CompileError{n.Line, "condition must be boolean"}}
		}
		return a.checkStmt(n.Body)

	case *ExprStmt:
		_, err := a.checkExpr(n.Value)
		return err

	case *Empty:
		return nil

	default:
		panic(fmt.Sprintf("latc: analyzer: unhandled statement %T", s))
	}
}

func (a *Analyzer) checkArgs(line int, callee string, params []Param, args []Expr) error {
	if len(params) != len(args) {
		return ArgumentMismatchError{CompileError{line, fmt.Sprintf("%q expects %d argument(s), got %d", callee, len(params), len(args))}}
	}
	for i, arg := range args {
		at, err := a.checkExpr(arg)
		if err != nil {
			return err
		}
		if !IsSubtype(a.st.Classes, at, params[i].Type) {
			return ArgumentMismatchError{CompileError{line, fmt.Sprintf("argument %d to %q: expected %q, got %q", i+1, callee, params[i].Type, at)}}
		}
	}
	return nil
}

func (a *Analyzer) checkExpr(e Expr) (string, error) {
	switch n := e.(type) {
	case *Ident:
		t, ok := a.varType(n.Name)
		if !ok {
			return "", UndeclaredVariableError{CompileError{n.Line, fmt.Sprintf("undeclared variable %q", n.Name)}}
		}
		n.SetType(t)
		return t, nil

	case *SelfExpr:
		if a.self == "" {
			return "", InvalidReferenceError{CompileError{n.Line, "`self` is not valid outside a method"}}
		}
		n.SetType(a.self)
		return a.self, nil

	case *IntLit:
		n.SetType(TInt)
		return TInt, nil

	case *BoolLit:
		n.SetType(TBool)
		return TBool, nil

	case *StrLit:
		n.SetType(TString)
		return TString, nil

	case *CastNull:
		if _, ok := a.st.Classes[n.ClassName]; !ok {
			return "", UnknownTypeError{CompileError{n.Line, fmt.Sprintf("unknown class %q", n.ClassName)}}
		}
		n.SetType(n.ClassName)
		return n.ClassName, nil

	case *NewObject:
		if _, ok := a.st.Classes[n.ClassName]; !ok {
			return "", UnknownTypeError{CompileError{n.Line, fmt.Sprintf("unknown class %q", n.ClassName)}}
		}
		n.SetType(n.ClassName)
		return n.ClassName, nil

	case *NewArray:
		return "", ArraysNotImplementedError{CompileError{n.Line, "array creation is not implemented"}}

	case *ArrayAccess:
		return "", ArraysNotImplementedError{CompileError{n.Line, "array access is not implemented"}}

	case *Paren:
		t, err := a.checkExpr(n.Inner)
		if err != nil {
			return "", err
		}
		n.SetType(t)
		return t, nil

	case *FuncCall:
		// An implicit-self call inside a method prefers its own class's
		// vtable over the global function table: spec.md §9's open
		// question on a same-named method/top-level-function collision
		// is resolved in the method's favor, matching codegen.go's
		// vtable-first dispatch for *FuncCall.
		sig, ok := a.st.LookupMethod(a.self, n.Name)
		if !ok {
			sig, ok = a.st.LookupFunc(n.Name)
		}
		if !ok {
			return "", UndeclaredFunctionError{CompileError{n.Line, fmt.Sprintf("undeclared function %q", n.Name)}}
		}
		if err := a.checkArgs(n.Line, n.Name, sig.Params, n.Args); err != nil {
			return "", err
		}
		n.SetType(sig.RetType)
		return sig.RetType, nil

	case *MethodCall:
		ct, err := a.checkExpr(n.Recv)
		if err != nil {
			return "", err
		}
		sig, ok := a.st.LookupMethod(ct, n.Name)
		if !ok {
			return "", UndeclaredFunctionError{CompileError{n.Line, fmt.Sprintf("class %q has no method %q", ct, n.Name)}}
		}
		if err := a.checkArgs(n.Line, n.Name, sig.Params, n.Args); err != nil {
			return "", err
		}
		n.SetType(sig.RetType)
		return sig.RetType, nil

	case *AttrAccess:
		ct, err := a.checkExpr(n.Recv)
		if err != nil {
			return "", err
		}
		ft, ok := a.st.LookupAttr(ct, n.Field)
		if !ok {
			return "", MissingAttributeError{CompileError{n.Line, fmt.Sprintf("class %q has no attribute %q", ct, n.Field)}}
		}
		n.SetType(ft)
		return ft, nil

	case *UnaryOp:
		ot, err := a.checkExpr(n.Operand)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case "-":
			if ot != TInt {
				return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("unary `-` does not apply to %q", ot)}}
			}
			n.SetType(TInt)
			return TInt, nil
		case "!":
			if ot != TBool {
				return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("unary `!` does not apply to %q", ot)}}
			}
			n.SetType(TBool)
			return TBool, nil
		default:
			panic("latc: analyzer: unknown unary operator " + n.Op)
		}

	case *MulOp:
		lt, err := a.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		rt, err := a.checkExpr(n.Right)
		if err != nil {
			return "", err
		}
		if lt != TInt || rt != TInt {
			return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("operator %q requires int operands, got %q and %q", n.Op, lt, rt)}}
		}
		n.SetType(TInt)
		return TInt, nil

	case *AddOp:
		lt, err := a.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		rt, err := a.checkExpr(n.Right)
		if err != nil {
			return "", err
		}
		if n.Op == "+" && lt == TString && rt == TString {
			n.SetType(TString)
			return TString, nil
		}
		if lt != TInt || rt != TInt {
			return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("operator %q requires int (or string, for `+`) operands, got %q and %q", n.Op, lt, rt)}}
		}
		n.SetType(TInt)
		return TInt, nil

	case *RelOp:
		lt, err := a.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		rt, err := a.checkExpr(n.Right)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case "==", "!=":
			if lt != rt && !IsSubtype(a.st.Classes, lt, rt) && !IsSubtype(a.st.Classes, rt, lt) {
				return "", TypeMismatchError{CompileError{n.Line, fmt.Sprintf("cannot compare %q with %q", lt, rt)}}
			}
		default:
			if lt != TInt || rt != TInt {
				return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("operator %q requires int operands, got %q and %q", n.Op, lt, rt)}}
			}
		}
		n.SetType(TBool)
		return TBool, nil

	case *And:
		lt, err := a.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		rt, err := a.checkExpr(n.Right)
		if err != nil {
			return "", err
		}
		if lt != TBool || rt != TBool {
			return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("`&&` requires boolean operands, got %q and %q", lt, rt)}}
		}
		n.SetType(TBool)
		return TBool, nil

	case *Or:
		lt, err := a.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		rt, err := a.checkExpr(n.Right)
		if err != nil {
			return "", err
		}
		if lt != TBool || rt != TBool {
			return "", UnsupportedOperandError{CompileError{n.Line, fmt.Sprintf("`||` requires boolean operands, got %q and %q", lt, rt)}}
		}
		n.SetType(TBool)
		return TBool, nil

	default:
		panic(fmt.Sprintf("latc: analyzer: unhandled expression %T", e))
	}
}
