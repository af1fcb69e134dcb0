package latc

import "fmt"

// ConstEvaluator folds literal subexpressions bottom-up and annotates
// every expression node's ConstVal (spec.md §4.3). It never tracks
// variable bindings — only literals and operators over them are
// foldable — so an Ident, AttrAccess, NewObject, or call expression is
// always CVUnknown itself, even though its children (e.g. call
// arguments) are still folded.
//
// A literal zero divisor reached through `/` or `%` aborts compilation
// immediately with ZeroDivisionError, matching spec.md §4.3 exactly.
//
// Grounded on expression_evaluator.py's recursive fold, restructured
// around the tagged ConstVal type instead of returning either a Python
// value or a sentinel "not constant" marker.
type ConstEvaluator struct{}

// Evaluate walks every function and method body in prog, folding
// constants through every expression tree it contains.
func (c *ConstEvaluator) Evaluate(prog *Program) error {
	for _, f := range prog.Funcs {
		if err := c.evalStmt(f.Body); err != nil {
			return err
		}
	}
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			if err := c.evalStmt(m.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *ConstEvaluator) evalStmt(s Stmt) error {
	switch n := s.(type) {
	case *Block:
		for _, st := range n.Stmts {
			if err := c.evalStmt(st); err != nil {
				return err
			}
		}
	case *VarDecl:
		for _, item := range n.Items {
			if item.Init != nil {
				if _, err := c.evalExpr(item.Init); err != nil {
					return err
				}
			}
		}
	case *Assign:
		_, err := c.evalExpr(n.Value)
		return err
	case *AttrAssign:
		if _, err := c.evalExpr(n.Obj); err != nil {
			return err
		}
		_, err := c.evalExpr(n.Value)
		return err
	case *AttrIncrStmt:
		_, err := c.evalExpr(n.Obj)
		return err
	case *AttrDecrStmt:
		_, err := c.evalExpr(n.Obj)
		return err
	case *Return:
		if n.Value != nil {
			_, err := c.evalExpr(n.Value)
			return err
		}
	case *If:
		if _, err := c.evalExpr(n.Cond); err != nil {
			return err
		}
		return c.evalStmt(n.Then)
	case *IfElse:
		if _, err := c.evalExpr(n.Cond); err != nil {
			return err
		}
		if err := c.evalStmt(n.Then); err != nil {
			return err
		}
		return c.evalStmt(n.Else)
	case *While:
		if _, err := c.evalExpr(n.Cond); err != nil {
			return err
		}
		return c.evalStmt(n.Body)
	case *ExprStmt:
		_, err := c.evalExpr(n.Value)
		return err
	case *IncrStmt, *DecrStmt, *ArrayAssign, *ForEach, *Empty:
		// no expression subtrees to fold
	default:
		panic(fmt.Sprintf("latc: consteval: unhandled statement %T", s))
	}
	return nil
}

func (c *ConstEvaluator) evalExpr(e Expr) (ConstVal, error) {
	switch n := e.(type) {
	case *IntLit:
		cv := intConst(n.Value)
		n.SetConst(cv)
		return cv, nil
	case *BoolLit:
		cv := boolConst(n.Value)
		n.SetConst(cv)
		return cv, nil
	case *StrLit:
		cv := strConst(n.Value)
		n.SetConst(cv)
		return cv, nil
	case *Ident, *SelfExpr, *CastNull, *NewObject, *NewArray, *ArrayAccess:
		n.SetConst(unknownConst)
		return unknownConst, nil
	case *Paren:
		cv, err := c.evalExpr(n.Inner)
		if err != nil {
			return ConstVal{}, err
		}
		n.SetConst(cv)
		return cv, nil
	case *FuncCall:
		for _, arg := range n.Args {
			if _, err := c.evalExpr(arg); err != nil {
				return ConstVal{}, err
			}
		}
		n.SetConst(unknownConst)
		return unknownConst, nil
	case *MethodCall:
		if _, err := c.evalExpr(n.Recv); err != nil {
			return ConstVal{}, err
		}
		for _, arg := range n.Args {
			if _, err := c.evalExpr(arg); err != nil {
				return ConstVal{}, err
			}
		}
		n.SetConst(unknownConst)
		return unknownConst, nil
	case *AttrAccess:
		if _, err := c.evalExpr(n.Recv); err != nil {
			return ConstVal{}, err
		}
		n.SetConst(unknownConst)
		return unknownConst, nil
	case *UnaryOp:
		ov, err := c.evalExpr(n.Operand)
		if err != nil {
			return ConstVal{}, err
		}
		cv := unknownConst
		switch {
		case n.Op == "-" && ov.Kind == CVInt:
			cv = intConst(-ov.I)
		case n.Op == "!" && ov.Kind == CVBool:
			cv = boolConst(!ov.B)
		}
		n.SetConst(cv)
		return cv, nil
	case *MulOp:
		lv, err := c.evalExpr(n.Left)
		if err != nil {
			return ConstVal{}, err
		}
		rv, err := c.evalExpr(n.Right)
		if err != nil {
			return ConstVal{}, err
		}
		cv := unknownConst
		if lv.Kind == CVInt && rv.Kind == CVInt {
			switch n.Op {
			case "*":
				cv = intConst(lv.I * rv.I)
			case "/":
				if rv.I == 0 {
					return ConstVal{}, ZeroDivisionError{CompileError{n.Line, "division by a constant zero"}}
				}
				cv = intConst(lv.I / rv.I)
			case "%":
				if rv.I == 0 {
					return ConstVal{}, ZeroDivisionError{CompileError{n.Line, "modulo by a constant zero"}}
				}
				cv = intConst(lv.I % rv.I)
			}
		}
		n.SetConst(cv)
		return cv, nil
	case *AddOp:
		lv, err := c.evalExpr(n.Left)
		if err != nil {
			return ConstVal{}, err
		}
		rv, err := c.evalExpr(n.Right)
		if err != nil {
			return ConstVal{}, err
		}
		cv := unknownConst
		switch {
		case n.Op == "+" && lv.Kind == CVInt && rv.Kind == CVInt:
			cv = intConst(lv.I + rv.I)
		case n.Op == "-" && lv.Kind == CVInt && rv.Kind == CVInt:
			cv = intConst(lv.I - rv.I)
		case n.Op == "+" && lv.Kind == CVString && rv.Kind == CVString:
			cv = strConst(lv.S + rv.S)
		}
		n.SetConst(cv)
		return cv, nil
	case *RelOp:
		lv, err := c.evalExpr(n.Left)
		if err != nil {
			return ConstVal{}, err
		}
		rv, err := c.evalExpr(n.Right)
		if err != nil {
			return ConstVal{}, err
		}
		n.SetConst(foldRelOp(n.Op, lv, rv))
		return n.Const(), nil
	case *And:
		lv, err := c.evalExpr(n.Left)
		if err != nil {
			return ConstVal{}, err
		}
		rv, err := c.evalExpr(n.Right)
		if err != nil {
			return ConstVal{}, err
		}
		cv := unknownConst
		switch {
		case lv.Kind == CVBool && !lv.B:
			cv = boolConst(false)
		case lv.Kind == CVBool && lv.B && rv.Kind == CVBool:
			cv = boolConst(rv.B)
		}
		n.SetConst(cv)
		return cv, nil
	case *Or:
		lv, err := c.evalExpr(n.Left)
		if err != nil {
			return ConstVal{}, err
		}
		rv, err := c.evalExpr(n.Right)
		if err != nil {
			return ConstVal{}, err
		}
		cv := unknownConst
		switch {
		case lv.Kind == CVBool && lv.B:
			cv = boolConst(true)
		case lv.Kind == CVBool && !lv.B && rv.Kind == CVBool:
			cv = boolConst(rv.B)
		}
		n.SetConst(cv)
		return cv, nil
	default:
		panic(fmt.Sprintf("latc: consteval: unhandled expression %T", e))
	}
}

func foldRelOp(op string, lv, rv ConstVal) ConstVal {
	switch op {
	case "<", "<=", ">", ">=":
		if lv.Kind != CVInt || rv.Kind != CVInt {
			return unknownConst
		}
		switch op {
		case "<":
			return boolConst(lv.I < rv.I)
		case "<=":
			return boolConst(lv.I <= rv.I)
		case ">":
			return boolConst(lv.I > rv.I)
		default:
			return boolConst(lv.I >= rv.I)
		}
	case "==", "!=":
		if lv.Kind != rv.Kind || lv.Kind == CVUnknown {
			return unknownConst
		}
		var eq bool
		switch lv.Kind {
		case CVInt:
			eq = lv.I == rv.I
		case CVBool:
			eq = lv.B == rv.B
		case CVString:
			eq = lv.S == rv.S
		}
		if op == "!=" {
			eq = !eq
		}
		return boolConst(eq)
	default:
		return unknownConst
	}
}
