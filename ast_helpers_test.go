package latc

// Small AST construction helpers shared across this package's tests.
// There is no lexer/parser in this repository (spec's Non-goals), so
// every test builds its tree directly through these and the node
// constructors in ast.go, the same way the teacher's own
// *_parser_test.go files build grammar ASTs by hand.

func ident(name string) *Ident        { return &Ident{exprBase{Line: 1}, name} }
func selfExpr() *SelfExpr             { return &SelfExpr{exprBase{Line: 1}} }
func intLit(v int) *IntLit            { return &IntLit{exprBase{Line: 1}, v} }
func boolLit(v bool) *BoolLit         { return &BoolLit{exprBase{Line: 1}, v} }
func strLit(v string) *StrLit         { return &StrLit{exprBase{Line: 1}, v} }
func newObj(class string) *NewObject  { return &NewObject{exprBase{Line: 1}, class} }
func castNull(class string) *CastNull { return &CastNull{exprBase{Line: 1}, class} }

func paren(e Expr) *Paren { return &Paren{exprBase{Line: 1}, e} }

func mulOp(op string, l, r Expr) *MulOp { return &MulOp{exprBase{Line: 1}, op, l, r} }
func addOp(op string, l, r Expr) *AddOp { return &AddOp{exprBase{Line: 1}, op, l, r} }
func relOp(op string, l, r Expr) *RelOp { return &RelOp{exprBase{Line: 1}, op, l, r} }
func andExpr(l, r Expr) *And            { return &And{exprBase{Line: 1}, l, r} }
func orExpr(l, r Expr) *Or              { return &Or{exprBase{Line: 1}, l, r} }
func unaryOp(op string, e Expr) *UnaryOp {
	return &UnaryOp{exprBase{Line: 1}, op, e}
}

func funcCall(name string, args ...Expr) *FuncCall {
	return &FuncCall{exprBase{Line: 1}, name, args}
}
func methodCall(recv Expr, name string, args ...Expr) *MethodCall {
	return &MethodCall{exprBase{Line: 1}, recv, name, args}
}
func attrAccess(recv Expr, field string) *AttrAccess {
	return &AttrAccess{exprBase{Line: 1}, recv, field}
}

func block(stmts ...Stmt) *Block { return &Block{stmtBase{Line: 1}, stmts} }

func varDecl(typ string, items ...VarDeclItem) *VarDecl {
	return &VarDecl{stmtBase{Line: 1}, typ, items}
}
func item(name string, init Expr) VarDeclItem {
	return VarDeclItem{Name: name, Init: init, Line: 1}
}

func assign(name string, value Expr) *Assign   { return &Assign{stmtBase{Line: 1}, name, value} }
func incr(name string) *IncrStmt               { return &IncrStmt{stmtBase{Line: 1}, name} }
func decr(name string) *DecrStmt               { return &DecrStmt{stmtBase{Line: 1}, name} }
func attrAssign(obj Expr, field string, value Expr) *AttrAssign {
	return &AttrAssign{stmtBase{Line: 1}, obj, field, value}
}
func ret(value Expr) *Return { return &Return{stmtBase{Line: 1}, value} }
func ifStmt(cond Expr, then Stmt) *If { return &If{stmtBase{Line: 1}, cond, then} }
func ifElse(cond Expr, then, els Stmt) *IfElse {
	return &IfElse{stmtBase{Line: 1}, cond, then, els}
}
func whileStmt(cond Expr, body Stmt) *While { return &While{stmtBase{Line: 1}, cond, body} }
func exprStmt(e Expr) *ExprStmt             { return &ExprStmt{stmtBase{Line: 1}, e} }

func fn(name, retType string, params []Param, body *Block) *FuncDecl {
	return &FuncDecl{Name: name, RetType: retType, Params: params, Body: body}
}

func class(name, parent string, fields []*FieldDecl, methods []*FuncDecl) *ClassDecl {
	return &ClassDecl{Name: name, Parent: parent, Fields: fields, Methods: methods}
}

func field(typ string, names ...string) *FieldDecl {
	return &FieldDecl{Type: typ, Names: names}
}

// mainReturning0 is the smallest valid program: `int main(){ return 0; }`.
func mainReturning0() *Program {
	return &Program{
		Funcs: []*FuncDecl{fn("main", TInt, nil, block(ret(intLit(0))))},
	}
}
