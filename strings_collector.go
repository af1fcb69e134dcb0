package latc

// StringCollector walks the (already pruned) AST and gathers every
// distinct string literal into an ordered table, assigning each one a
// stable NASM label for the .data section. Running after pruning
// means a constant-folded string concatenation is collected once, as
// its single folded literal, rather than once per original piece.
//
// Grounded on string_finder.py; the label-per-literal scheme matches
// assembly_writer.py's str<N> naming.
type StringCollector struct {
	labels *orderedMap[string, string]
	next   int
}

// Collect returns an orderedMap from literal value to its .data label,
// in first-occurrence order.
func (c *StringCollector) Collect(prog *Program) *orderedMap[string, string] {
	c.labels = newOrderedMap[string, string]()
	c.next = 0
	for _, f := range prog.Funcs {
		c.walkStmt(f.Body)
	}
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			c.walkStmt(m.Body)
		}
	}
	return c.labels
}

func (c *StringCollector) label(value string) string {
	if lbl, ok := c.labels.Get(value); ok {
		return lbl
	}
	lbl := labelFor("str", c.next)
	c.next++
	c.labels.Set(value, lbl)
	return lbl
}

func labelFor(prefix string, n int) string {
	const digits = "0123456789"
	if n == 0 {
		return prefix + "0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return prefix + string(buf)
}

func (c *StringCollector) walkStmt(s Stmt) {
	switch n := s.(type) {
	case *Block:
		for _, stmt := range n.Stmts {
			c.walkStmt(stmt)
		}
	case *VarDecl:
		for _, item := range n.Items {
			if item.Init != nil {
				c.walkExpr(item.Init)
			}
		}
	case *Assign:
		c.walkExpr(n.Value)
	case *AttrAssign:
		c.walkExpr(n.Obj)
		c.walkExpr(n.Value)
	case *AttrIncrStmt:
		c.walkExpr(n.Obj)
	case *AttrDecrStmt:
		c.walkExpr(n.Obj)
	case *Return:
		if n.Value != nil {
			c.walkExpr(n.Value)
		}
	case *If:
		c.walkExpr(n.Cond)
		c.walkStmt(n.Then)
	case *IfElse:
		c.walkExpr(n.Cond)
		c.walkStmt(n.Then)
		c.walkStmt(n.Else)
	case *While:
		c.walkExpr(n.Cond)
		c.walkStmt(n.Body)
	case *ExprStmt:
		c.walkExpr(n.Value)
	}
}

func (c *StringCollector) walkExpr(e Expr) {
	switch n := e.(type) {
	case *StrLit:
		c.label(n.Value)
	case *Paren:
		c.walkExpr(n.Inner)
	case *FuncCall:
		for _, arg := range n.Args {
			c.walkExpr(arg)
		}
	case *MethodCall:
		c.walkExpr(n.Recv)
		for _, arg := range n.Args {
			c.walkExpr(arg)
		}
	case *AttrAccess:
		c.walkExpr(n.Recv)
	case *UnaryOp:
		c.walkExpr(n.Operand)
	case *MulOp:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	case *AddOp:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	case *RelOp:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	case *And:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	case *Or:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	}
}
