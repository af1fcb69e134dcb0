package latc

// VariableAllocator assigns each local variable a small integer slot,
// reusing a freed slot (from a sibling scope that has already ended)
// before handing out a new one. spec.md §9 calls for enter_scope/
// leave_scope that restore prior bindings directly instead of the
// original's copy.deepcopy-per-scope approach; this does that with a
// free-slot stack, a per-scope list of names to unbind on exit, and a
// per-scope record of the outer bindings those names shadowed.
// Binary-operator and attribute-assignment temporaries use the same
// free pool through NewTemp/FreeTemp, unnamed and freed explicitly by
// the code generator the moment they're no longer needed — mirroring
// variable_allocator.py's new()/free() pair used without a name.
//
// Grounded on variable_allocator.py's free-set/binding-map shape.
type VariableAllocator struct {
	bindings map[string]int
	own      [][]string
	shadowed []map[string]int
	free     []int
	next     int
	high     int
}

func newVariableAllocator() *VariableAllocator {
	return &VariableAllocator{bindings: map[string]int{}}
}

func (a *VariableAllocator) enterScope() {
	a.own = append(a.own, nil)
	a.shadowed = append(a.shadowed, map[string]int{})
}

func (a *VariableAllocator) leaveScope() {
	top := len(a.own) - 1
	for _, name := range a.own[top] {
		a.free = append(a.free, a.bindings[name])
		delete(a.bindings, name)
		if prev, ok := a.shadowed[top][name]; ok {
			a.bindings[name] = prev
		}
	}
	a.own, a.shadowed = a.own[:top], a.shadowed[:top]
}

func (a *VariableAllocator) allocSlot() int {
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		return slot
	}
	slot := a.next
	a.next++
	if a.next > a.high {
		a.high = a.next
	}
	return slot
}

// Bind allocates a slot for name in the current scope and returns it.
func (a *VariableAllocator) Bind(name string) int {
	top := len(a.own) - 1
	if prev, ok := a.bindings[name]; ok {
		a.shadowed[top][name] = prev
	}
	slot := a.allocSlot()
	a.bindings[name] = slot
	a.own[top] = append(a.own[top], name)
	return slot
}

// Offset looks up the slot currently bound to name.
func (a *VariableAllocator) Offset(name string) (int, bool) {
	slot, ok := a.bindings[name]
	return slot, ok
}

// NewTemp allocates an unnamed scratch slot for a binary-operator or
// attribute-assignment temporary, outside of any named scope — the
// caller is responsible for calling FreeTemp once the stashed value
// has been reloaded.
func (a *VariableAllocator) NewTemp() int { return a.allocSlot() }

// FreeTemp returns a scratch slot allocated by NewTemp to the free
// pool.
func (a *VariableAllocator) FreeTemp(slot int) { a.free = append(a.free, slot) }

// HighWaterMark is the largest number of local slots ever
// simultaneously live.
func (a *VariableAllocator) HighWaterMark() int { return a.high }

// slotOffset converts a VariableAllocator slot index into the
// EBP-relative byte offset spec.md §4.7 describes: slot 0 lives at
// [EBP-4], slot 1 at [EBP-8], and so on.
func slotOffset(slot int) int { return -4 * (slot + 1) }

// LocalsCounter computes, for a single function, the maximum number of
// local frame slots ever simultaneously needed (spec.md §4.6): a
// running counter that increments once per declared local, once per
// binary operator, and once per compound attribute assignment, reset
// to a snapshot on block entry and maxed against that snapshot on
// block exit. Unlike VariableAllocator, this counter never frees a
// slot mid-statement — the spec is explicit that "the counter
// overestimates, the allocator recycles within a scope" — so it is a
// safe upper bound for whatever reuse the allocator performs at
// codegen time.
//
// Grounded on locals_counter.py (LatteVisitor) operation for
// operation: visitBlock snapshots/restores `count`, visitDef(Ass),
// visitEAddOp/EMulOp/ERelOp, and visitAttrAss each add 1, and
// visitFunDef adds a final `+1` for every function except a top-level
// one (the implicit `self` slot).
type LocalsCounter struct {
	count int
	max   int
}

// Count computes f.LocalsCount. isMethod reserves the extra slot for
// the implicit `self` receiver that top-level functions don't have.
func (c *LocalsCounter) Count(f *FuncDecl, isMethod bool) {
	c.count = len(f.Params)
	c.max = c.count
	c.countStmt(f.Body)
	extra := 0
	if isMethod {
		extra = 1
	}
	f.LocalsCount = c.max + extra
}

func (c *LocalsCounter) bump() {
	c.count++
	if c.count > c.max {
		c.max = c.count
	}
}

func (c *LocalsCounter) countStmt(s Stmt) {
	switch n := s.(type) {
	case *Block:
		saved := c.count
		for _, stmt := range n.Stmts {
			c.countStmt(stmt)
		}
		c.count = saved

	case *VarDecl:
		for _, item := range n.Items {
			if item.Init != nil {
				c.countExpr(item.Init)
			}
			c.bump()
		}

	case *Assign:
		c.countExpr(n.Value)
	case *AttrAssign:
		c.countExpr(n.Obj)
		c.countExpr(n.Value)
		c.bump()
	case *AttrIncrStmt:
		c.countExpr(n.Obj)
	case *AttrDecrStmt:
		c.countExpr(n.Obj)
	case *Return:
		if n.Value != nil {
			c.countExpr(n.Value)
		}
	case *If:
		c.countExpr(n.Cond)
		c.countStmt(n.Then)
	case *IfElse:
		c.countExpr(n.Cond)
		c.countStmt(n.Then)
		c.countStmt(n.Else)
	case *While:
		c.countExpr(n.Cond)
		c.countStmt(n.Body)
	case *ExprStmt:
		c.countExpr(n.Value)
	case *IncrStmt, *DecrStmt, *ArrayAssign, *ForEach, *Empty:
		// no locals, no expressions to size
	}
}

func (c *LocalsCounter) countExpr(e Expr) {
	switch n := e.(type) {
	case *Paren:
		c.countExpr(n.Inner)
	case *FuncCall:
		for _, arg := range n.Args {
			c.countExpr(arg)
		}
	case *MethodCall:
		c.countExpr(n.Recv)
		for _, arg := range n.Args {
			c.countExpr(arg)
		}
	case *AttrAccess:
		c.countExpr(n.Recv)
	case *UnaryOp:
		c.countExpr(n.Operand)
	case *MulOp:
		c.countExpr(n.Left)
		c.countExpr(n.Right)
		c.bump()
	case *AddOp:
		c.countExpr(n.Left)
		c.countExpr(n.Right)
		c.bump()
	case *RelOp:
		c.countExpr(n.Left)
		c.countExpr(n.Right)
		c.bump()
	case *And:
		c.countExpr(n.Left)
		c.countExpr(n.Right)
	case *Or:
		c.countExpr(n.Left)
		c.countExpr(n.Right)
	}
}

// CountLocals runs LocalsCounter over every function and method in
// prog, annotating each FuncDecl.LocalsCount in place.
func CountLocals(prog *Program) {
	c := &LocalsCounter{}
	for _, f := range prog.Funcs {
		c.Count(f, false)
	}
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			c.Count(m, true)
		}
	}
}
