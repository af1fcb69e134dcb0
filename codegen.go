package latc

import (
	"fmt"
	"strconv"
)

// runtimeExterns lists the fixed runtime library spec.md §6 requires
// every compiled program to declare, in the order assembly_writer.py's
// gen_text_intro emits them.
var runtimeExterns = []string{
	"printInt", "printString", "readInt", "readString", "error",
	"_concat", "_str_equal", "_malloc",
}

// CodeGenerator is the single-pass x86 NASM emitter of spec.md §4.7: it
// walks the (already analyzed, folded, pruned) AST once per function,
// threading a fresh VariableAllocator and return label through each,
// and lets asmWriter accumulate the instruction stream plus the string
// and vtable data it will need at the end.
//
// Grounded on assembly_generator.py (AssemblyGenerator) operation for
// operation — prologue/epilogue shape, per-statement/expression visit
// methods, visit_vcall — restructured as a Go type-switch dispatcher
// per ast.go's "tagged AST" convention instead of a 40-method visitor
// interface. Two bug fixes are applied per spec.md §9 and are NOT
// replicated from the source: modulo reloads the remainder from EDX
// (not ECX), and an explicit method call evaluates the receiver last
// and pushes it as an explicit first argument before vtable dispatch.
type CodeGenerator struct {
	st     *SymbolTable
	w      *asmWriter
	labels *orderedMap[string, string] // string literal -> .data label

	va           *VariableAllocator
	retLabel     string
	currentClass string // "" outside any method

	classLabels      map[string]string
	emptyStringLabel string
	emptyStringUsed  bool
}

// GenerateProgram emits NASM text for prog, given the SymbolTable built
// by StateLoader and the string-literal table built by StringCollector
// (spec.md §2 steps 7-8). If cfg enables peephole optimization, the
// instruction stream is cleaned up before rendering (spec.md §4.9).
func GenerateProgram(st *SymbolTable, prog *Program, strLabels *orderedMap[string, string], cfg *CompilerConfig) string {
	g := &CodeGenerator{
		st:          st,
		w:           newAsmWriter(),
		labels:      strLabels,
		classLabels: map[string]string{},
	}
	g.emptyStringLabel = g.w.Fresh("str_empty")

	strLabels.Each(func(value, label string) {
		g.w.DataStr(label, value)
	})
	for _, c := range prog.Classes {
		g.classLabels[c.Name] = c.Name + "__vtable"
	}

	for _, f := range prog.Funcs {
		g.genFunc(f, "")
	}
	for _, c := range prog.Classes {
		for _, m := range c.Methods {
			g.genFunc(m, c.Name)
		}
	}

	for _, c := range prog.Classes {
		vt := st.VTables[c.Name]
		if vt.Len() == 0 {
			continue
		}
		slots := make([]string, 0, vt.Len())
		vt.Each(func(method, definer string) {
			slots = append(slots, definer+"__"+method)
		})
		g.w.DataVTable(g.classLabels[c.Name], slots)
	}
	if g.emptyStringUsed {
		g.w.DataStr(g.emptyStringLabel, "")
	}

	if cfg == nil || cfg.GetBool("codegen.peephole") {
		g.w.SetText((&Peephole{}).Optimize(g.w.Text()))
	}
	return g.w.Render(runtimeExterns)
}

func ebp(offset int) string { return fmt.Sprintf("[EBP%+d]", offset) }

func isRegisterOperand(s string) bool {
	switch s {
	case "EAX", "ECX", "EDX", "AL":
		return true
	}
	return false
}

// storeMem emits `mov [addr], src`, qualifying the memory operand with
// `dword` when src isn't itself a register (an immediate or a data
// label is otherwise size-ambiguous to NASM).
func (g *CodeGenerator) storeMem(addr, src, comment string) {
	dst := addr
	if !isRegisterOperand(src) {
		dst = "dword " + addr
	}
	g.w.OpC(comment, "mov", dst, src)
}

func (g *CodeGenerator) funcLabel(f *FuncDecl, ownerClass string) string {
	if ownerClass == "" {
		return f.Name
	}
	return ownerClass + "__" + f.Name
}

func (g *CodeGenerator) genFunc(f *FuncDecl, ownerClass string) {
	isMethod := ownerClass != ""
	g.currentClass = ownerClass
	g.va = newVariableAllocator()
	g.va.enterScope()
	g.retLabel = g.w.Fresh("ret")

	g.w.EmitLabel(g.funcLabel(f, ownerClass))
	g.w.Op("push", "EBP")
	g.w.Op("mov", "EBP", "ESP")
	g.w.Op("sub", "ESP", strconv.Itoa(4*f.LocalsCount))

	callerOff := 8
	if isMethod {
		slot := g.va.Bind("self")
		g.w.OpC("copy self", "mov", "EAX", ebp(callerOff))
		g.storeMem(ebp(slotOffset(slot)), "EAX", "copy self")
		callerOff += 4
	}
	for i, p := range f.Params {
		slot := g.va.Bind(p.Name)
		g.w.OpC("copy arg "+p.Name, "mov", "EAX", ebp(callerOff+4*i))
		g.storeMem(ebp(slotOffset(slot)), "EAX", "copy arg "+p.Name)
	}

	g.genStmt(f.Body)

	g.w.EmitLabel(g.retLabel)
	g.w.Op("leave")
	g.w.Op("ret")
	g.va.leaveScope()
}

func (g *CodeGenerator) selfOffset() int {
	slot, _ := g.va.Offset("self")
	return slotOffset(slot)
}

func (g *CodeGenerator) attrIndex(class, field string) int {
	idx, _ := g.st.Attrs[class].IndexOf(field)
	return idx
}

func (g *CodeGenerator) genStmt(s Stmt) {
	switch n := s.(type) {
	case *Block:
		g.va.enterScope()
		for _, stmt := range n.Stmts {
			g.genStmt(stmt)
		}
		g.va.leaveScope()

	case *VarDecl:
		for _, item := range n.Items {
			if item.Init != nil {
				g.genExpr(item.Init)
				slot := g.va.Bind(item.Name)
				g.storeMem(ebp(slotOffset(slot)), "EAX", fmt.Sprintf("init %s", item.Name))
				continue
			}
			slot := g.va.Bind(item.Name)
			switch n.Type {
			case TInt, TBool:
				g.storeMem(ebp(slotOffset(slot)), "0", fmt.Sprintf("default-init %s", item.Name))
			case TString:
				g.emptyStringUsed = true
				g.storeMem(ebp(slotOffset(slot)), g.emptyStringLabel, fmt.Sprintf("default-init %s", item.Name))
			default:
				g.storeMem(ebp(slotOffset(slot)), "0", fmt.Sprintf("default-init %s", item.Name))
			}
		}

	case *Assign:
		g.genExpr(n.Value)
		if slot, ok := g.va.Offset(n.Name); ok {
			g.storeMem(ebp(slotOffset(slot)), "EAX", n.Name+"=")
			return
		}
		// not a local: must be a field of self (analyzer's varType
		// fallback already proved this).
		g.w.Op("mov", "ECX", "EAX")
		g.w.Op("mov", "EAX", ebp(g.selfOffset()))
		idx := g.attrIndex(g.currentClass, n.Name)
		g.w.OpC("self."+n.Name+"=", "mov", fmt.Sprintf("[EAX+%d]", 4+4*idx), "ECX")

	case *AttrAssign:
		g.genExpr(n.Value)
		tmp := g.va.NewTemp()
		g.storeMem(ebp(slotOffset(tmp)), "EAX", "stash rhs")
		g.genExpr(n.Obj)
		g.w.Op("mov", "ECX", ebp(slotOffset(tmp)))
		g.va.FreeTemp(tmp)
		idx := g.attrIndex(n.Obj.Type(), n.Field)
		g.w.OpC(n.Field+"=", "mov", fmt.Sprintf("[EAX+%d]", 4+4*idx), "ECX")

	case *ArrayAssign, *ForEach:
		panic("latc: codegen: arrays are not implemented and must be rejected before codegen")

	case *IncrStmt:
		g.genIncrDecr("inc", n.Name)
	case *DecrStmt:
		g.genIncrDecr("dec", n.Name)

	case *AttrIncrStmt:
		g.genExpr(n.Obj)
		idx := g.attrIndex(n.Obj.Type(), n.Field)
		g.w.Op("inc", fmt.Sprintf("dword [EAX+%d]", 4+4*idx))
	case *AttrDecrStmt:
		g.genExpr(n.Obj)
		idx := g.attrIndex(n.Obj.Type(), n.Field)
		g.w.Op("dec", fmt.Sprintf("dword [EAX+%d]", 4+4*idx))

	case *Return:
		if n.Value != nil {
			g.genExpr(n.Value)
		}
		g.w.Op("jmp", g.retLabel)

	case *If:
		g.genExpr(n.Cond)
		end := g.w.Fresh("endif")
		g.w.Op("cmp", "EAX", "1")
		g.w.Op("jne", end)
		g.genStmt(n.Then)
		g.w.EmitLabel(end)

	case *IfElse:
		g.genExpr(n.Cond)
		thenL := g.w.Fresh("if_then")
		end := g.w.Fresh("if_end")
		g.w.Op("cmp", "EAX", "0")
		g.w.Op("jne", thenL)
		g.genStmt(n.Else)
		g.w.Op("jmp", end)
		g.w.EmitLabel(thenL)
		g.genStmt(n.Then)
		g.w.EmitLabel(end)

	case *While:
		check := g.w.Fresh("while_check")
		body := g.w.Fresh("while_body")
		end := g.w.Fresh("while_end")
		g.w.EmitLabel(check)
		g.genExpr(n.Cond)
		g.w.Op("cmp", "EAX", "0")
		g.w.Op("jne", body)
		g.w.Op("jmp", end)
		g.w.EmitLabel(body)
		g.genStmt(n.Body)
		g.w.Op("jmp", check)
		g.w.EmitLabel(end)

	case *ExprStmt:
		g.genExpr(n.Value)

	case *Empty:
		// nothing to emit

	default:
		panic(fmt.Sprintf("latc: codegen: unhandled statement %T", s))
	}
}

// genIncrDecr handles both the local-variable and self-field forms of
// `x++`/`x--`: the analyzer's varType fallback (analyzer.go) is what
// makes the self-field form legal, so codegen must mirror its
// resolution order exactly.
func (g *CodeGenerator) genIncrDecr(op, name string) {
	if slot, ok := g.va.Offset(name); ok {
		g.w.Op(op, fmt.Sprintf("dword %s", ebp(slotOffset(slot))))
		return
	}
	g.w.Op("mov", "EAX", ebp(g.selfOffset()))
	idx := g.attrIndex(g.currentClass, name)
	g.w.OpC("self."+name+op, op, fmt.Sprintf("dword [EAX+%d]", 4+4*idx))
}

func (g *CodeGenerator) genExpr(e Expr) {
	switch n := e.(type) {
	case *Ident:
		if slot, ok := g.va.Offset(n.Name); ok {
			g.w.Op("mov", "EAX", ebp(slotOffset(slot)))
			return
		}
		g.w.Op("mov", "EAX", ebp(g.selfOffset()))
		idx := g.attrIndex(g.currentClass, n.Name)
		g.w.Op("mov", "EAX", fmt.Sprintf("[EAX+%d]", 4+4*idx))

	case *SelfExpr:
		g.w.Op("mov", "EAX", ebp(g.selfOffset()))

	case *IntLit:
		g.w.Op("mov", "EAX", strconv.Itoa(n.Value))

	case *BoolLit:
		if n.Value {
			g.w.Op("mov", "EAX", "1")
		} else {
			g.w.Op("xor", "EAX", "EAX")
		}

	case *StrLit:
		label, _ := g.labels.Get(n.Value)
		g.w.Op("mov", "EAX", label)

	case *CastNull:
		g.w.Op("mov", "EAX", "0")

	case *NewObject:
		numFields := g.st.Attrs[n.ClassName].Len()
		g.w.Op("push", strconv.Itoa(4*(1+numFields)))
		g.w.Op("call", "_malloc")
		g.w.Op("add", "ESP", "4")
		if g.st.VTables[n.ClassName].Len() > 0 {
			g.storeMem("[EAX]", g.classLabels[n.ClassName], "set vtable")
		}

	case *NewArray, *ArrayAccess:
		panic("latc: codegen: arrays are not implemented and must be rejected before codegen")

	case *Paren:
		g.genExpr(n.Inner)

	case *FuncCall:
		g.genCallArgs(n.Args)
		if g.currentClass != "" {
			if vt := g.st.VTables[g.currentClass]; vt.Has(n.Name) {
				slot, _ := vt.IndexOf(n.Name)
				g.genVCall(ebp(g.selfOffset()), slot, len(n.Args))
				return
			}
		}
		g.w.Op("call", n.Name)
		g.w.Op("add", "ESP", strconv.Itoa(4*len(n.Args)))

	case *MethodCall:
		g.genCallArgs(n.Args)
		g.genExpr(n.Recv)
		g.w.Op("push", "EAX")
		vt := g.st.VTables[n.Recv.Type()]
		slot, _ := vt.IndexOf(n.Name)
		g.w.Op("mov", "EAX", "[EAX]")
		g.w.Op("mov", "EAX", fmt.Sprintf("[EAX+%d]", 4*slot))
		g.w.Op("call", "EAX")
		g.w.Op("add", "ESP", strconv.Itoa(4*(1+len(n.Args))))

	case *AttrAccess:
		g.genExpr(n.Recv)
		idx := g.attrIndex(n.Recv.Type(), n.Field)
		g.w.Op("mov", "EAX", fmt.Sprintf("[EAX+%d]", 4+4*idx))

	case *UnaryOp:
		g.genExpr(n.Operand)
		if n.Op == "-" {
			g.w.Op("neg", "EAX")
		} else {
			g.w.Op("xor", "EAX", "1")
		}

	case *MulOp:
		tmp := g.genLeftThenRight(n.Left, n.Right)
		g.w.Op("mov", "ECX", "EAX")
		g.w.Op("mov", "EAX", ebp(slotOffset(tmp)))
		g.va.FreeTemp(tmp)
		switch n.Op {
		case "*":
			g.w.Op("imul", "ECX")
		case "/":
			g.w.Op("cdq")
			g.w.Op("idiv", "ECX")
		case "%":
			g.w.Op("cdq")
			g.w.Op("idiv", "ECX")
			g.w.Op("mov", "EAX", "EDX")
		}

	case *AddOp:
		tmp := g.genLeftThenRight(n.Left, n.Right)
		g.w.Op("mov", "ECX", ebp(slotOffset(tmp)))
		g.va.FreeTemp(tmp)
		if n.Op == "+" {
			if n.Type() == TString {
				g.w.OpC("concat strings", "push", "EAX")
				g.w.Op("push", "ECX")
				g.w.Op("call", "_concat")
				g.w.Op("add", "ESP", "8")
			} else {
				g.w.Op("add", "EAX", "ECX")
			}
		} else {
			g.w.Op("sub", "ECX", "EAX")
			g.w.Op("mov", "EAX", "ECX")
		}

	case *RelOp:
		tmp := g.genLeftThenRight(n.Left, n.Right)
		g.w.Op("mov", "ECX", ebp(slotOffset(tmp)))
		g.va.FreeTemp(tmp)
		g.w.Op("cmp", "ECX", "EAX")
		setInst := map[string]string{
			"<": "setl", "<=": "setle", ">": "setg", ">=": "setge",
			"==": "sete", "!=": "setne",
		}[n.Op]
		g.w.Op(setInst, "AL")
		g.w.Op("and", "EAX", "1")

	case *And:
		g.genExpr(n.Left)
		end := g.w.Fresh("and_end")
		g.w.Op("cmp", "EAX", "0")
		g.w.Op("je", end)
		g.genExpr(n.Right)
		g.w.EmitLabel(end)

	case *Or:
		g.genExpr(n.Left)
		end := g.w.Fresh("or_end")
		g.w.Op("cmp", "EAX", "0")
		g.w.Op("jne", end)
		g.genExpr(n.Right)
		g.w.EmitLabel(end)

	default:
		panic(fmt.Sprintf("latc: codegen: unhandled expression %T", e))
	}
}

// genLeftThenRight evaluates left into EAX, spills it to a fresh temp
// slot, then evaluates right into EAX — the common prefix of every
// binary operator's codegen (spec.md §4.7). It returns the temp slot
// still holding left's value; the caller reloads and frees it.
func (g *CodeGenerator) genLeftThenRight(left, right Expr) int {
	g.genExpr(left)
	tmp := g.va.NewTemp()
	g.storeMem(ebp(slotOffset(tmp)), "EAX", "stash left operand")
	g.genExpr(right)
	return tmp
}

// genCallArgs evaluates and pushes args right-to-left, the calling
// convention every call site in spec.md §4.7 shares.
func (g *CodeGenerator) genCallArgs(args []Expr) {
	for i := len(args) - 1; i >= 0; i-- {
		g.genExpr(args[i])
		g.w.Op("push", "EAX")
	}
}

// genVCall emits an implicit-self virtual dispatch: push self (already
// addressable at selfAddr), load its vtable, call the method at slot.
func (g *CodeGenerator) genVCall(selfAddr string, slot, argc int) {
	g.w.OpC("vcall: get self", "mov", "EAX", selfAddr)
	g.w.OpC("vcall: push self as first arg", "push", "EAX")
	g.w.OpC("vcall: load vtable", "mov", "EAX", "[EAX]")
	g.w.OpC("vcall: load method", "mov", "EAX", fmt.Sprintf("[EAX+%d]", 4*slot))
	g.w.Op("call", "EAX")
	g.w.Op("add", "ESP", strconv.Itoa(4*(1+argc)))
}
