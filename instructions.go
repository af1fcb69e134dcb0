package latc

import "strings"

// Instruction is one line of generated NASM: either a label
// definition, a comment, or a mnemonic with its operands already split
// out. Keeping Op and Operands as separate fields from the start is
// the whole point of spec.md §9's "structured instruction stream"
// redesign flag: the peephole optimizer matches against these fields
// directly instead of re-splitting rendered text on ' ' and ',', which
// is what made peephole_optimizer.py fragile against any formatting
// change in assembly_writer.py.
//
// Shape generalized from vm_instructions.go's opcode+operands tuples,
// adapted from a closed bytecode enum to the open, textual x86
// mnemonic set spec.md §5 requires.
type Instruction struct {
	Label    string
	Op       string
	Operands []string
	Comment  string
}

func Instr(op string, operands ...string) Instruction {
	return Instruction{Op: op, Operands: operands}
}

func InstrC(comment, op string, operands ...string) Instruction {
	return Instruction{Op: op, Operands: operands, Comment: comment}
}

func Lbl(name string) Instruction { return Instruction{Label: name} }

func Cmt(text string) Instruction { return Instruction{Comment: text} }

func (i Instruction) IsLabel() bool   { return i.Label != "" }
func (i Instruction) IsComment() bool { return i.Label == "" && i.Op == "" }

var jumpOps = map[string]bool{
	"jmp": true, "je": true, "jne": true, "jl": true, "jle": true,
	"jg": true, "jge": true, "jz": true, "jnz": true,
}

func (i Instruction) IsJump() bool { return jumpOps[i.Op] }

// JumpTarget returns the label this jump targets, if it is one.
func (i Instruction) JumpTarget() (string, bool) {
	if !i.IsJump() || len(i.Operands) != 1 {
		return "", false
	}
	return i.Operands[0], true
}

// Render renders the instruction's code, with no comment attached and
// no column padding: a label line, an opcode with its operands, or ""
// for a line carrying only a comment. asmWriter.Render is what aligns
// comments into a shared column across the whole text section, the way
// assembly_writer.py's get_code() pads every line to one shared width
// before appending its comment — that can only be computed once the
// full instruction stream is known, not instruction by instruction.
func (i Instruction) Render() string {
	if i.IsLabel() {
		return i.Label + ":"
	}
	if i.Op == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(i.Op)
	if len(i.Operands) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(i.Operands, ", "))
	}
	return sb.String()
}
