package latc

import (
	"strconv"
	"strings"
)

// asmWriter accumulates a program's generated NASM as two ordered
// buffers — a .data section (string constants) and a .text section
// (the instruction stream) — plus a single monotonic counter for
// fresh label names, so every call site (if/else, while, short-circuit
// boolean codegen) gets a name that can never collide with another.
//
// Grounded on assembly_writer.py's writer object and on the teacher's
// own buffered output pattern in gen.go's outputWriter (accumulate,
// then Render once at the end, rather than writing straight to an
// io.Writer as each instruction is produced — which is what lets the
// peephole optimizer run a whole-program pass between generation and
// output).
type asmWriter struct {
	text []Instruction
	data []dataEntry
	seq  int
}

type dataEntry struct {
	Label     string
	Directive string // "db" for string bytes, "dd" for a vtable's label list
	Operand   string // pre-rendered operand list
}

func newAsmWriter() *asmWriter {
	return &asmWriter{}
}

func (w *asmWriter) Emit(i Instruction) { w.text = append(w.text, i) }

func (w *asmWriter) Op(op string, operands ...string) { w.Emit(Instr(op, operands...)) }

func (w *asmWriter) OpC(comment, op string, operands ...string) {
	w.Emit(InstrC(comment, op, operands...))
}

func (w *asmWriter) EmitLabel(name string) { w.Emit(Lbl(name)) }

// Text returns the accumulated instruction stream so a later pass
// (the peephole optimizer) can rewrite it in place.
func (w *asmWriter) Text() []Instruction { return w.text }

// SetText replaces the accumulated instruction stream, used by the
// peephole optimizer to install its cleaned-up result.
func (w *asmWriter) SetText(text []Instruction) { w.text = text }

func (w *asmWriter) Comment(text string) { w.Emit(Cmt(text)) }

// Fresh returns a new globally unique label built from prefix, e.g.
// Fresh("if_else") -> "if_else3".
func (w *asmWriter) Fresh(prefix string) string {
	w.seq++
	return prefix + strconv.Itoa(w.seq)
}

// DataStr registers a string constant under label; value is stored as
// a raw byte list rather than a quoted NASM string so no character in
// a source string literal needs escaping rules of its own.
func (w *asmWriter) DataStr(label, value string) {
	w.data = append(w.data, dataEntry{Label: label, Directive: "db", Operand: nasmBytes(value)})
}

// DataVTable registers a class's virtual dispatch table under label:
// one dd per slot, naming the `<class>__<method>` label of whichever
// class currently provides that slot's implementation (spec.md §6).
func (w *asmWriter) DataVTable(label string, slotLabels []string) {
	w.data = append(w.data, dataEntry{Label: label, Directive: "dd", Operand: strings.Join(slotLabels, ", ")})
}

func nasmBytes(s string) string {
	parts := make([]string, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		parts = append(parts, strconv.Itoa(int(s[i])))
	}
	parts = append(parts, "0")
	return strings.Join(parts, ",")
}

// Render produces the final NASM source in the order spec.md §6
// fixes: segment .data (string literals, vtables, the shared
// empty-string sentinel) first, then segment .text carrying `global
// main`, the runtime extern declarations, and the (possibly
// peephole-cleaned) instruction stream.
func (w *asmWriter) Render(externs []string) string {
	var sb strings.Builder

	sb.WriteString("segment .data\n")
	for _, d := range w.data {
		sb.WriteString("    ")
		sb.WriteString(d.Label)
		sb.WriteString(" ")
		sb.WriteString(d.Directive)
		sb.WriteString(" ")
		sb.WriteString(d.Operand)
		sb.WriteString("\n")
	}

	sb.WriteString("\nsegment .text\n")
	sb.WriteString("global main\n")
	for _, e := range externs {
		sb.WriteString("extern ")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	lines := make([]string, 0, len(w.text))
	width := 0
	for _, instr := range w.text {
		line := instr.Render()
		lines = append(lines, line)
		if len(line) > width {
			width = len(line)
		}
	}
	width += 4

	for i, instr := range w.text {
		line := lines[i]
		if line == "" && instr.Comment == "" {
			continue
		}
		sb.WriteString(line)
		if instr.Comment != "" {
			pad := width - len(line)
			if pad < 4 {
				pad = 4
			}
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString("; ")
			sb.WriteString(instr.Comment)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
