package latc

import "strings"

// Peephole runs a fixed sequence of local rewrite rules over a
// function's generated instruction stream (spec.md §4.9). Each rule
// looks at a small, fixed-size window of adjacent instructions and
// either deletes a redundant one or merges two into one; the six
// named rules run, in order, exactly as optimize() does in
// peephole_optimizer.py, with the `mov A,B`/`mov B,A` swap-back rule
// run a second time at the very end of the sequence — matched against
// Instruction's Op/Operands fields directly instead of re-splitting
// rendered text on ' ' and ',', which is the fragility spec.md §9
// calls out to fix.
//
// Grounded on peephole_optimizer.py's six named rules and its call
// order in optimize(). One rule (mov_ab_ac) is ported with its target
// index corrected: the source removes the second of the two matched
// instructions, which discards the value the second mov was computing;
// the safe removal is the *first* mov, a dead store whose destination
// is clobbered before it's ever read. See DESIGN.md.
type Peephole struct{}

func (p *Peephole) Optimize(text []Instruction) []Instruction {
	text = p.movEaxCMemEax(text)
	text = p.movAbBa(text)
	text = p.movAbAc(text)
	text = p.movAbAb(text)
	text = p.movAbXdBa(text)
	text = p.jmpLblLbl(text)
	text = p.movAbBa(text)
	return text
}

func movTriple(i Instruction) (dst, src string, ok bool) {
	if i.Op != "mov" || len(i.Operands) != 2 {
		return "", "", false
	}
	return i.Operands[0], i.Operands[1], true
}

func isMemOperand(s string) bool { return strings.Contains(s, "[") }

// contains reports whether reg appears as a token inside operand s —
// e.g. contains("EAX", "[EAX+4]") — the structured analogue of the
// source's plain substring test.
func contains(reg, s string) bool { return strings.Contains(s, reg) }

func apply(text []Instruction, replace map[int]Instruction, remove map[int]bool) []Instruction {
	if len(replace) == 0 && len(remove) == 0 {
		return text
	}
	out := make([]Instruction, 0, len(text))
	for i, inst := range text {
		if remove[i] {
			continue
		}
		if r, ok := replace[i]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, inst)
	}
	return out
}

// movEaxCMemEax folds `mov EAX, C` ; `mov DST, EAX` into one `mov DST,
// C` whenever C isn't itself a memory read (so EAX was only ever a
// relay register, never the thing computing C).
func (p *Peephole) movEaxCMemEax(text []Instruction) []Instruction {
	replace := map[int]Instruction{}
	remove := map[int]bool{}
	for i := 0; i+1 < len(text); i++ {
		d1, s1, ok1 := movTriple(text[i])
		d2, s2, ok2 := movTriple(text[i+1])
		if !ok1 || !ok2 {
			continue
		}
		if d1 != "EAX" || s2 != "EAX" || isMemOperand(s1) {
			continue
		}
		dst := d2
		if !isRegisterOperand(dst) {
			dst = "dword " + dst
		}
		merged := text[i]
		merged.Operands = []string{dst, s1}
		replace[i] = merged
		remove[i+1] = true
	}
	return apply(text, replace, remove)
}

// movAbXdBa removes `mov B, A` when it is preceded, one instruction
// earlier, by `mov A, B` with an unrelated instruction between them
// that doesn't overwrite A — the second mov is restoring a value that
// was never disturbed.
func (p *Peephole) movAbXdBa(text []Instruction) []Instruction {
	remove := map[int]bool{}
	for i := 0; i+2 < len(text); i++ {
		a, b, ok1 := movTriple(text[i])
		xd := text[i+1]
		x2, y2, ok2 := movTriple(text[i+2])
		if !ok1 || !ok2 || xd.IsLabel() {
			continue
		}
		if a != y2 || b != x2 {
			continue
		}
		if xd.Op == "" {
			continue
		}
		clobbersA := false
		if len(xd.Operands) > 0 && xd.Operands[0] == a {
			clobbersA = true
		}
		for _, op := range xd.Operands {
			if contains(a, op) {
				clobbersA = true
			}
		}
		if !clobbersA {
			remove[i+2] = true
		}
	}
	return apply(text, nil, remove)
}

// movAbAc deletes a dead `mov A, B` immediately followed by `mov A, C`
// — the first assignment to A is overwritten before it can ever be
// read.
func (p *Peephole) movAbAc(text []Instruction) []Instruction {
	remove := map[int]bool{}
	for i := 0; i+1 < len(text); i++ {
		a1, _, ok1 := movTriple(text[i])
		a2, c, ok2 := movTriple(text[i+1])
		if !ok1 || !ok2 {
			continue
		}
		if a1 != a2 {
			continue
		}
		if contains(a1, c) {
			continue
		}
		remove[i] = true
	}
	return apply(text, nil, remove)
}

// movAbAb removes an exact duplicate `mov A, B` ; `mov A, B` pair's
// second instruction, unless A appears inside B — in that case B's
// value could have changed between the two (e.g. B is `[EAX+4]` and A
// is EAX), so the duplicate isn't actually redundant.
func (p *Peephole) movAbAb(text []Instruction) []Instruction {
	remove := map[int]bool{}
	for i := 0; i+1 < len(text); i++ {
		a1, b1, ok1 := movTriple(text[i])
		a2, b2, ok2 := movTriple(text[i+1])
		if !ok1 || !ok2 {
			continue
		}
		if a1 != a2 || b1 != b2 {
			continue
		}
		if contains(a1, b2) {
			continue
		}
		remove[i+1] = true
	}
	return apply(text, nil, remove)
}

// jmpLblLbl removes an unconditional jump that targets the very next
// label — falling through gets there anyway.
func (p *Peephole) jmpLblLbl(text []Instruction) []Instruction {
	remove := map[int]bool{}
	for i := 0; i+1 < len(text); i++ {
		jmp := text[i]
		lbl := text[i+1]
		if jmp.Op != "jmp" || len(jmp.Operands) != 1 || !lbl.IsLabel() {
			continue
		}
		if jmp.Operands[0] == lbl.Label {
			remove[i] = true
		}
	}
	return apply(text, nil, remove)
}

// movAbBa removes `mov B, A` immediately after `mov A, B` — nothing
// between them could have changed either register, so the swap-back
// is a no-op.
func (p *Peephole) movAbBa(text []Instruction) []Instruction {
	remove := map[int]bool{}
	for i := 0; i+1 < len(text); i++ {
		a, b, ok1 := movTriple(text[i])
		x, y, ok2 := movTriple(text[i+1])
		if !ok1 || !ok2 {
			continue
		}
		if a == y && b == x {
			remove[i+1] = true
		}
	}
	return apply(text, nil, remove)
}
