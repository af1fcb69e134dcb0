package latc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionRenderLabel(t *testing.T) {
	assert.Equal(t, "foo:", Lbl("foo").Render())
}

func TestInstructionRenderPlain(t *testing.T) {
	assert.Equal(t, "    mov EAX, 1", Instr("mov", "EAX", "1").Render())
}

func TestInstructionRenderWithCommentOmitsComment(t *testing.T) {
	// Render only ever produces the code; asmWriter.Render is what
	// appends a comment, once it knows the shared column width.
	i := InstrC("load x", "mov", "EAX", "[EBP-4]")
	assert.Equal(t, "    mov EAX, [EBP-4]", i.Render())
}

func TestInstructionRenderNoOperands(t *testing.T) {
	assert.Equal(t, "    ret", Instr("ret").Render())
}

func TestInstructionIsLabelAndIsComment(t *testing.T) {
	assert.True(t, Lbl("x").IsLabel())
	assert.False(t, Instr("mov", "EAX", "1").IsLabel())

	assert.True(t, Cmt("note").IsComment())
	assert.False(t, Instr("mov", "EAX", "1").IsComment())
}

func TestInstructionIsJumpAndJumpTarget(t *testing.T) {
	j := Instr("jmp", "L1")
	assert.True(t, j.IsJump())
	target, ok := j.JumpTarget()
	assert.True(t, ok)
	assert.Equal(t, "L1", target)

	assert.False(t, Instr("mov", "EAX", "1").IsJump())
	_, ok = Instr("mov", "EAX", "1").JumpTarget()
	assert.False(t, ok)
}
