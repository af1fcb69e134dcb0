package latc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// extractTextLines returns the .text section's non-blank lines so
// tests can inspect comment alignment without caring about .data or
// the fixed extern preamble.
func extractTextLines(t *testing.T, asm string) []string {
	t.Helper()
	idx := strings.Index(asm, "segment .text")
	if idx < 0 {
		t.Fatal("segment .text not found")
	}
	var lines []string
	for _, l := range strings.Split(asm[idx:], "\n")[1:] {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestAsmWriterAlignsCommentsIntoAColumn(t *testing.T) {
	w := newAsmWriter()
	w.OpC("short", "mov", "EAX", "1")
	w.OpC("a much longer comment anchor instruction", "mov", "ECX", "2")
	w.Op("ret")

	out := w.Render(nil)
	lines := extractTextLines(t, out)

	var commented []string
	for _, l := range lines {
		if strings.Contains(l, ";") {
			commented = append(commented, l)
		}
	}
	assert.Len(t, commented, 2)

	col := strings.Index(commented[0], ";")
	for _, l := range commented[1:] {
		assert.Equal(t, col, strings.Index(l, ";"), "comments must start in the same column: %q", l)
	}
}

func TestAsmWriterLineWithoutCommentHasNoTrailingSemicolon(t *testing.T) {
	w := newAsmWriter()
	w.Op("push", "EBP")
	out := w.Render(nil)
	lines := extractTextLines(t, out)
	assert.Contains(t, lines, "    push EBP")
}
