package render

import (
	"strings"
	"testing"
)

func TestToText(t *testing.T) {
	d := sampleDesktop()
	out := ToText(d.Root, d.FocusedWindow)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{
		"vertical 0.50",
		"├─ Alacritty 0x00400001 [presel south]",
		"└─ ? 0x00400002 ◀",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestToText_Empty(t *testing.T) {
	if got := ToText(nil, 0); got != "(empty)\n" {
		t.Fatalf("expected (empty), got %q", got)
	}
}
