package render

import (
	"strings"
	"testing"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/tree"
	"github.com/lmburns/lwm/internal/wm"
)

func sampleDesktop() wm.DesktopState {
	left := &wm.NodeState{
		ID:     1,
		Window: 0x400001,
		Rect:   geometry.Rect(6, 6, 491, 788),
		Client: &wm.ClientInfo{Class: "Alacritty"},
		Presel: &tree.Presel{Ratio: 0.5, Dir: geometry.South},
	}
	right := &wm.NodeState{
		ID:     2,
		Window: 0x400002,
		Rect:   geometry.Rect(503, 6, 491, 788),
		Flags:  tree.Flags{Locked: true, Marked: true},
	}
	return wm.DesktopState{
		Name:          "web",
		FocusedWindow: 0x400002,
		Root: &wm.NodeState{
			ID:         0,
			SplitType:  tree.Vertical,
			SplitRatio: 0.5,
			First:      left,
			Second:     right,
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleDesktop(), Options{})

	for _, want := range []string{
		`digraph "desktop web" {`,
		`n0 -> n1 [label="1"];`,
		`n0 -> n2 [label="2"];`,
		`vertical 0.50`,
		`Alacritty\n0x00400001`,
		`presel south 0.50`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("expected DOT to contain %q, got:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "locked") {
		t.Errorf("expected flags only in detailed mode")
	}
}

func TestToDOT_FocusedLeafIsFilled(t *testing.T) {
	dot := ToDOT(sampleDesktop(), Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "n2 [") {
			if !strings.Contains(line, "#A98698") {
				t.Fatalf("expected focused leaf to be filled, got %s", line)
			}
			return
		}
	}
	t.Fatalf("expected a line for n2 in:\n%s", dot)
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleDesktop(), Options{Detailed: true})
	if !strings.Contains(dot, "491x788+503+6") {
		t.Errorf("expected rectangle in detailed label, got:\n%s", dot)
	}
	if !strings.Contains(dot, "locked,marked") {
		t.Errorf("expected flags in detailed label, got:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(wm.DesktopState{Name: "1"}, Options{})
	if !strings.Contains(dot, "(empty)") {
		t.Fatalf("expected placeholder node, got:\n%s", dot)
	}
}
