// Package palette shows lwm windows, desktops and keybindings in an external
// dmenu-style launcher and returns the command lines for the chosen entry.
package palette

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the launcher without a choice.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row of a palette.
type Item struct {
	Label    string
	Icon     string   // icon name, rofi and fuzzel only
	Meta     string   // hidden search keywords
	Commands []string // lwm command lines run when the row is chosen
	IsHeader bool     // non-selectable section title
	IsActive bool
	IsUrgent bool
}

// Backend shows a list of items and returns the chosen one.
type Backend interface {
	Show(ctx context.Context, prompt string, items []Item) (Item, error)
	Name() string
}

// Backends lists the launchers lwm knows, in detection order.
var Backends = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range Backends {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(Backends, ", "))
}

// NewBackend creates a backend by name. An empty name or "auto" detects one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	l, ok := newLauncher(name)
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(Backends, ", "))
	}
	if _, err := lookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return l, nil
}

// Pick shows items until a selectable row is chosen and returns its commands.
func Pick(ctx context.Context, b Backend, prompt string, items []Item) ([]string, error) {
	selectable := false
	for _, it := range items {
		if !it.IsHeader {
			selectable = true
			break
		}
	}
	if !selectable {
		return nil, fmt.Errorf("palette: nothing to choose from")
	}

	for {
		item, err := b.Show(ctx, prompt, items)
		if err != nil {
			return nil, err
		}
		// dmenu and wofi cannot make headers unselectable.
		if item.IsHeader {
			continue
		}
		return item.Commands, nil
	}
}
