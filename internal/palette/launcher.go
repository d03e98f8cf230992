package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher drives rofi, fuzzel, wofi and dmenu through their dmenu modes.
type launcher struct {
	command string

	indexOutput bool // prints the chosen row index instead of its text
	markup      bool
	icons       bool
	rowProps    bool // understands the rofi "\0key\x1fvalue" row protocol

	run func(ctx context.Context, name string, args []string, stdin string) ([]byte, error)
}

func newLauncher(name string) (*launcher, bool) {
	l := &launcher{command: name, run: runCommand}
	switch name {
	case "rofi":
		l.indexOutput, l.markup, l.icons, l.rowProps = true, true, true, true
	case "fuzzel":
		l.indexOutput, l.icons = true, true
	case "wofi":
		l.markup = true
	case "dmenu":
	default:
		return nil, false
	}
	return l, true
}

func (l *launcher) Name() string { return l.command }

func (l *launcher) Show(ctx context.Context, prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	shown := make([]Item, len(items))
	copy(shown, items)
	if !l.indexOutput {
		disambiguate(shown)
	}

	out, err := l.run(ctx, l.command, l.args(prompt, shown), l.input(shown))
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, shown)
}

func (l *launcher) args(prompt string, items []Item) []string {
	var args []string
	switch l.command {
	case "rofi":
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active, urgent []string
		selected := -1
		for i, it := range items {
			if it.IsHeader {
				continue
			}
			if selected < 0 || (it.IsActive && !items[selected].IsActive) {
				selected = i
			}
			if it.IsActive {
				active = append(active, strconv.Itoa(i))
			}
			if it.IsUrgent {
				urgent = append(urgent, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if len(urgent) > 0 {
			args = append(args, "-u", strings.Join(urgent, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
	case "fuzzel":
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case "wofi":
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case "dmenu":
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (l *launcher) input(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, l.row(it))
	}
	return strings.Join(lines, "\n")
}

func (l *launcher) row(it Item) string {
	text := sanitize(it.Label)
	if l.markup {
		text = html.EscapeString(text)
		if it.IsHeader {
			text = "<b>" + text + "</b>"
		}
	}
	if !l.rowProps {
		return text
	}

	var props []string
	if it.IsHeader {
		props = append(props, "nonselectable", "true")
	}
	if it.Icon != "" && l.icons {
		props = append(props, "icon", sanitize(it.Icon))
	}
	if it.Meta != "" {
		props = append(props, "meta", sanitize(it.Meta))
	}
	if len(props) == 0 {
		return text
	}
	// One NUL, then key/value pairs separated by \x1f.
	return text + "\x00" + strings.Join(props, "\x1f")
}

func (l *launcher) parse(selection string, items []Item) (Item, error) {
	if l.indexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, it := range items {
		if sanitize(it.Label) == selection {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

// disambiguate numbers duplicate labels for launchers that answer with text.
func disambiguate(items []Item) {
	seen := make(map[string]int)
	for i := range items {
		if items[i].IsHeader {
			continue
		}
		key := sanitize(items[i].Label)
		if n := seen[key]; n > 0 {
			items[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func sanitize(s string) string {
	s = strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}

func runCommand(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s failed: %s", name, msg)
		}
		return out, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, err
}

// isCancelExit reports exit codes launchers use for "no selection".
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
