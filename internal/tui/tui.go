// Package tui is the interactive configuration editor and window browser.
package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/lmburns/lwm/internal/config"
)

// Run starts the TUI and blocks until the user quits. An empty configPath
// means the default location.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type editorFinishedMsg struct{ err error }

// editConfig suspends the TUI and opens the config file in $EDITOR.
func editConfig(configPath string) tea.Cmd {
	path := configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return func() tea.Msg { return editorFinishedMsg{err: err} }
		}
		path = p
	}

	parts := strings.Fields(editorCommand())
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			err = fmt.Errorf("editor failed: %w", err)
		}
		return editorFinishedMsg{err: err}
	})
}

func editorCommand() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	return "vi"
}
