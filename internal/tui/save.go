package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmburns/lwm/internal/config"
)

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

var (
	diffStyles = map[diffKind]lipgloss.Style{
		diffContext: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		diffRemoved: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		diffAdded:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		diffHunk:    lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
	}
	diffPrefix = map[diffKind]string{diffContext: "  ", diffRemoved: "- ", diffAdded: "+ "}

	overlayBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	overlayHint = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SaveOverlay previews the pending config changes as a diff and writes
// them on confirmation.
type SaveOverlay struct {
	phase    savePhase
	lines    []diffLine
	view     viewport.Model
	err      error
	reloaded bool

	width, height int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the preview, or a result box when nothing changed.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.lines = computeDiffLines(original, current)
	if len(s.lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.view = viewport.New(0, 0)
	s.phase = savePreview
	s.SetSize(s.width, s.height)
}

// SetSize fits the overlay to a width x height content area.
func (s *SaveOverlay) SetSize(width, height int) {
	s.width, s.height = width, height
	s.view.Width = clamp(width-8, 30, 80) - 6
	s.view.Height = max(height-10, 3)
	s.view.SetContent(s.renderDiff(s.view.Width))
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. On confirm the config
// is written to path (the default location when empty) and a running
// daemon is asked to reload it.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, daemon daemonClient) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.err = s.write(cfg, path)
			if s.err == nil && daemon != nil {
				s.reloaded = daemon.Reload() == nil
			}
			s.phase = saveResult
		default:
			s.view, _ = s.view.Update(msg)
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

func (s SaveOverlay) write(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

// View renders the overlay centred in a width x height area.
func (s SaveOverlay) View(width, height int) string {
	var body string
	switch s.phase {
	case savePreview:
		body = overlayBox.Width(clamp(width-8, 30, 80)).Render(
			lipgloss.NewStyle().Bold(true).Render("Save config") + "\n\n" +
				s.view.View() + "\n\n" +
				overlayHint.Render(fmt.Sprintf("enter: save  esc: cancel  j/k: scroll  %3.f%%", s.view.ScrollPercent()*100)))
	case saveResult:
		msg := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Config saved")
		if s.err != nil {
			msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
		} else if s.reloaded {
			msg += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("lwm reloaded")
		}
		body = overlayBox.Width(clamp(width-8, 30, 60)).Render(msg + "\n\n" + overlayHint.Render("press any key to dismiss"))
	default:
		return ""
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s SaveOverlay) renderDiff(width int) string {
	out := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		text := diffPrefix[l.kind] + l.text
		if len(text) > width {
			text = text[:max(width, 0)]
		}
		out = append(out, diffStyles[l.kind].Render(text))
	}
	return strings.Join(out, "\n")
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
