package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmburns/lwm/internal/config"
)

// GeneralTab is the sub-model for the General settings tab.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fWindowGap     string
	fBorderWidth   string
	fSplitRatio    string
	fScheme        string
	fPolarity      string
	fTightness     string
	fDesktops      string
	fPaddingTop    string
	fPaddingBottom string
	fPaddingLeft   string
	fPaddingRight  string
	fLogLevel      string

	fFocusFollowsPointer bool
	fPointerFollowsFocus bool
	fSingleMonocle       bool
	fPreselFeedback      bool
	fRemovalAdjustment   bool
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// SetConfig updates the config reference.
func (g *GeneralTab) SetConfig(cfg *config.Config) {
	g.cfg = cfg
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	return g.updateDisplay(msg)
}

func (g GeneralTab) updateDisplay(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && g.cfg != nil {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

// loadForm copies the config into the form-bound fields.
func (g *GeneralTab) loadForm() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	g.fWindowGap = strconv.FormatUint(uint64(cfg.WindowGap), 10)
	g.fBorderWidth = strconv.FormatUint(uint64(cfg.BorderWidth), 10)
	g.fSplitRatio = strconv.FormatFloat(cfg.SplitRatio, 'f', -1, 64)
	g.fScheme = cfg.AutomaticScheme
	g.fPolarity = cfg.InitialPolarity
	g.fTightness = cfg.DirectionalFocusTightness
	g.fDesktops = strings.Join(cfg.Desktops, ", ")
	g.fPaddingTop = strconv.FormatUint(uint64(cfg.Padding.Top), 10)
	g.fPaddingBottom = strconv.FormatUint(uint64(cfg.Padding.Bottom), 10)
	g.fPaddingLeft = strconv.FormatUint(uint64(cfg.Padding.Left), 10)
	g.fPaddingRight = strconv.FormatUint(uint64(cfg.Padding.Right), 10)
	g.fLogLevel = cfg.LogLevel
	g.fFocusFollowsPointer = cfg.FocusFollowsPointer
	g.fPointerFollowsFocus = cfg.PointerFollowsFocus
	g.fSingleMonocle = cfg.SingleMonocle
	g.fPreselFeedback = cfg.PreselFeedback
	g.fRemovalAdjustment = cfg.RemovalAdjustment
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("window_gap").
				Title("Window Gap").
				Description("Pixels between tiled windows").
				Validate(validateUint).
				Value(&g.fWindowGap),

			huh.NewInput().
				Key("border_width").
				Title("Border Width").
				Validate(validateUint).
				Value(&g.fBorderWidth),

			huh.NewInput().
				Key("split_ratio").
				Title("Split Ratio").
				Description("Share of a new split kept by the existing window").
				Validate(validateRatio).
				Value(&g.fSplitRatio),

			huh.NewSelect[string]().
				Key("automatic_scheme").
				Title("Automatic Scheme").
				Description("How a split direction is chosen without a preselection").
				Options(huh.NewOptions("longest_side", "alternate", "spiral")...).
				Value(&g.fScheme),

			huh.NewSelect[string]().
				Key("initial_polarity").
				Title("Initial Polarity").
				Description("Which side of the split the new window takes").
				Options(huh.NewOptions("first", "second")...).
				Value(&g.fPolarity),

			huh.NewInput().
				Key("desktops").
				Title("Desktops").
				Description("Comma separated desktop names").
				Validate(validateDesktops).
				Value(&g.fDesktops),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("padding_top").
				Title("Padding: Top").
				Validate(validateUint).
				Value(&g.fPaddingTop),
			huh.NewInput().
				Key("padding_bottom").
				Title("Padding: Bottom").
				Validate(validateUint).
				Value(&g.fPaddingBottom),
			huh.NewInput().
				Key("padding_left").
				Title("Padding: Left").
				Validate(validateUint).
				Value(&g.fPaddingLeft),
			huh.NewInput().
				Key("padding_right").
				Title("Padding: Right").
				Validate(validateUint).
				Value(&g.fPaddingRight),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("directional_focus_tightness").
				Title("Directional Focus Tightness").
				Options(huh.NewOptions("high", "low")...).
				Value(&g.fTightness),
			huh.NewConfirm().
				Key("focus_follows_pointer").
				Title("Focus Follows Pointer").
				Value(&g.fFocusFollowsPointer),
			huh.NewConfirm().
				Key("pointer_follows_focus").
				Title("Pointer Follows Focus").
				Value(&g.fPointerFollowsFocus),
			huh.NewConfirm().
				Key("single_monocle").
				Title("Single Monocle").
				Description("Use monocle geometry when a desktop has one tiled window").
				Value(&g.fSingleMonocle),
			huh.NewConfirm().
				Key("presel_feedback").
				Title("Preselection Feedback").
				Value(&g.fPreselFeedback),
			huh.NewConfirm().
				Key("removal_adjustment").
				Title("Removal Adjustment").
				Description("Rebalance splits when a window closes").
				Value(&g.fRemovalAdjustment),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&g.fLogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func validateUint(s string) error {
	if _, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32); err != nil {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validateRatio(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v >= 1 {
		return fmt.Errorf("must be between 0 and 1 (exclusive)")
	}
	return nil
}

func validateDesktops(s string) error {
	if len(splitDesktops(s)) == 0 {
		return fmt.Errorf("at least one desktop is required")
	}
	return nil
}

func splitDesktops(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// applyForm writes the form-bound values back into the config. Values that
// fail to parse leave the field untouched.
func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}

	setUint := func(dst *uint, s string) {
		if v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32); err == nil {
			*dst = uint(v)
		}
	}
	setUint(&g.cfg.WindowGap, g.fWindowGap)
	setUint(&g.cfg.BorderWidth, g.fBorderWidth)
	setUint(&g.cfg.Padding.Top, g.fPaddingTop)
	setUint(&g.cfg.Padding.Bottom, g.fPaddingBottom)
	setUint(&g.cfg.Padding.Left, g.fPaddingLeft)
	setUint(&g.cfg.Padding.Right, g.fPaddingRight)

	if validateRatio(g.fSplitRatio) == nil {
		g.cfg.SplitRatio, _ = strconv.ParseFloat(strings.TrimSpace(g.fSplitRatio), 64)
	}
	if g.fScheme != "" {
		g.cfg.AutomaticScheme = g.fScheme
	}
	if g.fPolarity != "" {
		g.cfg.InitialPolarity = g.fPolarity
	}
	if g.fTightness != "" {
		g.cfg.DirectionalFocusTightness = g.fTightness
	}
	if names := splitDesktops(g.fDesktops); len(names) > 0 {
		g.cfg.Desktops = names
	}
	if g.fLogLevel != "" {
		g.cfg.LogLevel = g.fLogLevel
	}
	g.cfg.FocusFollowsPointer = g.fFocusFollowsPointer
	g.cfg.PointerFollowsFocus = g.fPointerFollowsFocus
	g.cfg.SingleMonocle = g.fSingleMonocle
	g.cfg.PreselFeedback = g.fPreselFeedback
	g.cfg.RemovalAdjustment = g.fRemovalAdjustment
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(g.width).
			Height(g.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(30).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	padding := fmt.Sprintf("top:%d bottom:%d left:%d right:%d",
		cfg.Padding.Top, cfg.Padding.Bottom,
		cfg.Padding.Left, cfg.Padding.Right)

	lines := []string{
		"",
		row("Desktops", strings.Join(cfg.Desktops, " ")),
		"",
		row("Window Gap", strconv.FormatUint(uint64(cfg.WindowGap), 10)),
		row("Border Width", strconv.FormatUint(uint64(cfg.BorderWidth), 10)),
		row("Padding", padding),
		"",
		row("Split Ratio", strconv.FormatFloat(cfg.SplitRatio, 'f', -1, 64)),
		row("Automatic Scheme", cfg.AutomaticScheme),
		row("Initial Polarity", cfg.InitialPolarity),
		row("Removal Adjustment", onOff(cfg.RemovalAdjustment)),
		row("Directional Focus Tightness", cfg.DirectionalFocusTightness),
		"",
		row("Focus Follows Pointer", onOff(cfg.FocusFollowsPointer)),
		row("Pointer Follows Focus", onOff(cfg.PointerFollowsFocus)),
		row("Single Monocle", onOff(cfg.SingleMonocle)),
		row("Preselection Feedback", onOff(cfg.PreselFeedback)),
		row("Rules", strconv.Itoa(len(cfg.Rules))),
		row("Log Level", cfg.LogLevel),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + g.form.View())
}
