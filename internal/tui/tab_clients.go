package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmburns/lwm/internal/ipc"
	"github.com/lmburns/lwm/internal/render"
	"github.com/lmburns/lwm/internal/wm"
)

// daemonClient is the part of ipc.Client the TUI talks to.
type daemonClient interface {
	Run(line string) error
	Query() (*wm.State, error)
	Reload() error
	GetStatus() (*ipc.StatusData, error)
}

// clientItem is a list item representing a managed window.
type clientItem struct {
	info wm.ClientInfo
}

func (i clientItem) Title() string {
	mark := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○")
	switch {
	case i.info.Focused:
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	case i.info.Urgent:
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("!")
	}
	return fmt.Sprintf("%s %s", mark, displayOrDefault(i.info.Class, "(no class)"))
}

func (i clientItem) Description() string {
	return fmt.Sprintf("0x%08X  desktop %s  %s", i.info.Window, i.info.Desktop, i.info.State)
}

func (i clientItem) FilterValue() string { return i.info.Class + " " + i.info.Name }

type stateMsg struct {
	state *wm.State
	err   error
}

type commandDoneMsg struct{ err error }

// ClientsTab lists managed windows and shows the tree of the selected
// window's desktop.
type ClientsTab struct {
	list   list.Model
	daemon daemonClient
	state  *wm.State
	err    error
	width  int
	height int
}

// NewClientsTab creates a ClientsTab backed by daemon.
func NewClientsTab(daemon daemonClient) ClientsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return ClientsTab{list: l, daemon: daemon}
}

// Refresh fetches a fresh snapshot from the daemon.
func (t ClientsTab) Refresh() tea.Cmd {
	daemon := t.daemon
	if daemon == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := daemon.Query()
		return stateMsg{state: st, err: err}
	}
}

// runLines executes command lines in order, stopping at the first error.
func (t ClientsTab) runLines(lines ...string) tea.Cmd {
	daemon := t.daemon
	if daemon == nil {
		return nil
	}
	return func() tea.Msg {
		for _, line := range lines {
			if err := daemon.Run(line); err != nil {
				return commandDoneMsg{err: fmt.Errorf("%s: %w", line, err)}
			}
		}
		return commandDoneMsg{}
	}
}

// focusLines returns the commands that make c the focused window.
func focusLines(c wm.ClientInfo) []string {
	return []string{
		"desktop focus " + c.Desktop,
		fmt.Sprintf("node focus window=0x%X", c.Window),
	}
}

// Update handles messages for the clients tab.
func (t ClientsTab) Update(msg tea.Msg) (ClientsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case stateMsg:
		t.err = msg.err
		if msg.err == nil {
			t.state = msg.state
			t.list.SetItems(buildClientItems(msg.state))
		}
		return t, nil

	case commandDoneMsg:
		t.err = msg.err
		return t, t.Refresh()

	case tea.KeyMsg:
		item, selected := t.list.SelectedItem().(clientItem)
		switch msg.String() {
		case "r":
			return t, t.Refresh()
		case "enter":
			if selected {
				return t, t.runLines(focusLines(item.info)...)
			}
			return t, nil
		case "f":
			if selected {
				return t, t.runLines(append(focusLines(item.info), "node state ~floating")...)
			}
			return t, nil
		case "x", "delete":
			if selected {
				return t, t.runLines(append(focusLines(item.info), "node close")...)
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t ClientsTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

// View implements tea.Model.
func (t ClientsTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	leftWidth := t.listWidth()
	rightWidth := t.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(t.height).
		Render(t.list.View())

	var right string
	switch item, ok := t.list.SelectedItem().(clientItem); {
	case t.daemon == nil || (t.state == nil && t.err != nil):
		right = centered(rightWidth, t.height, "daemon not running")
	case ok:
		right = renderClientDetail(item.info, t.state, t.err, rightWidth, t.height)
	default:
		right = centered(rightWidth, t.height, "No managed windows")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func centered(width, height int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(text)
}

// buildClientItems lists every client, focused desktop first.
func buildClientItems(st *wm.State) []list.Item {
	if st == nil {
		return nil
	}
	var items []list.Item
	for _, c := range st.Clients() {
		if c.Desktop == st.FocusedDesktop {
			items = append(items, clientItem{info: c})
		}
	}
	for _, c := range st.Clients() {
		if c.Desktop != st.FocusedDesktop {
			items = append(items, clientItem{info: c})
		}
	}
	return items
}

// renderClientDetail renders the right-side pane for the selected window.
func renderClientDetail(c wm.ClientInfo, st *wm.State, err error, width, height int) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	b.WriteString(titleStyle.Render(displayOrDefault(c.Name, c.Class)))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("window:", fmt.Sprintf("0x%08X", c.Window))
	field("class:", fmt.Sprintf("%s / %s", c.Class, c.Instance))
	if c.Process != "" {
		field("process:", fmt.Sprintf("%s (%d)", c.Process, c.PID))
	}
	field("state:", c.State.String())
	field("desktop:", fmt.Sprintf("%s on %s", c.Desktop, c.Monitor))
	field("rectangle:", fmt.Sprintf("%dx%d+%d+%d", c.Rect.W, c.Rect.H, c.Rect.X, c.Rect.Y))

	if st != nil {
		if d, ok := st.Desktop(c.Desktop); ok && d.Root != nil {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Render("tree"))
			b.WriteString("\n")
			b.WriteString(render.ToText(d.Root, c.Window))
		}
	}

	if err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(err.Error()))
	}

	b.WriteString("\n\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	b.WriteString(helpStyle.Render("enter: focus  f: toggle floating  x: close  r: refresh"))

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236"))

	return style.Render(b.String())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
