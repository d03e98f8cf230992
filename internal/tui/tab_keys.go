package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/wm"
)

// keyItem is a list item representing one keybinding.
type keyItem struct {
	key     string
	command string
}

func (i keyItem) Title() string       { return i.key }
func (i keyItem) Description() string { return i.command }
func (i keyItem) FilterValue() string { return i.key + " " + i.command }

// KeysTab is the sub-model for the Keybindings tab.
type KeysTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	// Add mode
	adding    bool
	textInput textinput.Model
	inputErr  string
}

// NewKeysTab creates a KeysTab from the loaded config.
func NewKeysTab(cfg *config.Config) KeysTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildKeyItems(cfg), delegate, 0, 0)
	l.Title = "Keybindings"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "Mod4-shift-f = node state ~fullscreen"
	ti.CharLimit = 128

	return KeysTab{
		list:      l,
		cfg:       cfg,
		textInput: ti,
	}
}

// SetConfig updates the config reference.
func (t *KeysTab) SetConfig(cfg *config.Config) {
	t.cfg = cfg
	t.list.SetItems(buildKeyItems(cfg))
}

// Update handles messages for the keybindings tab.
func (t KeysTab) Update(msg tea.Msg) (KeysTab, tea.Cmd) {
	if t.adding {
		return t.updateAdding(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			t.startInput("")
			return t, textinput.Blink
		case "e":
			if item, ok := t.list.SelectedItem().(keyItem); ok {
				t.startInput(item.key + " = " + item.command)
				return t, textinput.Blink
			}
			return t, nil
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(keyItem); ok && t.cfg != nil {
				delete(t.cfg.Keybindings, item.key)
				t.list.SetItems(buildKeyItems(t.cfg))
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t *KeysTab) startInput(value string) {
	t.adding = true
	t.inputErr = ""
	t.textInput.Reset()
	t.textInput.SetValue(value)
	t.textInput.Focus()
}

func (t KeysTab) updateAdding(msg tea.Msg) (KeysTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if err := t.setBinding(t.textInput.Value()); err != nil {
				t.inputErr = err.Error()
				return t, nil
			}
			t.list.SetItems(buildKeyItems(t.cfg))
			t.adding = false
			t.textInput.Blur()
			return t, nil
		case "esc":
			t.adding = false
			t.textInput.Blur()
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

// setBinding parses "key = command" and stores it. The command must parse
// as an lwm command line.
func (t *KeysTab) setBinding(input string) error {
	if t.cfg == nil {
		return fmt.Errorf("no config loaded")
	}
	key, command, ok := strings.Cut(input, "=")
	key, command = strings.TrimSpace(key), strings.TrimSpace(command)
	if !ok || key == "" || command == "" {
		return fmt.Errorf("expected: key = command")
	}
	if _, err := wm.ParseCommand(command); err != nil {
		return err
	}
	if t.cfg.Keybindings == nil {
		t.cfg.Keybindings = map[string]string{}
	}
	t.cfg.Keybindings[key] = command
	return nil
}

func (t KeysTab) listWidth() int {
	w := t.width / 2
	if w < 24 {
		w = 24
	}
	return w
}

// View implements tea.Model.
func (t KeysTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	leftWidth := t.listWidth()
	rightWidth := t.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	leftContent := t.list.View()
	if t.adding {
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(leftWidth)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Keybinding (key = command):") + "\n" +
			t.textInput.View() + "\n"
		if t.inputErr != "" {
			prompt += lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(t.inputErr) + "\n"
		}
		prompt += lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := t.height - lipgloss.Height(inputBlock)
		if listHeight < 1 {
			listHeight = 1
		}
		t.list.SetSize(leftWidth, listHeight)
		leftContent = inputBlock + "\n" + t.list.View()
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(t.height).
		Render(leftContent)

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	help := helpStyle.Render("a: add  e: edit  x: remove")
	if t.cfg == nil || len(t.cfg.Keybindings) == 0 {
		help = "No keybindings configured\n\n" + help
	}
	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(t.height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236")).
		Render(help)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// buildKeyItems lists keybindings sorted by key.
func buildKeyItems(cfg *config.Config) []list.Item {
	if cfg == nil {
		return nil
	}
	keys := make([]string, 0, len(cfg.Keybindings))
	for k := range cfg.Keybindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]list.Item, 0, len(keys))
	for _, k := range keys {
		items = append(items, keyItem{key: k, command: cfg.Keybindings[k]})
	}
	return items
}
