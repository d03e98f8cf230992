package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/ipc"
)

const refreshInterval = 2 * time.Second

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	daemon     daemonClient

	// Tab navigation
	activeTab Tab

	// Sub-models
	generalTab GeneralTab
	clientsTab ClientsTab
	keysTab    KeysTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state, nil while no daemon answers
	status *ipc.StatusData

	lastErr string

	// Terminal dimensions
	width  int
	height int
}

type statusMsg struct{ status *ipc.StatusData }

type tickMsg time.Time

func newModel(configPath string) model {
	return newModelWith(configPath, ipc.NewClient())
}

func newModelWith(configPath string, daemon daemonClient) model {
	m := model{
		configPath: configPath,
		daemon:     daemon,
		activeTab:  TabGeneral,
	}
	m.loadConfig()

	cfg := m.config()
	if cfg != nil {
		// Snapshot for the diff preview on save
		m.originalConfig = cfg.Clone()
	}
	m.generalTab = NewGeneralTab(cfg)
	m.clientsTab = NewClientsTab(daemon)
	m.keysTab = NewKeysTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error

	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}

	m.loadErr = err
	if err != nil {
		return
	}
	m.result = res
}

func (m model) config() *config.Config {
	if m.result == nil {
		return nil
	}
	return m.result.Config
}

func (m model) fetchStatus() tea.Cmd {
	daemon := m.daemon
	if daemon == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := daemon.GetStatus()
		if err != nil {
			return statusMsg{}
		}
		return statusMsg{status: status}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// Approximate: status bar (1) + tab bar (2 with margin) + help bar (1) = 4 lines
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.generalTab, _ = m.generalTab.Update(subMsg)
	m.clientsTab, _ = m.clientsTab.Update(subMsg)
	m.keysTab, _ = m.keysTab.Update(subMsg)
	m.saveOverlay.SetSize(m.width, m.contentHeight())
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.clientsTab.Refresh(), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Background messages are handled whatever has input focus.
	switch msg := msg.(type) {
	case statusMsg:
		m.status = msg.status
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), m.clientsTab.Refresh(), tick())
	case stateMsg, commandDoneMsg:
		var cmd tea.Cmd
		m.clientsTab, cmd = m.clientsTab.Update(msg)
		return m, cmd
	case editorFinishedMsg:
		m.lastErr = ""
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.reloadFromDisk()
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.config(), m.configPath, m.daemon)
			// After a successful save, update the original snapshot
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = m.config().Clone()
			}
		case tea.WindowSizeMsg:
			m.resize(msg)
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.config() != nil {
			m.saveOverlay.Show(m.originalConfig, m.config())
		}
		return m, nil
	}

	// When a sub-model captures input, delegate all messages to it
	// (the form/input consumes keys; only ctrl+c escapes to quit)
	capturing := (m.activeTab == TabGeneral && m.generalTab.editing) ||
		(m.activeTab == TabKeys && m.keysTab.adding)
	if capturing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg)
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case TabGeneral:
			m.generalTab, cmd = m.generalTab.Update(msg)
		case TabKeys:
			m.keysTab, cmd = m.keysTab.Update(msg)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabGeneral
			return m, nil
		case "2":
			m.activeTab = TabClients
			return m, m.clientsTab.Refresh()
		case "3":
			m.activeTab = TabKeys
			return m, nil
		case "E":
			return m, editConfig(m.configPath)
		}

	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	// Delegate to active tab's sub-model
	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabClients:
		m.clientsTab, cmd = m.clientsTab.Update(msg)
	case TabKeys:
		m.keysTab, cmd = m.keysTab.Update(msg)
	}
	return m, cmd
}

// reloadFromDisk rereads the config after an external edit. Unsaved
// changes made in the TUI are discarded.
func (m *model) reloadFromDisk() {
	m.loadConfig()
	if m.loadErr != nil {
		m.lastErr = m.loadErr.Error()
		return
	}
	cfg := m.config()
	m.originalConfig = cfg.Clone()
	m.generalTab.SetConfig(cfg)
	m.keysTab.SetConfig(cfg)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)

	lastErr := m.lastErr
	if lastErr == "" && m.loadErr != nil {
		lastErr = "config: " + m.loadErr.Error()
	}
	helpBar := renderHelpBar(m.width, lastErr)

	// Calculate content height: total - statusBar - tabBar - helpBar
	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabGeneral:
			content = m.generalTab.View()
		case TabClients:
			content = m.clientsTab.View()
		case TabKeys:
			content = m.keysTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
