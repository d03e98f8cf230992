// Package wm is the window manager core. A Manager owns the monitors, their
// desktops and the clients on them, reacts to window system events and
// executes user commands, and pushes the resulting geometry, stacking and
// focus back through a platform.Backend.
//
// A Manager is not safe for concurrent use. Every method must be called from
// the event loop goroutine; other goroutines go through platform.Loop.Post.
package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/ring"
	"github.com/lmburns/lwm/internal/tree"
)

var (
	ErrNoFocus   = errors.New("no focused window")
	ErrLocked    = errors.New("node is locked")
	ErrNoTarget  = errors.New("selector matched nothing")
	ErrNoDesktop = errors.New("no such desktop")
	ErrNoMonitor = errors.New("no such monitor")
)

var allFlags = []tree.Flag{tree.FlagHidden, tree.FlagSticky, tree.FlagPrivate, tree.FlagLocked, tree.FlagMarked}

type Manager struct {
	backend platform.Backend
	log     *slog.Logger
	cfg     *config.Config

	Monitors *ring.Ring[*Monitor]

	clients   map[platform.Window]*Client
	where     map[platform.Window]*Desktop
	unmanaged map[platform.Window]struct{}
	// spent holds the indices of one-shot rules that already fired.
	spent  map[int]bool
	nextID uint32

	onReload func() error
	onQuit   func()
}

func New(backend platform.Backend, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Manager{
		backend:   backend,
		log:       logger,
		cfg:       cfg,
		Monitors:  ring.New[*Monitor](nil, true),
		clients:   make(map[platform.Window]*Client),
		where:     make(map[platform.Window]*Desktop),
		unmanaged: make(map[platform.Window]struct{}),
		spent:     make(map[int]bool),
	}
}

// SetControl installs the handlers behind the reload and quit commands.
func (m *Manager) SetControl(reload func() error, quit func()) {
	m.onReload = reload
	m.onQuit = quit
}

// Config returns the configuration in effect. It must not be modified.
func (m *Manager) Config() *config.Config { return m.cfg }

// Setup discovers monitors, creates their desktops and adopts windows that
// were already mapped.
func (m *Manager) Setup() error {
	mons, err := m.backend.Monitors()
	if err != nil {
		return fmt.Errorf("failed to query monitors: %w", err)
	}
	if len(mons) == 0 {
		return fmt.Errorf("no monitors found")
	}
	for i, pm := range mons {
		names := []string{monitorName(pm, i)}
		if i == 0 {
			names = m.cfg.Desktops
		}
		m.addMonitor(pm, i, names)
	}
	m.Monitors.FocusFor(ring.First)
	m.Monitors.ClearHistory()

	wins, err := m.backend.ExistingWindows()
	if err != nil {
		m.log.Warn("failed to list existing windows", "error", err)
	}
	for _, w := range wins {
		m.manage(w, true)
	}

	m.arrangeAll()
	m.refocus()
	m.publishDesktops()
	m.log.Info("window manager ready",
		"monitors", m.Monitors.Len(),
		"desktops", len(m.desktops()),
		"clients", len(m.clients))
	return nil
}

func monitorName(pm platform.Monitor, i int) string {
	if pm.Name != "" {
		return pm.Name
	}
	return "monitor" + strconv.Itoa(i+1)
}

func (m *Manager) newID() uint32 {
	m.nextID++
	return m.nextID
}

func (m *Manager) addMonitor(pm platform.Monitor, i int, names []string) *Monitor {
	usable := pm.Usable
	if usable.IsZero() {
		usable = pm.Bounds
	}
	mon := &Monitor{
		id:       m.newID(),
		Name:     monitorName(pm, i),
		Bounds:   pm.Bounds,
		Rect:     usable,
		Padding:  m.cfg.Padding,
		Desktops: ring.New[*Desktop](nil, true),
	}
	for _, name := range names {
		mon.Desktops.PushBack(newDesktop(m.newID(), name, m.cfg))
	}
	mon.Desktops.FocusFor(ring.First)
	mon.Desktops.ClearHistory()
	m.Monitors.PushBack(mon)
	return mon
}

// Reload swaps in a new configuration. Tree policies, gaps, borders and
// padding are reset to the configured values and desktops named in the
// config that do not exist yet are added to the first monitor.
func (m *Manager) Reload(cfg *config.Config) {
	m.cfg = cfg
	m.spent = make(map[int]bool)
	for _, mon := range m.Monitors.Elements() {
		mon.Padding = cfg.Padding
		for _, d := range mon.Desktops.Elements() {
			d.Tree.SetSettings(cfg.TreeSettings())
			d.WindowGap = cfg.WindowGap
			d.BorderWidth = cfg.BorderWidth
		}
	}
	if first, ok := m.Monitors.GetFor(ring.First); ok {
		shown, _ := first.Desktop()
		for _, name := range cfg.Desktops {
			if _, _, ok := m.desktopByName(name); !ok {
				first.Desktops.PushBack(newDesktop(m.newID(), name, cfg))
			}
		}
		if shown != nil {
			first.Desktops.FocusFor(ring.Ident(shown.ID()))
		}
	}
	m.arrangeAll()
	m.refocus()
	m.publishDesktops()
	m.log.Info("configuration reloaded")
}

// UpdateMonitors re-reads the outputs after a screen change. Monitors are
// matched by name; desktops of vanished monitors move to the first one.
func (m *Manager) UpdateMonitors() error {
	mons, err := m.backend.Monitors()
	if err != nil {
		return fmt.Errorf("failed to query monitors: %w", err)
	}
	if len(mons) == 0 {
		return fmt.Errorf("no monitors found")
	}

	seen := make(map[uint32]bool)
	for i, pm := range mons {
		name := monitorName(pm, i)
		if mon, ok := m.Monitors.GetFor(ring.Condition(ring.Query{Field: "name", Value: name})); ok {
			mon.Bounds = pm.Bounds
			mon.Rect = pm.Usable
			if mon.Rect.IsZero() {
				mon.Rect = pm.Bounds
			}
			seen[mon.ID()] = true
			continue
		}
		focused, hadFocus := m.Monitors.Focused()
		mon := m.addMonitor(pm, i, []string{name})
		seen[mon.ID()] = true
		if hadFocus {
			m.Monitors.FocusFor(ring.Ident(focused.ID()))
		}
		m.log.Info("monitor added", "name", name, "bounds", pm.Bounds.String())
	}

	for _, mon := range m.Monitors.Elements() {
		if seen[mon.ID()] {
			continue
		}
		m.Monitors.RemoveFor(ring.Ident(mon.ID()))
		dst, ok := m.Monitors.GetFor(ring.First)
		if !ok {
			break
		}
		shown, _ := dst.Desktop()
		for _, d := range mon.Desktops.Elements() {
			dst.Desktops.InsertAt(ring.Back, d)
			m.hideDesktop(d)
		}
		if shown != nil {
			dst.Desktops.FocusFor(ring.Ident(shown.ID()))
		}
		m.log.Info("monitor removed", "name", mon.Name, "desktops_moved", mon.Desktops.Len())
	}

	m.arrangeAll()
	m.refocus()
	m.publishDesktops()
	return nil
}

// desktops lists every desktop, monitor by monitor. The position in this
// list is the EWMH desktop index.
func (m *Manager) desktops() []*Desktop {
	var out []*Desktop
	for _, mon := range m.Monitors.Elements() {
		out = append(out, mon.Desktops.Elements()...)
	}
	return out
}

func (m *Manager) desktopIndex(d *Desktop) int {
	for i, x := range m.desktops() {
		if x == d {
			return i
		}
	}
	return -1
}

func (m *Manager) monitorOf(d *Desktop) *Monitor {
	for _, mon := range m.Monitors.Elements() {
		if mon.Desktops.Contains(ring.Ident(d.ID())) {
			return mon
		}
	}
	return nil
}

func (m *Manager) desktopByName(name string) (*Monitor, *Desktop, bool) {
	for _, mon := range m.Monitors.Elements() {
		for _, d := range mon.Desktops.Elements() {
			if d.Name == name {
				return mon, d, true
			}
		}
	}
	return nil, nil, false
}

// findDesktop resolves a desktop name, then a 1-based global index.
func (m *Manager) findDesktop(sel string) (*Monitor, *Desktop, bool) {
	if mon, d, ok := m.desktopByName(sel); ok {
		return mon, d, true
	}
	n, err := strconv.Atoi(sel)
	if err != nil {
		return nil, nil, false
	}
	all := m.desktops()
	if n < 1 || n > len(all) {
		return nil, nil, false
	}
	d := all[n-1]
	return m.monitorOf(d), d, true
}

func (m *Manager) focusedDesktop() (*Monitor, *Desktop, bool) {
	mon, ok := m.Monitors.Focused()
	if !ok {
		return nil, nil, false
	}
	d, ok := mon.Desktop()
	if !ok {
		return nil, nil, false
	}
	return mon, d, true
}

func (m *Manager) focusedClient() (*Monitor, *Desktop, *Client, bool) {
	mon, d, ok := m.focusedDesktop()
	if !ok {
		return nil, nil, nil, false
	}
	c, ok := d.Focused()
	if !ok {
		return mon, d, nil, false
	}
	return mon, d, c, true
}

// locate finds the client for w together with its desktop and monitor.
func (m *Manager) locate(w platform.Window) (*Monitor, *Desktop, *Client, bool) {
	c, ok := m.clients[w]
	if !ok {
		return nil, nil, nil, false
	}
	d := m.where[w]
	return m.monitorOf(d), d, c, true
}

// Client returns the managed client for w.
func (m *Manager) Client(w platform.Window) (*Client, bool) {
	c, ok := m.clients[w]
	return c, ok
}

func (m *Manager) flags(d *Desktop, c *Client) tree.Flags {
	n, _ := d.Tree.Node(d.leaf(c))
	return n.Flags
}

func (m *Manager) logErr(action string, err error) {
	if err != nil {
		m.log.Warn("backend call failed", "action", action, "error", err)
	}
}
