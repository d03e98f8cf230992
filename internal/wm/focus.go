package wm

import (
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/ring"
)

// focusClient gives c input focus, showing its desktop and focusing its
// monitor first when needed.
func (m *Manager) focusClient(mon *Monitor, d *Desktop, c *Client) {
	if !mon.shows(d) {
		m.showDesktop(mon, d)
	}
	m.Monitors.FocusFor(ring.Ident(mon.ID()))
	d.Clients.FocusFor(ring.Ident(c.ID()))
	if m.flags(d, c).Hidden {
		m.focusNone()
		return
	}
	if c.Urgent {
		c.Urgent = false
		m.publishStates(d, c)
	}

	m.logErr("focus", m.backend.Focus(c.Window))
	m.logErr("publish active", m.backend.PublishActive(c.Window))
	m.paintVisible()
	m.restack(d)
	m.publishDesktops()
	if m.cfg.PointerFollowsFocus {
		m.warpTo(c)
	}
}

func (m *Manager) warpTo(c *Client) {
	p, err := m.backend.Pointer()
	if err == nil && c.Rect.IsInside(p) {
		return
	}
	m.logErr("warp pointer", m.backend.WarpPointer(c.Rect.Center()))
}

func (m *Manager) focusNone() {
	m.logErr("focus", m.backend.Focus(platform.None))
	m.logErr("publish active", m.backend.PublishActive(platform.None))
	m.paintVisible()
}

// refocus re-applies focus to the focused client of the focused desktop,
// skipping hidden clients.
func (m *Manager) refocus() {
	mon, d, ok := m.focusedDesktop()
	if !ok {
		m.focusNone()
		return
	}
	if c, ok := d.Focused(); ok && !m.flags(d, c).Hidden {
		m.focusClient(mon, d, c)
		return
	}
	clients := d.Clients.Elements()
	for i := len(clients) - 1; i >= 0; i-- {
		if !m.flags(d, clients[i]).Hidden {
			m.focusClient(mon, d, clients[i])
			return
		}
	}
	m.focusNone()
	m.publishDesktops()
}

// showDesktop makes d the desktop shown on mon. Sticky clients of the
// previous desktop move along.
func (m *Manager) showDesktop(mon *Monitor, d *Desktop) {
	old, hadOld := mon.Desktop()
	if hadOld && old == d {
		return
	}
	mon.Desktops.FocusFor(ring.Ident(d.ID()))
	if hadOld {
		for _, c := range old.Clients.Elements() {
			if m.flags(old, c).Sticky {
				m.transfer(c, old, d)
			}
		}
	}
	m.arrange(mon, d)
	if hadOld {
		m.arrange(mon, old)
	}
	m.log.Debug("desktop shown", "monitor", mon.Name, "desktop", d.Name)
}

// focusDesktop shows d on its monitor and focuses both.
func (m *Manager) focusDesktop(mon *Monitor, d *Desktop) {
	m.showDesktop(mon, d)
	m.Monitors.FocusFor(ring.Ident(mon.ID()))
	m.refocus()
	m.publishDesktops()
}

func (m *Manager) focusMonitor(mon *Monitor) {
	m.Monitors.FocusFor(ring.Ident(mon.ID()))
	m.refocus()
	if m.cfg.PointerFollowsFocus {
		if _, _, _, ok := m.focusedClient(); !ok {
			m.logErr("warp pointer", m.backend.WarpPointer(mon.Rect.Center()))
		}
	}
}

func (m *Manager) publishDesktops() {
	all := m.desktops()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	current := 0
	if _, d, ok := m.focusedDesktop(); ok {
		current = m.desktopIndex(d)
	}
	m.logErr("publish desktops", m.backend.PublishDesktops(names, current))
}

func (m *Manager) publishClientList() {
	var ws []platform.Window
	for _, d := range m.desktops() {
		for _, c := range d.Clients.Elements() {
			ws = append(ws, c.Window)
		}
	}
	m.logErr("publish client list", m.backend.PublishClientList(ws))
}

// publishStates mirrors a client's state into _NET_WM_STATE.
func (m *Manager) publishStates(d *Desktop, c *Client) {
	var states []string
	if c.State == Fullscreen {
		states = append(states, "_NET_WM_STATE_FULLSCREEN")
	}
	switch c.Layer {
	case Above:
		states = append(states, "_NET_WM_STATE_ABOVE")
	case Below:
		states = append(states, "_NET_WM_STATE_BELOW")
	}
	f := m.flags(d, c)
	if f.Sticky {
		states = append(states, "_NET_WM_STATE_STICKY")
	}
	if f.Hidden {
		states = append(states, "_NET_WM_STATE_HIDDEN")
	}
	if c.Urgent {
		states = append(states, "_NET_WM_STATE_DEMANDS_ATTENTION")
	}
	m.logErr("set window states", m.backend.SetWindowStates(c.Window, states))
}
