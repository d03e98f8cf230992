package wm

import (
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/tree"
)

// Handle reacts to one window system event. Backend failures are logged;
// the event is applied as far as possible.
func (m *Manager) Handle(ev platform.Event) {
	defer func() {
		if err := recover(); err != nil {
			m.log.Error("event handler panic recovered", "event", ev.Kind.String(), "window", ev.Window, "error", err)
		}
	}()

	switch ev.Kind {
	case platform.MapRequest:
		m.onMapRequest(ev.Window)
	case platform.UnmapNotify:
		m.onUnmap(ev.Window)
	case platform.DestroyNotify:
		m.unmanage(ev.Window)
	case platform.ConfigureRequest:
		m.onConfigureRequest(ev)
	case platform.FocusIn:
		m.onFocusIn(ev.Window)
	case platform.EnterNotify:
		m.onEnter(ev.Window)
	case platform.PropertyNotify:
		m.onProperty(ev.Window, ev.Property)
	case platform.StateRequest:
		m.onStateRequest(ev)
	case platform.ActivateRequest:
		if mon, d, c, ok := m.locate(ev.Window); ok {
			m.focusClient(mon, d, c)
		}
	case platform.CloseRequest:
		if _, _, c, ok := m.locate(ev.Window); ok {
			m.logErr("close", m.backend.Close(c.Window))
		}
	case platform.DesktopRequest:
		m.onDesktopRequest(ev)
	case platform.ScreenChange:
		if err := m.UpdateMonitors(); err != nil {
			m.log.Error("failed to update monitors", "error", err)
		}
	case platform.KeyCommand:
		if err := m.Run(ev.Command); err != nil {
			m.log.Warn("command failed", "command", ev.Command, "error", err)
		}
	default:
		m.log.Debug("ignoring event", "event", ev.Kind.String())
	}
}

func (m *Manager) onMapRequest(w platform.Window) {
	if mon, d, c, ok := m.locate(w); ok {
		// A hidden client asking to be shown again.
		if mon.shows(d) && !m.flags(d, c).Hidden {
			m.showClient(c)
		}
		return
	}
	m.manage(w, false)
}

func (m *Manager) onUnmap(w platform.Window) {
	if c, ok := m.clients[w]; ok && c.ignoreUnmap > 0 {
		c.ignoreUnmap--
		return
	}
	m.unmanage(w)
}

// onConfigureRequest lets floating and unmanaged windows move themselves.
// Tiled windows are told their current geometry instead.
func (m *Manager) onConfigureRequest(ev platform.Event) {
	mon, d, c, ok := m.locate(ev.Window)
	if !ok {
		r := ev.Rect
		r.W += 2 * ev.Border
		r.H += 2 * ev.Border
		m.logErr("apply geometry", m.backend.ApplyGeometry(ev.Window, r, ev.Border))
		return
	}
	if c.State == Floating {
		r := ev.Rect
		r.W += 2 * d.BorderWidth
		r.H += 2 * d.BorderWidth
		c.FloatingRect = r
		if mon.shows(d) {
			m.configure(c, r, d.BorderWidth)
		}
		return
	}
	if c.State == PseudoTiled {
		c.FloatingRect.Dimension = geometry.Dimension{W: ev.Rect.W + 2*d.BorderWidth, H: ev.Rect.H + 2*d.BorderWidth}
		m.arrange(mon, d)
	}
	m.logErr("confirm geometry", m.backend.ConfirmGeometry(c.Window, c.Rect, c.border))
}

// onFocusIn takes focus back from clients that grabbed it themselves.
func (m *Manager) onFocusIn(w platform.Window) {
	_, _, fc, ok := m.focusedClient()
	if !ok || fc.Window == w {
		return
	}
	if _, managed := m.clients[w]; !managed {
		return
	}
	m.logErr("focus", m.backend.Focus(fc.Window))
}

func (m *Manager) onEnter(w platform.Window) {
	if !m.cfg.FocusFollowsPointer {
		return
	}
	mon, d, c, ok := m.locate(w)
	if !ok {
		return
	}
	if _, _, fc, ok := m.focusedClient(); ok && fc == c {
		return
	}
	if mon.shows(d) {
		m.focusClient(mon, d, c)
	}
}

func (m *Manager) onProperty(w platform.Window, prop string) {
	mon, d, c, ok := m.locate(w)
	if !ok {
		return
	}
	switch prop {
	case "WM_NAME", "_NET_WM_NAME", "WM_HINTS", "WM_NORMAL_HINTS", "WM_CLASS":
	default:
		return
	}
	id, err := m.backend.WindowIdentity(w)
	if err != nil {
		m.log.Debug("failed to refresh window identity", "window", w, "error", err)
		return
	}
	switch prop {
	case "WM_NAME", "_NET_WM_NAME":
		c.Name = id.Name
	case "WM_CLASS":
		c.Class, c.Instance = id.Class, id.Instance
	case "WM_HINTS":
		if _, _, fc, ok := m.focusedClient(); ok && fc == c {
			return
		}
		if c.Urgent != id.Urgent {
			c.Urgent = id.Urgent
			m.publishStates(d, c)
		}
	case "WM_NORMAL_HINTS":
		if c.MinSize != id.MinSize {
			c.MinSize = id.MinSize
			d.Tree.SetConstraints(d.leaf(c), tree.Constraints{MinW: id.MinSize.W, MinH: id.MinSize.H})
			m.arrange(mon, d)
		}
	}
}

func actionToggle(a platform.StateAction) Toggle {
	switch a {
	case platform.StateAdd:
		return On
	case platform.StateRemove:
		return Off
	default:
		return Invert
	}
}

func (m *Manager) onStateRequest(ev platform.Event) {
	mon, d, c, ok := m.locate(ev.Window)
	if !ok {
		return
	}
	t := actionToggle(ev.Action)
	for _, s := range ev.States {
		switch s {
		case "_NET_WM_STATE_FULLSCREEN":
			if t.Eval(c.State == Fullscreen) {
				m.setState(mon, d, c, Fullscreen)
			} else if c.State == Fullscreen {
				m.setState(mon, d, c, c.LastState)
			}
		case "_NET_WM_STATE_ABOVE":
			m.setLayer(d, c, t, Above)
		case "_NET_WM_STATE_BELOW":
			m.setLayer(d, c, t, Below)
		case "_NET_WM_STATE_STICKY":
			m.setFlag(mon, d, c, tree.FlagSticky, t)
		case "_NET_WM_STATE_HIDDEN":
			m.setFlag(mon, d, c, tree.FlagHidden, t)
		case "_NET_WM_STATE_DEMANDS_ATTENTION":
			c.Urgent = t.Eval(c.Urgent)
			m.publishStates(d, c)
		}
	}
}

func (m *Manager) setLayer(d *Desktop, c *Client, t Toggle, l StackLayer) {
	switch {
	case t.Eval(c.Layer == l):
		c.Layer = l
	case c.Layer == l:
		c.Layer = Normal
	default:
		return
	}
	m.publishStates(d, c)
	m.restack(d)
}

func (m *Manager) onDesktopRequest(ev platform.Event) {
	all := m.desktops()
	if ev.Desktop < 0 || ev.Desktop >= len(all) {
		m.log.Debug("desktop request out of range", "desktop", ev.Desktop)
		return
	}
	d := all[ev.Desktop]
	if ev.Window == platform.None {
		m.focusDesktop(m.monitorOf(d), d)
		return
	}
	if _, from, c, ok := m.locate(ev.Window); ok {
		m.sendToDesktop(c, from, d, false)
	}
}
