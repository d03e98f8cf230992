package wm

import (
	"cmp"
	"slices"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/tree"
)

func (m *Manager) arrangeAll() {
	for _, mon := range m.Monitors.Elements() {
		for _, d := range mon.Desktops.Elements() {
			if !mon.shows(d) {
				m.arrange(mon, d)
			}
		}
	}
	for _, mon := range m.Monitors.Elements() {
		if d, ok := mon.Desktop(); ok {
			m.arrange(mon, d)
		}
	}
}

// arrangeDesktop re-lays d on whatever monitor holds it.
func (m *Manager) arrangeDesktop(d *Desktop) {
	m.arrange(m.monitorOf(d), d)
}

// arrange lays out d and applies geometry, visibility, presel feedback,
// borders and stacking. Desktops that are not shown are hidden instead.
func (m *Manager) arrange(mon *Monitor, d *Desktop) {
	if mon == nil || d == nil {
		return
	}
	if !mon.shows(d) {
		m.hideDesktop(d)
		return
	}

	area := mon.Area().Sub(d.Padding)
	d.Tree.UpdateConstraints()
	var placements []tree.Placement
	if d.Layout == LayoutMonocle || (m.cfg.SingleMonocle && d.tiledCount() == 1) {
		placements = d.Tree.Monocle(area)
	} else {
		placements = d.Tree.Layout(area.Sub(geometry.Uniform(d.WindowGap)), d.WindowGap)
	}
	cells := make(map[platform.Window]geometry.Rectangle, len(placements))
	for _, p := range placements {
		cells[platform.Window(p.Window)] = p.Rect
	}

	for _, c := range d.Clients.Elements() {
		if m.flags(d, c).Hidden {
			m.hideClient(c)
			continue
		}
		r, border := clientGeometry(mon, d, c, cells)
		m.configure(c, r, border)
		m.showClient(c)
	}
	m.drawPresels(d)
	m.paintBorders(mon, d)
	m.restack(d)
}

// clientGeometry is the outer rectangle and border width of c.
func clientGeometry(mon *Monitor, d *Desktop, c *Client, cells map[platform.Window]geometry.Rectangle) (geometry.Rectangle, uint) {
	switch c.State {
	case Fullscreen:
		return mon.Bounds, 0
	case Floating:
		return c.FloatingRect, d.BorderWidth
	case PseudoTiled:
		cell := cells[c.Window]
		w := min(c.FloatingRect.W, cell.W)
		h := min(c.FloatingRect.H, cell.H)
		return geometry.Rect(cell.X+int(cell.W-w)/2, cell.Y+int(cell.H-h)/2, w, h), d.BorderWidth
	default:
		return cells[c.Window], d.BorderWidth
	}
}

func (m *Manager) configure(c *Client, r geometry.Rectangle, border uint) {
	if c.Rect == r && c.border == border {
		return
	}
	c.Rect = r
	c.border = border
	m.logErr("apply geometry", m.backend.ApplyGeometry(c.Window, r, border))
}

func (m *Manager) showClient(c *Client) {
	if c.shown {
		return
	}
	c.shown = true
	m.logErr("map", m.backend.Map(c.Window))
}

// hideClient unmaps c. The UnmapNotify this causes is not a withdrawal.
func (m *Manager) hideClient(c *Client) {
	if !c.shown {
		return
	}
	c.shown = false
	c.ignoreUnmap++
	m.logErr("unmap", m.backend.Unmap(c.Window))
}

func (m *Manager) hideDesktop(d *Desktop) {
	for _, c := range d.Clients.Elements() {
		m.hideClient(c)
	}
	for _, id := range d.Tree.Leaves() {
		n, _ := d.Tree.Node(id)
		if n.Presel != nil && n.Presel.Feedback != 0 {
			m.logErr("hide feedback", m.backend.HideFeedback(platform.Window(n.Presel.Feedback)))
			d.Tree.SetPreselFeedback(id, 0)
		}
	}
}

// drawPresels shows, moves or removes the feedback window of every presel
// on d.
func (m *Manager) drawPresels(d *Desktop) {
	for _, id := range d.Tree.Leaves() {
		n, _ := d.Tree.Node(id)
		if n.Presel == nil {
			continue
		}
		fb := platform.Window(n.Presel.Feedback)
		if !m.cfg.PreselFeedback || n.Hidden {
			if fb != platform.None {
				m.logErr("hide feedback", m.backend.HideFeedback(fb))
				d.Tree.SetPreselFeedback(id, 0)
			}
			continue
		}
		area, _ := d.Tree.PreselArea(id)
		if fb != platform.None {
			m.logErr("move feedback", m.backend.ApplyGeometry(fb, area, 0))
			continue
		}
		w, err := m.backend.ShowFeedback(area, uint32(m.cfg.Colors.PreselFeedback))
		if err != nil {
			m.logErr("show feedback", err)
			continue
		}
		d.Tree.SetPreselFeedback(id, uint32(w))
	}
}

// paintBorders colours the focused client of d as focused when mon has
// input focus and as active otherwise. Other clients get the normal colour.
func (m *Manager) paintBorders(mon *Monitor, d *Desktop) {
	focusedMon, _ := m.Monitors.Focused()
	fc, hasFocus := d.Focused()
	for _, c := range d.Clients.Elements() {
		color := m.cfg.Colors.Normal
		if hasFocus && c == fc {
			color = m.cfg.Colors.Active
			if mon == focusedMon {
				color = m.cfg.Colors.Focused
			}
		}
		m.logErr("set border color", m.backend.SetBorderColor(c.Window, uint32(color)))
	}
}

func (m *Manager) paintVisible() {
	for _, mon := range m.Monitors.Elements() {
		if d, ok := mon.Desktop(); ok {
			m.paintBorders(mon, d)
		}
	}
}

func (m *Manager) restack(d *Desktop) {
	if d.Clients.IsEmpty() {
		return
	}
	m.logErr("restack", m.backend.Restack(StackingList(d)))
}

// stackRank orders states within a layer.
func stackRank(s ClientState) int {
	switch s {
	case Floating:
		return 1
	case Fullscreen:
		return 2
	default:
		return 0
	}
}

// StackingList returns the clients of d from bottom to top: by layer, then
// tiled below floating below fullscreen, then ring order with the focused
// client last.
func StackingList(d *Desktop) []platform.Window {
	order := d.Clients.StackAfterFocus()
	rank := make(map[uint32]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	clients := d.Clients.Elements()
	slices.SortStableFunc(clients, func(a, b *Client) int {
		if c := cmp.Compare(a.Layer, b.Layer); c != 0 {
			return c
		}
		if c := cmp.Compare(stackRank(a.State), stackRank(b.State)); c != 0 {
			return c
		}
		return cmp.Compare(rank[a.ID()], rank[b.ID()])
	})
	out := make([]platform.Window, len(clients))
	for i, c := range clients {
		out[i] = c.Window
	}
	return out
}
