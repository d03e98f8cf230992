package wm

import (
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/ring"
	"github.com/lmburns/lwm/internal/tree"
)

// defaultFloatSize is used for floating windows that map with no size.
var defaultFloatSize = geometry.Dimension{W: 640, H: 480}

// manage adopts a top-level window. mapped is true for windows that were
// already visible when the manager started.
func (m *Manager) manage(w platform.Window, mapped bool) {
	if _, ok := m.clients[w]; ok {
		return
	}
	if _, ok := m.unmanaged[w]; ok {
		m.logErr("map", m.backend.Map(w))
		return
	}

	id, err := m.backend.WindowIdentity(w)
	if err != nil {
		m.log.Warn("failed to read window identity", "window", w, "error", err)
	}
	csq := applyRules(m.cfg.Rules, id, m.spent)
	mon, d, ok := m.focusedDesktop()
	if !csq.Manage || !ok {
		m.unmanaged[w] = struct{}{}
		m.logErr("map", m.backend.Map(w))
		m.log.Debug("window left unmanaged", "window", w, "class", id.Class)
		return
	}
	if csq.Desktop != "" {
		if tm, td, found := m.findDesktop(csq.Desktop); found {
			mon, d = tm, td
		} else {
			m.log.Warn("rule names an unknown desktop", "desktop", csq.Desktop, "class", id.Class)
		}
	}

	c := newClient(w, id)
	c.Layer = csq.Layer
	c.State = csq.State
	c.shown = mapped
	if r, err := m.backend.QueryGeometry(w); err == nil {
		c.FloatingRect = r
	}
	c.FloatingRect = placeFloating(c.FloatingRect, mon)
	m.logErr("manage", m.backend.Manage(w))

	leaf := m.insertLeaf(d, c)
	d.Tree.SetConstraints(leaf, tree.Constraints{MinW: id.MinSize.W, MinH: id.MinSize.H})
	for _, f := range csq.Flags {
		d.Tree.SetFlag(leaf, f, true)
	}
	d.Tree.SetDetached(leaf, c.State.detached())

	prev, hadPrev := d.Focused()
	d.Clients.InsertAt(ring.AfterFocused, c)
	if !csq.Focus && hadPrev {
		d.Clients.FocusFor(ring.Ident(prev.ID()))
	}
	m.clients[w] = c
	m.where[w] = d

	m.log.Debug("window managed",
		"window", w,
		"class", c.Class,
		"desktop", d.Name,
		"state", c.State.String())

	m.logErr("set desktop", m.backend.SetWindowDesktop(w, m.desktopIndex(d)))
	m.publishStates(d, c)
	m.publishClientList()

	focusedMon, _ := m.Monitors.Focused()
	m.arrange(mon, d)
	if csq.Focus && (csq.Follow || (mon == focusedMon && mon.shows(d))) {
		m.focusClient(mon, d, c)
	}
}

// insertLeaf adds c to d's tree next to the focused leaf, skipping private
// leaves, and drops any presel feedback the insertion consumed.
func (m *Manager) insertLeaf(d *Desktop, c *Client) tree.NodeID {
	target := tree.NoNode
	if f, ok := d.Focused(); ok {
		target = d.leaf(f)
	}
	if n, ok := d.Tree.Node(target); ok && n.Private {
		target = tree.NoNode
		for _, id := range d.Tree.Leaves() {
			if n, _ := d.Tree.Node(id); !n.Private && !n.Vacant {
				target = id
				break
			}
		}
	}
	var feedback uint32
	if n, ok := d.Tree.Node(target); ok && n.Presel != nil {
		feedback = n.Presel.Feedback
	}
	leaf := d.Tree.Insert(target, uint32(c.Window))
	if feedback != 0 {
		m.logErr("hide feedback", m.backend.HideFeedback(platform.Window(feedback)))
	}
	return leaf
}

// placeFloating gives a floating rectangle a size and centres it on mon
// unless it already lies on it.
func placeFloating(r geometry.Rectangle, mon *Monitor) geometry.Rectangle {
	if r.W == 0 || r.H == 0 {
		r.Dimension = defaultFloatSize
	}
	if (r.X == 0 && r.Y == 0) || !mon.Bounds.Contains(r) {
		c := mon.Rect.Center()
		r.X = c.X - int(r.W)/2
		r.Y = c.Y - int(r.H)/2
	}
	return r
}

// unmanage forgets w after it was unmapped or destroyed.
func (m *Manager) unmanage(w platform.Window) {
	if _, ok := m.unmanaged[w]; ok {
		delete(m.unmanaged, w)
		return
	}
	mon, d, c, ok := m.locate(w)
	if !ok {
		return
	}
	m.detach(d, c)
	delete(m.clients, w)
	delete(m.where, w)
	m.log.Debug("window unmanaged", "window", w, "class", c.Class)
	m.publishClientList()

	m.arrange(mon, d)
	if focusedMon, _ := m.Monitors.Focused(); focusedMon == mon && mon.shows(d) {
		m.refocus()
	}
}

// detach removes c from d's tree and focus ring.
func (m *Manager) detach(d *Desktop, c *Client) {
	leaf := d.leaf(c)
	if fb, ok := d.Tree.CancelPresel(leaf); ok && fb != 0 {
		m.logErr("hide feedback", m.backend.HideFeedback(platform.Window(fb)))
	}
	if err := d.Tree.Remove(leaf); err != nil {
		m.log.Error("failed to remove leaf", "window", c.Window, "error", err)
	}
	d.Clients.RemoveFor(ring.Ident(c.ID()))
}

// transfer moves c, with its flags and constraints, from one desktop to
// another. Neither desktop is re-arranged.
func (m *Manager) transfer(c *Client, from, to *Desktop) {
	if from == to {
		return
	}
	node, _ := from.Tree.Node(from.leaf(c))
	m.detach(from, c)

	leaf := m.insertLeaf(to, c)
	to.Tree.SetConstraints(leaf, node.Constraints)
	for _, f := range allFlags {
		if node.Flags.Get(f) {
			to.Tree.SetFlag(leaf, f, true)
		}
	}
	to.Tree.SetDetached(leaf, c.State.detached())
	to.Clients.InsertAt(ring.AfterFocused, c)
	m.where[c.Window] = to
	m.logErr("set desktop", m.backend.SetWindowDesktop(c.Window, m.desktopIndex(to)))
}
