package wm

import (
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/tree"
)

// State is a read-only copy of the manager's model.
type State struct {
	FocusedMonitor string         `json:"focused_monitor"`
	FocusedDesktop string         `json:"focused_desktop"`
	FocusedWindow  uint32         `json:"focused_window,omitempty"`
	Monitors       []MonitorState `json:"monitors"`
}

type MonitorState struct {
	ID             uint32             `json:"id"`
	Name           string             `json:"name"`
	Bounds         geometry.Rectangle `json:"bounds"`
	Rect           geometry.Rectangle `json:"rectangle"`
	Padding        geometry.Padding   `json:"padding"`
	Focused        bool               `json:"focused"`
	FocusedDesktop string             `json:"focused_desktop"`
	Desktops       []DesktopState     `json:"desktops"`
}

type DesktopState struct {
	ID            uint32           `json:"id"`
	Index         int              `json:"index"`
	Name          string           `json:"name"`
	Monitor       string           `json:"monitor"`
	Layout        Layout           `json:"layout"`
	Shown         bool             `json:"shown"`
	Focused       bool             `json:"focused"`
	WindowGap     uint             `json:"window_gap"`
	BorderWidth   uint             `json:"border_width"`
	Padding       geometry.Padding `json:"padding"`
	FocusedWindow uint32           `json:"focused_window,omitempty"`
	Root          *NodeState       `json:"root,omitempty"`
	Clients       []ClientInfo     `json:"clients"`
}

// NodeState is one node of a desktop tree with its children inlined.
type NodeState struct {
	ID          tree.NodeID        `json:"id"`
	SplitType   tree.SplitType     `json:"split_type"`
	SplitRatio  float64            `json:"split_ratio"`
	Rect        geometry.Rectangle `json:"rectangle"`
	Constraints tree.Constraints   `json:"constraints"`
	Vacant      bool               `json:"vacant"`
	Flags       tree.Flags         `json:"flags"`
	Presel      *tree.Presel       `json:"presel,omitempty"`
	Window      uint32             `json:"window,omitempty"`
	Client      *ClientInfo        `json:"client,omitempty"`
	First       *NodeState         `json:"first_child,omitempty"`
	Second      *NodeState         `json:"second_child,omitempty"`
}

// IsLeaf reports whether the node holds a window.
func (n *NodeState) IsLeaf() bool {
	return n.First == nil && n.Second == nil
}

type ClientInfo struct {
	Window       uint32             `json:"window"`
	Class        string             `json:"class"`
	Instance     string             `json:"instance"`
	Name         string             `json:"name"`
	Process      string             `json:"process,omitempty"`
	PID          int                `json:"pid,omitempty"`
	State        ClientState        `json:"state"`
	LastState    ClientState        `json:"last_state"`
	Layer        StackLayer         `json:"layer"`
	Urgent       bool               `json:"urgent"`
	Focused      bool               `json:"focused"`
	Shown        bool               `json:"shown"`
	Flags        tree.Flags         `json:"flags"`
	Rect         geometry.Rectangle `json:"rectangle"`
	FloatingRect geometry.Rectangle `json:"floating_rectangle"`
	Desktop      string             `json:"desktop"`
	Monitor      string             `json:"monitor"`
}

// Snapshot copies the current model.
func (m *Manager) Snapshot() State {
	var st State
	fm, fd, fc, _ := m.focusedClient()
	if fm != nil {
		st.FocusedMonitor = fm.Name
	}
	if fd != nil {
		st.FocusedDesktop = fd.Name
	}
	if fc != nil {
		st.FocusedWindow = uint32(fc.Window)
	}

	index := 0
	for _, mon := range m.Monitors.Elements() {
		ms := MonitorState{
			ID:      mon.ID(),
			Name:    mon.Name,
			Bounds:  mon.Bounds,
			Rect:    mon.Rect,
			Padding: mon.Padding,
			Focused: mon == fm,
		}
		if d, ok := mon.Desktop(); ok {
			ms.FocusedDesktop = d.Name
		}
		for _, d := range mon.Desktops.Elements() {
			ms.Desktops = append(ms.Desktops, m.desktopState(mon, d, index, fd, fc))
			index++
		}
		st.Monitors = append(st.Monitors, ms)
	}
	return st
}

func (m *Manager) desktopState(mon *Monitor, d *Desktop, index int, fd *Desktop, fc *Client) DesktopState {
	ds := DesktopState{
		ID:          d.ID(),
		Index:       index,
		Name:        d.Name,
		Monitor:     mon.Name,
		Layout:      d.Layout,
		Shown:       mon.shows(d),
		Focused:     d == fd,
		WindowGap:   d.WindowGap,
		BorderWidth: d.BorderWidth,
		Padding:     d.Padding,
		Clients:     []ClientInfo{},
	}
	if c, ok := d.Focused(); ok {
		ds.FocusedWindow = uint32(c.Window)
	}
	infos := make(map[platform.Window]*ClientInfo)
	for _, c := range d.Clients.Elements() {
		ds.Clients = append(ds.Clients, m.clientInfo(mon, d, c, c == fc))
	}
	for i := range ds.Clients {
		infos[platform.Window(ds.Clients[i].Window)] = &ds.Clients[i]
	}
	ds.Root = nodeState(d.Tree, d.Tree.Root(), infos)
	return ds
}

func (m *Manager) clientInfo(mon *Monitor, d *Desktop, c *Client, focused bool) ClientInfo {
	return ClientInfo{
		Window:       uint32(c.Window),
		Class:        c.Class,
		Instance:     c.Instance,
		Name:         c.Name,
		Process:      c.Process,
		PID:          c.PID,
		State:        c.State,
		LastState:    c.LastState,
		Layer:        c.Layer,
		Urgent:       c.Urgent,
		Focused:      focused,
		Shown:        c.shown,
		Flags:        m.flags(d, c),
		Rect:         c.Rect,
		FloatingRect: c.FloatingRect,
		Desktop:      d.Name,
		Monitor:      mon.Name,
	}
}

func nodeState(t *tree.Tree, id tree.NodeID, infos map[platform.Window]*ClientInfo) *NodeState {
	n, ok := t.Node(id)
	if !ok {
		return nil
	}
	ns := &NodeState{
		ID:          n.ID,
		SplitType:   n.SplitType,
		SplitRatio:  n.SplitRatio,
		Rect:        n.Rect,
		Constraints: n.Constraints,
		Vacant:      n.Vacant,
		Flags:       n.Flags,
		Presel:      n.Presel,
		Window:      n.Window,
	}
	if n.IsLeaf() {
		if info, ok := infos[platform.Window(n.Window)]; ok {
			c := *info
			ns.Client = &c
		}
		return ns
	}
	ns.First = nodeState(t, n.First, infos)
	ns.Second = nodeState(t, n.Second, infos)
	return ns
}

// Desktop returns the desktop named name, or the focused desktop when name
// is empty.
func (s State) Desktop(name string) (DesktopState, bool) {
	for _, mon := range s.Monitors {
		for _, d := range mon.Desktops {
			if (name == "" && d.Focused) || (name != "" && d.Name == name) {
				return d, true
			}
		}
	}
	return DesktopState{}, false
}

// Clients lists every client in desktop order.
func (s State) Clients() []ClientInfo {
	var out []ClientInfo
	for _, mon := range s.Monitors {
		for _, d := range mon.Desktops {
			out = append(out, d.Clients...)
		}
	}
	return out
}
