package wm

// ClientFilter narrows a client listing. Zero fields match everything.
type ClientFilter struct {
	Focused  bool
	State    string
	Layer    string
	Urgent   bool
	Hidden   bool
	Sticky   bool
	Marked   bool
	Shown    bool
	Desktop  string
	Monitor  string
	Class    string
	Instance string
}

func (f ClientFilter) Match(c ClientInfo) bool {
	switch {
	case f.Focused && !c.Focused,
		f.Urgent && !c.Urgent,
		f.Hidden && !c.Flags.Hidden,
		f.Sticky && !c.Flags.Sticky,
		f.Marked && !c.Flags.Marked,
		f.Shown && !c.Shown,
		f.State != "" && f.State != c.State.String(),
		f.Layer != "" && f.Layer != c.Layer.String(),
		f.Desktop != "" && f.Desktop != c.Desktop,
		f.Monitor != "" && f.Monitor != c.Monitor,
		f.Class != "" && !globMatch(f.Class, c.Class),
		f.Instance != "" && !globMatch(f.Instance, c.Instance):
		return false
	}
	return true
}

// FilterClients returns the clients f matches, in desktop order.
func (s State) FilterClients(f ClientFilter) []ClientInfo {
	var out []ClientInfo
	for _, c := range s.Clients() {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// DesktopFilter narrows a desktop listing.
type DesktopFilter struct {
	Focused  bool
	Shown    bool
	Occupied bool
	Urgent   bool
	Monitor  string
}

func (f DesktopFilter) Match(d DesktopState) bool {
	urgent := false
	for _, c := range d.Clients {
		urgent = urgent || c.Urgent
	}
	switch {
	case f.Focused && !d.Focused,
		f.Shown && !d.Shown,
		f.Occupied && len(d.Clients) == 0,
		f.Urgent && !urgent,
		f.Monitor != "" && f.Monitor != d.Monitor:
		return false
	}
	return true
}

// FilterDesktops returns the desktops f matches.
func (s State) FilterDesktops(f DesktopFilter) []DesktopState {
	var out []DesktopState
	for _, mon := range s.Monitors {
		for _, d := range mon.Desktops {
			if f.Match(d) {
				out = append(out, d)
			}
		}
	}
	return out
}

// Leaves returns the leaves of a desktop tree in order.
func (d DesktopState) Leaves() []*NodeState {
	var out []*NodeState
	var walk func(n *NodeState)
	walk = func(n *NodeState) {
		if n == nil {
			return
		}
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		walk(n.First)
		walk(n.Second)
	}
	walk(d.Root)
	return out
}
