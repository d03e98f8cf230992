package wm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/ring"
	"github.com/lmburns/lwm/internal/tree"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad arguments")
)

// Command is one parsed command line, for example
//
//	node focus west
//	node presel south 0.3
//	desktop send 2 follow
type Command struct {
	Domain string   `json:"domain"`
	Verb   string   `json:"verb,omitempty"`
	Args   []string `json:"args,omitempty"`
}

func (c Command) String() string {
	parts := []string{c.Domain}
	if c.Verb != "" {
		parts = append(parts, c.Verb)
	}
	return strings.Join(append(parts, c.Args...), " ")
}

var domainVerbs = map[string][]string{
	"node": {
		"focus", "swap", "presel", "cancel", "ratio", "rotate", "flip",
		"equalize", "balance", "state", "layer", "flag", "close", "kill",
		"unwind", "drag",
	},
	"desktop": {"focus", "cycle", "layout", "send", "gap", "padding", "rename"},
	"monitor": {"focus"},
}

// ParseCommand splits a command line and checks its domain and verb.
// Arguments are checked when the command runs.
func ParseCommand(line string) (Command, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrUsage)
	}
	switch f[0] {
	case "reload", "quit":
		if len(f) > 1 {
			return Command{}, fmt.Errorf("%w: %s takes no arguments", ErrUsage, f[0])
		}
		return Command{Domain: f[0]}, nil
	case "node", "desktop", "monitor":
		if len(f) < 2 {
			return Command{}, fmt.Errorf("%w: %s needs a subcommand", ErrUsage, f[0])
		}
		if !slices.Contains(domainVerbs[f[0]], f[1]) {
			return Command{}, fmt.Errorf("%w: %s %q", ErrUnknownCommand, f[0], f[1])
		}
		return Command{Domain: f[0], Verb: f[1], Args: f[2:]}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, f[0])
}

// Run parses and executes one command line.
func (m *Manager) Run(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return m.Execute(cmd)
}

// Execute applies cmd to the focused monitor, desktop and client.
func (m *Manager) Execute(cmd Command) error {
	m.log.Debug("executing command", "command", cmd.String())
	switch cmd.Domain {
	case "node":
		return m.nodeCommand(cmd.Verb, cmd.Args)
	case "desktop":
		return m.desktopCommand(cmd.Verb, cmd.Args)
	case "monitor":
		return m.monitorCommand(cmd.Verb, cmd.Args)
	case "reload":
		if m.onReload == nil {
			return fmt.Errorf("reload is not available")
		}
		return m.onReload()
	case "quit":
		if m.onQuit == nil {
			return fmt.Errorf("quit is not available")
		}
		m.onQuit()
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Domain)
}

func argc(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%w: want %d arguments, got %d", ErrUsage, lo, len(args))
		}
		return fmt.Errorf("%w: want %d to %d arguments, got %d", ErrUsage, lo, hi, len(args))
	}
	return nil
}

func optArg(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func (m *Manager) nodeCommand(verb string, args []string) error {
	mon, d, c, ok := m.focusedClient()
	if verb == "focus" {
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		return m.nodeFocus(mon, d, c, args[0])
	}
	if !ok {
		return ErrNoFocus
	}
	leaf := d.leaf(c)

	switch verb {
	case "swap":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		target, err := m.resolveNode(d, c, args[0])
		if err != nil {
			return err
		}
		if target == c {
			return nil
		}
		if err := d.Tree.SwapLeaves(leaf, d.leaf(target)); err != nil {
			return err
		}
		m.arrange(mon, d)
		return nil

	case "presel":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		dir, err := geometry.ParseDirection(args[0])
		if err != nil {
			return err
		}
		ratio, err := strconv.ParseFloat(optArg(args, 1, "0.5"), 64)
		if err != nil {
			return fmt.Errorf("%w: ratio %q", ErrUsage, args[1])
		}
		if n, _ := d.Tree.Node(leaf); n.Presel != nil && n.Presel.Dir == dir && len(args) == 1 {
			m.cancelPresel(d, leaf)
			return nil
		}
		if err := d.Tree.SetPresel(leaf, tree.Presel{Ratio: ratio, Dir: dir}); err != nil {
			return err
		}
		m.drawPresels(d)
		return nil

	case "cancel":
		if err := argc(args, 0, 1); err != nil {
			return err
		}
		if optArg(args, 0, "") == "all" {
			for _, id := range d.Tree.Leaves() {
				m.cancelPresel(d, id)
			}
			return nil
		}
		m.cancelPresel(d, leaf)
		return nil

	case "ratio":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		return m.setRatio(mon, d, leaf, args[0])

	case "rotate":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		deg, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: angle %q", ErrUsage, args[0])
		}
		if deg < 0 {
			deg += 360
		}
		if err := d.Tree.Rotate(m.scopeNode(d, leaf, optArg(args, 1, "parent")), deg); err != nil {
			return err
		}
		m.arrange(mon, d)
		return nil

	case "flip":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		var f tree.Flip
		switch args[0] {
		case "horizontal", "h":
			f = tree.FlipHorizontal
		case "vertical", "v":
			f = tree.FlipVertical
		default:
			return fmt.Errorf("%w: flip %q", ErrUsage, args[0])
		}
		if err := d.Tree.Flip(m.scopeNode(d, leaf, optArg(args, 1, "parent")), f); err != nil {
			return err
		}
		m.arrange(mon, d)
		return nil

	case "equalize", "balance":
		if err := argc(args, 0, 1); err != nil {
			return err
		}
		id := m.scopeNode(d, leaf, optArg(args, 0, "root"))
		var err error
		if verb == "equalize" {
			err = d.Tree.Equalize(id)
		} else {
			err = d.Tree.Balance(id)
		}
		if err != nil {
			return err
		}
		m.arrange(mon, d)
		return nil

	case "state":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		name, toggle := strings.CutPrefix(args[0], "~")
		s, err := ParseClientState(name)
		if err != nil {
			return err
		}
		if toggle && c.State == s {
			s = c.LastState
		}
		m.setState(mon, d, c, s)
		return nil

	case "layer":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		l, err := ParseStackLayer(args[0])
		if err != nil {
			return err
		}
		c.Layer = l
		m.publishStates(d, c)
		m.restack(d)
		return nil

	case "flag":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		f, err := tree.ParseFlag(args[0])
		if err != nil {
			return err
		}
		t, err := ParseToggle(optArg(args, 1, "toggle"))
		if err != nil {
			return err
		}
		m.setFlag(mon, d, c, f, t)
		return nil

	case "close":
		if m.flags(d, c).Locked {
			return ErrLocked
		}
		m.logErr("close", m.backend.Close(c.Window))
		return nil

	case "kill":
		m.logErr("kill", m.backend.Kill(c.Window))
		return nil

	case "unwind":
		next, ok := d.Clients.Unwind()
		if !ok {
			return ErrNoTarget
		}
		m.focusClient(mon, d, next)
		return nil

	case "drag":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		dir, err := ring.ParseDirection(args[0])
		if err != nil {
			return err
		}
		d.Clients.DragFocused(dir)
		m.restack(d)
		return nil
	}
	return fmt.Errorf("%w: node %q", ErrUnknownCommand, verb)
}

// nodeFocus focuses the node sel names. A direction with no node on that
// side moves to the neighbouring monitor.
func (m *Manager) nodeFocus(mon *Monitor, d *Desktop, c *Client, sel string) error {
	if mon == nil {
		return ErrNoFocus
	}
	if dir, err := geometry.ParseDirection(sel); err == nil && c == nil {
		if next, ok := m.monitorInDirection(mon, dir); ok {
			m.focusMonitor(next)
			return nil
		}
		return ErrNoFocus
	}
	if c == nil {
		return ErrNoFocus
	}
	target, err := m.resolveNode(d, c, sel)
	if errors.Is(err, ErrNoTarget) {
		if dir, derr := geometry.ParseDirection(sel); derr == nil {
			if next, ok := m.monitorInDirection(mon, dir); ok {
				m.focusMonitor(next)
				return nil
			}
		}
	}
	if err != nil {
		return err
	}
	m.focusClient(mon, d, target)
	return nil
}

// resolveNode turns a node selector into a client of d. Selectors are a
// direction, next, prev, last, marked, or a field=value condition.
func (m *Manager) resolveNode(d *Desktop, c *Client, sel string) (*Client, error) {
	if dir, err := geometry.ParseDirection(sel); err == nil {
		return m.directional(d, c, dir)
	}
	switch sel {
	case "next", "prev":
		dir, _ := ring.ParseDirection(sel)
		next, ok := d.Clients.NextElement(dir)
		if !ok || next == c {
			return nil, ErrNoTarget
		}
		return next, nil
	case "last":
		hist := d.Clients.History()
		for i := len(hist) - 1; i >= 0; i-- {
			if prev, ok := d.Clients.GetFor(ring.Ident(hist[i])); ok && prev != c {
				return prev, nil
			}
		}
		return nil, ErrNoTarget
	case "marked":
		for _, x := range d.Clients.Elements() {
			if x != c && m.flags(d, x).Marked {
				return x, nil
			}
		}
		return nil, ErrNoTarget
	}
	field, value, ok := strings.Cut(sel, "=")
	if !ok {
		return nil, fmt.Errorf("%w: node selector %q", ErrUsage, sel)
	}
	target, ok := d.Clients.GetFor(ring.Condition(ring.Query{Field: field, Value: value}))
	if !ok {
		return nil, ErrNoTarget
	}
	return target, nil
}

// directional finds the neighbour of c in dir. Monocle desktops have no
// spatial layout, so east and south step forward and west and north back.
func (m *Manager) directional(d *Desktop, c *Client, dir geometry.Direction) (*Client, error) {
	if d.Layout == LayoutMonocle {
		rd := ring.Forward
		if dir == geometry.West || dir == geometry.North {
			rd = ring.Backward
		}
		next, ok := d.Clients.NextElement(rd)
		if !ok || next == c {
			return nil, ErrNoTarget
		}
		return next, nil
	}
	id := d.Tree.Directional(d.leaf(c), dir, m.cfg.Tightness())
	n, ok := d.Tree.Node(id)
	if !ok {
		return nil, ErrNoTarget
	}
	target, ok := m.clients[platform.Window(n.Window)]
	if !ok {
		return nil, ErrNoTarget
	}
	return target, nil
}

// scopeNode resolves the subtree a tree command acts on.
func (m *Manager) scopeNode(d *Desktop, leaf tree.NodeID, scope string) tree.NodeID {
	if scope == "root" {
		return d.Tree.Root()
	}
	if n, ok := d.Tree.Node(leaf); ok && n.Parent != tree.NoNode {
		return n.Parent
	}
	return d.Tree.Root()
}

// setRatio sets the ratio of leaf's parent. A leading + or - adjusts it.
func (m *Manager) setRatio(mon *Monitor, d *Desktop, leaf tree.NodeID, arg string) error {
	n, _ := d.Tree.Node(leaf)
	parent, ok := d.Tree.Node(n.Parent)
	if !ok {
		return tree.ErrNotSplit
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("%w: ratio %q", ErrUsage, arg)
	}
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		v += parent.SplitRatio
	}
	if err := d.Tree.SetRatio(parent.ID, v); err != nil {
		return err
	}
	m.arrange(mon, d)
	return nil
}

func (m *Manager) cancelPresel(d *Desktop, leaf tree.NodeID) {
	if fb, ok := d.Tree.CancelPresel(leaf); ok && fb != 0 {
		m.logErr("hide feedback", m.backend.HideFeedback(platform.Window(fb)))
	}
}

func (m *Manager) setState(mon *Monitor, d *Desktop, c *Client, s ClientState) {
	if !c.setState(s) {
		return
	}
	d.Tree.SetDetached(d.leaf(c), s.detached())
	m.publishStates(d, c)
	m.arrange(mon, d)
}

func (m *Manager) setFlag(mon *Monitor, d *Desktop, c *Client, f tree.Flag, t Toggle) {
	cur := m.flags(d, c).Get(f)
	v := t.Eval(cur)
	if v == cur {
		return
	}
	if err := d.Tree.SetFlag(d.leaf(c), f, v); err != nil {
		m.log.Error("failed to set flag", "flag", f.String(), "error", err)
		return
	}
	switch f {
	case tree.FlagHidden:
		m.publishStates(d, c)
		m.arrange(mon, d)
		if focusedMon, _ := m.Monitors.Focused(); focusedMon == mon && mon.shows(d) {
			m.refocus()
		}
	case tree.FlagSticky:
		m.publishStates(d, c)
	}
}

func (m *Manager) sendToDesktop(c *Client, from, to *Desktop, follow bool) {
	if from == to {
		return
	}
	fromMon, toMon := m.monitorOf(from), m.monitorOf(to)
	m.transfer(c, from, to)
	m.arrange(fromMon, from)
	m.arrange(toMon, to)
	m.publishClientList()
	if follow {
		m.focusClient(toMon, to, c)
		return
	}
	if focusedMon, _ := m.Monitors.Focused(); focusedMon == fromMon {
		m.refocus()
	}
}

func (m *Manager) desktopCommand(verb string, args []string) error {
	mon, d, ok := m.focusedDesktop()
	if !ok {
		return ErrNoDesktop
	}
	switch verb {
	case "focus":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		tm, td, err := m.resolveDesktop(mon, args[0])
		if err != nil {
			return err
		}
		m.focusDesktop(tm, td)
		return nil

	// cycle next|prev [occupied] walks the focused monitor's desktops,
	// optionally skipping empty ones.
	case "cycle":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		dir, err := ring.ParseDirection(args[0])
		if err != nil {
			return fmt.Errorf("%w: cycle %q", ErrUsage, args[0])
		}
		occupied := optArg(args, 1, "") == "occupied"
		elems := mon.Desktops.Elements()
		idx, _ := mon.Desktops.FocusedIndex()
		for i := mon.Desktops.NextIndexFrom(idx, dir); i != idx; i = mon.Desktops.NextIndexFrom(i, dir) {
			if next := elems[i]; !occupied || next.Clients.Len() > 0 {
				m.focusDesktop(mon, next)
				return nil
			}
		}
		return ErrNoDesktop

	case "layout":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		if args[0] == "next" {
			d.Layout = (d.Layout + 1) % 2
		} else {
			l, err := ParseLayout(args[0])
			if err != nil {
				return err
			}
			d.Layout = l
		}
		m.arrange(mon, d)
		return nil

	case "send":
		if err := argc(args, 1, 2); err != nil {
			return err
		}
		c, ok := d.Focused()
		if !ok {
			return ErrNoFocus
		}
		_, td, err := m.resolveDesktop(mon, args[0])
		if err != nil {
			return err
		}
		follow := optArg(args, 1, "") == "follow"
		m.sendToDesktop(c, d, td, follow)
		return nil

	case "gap":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: gap %q", ErrUsage, args[0])
		}
		d.WindowGap = uint(n)
		m.arrange(mon, d)
		return nil

	case "padding":
		if len(args) != 1 && len(args) != 4 {
			return fmt.Errorf("%w: padding takes 1 or 4 values", ErrUsage)
		}
		var v [4]uint
		for i := range v {
			n, err := strconv.ParseUint(args[i%len(args)], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: padding %q", ErrUsage, args[i%len(args)])
			}
			v[i] = uint(n)
		}
		d.Padding = geometry.Padding{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
		m.arrange(mon, d)
		return nil

	case "rename":
		if err := argc(args, 1, 1); err != nil {
			return err
		}
		if _, _, taken := m.desktopByName(args[0]); taken {
			return fmt.Errorf("desktop %q already exists", args[0])
		}
		d.Name = args[0]
		m.publishDesktops()
		return nil
	}
	return fmt.Errorf("%w: desktop %q", ErrUnknownCommand, verb)
}

// resolveDesktop turns a desktop selector into a desktop: next, prev and
// last on the focused monitor, or a name or 1-based index.
func (m *Manager) resolveDesktop(mon *Monitor, sel string) (*Monitor, *Desktop, error) {
	switch sel {
	case "next", "prev":
		dir, _ := ring.ParseDirection(sel)
		d, ok := mon.Desktops.NextElement(dir)
		if !ok {
			return nil, nil, ErrNoDesktop
		}
		return mon, d, nil
	case "last":
		cur, _ := mon.Desktop()
		hist := mon.Desktops.History()
		for i := len(hist) - 1; i >= 0; i-- {
			if d, ok := mon.Desktops.GetFor(ring.Ident(hist[i])); ok && d != cur {
				return mon, d, nil
			}
		}
		return nil, nil, ErrNoDesktop
	}
	if tm, td, ok := m.findDesktop(sel); ok {
		return tm, td, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrNoDesktop, sel)
}

func (m *Manager) monitorCommand(verb string, args []string) error {
	if verb != "focus" {
		return fmt.Errorf("%w: monitor %q", ErrUnknownCommand, verb)
	}
	if err := argc(args, 1, 1); err != nil {
		return err
	}
	mon, ok := m.Monitors.Focused()
	if !ok {
		return ErrNoMonitor
	}
	var target *Monitor
	switch sel := args[0]; sel {
	case "next", "prev":
		dir, _ := ring.ParseDirection(sel)
		target, ok = m.Monitors.NextElement(dir)
	case "last":
		hist := m.Monitors.History()
		for i := len(hist) - 1; i >= 0 && target == nil; i-- {
			if x, found := m.Monitors.GetFor(ring.Ident(hist[i])); found && x != mon {
				target, ok = x, true
			}
		}
	default:
		if dir, err := geometry.ParseDirection(sel); err == nil {
			target, ok = m.monitorInDirection(mon, dir)
		} else {
			target, ok = m.Monitors.GetFor(ring.Condition(ring.Query{Field: "name", Value: sel}))
		}
	}
	if !ok || target == nil {
		return fmt.Errorf("%w: %q", ErrNoMonitor, args[0])
	}
	m.focusMonitor(target)
	return nil
}

// monitorInDirection is the nearest monitor on the dir side of mon.
func (m *Manager) monitorInDirection(mon *Monitor, dir geometry.Direction) (*Monitor, bool) {
	var best *Monitor
	var bestDist uint
	for _, x := range m.Monitors.Elements() {
		if x == mon || !mon.Bounds.OnDirSide(x.Bounds, dir, geometry.High) {
			continue
		}
		dist := mon.Bounds.BoundaryDistance(x.Bounds, dir)
		if best == nil || dist < bestDist {
			best, bestDist = x, dist
		}
	}
	return best, best != nil
}
