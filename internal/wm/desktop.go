package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/ring"
	"github.com/lmburns/lwm/internal/tree"
)

// Layout is how a desktop arranges its tiled clients.
type Layout int

const (
	LayoutTiled Layout = iota
	LayoutMonocle
)

func (l Layout) String() string {
	if l == LayoutMonocle {
		return "monocle"
	}
	return "tiled"
}

func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Layout) UnmarshalText(b []byte) error {
	v, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "tiled":
		return LayoutTiled, nil
	case "monocle":
		return LayoutMonocle, nil
	}
	return LayoutTiled, fmt.Errorf("invalid layout %q (want tiled or monocle)", s)
}

// Desktop is a named workspace: one tiling tree plus the focus order of
// the clients it holds.
type Desktop struct {
	id          uint32
	Name        string
	Layout      Layout
	Padding     geometry.Padding
	WindowGap   uint
	BorderWidth uint
	Tree        *tree.Tree
	Clients     *ring.Ring[*Client]
}

func newDesktop(id uint32, name string, cfg *config.Config) *Desktop {
	return &Desktop{
		id:          id,
		Name:        name,
		WindowGap:   cfg.WindowGap,
		BorderWidth: cfg.BorderWidth,
		Tree:        tree.New(cfg.TreeSettings()),
		Clients:     ring.New[*Client](nil, true),
	}
}

func (d *Desktop) ID() uint32 { return d.id }

// Match selects desktops by name pattern, layout or occupancy.
func (d *Desktop) Match(q ring.Query) bool {
	switch q.Field {
	case "name":
		return globMatch(q.Value, d.Name)
	case "layout":
		return strings.EqualFold(q.Value, d.Layout.String())
	case "occupied":
		want, err := strconv.ParseBool(q.Value)
		return err == nil && want == !d.Clients.IsEmpty()
	}
	return false
}

// Focused returns the desktop's focused client.
func (d *Desktop) Focused() (*Client, bool) {
	return d.Clients.Focused()
}

// leaf returns the tree node holding c.
func (d *Desktop) leaf(c *Client) tree.NodeID {
	return d.Tree.LeafOf(uint32(c.Window))
}

// tiledCount is the number of leaves that take tiling space.
func (d *Desktop) tiledCount() int {
	n := 0
	for _, id := range d.Tree.Leaves() {
		if node, ok := d.Tree.Node(id); ok && !node.Vacant {
			n++
		}
	}
	return n
}
