package wm

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/ring"
)

// ClientState decides how a client's geometry is computed.
type ClientState int

const (
	Tiled ClientState = iota
	PseudoTiled
	Floating
	Fullscreen
)

var stateNames = [...]string{
	Tiled:       "tiled",
	PseudoTiled: "pseudo_tiled",
	Floating:    "floating",
	Fullscreen:  "fullscreen",
}

func (s ClientState) String() string {
	if s < Tiled || s > Fullscreen {
		return fmt.Sprintf("ClientState(%d)", int(s))
	}
	return stateNames[s]
}

func (s ClientState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ClientState) UnmarshalText(b []byte) error {
	v, err := ParseClientState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseClientState(s string) (ClientState, error) {
	for i, name := range stateNames {
		if strings.EqualFold(s, name) {
			return ClientState(i), nil
		}
	}
	return Tiled, fmt.Errorf("invalid client state %q", s)
}

// detached states do not take space in the tiling tree.
func (s ClientState) detached() bool {
	return s == Floating || s == Fullscreen
}

// StackLayer groups clients for stacking. Higher layers are always above
// lower ones.
type StackLayer int

const (
	Below StackLayer = iota
	Normal
	Above
)

var layerNames = [...]string{
	Below:  "below",
	Normal: "normal",
	Above:  "above",
}

func (l StackLayer) String() string {
	if l < Below || l > Above {
		return fmt.Sprintf("StackLayer(%d)", int(l))
	}
	return layerNames[l]
}

func (l StackLayer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *StackLayer) UnmarshalText(b []byte) error {
	v, err := ParseStackLayer(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func ParseStackLayer(s string) (StackLayer, error) {
	for i, name := range layerNames {
		if strings.EqualFold(s, name) {
			return StackLayer(i), nil
		}
	}
	return Normal, fmt.Errorf("invalid stack layer %q", s)
}

// Client is a managed top-level window. Its tiling attributes (flags,
// constraints) live on the tree leaf that holds it.
type Client struct {
	Window   platform.Window
	Class    string
	Instance string
	Name     string
	Process  string
	PID      int

	State     ClientState
	LastState ClientState
	Layer     StackLayer

	MinSize      geometry.Dimension
	FloatingRect geometry.Rectangle
	// Rect is the outer geometry last sent to the window system.
	Rect   geometry.Rectangle
	Urgent bool

	border      uint
	shown       bool
	ignoreUnmap int
}

func newClient(w platform.Window, id platform.Identity) *Client {
	return &Client{
		Window:   w,
		Class:    id.Class,
		Instance: id.Instance,
		Name:     id.Name,
		Process:  id.Process,
		PID:      id.PID,
		MinSize:  id.MinSize,
		Urgent:   id.Urgent,
		Layer:    Normal,
	}
}

func (c *Client) ID() uint32 { return uint32(c.Window) }

// Match selects clients by class, instance, name or process (shell
// patterns), or by state, layer and urgency.
func (c *Client) Match(q ring.Query) bool {
	switch q.Field {
	case "class":
		return globMatch(q.Value, c.Class)
	case "instance":
		return globMatch(q.Value, c.Instance)
	case "name":
		return globMatch(q.Value, c.Name)
	case "process":
		return globMatch(q.Value, c.Process)
	case "state":
		return strings.EqualFold(q.Value, c.State.String())
	case "layer":
		return strings.EqualFold(q.Value, c.Layer.String())
	case "urgent":
		want, err := strconv.ParseBool(q.Value)
		return err == nil && want == c.Urgent
	case "window":
		id, err := strconv.ParseUint(q.Value, 0, 32)
		return err == nil && platform.Window(id) == c.Window
	}
	return false
}

func globMatch(pattern, s string) bool {
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// setState changes the state and remembers the previous one.
func (c *Client) setState(s ClientState) bool {
	if c.State == s {
		return false
	}
	c.LastState = c.State
	c.State = s
	return true
}

func (c *Client) String() string {
	return fmt.Sprintf("%#x (%s)", uint32(c.Window), c.Class)
}
