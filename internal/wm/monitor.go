package wm

import (
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/ring"
)

// Monitor is an output showing one desktop at a time. Bounds is the full
// output, Rect the part left after docks and panels.
type Monitor struct {
	id       uint32
	Name     string
	Bounds   geometry.Rectangle
	Rect     geometry.Rectangle
	Padding  geometry.Padding
	Desktops *ring.Ring[*Desktop]
}

func (m *Monitor) ID() uint32 { return m.id }

func (m *Monitor) Match(q ring.Query) bool {
	return q.Field == "name" && globMatch(q.Value, m.Name)
}

// Desktop returns the desktop currently shown.
func (m *Monitor) Desktop() (*Desktop, bool) {
	return m.Desktops.Focused()
}

// Area is the rectangle available to a desktop's tree before its own
// padding and gap.
func (m *Monitor) Area() geometry.Rectangle {
	return m.Rect.Sub(m.Padding)
}

func (m *Monitor) shows(d *Desktop) bool {
	cur, ok := m.Desktops.Focused()
	return ok && cur == d
}
