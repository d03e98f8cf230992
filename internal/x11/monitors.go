package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/lmburns/lwm/internal/geometry"
)

// Monitor represents a physical display. Usable is Bounds minus the
// struts docks reserve on it.
type Monitor struct {
	ID     int
	Name   string
	Bounds geometry.Rectangle
	Usable geometry.Rectangle
}

// GetMonitors retrieves all active monitors using XRandR. A server without
// active CRTCs yields a single monitor covering the root window.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get root geometry: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		// Mirrored outputs share a CRTC origin and size.
		bounds := geometry.Rect(int(crtcInfo.X), int(crtcInfo.Y), uint(crtcInfo.Width), uint(crtcInfo.Height))
		if containsBounds(monitors, bounds) {
			continue
		}
		monitors = append(monitors, Monitor{ID: i, Name: outputName, Bounds: bounds, Usable: bounds})
	}

	if len(monitors) == 0 {
		bounds := geometry.Rect(0, 0, uint(rootGeom.Width), uint(rootGeom.Height))
		monitors = append(monitors, Monitor{Name: "screen", Bounds: bounds, Usable: bounds})
	}

	docks := c.dockWindows()
	for i := range monitors {
		applyDockStruts(c, &monitors[i], docks, int(rootGeom.Width), int(rootGeom.Height))
	}
	return monitors, nil
}

func containsBounds(mons []Monitor, r geometry.Rectangle) bool {
	for _, m := range mons {
		if m.Bounds == r {
			return true
		}
	}
	return false
}

// dockWindows lists mapped children of the root that declare the dock type.
func (c *Connection) dockWindows() []xproto.Window {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	var docks []xproto.Window
	for _, w := range tree.Children {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, w)
		if err != nil {
			continue
		}
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				docks = append(docks, w)
				break
			}
		}
	}
	return docks
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor, docks []xproto.Window, rootWidth, rootHeight int) {
	var struts dockStruts
	for _, windowID := range docks {
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor.Bounds, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			}
			updateStrutsForMonitor(monitor.Bounds, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return
	}
	monitor.Usable = monitor.Bounds.Sub(geometry.Padding{
		Top:    uint(struts.top),
		Right:  uint(struts.right),
		Bottom: uint(struts.bottom),
		Left:   uint(struts.left),
	})
}

func updateStrutsForMonitor(mon geometry.Rectangle, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := mon.X
	monY1 := mon.Y
	monX2 := mon.X + int(mon.W)
	monY2 := mon.Y + int(mon.H)

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		x1 := int(sp.TopStartX)
		x2 := int(sp.TopEndX) + 1
		y1 := 0
		y2 := int(sp.Top)
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.w > 0 && isect.h > 0 {
			acc.top = max(acc.top, isect.h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		x1 := int(sp.BottomStartX)
		x2 := int(sp.BottomEndX) + 1
		y2 := rootHeight
		y1 := rootHeight - int(sp.Bottom)
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.w > 0 && isect.h > 0 {
			acc.bottom = max(acc.bottom, isect.h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		x1 := 0
		x2 := int(sp.Left)
		y1 := int(sp.LeftStartY)
		y2 := int(sp.LeftEndY) + 1
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.w > 0 && isect.h > 0 {
			acc.left = max(acc.left, isect.w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		x2 := rootWidth
		x1 := rootWidth - int(sp.Right)
		y1 := int(sp.RightStartY)
		y2 := int(sp.RightEndY) + 1
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.w > 0 && isect.h > 0 {
			acc.right = max(acc.right, isect.w)
		}
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}

// Pointer returns the pointer position on the root window.
func (c *Connection) Pointer() (geometry.Point, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// WarpPointer moves the pointer to p on the root window.
func (c *Connection) WarpPointer(p geometry.Point) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, c.Root, 0, 0, 0, 0, int16(p.X), int16(p.Y)).Check()
}
