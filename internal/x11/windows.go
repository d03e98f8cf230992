package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/lmburns/lwm/internal/geometry"
)

// Listen selects the events the window manager needs from a client.
func (c *Connection) Listen(windowID xproto.Window) error {
	return xwindow.New(c.XUtil, windowID).Listen(
		xproto.EventMaskEnterWindow,
		xproto.EventMaskFocusChange,
		xproto.EventMaskPropertyChange,
	)
}

// ClientArea returns a window's position, its size without the border,
// and the border width.
func (c *Connection) ClientArea(windowID xproto.Window) (geometry.Rectangle, uint, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rectangle{}, 0, err
	}
	return geometry.Rect(int(geom.X), int(geom.Y), uint(geom.Width), uint(geom.Height)), uint(geom.BorderWidth), nil
}

// Geometry returns the outer rectangle of a top-level window, border
// included.
func (c *Connection) Geometry(windowID xproto.Window) (geometry.Rectangle, error) {
	r, bw, err := c.ClientArea(windowID)
	if err != nil {
		return geometry.Rectangle{}, err
	}
	r.W += 2 * bw
	r.H += 2 * bw
	return r, nil
}

// Configure moves and resizes a window so that its outer frame covers r.
func (c *Connection) Configure(windowID xproto.Window, r geometry.Rectangle, border uint) error {
	w, h := inner(r, border)
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth)
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask,
		[]uint32{uint32(r.X), uint32(r.Y), w, h, uint32(border)}).Check()
}

// SendConfigureNotify tells a client its geometry without changing it.
// Clients whose configure requests are refused expect this reply.
func (c *Connection) SendConfigureNotify(windowID xproto.Window, r geometry.Rectangle, border uint) error {
	w, h := inner(r, border)
	ev := xproto.ConfigureNotifyEvent{
		Event:       windowID,
		Window:      windowID,
		X:           int16(r.X),
		Y:           int16(r.Y),
		Width:       uint16(w),
		Height:      uint16(h),
		BorderWidth: uint16(border),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskStructureNotify,
		string(ev.Bytes()),
	).Check()
}

// inner is the client area left inside an outer rectangle. X rejects
// zero sizes, so both dimensions are at least one pixel.
func inner(r geometry.Rectangle, border uint) (uint32, uint32) {
	w, h := uint32(1), uint32(1)
	if r.W > 2*border {
		w = uint32(r.W - 2*border)
	}
	if r.H > 2*border {
		h = uint32(r.H - 2*border)
	}
	return w, h
}

// Map shows a window and marks it NormalState.
func (c *Connection) Map(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, windowID, &icccm.WmState{State: icccm.StateNormal})
}

// Unmap hides a window and marks it IconicState.
func (c *Connection) Unmap(windowID xproto.Window) error {
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, windowID, &icccm.WmState{State: icccm.StateIconic})
}

func (c *Connection) SetBorderColor(windowID xproto.Window, color uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), windowID,
		xproto.CwBorderPixel, []uint32{color}).Check()
}

// Focus gives input focus to a window, or back to the root for
// WindowNone. Clients that take part in WM_TAKE_FOCUS are told as well.
func (c *Connection) Focus(windowID xproto.Window) error {
	if windowID == xproto.WindowNone {
		return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
			c.Root, xproto.TimeCurrentTime).Check()
	}
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		windowID, xproto.TimeCurrentTime).Check()
	if err != nil {
		return err
	}
	if c.supportsProtocol(windowID, "WM_TAKE_FOCUS") {
		return c.sendProtocol(windowID, "WM_TAKE_FOCUS")
	}
	return nil
}

// Restack orders windows bottom to top.
func (c *Connection) Restack(order []xproto.Window) error {
	for i := 1; i < len(order); i++ {
		err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), order[i],
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(order[i-1]), xproto.StackModeAbove}).Check()
		if err != nil {
			return fmt.Errorf("failed to stack %d above %d: %w", order[i], order[i-1], err)
		}
	}
	return nil
}

// Raise puts a window on top of its siblings.
func (c *Connection) Raise(windowID xproto.Window) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

// CloseWindow asks a window to close with WM_DELETE_WINDOW, killing its client
// when the protocol is not supported.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	if c.supportsProtocol(windowID, "WM_DELETE_WINDOW") {
		return c.sendProtocol(windowID, "WM_DELETE_WINDOW")
	}
	return c.Kill(windowID)
}

// Kill disconnects the client owning a window.
func (c *Connection) Kill(windowID xproto.Window) error {
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
}

// Children lists the viewable, redirectable children of the root window,
// bottom to top.
func (c *Connection) Children() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	var out []xproto.Window
	for _, w := range tree.Children {
		if c.check != nil && w == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), w).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (c *Connection) supportsProtocol(windowID xproto.Window, protocol string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	return slices.Contains(protocols, protocol)
}

// sendProtocol delivers a WM_PROTOCOLS client message. The message is
// built by hand so the timestamp slot can stay CurrentTime.
func (c *Connection) sendProtocol(windowID xproto.Window, protocol string) error {
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return fmt.Errorf("failed to intern WM_PROTOCOLS: %w", err)
	}
	protoAtom, err := xprop.Atm(c.XUtil, protocol)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", protocol, err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(protoAtom), xproto.TimeCurrentTime, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}
