package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/lmburns/lwm/internal/geometry"
)

// WindowInfo is what the ICCCM and EWMH properties say about a window.
type WindowInfo struct {
	Class            string
	Instance         string
	Name             string
	PID              int
	Process          string
	Types            []string
	States           []string
	Transient        xproto.Window
	MinSize          geometry.Dimension
	Urgent           bool
	OverrideRedirect bool
}

// WindowInfo reads a window's properties. Only a vanished window is an
// error; missing properties leave their fields empty.
func (c *Connection) WindowInfo(windowID xproto.Window) (WindowInfo, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return WindowInfo{}, err
	}
	info := WindowInfo{OverrideRedirect: attrs.OverrideRedirect}

	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		info.Class = strings.TrimSpace(wmClass.Class)
		info.Instance = strings.TrimSpace(wmClass.Instance)
	}
	info.Name = c.windowTitle(windowID)

	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		info.PID = int(pid)
		info.Process = processName(info.PID)
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		info.Types = types
	}
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		info.States = states
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		info.Transient = parent
	}
	if nh, err := icccm.WmNormalHintsGet(c.XUtil, windowID); err == nil && nh.Flags&icccm.SizeHintPMinSize != 0 {
		info.MinSize = geometry.Dimension{W: nh.MinWidth, H: nh.MinHeight}
	}
	if hints, err := icccm.WmHintsGet(c.XUtil, windowID); err == nil {
		info.Urgent = hints.Flags&icccm.HintUrgency != 0
	}
	return info, nil
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// processName resolves a pid to its executable name, or "" when the
// process is gone or belongs to another host.
func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}
