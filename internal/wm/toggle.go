package wm

import (
	"fmt"
	"strings"
)

// Toggle is a requested change to a boolean attribute.
type Toggle int

const (
	Off Toggle = iota
	On
	Invert
)

// Eval returns the new value for an attribute that is currently cur.
func (t Toggle) Eval(cur bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return !cur
	}
}

func (t Toggle) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "toggle"
	}
}

func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(s) {
	case "on", "true", "add":
		return On, nil
	case "off", "false", "remove":
		return Off, nil
	case "toggle", "invert", "":
		return Invert, nil
	}
	return Invert, fmt.Errorf("invalid toggle %q (want on, off or toggle)", s)
}
