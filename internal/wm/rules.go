package wm

import (
	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/tree"
)

// Consequence is what the window properties and the matching rules decide
// for a new window.
type Consequence struct {
	Manage  bool
	Focus   bool
	Follow  bool
	State   ClientState
	Layer   StackLayer
	Desktop string
	Flags   []tree.Flag
}

// floatingTypes are window types that never tile.
var floatingTypes = map[string]bool{
	"_NET_WM_WINDOW_TYPE_DIALOG":  true,
	"_NET_WM_WINDOW_TYPE_UTILITY": true,
	"_NET_WM_WINDOW_TYPE_TOOLBAR": true,
	"_NET_WM_WINDOW_TYPE_SPLASH":  true,
	"_NET_WM_WINDOW_TYPE_MENU":    true,
}

// unmanagedTypes are mapped as they are and never tracked.
var unmanagedTypes = map[string]bool{
	"_NET_WM_WINDOW_TYPE_DOCK":          true,
	"_NET_WM_WINDOW_TYPE_DESKTOP":       true,
	"_NET_WM_WINDOW_TYPE_NOTIFICATION":  true,
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU": true,
	"_NET_WM_WINDOW_TYPE_POPUP_MENU":    true,
	"_NET_WM_WINDOW_TYPE_TOOLTIP":       true,
	"_NET_WM_WINDOW_TYPE_COMBO":         true,
	"_NET_WM_WINDOW_TYPE_DND":           true,
}

// defaultConsequence derives the consequence from EWMH and ICCCM hints.
func defaultConsequence(id platform.Identity) Consequence {
	c := Consequence{Manage: !id.Unmanaged, Focus: true, State: Tiled, Layer: Normal}
	for _, t := range id.Types {
		if unmanagedTypes[t] {
			c.Manage = false
		}
		if floatingTypes[t] {
			c.State = Floating
		}
	}
	if id.Transient != platform.None {
		c.State = Floating
	}
	if id.HasState("_NET_WM_STATE_FULLSCREEN") {
		c.State = Fullscreen
	}
	switch {
	case id.HasState("_NET_WM_STATE_ABOVE"):
		c.Layer = Above
	case id.HasState("_NET_WM_STATE_BELOW"):
		c.Layer = Below
	}
	if id.HasState("_NET_WM_STATE_STICKY") {
		c.Flags = append(c.Flags, tree.FlagSticky)
	}
	return c
}

// ruleMatches reports whether every non-empty pattern of r matches id.
func ruleMatches(r config.Rule, id platform.Identity) bool {
	if r.Class != "" && !globMatch(r.Class, id.Class) {
		return false
	}
	if r.Instance != "" && !globMatch(r.Instance, id.Instance) {
		return false
	}
	if r.Name != "" && !globMatch(r.Name, id.Name) {
		return false
	}
	return true
}

// applyRules folds every matching rule over the default consequence in
// order. One-shot rules are recorded in spent and skipped afterwards.
func applyRules(rules []config.Rule, id platform.Identity, spent map[int]bool) Consequence {
	c := defaultConsequence(id)
	for i, r := range rules {
		if spent[i] || !ruleMatches(r, id) {
			continue
		}
		if r.OneShot {
			spent[i] = true
		}
		if r.State != "" {
			if s, err := ParseClientState(r.State); err == nil {
				c.State = s
			}
		}
		if r.Layer != "" {
			if l, err := ParseStackLayer(r.Layer); err == nil {
				c.Layer = l
			}
		}
		if r.Desktop != "" {
			c.Desktop = r.Desktop
		}
		for _, f := range r.Flags {
			if flag, err := tree.ParseFlag(f); err == nil {
				c.Flags = append(c.Flags, flag)
			}
		}
		if r.Follow {
			c.Follow = true
		}
		if r.Focus != nil {
			c.Focus = *r.Focus
		}
		if r.Manage != nil {
			c.Manage = *r.Manage
		}
	}
	return c
}
