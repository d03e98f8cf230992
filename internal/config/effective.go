package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownKey is returned by Explain for paths that name no setting.
var ErrUnknownKey = errors.New("unknown config key")

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies a merged raw configuration over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.WindowGap != nil {
		cfg.WindowGap = *raw.WindowGap
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.SplitRatio != nil {
		cfg.SplitRatio = *raw.SplitRatio
	}
	if raw.AutomaticScheme != nil {
		cfg.AutomaticScheme = *raw.AutomaticScheme
	}
	if raw.InitialPolarity != nil {
		cfg.InitialPolarity = *raw.InitialPolarity
	}
	if raw.RemovalAdjustment != nil {
		cfg.RemovalAdjustment = *raw.RemovalAdjustment
	}
	if raw.DirectionalFocusTightness != nil {
		cfg.DirectionalFocusTightness = *raw.DirectionalFocusTightness
	}
	if raw.Padding != nil {
		cfg.Padding.Top = derefUint(raw.Padding.Top, cfg.Padding.Top)
		cfg.Padding.Right = derefUint(raw.Padding.Right, cfg.Padding.Right)
		cfg.Padding.Bottom = derefUint(raw.Padding.Bottom, cfg.Padding.Bottom)
		cfg.Padding.Left = derefUint(raw.Padding.Left, cfg.Padding.Left)
	}
	if raw.Desktops != nil {
		cfg.Desktops = append([]string(nil), raw.Desktops...)
	}
	if raw.FocusFollowsPointer != nil {
		cfg.FocusFollowsPointer = *raw.FocusFollowsPointer
	}
	if raw.PointerFollowsFocus != nil {
		cfg.PointerFollowsFocus = *raw.PointerFollowsFocus
	}
	if raw.Colors != nil {
		colors := []struct {
			path string
			raw  *string
			dst  *Color
		}{
			{"colors.normal", raw.Colors.Normal, &cfg.Colors.Normal},
			{"colors.active", raw.Colors.Active, &cfg.Colors.Active},
			{"colors.focused", raw.Colors.Focused, &cfg.Colors.Focused},
			{"colors.presel_feedback", raw.Colors.PreselFeedback, &cfg.Colors.PreselFeedback},
		}
		for _, c := range colors {
			if c.raw == nil {
				continue
			}
			v, err := ParseColor(*c.raw)
			if err != nil {
				return nil, &ValidationError{Path: c.path, Err: err}
			}
			*c.dst = v
		}
	}
	if raw.PreselFeedback != nil {
		cfg.PreselFeedback = *raw.PreselFeedback
	}
	if raw.SingleMonocle != nil {
		cfg.SingleMonocle = *raw.SingleMonocle
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Keybindings != nil {
		for _, key := range sortedKeys(raw.Keybindings) {
			cmd := raw.Keybindings[key]
			// An explicit "none" removes a default binding.
			if cmd == "none" {
				delete(cfg.Keybindings, key)
				continue
			}
			cfg.Keybindings[key] = cmd
		}
	}
	if raw.Rules != nil {
		cfg.Rules = append([]Rule(nil), raw.Rules...)
	}

	return cfg, nil
}

func derefUint(p *uint, def uint) uint {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
