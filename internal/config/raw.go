package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPadding struct {
	Top    *uint `yaml:"top"`
	Right  *uint `yaml:"right"`
	Bottom *uint `yaml:"bottom"`
	Left   *uint `yaml:"left"`
}

type RawColors struct {
	Normal         *string `yaml:"normal"`
	Active         *string `yaml:"active"`
	Focused        *string `yaml:"focused"`
	PreselFeedback *string `yaml:"presel_feedback"`
}

// RawConfig is one file's view of the configuration. Nil fields were not
// set by that file.
type RawConfig struct {
	Include                   IncludeList       `yaml:"include"`
	WindowGap                 *uint             `yaml:"window_gap"`
	BorderWidth               *uint             `yaml:"border_width"`
	SplitRatio                *float64          `yaml:"split_ratio"`
	AutomaticScheme           *string           `yaml:"automatic_scheme"`
	InitialPolarity           *string           `yaml:"initial_polarity"`
	RemovalAdjustment         *bool             `yaml:"removal_adjustment"`
	DirectionalFocusTightness *string           `yaml:"directional_focus_tightness"`
	Padding                   *RawPadding       `yaml:"padding"`
	Desktops                  []string          `yaml:"desktops"`
	FocusFollowsPointer       *bool             `yaml:"focus_follows_pointer"`
	PointerFollowsFocus       *bool             `yaml:"pointer_follows_focus"`
	Colors                    *RawColors        `yaml:"colors"`
	PreselFeedback            *bool             `yaml:"presel_feedback"`
	SingleMonocle             *bool             `yaml:"single_monocle"`
	LogLevel                  *string           `yaml:"log_level"`
	Keybindings               map[string]string `yaml:"keybindings"`
	Rules                     []Rule            `yaml:"rules"`
}

// merge overlays another file on top of c. Scalars and lists are replaced,
// keybindings merge per key and rules accumulate in load order.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.WindowGap != nil {
		out.WindowGap = overlay.WindowGap
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.SplitRatio != nil {
		out.SplitRatio = overlay.SplitRatio
	}
	if overlay.AutomaticScheme != nil {
		out.AutomaticScheme = overlay.AutomaticScheme
	}
	if overlay.InitialPolarity != nil {
		out.InitialPolarity = overlay.InitialPolarity
	}
	if overlay.RemovalAdjustment != nil {
		out.RemovalAdjustment = overlay.RemovalAdjustment
	}
	if overlay.DirectionalFocusTightness != nil {
		out.DirectionalFocusTightness = overlay.DirectionalFocusTightness
	}
	if overlay.Padding != nil {
		base := RawPadding{}
		if out.Padding != nil {
			base = *out.Padding
		}
		merged := mergeRawPadding(base, *overlay.Padding)
		out.Padding = &merged
	}
	if overlay.Desktops != nil {
		out.Desktops = overlay.Desktops
	}
	if overlay.FocusFollowsPointer != nil {
		out.FocusFollowsPointer = overlay.FocusFollowsPointer
	}
	if overlay.PointerFollowsFocus != nil {
		out.PointerFollowsFocus = overlay.PointerFollowsFocus
	}
	if overlay.Colors != nil {
		base := RawColors{}
		if out.Colors != nil {
			base = *out.Colors
		}
		merged := mergeRawColors(base, *overlay.Colors)
		out.Colors = &merged
	}
	if overlay.PreselFeedback != nil {
		out.PreselFeedback = overlay.PreselFeedback
	}
	if overlay.SingleMonocle != nil {
		out.SingleMonocle = overlay.SingleMonocle
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Keybindings != nil {
		merged := make(map[string]string, len(out.Keybindings)+len(overlay.Keybindings))
		for k, v := range out.Keybindings {
			merged[k] = v
		}
		for k, v := range overlay.Keybindings {
			merged[k] = v
		}
		out.Keybindings = merged
	}
	if len(overlay.Rules) > 0 {
		out.Rules = append(append([]Rule(nil), out.Rules...), overlay.Rules...)
	}

	return out
}

func mergeRawPadding(base RawPadding, overlay RawPadding) RawPadding {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	return out
}

func mergeRawColors(base RawColors, overlay RawColors) RawColors {
	out := base
	if overlay.Normal != nil {
		out.Normal = overlay.Normal
	}
	if overlay.Active != nil {
		out.Active = overlay.Active
	}
	if overlay.Focused != nil {
		out.Focused = overlay.Focused
	}
	if overlay.PreselFeedback != nil {
		out.PreselFeedback = overlay.PreselFeedback
	}
	return out
}
