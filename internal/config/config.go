package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/tree"
	"gopkg.in/yaml.v3"
)

// Color is a 24-bit RGB pixel written as #RRGGBB.
type Color uint32

func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("color %q must be #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return Color(v), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c))
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Colors are the border colours. Active marks the focused window of a
// monitor that does not have input focus.
type Colors struct {
	Normal         Color `yaml:"normal"`
	Active         Color `yaml:"active"`
	Focused        Color `yaml:"focused"`
	PreselFeedback Color `yaml:"presel_feedback"`
}

// Rule adjusts how a newly mapped window is managed. Class, Instance and
// Name are shell patterns; empty fields match anything.
type Rule struct {
	Class    string   `yaml:"class,omitempty"`
	Instance string   `yaml:"instance,omitempty"`
	Name     string   `yaml:"name,omitempty"`
	State    string   `yaml:"state,omitempty"`
	Layer    string   `yaml:"layer,omitempty"`
	Desktop  string   `yaml:"desktop,omitempty"`
	Flags    []string `yaml:"flags,omitempty"`
	Follow   bool     `yaml:"follow,omitempty"`
	Focus    *bool    `yaml:"focus,omitempty"`
	Manage   *bool    `yaml:"manage,omitempty"`
	OneShot  bool     `yaml:"one_shot,omitempty"`
}

// Config holds the effective window manager configuration. It is replaced
// as a whole on reload and never mutated while in use.
type Config struct {
	WindowGap                 uint              `yaml:"window_gap"`
	BorderWidth               uint              `yaml:"border_width"`
	SplitRatio                float64           `yaml:"split_ratio"`
	AutomaticScheme           string            `yaml:"automatic_scheme"`
	InitialPolarity           string            `yaml:"initial_polarity"`
	RemovalAdjustment         bool              `yaml:"removal_adjustment"`
	DirectionalFocusTightness string            `yaml:"directional_focus_tightness"`
	Padding                   geometry.Padding  `yaml:"padding"`
	Desktops                  []string          `yaml:"desktops"`
	FocusFollowsPointer       bool              `yaml:"focus_follows_pointer"`
	PointerFollowsFocus       bool              `yaml:"pointer_follows_focus"`
	Colors                    Colors            `yaml:"colors"`
	PreselFeedback            bool              `yaml:"presel_feedback"`
	SingleMonocle             bool              `yaml:"single_monocle"`
	LogLevel                  string            `yaml:"log_level"`
	Keybindings               map[string]string `yaml:"keybindings"`
	Rules                     []Rule            `yaml:"rules,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		WindowGap:                 6,
		BorderWidth:               1,
		SplitRatio:                0.5,
		AutomaticScheme:           "longest_side",
		InitialPolarity:           "second",
		RemovalAdjustment:         true,
		DirectionalFocusTightness: "high",
		Desktops:                  []string{"1", "2", "3", "4", "5"},
		Colors: Colors{
			Normal:         0x4C566A,
			Active:         0x1E1E1E,
			Focused:        0xA98698,
			PreselFeedback: 0x4C96A8,
		},
		PreselFeedback: true,
		LogLevel:       "info",
		Keybindings:    defaultKeybindings(),
	}
}

func defaultKeybindings() map[string]string {
	return map[string]string{
		"Mod4-h":             "node focus west",
		"Mod4-j":             "node focus south",
		"Mod4-k":             "node focus north",
		"Mod4-l":             "node focus east",
		"Mod4-shift-h":       "node swap west",
		"Mod4-shift-j":       "node swap south",
		"Mod4-shift-k":       "node swap north",
		"Mod4-shift-l":       "node swap east",
		"Mod4-control-h":     "node presel west",
		"Mod4-control-j":     "node presel south",
		"Mod4-control-k":     "node presel north",
		"Mod4-control-l":     "node presel east",
		"Mod4-control-space": "node cancel",
		"Mod4-Tab":           "node focus next",
		"Mod4-grave":         "node unwind",
		"Mod4-r":             "node rotate 90",
		"Mod4-shift-r":       "node rotate 270",
		"Mod4-e":             "node balance root",
		"Mod4-t":             "node state tiled",
		"Mod4-s":             "node state floating",
		"Mod4-f":             "node state fullscreen",
		"Mod4-m":             "desktop layout next",
		"Mod4-w":             "node close",
		"Mod4-bracketleft":   "desktop focus prev",
		"Mod4-bracketright":  "desktop focus next",
		"Mod4-1":             "desktop focus 1",
		"Mod4-2":             "desktop focus 2",
		"Mod4-3":             "desktop focus 3",
		"Mod4-4":             "desktop focus 4",
		"Mod4-5":             "desktop focus 5",
		"Mod4-shift-1":       "desktop send 1",
		"Mod4-shift-2":       "desktop send 2",
		"Mod4-shift-3":       "desktop send 3",
		"Mod4-shift-4":       "desktop send 4",
		"Mod4-shift-5":       "desktop send 5",
	}
}

// TreeSettings converts the tiling options for new trees. The config must
// have passed Validate.
func (c *Config) TreeSettings() tree.Settings {
	scheme, _ := tree.ParseScheme(c.AutomaticScheme)
	polarity, _ := tree.ParsePolarity(c.InitialPolarity)
	return tree.Settings{
		SplitRatio:        c.SplitRatio,
		Scheme:            scheme,
		Polarity:          polarity,
		RemovalAdjustment: c.RemovalAdjustment,
	}
}

func (c *Config) Tightness() geometry.Tightness {
	t, _ := geometry.ParseTightness(c.DirectionalFocusTightness)
	return t
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy, used by editors that must not touch the
// config the daemon is running with.
func (c *Config) Clone() *Config {
	out := *c
	out.Desktops = append([]string(nil), c.Desktops...)
	out.Keybindings = make(map[string]string, len(c.Keybindings))
	for k, v := range c.Keybindings {
		out.Keybindings[k] = v
	}
	out.Rules = make([]Rule, len(c.Rules))
	for i, r := range c.Rules {
		r.Flags = append([]string(nil), r.Flags...)
		out.Rules[i] = r
	}
	return &out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
		return &ValidationError{Path: "split_ratio", Err: fmt.Errorf("split_ratio must be between 0 and 1 (exclusive)")}
	}
	if _, err := tree.ParseScheme(c.AutomaticScheme); err != nil {
		return &ValidationError{Path: "automatic_scheme", Err: fmt.Errorf("automatic_scheme must be one of: longest_side, alternate, spiral")}
	}
	if _, err := tree.ParsePolarity(c.InitialPolarity); err != nil {
		return &ValidationError{Path: "initial_polarity", Err: fmt.Errorf("initial_polarity must be one of: first, second")}
	}
	if _, err := geometry.ParseTightness(c.DirectionalFocusTightness); err != nil {
		return &ValidationError{Path: "directional_focus_tightness", Err: fmt.Errorf("directional_focus_tightness must be one of: low, high")}
	}
	if len(c.Desktops) == 0 {
		return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktops must not be empty")}
	}
	seen := make(map[string]struct{}, len(c.Desktops))
	for _, name := range c.Desktops {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktop names must not be empty")}
		}
		if _, ok := seen[name]; ok {
			return &ValidationError{Path: "desktops", Err: fmt.Errorf("duplicate desktop name %q", name)}
		}
		seen[name] = struct{}{}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	for key, cmd := range c.Keybindings {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Path: "keybindings", Err: fmt.Errorf("keybindings contains an empty key")}
		}
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: "keybindings." + key, Err: fmt.Errorf("command must not be empty")}
		}
	}
	for i, r := range c.Rules {
		if err := validateRule(r); err != nil {
			return &ValidationError{Path: fmt.Sprintf("rules.%d", i), Err: err}
		}
	}
	return nil
}

func validateRule(r Rule) error {
	if r.Class == "" && r.Instance == "" && r.Name == "" {
		return fmt.Errorf("rule must match on class, instance or name")
	}
	for _, pattern := range []string{r.Class, r.Instance, r.Name} {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
	}
	switch r.State {
	case "", "tiled", "pseudo_tiled", "floating", "fullscreen":
	default:
		return fmt.Errorf("state must be one of: tiled, pseudo_tiled, floating, fullscreen")
	}
	switch r.Layer {
	case "", "below", "normal", "above":
	default:
		return fmt.Errorf("layer must be one of: below, normal, above")
	}
	for _, f := range r.Flags {
		if _, err := tree.ParseFlag(f); err != nil {
			return err
		}
	}
	return nil
}
