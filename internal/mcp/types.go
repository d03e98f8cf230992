package mcp

import "github.com/lmburns/lwm/internal/wm"

// QueryTreeInput is the input for the query_tree tool.
type QueryTreeInput struct {
	Desktop string `json:"desktop,omitempty" jsonschema:"Desktop name (default: the focused desktop)"`
	Dot     bool   `json:"dot,omitempty" jsonschema:"When true, include a Graphviz DOT rendering of the tree"`
}

// QueryTreeOutput is the output for the query_tree tool.
type QueryTreeOutput struct {
	Desktop wm.DesktopState `json:"desktop"`
	Dot     string          `json:"dot,omitempty"`
}

// ListClientsInput is the input for the list_clients tool.
type ListClientsInput struct {
	Desktop string `json:"desktop,omitempty" jsonschema:"Only windows on this desktop"`
	Class   string `json:"class,omitempty" jsonschema:"Window class glob, e.g. Firefox or *term*"`
	State   string `json:"state,omitempty" jsonschema:"tiled, pseudo_tiled, floating or fullscreen"`
	Focused bool   `json:"focused,omitempty" jsonschema:"Only the focused window"`
	Urgent  bool   `json:"urgent,omitempty" jsonschema:"Only windows with the urgency hint"`
}

// ListClientsOutput is the output for the list_clients tool.
type ListClientsOutput struct {
	Clients []wm.ClientInfo `json:"clients"`
	Count   int             `json:"count"`
}

// FocusDirectionInput is the input for the focus_direction tool.
type FocusDirectionInput struct {
	Direction string `json:"direction" jsonschema:"required,north, south, east or west"`
}

// PreselInput is the input for the presel tool.
type PreselInput struct {
	Direction string   `json:"direction,omitempty" jsonschema:"north, south, east or west (required unless cancel is set)"`
	Ratio     *float64 `json:"ratio,omitempty" jsonschema:"Share of the split given to the new window, in (0,1)"`
	Cancel    bool     `json:"cancel,omitempty" jsonschema:"Cancel the focused window's preselection"`
}

// SetRatioInput is the input for the set_ratio tool.
type SetRatioInput struct {
	Ratio string `json:"ratio" jsonschema:"required,Absolute ratio such as 0.6, or relative change such as +0.1"`
}

// RotateInput is the input for the rotate tool.
type RotateInput struct {
	Angle int    `json:"angle" jsonschema:"required,90, 180, 270 or their negatives"`
	Scope string `json:"scope,omitempty" jsonschema:"parent (default) or root"`
}

// SendToDesktopInput is the input for the send_to_desktop tool.
type SendToDesktopInput struct {
	Desktop string `json:"desktop" jsonschema:"required,Desktop name, 1-based index, next, prev or last"`
	Follow  bool   `json:"follow,omitempty" jsonschema:"Switch to the target desktop as well"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string `json:"command" jsonschema:"required,An lwm command line"`
}

// CommandOutput is returned by tools that change the layout.
type CommandOutput struct {
	Command string `json:"command"`
	// Focused is the focused window after the command, when there is one.
	Focused *wm.ClientInfo `json:"focused,omitempty"`
}
