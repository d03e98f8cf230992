// Package mcp exposes the running window manager to MCP clients. Every tool
// is a thin wrapper over the daemon's IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lmburns/lwm/internal/wm"
)

const (
	ServerName    = "lwm"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	Run(line string) error
	Query() (*wm.State, error)
}

// Server is the MCP server for lwm.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	log       *slog.Logger
}

// NewServer creates a new MCP server that talks to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		log:    logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "query_tree",
		Description: "Return the tiling tree of a desktop (default: the focused desktop). Internal nodes carry split type and ratio, leaves carry the window and its client. Set dot to also get a Graphviz rendering.",
	}, s.handleQueryTree)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_clients",
		Description: "List managed windows with class, title, state, flags, desktop and rectangle. Optional filters narrow the list; class accepts glob patterns.",
	}, s.handleListClients)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_direction",
		Description: "Focus the window north, south, east or west of the focused one. When nothing lies that way on the desktop, focus moves to the neighbouring monitor.",
	}, s.handleFocusDirection)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "presel",
		Description: "Preselect where the next window on the focused desktop opens: a direction relative to the focused window and an optional split ratio. Set cancel to drop the preselection.",
	}, s.handlePresel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_ratio",
		Description: "Set the split ratio of the focused window's parent. Accepts an absolute value in (0,1) or a relative change such as +0.1 or -0.05.",
	}, s.handleSetRatio)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rotate",
		Description: "Rotate the focused window's parent subtree by 90, 180 or 270 degrees (negative angles rotate the other way). scope may be parent or root.",
	}, s.handleRotate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_to_desktop",
		Description: "Move the focused window to another desktop, given by name, 1-based index, next, prev or last. Set follow to switch to that desktop as well.",
	}, s.handleSendToDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run any lwm command line, for example \"node state ~floating\" or \"desktop layout monocle\".",
	}, s.handleRunCommand)
}
