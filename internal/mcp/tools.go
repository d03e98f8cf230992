package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/render"
	"github.com/lmburns/lwm/internal/wm"
)

func (s *Server) handleQueryTree(_ context.Context, _ *mcpsdk.CallToolRequest, args QueryTreeInput) (*mcpsdk.CallToolResult, QueryTreeOutput, error) {
	st, err := s.daemon.Query()
	if err != nil {
		return nil, QueryTreeOutput{}, err
	}
	d, ok := st.Desktop(args.Desktop)
	if !ok {
		if args.Desktop == "" {
			return nil, QueryTreeOutput{}, fmt.Errorf("no focused desktop")
		}
		return nil, QueryTreeOutput{}, fmt.Errorf("no desktop named %q", args.Desktop)
	}

	out := QueryTreeOutput{Desktop: d}
	if args.Dot {
		out.Dot = render.ToDOT(d, render.Options{Detailed: true})
	}
	return nil, out, nil
}

func (s *Server) handleListClients(_ context.Context, _ *mcpsdk.CallToolRequest, args ListClientsInput) (*mcpsdk.CallToolResult, ListClientsOutput, error) {
	st, err := s.daemon.Query()
	if err != nil {
		return nil, ListClientsOutput{}, err
	}
	clients := st.FilterClients(wm.ClientFilter{
		Desktop: args.Desktop,
		Class:   args.Class,
		State:   args.State,
		Focused: args.Focused,
		Urgent:  args.Urgent,
	})
	if clients == nil {
		clients = []wm.ClientInfo{}
	}
	s.log.Debug("mcp list_clients", "count", len(clients))
	return nil, ListClientsOutput{Clients: clients, Count: len(clients)}, nil
}

func (s *Server) handleFocusDirection(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusDirectionInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	dir, err := geometry.ParseDirection(args.Direction)
	if err != nil {
		return nil, CommandOutput{}, err
	}
	return s.run("node focus " + dir.String())
}

func (s *Server) handlePresel(_ context.Context, _ *mcpsdk.CallToolRequest, args PreselInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	if args.Cancel {
		return s.run("node cancel")
	}
	dir, err := geometry.ParseDirection(args.Direction)
	if err != nil {
		return nil, CommandOutput{}, err
	}
	line := "node presel " + dir.String()
	if args.Ratio != nil {
		if *args.Ratio <= 0 || *args.Ratio >= 1 {
			return nil, CommandOutput{}, fmt.Errorf("ratio must be between 0 and 1, got %v", *args.Ratio)
		}
		line += " " + strconv.FormatFloat(*args.Ratio, 'f', -1, 64)
	}
	return s.run(line)
}

func (s *Server) handleSetRatio(_ context.Context, _ *mcpsdk.CallToolRequest, args SetRatioInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	ratio := strings.TrimSpace(args.Ratio)
	if _, err := strconv.ParseFloat(ratio, 64); err != nil {
		return nil, CommandOutput{}, fmt.Errorf("invalid ratio %q", args.Ratio)
	}
	return s.run("node ratio " + ratio)
}

func (s *Server) handleRotate(_ context.Context, _ *mcpsdk.CallToolRequest, args RotateInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	switch args.Angle {
	case 90, 180, 270, -90, -180, -270:
	default:
		return nil, CommandOutput{}, fmt.Errorf("angle must be a multiple of 90, got %d", args.Angle)
	}
	line := "node rotate " + strconv.Itoa(args.Angle)
	if args.Scope != "" {
		line += " " + args.Scope
	}
	return s.run(line)
}

func (s *Server) handleSendToDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args SendToDesktopInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	desktop := strings.TrimSpace(args.Desktop)
	if desktop == "" || strings.ContainsAny(desktop, " \t") {
		return nil, CommandOutput{}, fmt.Errorf("invalid desktop %q", args.Desktop)
	}
	line := "desktop send " + desktop
	if args.Follow {
		line += " follow"
	}
	return s.run(line)
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	if _, err := wm.ParseCommand(args.Command); err != nil {
		return nil, CommandOutput{}, err
	}
	return s.run(strings.TrimSpace(args.Command))
}

// run executes line on the daemon and reports the focused window after it.
func (s *Server) run(line string) (*mcpsdk.CallToolResult, CommandOutput, error) {
	s.log.Debug("mcp command", "command", line)
	if err := s.daemon.Run(line); err != nil {
		return nil, CommandOutput{}, fmt.Errorf("%s: %w", line, err)
	}

	out := CommandOutput{Command: line}
	if st, err := s.daemon.Query(); err == nil {
		if focused := st.FilterClients(wm.ClientFilter{Focused: true}); len(focused) > 0 {
			out.Focused = &focused[0]
		}
	}
	return nil, out, nil
}
