package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lmburns/lwm/internal/tree"
	"github.com/lmburns/lwm/internal/wm"
)

type fakeDaemon struct {
	lines []string
	state wm.State
	err   error
}

func (f *fakeDaemon) Run(line string) error {
	f.lines = append(f.lines, line)
	return f.err
}

func (f *fakeDaemon) Query() (*wm.State, error) {
	st := f.state
	return &st, nil
}

func newTestServer() (*Server, *fakeDaemon) {
	leftClient := wm.ClientInfo{Window: 1, Class: "Alacritty", Desktop: "1"}
	rightClient := wm.ClientInfo{Window: 2, Class: "firefox", Desktop: "1", Focused: true, State: wm.Floating}
	d := &fakeDaemon{state: wm.State{
		FocusedDesktop: "1",
		Monitors: []wm.MonitorState{{
			Name: "eDP-1",
			Desktops: []wm.DesktopState{
				{
					Name:          "1",
					Focused:       true,
					FocusedWindow: 2,
					Clients:       []wm.ClientInfo{leftClient, rightClient},
					Root: &wm.NodeState{
						ID:         0,
						SplitType:  tree.Vertical,
						SplitRatio: 0.5,
						First:      &wm.NodeState{ID: 1, Window: 1, Client: &leftClient},
						Second:     &wm.NodeState{ID: 2, Window: 2, Client: &rightClient},
					},
				},
				{Name: "2"},
			},
		}},
	}}
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil))), d
}

func TestCommandTools(t *testing.T) {
	ctx := context.Background()
	ratio := 0.3

	tests := []struct {
		name string
		call func(s *Server) error
		want string
	}{
		{"focus", func(s *Server) error {
			_, _, err := s.handleFocusDirection(ctx, nil, FocusDirectionInput{Direction: "West"})
			return err
		}, "node focus west"},
		{"presel", func(s *Server) error {
			_, _, err := s.handlePresel(ctx, nil, PreselInput{Direction: "south", Ratio: &ratio})
			return err
		}, "node presel south 0.3"},
		{"presel cancel", func(s *Server) error {
			_, _, err := s.handlePresel(ctx, nil, PreselInput{Cancel: true})
			return err
		}, "node cancel"},
		{"ratio", func(s *Server) error {
			_, _, err := s.handleSetRatio(ctx, nil, SetRatioInput{Ratio: "+0.1"})
			return err
		}, "node ratio +0.1"},
		{"rotate", func(s *Server) error {
			_, _, err := s.handleRotate(ctx, nil, RotateInput{Angle: -90, Scope: "root"})
			return err
		}, "node rotate -90 root"},
		{"send", func(s *Server) error {
			_, _, err := s.handleSendToDesktop(ctx, nil, SendToDesktopInput{Desktop: "2", Follow: true})
			return err
		}, "desktop send 2 follow"},
		{"run", func(s *Server) error {
			_, _, err := s.handleRunCommand(ctx, nil, RunCommandInput{Command: "desktop layout monocle"})
			return err
		}, "desktop layout monocle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestServer()
			if err := tt.call(s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(d.lines) != 1 || d.lines[0] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, d.lines)
			}
		})
	}
}

func TestCommandTools_RejectBadInput(t *testing.T) {
	ctx := context.Background()
	bad := 1.5

	tests := []struct {
		name string
		call func(s *Server) error
	}{
		{"direction", func(s *Server) error {
			_, _, err := s.handleFocusDirection(ctx, nil, FocusDirectionInput{Direction: "sideways"})
			return err
		}},
		{"presel ratio", func(s *Server) error {
			_, _, err := s.handlePresel(ctx, nil, PreselInput{Direction: "east", Ratio: &bad})
			return err
		}},
		{"ratio", func(s *Server) error {
			_, _, err := s.handleSetRatio(ctx, nil, SetRatioInput{Ratio: "half"})
			return err
		}},
		{"angle", func(s *Server) error {
			_, _, err := s.handleRotate(ctx, nil, RotateInput{Angle: 45})
			return err
		}},
		{"desktop", func(s *Server) error {
			_, _, err := s.handleSendToDesktop(ctx, nil, SendToDesktopInput{Desktop: "2 follow"})
			return err
		}},
		{"command", func(s *Server) error {
			_, _, err := s.handleRunCommand(ctx, nil, RunCommandInput{Command: "launch rockets"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestServer()
			if err := tt.call(s); err == nil {
				t.Fatalf("expected an error")
			}
			if len(d.lines) != 0 {
				t.Fatalf("expected nothing sent to the daemon, got %v", d.lines)
			}
		})
	}
}

func TestRun_ReportsFocusedClient(t *testing.T) {
	s, _ := newTestServer()
	_, out, err := s.handleFocusDirection(context.Background(), nil, FocusDirectionInput{Direction: "east"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Focused == nil || out.Focused.Window != 2 {
		t.Fatalf("expected focused window 2, got %+v", out.Focused)
	}
}

func TestRun_WrapsDaemonError(t *testing.T) {
	s, d := newTestServer()
	d.err = wm.ErrNoFocus
	_, _, err := s.handleFocusDirection(context.Background(), nil, FocusDirectionInput{Direction: "east"})
	if !errors.Is(err, wm.ErrNoFocus) {
		t.Fatalf("expected ErrNoFocus, got %v", err)
	}
}

func TestQueryTree(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	_, out, err := s.handleQueryTree(ctx, nil, QueryTreeInput{Dot: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Desktop.Name != "1" || len(out.Desktop.Leaves()) != 2 {
		t.Fatalf("expected focused desktop 1 with 2 leaves, got %s/%d", out.Desktop.Name, len(out.Desktop.Leaves()))
	}
	if !strings.Contains(out.Dot, "firefox") {
		t.Fatalf("expected DOT to mention firefox, got:\n%s", out.Dot)
	}

	if _, _, err := s.handleQueryTree(ctx, nil, QueryTreeInput{Desktop: "9"}); err == nil {
		t.Fatalf("expected an error for an unknown desktop")
	}
}

func TestListClients(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	tests := []struct {
		name string
		in   ListClientsInput
		want int
	}{
		{"all", ListClientsInput{}, 2},
		{"class glob", ListClientsInput{Class: "Ala*"}, 1},
		{"floating", ListClientsInput{State: "floating"}, 1},
		{"focused", ListClientsInput{Focused: true}, 1},
		{"other desktop", ListClientsInput{Desktop: "2"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListClients(ctx, nil, tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Count != tt.want || len(out.Clients) != tt.want {
				t.Fatalf("expected %d clients, got %d", tt.want, out.Count)
			}
		})
	}
}
