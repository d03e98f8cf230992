package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/ipc"
	"github.com/lmburns/lwm/internal/palette"
	"github.com/lmburns/lwm/internal/tree"
	"github.com/lmburns/lwm/internal/wm"
)

type fakeHandler struct {
	mu      sync.Mutex
	lines   []string
	reloads int
}

func (f *fakeHandler) Run(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeHandler) Snapshot() (wm.State, error) {
	term := wm.ClientInfo{Window: 0x400001, Class: "Alacritty", Desktop: "1", Focused: true}
	web := wm.ClientInfo{Window: 0x400002, Class: "firefox", Desktop: "1", State: wm.Floating}
	return wm.State{
		FocusedDesktop: "1",
		Monitors: []wm.MonitorState{{
			Name:    "eDP-1",
			Focused: true,
			Desktops: []wm.DesktopState{
				{
					Name:          "1",
					Focused:       true,
					FocusedWindow: 0x400001,
					Clients:       []wm.ClientInfo{term, web},
					Root: &wm.NodeState{
						SplitType:  tree.Vertical,
						SplitRatio: 0.5,
						First:      &wm.NodeState{ID: 1, Window: 0x400001, Client: &term},
						Second:     &wm.NodeState{ID: 2, Window: 0x400002, Client: &web},
					},
				},
				{Name: "2", Index: 1},
			},
		}},
	}, nil
}

func (f *fakeHandler) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeHandler) Status() ipc.StatusData {
	return ipc.StatusData{Version: "test", PID: 1, FocusedDesktop: "1"}
}

func (f *fakeHandler) seen() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...), f.reloads
}

func startDaemon(t *testing.T) (string, *fakeHandler) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lwm.sock")
	h := &fakeHandler{}
	srv, err := ipc.NewServer(path, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return path, h
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out, io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPassthroughCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"focus", []string{"node", "focus", "west"}, "node focus west"},
		{"negative rotate", []string{"node", "rotate", "-90"}, "node rotate -90"},
		{"relative ratio", []string{"node", "ratio", "-0.1"}, "node ratio -0.1"},
		{"desktop send", []string{"desktop", "send", "2", "follow"}, "desktop send 2 follow"},
		{"monitor", []string{"monitor", "focus", "next"}, "monitor focus next"},
		{"quit", []string{"quit"}, "quit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sock, h := startDaemon(t)
			args := append([]string{"--socket", sock}, tt.args...)
			if _, err := execute(t, args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lines, _ := h.seen()
			if len(lines) != 1 || lines[0] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, lines)
			}
		})
	}
}

func TestPassthrough_RejectsBadCommandLocally(t *testing.T) {
	sock, h := startDaemon(t)
	if _, err := execute(t, "--socket", sock, "node", "launch", "rockets"); err == nil {
		t.Fatalf("expected an error")
	}
	if lines, _ := h.seen(); len(lines) != 0 {
		t.Fatalf("expected nothing sent, got %v", lines)
	}
}

func TestStripGlobalFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		rest    []string
		help    bool
		socket  string
		config  string
		verbose bool
		wantErr bool
	}{
		{name: "plain", args: []string{"focus", "west"}, rest: []string{"focus", "west"}},
		{name: "socket", args: []string{"--socket", "/tmp/s", "close"}, rest: []string{"close"}, socket: "/tmp/s"},
		{name: "socket equals", args: []string{"close", "--socket=/tmp/s"}, rest: []string{"close"}, socket: "/tmp/s"},
		{name: "config short", args: []string{"-c", "a.yaml", "close"}, rest: []string{"close"}, config: "a.yaml"},
		{name: "verbose", args: []string{"-v", "rotate", "-90"}, rest: []string{"rotate", "-90"}, verbose: true},
		{name: "help", args: []string{"--help"}, help: true},
		{name: "selector kept", args: []string{"focus", "class=firefox"}, rest: []string{"focus", "class=firefox"}},
		{name: "missing value", args: []string{"close", "--socket"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app{}
			rest, help, err := a.stripGlobalFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(rest, " ") != strings.Join(tt.rest, " ") {
				t.Fatalf("expected rest %v, got %v", tt.rest, rest)
			}
			if help != tt.help || a.socketPath != tt.socket || a.configPath != tt.config || a.verbose != tt.verbose {
				t.Fatalf("expected help=%v socket=%q config=%q verbose=%v, got %v %q %q %v",
					tt.help, tt.socket, tt.config, tt.verbose, help, a.socketPath, a.configPath, a.verbose)
			}
		})
	}
}

func TestReloadCommand(t *testing.T) {
	sock, h := startDaemon(t)
	if _, err := execute(t, "--socket", sock, "reload"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, reloads := h.seen(); reloads != 1 {
		t.Fatalf("expected 1 reload, got %d", reloads)
	}
}

func TestQueryClients_JSON(t *testing.T) {
	sock, _ := startDaemon(t)
	out, err := execute(t, "--socket", sock, "query", "clients", "--state", "floating")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var clients []wm.ClientInfo
	if err := json.Unmarshal([]byte(out), &clients); err != nil {
		t.Fatalf("expected JSON output, got %v:\n%s", err, out)
	}
	if len(clients) != 1 || clients[0].Class != "firefox" {
		t.Fatalf("expected the floating firefox window, got %+v", clients)
	}
}

func TestQueryTree_JSON(t *testing.T) {
	sock, _ := startDaemon(t)
	out, err := execute(t, "--socket", sock, "query", "tree")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var d wm.DesktopState
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if d.Name != "1" || len(d.Leaves()) != 2 {
		t.Fatalf("expected desktop 1 with 2 leaves, got %s with %d", d.Name, len(d.Leaves()))
	}

	if _, err := execute(t, "--socket", sock, "query", "tree", "-d", "nope"); err == nil {
		t.Fatalf("expected an error for an unknown desktop")
	}
}

func TestTreeCommand_Formats(t *testing.T) {
	sock, _ := startDaemon(t)

	out, err := execute(t, "--socket", sock, "tree")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "vertical 0.50\n") || !strings.Contains(out, "Alacritty 0x00400001 ◀") {
		t.Fatalf("expected a text tree, got:\n%s", out)
	}

	out, err = execute(t, "--socket", sock, "tree", "--format", "dot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Fatalf("expected DOT output, got:\n%s", out)
	}

	if _, err := execute(t, "--socket", sock, "tree", "--format", "png"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestTableOutput(t *testing.T) {
	h := &fakeHandler{}
	st, _ := h.Snapshot()

	var buf bytes.Buffer
	o := output{w: &buf}
	if err := writeClients(o, st.Clients()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table := buf.String()
	for _, want := range []string{"window", "0x00400001", "Alacritty", "floating"} {
		if !strings.Contains(table, want) {
			t.Fatalf("expected table to contain %q, got:\n%s", want, table)
		}
	}

	buf.Reset()
	if err := writeDesktops(o, st.FilterDesktops(wm.DesktopFilter{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "layout") {
		t.Fatalf("expected a desktops table, got:\n%s", buf.String())
	}
}

func TestWriteClients_EmptyJSONArray(t *testing.T) {
	var buf bytes.Buffer
	if err := writeClients(output{w: &buf, asJSON: true}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestConfigPrintDefaults(t *testing.T) {
	out, err := execute(t, "config", "print", "--defaults")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("expected YAML, got %v", err)
	}
	if cfg.WindowGap != 6 || len(cfg.Desktops) != 5 {
		t.Fatalf("expected default gap 6 and 5 desktops, got %d and %d", cfg.WindowGap, len(cfg.Desktops))
	}
}

func TestConfigValidateAndExplain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.WindowGap = 10
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	out, err := execute(t, "--config", path, "config", "validate")
	if err != nil || !strings.Contains(out, "config: ok") {
		t.Fatalf("expected config: ok, got %q (%v)", out, err)
	}

	out, err = execute(t, "--config", path, "config", "explain", "window_gap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "source: file:") || !strings.Contains(out, "10") {
		t.Fatalf("expected a file source and value 10, got:\n%s", out)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/a.yaml", Line: 3, Column: 1}, "file:/a.yaml:3:1"},
		{config.Source{Kind: config.SourceFile, File: "/a.yaml"}, "file:/a.yaml"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatSource(tt.src); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "lwm dev\n" {
		t.Fatalf("expected %q, got %q", "lwm dev\n", out)
	}
}

type pickFirst struct{ err error }

func (p pickFirst) Name() string { return "test" }

func (p pickFirst) Show(ctx context.Context, prompt string, items []palette.Item) (palette.Item, error) {
	if p.err != nil {
		return palette.Item{}, p.err
	}
	for _, it := range items {
		if !it.IsHeader {
			return it, nil
		}
	}
	return palette.Item{}, palette.ErrCancelled
}

func TestRunMenu(t *testing.T) {
	sock, h := startDaemon(t)
	a := &app{socketPath: sock, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	items, err := a.menuItems("windows")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.runMenu(context.Background(), pickFirst{}, "windows", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines, _ := h.seen()
	want := "desktop focus 1|node focus window=0x400001"
	if strings.Join(lines, "|") != want {
		t.Fatalf("expected %q, got %v", want, lines)
	}

	if err := a.runMenu(context.Background(), pickFirst{err: palette.ErrCancelled}, "windows", items); err != nil {
		t.Fatalf("expected cancel to be quiet, got %v", err)
	}
	if _, err := a.menuItems("apps"); err == nil {
		t.Fatalf("expected an error for an unknown menu")
	}
}
