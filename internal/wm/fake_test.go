package wm

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/geometry"
	"github.com/lmburns/lwm/internal/platform"
)

// fakeBackend records what the manager asks of the window system.
type fakeBackend struct {
	monitors   []platform.Monitor
	existing   []platform.Window
	identities map[platform.Window]platform.Identity
	initial    map[platform.Window]geometry.Rectangle
	// gone windows no longer exist on the server.
	gone map[platform.Window]bool

	rects     map[platform.Window]geometry.Rectangle
	borders   map[platform.Window]uint
	confirmed map[platform.Window]geometry.Rectangle
	colors    map[platform.Window]uint32
	mapped    map[platform.Window]bool
	states    map[platform.Window][]string
	desktopOf map[platform.Window]int
	feedback  map[platform.Window]geometry.Rectangle

	focused      platform.Window
	active       platform.Window
	stack        []platform.Window
	closed       []platform.Window
	killed       []platform.Window
	warps        []geometry.Point
	pointer      geometry.Point
	desktopNames []string
	current      int
	clientList   []platform.Window
	nextFeedback platform.Window
}

func newFakeBackend(mons ...platform.Monitor) *fakeBackend {
	if len(mons) == 0 {
		mons = []platform.Monitor{{ID: 0, Name: "eDP-1", Bounds: geometry.Rect(0, 0, 1000, 800)}}
	}
	return &fakeBackend{
		monitors:     mons,
		identities:   make(map[platform.Window]platform.Identity),
		initial:      make(map[platform.Window]geometry.Rectangle),
		gone:         make(map[platform.Window]bool),
		rects:        make(map[platform.Window]geometry.Rectangle),
		borders:      make(map[platform.Window]uint),
		confirmed:    make(map[platform.Window]geometry.Rectangle),
		colors:       make(map[platform.Window]uint32),
		mapped:       make(map[platform.Window]bool),
		states:       make(map[platform.Window][]string),
		desktopOf:    make(map[platform.Window]int),
		feedback:     make(map[platform.Window]geometry.Rectangle),
		nextFeedback: 0x1000,
	}
}

func (f *fakeBackend) Monitors() ([]platform.Monitor, error) { return f.monitors, nil }

func (f *fakeBackend) Pointer() (geometry.Point, error) { return f.pointer, nil }

func (f *fakeBackend) ExistingWindows() ([]platform.Window, error) { return f.existing, nil }

func (f *fakeBackend) QueryGeometry(w platform.Window) (geometry.Rectangle, error) {
	if f.gone[w] {
		return geometry.Rectangle{}, fmt.Errorf("bad window %d", w)
	}
	return f.initial[w], nil
}

func (f *fakeBackend) WindowIdentity(w platform.Window) (platform.Identity, error) {
	id, ok := f.identities[w]
	if !ok {
		return platform.Identity{}, fmt.Errorf("no identity for %d", w)
	}
	return id, nil
}

func (f *fakeBackend) Manage(platform.Window) error { return nil }

func (f *fakeBackend) ApplyGeometry(w platform.Window, r geometry.Rectangle, border uint) error {
	if _, ok := f.feedback[w]; ok {
		f.feedback[w] = r
		return nil
	}
	f.rects[w] = r
	f.borders[w] = border
	return nil
}

func (f *fakeBackend) ConfirmGeometry(w platform.Window, r geometry.Rectangle, border uint) error {
	f.confirmed[w] = r
	return nil
}

func (f *fakeBackend) Map(w platform.Window) error {
	f.mapped[w] = true
	return nil
}

func (f *fakeBackend) Unmap(w platform.Window) error {
	f.mapped[w] = false
	return nil
}

func (f *fakeBackend) Focus(w platform.Window) error {
	f.focused = w
	return nil
}

func (f *fakeBackend) Restack(order []platform.Window) error {
	f.stack = append([]platform.Window(nil), order...)
	return nil
}

func (f *fakeBackend) SetBorderColor(w platform.Window, color uint32) error {
	f.colors[w] = color
	return nil
}

func (f *fakeBackend) WarpPointer(p geometry.Point) error {
	f.warps = append(f.warps, p)
	f.pointer = p
	return nil
}

func (f *fakeBackend) Close(w platform.Window) error {
	f.closed = append(f.closed, w)
	return nil
}

func (f *fakeBackend) Kill(w platform.Window) error {
	f.killed = append(f.killed, w)
	return nil
}

func (f *fakeBackend) ShowFeedback(r geometry.Rectangle, color uint32) (platform.Window, error) {
	f.nextFeedback++
	f.feedback[f.nextFeedback] = r
	return f.nextFeedback, nil
}

func (f *fakeBackend) HideFeedback(w platform.Window) error {
	delete(f.feedback, w)
	return nil
}

func (f *fakeBackend) SetWindowStates(w platform.Window, states []string) error {
	f.states[w] = states
	return nil
}

func (f *fakeBackend) SetWindowDesktop(w platform.Window, desktop int) error {
	f.desktopOf[w] = desktop
	return nil
}

func (f *fakeBackend) PublishDesktops(names []string, current int) error {
	f.desktopNames = names
	f.current = current
	return nil
}

func (f *fakeBackend) PublishActive(w platform.Window) error {
	f.active = w
	return nil
}

func (f *fakeBackend) PublishClientList(ws []platform.Window) error {
	f.clientList = ws
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, cfg *config.Config, mons ...platform.Monitor) (*Manager, *fakeBackend) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	fb := newFakeBackend(mons...)
	m := New(fb, cfg, discardLogger())
	if err := m.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return m, fb
}

// mapWindow delivers a map request for a window with the given class.
func mapWindow(m *Manager, fb *fakeBackend, w platform.Window, class string) {
	if _, ok := fb.identities[w]; !ok {
		fb.identities[w] = platform.Identity{Class: class, Instance: class, Name: class}
	}
	m.Handle(platform.Event{Kind: platform.MapRequest, Window: w})
}

func mustRun(t *testing.T, m *Manager, line string) {
	t.Helper()
	if err := m.Run(line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
}

func expectRect(t *testing.T, fb *fakeBackend, w platform.Window, want geometry.Rectangle) {
	t.Helper()
	if got := fb.rects[w]; got != want {
		t.Fatalf("window %d: expected %s, got %s", w, want, got)
	}
}
