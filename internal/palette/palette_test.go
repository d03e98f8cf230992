package palette

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lmburns/lwm/internal/wm"
)

type fakeRun struct {
	out   string
	err   error
	name  string
	args  []string
	stdin string
}

func (f *fakeRun) run(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	f.name, f.args, f.stdin = name, args, stdin
	return []byte(f.out), f.err
}

func testLauncher(t *testing.T, name string, f *fakeRun) *launcher {
	t.Helper()
	l, ok := newLauncher(name)
	if !ok {
		t.Fatalf("expected launcher %q to exist", name)
	}
	l.run = f.run
	return l
}

func hasArgs(args []string, want ...string) bool {
	for i := 0; i+len(want) <= len(args); i++ {
		match := true
		for j := range want {
			if args[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestRofiRow_SingleNullSeparator(t *testing.T) {
	l := testLauncher(t, "rofi", &fakeRun{})
	out := l.row(Item{Label: "1 on eDP-1", IsHeader: true, Icon: "folder", Meta: "meta"})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.HasPrefix(out, "<b>1 on eDP-1</b>\x00nonselectable\x1ftrue") {
		t.Fatalf("expected bold nonselectable header, got %q", out)
	}
	if !strings.Contains(out, "icon\x1ffolder") || !strings.Contains(out, "meta\x1fmeta") {
		t.Fatalf("expected icon and meta properties, got %q", out)
	}
}

func TestRow_EscapesMarkupAndControlChars(t *testing.T) {
	l := testLauncher(t, "rofi", &fakeRun{})
	if got := l.row(Item{Label: "a<b>\nc"}); got != "a&lt;b&gt; c" {
		t.Fatalf("expected escaped label, got %q", got)
	}

	d := testLauncher(t, "dmenu", &fakeRun{})
	if got := d.row(Item{Label: "<b>", IsHeader: true, Icon: "x"}); got != "<b>" {
		t.Fatalf("expected plain text for dmenu, got %q", got)
	}
}

func TestRofiArgs_SelectsActiveRow(t *testing.T) {
	l := testLauncher(t, "rofi", &fakeRun{})
	args := l.args("windows", []Item{
		{Label: "1", IsHeader: true},
		{Label: "a"},
		{Label: "b", IsActive: true},
		{Label: "c", IsUrgent: true},
	})

	for _, want := range [][]string{
		{"-format", "i"},
		{"-no-custom"},
		{"-p", "windows"},
		{"-a", "2"},
		{"-u", "3"},
		{"-selected-row", "2"},
	} {
		if !hasArgs(args, want...) {
			t.Fatalf("expected %v in %v", want, args)
		}
	}
}

func TestShow_ParsesSelection(t *testing.T) {
	items := []Item{
		{Label: "header", IsHeader: true},
		{Label: "term", Commands: []string{"a"}},
		{Label: "term", Commands: []string{"b"}},
	}

	tests := []struct {
		name    string
		backend string
		out     string
		want    string
	}{
		{"rofi index", "rofi", "2\n", "b"},
		{"fuzzel index", "fuzzel", "1", "a"},
		{"dmenu text", "dmenu", "term\n", "a"},
		{"dmenu duplicate", "dmenu", "term (2)", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRun{out: tt.out}
			l := testLauncher(t, tt.backend, f)
			got, err := l.Show(context.Background(), "p", items)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Commands) != 1 || got.Commands[0] != tt.want {
				t.Fatalf("expected command %q, got %v", tt.want, got.Commands)
			}
			if f.name != tt.backend {
				t.Fatalf("expected %s to run, got %s", tt.backend, f.name)
			}
		})
	}
}

func TestShow_Errors(t *testing.T) {
	items := []Item{{Label: "a"}}

	l := testLauncher(t, "rofi", &fakeRun{out: ""})
	if _, err := l.Show(context.Background(), "", items); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}

	l = testLauncher(t, "rofi", &fakeRun{out: "7"})
	if _, err := l.Show(context.Background(), "", items); err == nil {
		t.Fatalf("expected an out of range error")
	}

	l = testLauncher(t, "dmenu", &fakeRun{out: "zzz"})
	if _, err := l.Show(context.Background(), "", items); err == nil {
		t.Fatalf("expected an unknown selection error")
	}

	boom := errors.New("boom")
	l = testLauncher(t, "dmenu", &fakeRun{err: boom})
	if _, err := l.Show(context.Background(), "", items); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := l.Show(context.Background(), "", nil); err == nil {
		t.Fatalf("expected an error for no items")
	}
}

func TestNewBackend(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "wofi" || name == "dmenu" {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}

	b, err := NewBackend("auto")
	if err != nil || b.Name() != "wofi" {
		t.Fatalf("expected wofi, got %v (%v)", b, err)
	}
	if b, err := NewBackend(" DMENU "); err != nil || b.Name() != "dmenu" {
		t.Fatalf("expected dmenu, got %v (%v)", b, err)
	}
	if _, err := NewBackend("rofi"); err == nil {
		t.Fatalf("expected an error for a missing rofi")
	}
	if _, err := NewBackend("bemenu"); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if _, err := DetectBackend(); err == nil {
		t.Fatalf("expected an error when nothing is installed")
	}
}

type scriptedBackend struct {
	picks []int
	calls int
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Show(ctx context.Context, prompt string, items []Item) (Item, error) {
	i := s.picks[s.calls]
	s.calls++
	return items[i], nil
}

func TestPick_SkipsHeaders(t *testing.T) {
	items := []Item{{Label: "h", IsHeader: true}, {Label: "a", Commands: []string{"node close"}}}
	b := &scriptedBackend{picks: []int{0, 1}}

	got, err := Pick(context.Background(), b, "p", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.calls != 2 || len(got) != 1 || got[0] != "node close" {
		t.Fatalf("expected node close after 2 shows, got %v after %d", got, b.calls)
	}

	if _, err := Pick(context.Background(), b, "p", items[:1]); err == nil {
		t.Fatalf("expected an error when only headers are given")
	}
}

func testState() *wm.State {
	term := wm.ClientInfo{Window: 0x400001, Class: "Alacritty", Name: "zsh", Desktop: "1", Focused: true}
	web := wm.ClientInfo{Window: 0x400002, Class: "firefox", Name: "firefox", Desktop: "2", State: wm.Floating, Urgent: true}
	return &wm.State{
		FocusedDesktop: "1",
		Monitors: []wm.MonitorState{{
			Name:    "eDP-1",
			Focused: true,
			Desktops: []wm.DesktopState{
				{Name: "1", Focused: true, Clients: []wm.ClientInfo{term}},
				{Name: "2", Index: 1, Clients: []wm.ClientInfo{web}},
				{Name: "3", Index: 2},
			},
		}},
	}
}

func TestWindowItems(t *testing.T) {
	items := WindowItems(testState())
	if len(items) != 4 {
		t.Fatalf("expected 2 headers and 2 windows, got %d", len(items))
	}
	if !items[0].IsHeader || items[0].Label != "1" {
		t.Fatalf("expected header 1, got %+v", items[0])
	}
	if items[1].Label != "Alacritty: zsh" || !items[1].IsActive {
		t.Fatalf("expected focused Alacritty row, got %+v", items[1])
	}
	web := items[3]
	if web.Label != "firefox [floating]" || !web.IsUrgent {
		t.Fatalf("expected urgent floating firefox row, got %+v", web)
	}
	want := []string{"desktop focus 2", "node focus window=0x400002"}
	if strings.Join(web.Commands, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, web.Commands)
	}
	for _, c := range web.Commands {
		if _, err := wm.ParseCommand(c); err != nil {
			t.Fatalf("expected %q to parse, got %v", c, err)
		}
	}
}

func TestDesktopItems(t *testing.T) {
	items := DesktopItems(testState())
	if len(items) != 3 {
		t.Fatalf("expected 3 desktops, got %d", len(items))
	}
	if !items[0].IsActive || !items[1].IsUrgent || items[2].IsUrgent {
		t.Fatalf("expected focus on 1 and urgency on 2, got %+v", items)
	}
	if items[2].Commands[0] != "desktop focus 3" {
		t.Fatalf("expected desktop focus 3, got %v", items[2].Commands)
	}
}

func TestBindingItems_SortedByKey(t *testing.T) {
	items := BindingItems(map[string]string{
		"super-l": "node focus east",
		"super-h": "node focus west",
	})
	if len(items) != 2 || items[0].Meta != "super-h" || items[1].Commands[0] != "node focus east" {
		t.Fatalf("expected sorted bindings, got %+v", items)
	}
}
