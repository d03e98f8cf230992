package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/wm"
)

// serialLoop runs posted functions one at a time on its own goroutine.
type serialLoop struct {
	posts  chan func()
	paused bool
}

func newSerialLoop(t *testing.T) *serialLoop {
	l := &serialLoop{posts: make(chan func(), 8)}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-l.posts:
				fn()
			}
		}
	}()
	return l
}

func (l *serialLoop) Run(ctx context.Context, handle func(platform.Event)) error { return nil }

func (l *serialLoop) Post(fn func()) {
	if l.paused {
		return
	}
	l.posts <- fn
}

type fakeController struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (f *fakeController) Run(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	return f.err
}

func (f *fakeController) Snapshot() wm.State {
	return wm.State{
		FocusedDesktop: "2",
		Monitors: []wm.MonitorState{
			{Name: "A", Desktops: []wm.DesktopState{{Name: "1"}, {Name: "2", Clients: []wm.ClientInfo{{Window: 5}, {Window: 6}}}}},
			{Name: "B", Desktops: []wm.DesktopState{{Name: "3"}}},
		},
	}
}

func (f *fakeController) Reconcile() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, "reconcile")
	return 1, 0
}

func (f *fakeController) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func TestLoopBridge_Run(t *testing.T) {
	c := &fakeController{}
	b := newLoopBridge(newSerialLoop(t), c, nil, "test", nil)

	if err := b.Run("node focus west"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.seen(); len(got) != 1 || got[0] != "node focus west" {
		t.Fatalf("expected the line to run on the loop, got %v", got)
	}

	c.mu.Lock()
	c.err = wm.ErrNoFocus
	c.mu.Unlock()
	if err := b.Run("node close"); !errors.Is(err, wm.ErrNoFocus) {
		t.Fatalf("expected ErrNoFocus, got %v", err)
	}
}

func TestLoopBridge_Status(t *testing.T) {
	files := func() []string { return []string{"/etc/lwm.yaml"} }
	b := newLoopBridge(newSerialLoop(t), &fakeController{}, nil, "v1", files)

	status := b.Status()
	if status.Version != "v1" || status.PID == 0 {
		t.Fatalf("expected version v1 and a pid, got %+v", status)
	}
	if status.Monitors != 2 || status.Desktops != 3 || status.Clients != 2 {
		t.Fatalf("expected 2 monitors, 3 desktops, 2 clients, got %+v", status)
	}
	if status.FocusedDesktop != "2" || len(status.ConfigFiles) != 1 {
		t.Fatalf("expected focused desktop 2 and one config file, got %+v", status)
	}
}

func TestLoopBridge_Reload(t *testing.T) {
	calls := 0
	reload := func() error {
		calls++
		return nil
	}
	b := newLoopBridge(newSerialLoop(t), &fakeController{}, reload, "", nil)
	if err := b.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 reload, got %d", calls)
	}
}

func TestLoopBridge_TimesOutWhenLoopIsStuck(t *testing.T) {
	loop := newSerialLoop(t)
	loop.paused = true
	b := newLoopBridge(loop, &fakeController{}, nil, "", nil)
	b.timeout = 20 * time.Millisecond

	if err := b.Run("node close"); !errors.Is(err, ErrLoopBusy) {
		t.Fatalf("expected ErrLoopBusy, got %v", err)
	}
	status := b.Status()
	if status.PID == 0 || status.Monitors != 0 {
		t.Fatalf("expected process info without counts, got %+v", status)
	}
}

// heldLoop keeps posted functions until flush runs them.
type heldLoop struct {
	mu    sync.Mutex
	posts []func()
}

func (l *heldLoop) Run(ctx context.Context, handle func(platform.Event)) error { return nil }

func (l *heldLoop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posts = append(l.posts, fn)
}

func (l *heldLoop) flush(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		l.mu.Lock()
		n := len(l.posts)
		l.mu.Unlock()
		if n >= want || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	l.mu.Lock()
	posts := l.posts
	l.posts = nil
	l.mu.Unlock()
	if len(posts) != want {
		t.Fatalf("expected %d posted calls, got %d", want, len(posts))
	}
	for _, fn := range posts {
		fn()
	}
}

func TestLoopBridge_LateResultsAreDropped(t *testing.T) {
	loop := &heldLoop{}
	c := &fakeController{}
	b := newLoopBridge(loop, c, nil, "", nil)
	b.timeout = 20 * time.Millisecond

	st, err := b.Snapshot()
	if !errors.Is(err, ErrLoopBusy) {
		t.Fatalf("expected ErrLoopBusy, got %v", err)
	}
	if err := b.Run("node close"); !errors.Is(err, ErrLoopBusy) {
		t.Fatalf("expected ErrLoopBusy, got %v", err)
	}

	loop.flush(t, 2)
	if len(st.Monitors) != 0 {
		t.Fatalf("expected the timed-out snapshot to stay empty, got %d monitors", len(st.Monitors))
	}
	if got := c.seen(); len(got) != 1 || got[0] != "node close" {
		t.Fatalf("expected the late command to apply, got %v", got)
	}
}

func TestReconciler_PostsToLoop(t *testing.T) {
	c := &fakeController{}
	r := NewReconciler(ReconcilerConfig{
		Interval: 5 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, newSerialLoop(t), c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(c.seen()) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected a reconcile pass within the deadline")
}
