package daemon

import (
	"errors"
	"os"
	"time"

	"github.com/lmburns/lwm/internal/ipc"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/wm"
)

// ErrLoopBusy is returned when the event loop does not pick up a request
// in time.
var ErrLoopBusy = errors.New("window manager did not respond in time")

const defaultCallTimeout = 3 * time.Second

// controller is the part of wm.Manager the IPC bridge drives.
type controller interface {
	Run(line string) error
	Snapshot() wm.State
}

// loopBridge serves IPC requests by running them on the event loop and
// waiting for the result. The manager itself is never touched from a
// connection goroutine.
type loopBridge struct {
	loop    platform.Loop
	wm      controller
	reload  func() error
	version string
	files   func() []string
	started time.Time
	timeout time.Duration
}

var _ ipc.Handler = (*loopBridge)(nil)

func newLoopBridge(loop platform.Loop, c controller, reload func() error, version string, files func() []string) *loopBridge {
	return &loopBridge{
		loop:    loop,
		wm:      c,
		reload:  reload,
		version: version,
		files:   files,
		started: time.Now(),
		timeout: defaultCallTimeout,
	}
}

type result[R any] struct {
	val R
	err error
}

// await runs fn on the loop and waits for its result. On timeout the posted
// function is not withdrawn: it still runs once the loop gets to it, so a
// command reported as ErrLoopBusy may apply later. Its result is then
// dropped into the buffered channel and never read.
func await[R any](b *loopBridge, fn func() (R, error)) (R, error) {
	done := make(chan result[R], 1)
	go b.loop.Post(func() {
		v, err := fn()
		done <- result[R]{v, err}
	})

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		var zero R
		return zero, ErrLoopBusy
	}
}

func (b *loopBridge) call(fn func() error) error {
	_, err := await(b, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (b *loopBridge) Run(line string) error {
	return b.call(func() error { return b.wm.Run(line) })
}

func (b *loopBridge) Snapshot() (wm.State, error) {
	return await(b, func() (wm.State, error) { return b.wm.Snapshot(), nil })
}

func (b *loopBridge) Reload() error {
	return b.call(b.reload)
}

// Status reports process information even when the loop is stuck; the
// window counts are then zero.
func (b *loopBridge) Status() ipc.StatusData {
	status := ipc.StatusData{
		Version:       b.version,
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(b.started).Seconds()),
	}
	if b.files != nil {
		status.ConfigFiles = b.files()
	}

	st, err := b.Snapshot()
	if err != nil {
		return status
	}
	status.Monitors = len(st.Monitors)
	for _, m := range st.Monitors {
		status.Desktops += len(m.Desktops)
	}
	status.Clients = len(st.Clients())
	status.FocusedDesktop = st.FocusedDesktop
	return status
}
