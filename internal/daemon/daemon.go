// Package daemon wires the window manager core to the X display, key
// bindings, the IPC socket and configuration reloads, and runs the event
// loop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/hotkeys"
	"github.com/lmburns/lwm/internal/ipc"
	"github.com/lmburns/lwm/internal/platform"
	"github.com/lmburns/lwm/internal/wm"
)

// Options configure a daemon run.
type Options struct {
	// ConfigPath is the main config file. Empty means the XDG default.
	ConfigPath string
	// SocketPath overrides the IPC socket location.
	SocketPath string
	Version    string
	Logger     *slog.Logger
	// ReconcileInterval is the period of the drift check. Zero uses the
	// reconciler default; a negative value disables it.
	ReconcileInterval time.Duration
}

// Daemon holds the running components. Fields other than files are only
// touched on the event loop goroutine.
type Daemon struct {
	opts    Options
	log     *slog.Logger
	backend *platform.LinuxBackend
	mgr     *wm.Manager
	keys    *hotkeys.Handler

	filesMu sync.Mutex
	files   []string
}

// Run becomes the window manager of $DISPLAY and blocks until ctx is done,
// the quit command runs or the X connection is lost.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConfigPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		opts.ConfigPath = path
	}

	res, err := config.LoadFromPath(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("config loaded", "path", opts.ConfigPath, "files", len(res.Files))

	backend, err := platform.NewLinuxBackendFromDisplay("lwm", logger)
	if err != nil {
		return err
	}
	defer backend.Disconnect()

	d := &Daemon{
		opts:    opts,
		log:     logger,
		backend: backend,
		mgr:     wm.New(backend, res.Config, logger),
		files:   res.Files,
	}
	if err := d.mgr.Setup(); err != nil {
		return fmt.Errorf("failed to set up window manager: %w", err)
	}

	d.keys, err = hotkeys.NewHandler(backend, d.mgr.Handle, logger)
	if err != nil {
		return err
	}
	if err := d.keys.Bind(res.Config.Keybindings); err != nil {
		logger.Warn("some key bindings failed", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.mgr.SetControl(d.reload, cancel)

	bridge := newLoopBridge(backend, d.mgr, d.reload, opts.Version, d.configFiles)
	server, err := ipc.NewServer(opts.SocketPath, bridge, logger)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	d.watchConfig(ctx)
	d.handleSignals(ctx)

	if opts.ReconcileInterval >= 0 {
		reconciler := NewReconciler(ReconcilerConfig{
			Interval: opts.ReconcileInterval,
			Logger:   logger,
		}, backend, d.mgr)
		go reconciler.Run(ctx)
	}

	logger.Info("entering event loop")
	err = backend.Run(ctx, d.mgr.Handle)
	if errors.Is(err, platform.ErrLoopStopped) {
		return fmt.Errorf("lost connection to the X server: %w", err)
	}
	logger.Info("shutting down")
	return err
}

// reload re-reads the configuration and rebinds keys. It runs on the event
// loop. A config that fails to load leaves the running one in place.
func (d *Daemon) reload() error {
	res, err := config.LoadFromPath(d.opts.ConfigPath)
	if err != nil {
		return err
	}
	d.mgr.Reload(res.Config)
	if err := d.keys.Bind(res.Config.Keybindings); err != nil {
		d.log.Warn("some key bindings failed", "error", err)
	}

	d.filesMu.Lock()
	d.files = res.Files
	d.filesMu.Unlock()
	return nil
}

func (d *Daemon) configFiles() []string {
	d.filesMu.Lock()
	defer d.filesMu.Unlock()
	return append([]string(nil), d.files...)
}

func (d *Daemon) postReload(reason string) {
	d.backend.Post(func() {
		if err := d.reload(); err != nil {
			d.log.Error("config reload failed", "reason", reason, "error", err)
		}
	})
}

// watchConfig reloads when a loaded config file changes. The main path is
// watched even when it does not exist yet.
func (d *Daemon) watchConfig(ctx context.Context) {
	files := d.configFiles()
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f] = true
	}
	if !seen[d.opts.ConfigPath] {
		files = append(files, d.opts.ConfigPath)
	}
	err := config.Watch(ctx, files, d.log, func() {
		d.postReload("file changed")
	})
	if err != nil {
		d.log.Warn("config hot reload disabled", "error", err)
	}
}

func (d *Daemon) handleSignals(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				d.log.Info("received SIGHUP, reloading config")
				d.postReload("SIGHUP")
			}
		}
	}()
}
