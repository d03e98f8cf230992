package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/ipc"
)

var version = "dev" // set with -ldflags "-X main.version=..."

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the global flags and the logger built from them.
type app struct {
	verbose    bool
	configPath string
	socketPath string

	stdout io.Writer
	charm  *charmlog.Logger
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout}

	root := &cobra.Command{
		Use:          "lwm",
		Short:        "lwm is a tiling window manager for X11",
		Long:         `lwm arranges windows as the leaves of a binary tree per desktop. The daemon owns the display; every other command talks to it over a unix socket.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogger(stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/lwm/config.yaml)")
	root.PersistentFlags().StringVar(&a.socketPath, "socket", "", "IPC socket path (default: per-display runtime socket)")

	root.AddCommand(a.newDaemonCmd())
	root.AddCommand(a.newQueryCmd())
	for _, domain := range []string{"node", "desktop", "monitor"} {
		root.AddCommand(a.newPassthroughCmd(domain))
	}
	root.AddCommand(a.newReloadCmd())
	root.AddCommand(a.newQuitCmd())
	root.AddCommand(a.newConfigCmd())
	root.AddCommand(a.newTreeCmd())
	root.AddCommand(a.newTUICmd())
	root.AddCommand(a.newMenuCmd())
	root.AddCommand(a.newMCPCmd())
	root.AddCommand(a.newVersionCmd())
	return root
}

// setupLogger builds the charm handler and the slog logger on top of it.
func (a *app) setupLogger(w io.Writer) {
	level := charmlog.InfoLevel
	if a.verbose {
		level = charmlog.DebugLevel
	}
	a.charm = charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	a.logger = slog.New(a.charm)
}

// applyLogLevel honours the config's log_level unless --verbose was given.
func (a *app) applyLogLevel(name string) {
	if a.verbose || a.charm == nil || name == "" {
		return
	}
	level, err := charmlog.ParseLevel(name)
	if err != nil {
		a.logger.Warn("ignoring unknown log level", "log_level", name)
		return
	}
	a.charm.SetLevel(level)
}

func (a *app) client() *ipc.Client {
	if a.socketPath != "" {
		return ipc.NewClientWithPath(a.socketPath)
	}
	return ipc.NewClient()
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lwm version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "lwm %s\n", version)
		},
	}
}
