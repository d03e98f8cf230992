package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/config"
	"github.com/lmburns/lwm/internal/daemon"
)

func (a *app) newDaemonCmd() *cobra.Command {
	var reconcile time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the window manager on $DISPLAY (foreground)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if res, err := a.loadConfig(); err == nil {
				a.applyLogLevel(res.Config.LogLevel)
			}

			return daemon.Run(cmd.Context(), daemon.Options{
				ConfigPath:        a.configPath,
				SocketPath:        a.socketPath,
				Version:           version,
				Logger:            a.logger,
				ReconcileInterval: reconcile,
			})
		},
	}
	cmd.Flags().DurationVar(&reconcile, "reconcile-interval", 0, "period of the window drift check (0: default, negative: off)")
	return cmd
}

func (a *app) loadConfig() (*config.LoadResult, error) {
	if a.configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(a.configPath)
}
