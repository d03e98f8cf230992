package main

import (
	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/tui"
)

func (a *app) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the configuration and browse windows interactively",
		Long: `Interactive editor for the configuration file with a live view of the
windows the daemon manages. Works as an offline editor when no daemon is
running.

Keys:
  tab/shift-tab  switch tabs
  e              edit settings (General) or a binding (Keybindings)
  enter          focus the selected window (Windows)
  E              open the config file in $EDITOR
  ctrl-s         review and save changes, then reload the daemon
  q, ctrl-c      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.configPath)
		},
	}
}
