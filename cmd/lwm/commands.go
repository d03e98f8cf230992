package main

import (
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/wm"
)

var passthroughHelp = map[string]struct{ short, long string }{
	"node": {
		short: "Act on the focused window",
		long: `Commands:
  focus  north|south|east|west|next|prev|last|marked|FIELD=VALUE
  swap   SELECTOR
  presel north|south|east|west [RATIO]
  cancel
  ratio  RATIO|+DELTA|-DELTA
  rotate 90|180|270|-90 [parent|root]
  flip   horizontal|vertical [parent|root]
  equalize|balance [parent|root]
  state  [~]tiled|pseudo_tiled|floating|fullscreen
  layer  below|normal|above
  flag   hidden|sticky|private|locked|marked [on|off|toggle]
  drag   next|prev
  close | kill | unwind`,
	},
	"desktop": {
		short: "Act on desktops",
		long: `Commands:
  focus  NAME|INDEX|next|prev|last
  cycle  next|prev [occupied]
  layout tiled|monocle|next
  send   NAME|INDEX|next|prev|last [follow]
  gap    PIXELS
  padding TOP [RIGHT BOTTOM LEFT]
  rename NAME`,
	},
	"monitor": {
		short: "Act on monitors",
		long: `Commands:
  focus  NAME|next|prev|last|north|south|east|west`,
	},
}

// newPassthroughCmd builds a command that forwards its arguments to the
// daemon as one command line. Flag parsing is disabled so that arguments
// like "-90" reach the daemon untouched.
func (a *app) newPassthroughCmd(domain string) *cobra.Command {
	help := passthroughHelp[domain]
	return &cobra.Command{
		Use:                domain + " COMMAND [ARGS...]",
		Short:              help.short,
		Long:               help.long,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, wantHelp, err := a.stripGlobalFlags(args)
			if err != nil {
				return err
			}
			if wantHelp || len(rest) == 0 {
				return cmd.Help()
			}
			return a.runLine(domain + " " + strings.Join(rest, " "))
		},
	}
}

// stripGlobalFlags takes the root's flags out of a passthrough argument
// list and applies them. Anything else is kept in order.
func (a *app) stripGlobalFlags(args []string) (rest []string, wantHelp bool, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "-h", "--help":
			wantHelp = true
		case "-v", "--verbose":
			a.verbose = true
			if a.charm != nil {
				a.charm.SetLevel(charmlog.DebugLevel)
			}
		case "-c", "--config", "--socket":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, false, fmt.Errorf("flag needs an argument: %s", name)
				}
				i++
				value = args[i]
			}
			if name == "--socket" {
				a.socketPath = value
			} else {
				a.configPath = value
			}
		default:
			rest = append(rest, arg)
		}
	}
	return rest, wantHelp, nil
}

// runLine checks a command line locally and sends it to the daemon.
func (a *app) runLine(line string) error {
	if _, err := wm.ParseCommand(line); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Debug("sending command", "line", line)
	}
	return a.client().Run(line)
}

func (a *app) newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the configuration in the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().Reload()
		},
	}
}

func (a *app) newQuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLine("quit")
		},
	}
}
