package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/palette"
)

func (a *app) newMenuCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:       "menu windows|desktops|bindings",
		Short:     "Pick a window, desktop or keybinding from rofi, fuzzel, wofi or dmenu",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"windows", "desktops", "bindings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.menuItems(args[0])
			if err != nil {
				return err
			}
			b, err := palette.NewBackend(backend)
			if err != nil {
				return err
			}
			return a.runMenu(cmd.Context(), b, args[0], items)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "auto", "launcher: auto, rofi, fuzzel, wofi or dmenu")
	return cmd
}

func (a *app) menuItems(kind string) ([]palette.Item, error) {
	switch kind {
	case "windows", "desktops":
		st, err := a.client().Query()
		if err != nil {
			return nil, err
		}
		if kind == "windows" {
			return palette.WindowItems(st), nil
		}
		return palette.DesktopItems(st), nil
	case "bindings":
		res, err := a.loadConfig()
		if err != nil {
			return nil, err
		}
		return palette.BindingItems(res.Config.Keybindings), nil
	}
	return nil, fmt.Errorf("unknown menu %q (want windows, desktops or bindings)", kind)
}

// runMenu shows the palette and sends the chosen entry's commands.
// Closing the launcher is not an error.
func (a *app) runMenu(ctx context.Context, b palette.Backend, prompt string, items []palette.Item) error {
	lines, err := palette.Pick(ctx, b, prompt, items)
	if errors.Is(err, palette.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	a.logger.Debug("menu choice", "backend", b.Name(), "commands", lines)
	for _, line := range lines {
		if err := a.runLine(line); err != nil {
			return err
		}
	}
	return nil
}
