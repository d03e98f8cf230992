package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/render"
)

func (a *app) newTreeCmd() *cobra.Command {
	var (
		desktop  string
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Render the tiling tree of a desktop",
		Long:  `Render the tiling tree of a desktop as text, Graphviz DOT or SVG. SVG output is rendered in-process and needs no graphviz installation.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.queryDesktop(desktop)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "text":
				data = []byte(render.ToText(d.Root, d.FocusedWindow))
			case "dot":
				data = []byte(render.ToDOT(d, render.Options{Detailed: detailed}))
			case "svg":
				data, err = render.RenderSVG(cmd.Context(), render.ToDOT(d, render.Options{Detailed: detailed}))
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want text, dot or svg)", format)
			}

			if output == "" || output == "-" {
				_, err = a.stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.logger.Info("wrote tree", "desktop", d.Name, "format", format, "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&desktop, "desktop", "d", "", "desktop name (default: focused)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include rectangles and flags in DOT labels")
	return cmd
}
