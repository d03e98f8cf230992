package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lmburns/lwm/internal/ipc"
	"github.com/lmburns/lwm/internal/render"
	"github.com/lmburns/lwm/internal/wm"
)

// output writes query results as a table for terminals and as JSON
// everywhere else.
type output struct {
	w      io.Writer
	asJSON bool
}

func (a *app) output(forceJSON bool) output {
	return output{w: a.stdout, asJSON: forceJSON || !isTerminal(a.stdout)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (o output) json(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o output) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(o.w, t.String())
	return err
}

func (a *app) newQueryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect the running window manager",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "always print JSON")

	cmd.AddCommand(a.newQueryStatusCmd(&asJSON))
	cmd.AddCommand(a.newQueryClientsCmd(&asJSON))
	cmd.AddCommand(a.newQueryDesktopsCmd(&asJSON))
	cmd.AddCommand(a.newQueryMonitorsCmd(&asJSON))
	cmd.AddCommand(a.newQueryTreeCmd(&asJSON))
	return cmd
}

func (a *app) newQueryStatusCmd(asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.client().GetStatus()
			if err != nil {
				return err
			}
			return writeStatus(a.output(*asJSON), status)
		},
	}
}

func writeStatus(o output, s *ipc.StatusData) error {
	if o.asJSON {
		return o.json(s)
	}
	rows := [][]string{
		{"version", s.Version},
		{"pid", strconv.Itoa(s.PID)},
		{"uptime", (time.Duration(s.UptimeSeconds) * time.Second).String()},
		{"monitors", strconv.Itoa(s.Monitors)},
		{"desktops", strconv.Itoa(s.Desktops)},
		{"clients", strconv.Itoa(s.Clients)},
		{"focused desktop", s.FocusedDesktop},
		{"config files", strings.Join(s.ConfigFiles, "\n")},
	}
	return o.table([]string{"key", "value"}, rows)
}

func (a *app) newQueryClientsCmd(asJSON *bool) *cobra.Command {
	var f wm.ClientFilter

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List managed windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().Query()
			if err != nil {
				return err
			}
			return writeClients(a.output(*asJSON), st.FilterClients(f))
		},
	}
	cmd.Flags().StringVar(&f.Desktop, "desktop", "", "only windows on this desktop")
	cmd.Flags().StringVar(&f.Monitor, "monitor", "", "only windows on this monitor")
	cmd.Flags().StringVar(&f.Class, "class", "", "class glob")
	cmd.Flags().StringVar(&f.Instance, "instance", "", "instance glob")
	cmd.Flags().StringVar(&f.State, "state", "", "tiled, pseudo_tiled, floating or fullscreen")
	cmd.Flags().StringVar(&f.Layer, "layer", "", "below, normal or above")
	cmd.Flags().BoolVar(&f.Focused, "focused", false, "only the focused window")
	cmd.Flags().BoolVar(&f.Urgent, "urgent", false, "only urgent windows")
	cmd.Flags().BoolVar(&f.Hidden, "hidden", false, "only hidden windows")
	cmd.Flags().BoolVar(&f.Sticky, "sticky", false, "only sticky windows")
	cmd.Flags().BoolVar(&f.Marked, "marked", false, "only marked windows")
	return cmd
}

func writeClients(o output, clients []wm.ClientInfo) error {
	if o.asJSON {
		if clients == nil {
			clients = []wm.ClientInfo{}
		}
		return o.json(clients)
	}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		focus := ""
		if c.Focused {
			focus = "*"
		}
		rows = append(rows, []string{
			focus,
			fmt.Sprintf("0x%08X", c.Window),
			c.Class,
			c.Desktop,
			c.State.String(),
			fmt.Sprintf("%dx%d+%d+%d", c.Rect.W, c.Rect.H, c.Rect.X, c.Rect.Y),
			c.Name,
		})
	}
	return o.table([]string{"", "window", "class", "desktop", "state", "rectangle", "name"}, rows)
}

func (a *app) newQueryDesktopsCmd(asJSON *bool) *cobra.Command {
	var f wm.DesktopFilter

	cmd := &cobra.Command{
		Use:   "desktops",
		Short: "List desktops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().Query()
			if err != nil {
				return err
			}
			return writeDesktops(a.output(*asJSON), st.FilterDesktops(f))
		},
	}
	cmd.Flags().StringVar(&f.Monitor, "monitor", "", "only desktops of this monitor")
	cmd.Flags().BoolVar(&f.Focused, "focused", false, "only the focused desktop")
	cmd.Flags().BoolVar(&f.Shown, "shown", false, "only desktops shown on a monitor")
	cmd.Flags().BoolVar(&f.Occupied, "occupied", false, "only desktops with windows")
	cmd.Flags().BoolVar(&f.Urgent, "urgent", false, "only desktops with urgent windows")
	return cmd
}

func writeDesktops(o output, desktops []wm.DesktopState) error {
	if o.asJSON {
		if desktops == nil {
			desktops = []wm.DesktopState{}
		}
		return o.json(desktops)
	}
	rows := make([][]string, 0, len(desktops))
	for _, d := range desktops {
		mark := ""
		switch {
		case d.Focused:
			mark = "*"
		case d.Shown:
			mark = "+"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(d.Index + 1),
			d.Name,
			d.Monitor,
			d.Layout.String(),
			strconv.Itoa(len(d.Clients)),
		})
	}
	return o.table([]string{"", "#", "name", "monitor", "layout", "windows"}, rows)
}

func (a *app) newQueryMonitorsCmd(asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().Query()
			if err != nil {
				return err
			}
			return writeMonitors(a.output(*asJSON), st.Monitors)
		},
	}
}

func writeMonitors(o output, monitors []wm.MonitorState) error {
	if o.asJSON {
		if monitors == nil {
			monitors = []wm.MonitorState{}
		}
		return o.json(monitors)
	}
	rows := make([][]string, 0, len(monitors))
	for _, m := range monitors {
		mark := ""
		if m.Focused {
			mark = "*"
		}
		names := make([]string, 0, len(m.Desktops))
		for _, d := range m.Desktops {
			names = append(names, d.Name)
		}
		rows = append(rows, []string{
			mark,
			m.Name,
			fmt.Sprintf("%dx%d+%d+%d", m.Bounds.W, m.Bounds.H, m.Bounds.X, m.Bounds.Y),
			m.FocusedDesktop,
			strings.Join(names, " "),
		})
	}
	return o.table([]string{"", "name", "geometry", "desktop", "desktops"}, rows)
}

func (a *app) newQueryTreeCmd(asJSON *bool) *cobra.Command {
	var desktop string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the tiling tree of a desktop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.queryDesktop(desktop)
			if err != nil {
				return err
			}
			o := a.output(*asJSON)
			if o.asJSON {
				return o.json(d)
			}
			_, err = io.WriteString(o.w, render.ToText(d.Root, d.FocusedWindow))
			return err
		},
	}
	cmd.Flags().StringVarP(&desktop, "desktop", "d", "", "desktop name (default: focused)")
	return cmd
}

// queryDesktop fetches one desktop, the focused one when name is empty.
func (a *app) queryDesktop(name string) (wm.DesktopState, error) {
	st, err := a.client().Query()
	if err != nil {
		return wm.DesktopState{}, err
	}
	d, ok := st.Desktop(name)
	if !ok {
		if name == "" {
			return wm.DesktopState{}, fmt.Errorf("no focused desktop")
		}
		return wm.DesktopState{}, fmt.Errorf("no desktop named %q", name)
	}
	return d, nil
}
