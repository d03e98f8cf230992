package palette

import (
	"fmt"
	"sort"

	"github.com/lmburns/lwm/internal/wm"
)

// WindowItems lists managed windows grouped by desktop. Choosing a window
// focuses its desktop and then the window.
func WindowItems(st *wm.State) []Item {
	var items []Item
	for _, m := range st.Monitors {
		for _, d := range m.Desktops {
			if len(d.Clients) == 0 {
				continue
			}
			title := d.Name
			if len(st.Monitors) > 1 {
				title += " on " + m.Name
			}
			items = append(items, Item{Label: title, IsHeader: true})
			for _, c := range d.Clients {
				items = append(items, Item{
					Label:    windowLabel(c),
					Icon:     c.Instance,
					Meta:     c.Class + " " + c.Process,
					IsActive: c.Focused,
					IsUrgent: c.Urgent,
					Commands: []string{
						"desktop focus " + d.Name,
						fmt.Sprintf("node focus window=0x%X", c.Window),
					},
				})
			}
		}
	}
	return items
}

// DesktopItems lists every desktop of every monitor.
func DesktopItems(st *wm.State) []Item {
	var items []Item
	for _, m := range st.Monitors {
		if len(st.Monitors) > 1 {
			items = append(items, Item{Label: m.Name, IsHeader: true})
		}
		for _, d := range m.Desktops {
			urgent := false
			for _, c := range d.Clients {
				urgent = urgent || c.Urgent
			}
			items = append(items, Item{
				Label:    fmt.Sprintf("%s  (%d windows, %s)", d.Name, len(d.Clients), d.Layout),
				Icon:     "user-desktop",
				IsActive: d.Focused,
				IsUrgent: urgent,
				Commands: []string{"desktop focus " + d.Name},
			})
		}
	}
	return items
}

// BindingItems lists configured keybindings sorted by key. Choosing one runs
// its command as if the key had been pressed.
func BindingItems(bindings map[string]string) []Item {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		items = append(items, Item{
			Label:    fmt.Sprintf("%-20s %s", k, bindings[k]),
			Icon:     "input-keyboard",
			Meta:     k,
			Commands: []string{bindings[k]},
		})
	}
	return items
}

func windowLabel(c wm.ClientInfo) string {
	label := c.Class
	if c.Name != "" && c.Name != c.Class {
		label += ": " + c.Name
	}
	if c.State != wm.Tiled {
		label += " [" + c.State.String() + "]"
	}
	return label
}
