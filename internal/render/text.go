package render

import (
	"fmt"
	"strings"

	"github.com/lmburns/lwm/internal/wm"
)

// ToText draws the tree under root as indented text, one node per line.
// The leaf holding highlight is marked with an arrow.
func ToText(root *wm.NodeState, highlight uint32) string {
	if root == nil {
		return "(empty)\n"
	}
	var b strings.Builder
	var walk func(n *wm.NodeState, prefix string, last, top bool)
	walk = func(n *wm.NodeState, prefix string, last, top bool) {
		if n == nil {
			return
		}
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		if top {
			branch, next = "", ""
		}
		b.WriteString(prefix + branch + textLabel(n, highlight) + "\n")
		if !n.IsLeaf() {
			walk(n.First, prefix+next, false, false)
			walk(n.Second, prefix+next, true, false)
		}
	}
	walk(root, "", true, true)
	return b.String()
}

func textLabel(n *wm.NodeState, highlight uint32) string {
	if !n.IsLeaf() {
		label := fmt.Sprintf("%s %.2f", n.SplitType, n.SplitRatio)
		if n.Presel != nil {
			label += fmt.Sprintf(" [presel %s]", n.Presel.Dir)
		}
		return label
	}
	if n.Vacant && n.Client == nil && n.Window == 0 {
		return "(vacant)"
	}
	name := "?"
	if n.Client != nil {
		name = n.Client.Class
	}
	label := fmt.Sprintf("%s 0x%08X", name, n.Window)
	if n.Presel != nil {
		label += fmt.Sprintf(" [presel %s]", n.Presel.Dir)
	}
	if n.Window != 0 && n.Window == highlight {
		label += " ◀"
	}
	return label
}
