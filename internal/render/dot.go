// Package render draws a desktop's tiling tree as a Graphviz graph or as
// indented text.
//
// Internal nodes show their split type and ratio, leaves show the window
// they hold. The focused leaf is filled; presel targets carry a dashed
// outline.
//
//	dot := render.ToDOT(desktop, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lmburns/lwm/internal/tree"
	"github.com/lmburns/lwm/internal/wm"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds rectangles and flags to node labels.
	Detailed bool
}

// ToDOT converts a desktop's tree to Graphviz DOT. An empty desktop yields
// a graph with a single placeholder node.
func ToDOT(d wm.DesktopState, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", "desktop "+d.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	if d.Root == nil {
		buf.WriteString("  empty [label=\"(empty)\", style=dashed];\n")
		buf.WriteString("}\n")
		return buf.String()
	}

	var edges []string
	walk(d.Root, func(n *wm.NodeState) {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n), strings.Join(fmtAttrs(n, d.FocusedWindow, opts), ", "))
		for i, child := range []*wm.NodeState{n.First, n.Second} {
			if child != nil {
				edges = append(edges, fmt.Sprintf("  %s -> %s [label=\"%d\"];\n", nodeName(n), nodeName(child), i+1))
			}
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func walk(n *wm.NodeState, fn func(*wm.NodeState)) {
	if n == nil {
		return
	}
	fn(n)
	walk(n.First, fn)
	walk(n.Second, fn)
}

func nodeName(n *wm.NodeState) string {
	return fmt.Sprintf("n%d", n.ID)
}

func fmtLabel(n *wm.NodeState, detailed bool) string {
	var lines []string
	if n.IsLeaf() {
		head := fmt.Sprintf("0x%08X", n.Window)
		if n.Client != nil && n.Client.Class != "" {
			head = n.Client.Class + "\n" + head
		}
		lines = append(lines, head)
	} else {
		lines = append(lines, fmt.Sprintf("%s %.2f", n.SplitType, n.SplitRatio))
	}
	if n.Presel != nil {
		lines = append(lines, fmt.Sprintf("presel %s %.2f", n.Presel.Dir, n.Presel.Ratio))
	}
	if !detailed {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, n.Rect.String())
	if flags := flagNames(n.Flags); flags != "" {
		lines = append(lines, flags)
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(n *wm.NodeState, focused uint32, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch {
	case n.IsLeaf() && focused != 0 && n.Window == focused:
		attrs = append(attrs, "fillcolor=\"#A98698\"")
	case n.Vacant:
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=dimgrey")
	case !n.IsLeaf():
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#E5E9F0\"")
	}
	if n.Presel != nil {
		attrs = append(attrs, "penwidth=2", "color=\"#4C96A8\"")
		if n.IsLeaf() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
	}
	return attrs
}

func flagNames(f tree.Flags) string {
	var set []string
	for _, flag := range []tree.Flag{tree.FlagHidden, tree.FlagSticky, tree.FlagPrivate, tree.FlagLocked, tree.FlagMarked} {
		if f.Get(flag) {
			set = append(set, flag.String())
		}
	}
	return strings.Join(set, ",")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
