package tui

import (
	"fmt"
	"strings"

	"github.com/lmburns/lwm/internal/config"
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
	diffHunk
)

type diffLine struct {
	kind diffKind
	text string
}

const diffContextLines = 2

// computeDiffLines returns a hunked line diff between the YAML forms of two
// configs, or nil when they marshal identically.
func computeDiffLines(before, after *config.Config) []diffLine {
	if before == nil || after == nil {
		return nil
	}
	a, err := before.Marshal()
	if err != nil {
		return nil
	}
	b, err := after.Marshal()
	if err != nil {
		return nil
	}
	if string(a) == string(b) {
		return nil
	}
	return hunks(lineDiff(splitLines(a), splitLines(b)), diffContextLines)
}

func splitLines(data []byte) []string {
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// lineDiff walks a longest common subsequence table. Configs are a few
// hundred lines at most so the quadratic table is fine.
func lineDiff(a, b []string) []diffLine {
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	out := make([]diffLine, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		}
	}
	return out
}

// hunks keeps changed lines with ctx lines of context around them and
// starts every group with a "@@ line N @@" marker.
func hunks(lines []diffLine, ctx int) []diffLine {
	var out []diffLine
	last := -1 // last index copied to out
	line := 0  // 1-based line in the old file
	for i, l := range lines {
		if l.kind != diffAdded {
			line++
		}
		if l.kind == diffContext {
			continue
		}
		start := max(i-ctx, last+1)
		if start > last+1 || last < 0 {
			first := line - (i - start)
			if l.kind == diffAdded {
				first++
			}
			out = append(out, diffLine{diffHunk, fmt.Sprintf("@@ line %d @@", max(first, 1))})
		}
		for k := start; k <= i; k++ {
			out = append(out, lines[k])
		}
		last = i
		// Trailing context, stopping at the next change.
		for k := i + 1; k <= i+ctx && k < len(lines) && lines[k].kind == diffContext; k++ {
			out = append(out, lines[k])
			last = k
		}
	}
	return out
}
