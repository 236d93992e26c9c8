package main

import (
	"strings"

	"github.com/atotto/clipboard"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// copySelectionToClipboard puts the selected item paths (cluster names for
// cluster nodes) on the system clipboard, one per line.
func copySelectionToClipboard(sel []*Node) (int, error) {
	if len(sel) == 0 {
		return 0, nil
	}
	lines := make([]string, 0, len(sel))
	for _, n := range sel {
		if n.Path != "" {
			lines = append(lines, n.Path)
		} else {
			lines = append(lines, n.Label)
		}
	}
	if err := clipboard.WriteAll(strings.Join(lines, "\n")); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// tokenize lowercases and splits an item's name and path into scoring
// tokens.
func tokenize(parts ...string) map[string]bool {
	tokens := make(map[string]bool)
	for _, p := range parts {
		var cur strings.Builder
		for _, r := range strings.ToLower(p) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				cur.WriteRune(r)
				continue
			}
			if cur.Len() > 1 {
				tokens[cur.String()] = true
			}
			cur.Reset()
		}
		if cur.Len() > 1 {
			tokens[cur.String()] = true
		}
	}
	return tokens
}

// jaccard is the overlap score between two token sets, in [0,1].
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
