package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal cells are roughly twice as tall as wide; circles are rasterized
// against this so they read as circles.
const cellAspect = 2.0

const (
	styleNone = iota
	styleClusterBright
	styleClusterDim
	styleCenterBright
	styleCenterDim
	styleMemberBright
	styleMemberDim
	styleLinkBright
	styleLinkDim
	styleSelection
	styleLabel
	styleBox
)

var frameStyles = map[int]lipgloss.Style{
	styleClusterBright: lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
	styleClusterDim:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	styleCenterBright:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	styleCenterDim:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	styleMemberBright:  lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
	styleMemberDim:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	styleLinkBright:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	styleLinkDim:       lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
	styleSelection:     lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
	styleLabel:         lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	styleBox:           lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
}

type frameCell struct {
	r     rune
	style int
}

type frame struct {
	width, height int
	cells         [][]frameCell
}

func newFrame(width, height int) *frame {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	f := &frame{width: width, height: height}
	f.cells = make([][]frameCell, height)
	for y := range f.cells {
		f.cells[y] = make([]frameCell, width)
		for x := range f.cells[y] {
			f.cells[y][x] = frameCell{r: ' '}
		}
	}
	return f
}

func (f *frame) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.cells[y][x] = frameCell{r: r, style: style}
}

func (f *frame) text(x, y int, s string, style int) {
	for i, r := range s {
		f.set(x+i, y, r, style)
	}
}

// lines flattens the grid into styled strings, batching runs that share a
// style so the output stays cheap.
func (f *frame) lines() []string {
	out := make([]string, f.height)
	var b strings.Builder
	for y, row := range f.cells {
		b.Reset()
		run := make([]rune, 0, f.width)
		cur := row[0].style
		flush := func() {
			if len(run) == 0 {
				return
			}
			if st, ok := frameStyles[cur]; ok {
				b.WriteString(st.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			run = run[:0]
		}
		for _, c := range row {
			if c.style != cur {
				flush()
				cur = c.style
			}
			run = append(run, c.r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

// Renderer draws the animated scene. Alpha state lives on the nodes and
// links; Advance moves current alpha toward the hover-derived target every
// frame so highlights fade instead of flickering.
type Renderer struct{}

// Advance recomputes desired opacity from the hover state and steps the
// current values toward it.
func (r *Renderer) Advance(g *GraphState, ctl *Controller) {
	hovered := ctl.Hovered()
	for _, n := range g.Nodes {
		n.WantAlpha = 1
		if hovered != nil && !r.highlighted(g, hovered, n) {
			n.WantAlpha = fadedAlpha
		}
		n.CurAlpha += (n.WantAlpha - n.CurAlpha) * alphaApproach
	}
	for _, l := range g.Links {
		l.WantAlpha = 1
		if hovered != nil && l.Source != hovered && l.Target != hovered {
			l.WantAlpha = fadedAlpha
		}
		l.CurAlpha += (l.WantAlpha - l.CurAlpha) * alphaApproach
	}
}

// highlighted reports membership in the hover set: the hovered node, every
// node directly linked to it, and the ring relationship between a cluster
// and its centers.
func (r *Renderer) highlighted(g *GraphState, hovered, n *Node) bool {
	if n == hovered {
		return true
	}
	if n.Kind == KindCenter && n.ParentKey == hovered.Key {
		return true
	}
	if hovered.Kind == KindCenter && n.Key == hovered.ParentKey {
		return true
	}
	return g.Linked(hovered, n)
}

// Render draws links, nodes, the live selection rectangle and the hovered
// label into a width×height cell grid.
func (r *Renderer) Render(g *GraphState, view *Viewport, ctl *Controller, width, height int) []string {
	f := newFrame(width, height)

	for _, l := range g.Links {
		x1, y1 := view.ToScreen(l.Source.X, l.Source.Y)
		x2, y2 := view.ToScreen(l.Target.X, l.Target.Y)
		style := styleLinkBright
		if l.CurAlpha < 0.5 {
			style = styleLinkDim
		}
		drawLine(f, x1, y1, x2, y2, '·', style)
	}

	for _, n := range g.Nodes {
		r.drawNode(f, n, view, ctl)
	}

	if x1, y1, x2, y2, ok := ctl.BoxRect(); ok {
		r.drawBoxRect(f, view, x1, y1, x2, y2)
	}

	if hovered := ctl.Hovered(); hovered != nil {
		sx, sy := view.ToScreen(hovered.X, hovered.Y)
		lx := int(math.Round(sx + hovered.Radius*view.K + 2))
		f.text(lx, int(math.Round(sy)), hovered.Label, styleLabel)
	}

	return f.lines()
}

func (r *Renderer) drawNode(f *frame, n *Node, view *Viewport, ctl *Controller) {
	// The LOD switch matches the picker: an unpickable center is not drawn.
	if n.Kind == KindCenter && view.K < lodExpandZoom {
		return
	}

	sx, sy := view.ToScreen(n.X, n.Y)
	cx := int(math.Round(sx))
	cy := int(math.Round(sy))
	rs := n.Radius * view.K

	style, glyph := nodeAppearance(n)
	if rs >= 2 {
		drawCircle(f, sx, sy, rs, circleRune(n.Kind), style)
	}
	f.set(cx, cy, glyph, style)

	if ctl.IsSelected(n) {
		outline := rs + 1.5
		if outline < 2 {
			outline = 2
		}
		drawCircle(f, sx, sy, outline, '#', styleSelection)
	}
}

func nodeAppearance(n *Node) (int, rune) {
	dim := n.CurAlpha < 0.5
	switch n.Kind {
	case KindCluster:
		if dim {
			return styleClusterDim, '◉'
		}
		return styleClusterBright, '◉'
	case KindCenter:
		if dim {
			return styleCenterDim, '◍'
		}
		return styleCenterBright, '◍'
	default:
		if dim {
			return styleMemberDim, '●'
		}
		return styleMemberBright, '●'
	}
}

func circleRune(k NodeKind) rune {
	if k == KindCluster {
		return '∘'
	}
	return '·'
}

func (r *Renderer) drawBoxRect(f *frame, view *Viewport, x1, y1, x2, y2 float64) {
	sx1, sy1 := view.ToScreen(x1, y1)
	sx2, sy2 := view.ToScreen(x2, y2)
	minX := int(math.Round(math.Min(sx1, sx2)))
	maxX := int(math.Round(math.Max(sx1, sx2)))
	minY := int(math.Round(math.Min(sy1, sy2)))
	maxY := int(math.Round(math.Max(sy1, sy2)))
	for x := minX; x <= maxX; x++ {
		f.set(x, minY, '─', styleBox)
		f.set(x, maxY, '─', styleBox)
	}
	for y := minY; y <= maxY; y++ {
		f.set(minX, y, '│', styleBox)
		f.set(maxX, y, '│', styleBox)
	}
	f.set(minX, minY, '┌', styleBox)
	f.set(maxX, minY, '┐', styleBox)
	f.set(minX, maxY, '└', styleBox)
	f.set(maxX, maxY, '┘', styleBox)
}

// drawCircle traces the rim of a circle, compensating for the cell aspect.
func drawCircle(f *frame, cx, cy, radius float64, r rune, style int) {
	steps := int(math.Max(12, radius*6))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + radius*math.Cos(a)
		y := cy + radius*math.Sin(a)/cellAspect
		f.set(int(math.Round(x)), int(math.Round(y)), r, style)
	}
}

// drawLine walks the segment one cell at a time.
func drawLine(f *frame, x1, y1, x2, y2 float64, r rune, style int) {
	dx := x2 - x1
	dy := y2 - y1
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		f.set(int(math.Round(x1)), int(math.Round(y1)), r, style)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		f.set(int(math.Round(x1+dx*t)), int(math.Round(y1+dy*t)), r, style)
	}
}
