package main

import (
	"math"
	"strings"
	"testing"
)

func TestFrameSetAndClip(t *testing.T) {
	f := newFrame(4, 2)
	f.set(0, 0, 'a', styleNone)
	f.set(3, 1, 'b', styleNone)
	// Out of range writes are dropped, not panics.
	f.set(-1, 0, 'x', styleNone)
	f.set(4, 0, 'x', styleNone)
	f.set(0, 2, 'x', styleNone)

	lines := f.lines()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0] != "a   " {
		t.Errorf("lines[0] = %q, want %q", lines[0], "a   ")
	}
	if lines[1] != "   b" {
		t.Errorf("lines[1] = %q, want %q", lines[1], "   b")
	}
}

func TestFrameText(t *testing.T) {
	f := newFrame(5, 1)
	f.text(3, 0, "long label", styleNone)
	if got := f.lines()[0]; got != "   lo" {
		t.Errorf("lines[0] = %q, want %q", got, "   lo")
	}
}

func TestAdvanceHoverFade(t *testing.T) {
	g := BuildGraph(testSnapshot(), 0.5)
	s := NewSimulation(g, 1)
	v := NewViewport()
	c := NewController(g, v, s)
	r := &Renderer{}

	c.hovered = g.NodeByKey("n2")
	r.Advance(g, c)

	// n2 and its linked cluster stay bright; n4 fades.
	if got := g.NodeByKey("n2").WantAlpha; got != 1 {
		t.Errorf("hovered WantAlpha = %v, want 1", got)
	}
	if got := g.NodeByKey("c1").WantAlpha; got != 1 {
		t.Errorf("linked cluster WantAlpha = %v, want 1", got)
	}
	if got := g.NodeByKey("n4").WantAlpha; got != fadedAlpha {
		t.Errorf("unlinked WantAlpha = %v, want %v", got, fadedAlpha)
	}

	// Current alpha approaches the target instead of jumping.
	n4 := g.NodeByKey("n4")
	want := 1 + (fadedAlpha-1)*alphaApproach
	if math.Abs(n4.CurAlpha-want) > 1e-9 {
		t.Errorf("CurAlpha after one frame = %v, want %v", n4.CurAlpha, want)
	}
	for i := 0; i < 200; i++ {
		r.Advance(g, c)
	}
	if math.Abs(n4.CurAlpha-fadedAlpha) > 0.01 {
		t.Errorf("CurAlpha converged to %v, want ~%v", n4.CurAlpha, fadedAlpha)
	}

	// Hover off: everything returns to full strength.
	c.hovered = nil
	for i := 0; i < 200; i++ {
		r.Advance(g, c)
	}
	if math.Abs(n4.CurAlpha-1) > 0.01 {
		t.Errorf("CurAlpha recovered to %v, want ~1", n4.CurAlpha)
	}
}

// A cluster's centers highlight with it even though no link connects them.
func TestAdvanceRingHighlight(t *testing.T) {
	g := BuildGraph(testSnapshot(), 0.5)
	s := NewSimulation(g, 1)
	c := NewController(g, NewViewport(), s)
	r := &Renderer{}

	c.hovered = g.NodeByKey("c1")
	r.Advance(g, c)
	if got := g.NodeByKey("n1").WantAlpha; got != 1 {
		t.Errorf("center WantAlpha = %v, want 1", got)
	}

	c.hovered = g.NodeByKey("n1")
	r.Advance(g, c)
	if got := g.NodeByKey("c1").WantAlpha; got != 1 {
		t.Errorf("parent WantAlpha = %v, want 1", got)
	}
}

func TestRenderShape(t *testing.T) {
	g := BuildGraph(testSnapshot(), 0.5)
	s := NewSimulation(g, 1)

	// Hand-placed positions at identity zoom, far enough apart that no
	// glyph cell overdraws another (nodes paint in insertion order, last
	// on top, same rule as the picker).
	g.NodeByKey("c1").X, g.NodeByKey("c1").Y = 10, 10
	g.NodeByKey("n2").X, g.NodeByKey("n2").Y = 40, 10
	g.NodeByKey("n3").X, g.NodeByKey("n3").Y = 55, 18
	g.NodeByKey("n4").X, g.NodeByKey("n4").Y = 70, 4
	s.placeCenters()

	v := NewViewport()
	c := NewController(g, v, s)
	r := &Renderer{}

	lines := r.Render(g, v, c, 80, 24)
	if len(lines) != 24 {
		t.Fatalf("len(lines) = %d, want 24", len(lines))
	}
	joined := strings.Join(lines, "\n")
	if !strings.ContainsRune(joined, '◉') {
		t.Error("no cluster glyph in the rendered scene")
	}
	if !strings.ContainsRune(joined, '●') {
		t.Error("no member glyph in the rendered scene")
	}
}
