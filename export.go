package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	pngBackground = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	pngCluster    = color.RGBA{0xbd, 0x93, 0xf9, 0xff}
	pngCenter     = color.RGBA{0xff, 0xb8, 0x6c, 0xff}
	pngMember     = color.RGBA{0x8b, 0xe9, 0xfd, 0xff}
	pngLink       = color.RGBA{0x62, 0x72, 0xa4, 0xff}
	pngLabel      = color.RGBA{0xf8, 0xf8, 0xf2, 0xff}
)

// ExportPNG renders the current scene to an image file, with the node and
// link opacities exactly as they are on screen.
func ExportPNG(filename string, g *GraphState, width, height int) error {
	if g == nil || g.Empty() {
		return fmt.Errorf("nothing to export")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(pngBackground)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    13,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Frame all nodes with a fit transform of the image's own.
	view := NewViewport()
	view.FitToContent(g.Nodes, float64(width), float64(height))

	for _, l := range g.Links {
		x1, y1 := view.ToScreen(l.Source.X, l.Source.Y)
		x2, y2 := view.ToScreen(l.Target.X, l.Target.Y)
		dc.SetColor(withAlpha(pngLink, l.CurAlpha))
		dc.SetLineWidth(0.5 + 1.5*l.Score)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	for _, n := range g.Nodes {
		sx, sy := view.ToScreen(n.X, n.Y)
		rs := math.Max(n.Radius*view.K, 2)
		var fill color.RGBA
		switch n.Kind {
		case KindCluster:
			fill = pngCluster
		case KindCenter:
			fill = pngCenter
		default:
			fill = pngMember
		}
		dc.SetColor(withAlpha(fill, n.CurAlpha))
		dc.DrawCircle(sx, sy, rs)
		dc.Fill()
		if n.Kind == KindCluster {
			dc.SetColor(withAlpha(pngLabel, n.CurAlpha))
			dc.DrawStringAnchored(n.Label, sx, sy-rs-6, 0.5, 0)
		}
	}

	return dc.SavePNG(filename)
}

func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	c.A = uint8(clamp(alpha, 0, 1) * 255)
	return c
}
