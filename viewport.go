package main

// Viewport is the affine transform between world and screen coordinates:
// screen = world*K + (X, Y). K is uniform scale, default identity.
type Viewport struct {
	X, Y float64
	K    float64
}

func NewViewport() *Viewport {
	return &Viewport{K: 1}
}

func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.X) / v.K, (sy - v.Y) / v.K
}

func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.K + v.X, wy*v.K + v.Y
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomAt scales the view by factor keeping the screen point (sx, sy) fixed
// over the same world point. Scale is clamped to [zoomMin, zoomMax].
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	k := clamp(v.K*factor, zoomMin, zoomMax)
	if k == v.K {
		return
	}
	wx, wy := v.ToWorld(sx, sy)
	v.K = k
	v.X = sx - wx*k
	v.Y = sy - wy*k
}

// FitToContent frames the bounding box of all node positions, padded, in a
// width×height screen. Degenerate extents fall back to an identity-scaled,
// centered transform instead of dividing by zero.
func (v *Viewport) FitToContent(nodes []*Node, width, height float64) {
	if len(nodes) == 0 || width <= 0 || height <= 0 {
		v.X, v.Y, v.K = width/2, height/2, 1
		return
	}
	minX, minY := nodes[0].X, nodes[0].Y
	maxX, maxY := minX, minY
	for _, n := range nodes[1:] {
		if n.X < minX {
			minX = n.X
		}
		if n.X > maxX {
			maxX = n.X
		}
		if n.Y < minY {
			minY = n.Y
		}
		if n.Y > maxY {
			maxY = n.Y
		}
	}
	w := maxX - minX
	h := maxY - minY
	if w < 1e-9 && h < 1e-9 {
		v.K = 1
		v.X = width/2 - minX
		v.Y = height/2 - minY
		return
	}
	w *= 1 + 2*fitPadding
	h *= 1 + 2*fitPadding
	k := zoomMax
	if w > 1e-9 && width/w < k {
		k = width / w
	}
	if h > 1e-9 && height/h < k {
		k = height / h
	}
	v.K = clamp(k, zoomMin, zoomMax)
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	v.X = width/2 - cx*v.K
	v.Y = height/2 - cy*v.K
}
