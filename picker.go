package main

import "math"

// Pick hit-tests a world point against node circles, topmost drawn first
// (reverse insertion order). Below the LOD expansion zoom, center nodes are
// folded into their cluster and never returned.
func Pick(wx, wy float64, nodes []*Node, zoom float64) *Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Kind == KindCenter && zoom < lodExpandZoom {
			continue
		}
		if math.Hypot(wx-n.X, wy-n.Y) <= n.Radius {
			return n
		}
	}
	return nil
}

// PickRect returns the nodes whose position lies inside the world-space
// rectangle spanned by (x1, y1) and (x2, y2), in insertion order.
func PickRect(x1, y1, x2, y2 float64, nodes []*Node, zoom float64) []*Node {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	var hit []*Node
	for _, n := range nodes {
		if n.Kind == KindCenter && zoom < lodExpandZoom {
			continue
		}
		if n.X >= x1 && n.X <= x2 && n.Y >= y1 && n.Y <= y2 {
			hit = append(hit, n)
		}
	}
	return hit
}
