package main

import "math"

type ctlState int

const (
	ctlIdle ctlState = iota
	ctlBoxSelecting
	ctlDragging
)

type dragStart struct {
	x, y float64
}

// Controller owns the selection set, box-select and drag state. Pointer
// coordinates arrive in screen space; picking and rectangle membership are
// resolved in world space through the viewport.
type Controller struct {
	graph *GraphState
	view  *Viewport
	sim   *Simulation

	selected map[string]*Node
	hovered  *Node

	state ctlState

	pressX, pressY float64 // screen point of the pending press
	pressNode      *Node
	pressShift     bool

	// Live box-select rectangle, world space. Membership resolves on
	// release; the rectangle itself is visual until then.
	boxX1, boxY1 float64
	boxX2, boxY2 float64

	dragging map[string]dragStart
}

func NewController(g *GraphState, v *Viewport, s *Simulation) *Controller {
	return &Controller{
		graph:    g,
		view:     v,
		sim:      s,
		selected: make(map[string]*Node),
	}
}

// Rebind points the controller at a rebuilt graph, re-resolving the
// selection by node identity. Stale keys drop out.
func (c *Controller) Rebind(g *GraphState, s *Simulation) {
	c.graph = g
	c.sim = s
	c.hovered = nil
	c.state = ctlIdle
	c.pressNode = nil
	c.dragging = nil
	kept := make(map[string]*Node, len(c.selected))
	for key := range c.selected {
		if n := g.NodeByKey(key); n != nil {
			kept[key] = n
		}
	}
	c.selected = kept
}

// Selected returns the current selection in graph insertion order.
func (c *Controller) Selected() []*Node {
	out := make([]*Node, 0, len(c.selected))
	for _, n := range c.graph.Nodes {
		if _, ok := c.selected[n.Key]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (c *Controller) IsSelected(n *Node) bool {
	if n == nil {
		return false
	}
	_, ok := c.selected[n.Key]
	return ok
}

func (c *Controller) Hovered() *Node { return c.hovered }

func (c *Controller) State() ctlState { return c.state }

// BoxRect returns the live selection rectangle in world space; ok is false
// unless box-selecting.
func (c *Controller) BoxRect() (x1, y1, x2, y2 float64, ok bool) {
	if c.state != ctlBoxSelecting {
		return 0, 0, 0, 0, false
	}
	return c.boxX1, c.boxY1, c.boxX2, c.boxY2, true
}

func (c *Controller) ClearSelection() {
	c.selected = make(map[string]*Node)
}

// PointerDown handles a press. Returns false when the press hit empty space
// without the select modifier, in which case the host may pan.
func (c *Controller) PointerDown(sx, sy float64, shift bool) bool {
	wx, wy := c.view.ToWorld(sx, sy)
	n := Pick(wx, wy, c.graph.Nodes, c.view.K)

	c.pressX, c.pressY = sx, sy
	c.pressShift = shift
	c.pressNode = n

	if n == nil {
		if !shift {
			return false
		}
		c.state = ctlBoxSelecting
		c.boxX1, c.boxY1 = wx, wy
		c.boxX2, c.boxY2 = wx, wy
		return true
	}
	// Press on a node always means drag or click, never pan. The drag only
	// starts once the pointer travels past the threshold.
	c.state = ctlIdle
	return true
}

// PointerMove handles motion while a button is held.
func (c *Controller) PointerMove(sx, sy float64) {
	switch c.state {
	case ctlBoxSelecting:
		c.boxX2, c.boxY2 = c.view.ToWorld(sx, sy)
	case ctlDragging:
		c.moveDrag(sx, sy)
	default:
		if c.pressNode == nil {
			return
		}
		if math.Hypot(sx-c.pressX, sy-c.pressY) < dragThreshold {
			return
		}
		if c.pressShift || c.pressNode.Kind == KindCenter {
			// Modifier presses resolve as clicks; center nodes are
			// drag-inert, their position belongs to the parent ring.
			return
		}
		c.beginDrag()
		c.moveDrag(sx, sy)
	}
}

func (c *Controller) beginDrag() {
	c.state = ctlDragging
	c.dragging = make(map[string]dragStart)
	if c.IsSelected(c.pressNode) {
		for _, n := range c.Selected() {
			if n.Kind == KindCenter {
				continue
			}
			c.dragging[n.Key] = dragStart{n.X, n.Y}
		}
	} else {
		c.dragging[c.pressNode.Key] = dragStart{c.pressNode.X, c.pressNode.Y}
	}
	c.sim.Reheat()
}

func (c *Controller) moveDrag(sx, sy float64) {
	dx := (sx - c.pressX) / c.view.K
	dy := (sy - c.pressY) / c.view.K
	for key, start := range c.dragging {
		n := c.graph.NodeByKey(key)
		if n == nil {
			continue
		}
		n.Pin(start.x+dx, start.y+dy)
	}
}

// PointerUp resolves the gesture: box membership, click selection, or drag
// release.
func (c *Controller) PointerUp(sx, sy float64, shift bool) {
	switch c.state {
	case ctlBoxSelecting:
		c.boxX2, c.boxY2 = c.view.ToWorld(sx, sy)
		hit := PickRect(c.boxX1, c.boxY1, c.boxX2, c.boxY2, c.graph.Nodes, c.view.K)
		if !shift {
			c.selected = make(map[string]*Node)
		}
		for _, n := range hit {
			c.selected[n.Key] = n
		}
	case ctlDragging:
		if !c.sim.AllPinned {
			// Moved nodes go back to the physics; pinned layouts keep the
			// final positions as permanent pins.
			for key := range c.dragging {
				if n := c.graph.NodeByKey(key); n != nil && n.Kind != KindCenter {
					n.Unpin()
				}
			}
			c.sim.Reheat()
		}
		c.dragging = nil
	default:
		// Plain click: replace or toggle.
		if c.pressNode == nil {
			if !shift {
				c.selected = make(map[string]*Node)
			}
		} else if shift || c.pressShift {
			if c.IsSelected(c.pressNode) {
				delete(c.selected, c.pressNode.Key)
			} else {
				c.selected[c.pressNode.Key] = c.pressNode
			}
		} else {
			c.selected = map[string]*Node{c.pressNode.Key: c.pressNode}
		}
	}
	c.state = ctlIdle
	c.pressNode = nil
}

// Hover updates the fade-highlight target. Only meaningful while no button
// is down.
func (c *Controller) Hover(sx, sy float64) {
	if c.state != ctlIdle {
		return
	}
	wx, wy := c.view.ToWorld(sx, sy)
	c.hovered = Pick(wx, wy, c.graph.Nodes, c.view.K)
}
