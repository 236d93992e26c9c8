package main

import "math"

type NodeKind int

const (
	KindCluster NodeKind = iota
	KindCenter
	KindMember
)

func (k NodeKind) String() string {
	switch k {
	case KindCluster:
		return "cluster"
	case KindCenter:
		return "center"
	case KindMember:
		return "member"
	default:
		return "unknown"
	}
}

// Node is one body in the diagram. Exactly one of the three kinds; key is
// unique across all of them.
type Node struct {
	Key   string
	Kind  NodeKind
	Label string
	Path  string // item path for center/member nodes

	ParentKey   string  // owning cluster, center nodes only
	OffsetAngle float64 // position on the parent ring, assigned once
	OffsetDist  float64

	Radius float64
	X, Y   float64
	VX, VY float64

	Pinned bool
	FX, FY float64

	CurAlpha  float64
	WantAlpha float64
}

// Pin fixes the node at (x, y) and removes it from force integration.
func (n *Node) Pin(x, y float64) {
	n.Pinned = true
	n.FX, n.FY = x, y
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
}

func (n *Node) Unpin() {
	n.Pinned = false
}

// Link connects a cluster node to a member or center node whose score
// cleared the threshold. No member-member links exist, and a cluster never
// links to its own centers.
type Link struct {
	Source *Node // cluster side
	Target *Node // member or center side
	Score  float64

	CurAlpha  float64
	WantAlpha float64
}

// GraphState owns the derived node-link graph. It is rebuilt wholesale from
// a snapshot; Relink rebuilds only the link set when the threshold moves.
type GraphState struct {
	Nodes []*Node
	Links []*Link

	Threshold float64

	byKey   map[string]*Node
	members []Member // retained for relinks
}

// BuildGraph derives the typed node-link graph from a snapshot. Center items
// supersede their plain-member representation; members sharing a key with a
// cluster are absorbed by the cluster node.
func BuildGraph(snap *Snapshot, threshold float64) *GraphState {
	g := &GraphState{
		Threshold: threshold,
		byKey:     make(map[string]*Node),
	}
	if snap == nil {
		return g
	}
	g.members = snap.Members

	for _, c := range snap.Clusters {
		if _, dup := g.byKey[c.Key]; dup {
			continue
		}
		label := c.Name
		if label == "" {
			label = c.Key
		}
		radius := clusterBaseRadius + clusterGrowRadius*float64(len(c.Centers))
		if radius > clusterMaxRadius {
			radius = clusterMaxRadius
		}
		cn := &Node{
			Key:       c.Key,
			Kind:      KindCluster,
			Label:     label,
			Radius:    radius,
			CurAlpha:  1,
			WantAlpha: 1,
		}
		g.Nodes = append(g.Nodes, cn)
		g.byKey[c.Key] = cn

		// Ring offsets are a pure function of the center index, so the
		// ring stays put across relinks and rebuilds.
		for i, it := range c.Centers {
			if _, dup := g.byKey[it.Key]; dup {
				continue
			}
			n := &Node{
				Key:         it.Key,
				Kind:        KindCenter,
				Label:       it.Name,
				Path:        it.Path,
				ParentKey:   c.Key,
				OffsetAngle: 2 * math.Pi * float64(i) / float64(len(c.Centers)),
				OffsetDist:  centerRingFactor * radius,
				Radius:      centerRadius,
				CurAlpha:    1,
				WantAlpha:   1,
			}
			g.Nodes = append(g.Nodes, n)
			g.byKey[it.Key] = n
		}
	}

	for _, m := range snap.Members {
		if _, taken := g.byKey[m.Item.Key]; taken {
			continue
		}
		n := &Node{
			Key:       m.Item.Key,
			Kind:      KindMember,
			Label:     m.Item.Name,
			Path:      m.Item.Path,
			Radius:    memberRadius,
			CurAlpha:  1,
			WantAlpha: 1,
		}
		g.Nodes = append(g.Nodes, n)
		g.byKey[m.Item.Key] = n
	}

	g.rebuildLinks()
	return g
}

// Relink recomputes the link set for a new threshold. Nodes, positions and
// pins are untouched.
func (g *GraphState) Relink(threshold float64) {
	g.Threshold = threshold
	g.rebuildLinks()
}

func (g *GraphState) rebuildLinks() {
	g.Links = g.Links[:0]
	for _, m := range g.members {
		target := g.byKey[m.Item.Key]
		if target == nil || target.Kind == KindCluster {
			// Absorbed by a cluster node.
			continue
		}
		for clusterKey, score := range m.Clusters {
			if score < g.Threshold {
				continue
			}
			if target.Kind == KindCenter && clusterKey == target.ParentKey {
				// The owning cluster holds its center through the ring,
				// not a link. Other clusters still link to it.
				continue
			}
			source := g.byKey[clusterKey]
			if source == nil || source.Kind != KindCluster {
				// Stale snapshot reference; skip the link, keep the build.
				continue
			}
			g.Links = append(g.Links, &Link{
				Source:    source,
				Target:    target,
				Score:     score,
				CurAlpha:  1,
				WantAlpha: 1,
			})
		}
	}
}

// NodeByKey returns the node with the given identity, or nil.
func (g *GraphState) NodeByKey(key string) *Node {
	return g.byKey[key]
}

// Empty reports whether there is nothing to lay out or draw.
func (g *GraphState) Empty() bool {
	return len(g.Nodes) == 0
}

// Parent resolves a center node's owning cluster node.
func (g *GraphState) Parent(n *Node) *Node {
	if n.Kind != KindCenter {
		return nil
	}
	return g.byKey[n.ParentKey]
}

// Linked reports whether a and b are endpoints of any current link.
func (g *GraphState) Linked(a, b *Node) bool {
	for _, l := range g.Links {
		if (l.Source == a && l.Target == b) || (l.Source == b && l.Target == a) {
			return true
		}
	}
	return false
}
