package main

import (
	"math"
	"math/rand"
)

// Simulation runs the force layout over the graph's nodes. One Step per
// animation frame once interactive; Stabilize runs a bounded synchronous
// burst before the first paint so the layout appears settled.
type Simulation struct {
	graph  *GraphState
	energy float64
	rng    *rand.Rand

	// AllPinned mirrors the pin-all toggle: drags end in permanent pins
	// while set.
	AllPinned bool

	scoreMin, scoreMax float64
}

func NewSimulation(g *GraphState, seed int64) *Simulation {
	s := &Simulation{
		graph:  g,
		energy: energyInitial,
		rng:    rand.New(rand.NewSource(seed)),
	}
	s.seedPositions()
	s.observeScores()
	return s
}

// seedPositions scatters free bodies around the origin so repulsion has
// something to work with. Center nodes are placed on their ring immediately.
func (s *Simulation) seedPositions() {
	for _, n := range s.graph.Nodes {
		if n.Kind == KindCenter {
			continue
		}
		angle := s.rng.Float64() * 2 * math.Pi
		dist := 60 + s.rng.Float64()*240
		n.X = math.Cos(angle) * dist
		n.Y = math.Sin(angle) * dist
	}
	s.placeCenters()
}

// observeScores records the score range of the current link set; rest
// lengths are normalized against it.
func (s *Simulation) observeScores() {
	s.scoreMin, s.scoreMax = 1, 0
	for _, l := range s.graph.Links {
		if l.Score < s.scoreMin {
			s.scoreMin = l.Score
		}
		if l.Score > s.scoreMax {
			s.scoreMax = l.Score
		}
	}
	if s.scoreMax <= s.scoreMin {
		s.scoreMin, s.scoreMax = 0, 1
	}
}

// restLength maps a link score onto its spring rest length: a convex power
// curve so high-similarity pairs rest close and dissimilar ones rest far.
func (s *Simulation) restLength(score float64) float64 {
	norm := (score - s.scoreMin) / (s.scoreMax - s.scoreMin)
	norm = clamp(norm, 0, 1)
	return restLenMax - (restLenMax-restLenMin)*math.Pow(norm, restLenExponent)
}

// Reheat bumps the energy so the layout can move again after a drag, an
// unpin, or a relink.
func (s *Simulation) Reheat() {
	if s.energy < energyReheat {
		s.energy = energyReheat
	}
	s.observeScores()
}

// Energy exposes the current kinetic target; zero means idle.
func (s *Simulation) Energy() float64 {
	return s.energy
}

// Settled reports whether the layout has cooled below the motion threshold.
func (s *Simulation) Settled() bool {
	return s.energy < energyMin
}

// Stabilize steps the simulation synchronously until it settles or the
// iteration budget runs out. No frames are painted in between.
func (s *Simulation) Stabilize(maxSteps int) int {
	steps := 0
	for steps < maxSteps && !s.Settled() {
		s.Step()
		steps++
	}
	return steps
}

// Step advances the layout one tick: center ring placement, pairwise
// repulsion, link springs, weak origin gravity, then damped integration.
func (s *Simulation) Step() {
	s.placeCenters()
	if s.Settled() {
		return
	}

	free := s.freeBodies()
	strength := repulsionStrength
	if len(free) > repulsionCrowdCap {
		strength /= 2
	}

	// O(n²) pairwise repulsion. Fine for the low hundreds of nodes a vault
	// produces; the crowd cap above bounds the worst of it.
	for i := 0; i < len(free); i++ {
		a := free[i]
		for j := i + 1; j < len(free); j++ {
			b := free[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				// Coincident bodies get a deterministic nudge.
				dx, dy, d2 = 1, 0.5, 1.25
			}
			f := strength * s.energy / d2
			d := math.Sqrt(d2)
			fx := f * dx / d
			fy := f * dy / d
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}

	for _, l := range s.graph.Links {
		dx := l.Target.X - l.Source.X
		dy := l.Target.Y - l.Source.Y
		d := math.Hypot(dx, dy)
		if d < 1 {
			d = 1
		}
		stretch := d - s.restLength(l.Score)
		f := springStrength * stretch * s.energy
		fx := f * dx / d
		fy := f * dy / d
		if !l.Source.Pinned && l.Source.Kind != KindCenter {
			l.Source.VX += fx
			l.Source.VY += fy
		}
		if !l.Target.Pinned && l.Target.Kind != KindCenter {
			l.Target.VX -= fx
			l.Target.VY -= fy
		}
	}

	for _, n := range free {
		n.VX -= n.X * centerGravity * s.energy
		n.VY -= n.Y * centerGravity * s.energy

		n.VX *= velocityDamping
		n.VY *= velocityDamping
		n.X += n.VX
		n.Y += n.VY
	}

	s.energy -= s.energy * energyDecay
	if s.energy < energyMin {
		s.energy = 0
	}
}

// placeCenters recomputes every center node from its parent and pins it
// there, so centers orbit the cluster without joining the physics.
func (s *Simulation) placeCenters() {
	for _, n := range s.graph.Nodes {
		if n.Kind != KindCenter {
			continue
		}
		parent := s.graph.Parent(n)
		if parent == nil {
			continue
		}
		x := parent.X + n.OffsetDist*math.Cos(n.OffsetAngle)
		y := parent.Y + n.OffsetDist*math.Sin(n.OffsetAngle)
		n.Pin(x, y)
	}
}

func (s *Simulation) freeBodies() []*Node {
	free := make([]*Node, 0, len(s.graph.Nodes))
	for _, n := range s.graph.Nodes {
		if n.Kind == KindCenter || n.Pinned {
			continue
		}
		free = append(free, n)
	}
	return free
}

// PinAll freezes the whole layout in place.
func (s *Simulation) PinAll() {
	s.AllPinned = true
	for _, n := range s.graph.Nodes {
		n.Pin(n.X, n.Y)
	}
	s.energy = 0
}

// UnpinAll releases every node back to the physics and reheats. Center
// nodes re-pin themselves on the next step.
func (s *Simulation) UnpinAll() {
	s.AllPinned = false
	for _, n := range s.graph.Nodes {
		if n.Kind == KindCenter {
			continue
		}
		n.Unpin()
	}
	s.energy = energyReheat
}
