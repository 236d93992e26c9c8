package main

import (
	"math"
	"testing"
)

func twoCenterSnapshot() *Snapshot {
	return &Snapshot{
		Clusters: []Cluster{
			{Key: "c1", Name: "cluster", Centers: []Item{
				{Key: "a", Name: "alpha"},
				{Key: "b", Name: "beta"},
			}},
		},
		Members: []Member{
			{Item: Item{Key: "m1", Name: "one"}, Clusters: map[string]float64{"c1": 0.8}},
			{Item: Item{Key: "m2", Name: "two"}, Clusters: map[string]float64{"c1": 0.6}},
		},
	}
}

func TestCentersFollowParentRing(t *testing.T) {
	g := BuildGraph(twoCenterSnapshot(), 0.5)
	s := NewSimulation(g, 1)

	parent := g.NodeByKey("c1")
	parent.Pin(100, 50)
	s.Step()

	for _, key := range []string{"a", "b"} {
		n := g.NodeByKey(key)
		wantX := parent.X + n.OffsetDist*math.Cos(n.OffsetAngle)
		wantY := parent.Y + n.OffsetDist*math.Sin(n.OffsetAngle)
		if math.Abs(n.X-wantX) > 1e-9 || math.Abs(n.Y-wantY) > 1e-9 {
			t.Errorf("center %s at (%v, %v), want (%v, %v)", key, n.X, n.Y, wantX, wantY)
		}
		if !n.Pinned {
			t.Errorf("center %s not pinned to its ring", key)
		}
	}

	// Two centers sit on opposite sides of the ring.
	a, b := g.NodeByKey("a"), g.NodeByKey("b")
	if math.Abs((a.OffsetAngle-b.OffsetAngle)-math.Pi) > 1e-9 &&
		math.Abs((b.OffsetAngle-a.OffsetAngle)-math.Pi) > 1e-9 {
		t.Errorf("ring angles %v and %v are not opposed", a.OffsetAngle, b.OffsetAngle)
	}
}

func TestStabilizeSettles(t *testing.T) {
	g := BuildGraph(twoCenterSnapshot(), 0.5)
	s := NewSimulation(g, 1)

	steps := s.Stabilize(stabilizeMaxSteps)
	if steps > stabilizeMaxSteps {
		t.Fatalf("Stabilize took %d steps, budget %d", steps, stabilizeMaxSteps)
	}
	if !s.Settled() {
		t.Errorf("not settled after %d steps, energy %v", steps, s.Energy())
	}
	for _, n := range g.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			t.Fatalf("node %s position is NaN", n.Key)
		}
	}
}

func TestStepIdleWhenSettled(t *testing.T) {
	g := BuildGraph(twoCenterSnapshot(), 0.5)
	s := NewSimulation(g, 1)
	s.Stabilize(stabilizeMaxSteps)

	m := g.NodeByKey("m1")
	x, y := m.X, m.Y
	s.Step()
	if m.X != x || m.Y != y {
		t.Error("settled simulation still moves free bodies")
	}
}

func TestReheatMovesAgain(t *testing.T) {
	g := BuildGraph(twoCenterSnapshot(), 0.5)
	s := NewSimulation(g, 1)
	s.Stabilize(stabilizeMaxSteps)

	m := g.NodeByKey("m1")
	m.Pin(500, 500)
	m.Unpin()
	s.Reheat()
	if s.Settled() {
		t.Fatal("Settled() = true after Reheat")
	}
	s.Step()
	if m.X == 500 && m.Y == 500 {
		t.Error("reheated simulation left displaced node in place")
	}
}

func TestPinAllUnpinAll(t *testing.T) {
	g := BuildGraph(twoCenterSnapshot(), 0.5)
	s := NewSimulation(g, 1)
	s.Stabilize(stabilizeMaxSteps)

	s.PinAll()
	if !s.AllPinned {
		t.Error("AllPinned = false after PinAll")
	}
	if !s.Settled() {
		t.Error("pinned layout still has energy")
	}
	for _, n := range g.Nodes {
		if !n.Pinned {
			t.Errorf("node %s not pinned", n.Key)
		}
	}

	s.UnpinAll()
	if s.AllPinned {
		t.Error("AllPinned = true after UnpinAll")
	}
	if s.Settled() {
		t.Error("UnpinAll did not reheat")
	}
	for _, n := range g.Nodes {
		if n.Kind == KindCenter {
			continue
		}
		if n.Pinned {
			t.Errorf("node %s still pinned", n.Key)
		}
	}
}

func TestRestLengthOrdering(t *testing.T) {
	g := BuildGraph(testSnapshot(), 0)
	s := NewSimulation(g, 1)

	// Higher similarity rests closer.
	near := s.restLength(0.9)
	far := s.restLength(0.3)
	if near >= far {
		t.Errorf("restLength(0.9) = %v, not shorter than restLength(0.3) = %v", near, far)
	}
	if near < restLenMin || far > restLenMax {
		t.Errorf("rest lengths %v, %v outside [%v, %v]", near, far, restLenMin, restLenMax)
	}
}
