package main

import (
	"math"
	"reflect"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Go Concurrency", "notes/go-concurrency.md")
	want := map[string]bool{
		"go": true, "concurrency": true, "notes": true, "md": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize() = %v, want %v", got, want)
	}
}

func TestJaccard(t *testing.T) {
	a := tokenize("go channels select")
	b := tokenize("go channels timeout")
	// Two shared tokens, four distinct.
	if got := jaccard(a, b); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("jaccard = %v, want 0.5", got)
	}
	if got := jaccard(a, a); got != 1 {
		t.Errorf("jaccard(self) = %v, want 1", got)
	}
	if got := jaccard(a, tokenize("completely different")); got != 0 {
		t.Errorf("jaccard(disjoint) = %v, want 0", got)
	}
	if got := jaccard(nil, nil); got != 0 {
		t.Errorf("jaccard(empty) = %v, want 0", got)
	}
}
