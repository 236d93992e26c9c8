package main

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func testConfig() *Config {
	return &Config{
		Vault:         "test.json",
		Threshold:     0.5,
		FPS:           30,
		Confirmations: false,
	}
}

// TestTUISmoke runs the program headlessly against an empty source: it must
// render the empty state and quit cleanly on q.
func TestTUISmoke(t *testing.T) {
	m := newModel(testConfig(), &mockSource{threshold: 0.5}, testLogger())

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(80, 24),
	)

	// Let Init fetch the snapshot and render a frame.
	time.Sleep(100 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}

	out := tm.FinalOutput(t, teatest.WithFinalTimeout(5*time.Second))
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(out)
	if !bytes.Contains(buf.Bytes(), []byte("No clusters")) {
		t.Error("empty source did not render the empty state")
	}
}

// TestWheelZoomSuppressedDuringBoxSelect verifies the wheel never moves the
// viewport while the box-select modifier is engaged.
func TestWheelZoomSuppressedDuringBoxSelect(t *testing.T) {
	g, s, v, ctl := controllerFixture()
	m := newModel(testConfig(), &mockSource{threshold: 0.5}, testLogger())
	m.graph, m.sim, m.view, m.ctl = g, s, v, ctl
	m.width, m.height = 80, 24

	m.handleMouse(tea.MouseMsg{X: 0, Y: 0, Shift: true,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.handleMouse(tea.MouseMsg{X: 20, Y: 10, Shift: true, Button: tea.MouseButtonWheelUp})
	if v.K != 1 {
		t.Errorf("K = %v after shifted wheel, want 1", v.K)
	}
	m.handleMouse(tea.MouseMsg{X: 35, Y: 15, Shift: true,
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	m.handleMouse(tea.MouseMsg{X: 20, Y: 10, Button: tea.MouseButtonWheelUp})
	if v.K != zoomStep {
		t.Errorf("K = %v after plain wheel, want %v", v.K, zoomStep)
	}
}

// TestTUIQuitConfirmation verifies that q asks before quitting when
// confirmations are on.
func TestTUIQuitConfirmation(t *testing.T) {
	cfg := testConfig()
	cfg.Confirmations = true
	m := newModel(cfg, &mockSource{threshold: 0.5}, testLogger())

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(80, 24),
	)

	time.Sleep(100 * time.Millisecond)

	// First q opens the prompt, n dismisses it, the program keeps running.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	// q then y quits for real.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}
	final, ok := fm.(*model)
	if !ok {
		t.Fatalf("FinalModel is not *model: %T", fm)
	}
	if final.mode != ModeNormal {
		t.Errorf("final mode = %v, want %v", final.mode, ModeNormal)
	}
}
