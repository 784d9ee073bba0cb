package radial

import (
	"errors"
	"testing"
)

type recordingHaptics struct {
	styles []ImpactStyle
	err    error
}

func (h *recordingHaptics) Impact(style ImpactStyle) error {
	h.styles = append(h.styles, style)
	return h.err
}

func TestGesture_StartAndMoveReportValues(t *testing.T) {
	g := testGeometry(t)

	var got []int
	gs := NewGesture(g, func(pct int) { got = append(got, pct) })

	gs.Begin(190, 100) // 3 o'clock
	if _, ok := gs.Move(100, 190); !ok {
		t.Error("Move() during active gesture should be accepted")
	}
	gs.Move(10, 100)
	gs.End()

	want := []int{25, 50, 75}
	if len(got) != len(want) {
		t.Fatalf("callback values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback values = %v, want %v", got, want)
			break
		}
	}
	if gs.Value() != 75 {
		t.Errorf("Value() = %d after End, want 75", gs.Value())
	}
}

func TestGesture_MoveOutsideGestureIgnored(t *testing.T) {
	g := testGeometry(t)

	var calls int
	gs := NewGesture(g, func(int) { calls++ })

	if _, ok := gs.Move(190, 100); ok {
		t.Error("Move() before Begin should be ignored")
	}

	gs.Begin(100, 190)
	gs.End()

	pct, ok := gs.Move(10, 100)
	if ok {
		t.Error("Move() after End should be ignored")
	}
	if pct != 50 {
		t.Errorf("ignored Move() returned %d, want last value 50", pct)
	}
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
}

func TestGesture_Handle(t *testing.T) {
	g := testGeometry(t)

	var last int
	gs := NewGesture(g, func(pct int) { last = pct })

	events := []Event{
		{Kind: EventStart, X: 100, Y: 10},
		{Kind: EventMove, X: 190, Y: 100},
		{Kind: EventEnd},
		{Kind: EventMove, X: 10, Y: 100},
	}

	for _, ev := range events {
		gs.Handle(ev)
	}

	if last != 25 {
		t.Errorf("last reported value = %d, want 25", last)
	}
	if gs.Active() {
		t.Error("Active() = true after end event")
	}
}

func TestGesture_HapticsOnStartOnly(t *testing.T) {
	g := testGeometry(t)
	h := &recordingHaptics{}

	gs := NewGesture(g, nil, WithHaptics(h))
	gs.Begin(190, 100)
	gs.Move(100, 190)
	gs.Move(10, 100)
	gs.End()

	if len(h.styles) != 1 {
		t.Fatalf("haptic pulses = %d, want 1", len(h.styles))
	}
	if h.styles[0] != ImpactLight {
		t.Errorf("haptic style = %v, want light", h.styles[0])
	}
}

func TestGesture_HapticsFailureIgnored(t *testing.T) {
	g := testGeometry(t)
	h := &recordingHaptics{err: errors.New("not supported on this platform")}

	var got int
	gs := NewGesture(g, func(pct int) { got = pct }, WithHaptics(h))

	if pct := gs.Begin(100, 190); pct != 50 {
		t.Errorf("Begin() = %d, want 50", pct)
	}
	if got != 50 {
		t.Errorf("callback value = %d, want 50", got)
	}
}

func TestGesture_NilCallback(t *testing.T) {
	gs := NewGesture(testGeometry(t), nil)

	if pct := gs.Begin(10, 100); pct != 75 {
		t.Errorf("Begin() = %d, want 75", pct)
	}
}

func TestEventKind_String(t *testing.T) {
	tests := map[EventKind]string{
		EventStart:    "start",
		EventMove:     "move",
		EventEnd:      "end",
		EventKind(42): "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestImpactStyle_String(t *testing.T) {
	tests := map[ImpactStyle]string{
		ImpactLight:     "light",
		ImpactMedium:    "medium",
		ImpactStyle(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("ImpactStyle(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
