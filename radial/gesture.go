package radial

import "sync"

// EventKind identifies the phase of a pointer gesture.
type EventKind int

const (
	// EventStart is the pointer touching down on the widget.
	EventStart EventKind = iota

	// EventMove is the pointer moving while held down.
	EventMove

	// EventEnd is the pointer being released.
	EventEnd
)

// String returns a lowercase name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventMove:
		return "move"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a single pointer event in widget-local coordinates.
type Event struct {
	Kind EventKind
	X    float64
	Y    float64
}

// ImpactStyle is the strength of a haptic pulse.
type ImpactStyle int

const (
	// ImpactLight marks the start of a dial drag.
	ImpactLight ImpactStyle = iota

	// ImpactMedium marks a switch command.
	ImpactMedium
)

// String returns a lowercase name for the impact style.
func (s ImpactStyle) String() string {
	switch s {
	case ImpactLight:
		return "light"
	case ImpactMedium:
		return "medium"
	default:
		return "unknown"
	}
}

// Haptics triggers tactile feedback on hosts that support it.
//
// Implementations return an error when the host cannot vibrate. A [Gesture]
// ignores such errors; feedback is never required for correctness.
type Haptics interface {
	Impact(style ImpactStyle) error
}

// Gesture turns a stream of pointer events into percentage updates.
//
// On start and on every move while active, the pointer position is mapped
// with [Geometry.PercentAt] and passed to the change callback. Moves that
// arrive before a start or after an end are ignored. Ending a gesture keeps
// the last value; nothing is rolled back.
//
// Gesture is safe for concurrent use, though events are normally delivered
// from a single UI goroutine.
type Gesture struct {
	geometry Geometry
	onChange func(int)
	haptics  Haptics

	mu     sync.Mutex
	active bool
	last   int
}

// GestureOption configures a [Gesture].
type GestureOption func(*Gesture)

// WithHaptics enables a light pulse when a gesture starts.
func WithHaptics(h Haptics) GestureOption {
	return func(g *Gesture) {
		g.haptics = h
	}
}

// NewGesture creates a [Gesture] for geometry g that reports values to
// onChange. A nil onChange is allowed; values are still tracked.
func NewGesture(g Geometry, onChange func(int), opts ...GestureOption) *Gesture {
	gs := &Gesture{
		geometry: g,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Begin starts a gesture at (x, y) and reports the value there.
func (gs *Gesture) Begin(x, y float64) int {
	gs.mu.Lock()
	gs.active = true
	pct := gs.geometry.PercentAt(x, y)
	gs.last = pct
	gs.mu.Unlock()

	gs.pulse()
	gs.emit(pct)
	return pct
}

// Move reports the value at (x, y) if a gesture is active.
// The boolean is false when the move was ignored.
func (gs *Gesture) Move(x, y float64) (int, bool) {
	gs.mu.Lock()
	if !gs.active {
		last := gs.last
		gs.mu.Unlock()
		return last, false
	}
	pct := gs.geometry.PercentAt(x, y)
	gs.last = pct
	gs.mu.Unlock()

	gs.emit(pct)
	return pct, true
}

// End finishes the active gesture. Calling End without an active gesture
// has no effect.
func (gs *Gesture) End() {
	gs.mu.Lock()
	gs.active = false
	gs.mu.Unlock()
}

// Handle dispatches an [Event] and returns the current value.
func (gs *Gesture) Handle(ev Event) int {
	switch ev.Kind {
	case EventStart:
		return gs.Begin(ev.X, ev.Y)
	case EventMove:
		pct, _ := gs.Move(ev.X, ev.Y)
		return pct
	default:
		gs.End()
		return gs.Value()
	}
}

// Active reports whether a gesture is in progress.
func (gs *Gesture) Active() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.active
}

// Value returns the most recently computed percentage.
func (gs *Gesture) Value() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.last
}

func (gs *Gesture) emit(pct int) {
	if gs.onChange != nil {
		gs.onChange(pct)
	}
}

func (gs *Gesture) pulse() {
	if gs.haptics == nil {
		return
	}
	_ = gs.haptics.Impact(ImpactLight)
}
