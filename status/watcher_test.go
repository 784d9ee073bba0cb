package status

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// sequenceSource returns scripted states, repeating the last one.
type sequenceSource struct {
	mu     sync.Mutex
	states []NetworkState
	errs   []error
	calls  atomic.Int32
}

func (s *sequenceSource) NetworkState(context.Context) (NetworkState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := int(s.calls.Add(1)) - 1
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.states[i], err
}

type panicSource struct{}

func (panicSource) NetworkState(context.Context) (NetworkState, error) {
	panic("driver exploded")
}

func TestNetworkLabel(t *testing.T) {
	tests := []struct {
		name  string
		state NetworkState
		want  string
	}{
		{"ssid wins", NetworkState{Connected: true, SSID: "HomeNet", Type: "wifi"}, "HomeNet"},
		{"type upper-cased", NetworkState{Connected: true, Type: "cellular"}, "CELLULAR"},
		{"blank ssid falls through", NetworkState{Connected: true, SSID: "  ", Type: "wifi"}, "WIFI"},
		{"connected without details", NetworkState{Connected: true}, "Wi-Fi"},
		{"disconnected", NetworkState{Connected: false, SSID: "HomeNet"}, "Offline"},
		{"zero value", NetworkState{}, "Offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NetworkLabel(tt.state); got != tt.want {
				t.Errorf("NetworkLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatcher_RefreshSetsLabel(t *testing.T) {
	st := New()
	w := NewWatcher(st, StaticSource{Connected: true, SSID: "Field-Station-1"}, time.Hour, testLogger())

	w.Refresh(context.Background())

	if got := st.WifiName(); got != "Field-Station-1" {
		t.Errorf("WifiName() = %q, want %q", got, "Field-Station-1")
	}
}

func TestWatcher_RefreshSkipsUnchangedLabel(t *testing.T) {
	st := New(WithInitialWifiName("HomeNet"))

	var calls int
	st.Subscribe(func() { calls++ })

	w := NewWatcher(st, StaticSource{Connected: true, SSID: "HomeNet"}, time.Hour, testLogger())
	w.Refresh(context.Background())

	if calls != 0 {
		t.Errorf("listener calls = %d, want 0 for unchanged label", calls)
	}
}

func TestWatcher_ErrorFallsBackOnlyWhenEmpty(t *testing.T) {
	src := &sequenceSource{
		states: []NetworkState{{}, {Connected: true, SSID: "HomeNet"}, {}},
		errs:   []error{errors.New("no permission"), nil, errors.New("no permission")},
	}
	st := New()
	w := NewWatcher(st, src, time.Hour, testLogger())

	w.Refresh(context.Background())
	if got := st.WifiName(); got != "Wi-Fi" {
		t.Errorf("after first error WifiName() = %q, want %q", got, "Wi-Fi")
	}

	w.Refresh(context.Background())
	if got := st.WifiName(); got != "HomeNet" {
		t.Errorf("after success WifiName() = %q, want %q", got, "HomeNet")
	}

	w.Refresh(context.Background())
	if got := st.WifiName(); got != "HomeNet" {
		t.Errorf("error must not overwrite a known label, got %q", got)
	}
}

func TestWatcher_NilSourceFallsBack(t *testing.T) {
	st := New()
	w := NewWatcher(st, nil, time.Hour, testLogger())

	w.Refresh(context.Background())

	if got := st.WifiName(); got != "Wi-Fi" {
		t.Errorf("WifiName() = %q, want %q", got, "Wi-Fi")
	}
}

func TestWatcher_PanicRecovered(t *testing.T) {
	st := New()
	w := NewWatcher(st, panicSource{}, time.Hour, testLogger())

	w.Refresh(context.Background())

	if got := st.WifiName(); got != "Wi-Fi" {
		t.Errorf("WifiName() = %q, want %q", got, "Wi-Fi")
	}
}

func TestWatcher_StartPollsImmediatelyAndPeriodically(t *testing.T) {
	src := &sequenceSource{
		states: []NetworkState{
			{Connected: true, SSID: "first"},
			{Connected: true, SSID: "second"},
		},
	}
	st := New()
	w := NewWatcher(st, src, 20*time.Millisecond, testLogger())

	w.Start(context.Background())
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for st.WifiName() != "second" {
		select {
		case <-deadline:
			t.Fatalf("WifiName() = %q, want %q after ticking", st.WifiName(), "second")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(New(), StaticSource{Connected: true}, time.Hour, testLogger())

	w.Stop() // before start
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	src := &sequenceSource{states: []NetworkState{{Connected: true, SSID: "net"}}}
	w := NewWatcher(New(), src, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return after context cancel")
	}
}

func TestNewWatcher_DefaultInterval(t *testing.T) {
	w := NewWatcher(New(), nil, 0, nil)
	if w.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", w.interval, DefaultRefreshInterval)
	}
	if w.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
}
