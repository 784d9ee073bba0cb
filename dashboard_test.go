package valvedash

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/auspowercell/valvedash/radial"
	"github.com/auspowercell/valvedash/status"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDashboard builds a dashboard over sampleFleet with a shared store.
func newTestDashboard(t *testing.T, opts ...Option) (*Dashboard, *status.Store) {
	t.Helper()

	st := status.New(status.WithLogger(discardLogger()))
	base := []Option{
		WithValves(sampleFleet(t)...),
		WithStatusStore(st),
		WithLogger(discardLogger()),
	}

	d, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, st
}

func TestNew_Defaults(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.Title() != "Valves" {
		t.Errorf("Title() = %q, want %q", d.Title(), "Valves")
	}
	if len(d.Valves()) != 0 {
		t.Errorf("len(Valves()) = %d, want 0", len(d.Valves()))
	}
	if _, ok := d.Selected(); ok {
		t.Error("Selected() ok = true on empty fleet")
	}
	if d.StatusStore() == nil {
		t.Fatal("StatusStore() = nil, want private store")
	}
	if d.StatusStore().Health() != status.HealthGood {
		t.Errorf("Health() = %v, want good", d.StatusStore().Health())
	}
	if g := d.DialGeometry(); g.Size != 240 || g.StrokeWidth != 18 {
		t.Errorf("DialGeometry() = %+v, want 240/18", g)
	}
}

func TestNew_PublishesInitialHealth(t *testing.T) {
	d, st := newTestDashboard(t)

	// one of four offline (25%) with one alert
	if st.Health() != status.HealthBad {
		t.Errorf("store Health() = %v, want bad", st.Health())
	}
	if d.Health() != st.Health() {
		t.Errorf("Health() = %v, store = %v", d.Health(), st.Health())
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	a, _ := NewValve("a1", "Zone A1")
	b, _ := NewValve("a1", "Zone A1 copy")

	_, err := New(WithValves(a, b))
	if err == nil || !strings.Contains(err.Error(), "duplicate valve id") {
		t.Errorf("New() error = %v, want duplicate valve id", err)
	}
}

func TestNew_ZeroValueValve(t *testing.T) {
	_, err := New(WithValve(Valve{}))
	if err == nil {
		t.Error("New() with zero Valve error = nil, want error")
	}
}

func TestNew_OptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil logger", WithLogger(nil)},
		{"nil store", WithStatusStore(nil)},
		{"empty actor", WithActor("")},
		{"bad dial", WithDialGeometry(radial.Geometry{Size: 10, StrokeWidth: 20})},
		{"zero audit capacity", WithAuditCapacity(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Errorf("New(%s) error = nil, want error", tt.name)
			}
		})
	}
}

func TestDashboard_ValvesSnapshot(t *testing.T) {
	d, _ := newTestDashboard(t)

	before := d.Valves()
	if _, err := d.SetPercentage("2", 40); err != nil {
		t.Fatalf("SetPercentage() error = %v", err)
	}

	if before[1].Percentage() != 0 {
		t.Errorf("earlier snapshot changed to %d%%", before[1].Percentage())
	}
	if v, _ := d.Valve("2"); v.Percentage() != 40 {
		t.Errorf("Valve(2).Percentage() = %d, want 40", v.Percentage())
	}
}

func TestDashboard_Queries(t *testing.T) {
	d, _ := newTestDashboard(t)

	if got := ids(d.Filtered(FilterOnline)); !equalIDs(got, []string{"1", "2"}) {
		t.Errorf("Filtered(online) = %v", got)
	}
	if got := ids(d.Search("pump")); !equalIDs(got, []string{"3"}) {
		t.Errorf("Search(pump) = %v", got)
	}
	if got := d.Counts()[FilterError]; got != 1 {
		t.Errorf("Counts()[error] = %d, want 1", got)
	}
	if got := d.Stats().Total; got != 4 {
		t.Errorf("Stats().Total = %d, want 4", got)
	}
	if _, ok := d.Valve("missing"); ok {
		t.Error("Valve(missing) ok = true")
	}
}

func TestDashboard_Select(t *testing.T) {
	d, _ := newTestDashboard(t)

	v, ok := d.Selected()
	if !ok || v.ID() != "1" {
		t.Fatalf("Selected() = %q, %v, want first valve", v.ID(), ok)
	}

	if err := d.Select("3"); err != nil {
		t.Fatalf("Select(3) error = %v", err)
	}
	if v, _ := d.Selected(); v.ID() != "3" {
		t.Errorf("Selected() = %q, want 3", v.ID())
	}

	err := d.Select("missing")
	if !errors.Is(err, ErrValveNotFound) {
		t.Errorf("Select(missing) error = %v, want ErrValveNotFound", err)
	}
	if v, _ := d.Selected(); v.ID() != "3" {
		t.Errorf("Selected() = %q after failed select, want 3", v.ID())
	}
}

func TestDashboard_Toggle(t *testing.T) {
	d, _ := newTestDashboard(t)

	v, err := d.Toggle("2", true)
	if err != nil {
		t.Fatalf("Toggle(2, on) error = %v", err)
	}
	if !v.Active() || v.Percentage() != 50 {
		t.Errorf("after on: active=%v pct=%d, want true/50", v.Active(), v.Percentage())
	}

	v, err = d.Toggle("2", false)
	if err != nil {
		t.Fatalf("Toggle(2, off) error = %v", err)
	}
	if v.Active() {
		t.Error("after off: Active() = true")
	}

	entries := d.Audit(AuditQuery{})
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	if entries[0].Details != "Switched off at 50% open" {
		t.Errorf("newest Details = %q", entries[0].Details)
	}
	if entries[0].Actor != "operator" || entries[0].Target != "Irrigation Zone A" || entries[0].TargetID != "2" {
		t.Errorf("newest entry actor/target = %q/%q (%q)", entries[0].Actor, entries[0].Target, entries[0].TargetID)
	}
}

func TestDashboard_CommandsRejected(t *testing.T) {
	d, st := newTestDashboard(t, WithActor("jdoe"))
	healthBefore := st.Health()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"toggle offline", func() error { _, err := d.Toggle("3", true); return err }, ErrValveOffline},
		{"set maintenance", func() error { _, err := d.SetPercentage("4", 10); return err }, ErrValveOffline},
		{"toggle unknown", func() error { _, err := d.Toggle("missing", true); return err }, ErrValveNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if v, _ := d.Valve("4"); v.Percentage() != 20 {
		t.Errorf("maintenance valve changed to %d%%", v.Percentage())
	}
	if st.Health() != healthBefore {
		t.Errorf("health changed to %v after rejected commands", st.Health())
	}

	failed := d.Audit(AuditQuery{Filter: AuditFailed})
	if len(failed) != 3 {
		t.Fatalf("failed audit entries = %d, want 3", len(failed))
	}
	if failed[0].Actor != "jdoe" || failed[0].Severity != SeverityHigh {
		t.Errorf("failed entry actor/severity = %q/%q", failed[0].Actor, failed[0].Severity)
	}

	wantTargets := []struct{ id, name string }{
		{"missing", "missing"},
		{"4", "Greenhouse Feed"},
		{"3", "Emergency Shutoff"},
	}
	for i, want := range wantTargets {
		if failed[i].TargetID != want.id || failed[i].Target != want.name {
			t.Errorf("failed[%d] target = %q/%q, want %q/%q",
				i, failed[i].TargetID, failed[i].Target, want.id, want.name)
		}
	}
}

func TestDashboard_SetPercentageClamps(t *testing.T) {
	d, _ := newTestDashboard(t)

	tests := []struct {
		in   int
		want int
	}{
		{150, 100},
		{-5, 0},
		{35, 35},
	}

	for _, tt := range tests {
		v, err := d.SetPercentage("1", tt.in)
		if err != nil {
			t.Fatalf("SetPercentage(%d) error = %v", tt.in, err)
		}
		if v.Percentage() != tt.want {
			t.Errorf("SetPercentage(%d) = %d, want %d", tt.in, v.Percentage(), tt.want)
		}
	}
}

func TestDashboard_SetPercentageZeroSwitchesOff(t *testing.T) {
	d, _ := newTestDashboard(t)

	v, err := d.SetPercentage("1", 0)
	if err != nil {
		t.Fatalf("SetPercentage() error = %v", err)
	}
	if v.Active() {
		t.Error("Active() = true after closing to 0%")
	}

	v, _ = d.Toggle("1", true)
	if v.Percentage() != 75 {
		t.Errorf("reopened at %d%%, want remembered 75%%", v.Percentage())
	}
}

func TestDashboard_PublishesHealthOnChange(t *testing.T) {
	v1, _ := NewValve("1", "Main Supply Line")
	v2, _ := NewValve("2", "Zone B", WithAlert("Low flow"))

	st := status.New(status.WithLogger(discardLogger()))
	d, err := New(WithValves(v1, v2), WithStatusStore(st), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var mu sync.Mutex
	var seen []status.Health
	unsubscribe := st.Subscribe(func() {
		mu.Lock()
		seen = append(seen, st.Health())
		mu.Unlock()
	})
	defer unsubscribe()

	if _, err := d.SetPercentage("1", 30); err != nil {
		t.Fatalf("SetPercentage() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != status.HealthMedium {
		t.Errorf("published health = %v, want [medium]", seen)
	}
}

func TestWithChangeCallback_Order(t *testing.T) {
	var calls []string
	d, _ := newTestDashboard(t,
		WithChangeCallback(func(ValveChange) { calls = append(calls, "first") }),
		WithChangeCallback(nil),
		WithChangeCallback(func(ValveChange) { calls = append(calls, "second") }),
	)

	if _, err := d.Toggle("2", true); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
}

func TestWithChangeCallback_ReceivesChange(t *testing.T) {
	var got ValveChange
	d, _ := newTestDashboard(t, WithChangeCallback(func(c ValveChange) { got = c }))

	if _, err := d.SetPercentage("1", 20); err != nil {
		t.Fatalf("SetPercentage() error = %v", err)
	}

	if got.Before.Percentage() != 75 || got.After.Percentage() != 20 {
		t.Errorf("change = %d -> %d, want 75 -> 20", got.Before.Percentage(), got.After.Percentage())
	}
	if got.Entry.Details != "Opening changed from 75% to 20%" {
		t.Errorf("Entry.Details = %q", got.Entry.Details)
	}
	if got.Entry.ID == "" {
		t.Error("Entry.ID is empty")
	}
}

func TestWithChangeCallback_NotCalledOnFailure(t *testing.T) {
	called := false
	d, _ := newTestDashboard(t, WithChangeCallback(func(ValveChange) { called = true }))

	_, _ = d.Toggle("3", true)

	if called {
		t.Error("callback invoked for a rejected command")
	}
}

func TestWithChangeCallback_PanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	secondCalled := false
	d, _ := newTestDashboard(t,
		WithLogger(logger),
		WithChangeCallback(func(ValveChange) { panic("boom") }),
		WithChangeCallback(func(ValveChange) { secondCalled = true }),
	)

	v, err := d.Toggle("2", true)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !v.Active() {
		t.Error("command not applied after callback panic")
	}
	if !secondCalled {
		t.Error("second callback not invoked after first panicked")
	}
	if !strings.Contains(buf.String(), "change callback panicked") {
		t.Errorf("log output missing panic entry: %s", buf.String())
	}
}

func TestWithAuditCapacity(t *testing.T) {
	d, _ := newTestDashboard(t, WithAuditCapacity(2))

	for _, pct := range []int{10, 20, 30} {
		if _, err := d.SetPercentage("1", pct); err != nil {
			t.Fatalf("SetPercentage(%d) error = %v", pct, err)
		}
	}

	if got := len(d.Audit(AuditQuery{})); got != 2 {
		t.Errorf("audit entries = %d, want 2", got)
	}
}

type countingHaptics struct {
	mu     sync.Mutex
	count  int
	styles []radial.ImpactStyle
}

func (h *countingHaptics) Impact(style radial.ImpactStyle) error {
	h.mu.Lock()
	h.count++
	h.styles = append(h.styles, style)
	h.mu.Unlock()
	return nil
}

func TestDashboard_Dial(t *testing.T) {
	haptics := &countingHaptics{}
	d, _ := newTestDashboard(t,
		WithDialGeometry(radial.Geometry{Size: 200, StrokeWidth: 20}),
		WithHaptics(haptics),
	)

	gesture, err := d.Dial("2")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	// 6 o'clock on a 200px dial
	gesture.Begin(100, 200)
	if v, _ := d.Valve("2"); v.Percentage() != 50 || !v.Active() {
		t.Errorf("after begin: pct=%d active=%v, want 50/true", v.Percentage(), v.Active())
	}

	// 9 o'clock
	gesture.Move(0, 100)
	gesture.End()
	if v, _ := d.Valve("2"); v.Percentage() != 75 {
		t.Errorf("after move: pct=%d, want 75", v.Percentage())
	}

	if haptics.count != 1 {
		t.Errorf("haptic impacts = %d, want 1", haptics.count)
	}
}

func TestDashboard_DialAuditsOnlyChanges(t *testing.T) {
	var changes int
	d, _ := newTestDashboard(t,
		WithDialGeometry(radial.Geometry{Size: 200, StrokeWidth: 20}),
		WithAuditCapacity(50),
		WithChangeCallback(func(ValveChange) { changes++ }),
	)

	gesture, err := d.Dial("1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	// valve 1 sits at 75%, which is 9 o'clock
	gesture.Begin(0, 100)
	for i := 0; i < 60; i++ {
		gesture.Move(0, 100)
	}

	if got := len(d.Audit(AuditQuery{})); got != 0 {
		t.Fatalf("audit entries after drag without change = %d, want 0", got)
	}
	if changes != 0 {
		t.Errorf("change callbacks = %d, want 0", changes)
	}

	// 6 o'clock
	gesture.Move(100, 200)
	gesture.Move(100, 200)
	gesture.End()

	entries := d.Audit(AuditQuery{})
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if want := "Opening changed from 75% to 50%"; entries[0].Details != want {
		t.Errorf("Details = %q, want %q", entries[0].Details, want)
	}
	if changes != 1 {
		t.Errorf("change callbacks = %d, want 1", changes)
	}
}

func TestDashboard_RepeatedToggleIsNoOp(t *testing.T) {
	d, _ := newTestDashboard(t)

	v, err := d.Toggle("1", true)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !v.Active() || v.Percentage() != 75 {
		t.Errorf("Toggle(1, on) = active %v at %d%%, want on at 75%%", v.Active(), v.Percentage())
	}
	if got := len(d.Audit(AuditQuery{})); got != 0 {
		t.Errorf("audit entries = %d, want 0", got)
	}
}

func TestDashboard_TogglePulsesMedium(t *testing.T) {
	haptics := &countingHaptics{}
	d, _ := newTestDashboard(t, WithHaptics(haptics))

	if _, err := d.Toggle("2", true); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	_, _ = d.Toggle("3", true)

	if len(haptics.styles) != 2 {
		t.Fatalf("haptic impacts = %d, want 2", len(haptics.styles))
	}
	for i, style := range haptics.styles {
		if style != radial.ImpactMedium {
			t.Errorf("impact %d = %v, want %v", i, style, radial.ImpactMedium)
		}
	}
}

func TestDashboard_DialUnknownValve(t *testing.T) {
	d, _ := newTestDashboard(t)

	if _, err := d.Dial("missing"); !errors.Is(err, ErrValveNotFound) {
		t.Errorf("Dial(missing) error = %v, want ErrValveNotFound", err)
	}
}

func TestDashboard_DialOfflineValveLogs(t *testing.T) {
	var buf bytes.Buffer
	d, _ := newTestDashboard(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	gesture, err := d.Dial("3")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	gesture.Begin(200, 100)

	if v, _ := d.Valve("3"); v.Percentage() != 0 {
		t.Errorf("offline valve changed to %d%%", v.Percentage())
	}
	if !strings.Contains(buf.String(), "dial command rejected") {
		t.Errorf("log output missing rejection: %s", buf.String())
	}
}

func TestDashboard_ConcurrentCommands(t *testing.T) {
	d, _ := newTestDashboard(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(pct int) {
			defer wg.Done()
			_, _ = d.SetPercentage("1", pct)
			_ = d.Stats()
			_ = d.Filtered(FilterOn)
		}(i*5 + 1)
	}
	wg.Wait()

	if got := len(d.Audit(AuditQuery{Filter: AuditSuccess})); got != 20 {
		t.Errorf("successful audit entries = %d, want 20", got)
	}
}
