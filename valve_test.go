package valvedash

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewValve_Defaults(t *testing.T) {
	before := time.Now()
	v, err := NewValve("a1", "Irrigation Zone A1")
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}

	if v.ID() != "a1" {
		t.Errorf("ID() = %q, want %q", v.ID(), "a1")
	}
	if v.Name() != "Irrigation Zone A1" {
		t.Errorf("Name() = %q, want %q", v.Name(), "Irrigation Zone A1")
	}
	if v.State() != StateOnline {
		t.Errorf("State() = %v, want %v", v.State(), StateOnline)
	}
	if !v.Online() {
		t.Error("Online() = false, want true")
	}
	if v.Active() {
		t.Error("Active() = true, want false")
	}
	if v.Percentage() != 0 {
		t.Errorf("Percentage() = %d, want 0", v.Percentage())
	}
	if v.HasAlert() {
		t.Error("HasAlert() = true, want false")
	}
	if v.LastUpdate().Before(before) {
		t.Errorf("LastUpdate() = %v, want at or after %v", v.LastUpdate(), before)
	}
	if v.Labels() != nil {
		t.Errorf("Labels() = %v, want nil", v.Labels())
	}
}

func TestNewValve_BlankIdentity(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		label string
		want  string
	}{
		{"empty id", "", "Zone", "id cannot be empty"},
		{"whitespace id", "   ", "Zone", "id cannot be empty"},
		{"empty name", "a1", "", "name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValve(tt.id, tt.label)
			if err == nil {
				t.Fatal("NewValve() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestNewValve_AllOptions(t *testing.T) {
	seen := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	v, err := NewValve("5", "Relief Line",
		WithLocation("Central, Sector 5"),
		WithState(StateMaintenance),
		WithActive(true),
		WithPercentage(75),
		WithLastSetpoint(60),
		WithPressure(51.3),
		WithFlowRate(12.5),
		WithAlert("Pressure spike"),
		WithLastUpdate(seen),
		WithLabels("zone", "central"),
	)
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}

	if v.Location() != "Central, Sector 5" {
		t.Errorf("Location() = %q", v.Location())
	}
	if v.State() != StateMaintenance || v.Online() {
		t.Errorf("State() = %v, Online() = %v, want maintenance and not online", v.State(), v.Online())
	}
	if !v.Active() || v.Percentage() != 75 || v.LastSetpoint() != 60 {
		t.Errorf("Active/Percentage/LastSetpoint = %v/%d/%d, want true/75/60", v.Active(), v.Percentage(), v.LastSetpoint())
	}
	if v.Pressure() != 51.3 || v.FlowRate() != 12.5 {
		t.Errorf("Pressure/FlowRate = %v/%v, want 51.3/12.5", v.Pressure(), v.FlowRate())
	}
	if !v.HasAlert() || v.AlertMessage() != "Pressure spike" {
		t.Errorf("alert = %v %q, want true \"Pressure spike\"", v.HasAlert(), v.AlertMessage())
	}
	if !v.LastUpdate().Equal(seen) {
		t.Errorf("LastUpdate() = %v, want %v", v.LastUpdate(), seen)
	}
	if v.Labels()["zone"] != "central" {
		t.Errorf("Labels()[zone] = %q, want %q", v.Labels()["zone"], "central")
	}
}

func TestNewValve_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ValveOption
	}{
		{"state", WithState("flooded")},
		{"percentage low", WithPercentage(-1)},
		{"percentage high", WithPercentage(101)},
		{"setpoint", WithLastSetpoint(150)},
		{"pressure negative", WithPressure(-2)},
		{"pressure NaN", WithPressure(math.NaN())},
		{"flow infinite", WithFlowRate(math.Inf(1))},
		{"odd labels", WithLabels("zone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValve("a1", "Zone", tt.opt)
			if err == nil {
				t.Fatal("NewValve() error = nil, want error")
			}
			if !strings.Contains(err.Error(), `valve "a1"`) {
				t.Errorf("error = %q, want valve id in message", err)
			}
		})
	}
}

func TestWithAlert_EmptyMessage(t *testing.T) {
	v, err := NewValve("a1", "Zone", WithAlert("  "))
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}
	if v.AlertMessage() != "System alert detected" {
		t.Errorf("AlertMessage() = %q, want generic message", v.AlertMessage())
	}
}

func TestValve_LabelsReturnsCopy(t *testing.T) {
	v, err := NewValve("a1", "Zone", WithLabels("zone", "A"))
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}

	labels := v.Labels()
	labels["zone"] = "changed"

	if v.Labels()["zone"] != "A" {
		t.Errorf("Labels()[zone] = %q after mutating copy, want %q", v.Labels()["zone"], "A")
	}
}

func TestParseValveState(t *testing.T) {
	tests := []struct {
		in      string
		want    ValveState
		wantErr bool
	}{
		{"online", StateOnline, false},
		{" Offline ", StateOffline, false},
		{"MAINTENANCE", StateMaintenance, false},
		{"", "", true},
		{"broken", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValveState(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValveState(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseValveState(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithSwitch(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		opts     []ValveOption
		open     bool
		wantPct  int
		wantOpen bool
	}{
		{"on with no setpoint", nil, true, 50, true},
		{"on restores setpoint", []ValveOption{WithLastSetpoint(30)}, true, 30, true},
		{"on keeps opening", []ValveOption{WithPercentage(80), WithLastSetpoint(30)}, true, 80, true},
		{"off keeps opening", []ValveOption{WithActive(true), WithPercentage(80)}, false, 80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValve("a1", "Zone", tt.opts...)
			if err != nil {
				t.Fatalf("NewValve() error = %v", err)
			}

			got := v.withSwitch(tt.open, at)
			if got.Active() != tt.wantOpen {
				t.Errorf("Active() = %v, want %v", got.Active(), tt.wantOpen)
			}
			if got.Percentage() != tt.wantPct {
				t.Errorf("Percentage() = %d, want %d", got.Percentage(), tt.wantPct)
			}
			if !got.LastUpdate().Equal(at) {
				t.Errorf("LastUpdate() = %v, want %v", got.LastUpdate(), at)
			}
		})
	}
}

func TestWithPercentage(t *testing.T) {
	at := time.Now()
	v, err := NewValve("a1", "Zone", WithLastSetpoint(40))
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}

	opened := v.withPercentage(65, at)
	if !opened.Active() || opened.Percentage() != 65 || opened.LastSetpoint() != 65 {
		t.Errorf("after 65: active=%v pct=%d setpoint=%d, want true/65/65",
			opened.Active(), opened.Percentage(), opened.LastSetpoint())
	}

	closed := opened.withPercentage(0, at)
	if closed.Active() || closed.Percentage() != 0 {
		t.Errorf("after 0: active=%v pct=%d, want false/0", closed.Active(), closed.Percentage())
	}
	if closed.LastSetpoint() != 65 {
		t.Errorf("after 0: LastSetpoint() = %d, want 65", closed.LastSetpoint())
	}

	reopened := closed.withSwitch(true, at)
	if reopened.Percentage() != 65 {
		t.Errorf("switch on after close: Percentage() = %d, want 65", reopened.Percentage())
	}

	if v.Percentage() != 0 || v.LastSetpoint() != 40 {
		t.Error("withPercentage modified the original valve")
	}
}

func TestNewValve_SetpointDefaultsToOpening(t *testing.T) {
	v, err := NewValve("a1", "Zone", WithPercentage(35))
	if err != nil {
		t.Fatalf("NewValve() error = %v", err)
	}
	if v.LastSetpoint() != 35 {
		t.Errorf("LastSetpoint() = %d, want 35", v.LastSetpoint())
	}
}
