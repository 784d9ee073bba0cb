package valvedash

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// defaultSetpoint is the opening restored when a valve with no remembered
// setpoint is switched on.
const defaultSetpoint = 50

// ValveState is the connectivity state of a valve.
type ValveState string

const (
	// StateOnline indicates the valve is reachable and accepts commands.
	StateOnline ValveState = "online"

	// StateOffline indicates the valve is unreachable.
	StateOffline ValveState = "offline"

	// StateMaintenance indicates the valve is taken out of service.
	StateMaintenance ValveState = "maintenance"
)

// String returns the string representation of the state.
func (s ValveState) String() string {
	return string(s)
}

// Valid reports whether s is a known state.
func (s ValveState) Valid() bool {
	switch s {
	case StateOnline, StateOffline, StateMaintenance:
		return true
	default:
		return false
	}
}

// ParseValveState converts a string to a [ValveState], rejecting unknown values.
func ParseValveState(s string) (ValveState, error) {
	state := ValveState(strings.ToLower(strings.TrimSpace(s)))
	if !state.Valid() {
		return "", fmt.Errorf("invalid valve state %q (expected online, offline, or maintenance)", s)
	}
	return state, nil
}

// Valve is a single controllable valve in the fleet.
//
// Valve is immutable after creation via [NewValve]. All fields are private
// with getter methods that return copies of mutable data, so a Valve handed
// out by a [Dashboard] is a snapshot that later commands do not change.
//
// Valves are configured using the functional options pattern with
// [ValveOption] functions such as [WithState], [WithPercentage] and
// [WithAlert].
type Valve struct {
	id           string
	name         string
	location     string
	state        ValveState
	active       bool
	percentage   int
	lastSetpoint int
	pressure     float64
	flowRate     float64
	hasAlert     bool
	alertMessage string
	lastUpdate   time.Time
	labels       map[string]string
}

// ID returns the valve's unique identifier.
func (v Valve) ID() string {
	return v.id
}

// Name returns the valve's display name.
func (v Valve) Name() string {
	return v.name
}

// Location returns where the valve is installed. May be empty.
func (v Valve) Location() string {
	return v.location
}

// State returns the valve's connectivity state.
func (v Valve) State() ValveState {
	return v.state
}

// Online reports whether the valve accepts commands.
func (v Valve) Online() bool {
	return v.state == StateOnline
}

// Active reports whether the valve is switched on.
func (v Valve) Active() bool {
	return v.active
}

// Percentage returns the current opening, 0 to 100.
func (v Valve) Percentage() int {
	return v.percentage
}

// LastSetpoint returns the last non-zero opening chosen by an operator.
// Zero means no setpoint has been recorded.
func (v Valve) LastSetpoint() int {
	return v.lastSetpoint
}

// Pressure returns the last pressure reading in PSI.
func (v Valve) Pressure() float64 {
	return v.pressure
}

// FlowRate returns the last flow reading in litres per minute.
func (v Valve) FlowRate() float64 {
	return v.flowRate
}

// HasAlert reports whether the valve has an open alert.
func (v Valve) HasAlert() bool {
	return v.hasAlert
}

// AlertMessage returns the alert text, or empty if there is no alert.
func (v Valve) AlertMessage() string {
	return v.alertMessage
}

// LastUpdate returns when the valve last reported or was last commanded.
func (v Valve) LastUpdate() time.Time {
	return v.lastUpdate
}

// Labels returns a copy of the valve's labels. Returns nil if none are set.
func (v Valve) Labels() map[string]string {
	return copyMap(v.labels)
}

// NewValve creates a new [Valve] with the given ID, name and options.
//
// The valve defaults to online, switched off and fully closed, with its
// last update set to now.
//
// Example:
//
//	v, err := valvedash.NewValve("5", "Relief Line",
//	    valvedash.WithLocation("Central, Sector 5"),
//	    valvedash.WithActive(true),
//	    valvedash.WithPercentage(75),
//	)
//
// Returns an error if id or name is blank or any option is invalid.
func NewValve(id, name string, opts ...ValveOption) (Valve, error) {
	if strings.TrimSpace(id) == "" {
		return Valve{}, errors.New("valve id cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return Valve{}, errors.New("valve name cannot be empty")
	}

	cfg := &valveConfig{
		state:  StateOnline,
		labels: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Valve{}, fmt.Errorf("valve %q: %w", id, err)
		}
	}

	lastUpdate := cfg.lastUpdate
	if lastUpdate.IsZero() {
		lastUpdate = time.Now()
	}

	lastSetpoint := cfg.lastSetpoint
	if lastSetpoint == 0 {
		lastSetpoint = cfg.percentage
	}

	var labels map[string]string
	if len(cfg.labels) > 0 {
		labels = copyMap(cfg.labels)
	}

	return Valve{
		id:           id,
		name:         name,
		location:     cfg.location,
		state:        cfg.state,
		active:       cfg.active,
		percentage:   cfg.percentage,
		lastSetpoint: lastSetpoint,
		pressure:     cfg.pressure,
		flowRate:     cfg.flowRate,
		hasAlert:     cfg.hasAlert,
		alertMessage: cfg.alertMessage,
		lastUpdate:   lastUpdate,
		labels:       labels,
	}, nil
}

// withSwitch returns a copy switched on or off.
//
// Switching on a closed valve restores its last setpoint, or 50% if none
// was ever recorded. Switching off leaves the opening untouched.
func (v Valve) withSwitch(open bool, at time.Time) Valve {
	v.active = open
	if open && v.percentage == 0 {
		v.percentage = v.lastSetpoint
		if v.percentage == 0 {
			v.percentage = defaultSetpoint
		}
	}
	v.lastUpdate = at
	v.labels = copyMap(v.labels)
	return v
}

// withPercentage returns a copy opened to pct.
//
// A non-zero opening is remembered as the setpoint and switches the valve
// on; zero switches it off and keeps the previous setpoint.
func (v Valve) withPercentage(pct int, at time.Time) Valve {
	v.percentage = pct
	v.active = pct > 0
	if pct > 0 {
		v.lastSetpoint = pct
	}
	v.lastUpdate = at
	v.labels = copyMap(v.labels)
	return v
}

// copyMap returns a copy of the map, or nil if input is nil.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
