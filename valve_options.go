package valvedash

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// valveConfig holds mutable state during valve construction.
type valveConfig struct {
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

// ValveOption is a function that configures a [Valve] during construction.
//
// Options return an error if validation fails.
type ValveOption func(*valveConfig) error

// WithLocation sets where the valve is installed.
func WithLocation(location string) ValveOption {
	return func(cfg *valveConfig) error {
		cfg.location = strings.TrimSpace(location)
		return nil
	}
}

// WithState sets the valve's connectivity state. Defaults to [StateOnline].
func WithState(state ValveState) ValveOption {
	return func(cfg *valveConfig) error {
		if !state.Valid() {
			return fmt.Errorf("invalid valve state %q", state)
		}
		cfg.state = state
		return nil
	}
}

// WithActive sets whether the valve starts switched on.
func WithActive(active bool) ValveOption {
	return func(cfg *valveConfig) error {
		cfg.active = active
		return nil
	}
}

// WithPercentage sets the initial opening.
//
// Returns an error if pct is outside 0..100.
func WithPercentage(pct int) ValveOption {
	return func(cfg *valveConfig) error {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("percentage must be between 0 and 100, got %d", pct)
		}
		cfg.percentage = pct
		return nil
	}
}

// WithLastSetpoint sets the opening restored when the valve is switched on.
// Defaults to the initial opening set by [WithPercentage].
//
// Returns an error if pct is outside 0..100.
func WithLastSetpoint(pct int) ValveOption {
	return func(cfg *valveConfig) error {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("last setpoint must be between 0 and 100, got %d", pct)
		}
		cfg.lastSetpoint = pct
		return nil
	}
}

// WithPressure sets the last pressure reading in PSI.
//
// Returns an error if psi is negative or not a finite number.
func WithPressure(psi float64) ValveOption {
	return func(cfg *valveConfig) error {
		if math.IsNaN(psi) || math.IsInf(psi, 0) || psi < 0 {
			return fmt.Errorf("pressure must be a non-negative number, got %v", psi)
		}
		cfg.pressure = psi
		return nil
	}
}

// WithFlowRate sets the last flow reading in litres per minute.
//
// Returns an error if rate is negative or not a finite number.
func WithFlowRate(rate float64) ValveOption {
	return func(cfg *valveConfig) error {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
			return fmt.Errorf("flow rate must be a non-negative number, got %v", rate)
		}
		cfg.flowRate = rate
		return nil
	}
}

// WithAlert flags the valve with an open alert. An empty message uses a
// generic description.
func WithAlert(message string) ValveOption {
	return func(cfg *valveConfig) error {
		cfg.hasAlert = true
		cfg.alertMessage = strings.TrimSpace(message)
		if cfg.alertMessage == "" {
			cfg.alertMessage = "System alert detected"
		}
		return nil
	}
}

// WithLastUpdate sets when the valve last reported.
func WithLastUpdate(t time.Time) ValveOption {
	return func(cfg *valveConfig) error {
		cfg.lastUpdate = t
		return nil
	}
}

// WithLabels adds metadata labels to the valve for grouping.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	v, err := valvedash.NewValve("a1", "Irrigation Zone A1",
//	    valvedash.WithLabels("zone", "A", "sector", "1"),
//	)
func WithLabels(keyValues ...string) ValveOption {
	return func(cfg *valveConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithLabels requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.labels[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
