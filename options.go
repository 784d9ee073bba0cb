package valvedash

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/auspowercell/valvedash/radial"
	"github.com/auspowercell/valvedash/status"
)

// dashConfig holds mutable state during Dashboard construction.
type dashConfig struct {
	title           string
	valves          []Valve
	store           *status.Store
	logger          *slog.Logger
	actor           string
	dial            radial.Geometry
	haptics         radial.Haptics
	changeCallbacks []func(ValveChange)
	auditCapacity   int
	operators       []Operator
}

// Option is a function that configures a [Dashboard] during construction.
//
// Option implements the functional options pattern. Options return an error
// if validation fails.
//
// Built-in options: [WithValve], [WithValves], [WithTitle], [WithStatusStore],
// [WithLogger], [WithActor], [WithDialGeometry], [WithHaptics],
// [WithChangeCallback], [WithAuditCapacity], [WithOperators].
type Option func(*dashConfig) error

// WithValve adds a single [Valve] to the fleet.
//
// Can be called multiple times. Valves are listed in the order added.
func WithValve(v Valve) Option {
	return func(cfg *dashConfig) error {
		cfg.valves = append(cfg.valves, v)
		return nil
	}
}

// WithValves adds multiple [Valve] values to the fleet.
//
// Equivalent to calling [WithValve] for each valve. Combine with
// [NewValveBank] to add a whole bank at once:
//
//	bank, _ := valvedash.NewValveBank("Zone", valvedash.WithDimensions(dims))
//	d, err := valvedash.New(valvedash.WithValves(bank...))
func WithValves(valves ...Valve) Option {
	return func(cfg *dashConfig) error {
		cfg.valves = append(cfg.valves, valves...)
		return nil
	}
}

// WithTitle sets the dashboard title. Defaults to "Valves".
func WithTitle(title string) Option {
	return func(cfg *dashConfig) error {
		cfg.title = title
		return nil
	}
}

// WithStatusStore sets the shared [status.Store] the dashboard publishes
// fleet health to.
//
// Create the store once at application start and pass the same instance to
// every consumer. If not specified, the dashboard creates a private store,
// available through [Dashboard.StatusStore].
//
// Returns an error if the store is nil.
func WithStatusStore(st *status.Store) Option {
	return func(cfg *dashConfig) error {
		if st == nil {
			return errors.New("status store cannot be nil")
		}
		cfg.store = st
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the dashboard.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *dashConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithActor sets the name recorded as the actor of audit entries.
// Defaults to "operator".
//
// Returns an error if the name is empty.
func WithActor(name string) Option {
	return func(cfg *dashConfig) error {
		if name == "" {
			return errors.New("actor cannot be empty")
		}
		cfg.actor = name
		return nil
	}
}

// WithDialGeometry sets the size of the detail panel's radial selector used
// by [Dashboard.Dial]. Defaults to 240px with an 18px ring.
//
// Returns an error if the geometry is invalid.
func WithDialGeometry(g radial.Geometry) Option {
	return func(cfg *dashConfig) error {
		if err := g.Validate(); err != nil {
			return err
		}
		cfg.dial = g
		return nil
	}
}

// WithHaptics sets the haptic feedback used by the dashboard: a light pulse
// when a dial gesture starts and a medium pulse on every [Dashboard.Toggle].
// Nil disables feedback.
func WithHaptics(h radial.Haptics) Option {
	return func(cfg *dashConfig) error {
		cfg.haptics = h
		return nil
	}
}

// WithChangeCallback registers a function called after every successful
// valve command.
//
// Multiple callbacks may be registered; they execute in registration order,
// synchronously, after health has been published. Panics within callbacks
// are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithChangeCallback(cb func(ValveChange)) Option {
	return func(cfg *dashConfig) error {
		if cb == nil {
			return nil
		}
		cfg.changeCallbacks = append(cfg.changeCallbacks, cb)
		return nil
	}
}

// WithAuditCapacity sets how many audit entries are retained.
// Defaults to [DefaultAuditCapacity].
//
// Returns an error if n is zero or negative.
func WithAuditCapacity(n int) Option {
	return func(cfg *dashConfig) error {
		if n <= 0 {
			return errors.New("audit capacity must be positive")
		}
		cfg.auditCapacity = n
		return nil
	}
}

// WithOperators adds entries to the operator directory returned by
// [Dashboard.Operators].
//
// Returns an error if an operator has no ID or name, or if an ID repeats.
func WithOperators(ops ...Operator) Option {
	return func(cfg *dashConfig) error {
		for _, op := range ops {
			if op.ID == "" || op.Name == "" {
				return errors.New("operator requires an id and a name")
			}
			for _, existing := range cfg.operators {
				if existing.ID == op.ID {
					return fmt.Errorf("duplicate operator id: %q", op.ID)
				}
			}
			cfg.operators = append(cfg.operators, op)
		}
		return nil
	}
}
