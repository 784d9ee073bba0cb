package valvedash

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/auspowercell/valvedash/radial"
	"github.com/auspowercell/valvedash/status"
)

const (
	defaultTitle      = "Valves"
	defaultActor      = "operator"
	defaultDialSize   = 240
	defaultDialStroke = 18
	actionToggle      = "Valve Switched"
	actionSetOpening  = "Valve Opening Changed"
)

var (
	// ErrValveNotFound is returned when a command names an unknown valve.
	ErrValveNotFound = errors.New("valve not found")

	// ErrValveOffline is returned when a command targets a valve that is not
	// online.
	ErrValveOffline = errors.New("valve is not online")
)

// ValveChange describes a successful command, passed to change callbacks.
type ValveChange struct {
	Before Valve
	After  Valve
	Entry  AuditEntry
}

// Dashboard is the controller behind the valve monitor screen.
//
// Dashboard owns the fleet of valves and applies operator commands to it:
// switching valves on and off and changing their opening. After every
// command it re-rates fleet health and publishes it to the shared
// [status.Store], appends an [AuditEntry], and runs change callbacks.
//
// Dashboard is safe for concurrent use. It is created with [New]:
//
//	st := status.New()
//	d, err := valvedash.New(
//	    valvedash.WithValves(valves...),
//	    valvedash.WithStatusStore(st),
//	)
type Dashboard struct {
	title           string
	store           *status.Store
	audit           *AuditLog
	logger          *slog.Logger
	actor           string
	dial            radial.Geometry
	haptics         radial.Haptics
	changeCallbacks []func(ValveChange)
	operators       []Operator

	mu       sync.RWMutex
	valves   []Valve
	index    map[string]int
	selected string
}

// New creates a new [Dashboard] with the given options.
//
// The fleet may be empty. Defaults:
//   - Title: "Valves"
//   - Actor: "operator"
//   - Dial: 240px with an 18px ring
//   - Audit capacity: 500 entries
//
// The first valve is selected and the initial health is published to the
// status store before New returns.
//
// Returns an error if two valves share an ID or any option is invalid.
func New(opts ...Option) (*Dashboard, error) {
	cfg := &dashConfig{
		title: defaultTitle,
		actor: defaultActor,
		dial:  radial.Geometry{Size: defaultDialSize, StrokeWidth: defaultDialStroke},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	index := make(map[string]int, len(cfg.valves))
	for i, v := range cfg.valves {
		if v.id == "" {
			return nil, fmt.Errorf("valves[%d]: valve was not created with NewValve", i)
		}
		if _, dup := index[v.id]; dup {
			return nil, fmt.Errorf("duplicate valve id: %q", v.id)
		}
		index[v.id] = i
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	st := cfg.store
	if st == nil {
		st = status.New(status.WithLogger(logger))
	}

	valves := make([]Valve, len(cfg.valves))
	copy(valves, cfg.valves)

	d := &Dashboard{
		title:           cfg.title,
		store:           st,
		audit:           NewAuditLog(cfg.auditCapacity),
		logger:          logger,
		actor:           cfg.actor,
		dial:            cfg.dial,
		haptics:         cfg.haptics,
		changeCallbacks: cfg.changeCallbacks,
		operators:       cfg.operators,
		valves:          valves,
		index:           index,
	}
	if len(valves) > 0 {
		d.selected = valves[0].id
	}

	d.store.SetHealth(DeriveHealth(valves))
	return d, nil
}

// Title returns the dashboard title.
func (d *Dashboard) Title() string {
	return d.title
}

// StatusStore returns the status store health is published to.
func (d *Dashboard) StatusStore() *status.Store {
	return d.store
}

// DialGeometry returns the geometry used by [Dashboard.Dial].
func (d *Dashboard) DialGeometry() radial.Geometry {
	return d.dial
}

// Valves returns a snapshot of the fleet in display order.
func (d *Dashboard) Valves() []Valve {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cp := make([]Valve, len(d.valves))
	copy(cp, d.valves)
	return cp
}

// Valve returns the valve with the given ID.
func (d *Dashboard) Valve(id string) (Valve, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.index[id]
	if !ok {
		return Valve{}, false
	}
	return d.valves[i], true
}

// Filtered returns the valves passing f, in display order.
func (d *Dashboard) Filtered(f Filter) []Valve {
	return f.Apply(d.Valves())
}

// Counts returns the number of valves behind each filter chip.
func (d *Dashboard) Counts() map[Filter]int {
	return CountByFilter(d.Valves())
}

// Search returns the valves matching query. See [Search].
func (d *Dashboard) Search(query string) []Valve {
	return Search(d.Valves(), query)
}

// Stats summarises the fleet.
func (d *Dashboard) Stats() Stats {
	return ComputeStats(d.Valves())
}

// Health returns the current fleet health rating.
func (d *Dashboard) Health() status.Health {
	return DeriveHealth(d.Valves())
}

// Audit returns audit entries matching q, newest first.
func (d *Dashboard) Audit(q AuditQuery) []AuditEntry {
	return d.audit.Entries(q)
}

// Operators returns the operator directory entries matching query, with the
// dashboard's actor first, then online operators, then by name.
func (d *Dashboard) Operators(query string) []Operator {
	return SortOperators(SearchOperators(d.operators, query), d.actor)
}

// Select makes the valve with the given ID the one shown in the detail panel.
//
// Returns [ErrValveNotFound] for an unknown ID.
func (d *Dashboard) Select(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[id]; !ok {
		return fmt.Errorf("select %q: %w", id, ErrValveNotFound)
	}
	d.selected = id
	return nil
}

// Selected returns the valve shown in the detail panel. The boolean is false
// only when the fleet is empty.
func (d *Dashboard) Selected() (Valve, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.index[d.selected]
	if !ok {
		return Valve{}, false
	}
	return d.valves[i], true
}

// Toggle switches a valve on or off.
//
// Switching on a closed valve restores its last setpoint (50% if none).
// Switching a valve to the position it already has changes nothing and is
// not audited. Returns [ErrValveNotFound] for an unknown ID and [ErrValveOffline] if the
// valve is not online; failed commands are still audited.
func (d *Dashboard) Toggle(id string, open bool) (Valve, error) {
	word := "off"
	if open {
		word = "on"
	}
	d.pulse(radial.ImpactMedium)

	return d.apply(id, actionToggle, func(v Valve, at time.Time) (Valve, string) {
		after := v.withSwitch(open, at)
		return after, fmt.Sprintf("Switched %s at %d%% open", word, after.percentage)
	})
}

// SetPercentage changes a valve's opening.
//
// pct is clamped to 0..100. A non-zero opening switches the valve on and is
// remembered as its setpoint; zero switches it off. Returns the same errors
// as [Dashboard.Toggle].
func (d *Dashboard) SetPercentage(id string, pct int) (Valve, error) {
	pct = radial.Clamp(pct)

	return d.apply(id, actionSetOpening, func(v Valve, at time.Time) (Valve, string) {
		return v.withPercentage(pct, at), fmt.Sprintf("Opening changed from %d%% to %d%%", v.percentage, pct)
	})
}

// Dial returns a radial gesture bound to the valve with the given ID.
//
// Every value the gesture reports is applied with [Dashboard.SetPercentage].
// Samples that repeat the current opening are no-ops, so a drag audits only
// the values it actually changed to. Command errors are logged; the gesture
// itself cannot fail.
//
// Returns [ErrValveNotFound] for an unknown ID.
func (d *Dashboard) Dial(id string) (*radial.Gesture, error) {
	if _, ok := d.Valve(id); !ok {
		return nil, fmt.Errorf("dial %q: %w", id, ErrValveNotFound)
	}

	onChange := func(pct int) {
		if _, err := d.SetPercentage(id, pct); err != nil {
			d.logger.Warn("dial command rejected", "valve", id, "percentage", pct, "error", err)
		}
	}

	var opts []radial.GestureOption
	if d.haptics != nil {
		opts = append(opts, radial.WithHaptics(d.haptics))
	}
	return radial.NewGesture(d.dial, onChange, opts...), nil
}

// apply runs a command against one valve under the write lock, then
// publishes health, records the audit entry and runs callbacks outside it.
// A command that leaves the switch and opening as they were is a no-op: it
// is not audited and callbacks do not run.
func (d *Dashboard) apply(id, action string, mutate func(Valve, time.Time) (Valve, string)) (Valve, error) {
	now := time.Now()

	d.mu.Lock()
	i, ok := d.index[id]
	if !ok {
		d.mu.Unlock()
		d.recordFailure(id, id, action, ErrValveNotFound)
		return Valve{}, fmt.Errorf("%s %q: %w", action, id, ErrValveNotFound)
	}

	before := d.valves[i]
	if !before.Online() {
		d.mu.Unlock()
		d.recordFailure(id, before.name, action, ErrValveOffline)
		return before, fmt.Errorf("%s %q: %w", action, id, ErrValveOffline)
	}

	after, details := mutate(before, now)
	if sameSetting(before, after) {
		d.mu.Unlock()
		d.logger.Debug("valve command unchanged", "valve", id, "action", action)
		return before, nil
	}
	d.valves[i] = after

	snapshot := make([]Valve, len(d.valves))
	copy(snapshot, d.valves)
	d.mu.Unlock()

	health := DeriveHealth(snapshot)
	d.store.SetHealth(health)

	entry := d.audit.Record(AuditEntry{
		At:       now,
		Actor:    d.actor,
		Action:   action,
		TargetID: id,
		Target:   after.name,
		Result:   ResultSuccess,
		Severity: SeverityMedium,
		Details:  details,
	})

	d.logger.Info("valve command applied",
		"valve", id,
		"action", action,
		"active", after.active,
		"percentage", after.percentage,
		"health", health,
	)

	change := ValveChange{Before: before, After: after, Entry: entry}
	for _, cb := range d.changeCallbacks {
		invokeCallbackSafe(cb, change, d.logger)
	}

	return after, nil
}

// sameSetting reports whether two versions of a valve have the same switch
// position, opening and setpoint.
func sameSetting(a, b Valve) bool {
	return a.active == b.active && a.percentage == b.percentage && a.lastSetpoint == b.lastSetpoint
}

// recordFailure audits a rejected command. target is the valve name, or
// the requested ID when no valve has that ID.
func (d *Dashboard) recordFailure(id, target, action string, cause error) {
	d.audit.Record(AuditEntry{
		Actor:    d.actor,
		Action:   action,
		TargetID: id,
		Target:   target,
		Result:   ResultFailed,
		Severity: SeverityHigh,
		Details:  cause.Error(),
	})
	d.logger.Warn("valve command rejected", "valve", id, "action", action, "error", cause)
}

func (d *Dashboard) pulse(style radial.ImpactStyle) {
	if d.haptics == nil {
		return
	}
	_ = d.haptics.Impact(style)
}

// invokeCallbackSafe calls a change callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(ValveChange), change ValveChange, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change callback panicked",
				"panic", r,
				"valve", change.After.id,
			)
		}
	}()
	cb(change)
}
