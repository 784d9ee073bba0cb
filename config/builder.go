package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/auspowercell/valvedash"
	"github.com/auspowercell/valvedash/radial"
	"github.com/auspowercell/valvedash/status"
)

// BuildValves converts parsed configuration into SDK Valve values.
//
// It processes both individual valves and banks, returning a combined slice
// in file order. Bank dimensions are expanded via cartesian product. Last
// update times are computed relative to now.
func BuildValves(cfg *Config, now time.Time) ([]valvedash.Valve, error) {
	var valves []valvedash.Valve

	for _, vc := range cfg.Valves {
		v, err := buildValve(vc, now)
		if err != nil {
			return nil, err
		}
		valves = append(valves, v)
	}

	for _, bc := range cfg.Banks {
		bank, err := buildBank(bc)
		if err != nil {
			return nil, err
		}
		valves = append(valves, bank...)
	}

	return valves, nil
}

// BuildOptions converts parsed configuration into Dashboard options.
//
// The returned options include the valves from [BuildValves]; callers add
// their own store and logger.
func BuildOptions(cfg *Config, now time.Time) ([]valvedash.Option, error) {
	valves, err := BuildValves(cfg, now)
	if err != nil {
		return nil, err
	}

	geometry, err := BuildGeometry(cfg)
	if err != nil {
		return nil, err
	}

	opts := []valvedash.Option{
		valvedash.WithValves(valves...),
		valvedash.WithTitle(cfg.Title),
		valvedash.WithDialGeometry(geometry),
	}
	if cfg.Actor != "" {
		opts = append(opts, valvedash.WithActor(cfg.Actor))
	}
	if cfg.AuditCapacity > 0 {
		opts = append(opts, valvedash.WithAuditCapacity(cfg.AuditCapacity))
	}
	if len(cfg.Operators) > 0 {
		opts = append(opts, valvedash.WithOperators(BuildOperators(cfg)...))
	}
	return opts, nil
}

// BuildOperators converts the configured operator directory to SDK values.
func BuildOperators(cfg *Config) []valvedash.Operator {
	ops := make([]valvedash.Operator, len(cfg.Operators))
	for i, oc := range cfg.Operators {
		ops[i] = valvedash.Operator{
			ID:         oc.ID,
			Name:       oc.Name,
			Email:      oc.Email,
			Role:       oc.Role,
			Department: oc.Department,
			Online:     oc.Online,
		}
	}
	return ops
}

// BuildGeometry returns the configured dial geometry.
func BuildGeometry(cfg *Config) (radial.Geometry, error) {
	g, err := radial.NewGeometry(cfg.Dial.Size, cfg.Dial.StrokeWidth)
	if err != nil {
		return radial.Geometry{}, fmt.Errorf("dial: %w", err)
	}
	return g, nil
}

// BuildRenderOptions returns the ring render options for the configured dial.
func BuildRenderOptions(cfg *Config) []radial.RenderOption {
	return []radial.RenderOption{radial.WithTicks(cfg.Dial.Ticks)}
}

// BuildNetworkSource returns a network source reporting the configured
// connection.
func BuildNetworkSource(cfg *Config) status.StaticSource {
	return status.StaticSource{
		Connected: cfg.Network.IsConnected(),
		SSID:      cfg.Network.SSID,
		Type:      cfg.Network.Type,
	}
}

// buildValve converts a single ValveConfig to an SDK Valve.
func buildValve(vc ValveConfig, now time.Time) (valvedash.Valve, error) {
	opts := []valvedash.ValveOption{
		valvedash.WithActive(vc.Active),
		valvedash.WithPercentage(vc.Percentage),
		valvedash.WithPressure(vc.Pressure),
		valvedash.WithFlowRate(vc.FlowRate),
		valvedash.WithLastUpdate(now.Add(-vc.LastSeen.Duration())),
	}

	if vc.Location != "" {
		opts = append(opts, valvedash.WithLocation(vc.Location))
	}
	if vc.State != "" {
		state, err := valvedash.ParseValveState(vc.State)
		if err != nil {
			return valvedash.Valve{}, err
		}
		opts = append(opts, valvedash.WithState(state))
	}
	if vc.LastSetpoint > 0 {
		opts = append(opts, valvedash.WithLastSetpoint(vc.LastSetpoint))
	}
	if vc.Alert != "" {
		opts = append(opts, valvedash.WithAlert(vc.Alert))
	}
	if len(vc.Labels) > 0 {
		opts = append(opts, valvedash.WithLabels(mapToKeyValuePairs(vc.Labels)...))
	}

	return valvedash.NewValve(vc.ID, vc.Name, opts...)
}

// buildBank expands a BankConfig into valves.
func buildBank(bc BankConfig) ([]valvedash.Valve, error) {
	opts := []valvedash.BankOption{
		valvedash.WithDimensions(bc.Dimensions),
	}
	if bc.NameTemplate != "" {
		opts = append(opts, valvedash.WithNameTemplate(bc.NameTemplate))
	}
	if bc.IDTemplate != "" {
		opts = append(opts, valvedash.WithIDTemplate(bc.IDTemplate))
	}
	if bc.LocationTemplate != "" {
		opts = append(opts, valvedash.WithLocationTemplate(bc.LocationTemplate))
	}
	if len(bc.Labels) > 0 {
		opts = append(opts, valvedash.WithBankLabels(mapToKeyValuePairs(bc.Labels)...))
	}

	var valveOpts []valvedash.ValveOption
	if bc.State != "" {
		state, err := valvedash.ParseValveState(bc.State)
		if err != nil {
			return nil, err
		}
		valveOpts = append(valveOpts, valvedash.WithState(state))
	}
	if bc.Pressure > 0 {
		valveOpts = append(valveOpts, valvedash.WithPressure(bc.Pressure))
	}
	if len(valveOpts) > 0 {
		opts = append(opts, valvedash.WithValveOptions(valveOpts...))
	}

	valves, err := valvedash.NewValveBank(bc.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("bank (%s): %w", bc.Name, err)
	}
	return valves, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
