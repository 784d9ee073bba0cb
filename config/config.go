// Package config provides YAML configuration parsing for valvedash.
//
// This package lets the valvedash binary load a valve fleet and dashboard
// settings from a file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: North Farm
//	actor: ${USER:-operator}
//
//	network:
//	  ssid: ${WIFI_SSID:-FarmNet}
//	  refresh_interval: 30s
//
//	valves:
//	  - id: "1"
//	    name: Main Supply Line
//	    location: North Field, Sector 1
//	    active: true
//	    percentage: 75
//	    pressure: 45.2
//
//	banks:
//	  - name: Irrigation Zone
//	    name_template: "Irrigation Zone {{.zone}}{{.sector}}"
//	    dimensions:
//	      zone: [A, B]
//	      sector: ["1", "2"]
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/auspowercell/valvedash"
)

const (
	defaultTitle       = "Valves"
	defaultDialSize    = 240
	defaultDialStroke  = 18
	defaultDialTicks   = 40
	minRefreshInterval = 1 * time.Second
)

// Config is the root configuration structure for valvedash.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Valves" if not set.
	Title string `yaml:"title"`

	// Actor is the name recorded in audit entries.
	// Supports environment variable substitution.
	Actor string `yaml:"actor"`

	// AuditCapacity is how many audit entries are kept. Zero selects the
	// SDK default.
	AuditCapacity int `yaml:"audit_capacity"`

	// Network describes the connection shown in the status bar.
	Network NetworkConfig `yaml:"network"`

	// Dial sizes the radial opening selector.
	Dial DialConfig `yaml:"dial"`

	// Valves defines individual valves.
	Valves []ValveConfig `yaml:"valves"`

	// Banks defines valve banks that expand via cartesian product.
	Banks []BankConfig `yaml:"banks"`

	// Operators lists the operator directory.
	Operators []OperatorConfig `yaml:"operators"`
}

// OperatorConfig defines one operator directory entry.
type OperatorConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
	Online     bool   `yaml:"online"`
}

// NetworkConfig describes the host network reported to the status bar.
type NetworkConfig struct {
	// Connected reports whether the host is online. Defaults to true.
	Connected *bool `yaml:"connected"`

	// SSID is the wireless network name.
	// Supports environment variable substitution.
	SSID string `yaml:"ssid"`

	// Type is the connection type, e.g. "wifi" or "cellular".
	Type string `yaml:"type"`

	// RefreshInterval is how often the network state is re-read.
	// Defaults to 15s. Must be at least 1s.
	RefreshInterval Duration `yaml:"refresh_interval"`
}

// IsConnected reports the configured connection state, defaulting to true.
func (n NetworkConfig) IsConnected() bool {
	return n.Connected == nil || *n.Connected
}

// DialConfig sizes the radial opening selector.
type DialConfig struct {
	// Size is the dial's width and height in pixels. Defaults to 240.
	Size float64 `yaml:"size"`

	// StrokeWidth is the ring thickness in pixels. Defaults to 18.
	StrokeWidth float64 `yaml:"stroke_width"`

	// Ticks is the number of tick marks drawn. Defaults to 40.
	Ticks int `yaml:"ticks"`
}

// ValveConfig defines a single valve.
type ValveConfig struct {
	// ID uniquely identifies the valve across the whole file.
	ID string `yaml:"id"`

	// Name is the display name shown in the dashboard.
	Name string `yaml:"name"`

	// Location is a free-form description such as "North Field, Sector 1".
	Location string `yaml:"location"`

	// State is online, offline or maintenance. Defaults to online.
	State string `yaml:"state"`

	// Active reports whether the valve starts switched on.
	Active bool `yaml:"active"`

	// Percentage is the initial opening, 0 to 100.
	Percentage int `yaml:"percentage"`

	// LastSetpoint is the opening restored when switched on, 0 to 100.
	LastSetpoint int `yaml:"last_setpoint"`

	// Pressure is the last pressure reading in PSI.
	Pressure float64 `yaml:"pressure"`

	// FlowRate is the last flow reading in litres per minute.
	FlowRate float64 `yaml:"flow_rate"`

	// Alert, if set, flags the valve with an open alert.
	Alert string `yaml:"alert"`

	// LastSeen is how long ago the valve last reported, e.g. "2m".
	LastSeen Duration `yaml:"last_seen"`

	// Labels are metadata key-value pairs for grouping.
	Labels map[string]string `yaml:"labels"`
}

// BankConfig defines a valve bank that expands via cartesian product.
//
// For example, with dimensions {zone: [A, B], sector: [1, 2]} the bank
// expands to 4 valves: A1, A2, B1, B2.
type BankConfig struct {
	// Name is the base name for generated valves.
	Name string `yaml:"name"`

	// NameTemplate is a Go template for valve names, e.g.
	// "Irrigation Zone {{.zone}}{{.sector}}".
	NameTemplate string `yaml:"name_template"`

	// IDTemplate is a Go template for valve IDs.
	IDTemplate string `yaml:"id_template"`

	// LocationTemplate is a Go template for valve locations.
	LocationTemplate string `yaml:"location_template"`

	// Dimensions maps dimension names to their possible values.
	Dimensions map[string][]string `yaml:"dimensions"`

	// State applies to every generated valve. Defaults to online.
	State string `yaml:"state"`

	// Pressure applies to every generated valve.
	Pressure float64 `yaml:"pressure"`

	// Labels are additional labels applied to every generated valve.
	// Dimension labels win on collisions.
	Labels map[string]string `yaml:"labels"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part, present when a default was given
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return sub[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Actor, Network.SSID and valve
// Location values. Defaults are applied for Title, Dial and
// Network.RefreshInterval.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Dial.Size == 0 {
		cfg.Dial.Size = defaultDialSize
	}
	if cfg.Dial.StrokeWidth == 0 {
		cfg.Dial.StrokeWidth = defaultDialStroke
	}
	if cfg.Dial.Ticks == 0 {
		cfg.Dial.Ticks = defaultDialTicks
	}
	if cfg.Network.RefreshInterval == 0 {
		cfg.Network.RefreshInterval = Duration(15 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	var err error

	if c.Actor, err = expandEnvVars(c.Actor); err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	if c.Network.SSID, err = expandEnvVars(c.Network.SSID); err != nil {
		return fmt.Errorf("network.ssid: %w", err)
	}
	if c.Network.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("network.refresh_interval must be at least %s, got %s",
			minRefreshInterval, c.Network.RefreshInterval.Duration())
	}

	if c.AuditCapacity < 0 {
		return fmt.Errorf("audit_capacity cannot be negative, got %d", c.AuditCapacity)
	}

	if c.Dial.Ticks < 0 {
		return fmt.Errorf("dial.ticks cannot be negative, got %d", c.Dial.Ticks)
	}
	if c.Dial.StrokeWidth < 0 || c.Dial.Size <= c.Dial.StrokeWidth {
		return fmt.Errorf("dial: stroke_width must be between 0 and size, got size %v stroke_width %v",
			c.Dial.Size, c.Dial.StrokeWidth)
	}

	operatorIDs := make(map[string]int, len(c.Operators))
	for i, op := range c.Operators {
		if strings.TrimSpace(op.ID) == "" {
			return fmt.Errorf("operators[%d]: id is required", i)
		}
		if strings.TrimSpace(op.Name) == "" {
			return fmt.Errorf("operators[%d] (%s): name is required", i, op.ID)
		}
		if first, dup := operatorIDs[op.ID]; dup {
			return fmt.Errorf("operators[%d] (%s): id already used by operators[%d]", i, op.ID, first)
		}
		operatorIDs[op.ID] = i
	}

	seen := make(map[string]int, len(c.Valves))
	for i := range c.Valves {
		v := &c.Valves[i]

		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("valves[%d]: id is required", i)
		}
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("valves[%d] (%s): name is required", i, v.ID)
		}
		if first, dup := seen[v.ID]; dup {
			return fmt.Errorf("valves[%d] (%s): id already used by valves[%d]", i, v.ID, first)
		}
		seen[v.ID] = i

		if v.Location, err = expandEnvVars(v.Location); err != nil {
			return fmt.Errorf("valves[%d] (%s): location: %w", i, v.ID, err)
		}

		if err := validateState(v.State); err != nil {
			return fmt.Errorf("valves[%d] (%s): %w", i, v.ID, err)
		}
		if v.Percentage < 0 || v.Percentage > 100 {
			return fmt.Errorf("valves[%d] (%s): percentage must be between 0 and 100, got %d", i, v.ID, v.Percentage)
		}
		if v.LastSetpoint < 0 || v.LastSetpoint > 100 {
			return fmt.Errorf("valves[%d] (%s): last_setpoint must be between 0 and 100, got %d", i, v.ID, v.LastSetpoint)
		}
		if err := validateReading("pressure", v.Pressure); err != nil {
			return fmt.Errorf("valves[%d] (%s): %w", i, v.ID, err)
		}
		if err := validateReading("flow_rate", v.FlowRate); err != nil {
			return fmt.Errorf("valves[%d] (%s): %w", i, v.ID, err)
		}
		if v.LastSeen < 0 {
			return fmt.Errorf("valves[%d] (%s): last_seen cannot be negative, got %s", i, v.ID, v.LastSeen.Duration())
		}
	}

	for i := range c.Banks {
		b := &c.Banks[i]

		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("banks[%d]: name is required", i)
		}

		// fail fast before the SDK tries to use an invalid template
		for field, text := range map[string]string{
			"name_template":     b.NameTemplate,
			"id_template":       b.IDTemplate,
			"location_template": b.LocationTemplate,
		} {
			if _, err := template.New(field).Parse(text); err != nil {
				return fmt.Errorf("banks[%d] (%s): invalid %s: %w", i, b.Name, field, err)
			}
		}

		if len(b.Dimensions) == 0 {
			return fmt.Errorf("banks[%d] (%s): at least one dimension is required", i, b.Name)
		}
		for dimName, dimValues := range b.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("banks[%d] (%s): dimension %q has no values", i, b.Name, dimName)
			}
			values := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := values[v]; exists {
					return fmt.Errorf("banks[%d] (%s): dimension %q has duplicate value %q", i, b.Name, dimName, v)
				}
				values[v] = struct{}{}
			}
		}

		if err := validateState(b.State); err != nil {
			return fmt.Errorf("banks[%d] (%s): %w", i, b.Name, err)
		}
		if err := validateReading("pressure", b.Pressure); err != nil {
			return fmt.Errorf("banks[%d] (%s): %w", i, b.Name, err)
		}
	}

	if len(c.Valves) == 0 && len(c.Banks) == 0 {
		return errors.New("at least one valve or bank must be defined")
	}

	return nil
}

// validateState accepts an empty state (online) or any known valve state.
func validateState(s string) error {
	if s == "" {
		return nil
	}
	_, err := valvedash.ParseValveState(s)
	return err
}

func validateReading(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v", field, value)
	}
	return nil
}
