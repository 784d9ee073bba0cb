package status

import "fmt"

// Health represents the aggregate health indicator of the system.
//
// Health is a string type holding one of three predefined values:
// [HealthGood], [HealthMedium] or [HealthBad]. The zero value is not a valid
// health; use [ParseHealth] when reading values from outside the program.
type Health string

const (
	// HealthGood indicates every valve is online with no alerts.
	HealthGood Health = "good"

	// HealthMedium indicates a small share of valves are offline or alerting.
	HealthMedium Health = "medium"

	// HealthBad indicates widespread outages or multiple alerts.
	HealthBad Health = "bad"
)

// String returns the string representation of the health value.
func (h Health) String() string {
	return string(h)
}

// Valid reports whether h is one of the three enumerated values.
func (h Health) Valid() bool {
	switch h {
	case HealthGood, HealthMedium, HealthBad:
		return true
	default:
		return false
	}
}

// ParseHealth converts a string to a [Health], rejecting unknown values.
func ParseHealth(s string) (Health, error) {
	h := Health(s)
	if !h.Valid() {
		return "", fmt.Errorf("invalid health %q (expected good, medium, or bad)", s)
	}
	return h, nil
}
