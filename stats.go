package valvedash

import (
	"math"

	"github.com/auspowercell/valvedash/status"
)

const (
	// mediumOfflineShare is the largest offline share still rated medium.
	mediumOfflineShare = 0.2

	// mediumMaxAlerts is the largest alert count still rated medium.
	mediumMaxAlerts = 1
)

// Stats summarises a set of valves for the dashboard header cards.
type Stats struct {
	Total       int     `json:"total"`
	Online      int     `json:"online"`
	Active      int     `json:"active"`
	Alerts      int     `json:"alerts"`
	AvgPressure float64 `json:"avg_pressure"`
}

// ComputeStats summarises valves. AvgPressure is the mean pressure of all
// valves, rounded to one decimal place, or 0 for an empty slice.
func ComputeStats(valves []Valve) Stats {
	s := Stats{Total: len(valves)}
	var pressure float64
	for _, v := range valves {
		if v.Online() {
			s.Online++
		}
		if v.active {
			s.Active++
		}
		if v.hasAlert {
			s.Alerts++
		}
		pressure += v.pressure
	}
	if s.Total > 0 {
		s.AvgPressure = math.Round(pressure/float64(s.Total)*10) / 10
	}
	return s
}

// DeriveHealth rates the fleet for the status bar.
//
// Every valve that is not online counts as offline, maintenance included.
//
//   - good: nothing offline and no alerts (also an empty fleet)
//   - medium: at most 20% offline and at most one alert
//   - bad: anything worse
func DeriveHealth(valves []Valve) status.Health {
	s := ComputeStats(valves)
	offline := s.Total - s.Online

	switch {
	case offline == 0 && s.Alerts == 0:
		return status.HealthGood
	case float64(offline)/float64(s.Total) <= mediumOfflineShare && s.Alerts <= mediumMaxAlerts:
		return status.HealthMedium
	default:
		return status.HealthBad
	}
}
