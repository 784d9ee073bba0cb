package valvedash

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// fuzzyMinQueryLen is the shortest query that is matched approximately.
// Shorter queries only match by substring.
const fuzzyMinQueryLen = 4

// Filter selects a subset of valves, mirroring the dashboard's filter chips.
type Filter string

const (
	// FilterAll keeps every valve.
	FilterAll Filter = "all"

	// FilterOnline keeps valves that are online.
	FilterOnline Filter = "online"

	// FilterOffline keeps valves that are offline. Valves under maintenance
	// are neither online nor offline.
	FilterOffline Filter = "offline"

	// FilterError keeps valves with an open alert.
	FilterError Filter = "error"

	// FilterOn keeps valves that are switched on.
	FilterOn Filter = "on"

	// FilterOff keeps valves that are switched off.
	FilterOff Filter = "off"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterOnline, FilterOffline, FilterError, FilterOn, FilterOff}

// String returns the string representation of the filter.
func (f Filter) String() string {
	return string(f)
}

// ParseFilter converts a string to a [Filter]. An empty string selects
// [FilterAll].
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (expected all, online, offline, error, on, or off)", s)
}

// Match reports whether v passes the filter. Unknown filters match nothing.
func (f Filter) Match(v Valve) bool {
	switch f {
	case FilterAll:
		return true
	case FilterOnline:
		return v.state == StateOnline
	case FilterOffline:
		return v.state == StateOffline
	case FilterError:
		return v.hasAlert
	case FilterOn:
		return v.active
	case FilterOff:
		return !v.active
	default:
		return false
	}
}

// Apply returns the valves that pass the filter, preserving order.
// The input slice is not modified.
func (f Filter) Apply(valves []Valve) []Valve {
	result := make([]Valve, 0, len(valves))
	for _, v := range valves {
		if f.Match(v) {
			result = append(result, v)
		}
	}
	return result
}

// CountByFilter returns how many valves each filter would keep.
func CountByFilter(valves []Valve) map[Filter]int {
	counts := make(map[Filter]int, len(Filters))
	for _, f := range Filters {
		counts[f] = 0
	}
	for _, v := range valves {
		for _, f := range Filters {
			if f.Match(v) {
				counts[f]++
			}
		}
	}
	return counts
}

// Search returns the valves whose name or location matches query,
// preserving order.
//
// Matching is case-insensitive. A valve matches when the query is a
// substring of its name or location or its ID equals the query. Queries of
// four or more characters also match any single word within one edit
// (Levenshtein distance), so "irigation" still finds "Irrigation Zone A1".
// A blank query returns every valve.
func Search(valves []Valve, query string) []Valve {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		result := make([]Valve, len(valves))
		copy(result, valves)
		return result
	}

	result := make([]Valve, 0, len(valves))
	for _, v := range valves {
		if matchesQuery(v, q) {
			result = append(result, v)
		}
	}
	return result
}

// matchesQuery reports whether v matches an already lower-cased query.
func matchesQuery(v Valve, q string) bool {
	name := strings.ToLower(v.name)
	location := strings.ToLower(v.location)

	if strings.Contains(name, q) || strings.Contains(location, q) || strings.ToLower(v.id) == q {
		return true
	}

	if utf8.RuneCountInString(q) < fuzzyMinQueryLen {
		return false
	}

	for _, word := range strings.FieldsFunc(name+" "+location, isWordSeparator) {
		if levenshtein.ComputeDistance(word, q) <= 1 {
			return true
		}
	}
	return false
}

func isWordSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '-' || r == '/' || r == '(' || r == ')'
}
