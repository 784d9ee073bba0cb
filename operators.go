package valvedash

import (
	"sort"
	"strings"
)

// Operator is one entry in the operator directory.
type Operator struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Online     bool   `json:"online"`
}

// SearchOperators returns the operators whose name, email, role or
// department contains query, case-insensitively. A blank query matches all.
func SearchOperators(ops []Operator, query string) []Operator {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Operator, 0, len(ops))
	for _, op := range ops {
		if q == "" || op.matches(q) {
			out = append(out, op)
		}
	}
	return out
}

func (op Operator) matches(q string) bool {
	for _, field := range []string{op.Name, op.Email, op.Role, op.Department} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// SortOperators returns a sorted copy of ops in directory order: the
// operator whose ID or name equals current comes first, then online
// operators, then the rest. Ties are broken by name, case-insensitively.
func SortOperators(ops []Operator, current string) []Operator {
	out := make([]Operator, len(ops))
	copy(out, ops)

	isCurrent := func(op Operator) bool {
		return current != "" && (op.ID == current || op.Name == current)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ca, cb := isCurrent(a), isCurrent(b); ca != cb {
			return ca
		}
		if a.Online != b.Online {
			return a.Online
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return out
}
