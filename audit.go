package valvedash

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAuditCapacity is the number of entries an [AuditLog] keeps.
const DefaultAuditCapacity = 500

// AuditResult is the outcome of an audited action.
type AuditResult string

const (
	ResultSuccess AuditResult = "success"
	ResultFailed  AuditResult = "failed"
	ResultPending AuditResult = "pending"
)

// Severity ranks how significant an audited action is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AuditEntry records a single operator or system action.
type AuditEntry struct {
	// ID is a random UUID assigned when the entry is recorded.
	ID string `json:"id"`

	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`

	// TargetID is the ID the command was addressed to. Dashboard entries
	// always set it, including for unknown IDs.
	TargetID string `json:"target_id,omitempty"`

	// Target is the display name of the thing acted on. Dashboard entries
	// use the valve name, or the requested ID when no valve has that ID.
	Target string `json:"target"`

	Result   AuditResult `json:"result"`
	Severity Severity    `json:"severity"`
	Details  string      `json:"details"`
}

// AuditFilter selects entries in [AuditLog.Entries], mirroring the audit
// screen's filter chips.
type AuditFilter string

const (
	AuditAll      AuditFilter = "all"
	AuditSuccess  AuditFilter = "success"
	AuditFailed   AuditFilter = "failed"
	AuditPending  AuditFilter = "pending"
	AuditCritical AuditFilter = "critical"
)

// ParseAuditFilter converts a string to an [AuditFilter]. An empty string
// selects [AuditAll].
func ParseAuditFilter(s string) (AuditFilter, error) {
	switch f := AuditFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return AuditAll, nil
	case AuditAll, AuditSuccess, AuditFailed, AuditPending, AuditCritical:
		return f, nil
	default:
		return "", fmt.Errorf("unknown audit filter %q (expected all, success, failed, pending, or critical)", s)
	}
}

// AuditQuery narrows the entries returned by [AuditLog.Entries].
type AuditQuery struct {
	// Filter selects by result, or by critical severity. Empty means all.
	Filter AuditFilter

	// Search matches case-insensitively against actor, action, target and
	// details. Empty matches everything.
	Search string

	// Limit caps the number of entries returned. Zero means no limit.
	Limit int
}

func (q AuditQuery) match(e AuditEntry) bool {
	switch q.Filter {
	case "", AuditAll:
	case AuditCritical:
		if e.Severity != SeverityCritical {
			return false
		}
	default:
		if e.Result != AuditResult(q.Filter) {
			return false
		}
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{e.Actor, e.Action, e.TargetID, e.Target, e.Details} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// AuditLog is a bounded, in-memory record of actions.
//
// Once full, the oldest entry is discarded for every new one. AuditLog is
// safe for concurrent use. Nothing is persisted.
type AuditLog struct {
	mu       sync.RWMutex
	entries  []AuditEntry
	capacity int
}

// NewAuditLog creates an [AuditLog] holding up to capacity entries.
// A non-positive capacity selects [DefaultAuditCapacity].
func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditLog{capacity: capacity}
}

// Record appends an entry, assigning its ID and, if unset, its timestamp,
// result and severity. Returns the stored entry.
func (l *AuditLog) Record(e AuditEntry) AuditEntry {
	e.ID = uuid.NewString()
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.Result == "" {
		e.Result = ResultSuccess
	}
	if e.Severity == "" {
		e.Severity = SeverityLow
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns matching entries, newest first. The returned slice is a
// copy.
func (l *AuditLog) Entries(q AuditQuery) []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]AuditEntry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		if !q.match(l.entries[i]) {
			continue
		}
		result = append(result, l.entries[i])
		if q.Limit > 0 && len(result) == q.Limit {
			break
		}
	}
	return result
}

// Len returns the number of stored entries.
func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
