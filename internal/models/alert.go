package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Severity represents alert severity level, ordered from least to most
// urgent: debug < info < warning < error < critical.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Severities lists all severities in ascending order.
var Severities = []Severity{
	SeverityDebug,
	SeverityInfo,
	SeverityWarning,
	SeverityError,
	SeverityCritical,
}

// ErrUnknownSeverity is returned when a severity string is not one of
// the five known levels.
var ErrUnknownSeverity = errors.New("unknown severity")

// ErrUnknownStatus is returned when a status string is not one of the
// five known lifecycle states.
var ErrUnknownStatus = errors.New("unknown status")

// Rank returns the ordering of a severity (debug=0 .. critical=4).
// Unknown severities rank below debug.
func (s Severity) Rank() int {
	switch s {
	case SeverityDebug:
		return 0
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityCritical:
		return 4
	default:
		return -1
	}
}

// ParseSeverity converts a string to Severity. Unknown strings are
// rejected rather than defaulted; lenient normalization is a collector
// policy, not a model concern.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return Severity(s), nil
	default:
		return "", ErrUnknownSeverity
	}
}

// Status represents alert lifecycle status.
type Status string

const (
	StatusNew          Status = "new"
	StatusAcknowledged Status = "acknowledged"
	StatusInProgress   Status = "in_progress"
	StatusResolved     Status = "resolved"
	StatusDismissed    Status = "dismissed"
)

// Statuses lists all lifecycle statuses.
var Statuses = []Status{
	StatusNew,
	StatusAcknowledged,
	StatusInProgress,
	StatusResolved,
	StatusDismissed,
}

// ParseStatus converts a string to Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusAcknowledged, StatusInProgress, StatusResolved, StatusDismissed:
		return Status(s), nil
	default:
		return "", ErrUnknownStatus
	}
}

// ChannelType identifies a delivery channel.
type ChannelType string

const (
	ChannelConsole ChannelType = "console"
	ChannelFile    ChannelType = "file"
	ChannelWebhook ChannelType = "webhook"
	ChannelEmail   ChannelType = "email"
)

// AllChannels lists every known delivery channel.
var AllChannels = []ChannelType{ChannelConsole, ChannelFile, ChannelWebhook, ChannelEmail}

// Alert is the core alert model: a single normalized alert from any
// source. Content fields (Source, Severity, Title, Message) are
// immutable after creation; the aggregator is the sole mutator of
// lifecycle fields.
type Alert struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`

	Status   Status         `json:"status"`
	Tags     []string       `json:"tags"`
	Metadata map[string]any `json:"metadata"`

	// Deduplication fields. Fingerprint is stable for the life of the
	// alert; DuplicateCount starts at 1 and grows as duplicates merge.
	Fingerprint    string    `json:"fingerprint"`
	DuplicateCount int       `json:"duplicate_count"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`

	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
}

// NewAlert creates a normalized Alert with a generated id, defaulted
// first/last seen timestamps and a computed fingerprint.
func NewAlert(source string, severity Severity, title, message string) *Alert {
	now := time.Now().UTC()
	a := &Alert{
		ID:             uuid.New().String(),
		Source:         source,
		Severity:       severity,
		Title:          title,
		Message:        message,
		Timestamp:      now,
		Status:         StatusNew,
		Tags:           []string{},
		Metadata:       map[string]any{},
		DuplicateCount: 1,
		FirstSeen:      now,
		LastSeen:       now,
	}
	a.Fingerprint = a.ComputeFingerprint()
	return a
}

// fingerprintTuple is the canonical identity of an alert. Fields are
// declared in sorted key order so the serialized form never depends on
// declaration order elsewhere.
type fingerprintTuple struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Title    string `json:"title"`
}

// ComputeFingerprint derives the deduplication hash from the canonical
// (source, severity, title, message) tuple. Timestamps, tags and
// metadata never participate.
func (a *Alert) ComputeFingerprint() string {
	canonical, _ := json.Marshal(fingerprintTuple{
		Message:  a.Message,
		Severity: string(a.Severity),
		Source:   a.Source,
		Title:    a.Title,
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:16]
}

// MergeDuplicate folds another occurrence of the same condition into
// this alert: the duplicate counter grows, LastSeen extends to the
// later of the two timestamps and metadata keys not already present
// are adopted. The duplicate itself is discarded by the caller.
func (a *Alert) MergeDuplicate(other *Alert) {
	a.DuplicateCount++
	if other.Timestamp.After(a.LastSeen) {
		a.LastSeen = other.Timestamp
	}
	if a.Metadata == nil && len(other.Metadata) > 0 {
		a.Metadata = map[string]any{}
	}
	for key, value := range other.Metadata {
		if _, ok := a.Metadata[key]; !ok {
			a.Metadata[key] = value
		}
	}
}

// Acknowledge marks the alert acknowledged, optionally recording who.
func (a *Alert) Acknowledge(by string) {
	now := time.Now().UTC()
	a.Status = StatusAcknowledged
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = by
}

// Resolve marks the alert resolved.
func (a *Alert) Resolve() {
	now := time.Now().UTC()
	a.Status = StatusResolved
	a.ResolvedAt = &now
}

// Dismiss marks the alert dismissed.
func (a *Alert) Dismiss() {
	a.Status = StatusDismissed
}
