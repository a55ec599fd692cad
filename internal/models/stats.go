package models

// AlertStats holds cumulative counters for ingested alerts. Counters
// are updated exactly once per uniquely ingested alert; duplicate
// merges only increment DuplicatesMerged. Not safe for concurrent use;
// the aggregator's lock guards it.
type AlertStats struct {
	TotalAlerts      int64
	BySeverity       map[Severity]int64
	ByStatus         map[Status]int64
	BySource         map[string]int64
	DuplicatesMerged int64
}

// NewAlertStats creates stats with every severity and status counter
// present at zero.
func NewAlertStats() *AlertStats {
	s := &AlertStats{
		BySeverity: make(map[Severity]int64, len(Severities)),
		ByStatus:   make(map[Status]int64, len(Statuses)),
		BySource:   make(map[string]int64),
	}
	for _, sev := range Severities {
		s.BySeverity[sev] = 0
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	return s
}

// Update records a uniquely ingested alert.
func (s *AlertStats) Update(alert *Alert) {
	s.TotalAlerts++
	s.BySeverity[alert.Severity]++
	s.ByStatus[alert.Status]++
	s.BySource[alert.Source]++
}

// StatsSnapshot is an immutable copy of AlertStats for reporting, with
// the derived deduplication rate included.
type StatsSnapshot struct {
	TotalAlerts      int64            `json:"total_alerts"`
	BySeverity       map[string]int64 `json:"by_severity"`
	ByStatus         map[string]int64 `json:"by_status"`
	BySource         map[string]int64 `json:"by_source"`
	DuplicatesMerged int64            `json:"duplicates_merged"`

	// DeduplicationRate is duplicates_merged / total_alerts, 0 when no
	// alerts have been ingested.
	DeduplicationRate float64 `json:"deduplication_rate"`
}

// Snapshot copies the counters into a StatsSnapshot.
func (s *AlertStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		TotalAlerts:      s.TotalAlerts,
		BySeverity:       make(map[string]int64, len(s.BySeverity)),
		ByStatus:         make(map[string]int64, len(s.ByStatus)),
		BySource:         make(map[string]int64, len(s.BySource)),
		DuplicatesMerged: s.DuplicatesMerged,
	}
	for sev, n := range s.BySeverity {
		snap.BySeverity[string(sev)] = n
	}
	for st, n := range s.ByStatus {
		snap.ByStatus[string(st)] = n
	}
	for src, n := range s.BySource {
		snap.BySource[src] = n
	}
	if s.TotalAlerts > 0 {
		snap.DeduplicationRate = float64(s.DuplicatesMerged) / float64(s.TotalAlerts)
	}
	return snap
}
