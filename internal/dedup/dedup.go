// Package dedup decides whether an incoming alert is the same
// underlying condition as an already-active alert.
package dedup

import (
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

const (
	// DefaultWindow is the maximum time gap between two alerts for
	// them to still count as the same occurrence.
	DefaultWindow = time.Hour

	// DefaultThreshold is the minimum blended similarity score for a
	// fuzzy match.
	DefaultThreshold = 0.85

	titleWeight   = 0.6
	messageWeight = 0.4
)

// Options configures a Deduplicator.
type Options struct {
	Enabled   bool
	Window    time.Duration
	Threshold float64
}

// DefaultOptions returns the default deduplication settings.
func DefaultOptions() Options {
	return Options{
		Enabled:   true,
		Window:    DefaultWindow,
		Threshold: DefaultThreshold,
	}
}

// Deduplicator finds duplicates via exact fingerprint matching with a
// time-windowed fuzzy-text fallback. It is a pure query over the map
// it is given; merging is the caller's responsibility.
type Deduplicator struct {
	enabled   bool
	window    time.Duration
	threshold float64
}

// New creates a Deduplicator from options, filling zero values with
// defaults.
func New(opts Options) *Deduplicator {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	return &Deduplicator{
		enabled:   opts.Enabled,
		window:    opts.Window,
		threshold: opts.Threshold,
	}
}

// Enabled reports whether deduplication is active.
func (d *Deduplicator) Enabled() bool {
	return d.enabled
}

// FindDuplicate returns the active alert the candidate duplicates, or
// nil. The exact fingerprint path is tried first; the fuzzy path scans
// active alerts with the same source and severity inside the time
// window and scores 0.6*title + 0.4*message similarity against the
// threshold. Equal best scores break to the lexicographically smaller
// alert id so map iteration order never changes the outcome.
func (d *Deduplicator) FindDuplicate(candidate *models.Alert, active map[string]*models.Alert) *models.Alert {
	if !d.enabled {
		return nil
	}

	if existing, ok := active[candidate.Fingerprint]; ok {
		if d.withinWindow(candidate, existing) {
			return existing
		}
	}

	return d.fuzzyMatch(candidate, active)
}

func (d *Deduplicator) withinWindow(a, b *models.Alert) bool {
	diff := a.Timestamp.Sub(b.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d.window
}

func (d *Deduplicator) fuzzyMatch(candidate *models.Alert, active map[string]*models.Alert) *models.Alert {
	var best *models.Alert
	bestScore := 0.0

	for _, existing := range active {
		if existing.Source != candidate.Source || existing.Severity != candidate.Severity {
			continue
		}
		if !d.withinWindow(candidate, existing) {
			continue
		}

		score := titleWeight*similarity(candidate.Title, existing.Title) +
			messageWeight*similarity(candidate.Message, existing.Message)
		if score < d.threshold {
			continue
		}

		if best == nil || score > bestScore || (score == bestScore && existing.ID < best.ID) {
			best = existing
			bestScore = score
		}
	}

	return best
}
