// Package collector normalizes raw heterogeneous input into Alerts.
package collector

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// Record is the raw alert shape accepted from any source, the natural
// JSON serialization for a REST binding.
type Record struct {
	Source    string         `json:"source"`
	Severity  string         `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Tags      []string       `json:"tags,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"` // ISO-8601, defaults to ingest time
}

// Collector turns raw records into normalized Alerts. By default an
// unknown severity is rejected; Lenient mode downgrades it to info
// with a warning, which is a collaborator policy the core never
// applies itself.
type Collector struct {
	lenient bool

	mu          sync.Mutex
	sourceCount map[string]int64
}

// New creates a strict collector.
func New() *Collector {
	return &Collector{sourceCount: make(map[string]int64)}
}

// NewLenient creates a collector that downgrades unknown severities to
// info instead of rejecting them.
func NewLenient() *Collector {
	c := New()
	c.lenient = true
	return c
}

// Collect normalizes one record into an Alert.
func (c *Collector) Collect(rec Record) (*models.Alert, error) {
	if rec.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if rec.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	severity, err := models.ParseSeverity(rec.Severity)
	if err != nil {
		if !c.lenient {
			return nil, fmt.Errorf("severity %q: %w", rec.Severity, err)
		}
		log.Printf("warning: invalid severity %q from %s, defaulting to info", rec.Severity, rec.Source)
		severity = models.SeverityInfo
	}

	alert := models.NewAlert(rec.Source, severity, rec.Title, rec.Message)

	if len(rec.Tags) > 0 {
		alert.Tags = rec.Tags
	}
	if len(rec.Metadata) > 0 {
		alert.Metadata = rec.Metadata
	}
	if rec.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		alert.Timestamp = ts
		alert.FirstSeen = ts
		alert.LastSeen = ts
	}

	c.mu.Lock()
	c.sourceCount[rec.Source]++
	c.mu.Unlock()

	return alert, nil
}

// SourceStats returns the per-source collection counts.
func (c *Collector) SourceStats() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int64, len(c.sourceCount))
	for source, n := range c.sourceCount {
		out[source] = n
	}
	return out
}
