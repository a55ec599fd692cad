package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

func TestCollect(t *testing.T) {
	c := New()

	alert, err := c.Collect(Record{
		Source:   "db",
		Severity: "error",
		Title:    "connection lost",
		Message:  "timeout after 5s",
		Tags:     []string{"prod"},
		Metadata: map[string]any{"host": "db-1"},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if alert.ID == "" || alert.Fingerprint == "" {
		t.Error("id and fingerprint must be generated")
	}
	if alert.Severity != models.SeverityError {
		t.Errorf("severity = %s", alert.Severity)
	}
	if alert.Status != models.StatusNew {
		t.Errorf("status = %s, want new", alert.Status)
	}
	if !alert.FirstSeen.Equal(alert.Timestamp) || !alert.LastSeen.Equal(alert.Timestamp) {
		t.Error("first/last seen should default to the alert timestamp")
	}
}

func TestCollectExplicitTimestamp(t *testing.T) {
	c := New()

	alert, err := c.Collect(Record{
		Source:    "db",
		Severity:  "warning",
		Title:     "slow query",
		Message:   "2.3s",
		Timestamp: "2026-08-30T10:15:00Z",
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
	if !alert.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", alert.Timestamp, want)
	}
	if !alert.FirstSeen.Equal(want) {
		t.Errorf("first_seen = %v, want %v", alert.FirstSeen, want)
	}
}

func TestCollectValidation(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		rec  Record
	}{
		{"missing source", Record{Severity: "error", Title: "t"}},
		{"missing title", Record{Source: "db", Severity: "error"}},
		{"unknown severity", Record{Source: "db", Severity: "fatal", Title: "t"}},
		{"bad timestamp", Record{Source: "db", Severity: "error", Title: "t", Timestamp: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Collect(tt.rec); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStrictRejectsUnknownSeverityTyped(t *testing.T) {
	c := New()

	_, err := c.Collect(Record{Source: "db", Severity: "fatal", Title: "t"})
	if !errors.Is(err, models.ErrUnknownSeverity) {
		t.Errorf("error = %v, want ErrUnknownSeverity", err)
	}
}

func TestLenientDowngradesUnknownSeverity(t *testing.T) {
	c := NewLenient()

	alert, err := c.Collect(Record{Source: "db", Severity: "fatal", Title: "t"})
	if err != nil {
		t.Fatalf("lenient collect: %v", err)
	}
	if alert.Severity != models.SeverityInfo {
		t.Errorf("severity = %s, want info downgrade", alert.Severity)
	}
}

func TestSourceStats(t *testing.T) {
	c := New()

	for i := 0; i < 3; i++ {
		if _, err := c.Collect(Record{Source: "db", Severity: "info", Title: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.Collect(Record{Source: "api", Severity: "info", Title: "t"}); err != nil {
		t.Fatal(err)
	}

	stats := c.SourceStats()
	if stats["db"] != 3 || stats["api"] != 1 {
		t.Errorf("source stats = %v", stats)
	}
}
