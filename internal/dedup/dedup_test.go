package dedup

import (
	"testing"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

func activeMap(alerts ...*models.Alert) map[string]*models.Alert {
	m := make(map[string]*models.Alert, len(alerts))
	for _, a := range alerts {
		m[a.Fingerprint] = a
	}
	return m
}

func TestFindDuplicateExact(t *testing.T) {
	d := New(DefaultOptions())

	existing := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	candidate := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")

	got := d.FindDuplicate(candidate, activeMap(existing))
	if got != existing {
		t.Fatal("exact fingerprint match within window should be returned")
	}
}

func TestFindDuplicateDisabled(t *testing.T) {
	d := New(Options{Enabled: false})

	existing := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	candidate := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")

	if got := d.FindDuplicate(candidate, activeMap(existing)); got != nil {
		t.Errorf("disabled deduplicator returned %v, want nil", got)
	}
}

func TestFindDuplicateEmptyActive(t *testing.T) {
	d := New(DefaultOptions())
	candidate := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")

	if got := d.FindDuplicate(candidate, map[string]*models.Alert{}); got != nil {
		t.Errorf("empty active map returned %v, want nil", got)
	}
}

func TestFindDuplicateWindowBoundary(t *testing.T) {
	d := New(Options{Enabled: true, Window: time.Hour, Threshold: 0.85})

	existing := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")

	tests := []struct {
		name string
		gap  time.Duration
		want bool
	}{
		{"inside window", 30 * time.Minute, true},
		{"exactly at window", time.Hour, true},
		{"beyond window", time.Hour + time.Second, false},
		{"candidate older than existing", -30 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
			candidate.Timestamp = existing.Timestamp.Add(tt.gap)

			got := d.FindDuplicate(candidate, activeMap(existing))
			if (got != nil) != tt.want {
				t.Errorf("FindDuplicate with %v gap = %v, want match %v", tt.gap, got, tt.want)
			}
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	d := New(DefaultOptions())

	existing := models.NewAlert("db", models.SeverityError, "connection lost to replica", "timeout after 5s on replica-1")
	active := activeMap(existing)

	tests := []struct {
		name      string
		candidate *models.Alert
		want      bool
	}{
		{
			name:      "near-identical text",
			candidate: models.NewAlert("db", models.SeverityError, "connection lost to replica", "timeout after 6s on replica-1"),
			want:      true,
		},
		{
			name:      "different source never fuzzy-matches",
			candidate: models.NewAlert("cache", models.SeverityError, "connection lost to replica", "timeout after 6s on replica-1"),
			want:      false,
		},
		{
			name:      "different severity never fuzzy-matches",
			candidate: models.NewAlert("db", models.SeverityWarning, "connection lost to replica", "timeout after 6s on replica-1"),
			want:      false,
		},
		{
			name:      "unrelated text below threshold",
			candidate: models.NewAlert("db", models.SeverityError, "disk almost full", "87% used on /var"),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.FindDuplicate(tt.candidate, active)
			if (got != nil) != tt.want {
				t.Errorf("FindDuplicate = %v, want match %v", got, tt.want)
			}
		})
	}
}

func TestFuzzyMatchPicksBestScore(t *testing.T) {
	d := New(DefaultOptions())

	close1 := models.NewAlert("db", models.SeverityError, "connection lost to replica", "timeout after 5s")
	closer := models.NewAlert("db", models.SeverityError, "connection lost to primary db", "timeout after 9s")

	candidate := models.NewAlert("db", models.SeverityError, "connection lost to primary db", "timeout after 8s")

	got := d.FindDuplicate(candidate, activeMap(close1, closer))
	if got != closer {
		t.Errorf("FindDuplicate = %v, want the higher-scoring alert", got)
	}
}

func TestFuzzyMatchTieBreaksOnID(t *testing.T) {
	d := New(DefaultOptions())

	// Two active alerts with identical text score identically against
	// the candidate; the smaller id must win regardless of map
	// iteration order. Their fingerprints collide, so key the map
	// manually to hold both.
	a := models.NewAlert("db", models.SeverityError, "connection lost", "timeout after 5s")
	b := models.NewAlert("db", models.SeverityError, "connection lost", "timeout after 5s")
	a.ID = "aaaa"
	b.ID = "bbbb"

	candidate := models.NewAlert("db", models.SeverityError, "connection lost!", "timeout after 5s")

	active := map[string]*models.Alert{"fp-a": a, "fp-b": b}

	for i := 0; i < 20; i++ {
		if got := d.FindDuplicate(candidate, active); got != a {
			t.Fatalf("tie-break returned %v, want id %q", got, a.ID)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"abc", "abc", 1.0},
		{"abcd", "wxyz", 0.0},
	}

	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}

	// Partial overlap lands strictly between 0 and 1.
	got := similarity("connection lost", "connection reset")
	if got <= 0 || got >= 1 {
		t.Errorf("similarity for partial overlap = %f, want in (0,1)", got)
	}
}
