package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		t.Fatalf("migrate database: %v", err)
	}

	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrateIdempotent(t *testing.T) {
	store := setupTestDB(t)

	// Running migrations again must be a no-op.
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alert := models.NewAlert("db", models.SeverityError, "connection lost", "timeout after 5s")
	alert.Tags = []string{"prod"}
	alert.Metadata["host"] = "db-1"

	if err := store.Alerts().Create(ctx, alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("alert not found after create")
	}
	if got.Source != "db" || got.Severity != models.SeverityError || got.Title != "connection lost" {
		t.Errorf("content fields mismatch: %+v", got)
	}
	if got.Fingerprint != alert.Fingerprint {
		t.Errorf("fingerprint = %s, want %s", got.Fingerprint, alert.Fingerprint)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "prod" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Metadata["host"] != "db-1" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	if got.DuplicateCount != 1 {
		t.Errorf("duplicate_count = %d, want 1", got.DuplicateCount)
	}
	if got.AcknowledgedAt != nil || got.ResolvedAt != nil {
		t.Errorf("optional timestamps should be nil: %+v", got)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := setupTestDB(t)

	got, err := store.Alerts().GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestCreateDuplicateID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alert := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	if err := store.Alerts().Create(ctx, alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.Alerts().Create(ctx, alert)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second create error = %v, want ErrDuplicateID", err)
	}
}

func TestUpdateMutableFieldsOnly(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alert := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	if err := store.Alerts().Create(ctx, alert); err != nil {
		t.Fatalf("create: %v", err)
	}

	alert.Acknowledge("oncall")
	alert.DuplicateCount = 3
	alert.Metadata["region"] = "eu-1"
	// Content mutation must not be persisted.
	alert.Title = "rewritten"

	if err := store.Alerts().Update(ctx, alert); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusAcknowledged || got.AcknowledgedBy != "oncall" || got.AcknowledgedAt == nil {
		t.Errorf("lifecycle fields not updated: %+v", got)
	}
	if got.DuplicateCount != 3 {
		t.Errorf("duplicate_count = %d, want 3", got.DuplicateCount)
	}
	if got.Metadata["region"] != "eu-1" {
		t.Errorf("metadata not updated: %v", got.Metadata)
	}
	if got.Title != "connection lost" {
		t.Errorf("title was rewritten to %q; content fields are immutable", got.Title)
	}
}

func TestUpdateMissingAlert(t *testing.T) {
	store := setupTestDB(t)

	alert := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	if err := store.Alerts().Update(context.Background(), alert); err == nil {
		t.Error("update of missing alert should fail")
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	seed := []*models.Alert{
		models.NewAlert("db", models.SeverityError, "a", "m1"),
		models.NewAlert("db", models.SeverityCritical, "b", "m2"),
		models.NewAlert("api", models.SeverityError, "c", "m3"),
	}
	seed[2].Resolve()
	for i, a := range seed {
		// Spread timestamps to make ordering observable.
		a.Timestamp = a.Timestamp.Add(time.Duration(i) * time.Minute)
		if err := store.Alerts().Create(ctx, a); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"no filter", QueryFilter{}, 3},
		{"by severity", QueryFilter{Severity: models.SeverityError}, 2},
		{"by status", QueryFilter{Status: models.StatusResolved}, 1},
		{"by source", QueryFilter{Source: "db"}, 2},
		{"combined", QueryFilter{Severity: models.SeverityError, Source: "db"}, 1},
		{"limit", QueryFilter{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Alerts().Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d alerts, want %d", len(got), tt.want)
			}
		})
	}

	// Most recent first.
	all, err := store.Alerts().Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Errorf("results not ordered most recent first")
		}
	}
}

func TestCleanupOld(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	old := models.NewAlert("db", models.SeverityError, "stale resolved", "m")
	old.Status = models.StatusResolved
	oldResolved := time.Now().AddDate(0, 0, -40)
	old.ResolvedAt = &oldResolved

	fresh := models.NewAlert("db", models.SeverityError, "fresh resolved", "m2")
	fresh.Resolve()

	active := models.NewAlert("db", models.SeverityError, "stale but active", "m3")
	active.Timestamp = time.Now().AddDate(0, 0, -40)

	for _, a := range []*models.Alert{old, fresh, active} {
		if err := store.Alerts().Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	count, err := store.Alerts().CleanupOld(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if count != 1 {
		t.Errorf("cleanup removed %d, want 1", count)
	}

	// Old resolved alert is gone; unresolved alerts are never aged out.
	if got, _ := store.Alerts().GetByID(ctx, old.ID); got != nil {
		t.Error("stale resolved alert should be removed")
	}
	if got, _ := store.Alerts().GetByID(ctx, active.ID); got == nil {
		t.Error("active alert should never be auto-deleted")
	}
	if got, _ := store.Alerts().GetByID(ctx, fresh.ID); got == nil {
		t.Error("recently resolved alert should be retained")
	}
}
