// Package aggregator orchestrates the alert pipeline: ingest,
// deduplicate, persist, route and notify.
package aggregator

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/good-yellow-bee/blazealert/internal/dedup"
	"github.com/good-yellow-bee/blazealert/internal/metrics"
	"github.com/good-yellow-bee/blazealert/internal/models"
	"github.com/good-yellow-bee/blazealert/internal/routing"
	"github.com/good-yellow-bee/blazealert/internal/storage"
)

// Aggregator is the central alert aggregation engine. One instance is
// shared across however many goroutines call Ingest; a single mutex
// serializes the find-duplicate-then-merge-or-insert sequence so two
// concurrent ingests can never both decide "no duplicate" for the same
// fingerprint.
type Aggregator struct {
	mu sync.Mutex

	store        storage.AlertRepository
	deduplicator *dedup.Deduplicator
	router       *routing.Router

	// active maps fingerprint to the alert still tracked in memory
	// because it has not been resolved.
	active map[string]*models.Alert

	stats     *models.AlertStats
	callbacks []Callback
}

// New creates an aggregator with explicit dependencies. No state is
// process-global; callers hold the instance.
func New(store storage.AlertRepository, deduplicator *dedup.Deduplicator, router *routing.Router) *Aggregator {
	return &Aggregator{
		store:        store,
		deduplicator: deduplicator,
		router:       router,
		active:       make(map[string]*models.Alert),
		stats:        models.NewAlertStats(),
	}
}

// Ingest runs one alert through the pipeline and returns the record of
// truth: the existing alert when the candidate merged away, otherwise
// the candidate itself. Storage failures propagate; silently dropping
// an alert would break the durability expectation.
func (a *Aggregator) Ingest(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if alert.Fingerprint == "" {
		return nil, fmt.Errorf("ingest alert %s: empty fingerprint", alert.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deduplicator.Enabled() {
		if existing := a.deduplicator.FindDuplicate(alert, a.active); existing != nil {
			existing.MergeDuplicate(alert)
			if err := a.store.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("persist merged alert: %w", err)
			}

			a.stats.DuplicatesMerged++
			metrics.DuplicatesMerged.Inc()
			log.Printf("merged duplicate alert %s (count: %d)", existing.Fingerprint, existing.DuplicateCount)

			a.fireCallbacks(Event{Type: EventDuplicateMerged, Alert: existing})
			return existing, nil
		}
	}

	a.active[alert.Fingerprint] = alert
	if err := a.store.Create(ctx, alert); err != nil {
		delete(a.active, alert.Fingerprint)
		return nil, fmt.Errorf("persist alert: %w", err)
	}

	a.stats.Update(alert)
	metrics.AlertsIngested.WithLabelValues(string(alert.Severity), alert.Source).Inc()
	metrics.ActiveAlerts.Set(float64(len(a.active)))

	if channels := a.router.Route(alert); len(channels) > 0 {
		for _, ch := range channels {
			metrics.AlertsRouted.WithLabelValues(string(ch)).Inc()
		}
		a.fireCallbacks(Event{Type: EventAlertRouted, Alert: alert, Channels: channels})
	}

	a.fireCallbacks(Event{Type: EventAlertIngested, Alert: alert})
	log.Printf("ingested alert %s [%s] %s", alert.ID, alert.Severity, alert.Title)

	return alert, nil
}

// Acknowledge marks an alert acknowledged. An unknown id is a soft
// failure: (false, nil) plus a warning, since "already gone" is a
// normal outcome of user actions.
func (a *Aggregator) Acknowledge(ctx context.Context, id, by string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	alert, err := a.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if alert == nil {
		log.Printf("warning: alert not found: %s", id)
		return false, nil
	}

	alert.Acknowledge(by)
	if err := a.store.Update(ctx, alert); err != nil {
		return false, err
	}

	// Keep the in-memory copy in sync so future merges see the new
	// status.
	if _, ok := a.active[alert.Fingerprint]; ok {
		a.active[alert.Fingerprint] = alert
	}

	a.fireCallbacks(Event{Type: EventAlertAcknowledged, Alert: alert})
	log.Printf("acknowledged alert %s", id)
	return true, nil
}

// Resolve marks an alert resolved and removes it from the active set,
// so a future alert with the same fingerprint starts a fresh record.
func (a *Aggregator) Resolve(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	alert, err := a.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if alert == nil {
		log.Printf("warning: alert not found: %s", id)
		return false, nil
	}

	alert.Resolve()
	if err := a.store.Update(ctx, alert); err != nil {
		return false, err
	}

	delete(a.active, alert.Fingerprint)
	metrics.ActiveAlerts.Set(float64(len(a.active)))

	a.fireCallbacks(Event{Type: EventAlertResolved, Alert: alert})
	log.Printf("resolved alert %s", id)
	return true, nil
}

// GetAlerts queries the alert history.
func (a *Aggregator) GetAlerts(ctx context.Context, filter storage.QueryFilter) ([]*models.Alert, error) {
	return a.store.Query(ctx, filter)
}

// GetAlert returns a single alert, nil when not found.
func (a *Aggregator) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	return a.store.GetByID(ctx, id)
}

// GetStats returns a snapshot of the running statistics.
func (a *Aggregator) GetStats() models.StatsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.Snapshot()
}

// ActiveCount returns the number of alerts in the active set.
func (a *Aggregator) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

// AddRoutingRule appends a custom routing rule. The aggregator's lock
// guards the router's rule list against concurrent routing.
func (a *Aggregator) AddRoutingRule(rule models.RoutingRule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.AddRule(rule)
	log.Printf("added routing rule: %s", rule.Name)
}

// ReplaceRoutingRules swaps the entire rule list, used by the rules
// file hot-reload.
func (a *Aggregator) ReplaceRoutingRules(rules []models.RoutingRule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.ReplaceRules(rules)
}

// AddCallback registers an event listener.
func (a *Aggregator) AddCallback(cb Callback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// CleanupOldAlerts removes resolved alerts older than the retention
// window and returns the count removed.
func (a *Aggregator) CleanupOldAlerts(ctx context.Context, days int) (int64, error) {
	count, err := a.store.CleanupOld(ctx, days)
	if err != nil {
		return 0, err
	}
	log.Printf("cleaned up %d old alerts", count)
	return count, nil
}

// Close detaches all callbacks and drops the active set so a late
// event cannot reach an already-closed channel. The storage handle is
// owned by the caller and closed there.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = nil
	a.active = make(map[string]*models.Alert)
	metrics.ActiveAlerts.Set(0)
	log.Printf("aggregator closed")
}

// fireCallbacks invokes every registered callback in order. A panic in
// one callback must not prevent the remaining callbacks from running
// or fail the ingest that triggered them. Callers hold a.mu.
func (a *Aggregator) fireCallbacks(event Event) {
	for _, cb := range a.callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("warning: callback panic on %s: %v", event.Type, r)
				}
			}()
			cb(event)
		}()
	}
}
