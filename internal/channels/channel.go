// Package channels implements the delivery-channel collaborators that
// consume routed alerts. The aggregation core never performs delivery
// I/O itself; the dispatcher here subscribes to its event stream.
package channels

import (
	"context"
	"log"
	"sync"

	"github.com/good-yellow-bee/blazealert/internal/aggregator"
	"github.com/good-yellow-bee/blazealert/internal/metrics"
	"github.com/good-yellow-bee/blazealert/internal/models"
)

// Channel is the interface for all delivery channels.
type Channel interface {
	// Type returns the channel identifier (console, file, webhook, email).
	Type() models.ChannelType
	// Send delivers one alert.
	Send(ctx context.Context, alert *models.Alert) error
	// Close releases any resources.
	Close() error
}

// Dispatcher fans routed alerts out to registered channels. Delivery
// failures are logged and counted, never propagated back into the
// ingest pipeline.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[models.ChannelType]Channel
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{channels: make(map[models.ChannelType]Channel)}
}

// Register adds a channel to the dispatcher.
func (d *Dispatcher) Register(ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[ch.Type()] = ch
}

// Get returns a channel by type.
func (d *Dispatcher) Get(t models.ChannelType) (Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[t]
	return ch, ok
}

// Dispatch delivers an alert to each target channel that is
// registered; unregistered targets are skipped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *models.Alert, targets []models.ChannelType) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, target := range targets {
		ch, ok := d.channels[target]
		if !ok {
			continue
		}
		if err := ch.Send(ctx, alert); err != nil {
			metrics.DeliveryErrors.WithLabelValues(string(target)).Inc()
			log.Printf("warning: deliver alert %s to %s: %v", alert.ID, target, err)
		}
	}
}

// Callback adapts the dispatcher into an aggregator event listener for
// alert_routed events.
func (d *Dispatcher) Callback(ctx context.Context) aggregator.Callback {
	return func(event aggregator.Event) {
		if event.Type != aggregator.EventAlertRouted {
			return
		}
		d.Dispatch(ctx, event.Alert, event.Channels)
	}
}

// Close closes all registered channels.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, ch := range d.channels {
		if err := ch.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
