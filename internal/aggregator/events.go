package aggregator

import "github.com/good-yellow-bee/blazealert/internal/models"

// EventType names a lifecycle event emitted by the aggregator.
type EventType string

const (
	EventAlertIngested     EventType = "alert_ingested"
	EventDuplicateMerged   EventType = "duplicate_merged"
	EventAlertRouted       EventType = "alert_routed"
	EventAlertAcknowledged EventType = "alert_acknowledged"
	EventAlertResolved     EventType = "alert_resolved"
)

// Event carries an alert and, for alert_routed, the target channel
// set. The aggregator never delivers to channels itself; subscribers
// own delivery.
type Event struct {
	Type     EventType
	Alert    *models.Alert
	Channels []models.ChannelType
}

// Callback receives aggregator events. Callbacks run synchronously and
// in registration order; a panic in one is recovered and logged
// without interrupting the others.
type Callback func(Event)
