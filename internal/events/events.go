package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingDeleted       = "booking_deleted"
	EventBookingBrandAttached = "booking_brand_attached"
	// EventBookingBrandRenamed is sent per booking when its brand's name changes.
	EventBookingBrandRenamed = "booking_brand_renamed"
)

var bookingEventTypes = []string{
	EventBookingCreated, EventBookingDeleted, EventBookingBrandAttached, EventBookingBrandRenamed,
}

// BookingEventPayload is the booking snapshot sent to event consumers.
type BookingEventPayload struct {
	BookingID  int64     `json:"booking_id"`
	CustomerID int64     `json:"customer_id,omitempty"`
	BrandID    *int64    `json:"brand_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	now         func() time.Time
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), now: time.Now}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers handler for every booking event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, t := range bookingEventTypes {
		b.Subscribe(t, handler)
	}
}

// Publish runs every subscriber synchronously. All handlers run even if one
// fails; their errors are joined.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = b.now().UTC()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a no-op.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	ev, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	ev.CreatedAt = b.now().UTC()
	return b.Publish(&ev)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now().UTC()}, nil
}
