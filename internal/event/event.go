package event

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Type identifies an outbound booking event.
type Type string

const (
	TypeBookingCreated     Type = "booking.created"
	TypeBookingConfirmed   Type = "booking.confirmed"
	TypeBookingCancelled   Type = "booking.cancelled"
	TypeBookingCompleted   Type = "booking.completed"
	TypeBookingNoShow      Type = "booking.no_show"
	TypeBookingRescheduled Type = "booking.rescheduled"
)

// Event is the payload published to external collaborators (notification,
// invoicing, search indexing). Delivery guarantees are the dispatcher's
// responsibility; the core only emits.
type Event struct {
	Type        Type      `json:"type"`
	BookingID   string    `json:"booking_id"`
	ResourceID  string    `json:"resource_id"`
	RequesterID string    `json:"requester_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Emitter publishes events. Emission failure must never roll back the
// booking operation that produced the event.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

// LogEmitter writes events to the application log. It is the default when no
// task queue is configured and is useful in development and tests.
type LogEmitter struct {
	logger *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(_ context.Context, ev Event) error {
	e.logger.Info("booking event",
		zap.String("type", string(ev.Type)),
		zap.String("booking_id", ev.BookingID),
		zap.String("resource_id", ev.ResourceID),
		zap.String("requester_id", ev.RequesterID),
		zap.Time("start_time", ev.StartTime),
		zap.Time("end_time", ev.EndTime))
	return nil
}
