package notify

import (
	"context"
	"fmt"

	"turfbook/pkg/kafka"
	"turfbook/pkg/logger"
)

// NewBookingEventHandler returns the message handler the notifier worker
// runs: it decodes booking events and hands each one to the notifier.
// Unknown event types are committed without action so a newer producer
// cannot wedge an older worker.
func NewBookingEventHandler(notifier Notifier, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		switch msg.EventType() {
		case EventBookingCreated:
			var event BookingCreatedEvent
			if err := msg.DecodeValue(&event); err != nil {
				return fmt.Errorf("failed to decode booking created event: %w", err)
			}
			return notifier.Notify(
				"Booking created",
				fmt.Sprintf("%s booked %s on %s (booking %s, %d)",
					event.UserName,
					event.TurfName,
					HumanTimeRange(event.Date, event.StartTime, event.EndTime),
					event.BookingID,
					event.Price,
				),
			)
		default:
			log.Warn("Skipping unknown event type", "event_type", msg.EventType(), "event_id", msg.EventID())
			return nil
		}
	}
}
