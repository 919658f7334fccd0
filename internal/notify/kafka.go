package notify

import (
	"context"
	"fmt"

	"turfbook/pkg/config"
	"turfbook/pkg/kafka"
	"turfbook/pkg/model"
)

const eventSource = "turfbook-api"

// KafkaOwnerNotifier publishes booking events to the owner notification
// topic. Messages are keyed by turf ID so events for one turf stay ordered.
type KafkaOwnerNotifier struct {
	producer *kafka.Producer
	cfg      *config.Config
}

func NewKafkaOwnerNotifier(cfg *config.Config) (*KafkaOwnerNotifier, error) {
	producer, err := kafka.NewProducer(kafka.DefaultConfig(cfg.KafkaBrokers), cfg.BookingEventTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking event producer: %w", err)
	}

	return &KafkaOwnerNotifier{producer: producer, cfg: cfg}, nil
}

func (n *KafkaOwnerNotifier) BookingCreated(ctx context.Context, booking *model.Booking, ownerID string) error {
	event := BookingCreatedEvent{
		BookingID: booking.ID,
		TurfID:    booking.TurfID,
		TurfName:  booking.TurfDetails.Name,
		OwnerID:   ownerID,
		UserName:  booking.UserDetails.Name,
		UserPhone: booking.UserDetails.Phone,
		Date:      booking.Date,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Price:     booking.Price,
	}

	msg := kafka.NewMessage(booking.TurfID, EventBookingCreated, eventSource, event)
	if err := n.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish booking created event: %w", err)
	}
	return nil
}

func (n *KafkaOwnerNotifier) Close() error {
	return n.producer.Close()
}
