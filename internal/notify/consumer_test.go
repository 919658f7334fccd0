package notify

import (
	"context"
	"strings"
	"testing"

	"turfbook/pkg/kafka"
	"turfbook/pkg/logger"
)

type recordingNotifier struct {
	subjects []string
	messages []string
}

func (r *recordingNotifier) Notify(subject, message string) error {
	r.subjects = append(r.subjects, subject)
	r.messages = append(r.messages, message)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.Text,
		Service: "test",
	})
}

func TestBookingEventHandler(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewBookingEventHandler(notifier, testLogger())

	event := BookingCreatedEvent{
		BookingID: "507f1f77bcf86cd799439099",
		TurfID:    "507f1f77bcf86cd799439011",
		TurfName:  "Green Field",
		OwnerID:   "507f1f77bcf86cd799439013",
		UserName:  "Alex Player",
		Date:      "2026-09-15",
		StartTime: "10:00",
		EndTime:   "11:00",
		Price:     1200,
	}
	msg := kafka.NewMessage(event.TurfID, EventBookingCreated, "test", event)

	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("handler error = %v, want nil", err)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("notifier received %d messages, want 1", len(notifier.messages))
	}
	got := notifier.messages[0]
	for _, want := range []string{"Alex Player", "Green Field", "2026-09-15 10:00 - 11:00"} {
		if !strings.Contains(got, want) {
			t.Errorf("notification %q missing %q", got, want)
		}
	}
}

func TestBookingEventHandler_SkipsUnknownEventType(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewBookingEventHandler(notifier, testLogger())

	msg := kafka.NewMessage("key", "booking.cancelled", "test", map[string]string{"booking_id": "x"})

	if err := handler(context.Background(), msg); err != nil {
		t.Errorf("handler error = %v, want nil for unknown event type", err)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("notifier received %d messages, want none", len(notifier.messages))
	}
}

func TestBookingEventHandler_MalformedPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewBookingEventHandler(notifier, testLogger())

	msg := kafka.Message{
		Key:     "key",
		Value:   []byte("{not json"),
		Headers: map[string]string{kafka.HeaderEventType: EventBookingCreated},
	}

	if err := handler(context.Background(), msg); err == nil {
		t.Error("handler accepted a malformed payload")
	}
}
