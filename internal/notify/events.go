package notify

// Event types carried in the event-type message header.
const (
	EventBookingCreated = "booking.created"
)

// BookingCreatedEvent carries enough for a notification message without a
// store lookup on the consumer side.
type BookingCreatedEvent struct {
	BookingID string `json:"booking_id"`
	TurfID    string `json:"turf_id"`
	TurfName  string `json:"turf_name"`
	OwnerID   string `json:"owner_id"`
	UserName  string `json:"user_name"`
	UserPhone string `json:"user_phone,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Price     int64  `json:"price"`
}
