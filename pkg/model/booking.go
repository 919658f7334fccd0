package model

import (
	"time"
)

// TurfSnapshot preserves the turf fields a booking was sold under. Admin
// edits to the turf after the fact must not rewrite booking history.
type TurfSnapshot struct {
	Name     string `json:"name" bson:"name"`
	Location string `json:"location" bson:"location"`
	Price    int64  `json:"price" bson:"price"`
}

// UserSnapshot preserves the requester's contact details at booking time.
type UserSnapshot struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// BookingRequest is a reservation attempt before conflict checking. UserID
// comes from the authenticated principal, never the request body.
type BookingRequest struct {
	TurfID             string `json:"turf_id" validate:"required,mongodb"`
	UserID             string `json:"-" validate:"required,mongodb"`
	Date               string `json:"date" validate:"required,calendar_date"`
	StartTime          string `json:"start_time" validate:"required,time_of_day"`
	EndTime            string `json:"end_time" validate:"required,time_of_day"`
	Price              int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	CreatePaymentOrder bool   `json:"create_payment_order,omitempty"`
}

// Booking is a committed reservation of the half-open interval
// [start_time, end_time) on a turf for one calendar day. For a fixed turf and
// date no two bookings' intervals overlap; the interval store enforces this
// at commit time. A booking is never mutated after commit except for the
// is_paid flip driven by the payment webhook.
type Booking struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TurfID      string       `json:"turf_id" bson:"turf_id" validate:"required,mongodb"`
	UserID      string       `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Date        string       `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime   string       `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	EndTime     string       `json:"end_time" bson:"end_time" validate:"required,time_of_day"`
	Price       int64        `json:"price" bson:"price" validate:"omitempty,min=0"`
	IsPaid      bool         `json:"is_paid" bson:"is_paid"`
	TurfDetails TurfSnapshot `json:"turf_details" bson:"turf_details"`
	UserDetails UserSnapshot `json:"user_details" bson:"user_details"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}
