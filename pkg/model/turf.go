package model

import "time"

// Turf is a bookable facility. Owned by exactly one owner; immutable once
// created except through explicit admin edits.
type Turf struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location  string    `json:"location" bson:"location" validate:"required,min=2,max=100"`
	Price     int64     `json:"price" bson:"price" validate:"required,min=1"`
	OpenTime  string    `json:"open_time" bson:"open_time" validate:"required,time_of_day"`
	CloseTime string    `json:"close_time" bson:"close_time" validate:"required,time_of_day"`
	OwnerID   string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TurfUpdate struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location  string `json:"location,omitempty" validate:"omitempty,min=2,max=100"`
	Price     *int64 `json:"price,omitempty" validate:"omitempty,min=1"`
	OpenTime  string `json:"open_time,omitempty" validate:"omitempty,time_of_day"`
	CloseTime string `json:"close_time,omitempty" validate:"omitempty,time_of_day"`
}
