package model

import "time"

const (
	RolePlayer = "player"
	RoleOwner  = "owner"
)

// Account is a registered player or turf owner. The password hash never
// leaves the repository layer in API responses.
type Account struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Role         string    `json:"role" bson:"role" validate:"required,oneof=player owner"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty"`
	Role     string `json:"role" validate:"required,oneof=player owner"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token together with the account it
// authenticates.
type AuthResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
