// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a learner and/or challenge author reachable by text message.
type User struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Username          string    `gorm:"uniqueIndex;not null" json:"username"`
	PhoneNumber       string    `gorm:"index;not null" json:"phone_number"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Confirmed         bool      `gorm:"not null;default:false" json:"confirmed"`
	ConfirmationToken *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	ChallengesCreated  []Challenge `gorm:"foreignKey:CreatorID;references:UserID" json:"-"`
	ChallengesAssigned []Challenge `gorm:"foreignKey:StudentID;references:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=1,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// ConfirmRequest is the body of POST /users/confirm.
type ConfirmRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Token  string    `json:"token" validate:"required"`
}

type UserResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		Confirmed:   u.Confirmed,
		CreatedAt:   u.CreatedAt,
	}
}

// RegisterResponse reports a failed confirmation text without failing the
// registration.
type RegisterResponse struct {
	User          *UserResponse `json:"user"`
	DeliveryError string        `json:"delivery_error,omitempty"`
}
