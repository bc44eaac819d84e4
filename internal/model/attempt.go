// internal/model/attempt.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is a graded reply to a Query. Correct and ResultStatus are derived
// once at creation and never change.
type Attempt struct {
	AttemptID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	QueryID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"query_id"`
	Text         string       `gorm:"not null" json:"text"`
	Correct      bool         `gorm:"not null" json:"correct"`
	ResultStatus ResultStatus `gorm:"type:varchar(32);not null" json:"result_status"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// PostAttemptRequest is the body of POST /queries/{query_id}/attempts.
type PostAttemptRequest struct {
	Text string `json:"text" validate:"required"`
}

type AttemptResponse struct {
	Attempt       *Attempt   `json:"attempt"`
	Challenge     *Challenge `json:"challenge"`
	DeliveryError string     `json:"delivery_error,omitempty"`
}
