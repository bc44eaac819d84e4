// internal/model/query.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Query is one quiz prompt sent to a challenge's student.
type Query struct {
	QueryID     uuid.UUID     `gorm:"type:uuid;primaryKey" json:"query_id"`
	ChallengeID uuid.UUID     `gorm:"type:uuid;not null;index" json:"challenge_id"`
	Language    QueryLanguage `gorm:"type:varchar(32);not null" json:"language"`
	LastSentAt  time.Time     `gorm:"not null" json:"last_sent_at"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`

	Challenge *Challenge `gorm:"foreignKey:ChallengeID;references:ChallengeID" json:"challenge,omitempty"`
	Attempt   *Attempt   `gorm:"foreignKey:QueryID;references:QueryID;constraint:OnDelete:CASCADE" json:"attempt,omitempty"`
}

func (Query) TableName() string {
	return "queries"
}

// Attempted reports whether an attempt was loaded for this query.
func (q *Query) Attempted() bool {
	return q.Attempt != nil
}

// Prompt is the text message body asking the student about the challenge.
func (q *Query) Prompt(c *Challenge) string {
	if q.Language == LanguageNative {
		return fmt.Sprintf("How do you say %q?", c.NativeLanguageText)
	}
	return fmt.Sprintf("What does %q mean?", c.LearningLanguageText)
}

// QueryResponse wraps a query with an optional delivery failure.
type QueryResponse struct {
	Query         *Query `json:"query"`
	DeliveryError string `json:"delivery_error,omitempty"`
}
