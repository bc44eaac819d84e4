// internal/model/challenge.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is a phrase pair practiced until the student answers it correctly
// RequiredStreakForCompletion times in a row.
type Challenge struct {
	ChallengeID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"challenge_id"`
	LearningLanguageText        string          `gorm:"not null" json:"learning_language_text"`
	NativeLanguageText          string          `gorm:"not null" json:"native_language_text"`
	Status                      ChallengeStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CurrentStreak               int             `gorm:"not null;default:0" json:"current_streak"`
	RequiredStreakForCompletion int             `gorm:"not null" json:"required_streak_for_completion"`
	CreatorID                   uuid.UUID       `gorm:"type:uuid;not null;index" json:"creator_id"`
	StudentID                   uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	LockVersion                 int             `gorm:"not null;default:0" json:"-"`
	CreatedAt                   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt                   time.Time       `json:"updated_at"`

	Creator *User   `gorm:"foreignKey:CreatorID;references:UserID" json:"-"`
	Student *User   `gorm:"foreignKey:StudentID;references:UserID" json:"-"`
	Queries []Query `gorm:"foreignKey:ChallengeID;references:ChallengeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) StreakEnoughForCompletion() bool {
	return c.CurrentStreak >= c.RequiredStreakForCompletion
}

// CorrectAttemptsStillRequired never goes below zero.
func (c *Challenge) CorrectAttemptsStillRequired() int {
	return max(0, c.RequiredStreakForCompletion-c.CurrentStreak)
}

// PostChallengeRequest is the body of POST /challenges. StudentID defaults to
// the caller.
type PostChallengeRequest struct {
	LearningLanguageText        string     `json:"learning_language_text" validate:"required"`
	NativeLanguageText          string     `json:"native_language_text" validate:"required"`
	RequiredStreakForCompletion *int       `json:"required_streak_for_completion,omitempty" validate:"omitempty,min=1"`
	StudentID                   *uuid.UUID `json:"student_id,omitempty"`
}

// PatchChallengeRequest is the body of PATCH /challenges/{challenge_id}.
type PatchChallengeRequest struct {
	LearningLanguageText        *string `json:"learning_language_text,omitempty" validate:"omitempty,min=1"`
	NativeLanguageText          *string `json:"native_language_text,omitempty" validate:"omitempty,min=1"`
	RequiredStreakForCompletion *int    `json:"required_streak_for_completion,omitempty" validate:"omitempty,min=1"`
}

// ChallengeResponse wraps a challenge with an optional delivery failure that
// happened after it was saved.
type ChallengeResponse struct {
	Challenge     *Challenge `json:"challenge"`
	DeliveryError string     `json:"delivery_error,omitempty"`
}
