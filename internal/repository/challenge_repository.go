//go:generate mockery --name ChallengeRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeRepository persists challenges. Methods taking tx expect to run
// inside the caller's lifecycle transaction.
type ChallengeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error
	FindByID(ctx context.Context, db *gorm.DB, challengeID uuid.UUID) (*model.Challenge, error)
	List(ctx context.Context, db *gorm.DB, status *model.ChallengeStatus) ([]*model.Challenge, error)
	Update(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID, updates map[string]interface{}) error
	// UpdateProgress bumps lock_version on success.
	UpdateProgress(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error
	Delete(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) error
	// CountActive must be read in the same transaction as the write it guards.
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
	FindOldestQueued(ctx context.Context, db *gorm.DB) (*model.Challenge, error)
	FindActiveExcluding(ctx context.Context, db *gorm.DB, excludeID *uuid.UUID) ([]*model.Challenge, error)
}

type gormChallengeRepository struct{}

func NewGormChallengeRepository() ChallengeRepository {
	return &gormChallengeRepository{}
}

func (r *gormChallengeRepository) Create(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Omit(clause.Associations).Create(challenge)
	if result.Error != nil {
		logger.Error("Error creating challenge in DB",
			"error", result.Error,
			"creator_id", challenge.CreatorID.String(),
		)
		return fmt.Errorf("gormChallengeRepository.Create: %w", result.Error)
	}
	return nil
}

// FindByID preloads the creator and the student.
func (r *gormChallengeRepository) FindByID(ctx context.Context, db *gorm.DB, challengeID uuid.UUID) (*model.Challenge, error) {
	logger := middleware.GetLogger(ctx)
	var challenge model.Challenge
	result := db.WithContext(ctx).
		Preload("Creator").
		Preload("Student").
		Where("challenge_id = ?", challengeID).
		First(&challenge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding challenge by ID in DB",
			"error", result.Error,
			"challenge_id", challengeID.String(),
		)
		return nil, fmt.Errorf("gormChallengeRepository.FindByID: %w", result.Error)
	}
	return &challenge, nil
}

// List returns challenges oldest first, optionally filtered by status.
func (r *gormChallengeRepository) List(ctx context.Context, db *gorm.DB, status *model.ChallengeStatus) ([]*model.Challenge, error) {
	logger := middleware.GetLogger(ctx)
	var challenges []*model.Challenge
	query := db.WithContext(ctx).Order("created_at ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&challenges).Error; err != nil {
		logger.Error("Error listing challenges in DB", "error", err)
		return nil, fmt.Errorf("gormChallengeRepository.List: %w", err)
	}
	return challenges, nil
}

// Update writes text and threshold edits. Progress fields go through
// UpdateProgress instead so the version check is never skipped.
func (r *gormChallengeRepository) Update(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Challenge{}).Where("challenge_id = ?", challengeID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating challenge in DB",
			"error", result.Error,
			"challenge_id", challengeID.String(),
		)
		return fmt.Errorf("gormChallengeRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdateProgress writes status and streak guarded by lock_version. A writer
// that loaded an older version gets ErrStaleObject and must reload.
func (r *gormChallengeRepository) UpdateProgress(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Challenge{}).
		Where("challenge_id = ? AND lock_version = ?", challenge.ChallengeID, challenge.LockVersion).
		Updates(map[string]interface{}{
			"status":         challenge.Status,
			"current_streak": challenge.CurrentStreak,
			"lock_version":   challenge.LockVersion + 1,
		})
	if result.Error != nil {
		logger.Error("Error updating challenge progress in DB",
			"error", result.Error,
			"challenge_id", challenge.ChallengeID.String(),
		)
		return fmt.Errorf("gormChallengeRepository.UpdateProgress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Warn("Stale challenge write rejected",
			"challenge_id", challenge.ChallengeID.String(),
			"lock_version", challenge.LockVersion,
		)
		return model.ErrStaleObject
	}
	challenge.LockVersion++
	return nil
}

// Delete removes the challenge with its queries and their attempts.
func (r *gormChallengeRepository) Delete(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	tx = tx.WithContext(ctx)

	queryIDs := tx.Model(&model.Query{}).Select("query_id").Where("challenge_id = ?", challengeID)
	if err := tx.Where("query_id IN (?)", queryIDs).Delete(&model.Attempt{}).Error; err != nil {
		logger.Error("Error deleting attempts of challenge", "error", err, "challenge_id", challengeID.String())
		return fmt.Errorf("gormChallengeRepository.Delete: %w", err)
	}
	if err := tx.Where("challenge_id = ?", challengeID).Delete(&model.Query{}).Error; err != nil {
		logger.Error("Error deleting queries of challenge", "error", err, "challenge_id", challengeID.String())
		return fmt.Errorf("gormChallengeRepository.Delete: %w", err)
	}

	result := tx.Where("challenge_id = ?", challengeID).Delete(&model.Challenge{})
	if result.Error != nil {
		logger.Error("Error deleting challenge in DB", "error", result.Error, "challenge_id", challengeID.String())
		return fmt.Errorf("gormChallengeRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormChallengeRepository) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	if err := db.WithContext(ctx).Model(&model.Challenge{}).Where("status = ?", model.StatusActive).Count(&count).Error; err != nil {
		logger.Error("Error counting active challenges", "error", err)
		return 0, fmt.Errorf("gormChallengeRepository.CountActive: %w", err)
	}
	return count, nil
}

// FindOldestQueued returns ErrNotFound when the queue is empty.
func (r *gormChallengeRepository) FindOldestQueued(ctx context.Context, db *gorm.DB) (*model.Challenge, error) {
	logger := middleware.GetLogger(ctx)
	var challenge model.Challenge
	result := db.WithContext(ctx).
		Where("status = ?", model.StatusQueued).
		Order("created_at ASC").
		First(&challenge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding oldest queued challenge", "error", result.Error)
		return nil, fmt.Errorf("gormChallengeRepository.FindOldestQueued: %w", result.Error)
	}
	return &challenge, nil
}

// FindActiveExcluding lists active challenges with their students, leaving out
// excludeID when it is set.
func (r *gormChallengeRepository) FindActiveExcluding(ctx context.Context, db *gorm.DB, excludeID *uuid.UUID) ([]*model.Challenge, error) {
	logger := middleware.GetLogger(ctx)
	var challenges []*model.Challenge
	query := db.WithContext(ctx).Preload("Student").Where("status = ?", model.StatusActive)
	if excludeID != nil {
		query = query.Where("challenge_id <> ?", *excludeID)
	}
	if err := query.Order("created_at ASC").Find(&challenges).Error; err != nil {
		logger.Error("Error finding active challenges", "error", err)
		return nil, fmt.Errorf("gormChallengeRepository.FindActiveExcluding: %w", err)
	}
	return challenges, nil
}
