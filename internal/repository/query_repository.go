//go:generate mockery --name QueryRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, query *model.Query) error
	FindByID(ctx context.Context, db *gorm.DB, queryID uuid.UUID) (*model.Query, error)
	FindLatest(ctx context.Context, db *gorm.DB) (*model.Query, error)
	FindLatestForStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.Query, error)
	UpdateLastSentAt(ctx context.Context, db *gorm.DB, queryID uuid.UUID, sentAt time.Time) error
}

type gormQueryRepository struct{}

func NewGormQueryRepository() QueryRepository {
	return &gormQueryRepository{}
}

func (r *gormQueryRepository) Create(ctx context.Context, tx *gorm.DB, query *model.Query) error {
	logger := middleware.GetLogger(ctx)
	// Associations are written by their own repositories.
	result := tx.WithContext(ctx).Omit(clause.Associations).Create(query)
	if result.Error != nil {
		logger.Error("Error creating query in DB",
			"error", result.Error,
			"challenge_id", query.ChallengeID.String(),
		)
		return fmt.Errorf("gormQueryRepository.Create: %w", result.Error)
	}
	return nil
}

// FindByID preloads the attempt and the challenge with both of its users.
func (r *gormQueryRepository) FindByID(ctx context.Context, db *gorm.DB, queryID uuid.UUID) (*model.Query, error) {
	return r.first(ctx, r.withContext(ctx, db).Where("query_id = ?", queryID), "FindByID")
}

// FindLatest returns the most recently created query, or ErrNotFound when
// nothing was ever sent.
func (r *gormQueryRepository) FindLatest(ctx context.Context, db *gorm.DB) (*model.Query, error) {
	return r.first(ctx, r.withContext(ctx, db).Order("queries.created_at DESC"), "FindLatest")
}

// FindLatestForStudent answers "which question is this text replying to".
func (r *gormQueryRepository) FindLatestForStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.Query, error) {
	q := r.withContext(ctx, db).
		Joins("JOIN challenges ON challenges.challenge_id = queries.challenge_id").
		Where("challenges.student_id = ?", studentID).
		Order("queries.created_at DESC")
	return r.first(ctx, q, "FindLatestForStudent")
}

// UpdateLastSentAt records a successful resend.
func (r *gormQueryRepository) UpdateLastSentAt(ctx context.Context, db *gorm.DB, queryID uuid.UUID, sentAt time.Time) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Query{}).Where("query_id = ?", queryID).Update("last_sent_at", sentAt)
	if result.Error != nil {
		logger.Error("Error updating query last_sent_at", "error", result.Error, "query_id", queryID.String())
		return fmt.Errorf("gormQueryRepository.UpdateLastSentAt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormQueryRepository) withContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Preload("Attempt").
		Preload("Challenge").
		Preload("Challenge.Creator").
		Preload("Challenge.Student")
}

func (r *gormQueryRepository) first(ctx context.Context, q *gorm.DB, op string) (*model.Query, error) {
	logger := middleware.GetLogger(ctx)
	var query model.Query
	if err := q.First(&query).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding query in DB", "op", op, "error", err)
		return nil, fmt.Errorf("gormQueryRepository.%s: %w", op, err)
	}
	return &query, nil
}
