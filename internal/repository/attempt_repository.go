//go:generate mockery --name AttemptRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

// Create returns ErrConflict when the query already has an attempt.
func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Query already attempted", "query_id", attempt.QueryID.String())
			return model.ErrConflict
		}
		logger.Error("Error creating attempt in DB",
			"error", result.Error,
			"query_id", attempt.QueryID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}
