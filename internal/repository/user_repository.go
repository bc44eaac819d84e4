//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error)
	FindByPhoneNumber(ctx context.Context, db *gorm.DB, phoneNumber string) (*model.User, error)
	Confirm(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

// Create returns ErrConflict for a taken username.
func (r *gormUserRepository) Create(ctx context.Context, db *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Duplicate key error on create user",
				"error", result.Error,
				"username", user.Username,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating user in DB",
			"error", result.Error,
			"username", user.Username,
		)
		return fmt.Errorf("gormUserRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, db, "FindByID", "user_id = ?", userID)
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByUsername", "username = ?", username)
}

// FindByPhoneNumber returns the oldest user registered with the number.
func (r *gormUserRepository) FindByPhoneNumber(ctx context.Context, db *gorm.DB, phoneNumber string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByPhoneNumber", "phone_number = ?", phoneNumber)
}

func (r *gormUserRepository) findOne(ctx context.Context, db *gorm.DB, op string, cond string, arg any) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User

	result := db.WithContext(ctx).Where(cond, arg).Order("created_at ASC").First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("User not found", "op", op, "arg", arg)
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user in DB", "op", op, "error", result.Error)
		return nil, fmt.Errorf("gormUserRepository.%s: %w", op, result.Error)
	}
	return &user, nil
}

// Confirm sets confirmed and clears the token so the link works once.
func (r *gormUserRepository) Confirm(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"confirmed": true, "confirmation_token": nil})
	if result.Error != nil {
		logger.Error("Error confirming user in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.Confirm: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
