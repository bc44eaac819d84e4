package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Confirm(ctx context.Context, userID uuid.UUID, token string) error
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type userService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	messenger Messenger
	cfg       *config.Config
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, messenger Messenger, cfg *config.Config) UserService {
	return &userService{
		db:        db,
		userRepo:  userRepo,
		messenger: messenger,
		cfg:       cfg,
	}
}

// Register stores an unconfirmed user and texts the confirmation link. A
// delivery failure is returned together with the saved user.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx).With("username", req.Username)

	_, err := s.userRepo.FindByUsername(ctx, s.db, req.Username)
	if err == nil {
		logger.Warn("Username already exists")
		return nil, model.NewAppError("DUPLICATE_USERNAME", "This username is already taken.", "username", model.ErrConflict)
	}
	if !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to check username existence", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal error occurred.", "", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal error occurred.", "", err)
	}

	token, err := newConfirmationToken()
	if err != nil {
		logger.Error("Failed to generate confirmation token", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal error occurred.", "", err)
	}

	user := &model.User{
		UserID:            uuid.New(),
		Username:          req.Username,
		PhoneNumber:       req.PhoneNumber,
		PasswordHash:      string(hashedPassword),
		ConfirmationToken: &token,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("DUPLICATE_USERNAME", "This username is already taken.", "username", err)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to create the user.", "", err)
	}
	logger.Info("User registered", "user_id", user.UserID)

	confirmURL := fmt.Sprintf("%s/confirm-user?token=%s&user_id=%s", s.cfg.App.FrontendURL, url.QueryEscape(token), user.UserID)
	note := Notification{
		PhoneNumber: user.PhoneNumber,
		Body:        "Please click this link to confirm your account. " + confirmURL,
	}
	return user, deliverAll(ctx, s.messenger, []Notification{note})
}

// Confirm marks the user confirmed when token matches the one issued at
// registration. The token is single use.
func (s *userService) Confirm(ctx context.Context, userID uuid.UUID, token string) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("INVALID_TOKEN", "This link is invalid or was already used.", "token", model.ErrInvalidInput)
		}
		return err
	}
	if user.ConfirmationToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.ConfirmationToken), []byte(token)) != 1 {
		logger.Warn("Confirmation token mismatch")
		return model.NewAppError("INVALID_TOKEN", "This link is invalid or was already used.", "token", model.ErrInvalidInput)
	}

	if err := s.userRepo.Confirm(ctx, s.db, userID); err != nil {
		return err
	}
	logger.Info("User confirmed")
	return nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("username", req.Username)

	user, err := s.userRepo.FindByUsername(ctx, s.db, req.Username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "Incorrect username or password.", "", model.ErrUnauthorized)
		}
		logger.Error("Login failed: db error on FindByUsername", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal error occurred.", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "Incorrect username or password.", "", model.ErrUnauthorized)
	}

	if !user.Confirmed {
		logger.Warn("Login failed: account not confirmed", "user_id", user.UserID)
		return nil, model.NewAppError("ACCOUNT_NOT_CONFIRMED", "Please confirm your account with the link texted to you.", "", model.ErrForbidden)
	}

	now := time.Now()
	claims := &model.JWTCustomClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.AppName,
			Subject:   user.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Failed to issue a token.", "", err)
	}

	logger.Info("Login successful", "user_id", user.UserID)
	return &model.LoginResponse{AccessToken: signedToken}, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "User not found.", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "An internal error occurred.", "", err)
	}
	return user, nil
}

func newConfirmationToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
