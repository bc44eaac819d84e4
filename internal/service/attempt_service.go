// internal/service/attempt_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/grader"
	"go_phrase_texter/internal/metrics"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptService grades replies to queries and feeds the outcome into the
// challenge lifecycle.
type AttemptService interface {
	CreateAndProcess(ctx context.Context, queryID uuid.UUID, text string) (*model.Attempt, *model.Challenge, error)
	ReceiveMessage(ctx context.Context, from, body string) (*model.Attempt, error)
}

type attemptService struct {
	db           *gorm.DB
	queryRepo    repository.QueryRepository
	attemptRepo  repository.AttemptRepository
	userRepo     repository.UserRepository
	challengeSvc ChallengeService
	messenger    Messenger
	cfg          *config.Config
}

func NewAttemptService(db *gorm.DB, queryRepo repository.QueryRepository, attemptRepo repository.AttemptRepository, userRepo repository.UserRepository, challengeSvc ChallengeService, messenger Messenger, cfg *config.Config) AttemptService {
	return &attemptService{
		db:           db,
		queryRepo:    queryRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		challengeSvc: challengeSvc,
		messenger:    messenger,
		cfg:          cfg,
	}
}

// CreateAndProcess stores a graded attempt for the query and applies the
// streak transition in the same transaction. A lost race on the challenge row
// reloads and grades again. Notification failures come back as an error
// wrapping model.ErrDeliveryFailed alongside the saved attempt.
func (s *attemptService) CreateAndProcess(ctx context.Context, queryID uuid.UUID, text string) (*model.Attempt, *model.Challenge, error) {
	logger := middleware.GetLogger(ctx).With("query_id", queryID)

	if strings.TrimSpace(text) == "" {
		return nil, nil, model.NewAppError("VALIDATION_ERROR", "The answer must not be empty.", "text", model.ErrInvalidInput)
	}

	var (
		attempt   *model.Attempt
		challenge *model.Challenge
		notes     []Notification
	)
	err := withRetry(ctx, s.cfg.App.AttemptRetryLimit, "CreateAndProcess", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			query, err := s.queryRepo.FindByID(ctx, tx, queryID)
			if err != nil {
				return err
			}
			if query.Attempted() {
				logger.Warn("Query already attempted")
				return model.NewAppError("ALREADY_ATTEMPTED", "This query was already answered.", "query_id", model.ErrConflict)
			}

			result, err := grader.Grade(query, query.Challenge, text)
			switch {
			case errors.Is(err, grader.ErrChallengeNotQuizzable):
				return model.NewAppError("CHALLENGE_NOT_ACTIVE", "The challenge is waiting in the queue.", "", model.ErrConflict)
			case err != nil:
				logger.Error("Attempt could not be graded", "error", err)
				return fmt.Errorf("attemptService.CreateAndProcess: %w", err)
			}

			a := &model.Attempt{
				AttemptID:    uuid.New(),
				QueryID:      query.QueryID,
				Text:         text,
				Correct:      result.Correct,
				ResultStatus: result.ResultStatus,
			}
			if err := s.attemptRepo.Create(ctx, tx, a); err != nil {
				if errors.Is(err, model.ErrConflict) {
					return model.NewAppError("ALREADY_ATTEMPTED", "This query was already answered.", "query_id", err)
				}
				return err
			}

			n, err := s.challengeSvc.ProcessAttempt(ctx, tx, query.Challenge, result.ResultStatus)
			if err != nil {
				return err
			}

			attempt, challenge, notes = a, query.Challenge, n
			return nil
		}, repository.LifecycleTxOptions(s.db))
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.AttemptsGraded.WithLabelValues(string(attempt.ResultStatus)).Inc()
	logger.Info("Attempt graded",
		"attempt_id", attempt.AttemptID,
		"result_status", attempt.ResultStatus,
		"streak", challenge.CurrentStreak,
		"challenge_status", challenge.Status,
	)

	return attempt, challenge, s.challengeSvc.Notify(ctx, notes)
}

// ReceiveMessage handles an inbound text: it answers the sender's most recent
// query and texts back the result.
func (s *attemptService) ReceiveMessage(ctx context.Context, from, body string) (*model.Attempt, error) {
	logger := middleware.GetLogger(ctx).With("from", from)

	user, err := s.userRepo.FindByPhoneNumber(ctx, s.db, from)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Text from unknown number")
			return nil, model.NewAppError("UNKNOWN_SENDER", "No user is registered with this number.", "From", model.ErrNotFound)
		}
		return nil, err
	}

	query, err := s.queryRepo.FindLatestForStudent(ctx, s.db, user.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Text with no query to answer", "user_id", user.UserID)
			return nil, model.NewAppError("NO_QUERY", "There is no question to answer yet.", "", model.ErrNotFound)
		}
		return nil, err
	}

	attempt, challenge, err := s.CreateAndProcess(ctx, query.QueryID, body)
	if attempt == nil {
		return nil, err
	}

	feedback := Notification{
		PhoneNumber: user.PhoneNumber,
		Body:        FeedbackText(attempt, challenge, grader.ExpectedAnswer(challenge, query.Language)),
	}
	return attempt, errors.Join(err, deliverAll(ctx, s.messenger, []Notification{feedback}))
}

// FeedbackText is the reply texted to a student after grading.
func FeedbackText(attempt *model.Attempt, challenge *model.Challenge, expected string) string {
	switch attempt.ResultStatus {
	case model.ResultCorrectActiveInsufficient:
		return fmt.Sprintf("Correct! %d more to go.", challenge.CorrectAttemptsStillRequired())
	case model.ResultCorrectActiveSufficient:
		return "Correct! Challenge complete!"
	case model.ResultCorrectComplete:
		return "Correct!"
	default:
		return fmt.Sprintf("Incorrect. The answer was %q.", expected)
	}
}
