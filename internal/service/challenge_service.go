// internal/service/challenge_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/metrics"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService owns the challenge lifecycle: creation into the queue or
// the active set, streak transitions on graded attempts, completion and
// promotion of queued challenges.
type ChallengeService interface {
	CreateAndActivate(ctx context.Context, creatorID uuid.UUID, req *model.PostChallengeRequest) (*model.Challenge, error)
	ProcessAttempt(ctx context.Context, tx *gorm.DB, challenge *model.Challenge, status model.ResultStatus) ([]Notification, error)
	MarkComplete(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) ([]Notification, error)
	GetChallenge(ctx context.Context, challengeID uuid.UUID) (*model.Challenge, error)
	ListChallenges(ctx context.Context, status *model.ChallengeStatus) ([]*model.Challenge, error)
	UpdateChallenge(ctx context.Context, requesterID, challengeID uuid.UUID, req *model.PatchChallengeRequest) (*model.Challenge, error)
	DeleteChallenge(ctx context.Context, requesterID, challengeID uuid.UUID) error
	Notify(ctx context.Context, notes []Notification) error
}

type challengeService struct {
	db            *gorm.DB
	challengeRepo repository.ChallengeRepository
	userRepo      repository.UserRepository
	messenger     Messenger
	cfg           *config.Config
}

func NewChallengeService(db *gorm.DB, challengeRepo repository.ChallengeRepository, userRepo repository.UserRepository, messenger Messenger, cfg *config.Config) ChallengeService {
	return &challengeService{
		db:            db,
		challengeRepo: challengeRepo,
		userRepo:      userRepo,
		messenger:     messenger,
		cfg:           cfg,
	}
}

// CreateAndActivate stores a new challenge, activates it when the active set
// has room and texts the student. A delivery failure is returned together
// with the saved challenge.
func (s *challengeService) CreateAndActivate(ctx context.Context, creatorID uuid.UUID, req *model.PostChallengeRequest) (*model.Challenge, error) {
	logger := middleware.GetLogger(ctx)

	learning := strings.TrimSpace(req.LearningLanguageText)
	native := strings.TrimSpace(req.NativeLanguageText)
	required := s.cfg.App.DefaultRequiredStreak

	var invalid []string
	if learning == "" {
		invalid = append(invalid, "learning_language_text")
	}
	if native == "" {
		invalid = append(invalid, "native_language_text")
	}
	if req.RequiredStreakForCompletion != nil {
		if *req.RequiredStreakForCompletion <= 0 {
			invalid = append(invalid, "required_streak_for_completion")
		} else {
			required = *req.RequiredStreakForCompletion
		}
	}
	if len(invalid) > 0 {
		logger.Warn("Challenge rejected by validation", "fields", invalid)
		return nil, model.NewAppError("VALIDATION_ERROR", "The challenge is missing required values.", strings.Join(invalid, ","), model.ErrInvalidInput)
	}

	studentID := creatorID
	if req.StudentID != nil {
		studentID = *req.StudentID
	}

	var created *model.Challenge
	err := withRetry(ctx, s.cfg.App.AttemptRetryLimit, "CreateAndActivate", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			creator, err := s.resolveUser(ctx, tx, creatorID, "creator_id")
			if err != nil {
				return err
			}
			student, err := s.resolveUser(ctx, tx, studentID, "student_id")
			if err != nil {
				return err
			}

			challenge := &model.Challenge{
				ChallengeID:                 uuid.New(),
				LearningLanguageText:        learning,
				NativeLanguageText:          native,
				Status:                      model.StatusQueued,
				RequiredStreakForCompletion: required,
				CreatorID:                   creator.UserID,
				StudentID:                   student.UserID,
			}
			if err := s.challengeRepo.Create(ctx, tx, challenge); err != nil {
				return err
			}
			if _, err := s.activateIfRoom(ctx, tx, challenge); err != nil {
				return err
			}

			challenge.Creator = creator
			challenge.Student = student
			created = challenge
			return nil
		}, repository.LifecycleTxOptions(s.db))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Challenge created", "challenge_id", created.ChallengeID, "status", created.Status)

	note := Notification{
		PhoneNumber: created.Student.PhoneNumber,
		Body:        fmt.Sprintf("New challenge added! '%s' / '%s'.", created.LearningLanguageText, created.NativeLanguageText),
	}
	return created, s.Notify(ctx, []Notification{note})
}

// ProcessAttempt applies the streak transition for status inside tx. The
// returned notifications must be sent only after tx commits.
func (s *challengeService) ProcessAttempt(ctx context.Context, tx *gorm.DB, challenge *model.Challenge, status model.ResultStatus) ([]Notification, error) {
	logger := middleware.GetLogger(ctx).With("challenge_id", challenge.ChallengeID, "result_status", status)

	switch status {
	case model.ResultIncorrectActive:
		challenge.CurrentStreak = 0
	case model.ResultCorrectActiveInsufficient, model.ResultCorrectComplete:
		challenge.CurrentStreak++
	case model.ResultCorrectActiveSufficient:
		challenge.CurrentStreak++
		logger.Debug("Streak reached completion threshold", "streak", challenge.CurrentStreak)
		return s.MarkComplete(ctx, tx, challenge)
	case model.ResultIncorrectComplete:
		challenge.CurrentStreak = 0
		return nil, s.reactivate(ctx, tx, challenge)
	default:
		return nil, fmt.Errorf("challengeService.ProcessAttempt: unknown result status %q", status)
	}

	if err := s.challengeRepo.UpdateProgress(ctx, tx, challenge); err != nil {
		return nil, err
	}
	logger.Debug("Streak updated", "streak", challenge.CurrentStreak)
	return nil, nil
}

// MarkComplete finalizes challenge, promotes the oldest queued challenge when
// the active set has room and prepares the creator's notification.
func (s *challengeService) MarkComplete(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) ([]Notification, error) {
	logger := middleware.GetLogger(ctx)

	challenge.Status = model.StatusComplete
	if err := s.challengeRepo.UpdateProgress(ctx, tx, challenge); err != nil {
		return nil, err
	}
	metrics.ChallengesCompleted.Inc()
	logger.Info("Challenge completed", "challenge_id", challenge.ChallengeID)

	if err := s.promoteOldestQueued(ctx, tx); err != nil {
		return nil, err
	}

	if challenge.CreatorID == challenge.StudentID {
		return nil, nil
	}
	if err := s.loadUsers(ctx, tx, challenge); err != nil {
		return nil, err
	}
	return []Notification{{
		PhoneNumber: challenge.Creator.PhoneNumber,
		Body:        fmt.Sprintf("%s has completed the challenge %q!", challenge.Student.Username, challenge.LearningLanguageText),
	}}, nil
}

func (s *challengeService) GetChallenge(ctx context.Context, challengeID uuid.UUID) (*model.Challenge, error) {
	return s.challengeRepo.FindByID(ctx, s.db, challengeID)
}

func (s *challengeService) ListChallenges(ctx context.Context, status *model.ChallengeStatus) ([]*model.Challenge, error) {
	if status != nil && !status.Valid() {
		return nil, model.NewAppError("INVALID_STATUS", "Unknown challenge status.", "status", model.ErrInvalidInput)
	}
	return s.challengeRepo.List(ctx, s.db, status)
}

// UpdateChallenge edits texts and the required streak. A new threshold is
// only checked at the next graded attempt.
func (s *challengeService) UpdateChallenge(ctx context.Context, requesterID, challengeID uuid.UUID, req *model.PatchChallengeRequest) (*model.Challenge, error) {
	updates := map[string]interface{}{}
	var invalid []string

	if req.LearningLanguageText != nil {
		if v := strings.TrimSpace(*req.LearningLanguageText); v == "" {
			invalid = append(invalid, "learning_language_text")
		} else {
			updates["learning_language_text"] = v
		}
	}
	if req.NativeLanguageText != nil {
		if v := strings.TrimSpace(*req.NativeLanguageText); v == "" {
			invalid = append(invalid, "native_language_text")
		} else {
			updates["native_language_text"] = v
		}
	}
	if req.RequiredStreakForCompletion != nil {
		if *req.RequiredStreakForCompletion <= 0 {
			invalid = append(invalid, "required_streak_for_completion")
		} else {
			updates["required_streak_for_completion"] = *req.RequiredStreakForCompletion
		}
	}
	if len(invalid) > 0 {
		return nil, model.NewAppError("VALIDATION_ERROR", "The challenge has invalid values.", strings.Join(invalid, ","), model.ErrInvalidInput)
	}

	var updated *model.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenge, err := s.challengeRepo.FindByID(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		if challenge.CreatorID != requesterID {
			return model.NewAppError("FORBIDDEN", "Only the creator can change this challenge.", "", model.ErrForbidden)
		}
		if err := s.challengeRepo.Update(ctx, tx, challengeID, updates); err != nil {
			return err
		}
		updated, err = s.challengeRepo.FindByID(ctx, tx, challengeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteChallenge removes the challenge with its queries and attempts. When an
// active challenge goes away the oldest queued one takes its place.
func (s *challengeService) DeleteChallenge(ctx context.Context, requesterID, challengeID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	return withRetry(ctx, s.cfg.App.AttemptRetryLimit, "DeleteChallenge", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			challenge, err := s.challengeRepo.FindByID(ctx, tx, challengeID)
			if err != nil {
				return err
			}
			if challenge.CreatorID != requesterID {
				return model.NewAppError("FORBIDDEN", "Only the creator can delete this challenge.", "", model.ErrForbidden)
			}
			if err := s.challengeRepo.Delete(ctx, tx, challengeID); err != nil {
				return err
			}
			logger.Info("Challenge deleted", "challenge_id", challengeID, "status", challenge.Status)

			if challenge.Status != model.StatusActive {
				return nil
			}
			return s.promoteOldestQueued(ctx, tx)
		}, repository.LifecycleTxOptions(s.db))
	})
}

func (s *challengeService) Notify(ctx context.Context, notes []Notification) error {
	return deliverAll(ctx, s.messenger, notes)
}

// reactivate puts a completed challenge back into rotation. When the active
// set is full it waits in the queue instead.
func (s *challengeService) reactivate(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error {
	challenge.Status = model.StatusQueued
	activated, err := s.activateIfRoom(ctx, tx, challenge)
	if err != nil {
		return err
	}
	if !activated {
		middleware.GetLogger(ctx).Warn("Active set full, re-queued challenge", "challenge_id", challenge.ChallengeID)
		return s.challengeRepo.UpdateProgress(ctx, tx, challenge)
	}
	return nil
}

// activateIfRoom writes challenge as active when fewer than MaxActive
// challenges are active. challenge must not be counted as active already.
func (s *challengeService) activateIfRoom(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) (bool, error) {
	count, err := s.challengeRepo.CountActive(ctx, tx)
	if err != nil {
		return false, err
	}
	if count >= int64(s.cfg.App.MaxActive) {
		return false, nil
	}

	challenge.Status = model.StatusActive
	if err := s.challengeRepo.UpdateProgress(ctx, tx, challenge); err != nil {
		return false, err
	}
	metrics.ChallengesPromoted.Inc()
	return true, nil
}

func (s *challengeService) promoteOldestQueued(ctx context.Context, tx *gorm.DB) error {
	next, err := s.challengeRepo.FindOldestQueued(ctx, tx)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	activated, err := s.activateIfRoom(ctx, tx, next)
	if err != nil {
		return err
	}
	if activated {
		middleware.GetLogger(ctx).Info("Promoted queued challenge", "challenge_id", next.ChallengeID)
	}
	return nil
}

func (s *challengeService) resolveUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, field string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, tx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.NewAppError("VALIDATION_ERROR", "The user does not exist.", field, model.ErrInvalidInput)
	}
	return user, err
}

func (s *challengeService) loadUsers(ctx context.Context, tx *gorm.DB, challenge *model.Challenge) error {
	var err error
	if challenge.Creator == nil {
		if challenge.Creator, err = s.userRepo.FindByID(ctx, tx, challenge.CreatorID); err != nil {
			return err
		}
	}
	if challenge.Student == nil {
		if challenge.Student, err = s.userRepo.FindByID(ctx, tx, challenge.StudentID); err != nil {
			return err
		}
	}
	return nil
}
