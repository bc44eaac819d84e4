package service_test

import (
	"context"
	"errors"
	"testing"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"
	"go_phrase_texter/internal/service"
	servicemocks "go_phrase_texter/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ChallengeServiceTestSuite struct {
	suite.Suite

	ctx           context.Context
	db            *gorm.DB
	cfg           *config.Config
	mockMessenger *servicemocks.Messenger
	challengeRepo repository.ChallengeRepository
	svc           service.ChallengeService

	creator *model.User
	student *model.User
}

func (s *ChallengeServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = setupTestDB(s.T())
	s.cfg = testConfig()
	s.mockMessenger = new(servicemocks.Messenger)
	s.challengeRepo = repository.NewGormChallengeRepository()
	s.svc = service.NewChallengeService(s.db, s.challengeRepo, repository.NewGormUserRepository(), s.mockMessenger, s.cfg)

	s.creator = seedUser(s.T(), s.db, "drew", "+15550000001")
	s.student = seedUser(s.T(), s.db, "christina", "+15550000002")
}

func TestChallengeService(t *testing.T) {
	suite.Run(t, new(ChallengeServiceTestSuite))
}

func (s *ChallengeServiceTestSuite) TestCreateAndActivate_CapacityAndPromotion() {
	s.mockMessenger.On("Text", mock.Anything, s.creator.PhoneNumber, mock.Anything).Return(nil)

	var created []*model.Challenge
	for i := 0; i < 11; i++ {
		c, err := s.svc.CreateAndActivate(s.ctx, s.creator.UserID, &model.PostChallengeRequest{
			LearningLanguageText: "  amigo  ",
			NativeLanguageText:   "friend",
		})
		s.Require().NoError(err)
		created = append(created, c)
	}

	for i, c := range created[:10] {
		s.Equal(model.StatusActive, c.Status, "challenge %d", i)
	}
	s.Equal(model.StatusQueued, created[10].Status)
	s.Equal("amigo", created[0].LearningLanguageText)
	s.Equal(s.cfg.App.DefaultRequiredStreak, created[0].RequiredStreakForCompletion)
	s.EqualValues(10, countByStatus(s.T(), s.db, model.StatusActive))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.challengeRepo.FindByID(s.ctx, tx, created[3].ChallengeID)
		if err != nil {
			return err
		}
		_, err = s.svc.MarkComplete(s.ctx, tx, c)
		return err
	})
	s.Require().NoError(err)

	s.Equal(model.StatusComplete, reloadChallenge(s.T(), s.db, created[3].ChallengeID).Status)
	s.Equal(model.StatusActive, reloadChallenge(s.T(), s.db, created[10].ChallengeID).Status)
	s.EqualValues(10, countByStatus(s.T(), s.db, model.StatusActive))
	s.EqualValues(0, countByStatus(s.T(), s.db, model.StatusQueued))
}

func (s *ChallengeServiceTestSuite) TestCreateAndActivate_TextsStudent() {
	s.mockMessenger.On("Text", mock.Anything, s.student.PhoneNumber, "New challenge added! 'hola' / 'hello'.").Return(nil).Once()

	c, err := s.svc.CreateAndActivate(s.ctx, s.creator.UserID, &model.PostChallengeRequest{
		LearningLanguageText: "hola",
		NativeLanguageText:   "hello",
		StudentID:            &s.student.UserID,
	})

	s.Require().NoError(err)
	s.Equal(s.student.UserID, c.StudentID)
	s.Equal(s.creator.UserID, c.CreatorID)
	s.mockMessenger.AssertExpectations(s.T())
}

func (s *ChallengeServiceTestSuite) TestCreateAndActivate_Validation() {
	zero := 0
	unknown := uuid.New()

	testCases := []struct {
		name      string
		req       *model.PostChallengeRequest
		wantField string
	}{
		{
			name:      "blank texts",
			req:       &model.PostChallengeRequest{LearningLanguageText: "   ", NativeLanguageText: ""},
			wantField: "learning_language_text,native_language_text",
		},
		{
			name:      "non-positive required streak",
			req:       &model.PostChallengeRequest{LearningLanguageText: "hola", NativeLanguageText: "hello", RequiredStreakForCompletion: &zero},
			wantField: "required_streak_for_completion",
		},
		{
			name:      "unknown student",
			req:       &model.PostChallengeRequest{LearningLanguageText: "hola", NativeLanguageText: "hello", StudentID: &unknown},
			wantField: "student_id",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			c, err := s.svc.CreateAndActivate(s.ctx, s.creator.UserID, tc.req)

			s.Nil(c)
			s.ErrorIs(err, model.ErrInvalidInput)
			var appErr *model.AppError
			s.Require().ErrorAs(err, &appErr)
			s.Equal(tc.wantField, appErr.Detail.Field)
		})
	}

	var n int64
	s.Require().NoError(s.db.Model(&model.Challenge{}).Count(&n).Error)
	s.Zero(n)
	s.mockMessenger.AssertNotCalled(s.T(), "Text", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ChallengeServiceTestSuite) TestCreateAndActivate_DeliveryFailureKeepsChallenge() {
	s.mockMessenger.On("Text", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("carrier down")).Once()

	c, err := s.svc.CreateAndActivate(s.ctx, s.creator.UserID, &model.PostChallengeRequest{
		LearningLanguageText: "hola",
		NativeLanguageText:   "hello",
	})

	s.ErrorIs(err, model.ErrDeliveryFailed)
	s.Require().NotNil(c)
	s.Equal(model.StatusActive, reloadChallenge(s.T(), s.db, c.ChallengeID).Status)
}

func (s *ChallengeServiceTestSuite) TestProcessAttempt_TransitionTable() {
	testCases := []struct {
		name       string
		status     model.ChallengeStatus
		streak     int
		result     model.ResultStatus
		wantStatus model.ChallengeStatus
		wantStreak int
	}{
		{"incorrect active resets", model.StatusActive, 3, model.ResultIncorrectActive, model.StatusActive, 0},
		{"correct insufficient increments", model.StatusActive, 1, model.ResultCorrectActiveInsufficient, model.StatusActive, 2},
		{"correct sufficient completes", model.StatusActive, 2, model.ResultCorrectActiveSufficient, model.StatusComplete, 3},
		{"correct complete increments", model.StatusComplete, 3, model.ResultCorrectComplete, model.StatusComplete, 4},
		{"incorrect complete reactivates", model.StatusComplete, 4, model.ResultIncorrectComplete, model.StatusActive, 0},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			c := seedChallenge(s.T(), s.db, s.creator, s.creator, tc.status, tc.streak, 3)

			err := s.db.Transaction(func(tx *gorm.DB) error {
				notes, err := s.svc.ProcessAttempt(s.ctx, tx, c, tc.result)
				s.Empty(notes)
				return err
			})
			s.Require().NoError(err)

			got := reloadChallenge(s.T(), s.db, c.ChallengeID)
			s.Equal(tc.wantStatus, got.Status)
			s.Equal(tc.wantStreak, got.CurrentStreak)
		})
	}
}

func (s *ChallengeServiceTestSuite) TestProcessAttempt_UnknownStatus() {
	c := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 0, 3)

	_, err := s.svc.ProcessAttempt(s.ctx, s.db, c, model.ResultStatus("maybe"))

	s.Error(err)
	s.Equal(0, reloadChallenge(s.T(), s.db, c.ChallengeID).LockVersion)
}

func (s *ChallengeServiceTestSuite) TestProcessAttempt_StaleWriteRejected() {
	c := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 1, 3)
	stale := *c

	_, err := s.svc.ProcessAttempt(s.ctx, s.db, c, model.ResultCorrectActiveInsufficient)
	s.Require().NoError(err)

	_, err = s.svc.ProcessAttempt(s.ctx, s.db, &stale, model.ResultCorrectActiveInsufficient)
	s.ErrorIs(err, model.ErrStaleObject)
	s.ErrorIs(err, model.ErrConflict)
	s.Equal(2, reloadChallenge(s.T(), s.db, c.ChallengeID).CurrentStreak)
}

func (s *ChallengeServiceTestSuite) TestMarkComplete_NotifiesCreatorOnlyWhenDifferent() {
	own := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 3, 3)
	assigned := seedChallenge(s.T(), s.db, s.creator, s.student, model.StatusActive, 3, 3)

	notes, err := s.svc.MarkComplete(s.ctx, s.db, own)
	s.Require().NoError(err)
	s.Empty(notes)

	notes, err = s.svc.MarkComplete(s.ctx, s.db, assigned)
	s.Require().NoError(err)
	s.Require().Len(notes, 1)
	s.Equal(s.creator.PhoneNumber, notes[0].PhoneNumber)
	s.Equal(`christina has completed the challenge "`+assigned.LearningLanguageText+`"!`, notes[0].Body)
}

func (s *ChallengeServiceTestSuite) TestIncorrectComplete_RequeuesWhenActiveSetFull() {
	s.cfg.App.MaxActive = 1
	seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 0, 3)
	done := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusComplete, 3, 3)

	_, err := s.svc.ProcessAttempt(s.ctx, s.db, done, model.ResultIncorrectComplete)
	s.Require().NoError(err)

	got := reloadChallenge(s.T(), s.db, done.ChallengeID)
	s.Equal(model.StatusQueued, got.Status)
	s.Equal(0, got.CurrentStreak)
	s.EqualValues(1, countByStatus(s.T(), s.db, model.StatusActive))
}

func (s *ChallengeServiceTestSuite) TestDeleteChallenge() {
	s.cfg.App.MaxActive = 1
	active := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 0, 3)
	queued := seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusQueued, 0, 3)
	seedQuery(s.T(), s.db, active, model.LanguageLearning, active.CreatedAt)

	err := s.svc.DeleteChallenge(s.ctx, s.student.UserID, active.ChallengeID)
	s.ErrorIs(err, model.ErrForbidden)

	s.Require().NoError(s.svc.DeleteChallenge(s.ctx, s.creator.UserID, active.ChallengeID))

	_, err = s.svc.GetChallenge(s.ctx, active.ChallengeID)
	s.ErrorIs(err, model.ErrNotFound)
	var queries int64
	s.Require().NoError(s.db.Model(&model.Query{}).Where("challenge_id = ?", active.ChallengeID).Count(&queries).Error)
	s.Zero(queries)
	s.Equal(model.StatusActive, reloadChallenge(s.T(), s.db, queued.ChallengeID).Status)

	err = s.svc.DeleteChallenge(s.ctx, s.creator.UserID, uuid.New())
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ChallengeServiceTestSuite) TestUpdateChallenge() {
	c := seedChallenge(s.T(), s.db, s.creator, s.student, model.StatusActive, 2, 3)
	text := "  buenos dias "
	required := 6

	updated, err := s.svc.UpdateChallenge(s.ctx, s.creator.UserID, c.ChallengeID, &model.PatchChallengeRequest{
		LearningLanguageText:        &text,
		RequiredStreakForCompletion: &required,
	})
	s.Require().NoError(err)
	s.Equal("buenos dias", updated.LearningLanguageText)
	s.Equal("hello", updated.NativeLanguageText)
	s.Equal(6, updated.RequiredStreakForCompletion)
	s.Equal(2, updated.CurrentStreak)

	blank := " "
	_, err = s.svc.UpdateChallenge(s.ctx, s.creator.UserID, c.ChallengeID, &model.PatchChallengeRequest{NativeLanguageText: &blank})
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.svc.UpdateChallenge(s.ctx, s.student.UserID, c.ChallengeID, &model.PatchChallengeRequest{LearningLanguageText: &text})
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ChallengeServiceTestSuite) TestListChallenges() {
	seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusActive, 0, 3)
	seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusQueued, 0, 3)
	seedChallenge(s.T(), s.db, s.creator, s.creator, model.StatusQueued, 0, 3)

	all, err := s.svc.ListChallenges(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	queued := model.StatusQueued
	onlyQueued, err := s.svc.ListChallenges(s.ctx, &queued)
	s.Require().NoError(err)
	s.Len(onlyQueued, 2)

	bogus := model.ChallengeStatus("archived")
	_, err = s.svc.ListChallenges(s.ctx, &bogus)
	s.ErrorIs(err, model.ErrInvalidInput)
}
