// internal/service/inquisitor.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/metrics"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Random is the source for challenge picks, language picks and the resend
// coin flip.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// lockedRandom makes a seeded generator safe for the scheduler and HTTP
// triggers to share.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRandom returns a deterministic Random.
func NewSeededRandom(seed uint64) Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Inquisitor decides when to quiz and sends the quiz texts.
type Inquisitor interface {
	TimeForQuery(now time.Time, last *model.Query) bool
	SendQuery(ctx context.Context, now time.Time, last *model.Query) (*model.Query, error)
	Tick(ctx context.Context, last *model.Query) (*model.Query, error)
	SendChallengeQuery(ctx context.Context, challengeID uuid.UUID) (*model.Query, error)
	LatestQuery(ctx context.Context) (*model.Query, error)
}

type inquisitor struct {
	db            *gorm.DB
	challengeRepo repository.ChallengeRepository
	queryRepo     repository.QueryRepository
	messenger     Messenger
	cfg           config.InquisitorConfig
	loc           *time.Location
	random        Random
	clock         Clock
}

// NewInquisitor wires the scheduler. A nil random or clock falls back to the
// process-wide generator and the wall clock.
func NewInquisitor(db *gorm.DB, challengeRepo repository.ChallengeRepository, queryRepo repository.QueryRepository, messenger Messenger, cfg *config.Config, random Random, clock Clock) Inquisitor {
	if random == nil {
		random = globalRandom{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &inquisitor{
		db:            db,
		challengeRepo: challengeRepo,
		queryRepo:     queryRepo,
		messenger:     messenger,
		cfg:           cfg.Inquisitor,
		loc:           cfg.Inquisitor.Location(),
		random:        random,
		clock:         clock,
	}
}

// TimeForQuery is false outside the daily window. Inside it, an unanswered
// last query is resent only occasionally and an answered one must be older
// than the minimum interval.
func (s *inquisitor) TimeForQuery(now time.Time, last *model.Query) bool {
	hour := now.In(s.loc).Hour()
	if hour < s.cfg.StartHour || hour >= s.cfg.EndHour {
		return false
	}
	if last == nil {
		return true
	}
	if !last.Attempted() {
		return s.random.Float64() < s.cfg.ResendProbability
	}
	return now.Sub(last.LastSentAt) > s.cfg.MinInterval
}

// SendQuery creates and sends a query for a fresh challenge when last was
// answered (or never existed) and resends last otherwise. It returns nil
// without error when there is nothing active to ask about.
func (s *inquisitor) SendQuery(ctx context.Context, now time.Time, last *model.Query) (*model.Query, error) {
	if last != nil && !last.Attempted() {
		return s.resend(ctx, now, last)
	}

	logger := middleware.GetLogger(ctx)

	var exclude *uuid.UUID
	if last != nil {
		exclude = &last.ChallengeID
	}
	candidates, err := s.challengeRepo.FindActiveExcluding(ctx, s.db, exclude)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && exclude != nil {
		// Only the last query's challenge is active.
		candidates, err = s.challengeRepo.FindActiveExcluding(ctx, s.db, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		logger.Info("No active challenges to query")
		return nil, nil
	}

	challenge := candidates[s.random.IntN(len(candidates))]
	return s.createAndSend(ctx, now, challenge, metrics.KindNew)
}

// Tick runs one scheduler step and returns the query that is now the most
// recent one.
func (s *inquisitor) Tick(ctx context.Context, last *model.Query) (*model.Query, error) {
	now := s.clock.Now()
	if !s.TimeForQuery(now, last) {
		return last, nil
	}
	query, err := s.SendQuery(ctx, now, last)
	if query == nil {
		return last, err
	}
	return query, err
}

// SendChallengeQuery quizzes the student on one challenge right away.
func (s *inquisitor) SendChallengeQuery(ctx context.Context, challengeID uuid.UUID) (*model.Query, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, s.db, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status == model.StatusQueued {
		return nil, model.NewAppError("CHALLENGE_QUEUED", "Queued challenges cannot be quizzed yet.", "challenge_id", model.ErrInvalidInput)
	}
	return s.createAndSend(ctx, s.clock.Now(), challenge, metrics.KindManual)
}

// LatestQuery returns nil when no query was ever sent.
func (s *inquisitor) LatestQuery(ctx context.Context) (*model.Query, error) {
	query, err := s.queryRepo.FindLatest(ctx, s.db)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	return query, err
}

// createAndSend persists the query before sending, so a failed delivery
// leaves it in place for the resend path.
func (s *inquisitor) createAndSend(ctx context.Context, now time.Time, challenge *model.Challenge, kind string) (*model.Query, error) {
	logger := middleware.GetLogger(ctx)

	query := &model.Query{
		QueryID:     uuid.New(),
		ChallengeID: challenge.ChallengeID,
		Language:    s.randomLanguage(),
		LastSentAt:  now,
	}
	if err := s.queryRepo.Create(ctx, s.db, query); err != nil {
		return nil, err
	}
	query.Challenge = challenge
	logger.Info("Query created", "query_id", query.QueryID, "challenge_id", challenge.ChallengeID, "language", query.Language)

	if err := s.deliver(ctx, query, kind); err != nil {
		return query, err
	}
	return query, nil
}

func (s *inquisitor) resend(ctx context.Context, now time.Time, last *model.Query) (*model.Query, error) {
	if last.Challenge == nil {
		challenge, err := s.challengeRepo.FindByID(ctx, s.db, last.ChallengeID)
		if err != nil {
			return nil, err
		}
		last.Challenge = challenge
	}
	if err := s.deliver(ctx, last, metrics.KindResend); err != nil {
		return last, err
	}
	if err := s.queryRepo.UpdateLastSentAt(ctx, s.db, last.QueryID, now); err != nil {
		return last, err
	}
	last.LastSentAt = now
	return last, nil
}

func (s *inquisitor) deliver(ctx context.Context, query *model.Query, kind string) error {
	challenge := query.Challenge
	if challenge.Student == nil {
		return fmt.Errorf("inquisitor.deliver: challenge %s has no student loaded", challenge.ChallengeID)
	}
	if err := s.messenger.Text(ctx, challenge.Student.PhoneNumber, query.Prompt(challenge)); err != nil {
		metrics.MessagesFailed.Inc()
		return fmt.Errorf("%w: query %s: %w", model.ErrDeliveryFailed, query.QueryID, err)
	}
	metrics.QueriesSent.WithLabelValues(kind).Inc()
	return nil
}

func (s *inquisitor) randomLanguage() model.QueryLanguage {
	if s.random.Float64() < s.cfg.LearningLanguageWeight {
		return model.LanguageLearning
	}
	return model.LanguageNative
}
