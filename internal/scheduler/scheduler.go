// Package scheduler drives the quiz loop on a fixed cadence.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/service"

	"github.com/go-co-op/gocron"
)

// tickTimeout bounds one tick, including the SMS round trip.
const tickTimeout = 30 * time.Second

// Scheduler runs Inquisitor.Tick every tick interval.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	inquisitor service.Inquisitor
	interval   time.Duration
	logger     *slog.Logger
}

func New(inquisitor service.Inquisitor, cfg config.InquisitorConfig, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(cfg.Location())
	// A slow tick must not overlap with the next one.
	s.SingletonModeAll()

	interval := cfg.TickInterval
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}
	return &Scheduler{
		scheduler:  s,
		inquisitor: inquisitor,
		interval:   interval,
		logger:     logger.With("component", "scheduler"),
	}
}

// Start schedules the tick job and returns without blocking.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.RunTick); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started", "interval", s.interval.String())
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Scheduler stopped")
}

// RunTick hands the most recent query to the inquisitor.
func (s *Scheduler) RunTick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	ctx = middleware.WithLogger(ctx, s.logger)

	last, err := s.inquisitor.LatestQuery(ctx)
	if err != nil {
		s.logger.Error("Failed to load latest query", "error", err)
		return
	}

	query, err := s.inquisitor.Tick(ctx, last)
	if err != nil {
		s.logger.Error("Tick failed", "error", err)
	}
	if query != nil && query != last {
		s.logger.Info("Tick sent a new query", "query_id", query.QueryID, "challenge_id", query.ChallengeID)
	}
}
