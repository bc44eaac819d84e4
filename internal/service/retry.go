package service

import (
	"context"
	"errors"
	"fmt"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"
)

// withRetry runs fn until it succeeds, fails for a reason other than a lost
// concurrent write, or limit runs are spent. A final concurrency failure is
// reported as model.ErrConflict.
func withRetry(ctx context.Context, limit int, op string, fn func() error) error {
	logger := middleware.GetLogger(ctx)

	var err error
	for run := 1; run <= max(1, limit); run++ {
		if err = fn(); err == nil || !repository.IsRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("Concurrent write detected, retrying", "op", op, "run", run, "error", err)
	}

	logger.Error("Giving up after concurrent writes", "op", op, "runs", max(1, limit), "error", err)
	if errors.Is(err, model.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrConflict, err)
}
