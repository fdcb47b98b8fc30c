package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
	"github.com/zatekoja/workshopbooking/pkg/retry"
)

// Syncer applies the read and write policies to calls against the hosted
// backend. Reads are retried with linear backoff; writes get one attempt.
type Syncer struct {
	cfg     retry.Config
	metrics *observability.Metrics
}

// NewSyncer creates a syncer using cfg for reads
func NewSyncer(cfg retry.Config, metrics *observability.Metrics) *Syncer {
	return &Syncer{cfg: cfg, metrics: metrics}
}

// retryable reports whether another attempt could change the outcome
func retryable(err error) bool {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation,
		apperrors.ErrorTypeUnauthenticated,
		apperrors.ErrorTypeAuthorization,
		apperrors.ErrorTypeNotFound,
		apperrors.ErrorTypeConflict:
		return false
	}
	return true
}

// Fetch runs a read through the retry policy. Pending retries stop when ctx
// is done. Once retries are exhausted the last failure is returned as a
// network error.
func Fetch[T any](ctx context.Context, s *Syncer, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		out  T
		last error
	)

	err := retry.DoWithLog(ctx, s.cfg, op, func() error {
		v, err := fn(ctx)
		if err != nil {
			last = err
			if !retryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		out = v
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Ctx(ctx).Warn().Err(err).
			Str("operation", op).
			Int("attempt", attempt).
			Dur("retry_in", nextDelay).
			Msg("fetch failed, retrying")
		observability.RecordRetry(ctx, s.metrics, op)
	})
	if err == nil {
		return out, nil
	}

	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, apperrors.NewNetworkError(op+" cancelled", ctxErr)
	}
	if last == nil {
		return zero, apperrors.NewNetworkError("failed to load "+op, err)
	}
	if !retryable(last) || apperrors.Is(last, apperrors.ErrorTypeNetwork) {
		return zero, last
	}
	return zero, apperrors.NewNetworkError("failed to load "+op, last)
}

// Write runs a mutation exactly once
func (s *Syncer) Write(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("write failed")
		return err
	}
	return nil
}
