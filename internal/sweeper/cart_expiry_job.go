package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/bazaarhq/bazaar-backend/internal/cart"
	"github.com/bazaarhq/bazaar-backend/pkg/logger"
)

// CartExpiryJobParams configure the cart expiry sweep.
type CartExpiryJobParams struct {
	Logger *logger.Logger
	Repo   cart.SweeperRepository
	Now    func() time.Time
}

// NewCartExpiryJob builds the job that reclaims lapsed cart state: carts past
// their lease are deactivated, and price locks and stock reservations past
// their expiry are deleted regardless of cart activity.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &cartExpiryJob{
		logg: params.Logger,
		repo: params.Repo,
		now:  now,
	}, nil
}

type cartExpiryJob struct {
	logg *logger.Logger
	repo cart.SweeperRepository
	now  func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()

	var errs []error
	if err := j.deactivateCarts(ctx, cutoff); err != nil {
		errs = append(errs, err)
	}
	if err := j.deleteLocks(ctx, cutoff); err != nil {
		errs = append(errs, err)
	}
	if err := j.deleteReservations(ctx, cutoff); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *cartExpiryJob) deactivateCarts(ctx context.Context, cutoff time.Time) error {
	count, err := j.repo.DeactivateCartsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("deactivate expired carts: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "expired cart loop complete")
	return nil
}

func (j *cartExpiryJob) deleteLocks(ctx context.Context, cutoff time.Time) error {
	count, err := j.repo.DeleteLocksExpiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete expired price locks: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "expired price lock loop complete")
	return nil
}

func (j *cartExpiryJob) deleteReservations(ctx context.Context, cutoff time.Time) error {
	count, err := j.repo.DeleteReservationsExpiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete expired reservations: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "expired reservation loop complete")
	return nil
}
