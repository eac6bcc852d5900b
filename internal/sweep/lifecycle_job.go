package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/haythemsaa/boxibox-backend/pkg/logger"
)

type lifecycleEngine interface {
	BeginDue(ctx context.Context, now time.Time) (int, error)
	EndExpired(ctx context.Context, now time.Time) (int, error)
	RemindEndingSoon(ctx context.Context, now time.Time) (int, error)
}

// LifecycleJobParams configures the scheduled auction lifecycle work.
type LifecycleJobParams struct {
	Logger   *logger.Logger
	Auctions lifecycleEngine
}

// NewLifecycleJob constructs the auction lifecycle sweep job.
func NewLifecycleJob(params LifecycleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Auctions == nil {
		return nil, fmt.Errorf("auction service required")
	}
	return &lifecycleJob{
		logg:     params.Logger,
		auctions: params.Auctions,
		now:      time.Now,
	}, nil
}

type lifecycleJob struct {
	logg     *logger.Logger
	auctions lifecycleEngine
	now      func() time.Time
}

func (j *lifecycleJob) Name() string { return "auction-lifecycle" }

// Run activates due auctions, closes expired ones, and sends closing
// reminders. The three passes are independent; failures aggregate.
func (j *lifecycleJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs []error

	opened, err := j.auctions.BeginDue(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("beginning due auctions: %w", err))
	}
	closed, err := j.auctions.EndExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("ending expired auctions: %w", err))
	}
	reminded, err := j.auctions.RemindEndingSoon(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("sending closing reminders: %w", err))
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"opened":   opened,
		"closed":   closed,
		"reminded": reminded,
	}), "auction lifecycle sweep complete")
	return multierr.Combine(errs...)
}
