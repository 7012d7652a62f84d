// Package worker runs background jobs that keep the store consistent.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const retryBatch = 100

type DeductionRetrier interface {
	RetryFailedDeductions(ctx context.Context, orderID *uuid.UUID, limit int) (int, error)
}

// DeductionPoller re-applies failed stock deductions on a fixed tick until
// they succeed.
type DeductionPoller struct {
	svc  DeductionRetrier
	tick time.Duration
	log  *slog.Logger
}

func NewDeductionPoller(svc DeductionRetrier, tick time.Duration, log *slog.Logger) *DeductionPoller {
	if log == nil {
		log = slog.Default()
	}
	return &DeductionPoller{svc: svc, tick: tick, log: log.With("worker", "deduction_retrier")}
}

// Run blocks until ctx is cancelled. A non-positive tick disables the poller.
func (p *DeductionPoller) Run(ctx context.Context) {
	if p.tick <= 0 {
		p.log.Info("deduction_retrier_disabled")
		return
	}
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *DeductionPoller) RunOnce(ctx context.Context) int {
	n, err := p.svc.RetryFailedDeductions(ctx, nil, retryBatch)
	if err != nil {
		p.log.Warn("deduction_retry_failed", "error", err)
		return n
	}
	if n > 0 {
		p.log.Info("deduction_retry_applied", "count", n)
	}
	return n
}
