// Package reconcile implements the periodic safety net behind the webhook
// path: expiring abandoned top-ups and detecting balances that no longer
// equal the sum of their completed transactions.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/scheduler"
	"github.com/alexkh/token-ledger/pkg/storage"
)

const expiredReason = "expired by reconciliation"

// Store is the subset of the data layer the sweep needs.
type Store interface {
	storage.TransactionReader
	storage.ReconcilerStore
	storage.ProfileStore
}

// Sweeper runs the reconciliation pass. Every step is idempotent: expiry is
// condition-guarded so a racing webhook wins, and drift repairs go through a
// queue to a worker that re-checks before writing.
type Sweeper struct {
	Store           Store
	Scheduler       scheduler.RepairScheduler
	Logger          zerolog.Logger
	StalePendingAge time.Duration
}

// NewSweeper creates a Sweeper.
func NewSweeper(store Store, sched scheduler.RepairScheduler, logger zerolog.Logger, stalePendingAge time.Duration) *Sweeper {
	return &Sweeper{
		Store:           store,
		Scheduler:       sched,
		Logger:          logger,
		StalePendingAge: stalePendingAge,
	}
}

// Run executes one full sweep. A failure in one phase does not stop the
// other; both error sets are joined for the caller.
func (s *Sweeper) Run(ctx context.Context) error {
	return errors.Join(
		s.ExpireStalePendings(ctx),
		s.DetectDrift(ctx),
	)
}

// ExpireStalePendings fails pending top-ups older than StalePendingAge. The
// provider either never called back or the user abandoned checkout; if a
// late settlement webhook is racing us, its status condition or ours loses
// cleanly and the transaction ends up in exactly one terminal state.
func (s *Sweeper) ExpireStalePendings(ctx context.Context) error {
	stale, err := s.Store.GetStalePendingTopups(ctx, s.StalePendingAge)
	if err != nil {
		return fmt.Errorf("failed to list stale pending top-ups: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}
	s.Logger.Info().Int("count", len(stale)).Msg("expiring stale pending top-ups")

	var failed int
	for i := range stale {
		tx := &stale[i]
		if err := s.Store.FailTopup(ctx, tx, "", expiredReason); err != nil {
			if errors.Is(err, storage.ErrAlreadyFinalized) {
				// A webhook settled it between our read and the write.
				continue
			}
			s.Logger.Error().Err(err).Str("transaction_id", tx.Id).Msg("failed to expire transaction")
			failed++
			continue
		}
		s.Logger.Info().Str("transaction_id", tx.Id).Str("user_id", tx.UserId).Msg("expired stale pending top-up")
	}

	if failed > 0 {
		return fmt.Errorf("failed to expire %d of %d stale top-ups", failed, len(stale))
	}
	return nil
}

// DetectDrift recomputes each profile's completed-sum and enqueues a repair
// for every balance that disagrees. The sweep never writes balances itself;
// the repair worker applies a compare-and-set pinned to what we observed.
func (s *Sweeper) DetectDrift(ctx context.Context) error {
	profiles, err := s.Store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	var failed int
	for i := range profiles {
		profile := &profiles[i]

		expected, err := s.completedSum(ctx, profile.Id)
		if err != nil {
			s.Logger.Error().Err(err).Str("user_id", profile.Id).Msg("failed to recompute balance")
			failed++
			continue
		}

		if expected == profile.TokensBalance {
			continue
		}

		s.Logger.Warn().
			Str("user_id", profile.Id).
			Int64("observed", profile.TokensBalance).
			Int64("expected", expected).
			Msg("balance drift detected")

		repair := &models.RepairRequest{
			UserId:   profile.Id,
			Observed: profile.TokensBalance,
			Expected: expected,
		}
		if err := s.Scheduler.ScheduleRepair(ctx, repair); err != nil {
			s.Logger.Error().Err(err).Str("user_id", profile.Id).Msg("failed to enqueue repair")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("drift detection failed for %d of %d profiles", failed, len(profiles))
	}
	return nil
}

func (s *Sweeper) completedSum(ctx context.Context, userID string) (int64, error) {
	transactions, err := s.Store.ListTransactionsByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return sumCompleted(transactions), nil
}
