package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// RepairStore is the subset of the data layer the repair worker needs.
type RepairStore interface {
	storage.TransactionReader
	storage.ProfileStore
	storage.RepairStore
}

// Repairer applies queued balance repairs. It never trusts the queued
// numbers blindly: the profile and the completed-sum are recomputed from
// current state, and the write is a compare-and-set on the balance actually
// observed, so a repair raced by live traffic backs off instead of
// clobbering it.
type Repairer struct {
	Store  RepairStore
	Logger zerolog.Logger
}

// NewRepairer creates a Repairer.
func NewRepairer(store RepairStore, logger zerolog.Logger) *Repairer {
	return &Repairer{Store: store, Logger: logger}
}

// Repair restores the sum-consistency invariant for one user. Idempotent: a
// balance that is already consistent, or one that moved since the sweep, is
// left alone.
func (r *Repairer) Repair(ctx context.Context, req *models.RepairRequest) error {
	profile, err := r.Store.GetProfile(ctx, req.UserId)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			r.Logger.Warn().Str("user_id", req.UserId).Msg("repair requested for missing profile")
			return nil
		}
		return fmt.Errorf("failed to load profile for repair: %w", err)
	}

	transactions, err := r.Store.ListTransactionsByUserID(ctx, req.UserId)
	if err != nil {
		return fmt.Errorf("failed to recompute balance for repair: %w", err)
	}
	expected := sumCompleted(transactions)

	if profile.TokensBalance == expected {
		r.Logger.Info().Str("user_id", req.UserId).Msg("balance already consistent, nothing to repair")
		return nil
	}

	err = r.Store.RepairProfileBalance(ctx, req.UserId, profile.TokensBalance, expected)
	if err != nil {
		if errors.Is(err, storage.ErrBalanceDrifted) {
			// Live traffic moved the balance under us. The next sweep
			// recomputes from fresh state.
			r.Logger.Warn().Str("user_id", req.UserId).Msg("balance moved during repair, deferring to next sweep")
			return nil
		}
		return fmt.Errorf("failed to repair balance: %w", err)
	}

	r.Logger.Info().
		Str("user_id", req.UserId).
		Int64("observed", profile.TokensBalance).
		Int64("expected", expected).
		Msg("repaired balance")
	return nil
}

func sumCompleted(transactions []models.Transaction) int64 {
	var sum int64
	for _, tx := range transactions {
		if tx.Status == models.COMPLETED {
			sum += tx.Amount
		}
	}
	return sum
}
