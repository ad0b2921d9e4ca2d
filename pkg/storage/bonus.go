package storage

import (
	"context"

	"github.com/alexkh/token-ledger/pkg/models"
)

// BonusStore defines the interface for self-service credits. Both grants
// create an already-completed bonus transaction and increment the balance in
// the same atomic unit as their once-per-period gate, so two concurrent
// claims cannot both commit.
type BonusStore interface {
	// GrantDailyBonus commits a daily bonus claim, gated on the stored claim
	// date being strictly before the claim's calendar day. Returns
	// ErrBonusAlreadyClaimed if the gate fails at commit time.
	GrantDailyBonus(ctx context.Context, claim *models.DailyBonusClaim) error

	// GrantStreakBonus commits a streak threshold reward, gated on the
	// threshold not having been paid before. Returns ErrBonusAlreadyClaimed
	// if the gate fails at commit time.
	GrantStreakBonus(ctx context.Context, claim *models.StreakBonusClaim) error
}
