// Package bonus implements the self-service credit rules: the daily login
// bonus and streak milestone rewards. The engine computes eligibility and
// streak arithmetic; the storage layer's condition expressions remain the
// authoritative once-only gates.
package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexkh/token-ledger/pkg/gamify"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// ErrNothingToClaim is returned when no unpaid streak milestone is reachable
// with the user's current streak.
var ErrNothingToClaim = errors.New("no unpaid streak milestone reached")

const dateLayout = "2006-01-02"

// Store is the subset of the data layer the engine needs.
type Store interface {
	storage.ProfileStore
	storage.BonusStore
}

// Engine grants bonuses. Calendar-day boundaries are evaluated in a fixed
// platform timezone so "a new day" means the same thing for every caller.
type Engine struct {
	store       Store
	loc         *time.Location
	dailyAmount int64

	// now is swappable for tests.
	now func() time.Time
}

// NewEngine creates a bonus engine.
func NewEngine(store Store, loc *time.Location, dailyAmount int64) *Engine {
	return &Engine{
		store:       store,
		loc:         loc,
		dailyAmount: dailyAmount,
		now:         time.Now,
	}
}

// ClaimDaily grants the once-per-calendar-day bonus and advances the streak:
// a claim on the day after the previous one extends the streak, any larger
// gap resets it to 1. The pre-check on the loaded profile only fails fast;
// the commit re-checks the claim date atomically, so two racing claims for
// the same day cannot both land. Returns the refreshed profile.
func (e *Engine) ClaimDaily(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now().In(e.loc)
	today := now.Format(dateLayout)
	if profile.DailyBonusClaimedOn == today {
		return nil, fmt.Errorf("user %s on %s: %w", userID, today, storage.ErrBonusAlreadyClaimed)
	}

	streak := 1
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if profile.DailyBonusClaimedOn == yesterday {
		streak = profile.StreakDays + 1
	}

	claim := &models.DailyBonusClaim{
		UserId:     userID,
		Amount:     e.dailyAmount,
		ClaimedOn:  today,
		ClaimedAt:  now,
		StreakDays: streak,
	}

	if err := e.store.GrantDailyBonus(ctx, claim); err != nil {
		return nil, err
	}

	return e.store.GetProfile(ctx, userID)
}

// ClaimStreak pays the highest unpaid milestone the user's streak has
// reached. Returns ErrNothingToClaim when the streak has not reached a new
// milestone; the storage gate turns a racing double-claim into
// ErrBonusAlreadyClaimed.
func (e *Engine) ClaimStreak(ctx context.Context, userID string) (*models.Profile, gamify.StreakMilestone, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, gamify.StreakMilestone{}, err
	}

	milestone, ok := gamify.StreakRewardFor(profile.StreakDays, profile.StreakPaidThrough)
	if !ok {
		return nil, gamify.StreakMilestone{}, fmt.Errorf("user %s at %d days: %w", userID, profile.StreakDays, ErrNothingToClaim)
	}

	claim := &models.StreakBonusClaim{
		UserId:    userID,
		Amount:    milestone.Reward,
		Threshold: milestone.Days,
		ClaimedAt: e.now().In(e.loc),
	}

	if err := e.store.GrantStreakBonus(ctx, claim); err != nil {
		return nil, gamify.StreakMilestone{}, err
	}

	refreshed, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, gamify.StreakMilestone{}, err
	}
	return refreshed, milestone, nil
}
