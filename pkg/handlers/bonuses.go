package handlers

import (
	"errors"
	"net/http"

	"github.com/alexkh/token-ledger/pkg/bonus"
	"github.com/alexkh/token-ledger/pkg/middleware"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// ClaimDailyBonus grants the once-per-day login bonus for the caller.
func (h *ApiHandler) ClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	profile, err := h.Bonuses.ClaimDaily(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBonusAlreadyClaimed):
			respondError(w, http.StatusConflict, "daily bonus already claimed")
		case errors.Is(err, storage.ErrProfileNotFound):
			respondError(w, http.StatusNotFound, "profile not found")
		default:
			h.Logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to grant daily bonus")
			respondError(w, http.StatusInternalServerError, "failed to grant daily bonus")
		}
		return
	}

	respondJSON(w, http.StatusOK, profileView(profile))
}

// streakClaimResponse reports the paid milestone alongside the fresh profile.
type streakClaimResponse struct {
	Reward    int64           `json:"reward"`
	Threshold int             `json:"threshold"`
	Profile   *models.Profile `json:"profile"`
}

// ClaimStreakBonus pays out the caller's highest unpaid streak milestone.
func (h *ApiHandler) ClaimStreakBonus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	profile, milestone, err := h.Bonuses.ClaimStreak(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, bonus.ErrNothingToClaim), errors.Is(err, storage.ErrBonusAlreadyClaimed):
			respondError(w, http.StatusConflict, "no streak reward to claim")
		case errors.Is(err, storage.ErrProfileNotFound):
			respondError(w, http.StatusNotFound, "profile not found")
		default:
			h.Logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to grant streak bonus")
			respondError(w, http.StatusInternalServerError, "failed to grant streak bonus")
		}
		return
	}

	respondJSON(w, http.StatusOK, streakClaimResponse{
		Reward:    milestone.Reward,
		Threshold: milestone.Days,
		Profile:   profileView(profile),
	})
}
