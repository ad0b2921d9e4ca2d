package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexkh/token-ledger/pkg/middleware"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// CreateProfile provisions a balance-holding profile for the caller. The
// identity comes from the bearer token, never the body, so a caller cannot
// create profiles for other users.
func (h *ApiHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	profile := &models.Profile{
		Id:    identity.UserID,
		Email: identity.Email,
	}

	created, err := h.Store.CreateProfile(r.Context(), profile)
	if err != nil {
		if errors.Is(err, storage.ErrProfileExists) {
			respondError(w, http.StatusConflict, "profile already exists")
			return
		}
		h.Logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to create profile")
		respondError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	respondJSON(w, http.StatusCreated, profileView(created))
}

// GetProfile returns a user's profile with the derived level filled in.
func (h *ApiHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.Store.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to get profile")
		respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, profileView(profile))
}

// ListTransactions returns a user's full transaction history.
func (h *ApiHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	transactions, err := h.Store.ListTransactionsByUserID(r.Context(), userID)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to list transactions")
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	respondJSON(w, http.StatusOK, transactions)
}
