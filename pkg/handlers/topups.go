package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alexkh/token-ledger/pkg/middleware"
	"github.com/alexkh/token-ledger/pkg/models"
)

// CreateTopup records a pending top-up and hands the transaction id back to
// the client for the provider checkout. No tokens move until the provider's
// webhook confirms settlement.
func (h *ApiHandler) CreateTopup(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req models.TopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tokens <= 0 || req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "tokens and price must be positive")
		return
	}
	if req.Bonus < 0 {
		respondError(w, http.StatusBadRequest, "bonus must not be negative")
		return
	}

	tx := &models.Transaction{
		UserId: identity.UserID,
		Amount: req.Tokens + req.Bonus,
		Metadata: models.Metadata{
			PackageID:   req.PackageId,
			Tokens:      req.Tokens,
			Bonus:       req.Bonus,
			Price:       req.Price,
			Description: req.Description,
		},
	}

	created, err := h.Store.CreateTopup(r.Context(), tx)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to create topup")
		respondError(w, http.StatusInternalServerError, "failed to create topup")
		return
	}

	respondJSON(w, http.StatusCreated, models.TopupResponse{
		TransactionId: created.Id,
		UserId:        identity.UserID,
		Email:         identity.Email,
	})
}
