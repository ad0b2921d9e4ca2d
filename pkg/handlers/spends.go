package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexkh/token-ledger/pkg/middleware"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// CreateSpend debits tokens from the caller for a generation request. The
// debit and the spend transaction commit atomically, so the balance can never
// go negative.
func (h *ApiHandler) CreateSpend(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req models.SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tokens <= 0 {
		respondError(w, http.StatusBadRequest, "tokens must be positive")
		return
	}

	tx := &models.Transaction{
		UserId:   identity.UserID,
		Amount:   -req.Tokens,
		Metadata: models.Metadata{Description: req.Description},
	}

	created, err := h.Store.CreateSpend(r.Context(), tx)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientTokens) {
			respondError(w, http.StatusUnprocessableEntity, "insufficient tokens")
			return
		}
		h.Logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to create spend")
		respondError(w, http.StatusInternalServerError, "failed to create spend")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}
