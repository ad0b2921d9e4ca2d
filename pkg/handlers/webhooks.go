package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// PaymentWebhook reconciles provider settlement notifications against the
// ledger. The response is always HTTP 200 with one of two ack codes: 0 stops
// the provider's retries, 13 requests another delivery. Every internal
// failure is converted into an ack; nothing unwinds past this handler.
//
// Replays are harmless end to end: an already-completed transaction is
// acknowledged without touching the balance, and the storage layer's status
// condition closes the race two concurrent deliveries would otherwise win
// together.
func (h *ApiHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ack := func(code int) {
		respondJSON(w, http.StatusOK, models.WebhookAck{Code: code})
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error().Err(err).Msg("webhook: failed to read body")
		ack(models.AckCodeRejected)
		return
	}

	var note models.ProviderNotification
	if err := json.Unmarshal(body, &note); err != nil || note.Data.TransactionId == "" {
		// Malformed or irrelevant callback. Retrying cannot help, so stop it.
		h.Logger.Warn().Err(err).Msg("webhook: notification without transaction id")
		ack(models.AckCodeOK)
		return
	}

	// The signature covers the exact raw bytes. Nothing parsed out of the
	// body is trusted until this passes.
	if !h.Verifier.Verify(body, r.Header.Get("X-Signature")) {
		h.Logger.Warn().Str("transaction_id", note.Data.TransactionId).Msg("webhook: signature verification failed")
		ack(models.AckCodeRejected)
		return
	}

	tx, err := h.Store.GetTransaction(r.Context(), note.Data.TransactionId)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			h.Logger.Warn().Str("transaction_id", note.Data.TransactionId).Msg("webhook: unknown transaction")
			ack(models.AckCodeOK)
			return
		}
		h.Logger.Error().Err(err).Msg("webhook: failed to load transaction")
		ack(models.AckCodeRejected)
		return
	}

	// Idempotency gate for replayed deliveries.
	if tx.Status == models.COMPLETED {
		ack(models.AckCodeOK)
		return
	}

	// The stored transaction is authoritative for the credit amount; the
	// provider's echo is informational only.
	if note.Data.Tokens != 0 && note.Data.Tokens != tx.Amount {
		h.Logger.Warn().
			Str("transaction_id", tx.Id).
			Int64("stored_amount", tx.Amount).
			Int64("echoed_tokens", note.Data.Tokens).
			Msg("webhook: provider token amount disagrees with stored transaction")
	}

	switch note.Status {
	case models.ProviderStatusCompleted:
		err = h.Store.CompleteTopup(r.Context(), tx, note.TransactionId)
	case models.ProviderStatusDeclined, models.ProviderStatusCancelled:
		err = h.Store.FailTopup(r.Context(), tx, note.TransactionId, note.Status)
	default:
		// Unrecognized intermediate provider state. Not terminal, not an error.
		h.Logger.Info().
			Str("transaction_id", tx.Id).
			Str("provider_status", note.Status).
			Msg("webhook: ignoring unrecognized provider status")
		ack(models.AckCodeOK)
		return
	}

	if err != nil {
		if errors.Is(err, storage.ErrAlreadyFinalized) {
			// Lost a race with another delivery, or the transaction was
			// already terminal. Either way the ledger holds a terminal truth.
			ack(models.AckCodeOK)
			return
		}
		h.Logger.Error().Err(err).Str("transaction_id", tx.Id).Msg("webhook: failed to finalize transaction")
		ack(models.AckCodeRejected)
		return
	}

	ack(models.AckCodeOK)
}
