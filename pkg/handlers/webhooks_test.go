package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/signature"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/alexkh/token-ledger/pkg/storage/mocks"
)

const webhookSecret = "topsecret"

func newWebhookHandler(store storage.ApiStore) (*ApiHandler, *signature.Verifier) {
	verifier := signature.NewVerifier(webhookSecret, zerolog.Nop())
	return NewApiHandler(store, verifier, nil, zerolog.Nop()), verifier
}

func deliverWebhook(t *testing.T, h *ApiHandler, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("X-Signature", sig)
	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, req)
	return rec
}

func notificationBody(t *testing.T, txID, status string) []byte {
	t.Helper()
	body, err := json.Marshal(models.ProviderNotification{
		TransactionId: "ext-789",
		Status:        status,
		Data:          models.NotificationData{TransactionId: txID, UserId: "user1", Tokens: 110},
	})
	assert.NoError(t, err)
	return body
}

func TestPaymentWebhook(t *testing.T) {
	txID := uuid.New().String()
	pendingTx := func() *models.Transaction {
		return &models.Transaction{Id: txID, UserId: "user1", Amount: 110, Type: models.TypeTopup, Status: models.PENDING}
	}

	t.Run("Completed Settles Pending Transaction", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		mockStore.On("GetTransaction", mock.Anything, txID).Return(pendingTx(), nil).Once()
		mockStore.On("CompleteTopup", mock.Anything, mock.Anything, "ext-789").Return(nil).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Replay Acknowledged Without Mutation", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		completed := pendingTx()
		completed.Status = models.COMPLETED
		mockStore.On("GetTransaction", mock.Anything, txID).Return(completed, nil).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "CompleteTopup")
	})

	t.Run("Invalid Signature Rejected Without Mutation", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, _ := newWebhookHandler(mockStore)

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, "deadbeef")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"code":13}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "GetTransaction")
		mockStore.AssertNotCalled(t, "CompleteTopup")
	})

	t.Run("Tampered Body Rejected", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		sig := verifier.Sign(body)
		tampered := bytes.Replace(body, []byte(`"tokens":110`), []byte(`"tokens":999`), 1)
		assert.NotEqual(t, body, tampered)

		rec := deliverWebhook(t, h, tampered, sig)

		assert.JSONEq(t, `{"code":13}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "GetTransaction")
	})

	t.Run("Unknown Transaction Acknowledged Benignly", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		mockStore.On("GetTransaction", mock.Anything, txID).
			Return(nil, storage.ErrTransactionNotFound).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Declined Marks Failed Without Credit", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		mockStore.On("GetTransaction", mock.Anything, txID).Return(pendingTx(), nil).Once()
		mockStore.On("FailTopup", mock.Anything, mock.Anything, "ext-789", "Declined").Return(nil).Once()

		body := notificationBody(t, txID, models.ProviderStatusDeclined)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "CompleteTopup")
		mockStore.AssertExpectations(t)
	})

	t.Run("No Resurrection Of Failed Transaction", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		failed := pendingTx()
		failed.Status = models.FAILED
		mockStore.On("GetTransaction", mock.Anything, txID).Return(failed, nil).Once()
		// The storage condition refuses the transition; the handler treats it
		// as an idempotent no-op.
		mockStore.On("CompleteTopup", mock.Anything, mock.Anything, "ext-789").
			Return(storage.ErrAlreadyFinalized).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Unknown Provider Status Ignored", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		mockStore.On("GetTransaction", mock.Anything, txID).Return(pendingTx(), nil).Once()

		body := notificationBody(t, txID, "Chargeback")
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "CompleteTopup")
		mockStore.AssertNotCalled(t, "FailTopup")
	})

	t.Run("Storage Error Requests Retry", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		mockStore.On("GetTransaction", mock.Anything, txID).Return(pendingTx(), nil).Once()
		mockStore.On("CompleteTopup", mock.Anything, mock.Anything, "ext-789").
			Return(errors.New("dynamodb unavailable")).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"code":13}`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Missing Transaction Id Acknowledged", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h, verifier := newWebhookHandler(mockStore)

		body := []byte(`{"TransactionId":"ext-789","Status":"Completed","Data":{}}`)
		rec := deliverWebhook(t, h, body, verifier.Sign(body))

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertNotCalled(t, "GetTransaction")
	})

	t.Run("Skip Mode Processes Without Signature", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		verifier := signature.NewVerifier("", zerolog.Nop())
		h := NewApiHandler(mockStore, verifier, nil, zerolog.Nop())

		mockStore.On("GetTransaction", mock.Anything, txID).Return(pendingTx(), nil).Once()
		mockStore.On("CompleteTopup", mock.Anything, mock.Anything, "ext-789").Return(nil).Once()

		body := notificationBody(t, txID, models.ProviderStatusCompleted)
		rec := deliverWebhook(t, h, body, "")

		assert.JSONEq(t, `{"code":0}`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})
}
