package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/alexkh/token-ledger/pkg/storage/mocks"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h := NewApiHandler(mockStore, nil, nil, zerolog.Nop())

		mockStore.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
			return p.Id == "user1" && p.Email == "user1@example.com"
		})).Return(&models.Profile{Id: "user1", Email: "user1@example.com"}, nil).Once()

		rec := httptest.NewRecorder()
		h.CreateProfile(rec, authedRequest(http.MethodPost, "/api/profiles", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockStore.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h := NewApiHandler(mockStore, nil, nil, zerolog.Nop())

		mockStore.On("CreateProfile", mock.Anything, mock.Anything).
			Return(nil, storage.ErrProfileExists).Once()

		rec := httptest.NewRecorder()
		h.CreateProfile(rec, authedRequest(http.MethodPost, "/api/profiles", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockStore.AssertExpectations(t)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("Success Derives Level", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h := NewApiHandler(mockStore, nil, nil, zerolog.Nop())

		mockStore.On("GetProfile", mock.Anything, "user1").
			Return(&models.Profile{Id: "user1", TokensBalance: 700, Experience: 700}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/profiles/user1", nil), "userID", "user1")
		rec := httptest.NewRecorder()
		h.GetProfile(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var profile models.Profile
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
		assert.Equal(t, 3, profile.Level)
		mockStore.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h := NewApiHandler(mockStore, nil, nil, zerolog.Nop())

		mockStore.On("GetProfile", mock.Anything, "ghost").
			Return(nil, storage.ErrProfileNotFound).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/profiles/ghost", nil), "userID", "ghost")
		rec := httptest.NewRecorder()
		h.GetProfile(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("Empty History Returns Empty Array", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		h := NewApiHandler(mockStore, nil, nil, zerolog.Nop())

		mockStore.On("ListTransactionsByUserID", mock.Anything, "user1").
			Return(nil, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/profiles/user1/transactions", nil), "userID", "user1")
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		mockStore.AssertExpectations(t)
	})
}
