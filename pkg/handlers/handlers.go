package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/bonus"
	"github.com/alexkh/token-ledger/pkg/gamify"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/signature"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// ApiHandler implements the HTTP surface of the token ledger.
// It holds our application's dependencies, including the storage layer.
type ApiHandler struct {
	Store    storage.ApiStore
	Verifier *signature.Verifier
	Bonuses  *bonus.Engine
	Logger   zerolog.Logger
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(store storage.ApiStore, verifier *signature.Verifier, bonuses *bonus.Engine, logger zerolog.Logger) *ApiHandler {
	return &ApiHandler{
		Store:    store,
		Verifier: verifier,
		Bonuses:  bonuses,
		Logger:   logger,
	}
}

// errorResponse is the structured error body for the authenticated API.
// The webhook endpoint never uses it; that boundary speaks ack codes only.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// profileView fills in the derived level before a profile leaves the API.
// Level is never stored; experience is the single monotonic counter.
func profileView(p *models.Profile) *models.Profile {
	p.Level = gamify.LevelForExperience(p.Experience)
	return p
}
