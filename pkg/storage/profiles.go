package storage

import (
	"context"

	"github.com/alexkh/token-ledger/pkg/models"
)

// ProfileStore defines the interface for managing balance-holding profiles.
type ProfileStore interface {
	// GetProfile retrieves a user's profile by their user ID.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// CreateProfile creates a new profile with a zero balance.
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// ListProfiles retrieves all profiles from the storage.
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}
