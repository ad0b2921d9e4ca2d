package storage

import (
	"context"

	"github.com/alexkh/token-ledger/pkg/models"
)

// SpendStore defines the interface for debiting tokens against generation
// requests. The debit and the completed spend transaction commit as one
// atomic unit, conditioned on the balance staying non-negative.
type SpendStore interface {
	// CreateSpend records a completed spend transaction (negative amount)
	// and debits the user's balance. Returns ErrInsufficientTokens if the
	// balance cannot cover the spend.
	CreateSpend(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
}
