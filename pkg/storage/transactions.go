package storage

import (
	"context"
	"time"

	"github.com/alexkh/token-ledger/pkg/models"
)

// TransactionReader defines the interface for reading transaction data.
type TransactionReader interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// ListTransactionsByUserID retrieves all transactions for a specific user.
	ListTransactionsByUserID(ctx context.Context, userID string) ([]models.Transaction, error)

	// GetStalePendingTopups retrieves top-ups that have been 'pending' for
	// longer than the specified duration.
	GetStalePendingTopups(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error)
}

// TransactionInitiator defines the interface for recording a new top-up
// intent before the provider settles it.
type TransactionInitiator interface {
	// CreateTopup persists a new pending top-up transaction and returns it
	// with server-side fields (id, timestamps) populated. No balance is
	// mutated until the provider's webhook confirms settlement.
	CreateTopup(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
}

// TransactionStore combines the reader and initiator interfaces.
type TransactionStore interface {
	TransactionReader
	TransactionInitiator
}
