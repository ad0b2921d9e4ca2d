package storage

import (
	"context"

	"github.com/alexkh/token-ledger/pkg/models"
)

// ReconcilerStore defines the privileged interface for driving a transaction
// to a terminal state. These operations are complex and involve atomic writes
// across both tables (transactions, profiles). They should only be exposed to
// the webhook reconciler and the reconciliation sweep.
type ReconcilerStore interface {
	// CompleteTopup atomically transitions the transaction from pending to
	// completed, records the provider's settlement ID, and credits the
	// user's balance by the transaction amount. Returns ErrAlreadyFinalized
	// if the transaction already left the pending state, in which case
	// nothing was written.
	CompleteTopup(ctx context.Context, tx *models.Transaction, externalID string) error

	// FailTopup atomically transitions the transaction from pending to
	// failed, records the provider's settlement ID and failure reason, and
	// performs no balance mutation. Returns ErrAlreadyFinalized if the
	// transaction already left the pending state.
	FailTopup(ctx context.Context, tx *models.Transaction, externalID, reason string) error
}
