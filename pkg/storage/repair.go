package storage

import (
	"context"
)

// RepairStore defines the privileged interface used by the reconciliation
// sweep to restore the sum-consistency invariant: a profile's balance must
// equal the sum of its completed transaction amounts.
type RepairStore interface {
	// RepairProfileBalance sets the balance to expected, conditioned on the
	// balance still being observed. Returns ErrBalanceDrifted if a
	// concurrent mutation won the race; the repair is then retried by the
	// next sweep against the fresher balance.
	RepairProfileBalance(ctx context.Context, userID string, observed, expected int64) error
}
