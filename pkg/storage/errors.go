package storage

import "errors"

// ErrTransactionNotFound is returned when no transaction exists for the given ID.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrProfileNotFound is returned when no profile exists for the given user ID.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned when creating a profile for a user that already has one.
var ErrProfileExists = errors.New("profile already exists")

// ErrAlreadyFinalized is returned when a status transition is attempted on a
// transaction that already reached a terminal state. Callers treat it as an
// idempotent no-op, not a failure.
var ErrAlreadyFinalized = errors.New("transaction already finalized")

// ErrBonusAlreadyClaimed is returned when the bonus claim gate fails at commit time.
var ErrBonusAlreadyClaimed = errors.New("bonus already claimed")

// ErrInsufficientTokens is returned when a spend would take the balance negative.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// ErrBalanceDrifted is returned when a repair's compare-and-set loses to a
// concurrent balance mutation; the next sweep retries.
var ErrBalanceDrifted = errors.New("balance changed during repair")
