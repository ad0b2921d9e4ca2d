package models

import (
	"time"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	PENDING   TransactionStatus = "pending"
	COMPLETED TransactionStatus = "completed"
	FAILED    TransactionStatus = "failed"
)

// TransactionType defines the kind of balance movement a transaction records.
type TransactionType string

const (
	TypeTopup TransactionType = "topup"
	TypeBonus TransactionType = "bonus"
	TypeSpend TransactionType = "spend"
)

// Metadata carries free-form attributes attached to a transaction.
// Top-ups record the purchased package; failed transactions record the
// provider's reason in Error.
type Metadata struct {
	PackageID   string `json:"package_id,omitempty" dynamodbav:"package_id,omitempty"`
	Tokens      int64  `json:"tokens,omitempty" dynamodbav:"tokens,omitempty"`
	Bonus       int64  `json:"bonus,omitempty" dynamodbav:"bonus,omitempty"`
	Price       int64  `json:"price,omitempty" dynamodbav:"price,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Reason      string `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	Error       string `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// Transaction represents the internal domain model for a ledger transaction.
// Amount is signed: top-ups and bonuses are positive, spends negative.
// Status transitions pending -> {completed, failed} exactly once; bonus and
// spend transactions are created already completed.
type Transaction struct {
	Id         string            `json:"id" dynamodbav:"id"`
	UserId     string            `json:"user_id" dynamodbav:"user_id"`
	Amount     int64             `json:"amount" dynamodbav:"amount"`
	Type       TransactionType   `json:"type" dynamodbav:"type"`
	Status     TransactionStatus `json:"status" dynamodbav:"status"`
	ExternalId string            `json:"external_id,omitempty" dynamodbav:"external_id,omitempty"`
	Metadata   Metadata          `json:"metadata" dynamodbav:"metadata"`
	CreatedAt  time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// Profile represents a user's token balance and gamification state.
// TokensBalance is a materialized view: it must always equal the sum of the
// amounts of the user's completed transactions.
type Profile struct {
	Id                   string    `json:"id" dynamodbav:"id"`
	Email                string    `json:"email" dynamodbav:"email"`
	TokensBalance        int64     `json:"tokens_balance" dynamodbav:"tokens_balance"`
	DailyBonusClaimedOn  string    `json:"daily_bonus_claimed_on,omitempty" dynamodbav:"daily_bonus_claimed_on,omitempty"`
	DailyBonusClaimedAt  time.Time `json:"daily_bonus_claimed_at,omitempty" dynamodbav:"daily_bonus_claimed_at,omitempty"`
	StreakDays           int       `json:"streak_days" dynamodbav:"streak_days"`
	StreakPaidThrough    int       `json:"streak_paid_through" dynamodbav:"streak_paid_through"`
	Level                int       `json:"level" dynamodbav:"level"`
	Experience           int64     `json:"experience" dynamodbav:"experience"`
	CreatedAt            time.Time `json:"created_at" dynamodbav:"created_at"`
}

// BonusReason identifies which eligibility rule granted a bonus.
type BonusReason string

const (
	BonusDaily  BonusReason = "daily"
	BonusStreak BonusReason = "streak"
)

// DailyBonusClaim is the unit of work for a daily bonus grant. ClaimedOn is
// the calendar date in the platform's bonus timezone; it is both the stored
// claim marker and the value the storage layer's condition expression gates on.
type DailyBonusClaim struct {
	UserId     string
	Amount     int64
	ClaimedOn  string
	ClaimedAt  time.Time
	StreakDays int
}

// StreakBonusClaim is the unit of work for a streak threshold reward.
// Threshold is the consecutive-day mark being paid out; the grant is gated on
// streak_paid_through so each threshold pays at most once.
type StreakBonusClaim struct {
	UserId    string
	Amount    int64
	Threshold int
	ClaimedAt time.Time
}

// Provider statuses as delivered in webhook notifications. The set is
// open-ended on the provider side; anything outside these values is ignored.
const (
	ProviderStatusCompleted = "Completed"
	ProviderStatusDeclined  = "Declined"
	ProviderStatusCancelled = "Cancelled"
)

// ProviderNotification is the payment provider's webhook payload, signed via
// a keyed hash over the exact request body.
type ProviderNotification struct {
	TransactionId string           `json:"TransactionId"`
	Status        string           `json:"Status"`
	Data          NotificationData `json:"Data"`
}

// NotificationData carries the provider's echo of our transaction handoff.
type NotificationData struct {
	TransactionId string `json:"transactionId"`
	UserId        string `json:"userId"`
	Tokens        int64  `json:"tokens"`
}

// Webhook acknowledgement codes. These are the boundary contract with the
// provider and must stay bit-exact: 0 stops retries, 13 requests a retry.
const (
	AckCodeOK       = 0
	AckCodeRejected = 13
)

// WebhookAck is the fixed response shape for the webhook endpoint.
type WebhookAck struct {
	Code int `json:"code"`
}

// TopupRequest is the initiator's request body.
type TopupRequest struct {
	Tokens      int64  `json:"tokens"`
	Bonus       int64  `json:"bonus,omitempty"`
	Price       int64  `json:"price"`
	PackageId   string `json:"packageId,omitempty"`
	Description string `json:"description,omitempty"`
}

// TopupResponse is the handoff returned to the client for the provider
// redirect/SDK.
type TopupResponse struct {
	TransactionId string `json:"transactionId"`
	UserId        string `json:"userId"`
	Email         string `json:"email"`
}

// SpendRequest debits tokens for a generation request.
type SpendRequest struct {
	Tokens      int64  `json:"tokens"`
	Description string `json:"description,omitempty"`
}

// RepairRequest is the message the reconciliation sweep enqueues when a
// profile's balance disagrees with the sum of its completed transactions.
// Observed and Expected pin the repair to the state the sweep saw, so the
// worker's compare-and-set cannot clobber a balance that moved since.
type RepairRequest struct {
	UserId   string `json:"user_id"`
	Observed int64  `json:"observed"`
	Expected int64  `json:"expected"`
}
