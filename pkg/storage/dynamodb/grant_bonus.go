package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/google/uuid"
)

// GrantDailyBonus commits a daily bonus as one atomic unit: the claim-date
// gate, the streak counter update, the balance credit, and the completed
// bonus transaction. The condition expression is the authoritative
// once-per-day check; any service-level pre-check only exists to fail fast.
func (s *Store) GrantDailyBonus(ctx context.Context, claim *models.DailyBonusClaim) error {
	bonusTx, err := s.marshalBonusTransaction(claim.UserId, claim.Amount, models.BonusDaily, claim.ClaimedAt)
	if err != nil {
		return err
	}

	claimedAtAV, err := attributevalue.Marshal(claim.ClaimedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal claim timestamp: %w", err)
	}

	updateExpr := "SET daily_bonus_claimed_on = :today, daily_bonus_claimed_at = :at, streak_days = :streak, tokens_balance = tokens_balance + :amount, experience = experience + :amount"
	values := map[string]types.AttributeValue{
		":today":  &types.AttributeValueMemberS{Value: claim.ClaimedOn},
		":at":     claimedAtAV,
		":streak": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", claim.StreakDays)},
		":amount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", claim.Amount)},
	}
	if claim.StreakDays == 1 {
		// A broken streak starts a fresh run: milestones pay once per run,
		// so the paid-through marker resets with the counter.
		updateExpr += ", streak_paid_through = :paid_through"
		values[":paid_through"] = &types.AttributeValueMemberN{Value: "0"}
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Claim the day and credit the balance.
				Update: &types.Update{
					TableName:                 aws.String(s.ProfilesTableName),
					Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: claim.UserId}},
					UpdateExpression:          aws.String(updateExpr),
					ConditionExpression:       aws.String("attribute_exists(id) AND (attribute_not_exists(daily_bonus_claimed_on) OR daily_bonus_claimed_on < :today)"),
					ExpressionAttributeValues: values,
				},
			},
			{
				// Operation 2: Record the completed bonus transaction.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                bonusTx,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 {
			if code := tce.CancellationReasons[0].Code; code != nil && *code == "ConditionalCheckFailed" {
				return storage.ErrBonusAlreadyClaimed
			}
		}
		return fmt.Errorf("failed to execute daily bonus transaction: %w", err)
	}

	return nil
}

// GrantStreakBonus pays a streak threshold reward exactly once, gated on
// streak_paid_through lagging the threshold being paid.
func (s *Store) GrantStreakBonus(ctx context.Context, claim *models.StreakBonusClaim) error {
	bonusTx, err := s.marshalBonusTransaction(claim.UserId, claim.Amount, models.BonusStreak, claim.ClaimedAt)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(s.ProfilesTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: claim.UserId}},
					UpdateExpression:    aws.String("SET streak_paid_through = :threshold, tokens_balance = tokens_balance + :amount, experience = experience + :amount"),
					ConditionExpression: aws.String("attribute_exists(id) AND streak_days >= :threshold AND streak_paid_through < :threshold"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":threshold": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", claim.Threshold)},
						":amount":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", claim.Amount)},
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                bonusTx,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 {
			if code := tce.CancellationReasons[0].Code; code != nil && *code == "ConditionalCheckFailed" {
				return storage.ErrBonusAlreadyClaimed
			}
		}
		return fmt.Errorf("failed to execute streak bonus transaction: %w", err)
	}

	return nil
}

// marshalBonusTransaction builds the already-completed bonus transaction item.
func (s *Store) marshalBonusTransaction(userID string, amount int64, reason models.BonusReason, at time.Time) (map[string]types.AttributeValue, error) {
	tx := &models.Transaction{
		Id:        uuid.New().String(),
		UserId:    userID,
		Amount:    amount,
		Type:      models.TypeBonus,
		Status:    models.COMPLETED,
		Metadata:  models.Metadata{Reason: string(reason)},
		CreatedAt: at,
		UpdatedAt: at,
	}

	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bonus transaction: %w", err)
	}
	return txAV, nil
}
