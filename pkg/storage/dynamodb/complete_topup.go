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
)

// CompleteTopup atomically transitions a pending top-up to completed and
// credits the user's balance. The status condition is the idempotency gate:
// a replayed or out-of-order notification fails the condition and nothing is
// written, so a user is credited exactly once per settlement.
//
// The balance write is a database-level atomic increment, not a read-modify-
// write, so concurrent completions for the same user serialize inside
// DynamoDB and no increment can be lost. Credits also accrue experience.
func (s *Store) CompleteTopup(ctx context.Context, tx *models.Transaction, externalID string) error {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for completion: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Transition the transaction to completed.
				Update: &types.Update{
					TableName:           aws.String(s.TransactionsTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: tx.Id}},
					UpdateExpression:    aws.String("SET #status = :completed_status, external_id = :external_id, updated_at = :now"),
					ConditionExpression: aws.String("#status = :pending_status"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":completed_status": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
						":pending_status":   &types.AttributeValueMemberS{Value: string(models.PENDING)},
						":external_id":      &types.AttributeValueMemberS{Value: externalID},
						":now":              nowAV,
					},
				},
			},
			{
				// Operation 2: Credit the user's balance.
				Update: &types.Update{
					TableName:           aws.String(s.ProfilesTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: tx.UserId}},
					UpdateExpression:    aws.String("SET tokens_balance = tokens_balance + :amount, experience = experience + :amount"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tx.Amount)},
					},
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) == 2 {
			if code := tce.CancellationReasons[0].Code; code != nil && *code == "ConditionalCheckFailed" {
				return storage.ErrAlreadyFinalized
			}
			if code := tce.CancellationReasons[1].Code; code != nil && *code == "ConditionalCheckFailed" {
				return fmt.Errorf("crediting user %s: %w", tx.UserId, storage.ErrProfileNotFound)
			}
		}
		return fmt.Errorf("failed to execute completion transaction: %w", err)
	}

	return nil
}
