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

// CreateSpend records a completed spend transaction and debits the user's
// balance atomically. tx.Amount must be negative; the condition keeps the
// balance non-negative, so an over-spend fails the whole unit.
func (s *Store) CreateSpend(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if tx.Amount >= 0 {
		return nil, fmt.Errorf("spend amount must be negative, got %d", tx.Amount)
	}

	now := time.Now()
	tx.Id = uuid.New().String()
	tx.Type = models.TypeSpend
	tx.Status = models.COMPLETED
	tx.CreatedAt = now
	tx.UpdatedAt = now

	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	magnitude := -tx.Amount

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Debit the user's balance.
				Update: &types.Update{
					TableName:           aws.String(s.ProfilesTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: tx.UserId}},
					UpdateExpression:    aws.String("SET tokens_balance = tokens_balance - :magnitude"),
					ConditionExpression: aws.String("attribute_exists(id) AND tokens_balance >= :magnitude"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":magnitude": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", magnitude)},
					},
				},
			},
			{
				// Operation 2: Record the completed spend transaction.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 {
			if code := tce.CancellationReasons[0].Code; code != nil && *code == "ConditionalCheckFailed" {
				return nil, storage.ErrInsufficientTokens
			}
		}
		return nil, fmt.Errorf("failed to execute spend transaction: %w", err)
	}

	return tx, nil
}
