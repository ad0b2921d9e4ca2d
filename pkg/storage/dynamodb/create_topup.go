package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/google/uuid"
)

// CreateTopup persists a new pending top-up transaction. The user's balance
// is untouched; only a confirmed provider webhook credits it.
func (s *Store) CreateTopup(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	// Complete the transaction object with server-side details.
	now := time.Now()
	tx.Id = uuid.New().String()
	tx.Type = models.TypeTopup
	tx.Status = models.PENDING
	tx.CreatedAt = now
	tx.UpdatedAt = now

	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TransactionsTableName),
		Item:                txAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to create transaction in DynamoDB: %w", err)
	}

	return tx, nil
}
