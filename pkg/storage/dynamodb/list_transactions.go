package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alexkh/token-ledger/pkg/models"
)

const (
	stalePendingGSI = "status-created_at-index"
	userIDIndex     = "user_id-index"
)

// GetStalePendingTopups retrieves top-ups that have been in the 'pending'
// state for longer than the specified duration. These are candidates for
// expiry by the reconciliation sweep: the provider either never called back
// or the user abandoned checkout.
func (s *Store) GetStalePendingTopups(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	var transactions []models.Transaction
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.TransactionsTableName),
			IndexName:              aws.String(stalePendingGSI),
			KeyConditionExpression: aws.String("#status = :status"),
			FilterExpression:       aws.String("created_at < :cutoff AND #type = :topup"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
				"#type":   "type",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
				":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
				":topup":  &types.AttributeValueMemberS{Value: string(models.TypeTopup)},
			},
			ExclusiveStartKey: startKey,
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for stale pending top-ups: %w", err)
		}

		var page []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stale pending top-ups: %w", err)
		}
		transactions = append(transactions, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return transactions, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// ListTransactionsByUserID retrieves all transactions for a specific user.
// The query follows LastEvaluatedKey to the end: the reconciliation sweep
// sums this list against the balance, so a truncated page would read as
// drift and trigger a repair that isn't one.
func (s *Store) ListTransactionsByUserID(ctx context.Context, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.TransactionsTableName),
			IndexName:              aws.String(userIDIndex),
			KeyConditionExpression: aws.String("user_id = :userID"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":userID": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for transactions by user ID: %w", err)
		}

		var page []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		transactions = append(transactions, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return transactions, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
