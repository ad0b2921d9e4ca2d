package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/alexkh/token-ledger/pkg/storage"
)

// RepairProfileBalance restores the sum-consistency invariant for one user:
// a compare-and-set from the observed balance to the recomputed completed-sum.
// If a live credit or debit slips in between the recomputation and this
// write, the condition fails and the repair is deferred to the next sweep
// rather than clobbering the fresher balance.
func (s *Store) RepairProfileBalance(ctx context.Context, userID string, observed, expected int64) error {
	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.ProfilesTableName),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: userID}},
		UpdateExpression:    aws.String("SET tokens_balance = :expected"),
		ConditionExpression: aws.String("tokens_balance = :observed"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expected)},
			":observed": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", observed)},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrBalanceDrifted
		}
		return fmt.Errorf("failed to repair balance for user %s: %w", userID, err)
	}

	return nil
}
