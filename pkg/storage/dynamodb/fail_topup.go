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

// FailTopup transitions a pending top-up to failed and records the provider's
// reason. No balance is touched. The same pending-status condition guards it:
// a decline arriving after a completion (or after another decline) is a no-op.
//
// external_id is provider-assigned; when the sweep expires a top-up the
// provider never settled, there is no settlement id and the attribute stays
// absent.
func (s *Store) FailTopup(ctx context.Context, tx *models.Transaction, externalID, reason string) error {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for failure: %w", err)
	}

	updateExpr := "SET #status = :failed_status, updated_at = :now, metadata.#error = :reason"
	values := map[string]types.AttributeValue{
		":failed_status":  &types.AttributeValueMemberS{Value: string(models.FAILED)},
		":pending_status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
		":reason":         &types.AttributeValueMemberS{Value: reason},
		":now":            nowAV,
	}
	if externalID != "" {
		updateExpr += ", external_id = :external_id"
		values[":external_id"] = &types.AttributeValueMemberS{Value: externalID}
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.TransactionsTableName),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: tx.Id}},
		UpdateExpression:    aws.String(updateExpr),
		ConditionExpression: aws.String("#status = :pending_status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#error":  "error",
		},
		ExpressionAttributeValues: values,
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrAlreadyFinalized
		}
		return fmt.Errorf("failed to mark transaction %s failed: %w", tx.Id, err)
	}

	return nil
}
