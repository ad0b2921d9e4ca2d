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

// CreateProfile creates a new profile record with a zero balance.
func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.TokensBalance = 0
	profile.CreatedAt = time.Now()

	profileAV, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.ProfilesTableName),
		Item:                profileAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // Prevent overwriting existing profiles.
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("user %s: %w", profile.Id, storage.ErrProfileExists)
		}
		return nil, fmt.Errorf("failed to create profile in DynamoDB: %w", err)
	}

	return profile, nil
}

// GetProfile retrieves a user's profile from DynamoDB by their user ID.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.ProfilesTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrProfileNotFound)
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(result.Item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// ListProfiles retrieves all profiles from DynamoDB, following pagination to
// the end. Used by the reconciliation sweep; the table is small enough that a
// scan is acceptable, but a truncated scan would silently skip profiles from
// drift detection.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	var startKey map[string]types.AttributeValue
	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(s.ProfilesTableName),
			ExclusiveStartKey: startKey,
		}

		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profiles table: %w", err)
		}

		var page []models.Profile
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
		}
		profiles = append(profiles, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return profiles, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
