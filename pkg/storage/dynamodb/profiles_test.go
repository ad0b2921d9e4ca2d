package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/alexkh/token-ledger/pkg/storage/dynamodb/mocks"
)

func TestCreateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("PutItem", mock.Anything, mock.AnythingOfType("*dynamodb.PutItemInput")).
			Return(&dynamodb.PutItemOutput{}, nil).Once()

		profile, err := store.CreateProfile(context.Background(), &models.Profile{Id: "user1", Email: "user1@example.com", TokensBalance: 999})

		assert.NoError(t, err)
		assert.Equal(t, int64(0), profile.TokensBalance)
		assert.False(t, profile.CreatedAt.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{}).Once()

		profile, err := store.CreateProfile(context.Background(), &models.Profile{Id: "user1"})

		assert.ErrorIs(t, err, storage.ErrProfileExists)
		assert.Nil(t, profile)
		mockClient.AssertExpectations(t)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		want := &models.Profile{Id: "user1", Email: "user1@example.com", TokensBalance: 150}
		wantAV, _ := attributevalue.MarshalMap(want)
		mockClient.On("GetItem", mock.Anything, mock.AnythingOfType("*dynamodb.GetItemInput")).
			Return(&dynamodb.GetItemOutput{Item: wantAV}, nil).Once()

		profile, err := store.GetProfile(context.Background(), "user1")

		assert.NoError(t, err)
		assert.Equal(t, want.Id, profile.Id)
		assert.Equal(t, want.TokensBalance, profile.TokensBalance)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: nil}, nil).Once()

		profile, err := store.GetProfile(context.Background(), "ghost")

		assert.ErrorIs(t, err, storage.ErrProfileNotFound)
		assert.Nil(t, profile)
		mockClient.AssertExpectations(t)
	})

	t.Run("Get Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("get failed")).Once()

		profile, err := store.GetProfile(context.Background(), "user1")

		assert.Error(t, err)
		assert.Nil(t, profile)
		mockClient.AssertExpectations(t)
	})
}

func TestListProfiles(t *testing.T) {
	t.Run("Follows Pagination To The End", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		pageKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "user1"}}
		firstAV, _ := attributevalue.MarshalMap(models.Profile{Id: "user1"})
		secondAV, _ := attributevalue.MarshalMap(models.Profile{Id: "user2"})

		mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(input *dynamodb.ScanInput) bool {
			return input.ExclusiveStartKey == nil
		})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{firstAV}, LastEvaluatedKey: pageKey}, nil).Once()
		mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(input *dynamodb.ScanInput) bool {
			return input.ExclusiveStartKey != nil
		})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{secondAV}}, nil).Once()

		profiles, err := store.ListProfiles(context.Background())

		assert.NoError(t, err)
		assert.Len(t, profiles, 2)
		mockClient.AssertExpectations(t)
	})
}

func TestRepairProfileBalance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("UpdateItem", mock.Anything, mock.AnythingOfType("*dynamodb.UpdateItemInput")).
			Return(&dynamodb.UpdateItemOutput{}, nil).Once()

		err := store.RepairProfileBalance(context.Background(), "user1", 120, 150)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Balance Moved Since Sweep", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ProfilesTableName: "profiles"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{}).Once()

		err := store.RepairProfileBalance(context.Background(), "user1", 120, 150)

		assert.ErrorIs(t, err, storage.ErrBalanceDrifted)
		mockClient.AssertExpectations(t)
	})
}
