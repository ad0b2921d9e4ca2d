package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/storage"
	"github.com/alexkh/token-ledger/pkg/storage/dynamodb/mocks"
)

func TestCreateSpend(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", ProfilesTableName: "profiles"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.AnythingOfType("*dynamodb.TransactWriteItemsInput")).
			Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		tx := &models.Transaction{UserId: "user1", Amount: -10, Metadata: models.Metadata{Description: "image generation"}}

		created, err := store.CreateSpend(context.Background(), tx)

		assert.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, models.TypeSpend, created.Type)
		assert.Equal(t, models.COMPLETED, created.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Rejects Non-Negative Amount", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", ProfilesTableName: "profiles"}

		created, err := store.CreateSpend(context.Background(), &models.Transaction{UserId: "user1", Amount: 10})

		assert.Error(t, err)
		assert.Nil(t, created)
		mockClient.AssertNotCalled(t, "TransactWriteItems")
	})

	t.Run("Insufficient Tokens", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", ProfilesTableName: "profiles"}

		tce := &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, tce).Once()

		created, err := store.CreateSpend(context.Background(), &models.Transaction{UserId: "user1", Amount: -1000})

		assert.ErrorIs(t, err, storage.ErrInsufficientTokens)
		assert.Nil(t, created)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions", ProfilesTableName: "profiles"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed")).Once()

		created, err := store.CreateSpend(context.Background(), &models.Transaction{UserId: "user1", Amount: -10})

		assert.Error(t, err)
		assert.Nil(t, created)
		assert.Contains(t, err.Error(), "failed to execute spend transaction")
		mockClient.AssertExpectations(t)
	})
}
