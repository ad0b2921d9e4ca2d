package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/alexkh/token-ledger/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the Store.
// Depending on this interface instead of *dynamodb.Client keeps the store
// testable with generated mocks.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
// Two tables back the ledger: transactions (PK id) and profiles (PK id).
// Every mutation is a condition-guarded write; multi-item units go through
// TransactWriteItems so a status transition and its balance effect commit
// together or not at all.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
	ProfilesTableName     string
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable, profilesTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
		ProfilesTableName:     profilesTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
