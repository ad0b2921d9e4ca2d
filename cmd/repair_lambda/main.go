package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/config"
	"github.com/alexkh/token-ledger/pkg/models"
	"github.com/alexkh/token-ledger/pkg/reconcile"
	dydbstore "github.com/alexkh/token-ledger/pkg/storage/dynamodb"
)

var repairer *reconcile.Repairer
var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "repair-worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load SDK config")
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := dydbstore.New(dbClient, cfg.TransactionsTableName, cfg.ProfilesTableName)

	repairer = reconcile.NewRepairer(store, logger)
}

// HandleRequest processes queued repair requests from the sweep.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		var req models.RepairRequest
		if err := json.Unmarshal([]byte(message.Body), &req); err != nil {
			// A malformed message can never succeed; retrying it would loop.
			logger.Error().Err(err).Str("message_id", message.MessageId).Msg("failed to unmarshal repair request, dropping")
			continue
		}

		if err := repairer.Repair(ctx, &req); err != nil {
			logger.Error().Err(err).Str("user_id", req.UserId).Msg("failed to apply repair")
			// Returning the error makes SQS redeliver the batch, which is
			// safe: Repair is idempotent.
			return err
		}
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
