package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/config"
	"github.com/alexkh/token-ledger/pkg/reconcile"
	"github.com/alexkh/token-ledger/pkg/scheduler"
	dydbstore "github.com/alexkh/token-ledger/pkg/storage/dynamodb"
)

var sweeper *reconcile.Sweeper
var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "reconciliation-sweep").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.RepairQueueURL == "" {
		logger.Fatal().Msg("REPAIR_QUEUE_URL environment variable not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load SDK config")
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := dydbstore.New(dbClient, cfg.TransactionsTableName, cfg.ProfilesTableName)

	sqsClient := sqs.NewFromConfig(awsCfg)
	sqsScheduler := scheduler.NewSQSScheduler(sqsClient, cfg.RepairQueueURL)

	sweeper = reconcile.NewSweeper(store, sqsScheduler, logger, cfg.StalePendingAge)
}

// HandleRequest is triggered by an EventBridge Schedule.
func HandleRequest(ctx context.Context) error {
	logger.Info().Msg("starting reconciliation sweep")

	if err := sweeper.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("reconciliation sweep finished with errors")
		return err
	}

	logger.Info().Msg("reconciliation sweep finished")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
