package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/bonus"
	"github.com/alexkh/token-ledger/pkg/config"
	"github.com/alexkh/token-ledger/pkg/handlers"
	"github.com/alexkh/token-ledger/pkg/signature"
	dydbstore "github.com/alexkh/token-ledger/pkg/storage/dynamodb"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "token-ledger").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AuthSecret == "" {
		logger.Fatal().Msg("AUTH_JWT_SECRET environment variable not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load SDK config")
	}

	loc, err := time.LoadLocation(cfg.BonusTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.BonusTimezone).Msg("invalid bonus timezone")
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	store := dydbstore.New(dbClient, cfg.TransactionsTableName, cfg.ProfilesTableName)

	verifier := signature.NewVerifier(cfg.PaymentWebhookSecret, logger)
	if !verifier.Enabled() {
		logger.Warn().Msg("payment webhook secret not configured, signature verification disabled")
	}

	bonusEngine := bonus.NewEngine(store, loc, cfg.DailyBonusAmount)
	handler := handlers.NewApiHandler(store, verifier, bonusEngine, logger)
	router := handlers.NewRouter(handler, cfg.AuthSecret, logger)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Drain in-flight webhook deliveries before exiting.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
