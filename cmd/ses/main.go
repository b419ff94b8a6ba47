package main

import (
	"github.com/tuncanbit/ses/internal/application/balance"
	"github.com/tuncanbit/ses/internal/application/settlement"
	"github.com/tuncanbit/ses/internal/infrastructure/database"
	"github.com/tuncanbit/ses/internal/infrastructure/stellar"
	"github.com/tuncanbit/ses/internal/repositories/earningsrepo"
	"github.com/tuncanbit/ses/internal/repositories/withdrawalrepo"
	"github.com/tuncanbit/ses/internal/server"
	"github.com/tuncanbit/ses/pkg/config"
	"github.com/tuncanbit/ses/pkg/logger"
)

func main() {
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.ShutDown()

	gateway, err := stellar.New(cfg.Horizon, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize payment gateway")
	}

	earningsRepo := earningsrepo.New(db.Db, logger)
	withdrawalRepo := withdrawalrepo.New(db.Db, logger)

	balanceService := balance.NewBalanceService(earningsRepo, withdrawalRepo, logger)
	settlementService := settlement.NewSettlementService(
		withdrawalRepo,
		balanceService,
		gateway,
		stellar.ValidDestination,
		cfg.Settlement,
		logger,
	)

	srv := server.New(cfg, settlementService, balanceService, logger)
	srv.Start()
}
