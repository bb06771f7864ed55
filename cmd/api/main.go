package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Bid2Bid/bid2bid-backend/config"
	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
	"github.com/Bid2Bid/bid2bid-backend/internal/bootstrap"
	cronjob "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/cron"
	entrepo "github.com/Bid2Bid/bid2bid-backend/internal/entitlements/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	gin.DefaultWriter = zerolog.ConsoleWriter{Out: os.Stdout}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := bootstrap.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase initialization failed")
	}

	router, _ := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "bid2bid-backend",
		Cfg:         cfg,
		DB:          db,
		Redis:       rdb,
		AuthClient:  authClient,
	})

	sweeper := cronjob.NewSweeper(entrepo.NewSubscriberRepository(db))
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("entitlement sweeper failed to start")
	}
	defer sweeper.Stop()

	log.Info().Str("port", cfg.Server.Port).Msg("listening")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("app failed to start")
	}
}
