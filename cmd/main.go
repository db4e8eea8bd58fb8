package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"clubhub/cmd/buildCFG"
	"clubhub/internal/api/api"
	"clubhub/internal/consumerWorker"
	"clubhub/internal/guard"
	"clubhub/internal/mailer"
	"clubhub/internal/rabbit"
	"clubhub/internal/repo"
	"clubhub/internal/service"
	"clubhub/internal/storage"
)

const migrationsDir = "migrations"

func main() {
	zlog.Init()
	log := zlog.Logger

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, relying on environment")
	}

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Msgf("failed to connect to DB: %v", err)
	}
	if err := goose.Up(db.Master, migrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("database ready")

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
	if err != nil {
		log.Fatal().Msgf("failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	smtpCfg := buildCFG.BuildSMTPConfig(cfg, &log)
	mail := mailer.NewSMTP(smtpCfg.Host, smtpCfg.Port, smtpCfg.From, smtpCfg.Pass, &log)

	storageCfg := buildCFG.BuildStorageConfig(cfg, &log)
	avatars, err := storage.NewSupabase(storageCfg.URL, storageCfg.APIKey, storageCfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize avatar storage")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	reader := consumerWorker.NewReader(rmq, repository, mail)
	reader.Start(workerCtx)

	authz := guard.New(repository, &log)
	serviceInstance := service.NewService(repository, authz, &log, rmq, mail, avatars, nil)
	app := api.NewRouters(&api.Routers{Service: serviceInstance, JWTSecret: serverCfg.JWTSecret})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting server on %s", serverCfg.Port)
		if err := app.Run(":" + serverCfg.Port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("received signal %s, shutting down", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("server error: %v", err)
	}

	cancelWorkers()
	reader.Stop()
	log.Info().Msg("shutdown complete")
}
