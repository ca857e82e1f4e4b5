package main

import (
	"context"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/config"
	httphandler "github.com/shelfsync/shelfsync/internal/handler/http"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/server"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("shelfsync-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	utils.InitHasherPool(cfg.App.HashKey)

	storages, err := store.NewStorages(context.Background(), config.Storage{
		DB: config.DB{DSN: cfg.DB.DSN},
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Error().Err(err).Msg("error closing storages")
		}
	}()

	services := service.NewServices(storages, cfg.Auth, log)
	handler := httphandler.NewHandler(services, cfg.Auth, cfg.App.Version, log)

	srv, err := server.NewServer(handler.Init(), cfg.HTTP, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
