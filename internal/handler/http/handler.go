package http

import (
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/service"
)

type Handler struct {
	services *service.Services
	auth     config.ServerAuth
	version  string

	logger *logger.Logger
}

func NewHandler(services *service.Services, auth config.ServerAuth, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		auth:     auth,
		version:  version,
		logger:   logger,
	}
}
