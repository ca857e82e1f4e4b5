// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerApp contains application-level settings for the record service.
type ServerApp struct {
	// HashKey is the HMAC key for request integrity verification.
	HashKey string
	// Version is the running build version.
	Version string
}

// ServerAuth contains JWT issuance settings.
type ServerAuth struct {
	TokenSignKey  string
	TokenIssuer   string
	TokenDuration time.Duration
}

// ServerHTTP contains inbound transport settings.
type ServerHTTP struct {
	// Address is the listen address in "host:port" form.
	Address string
	// RequestTimeout bounds one inbound request.
	RequestTimeout time.Duration
}

// ServerDB contains the PostgreSQL connection settings.
type ServerDB struct {
	DSN string
}

// ServerConfig is the top-level record service configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	App  ServerApp
	Auth ServerAuth
	HTTP ServerHTTP
	DB   ServerDB
}

// GetServerConfig builds and validates the record-service view of the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App: ServerApp{
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Auth: ServerAuth{
			TokenSignKey:  cfg.Auth.TokenSignKey,
			TokenIssuer:   cfg.Auth.TokenIssuer,
			TokenDuration: cfg.Auth.TokenDuration,
		},
		HTTP: ServerHTTP{
			Address:        cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		DB: ServerDB{
			DSN: cfg.Storage.DB.DSN,
		},
	}

	return serverCfg, serverCfg.validate()
}

func (cfg *ServerConfig) validate() error {
	if cfg.DB.DSN == "" || !strings.HasPrefix(cfg.DB.DSN, "postgres") {
		return ErrInvalidStorageConfigs
	}

	if cfg.HTTP.Address == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.TokenSignKey == "" || cfg.Auth.TokenIssuer == "" || cfg.Auth.TokenDuration == 0 {
		return ErrInvalidAuthConfigs
	}

	return nil
}
