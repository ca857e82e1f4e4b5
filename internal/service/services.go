// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/store"
)

// Services bundles the server-side business logic.
type Services struct {
	Accounts AccountService
	Records  RecordAPIService
}

// NewServices constructs the server services over the storage layer.
func NewServices(storages *store.Storages, cfg config.ServerAuth, log *logger.Logger) *Services {
	return &Services{
		Accounts: NewAccountService(storages.Accounts, cfg, log),
		Records:  NewRecordAPIService(storages.Records, log),
	}
}
