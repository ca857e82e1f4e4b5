// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Server-side invariants are enforced in [GetServerConfig]; at this level
// only structurally impossible combinations would be rejected, of which
// there are currently none.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Zone == "" || cfg.Sync.Interval == 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
