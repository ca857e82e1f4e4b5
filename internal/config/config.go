// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for shelfsync.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings shared by the engine daemon and
	// the record service: integrity keys and the build version.
	App App `envPrefix:"APP_"`

	// Auth holds JWT issuance settings for the record service.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds the persistence backend settings. The record service
	// reads a PostgreSQL DSN; the engine daemon reads a SQLite path.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the record
	// service HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the engine's outbound transport settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds sync-engine tunables: zone name, fetch page size, the
	// periodic cycle interval and reachability probing.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values shared by both binaries.
type App struct {
	// HashKey is the HMAC key used for request integrity checking
	// (the HashSHA256 header). Empty disables integrity hashing.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Auth holds JWT issuance settings used by the record service.
type Auth struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Must be kept confidential.
	// Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a token remains valid after
	// issuance (e.g. "1h", "30m").
	// Env: AUTH_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds connection settings for the persistence backends.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the connection string: a PostgreSQL URI for the record
	// service, a SQLite file path for the engine daemon.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the engine daemon's outbound transport settings.
type Adapter struct {
	// HTTPAddress is the record service base address, host:port or URL.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the default timeout for outbound requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds tunables for the sync engine itself.
type Sync struct {
	// Zone is the remote record zone name everything is stored under.
	// Env: SYNC_ZONE
	Zone string `env:"ZONE"`

	// FetchLimit caps how many changed records one differential fetch
	// page may carry.
	// Env: SYNC_FETCH_LIMIT
	FetchLimit int `env:"FETCH_LIMIT"`

	// Interval defines how often the periodic full sync cycle runs in
	// addition to change-triggered pushes and fetches.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// ProbeInterval is how often the reachability monitor probes the
	// record service host.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win; later sources fill fields still unset):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
