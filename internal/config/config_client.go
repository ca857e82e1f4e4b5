package config

import (
	"fmt"
	"time"
)

// ClientApp holds engine-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used for payload integrity checks.
	HashKey string
	// Version is the running build's version string.
	Version string
}

// ClientAdapter holds network settings used by the engine transport layer.
type ClientAdapter struct {
	// HTTPAddress is the record service base address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the engine.
type ClientDB struct {
	// DSN is the SQLite file path of the local library store.
	DSN string
}

// ClientStorage groups engine storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientSync contains sync-engine tunables.
type ClientSync struct {
	// Zone is the remote record zone name.
	Zone string
	// FetchLimit caps one differential fetch page.
	FetchLimit int
	// Interval defines how often the periodic sync cycle runs.
	Interval time.Duration
	// ProbeInterval is the reachability probe period.
	ProbeInterval time.Duration
}

// ClientConfig is the top-level engine daemon configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    ClientSync
}

// GetClientConfig builds and validates an engine-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the engine runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: ClientSync{
			Zone:          cfg.Sync.Zone,
			FetchLimit:    cfg.Sync.FetchLimit,
			Interval:      cfg.Sync.Interval,
			ProbeInterval: cfg.Sync.ProbeInterval,
		},
	}

	return clientCfg, clientCfg.validate()
}
