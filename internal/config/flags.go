package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-r remote record service address in format [host]:[port]
//	-d database DSN (postgres URI or sqlite path)
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-hash-key security hash key
//	-zone remote record zone name
//	-sync-interval periodic sync cycle interval
func ParseFlags() *StructuredConfig {
	var serverAddress, adapterAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var hashKey string
	var zone string
	var syncInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.Var(&adapterAddress, "r", "Record service address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&hashKey, "hash-key", "", "Security hash key")
	flag.StringVar(&zone, "zone", "", "Record zone name")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync cycle interval")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			HashKey: hashKey,
		},
		Auth: Auth{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			Zone:     zone,
			Interval: syncInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form host:port")
	}

	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return errors.New("port must be in range 0-65535")
	}

	host := hostAndPort[0]
	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect host")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
