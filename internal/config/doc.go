// Package config provides configuration loading, merging, and validation
// facilities for shelfsync.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources take precedence; later ones fill unset fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetStructuredConfig] for the record service
// configuration and [GetClientConfig] for the engine daemon configuration.
package config
