// Package server wires and runs the record service's HTTP transport,
// including startup, signal handling and graceful shutdown.
package server
