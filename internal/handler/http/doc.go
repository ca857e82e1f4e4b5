// Package http implements the HTTP transport of the record service.
//
// It exposes route wiring, request handlers, and middleware for the REST
// API. Cross-cutting concerns such as authentication, request tracing,
// access logging, response compression, and batch integrity checks are
// handled in this package before requests are delegated to the service
// layer.
package http
