package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around resty.Client. It embeds *resty.Client to
// expose all of its methods directly while allowing extension with
// application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient with a default-configured underlying
// resty.Client. Each call returns an independent client with its own
// connection pool and state.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}
