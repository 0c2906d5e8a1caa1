// Package opclient is a minimal client for an OAuth2 authorization server's
// token endpoint, speaking the client-credentials grant with a JWT client
// assertion in place of a client secret.
package opclient

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to a single authorization server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the authorization server at baseURL.
// The outbound call is bounded by a fixed timeout; there is no retry.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}
