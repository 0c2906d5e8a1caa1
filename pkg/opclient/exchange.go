package opclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AssertionType is the client_assertion_type for JWT client assertions
// (RFC 7523).
const AssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// AssertionGrant exchanges a signed client assertion for an access token.
// audience is the client's key ID as registered with the authorization
// server; scope is the already-merged scope string.
//
// Any status below 400 with a decodable body counts as success. A status of
// 400 or above returns an *ExchangeError carrying the raw body; the request
// is never retried here.
func (c *Client) AssertionGrant(
	ctx context.Context,
	assertion, audience, scope string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":            {"client_credentials"},
		"audience":              {audience},
		"client_assertion_type": {AssertionType},
		"client_assertion":      {assertion},
		"scope":                 {scope},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/v1/token",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("opclient: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opclient: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ExchangeError{
			Status: resp.StatusCode,
			Body:   string(bodyBytes),
		}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("opclient: failed to decode response: %w", err)
	}

	return &tokenResp, nil
}
