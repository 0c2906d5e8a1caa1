package opclient

// TokenResponse is the token endpoint's success body. The authorization
// server may include more fields; only these are consumed.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
}
