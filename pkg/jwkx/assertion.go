package jwkx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionTTL is the fixed lifetime of a client assertion.
const AssertionTTL = 10 * time.Minute

// BuildClientAssertion signs a client-assertion JWT for an OAuth2
// client-credentials exchange. issuer fills both iss and sub; when empty it
// defaults to the key's kid. audience is the authorization server's base URL.
//
// The assertion is signed fresh for every exchange. exp is pinned at
// iat + AssertionTTL, so a cached assertion goes stale rather than being
// refreshed here.
func BuildClientAssertion(key *SigningKey, issuer, audience string) (string, error) {
	if issuer == "" {
		issuer = key.JWK.Kid
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}

	// MapClaims keeps aud a plain JSON string. RegisteredClaims marshals it
	// as a single-element array, which authorization servers commonly reject
	// on client assertions.
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": issuer,
		"sub": issuer,
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(AssertionTTL).Unix(),
	}

	token := jwt.NewWithClaims(key.Method, claims)

	signed, err := token.SignedString(key.key)
	if err != nil {
		return "", fmt.Errorf("jwkx: failed to sign client assertion: %w", err)
	}
	return signed, nil
}
