package jwkx

import "errors"

var (
	// ErrUnsupportedKeyType is returned for a JWK whose kty is not one of
	// RSA, EC, or oct.
	ErrUnsupportedKeyType = errors.New("jwkx: unsupported key type")

	// ErrMalformedKey is returned when a JWK is syntactically valid JSON but
	// is missing or mis-encodes the parameters its kty requires.
	ErrMalformedKey = errors.New("jwkx: malformed key")

	// ErrMissingIssuer is returned when no issuer was supplied and the JWK
	// carries no kid to default it from.
	ErrMissingIssuer = errors.New("jwkx: no issuer and key has no kid")
)
