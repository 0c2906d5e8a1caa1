package jwkx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// JWK represents a private JSON Web Key (RFC 7517) as uploaded by a caller
// or loaded from the vault. Unlike a published JWKS entry it carries the
// private parameters of its family.
type JWK struct {
	Kty string `json:"kty"`           // key type: "RSA", "EC", "oct"
	Use string `json:"use,omitempty"` // what the key is used for: "sig", "enc"
	Alg string `json:"alg,omitempty"` // declared algorithm, informational only
	Kid string `json:"kid,omitempty"` // key ID, doubles as default issuer

	// RSA parameters
	N  string `json:"n,omitempty"`  // modulus (base64url)
	E  string `json:"e,omitempty"`  // public exponent (base64url)
	D  string `json:"d,omitempty"`  // private exponent, also EC private scalar
	P  string `json:"p,omitempty"`  // first prime factor
	Q  string `json:"q,omitempty"`  // second prime factor
	Dp string `json:"dp,omitempty"` // d mod (p-1)
	Dq string `json:"dq,omitempty"` // d mod (q-1)
	Qi string `json:"qi,omitempty"` // q^-1 mod p

	// EC parameters
	Crv string `json:"crv,omitempty"` // curve: "P-256", "P-384", "P-521"
	X   string `json:"x,omitempty"`   // base64url encoded x-coordinate
	Y   string `json:"y,omitempty"`   // base64url encoded y-coordinate

	// Symmetric parameters
	K string `json:"k,omitempty"` // key value (base64url)
}

// KeyFamily is the closed set of JWK families this package can sign with.
type KeyFamily int

const (
	FamilyRSA KeyFamily = iota
	FamilyEC
	FamilyOct
)

// Parse decodes a JWK from its JSON serialization.
func Parse(data []byte) (JWK, error) {
	var jwk JWK
	if err := json.Unmarshal(data, &jwk); err != nil {
		return JWK{}, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedKey, err)
	}
	if jwk.Kty == "" {
		return JWK{}, fmt.Errorf("%w: missing kty", ErrMalformedKey)
	}
	return jwk, nil
}

// Family resolves the key family from kty. Comparison is case-insensitive;
// "oct" is commonly seen upper-cased in the wild.
func (j JWK) Family() (KeyFamily, error) {
	switch strings.ToUpper(j.Kty) {
	case "RSA":
		return FamilyRSA, nil
	case "EC":
		return FamilyEC, nil
	case "OCT":
		return FamilyOct, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, j.Kty)
	}
}

// decodeB64URL decodes a base64url field, tolerating both padded and
// unpadded encodings.
func decodeB64URL(field, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedKey, field)
	}
	if b, err := base64.RawURLEncoding.DecodeString(value); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not base64url", ErrMalformedKey, field)
	}
	return b, nil
}

// decodeBigInt decodes a base64url field into a big integer.
func decodeBigInt(field, value string) (*big.Int, error) {
	b, err := decodeB64URL(field, value)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
