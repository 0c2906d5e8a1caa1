package jwkx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey is an opaque key handle with its resolved JWS algorithm.
// It is built once per assertion and not reused across calls.
type SigningKey struct {
	JWK    JWK
	Alg    string
	Method jwt.SigningMethod

	// key is *rsa.PrivateKey, *ecdsa.PrivateKey, or []byte depending on
	// the family, in the shape golang-jwt expects.
	key any
}

// Key returns the underlying crypto key in the form the signing method needs.
func (s *SigningKey) Key() any { return s.key }

// SelectAlg resolves the JWS algorithm for a key family and curve.
// EC keys on a curve we do not recognize fall back to ES256 so that the
// declared algorithm is still well-formed; actually signing with such a key
// fails at construction time instead.
func SelectAlg(jwk JWK) (string, error) {
	family, err := jwk.Family()
	if err != nil {
		return "", err
	}

	switch family {
	case FamilyRSA:
		return "RS256", nil
	case FamilyEC:
		switch jwk.Crv {
		case "P-256", "secp256r1":
			return "ES256", nil
		case "P-384", "secp384r1":
			return "ES384", nil
		case "P-521", "secp521r1":
			return "ES512", nil
		default:
			return "ES256", nil
		}
	case FamilyOct:
		return "HS256", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKeyType, jwk.Kty)
}

// ParseSigningKey derives a usable signing key from a private JWK, resolving
// the algorithm from the key family and curve.
func ParseSigningKey(jwk JWK) (*SigningKey, error) {
	alg, err := SelectAlg(jwk)
	if err != nil {
		return nil, err
	}

	family, err := jwk.Family()
	if err != nil {
		return nil, err
	}

	var key any
	switch family {
	case FamilyRSA:
		key, err = parseRSAPrivateKey(jwk)
	case FamilyEC:
		key, err = parseECPrivateKey(jwk)
	case FamilyOct:
		key, err = decodeB64URL("k", jwk.K)
	}
	if err != nil {
		return nil, err
	}

	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("%w: no signing method for %s", ErrUnsupportedKeyType, alg)
	}

	return &SigningKey{
		JWK:    jwk,
		Alg:    alg,
		Method: method,
		key:    key,
	}, nil
}

func parseRSAPrivateKey(jwk JWK) (*rsa.PrivateKey, error) {
	n, err := decodeBigInt("n", jwk.N)
	if err != nil {
		return nil, err
	}
	e, err := decodeBigInt("e", jwk.E)
	if err != nil {
		return nil, err
	}
	d, err := decodeBigInt("d", jwk.D)
	if err != nil {
		return nil, err
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
	}

	// CRT parameters are optional; signing works with just n/e/d but is
	// noticeably faster when the primes are present.
	if jwk.P != "" && jwk.Q != "" {
		p, err := decodeBigInt("p", jwk.P)
		if err != nil {
			return nil, err
		}
		q, err := decodeBigInt("q", jwk.Q)
		if err != nil {
			return nil, err
		}
		key.Primes = []*big.Int{p, q}
		key.Precompute()
	}

	return key, nil
}

func parseECPrivateKey(jwk JWK) (*ecdsa.PrivateKey, error) {
	var curve elliptic.Curve
	switch jwk.Crv {
	case "P-256", "secp256r1":
		curve = elliptic.P256()
	case "P-384", "secp384r1":
		curve = elliptic.P384()
	case "P-521", "secp521r1":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("%w: unknown EC curve %q", ErrMalformedKey, jwk.Crv)
	}

	x, err := decodeBigInt("x", jwk.X)
	if err != nil {
		return nil, err
	}
	y, err := decodeBigInt("y", jwk.Y)
	if err != nil {
		return nil, err
	}
	d, err := decodeBigInt("d", jwk.D)
	if err != nil {
		return nil, err
	}

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}

	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: EC point not on %s", ErrMalformedKey, jwk.Crv)
	}

	return key, nil
}
