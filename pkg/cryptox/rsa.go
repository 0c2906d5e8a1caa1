package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// GenerateRSAKey generates a new RSA private key with the specified bit size.
// Common bit sizes are 2048, 3072, or 4096 bits.
// Returns the private key in PEM format (PKCS1).
func GenerateRSAKey(bits int) ([]byte, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least 2048 bits")
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}

	privateKeyPEM := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	return pem.EncodeToMemory(privateKeyPEM), nil
}

// ParseRSAKeyPEM parses a PEM-encoded PKCS1 RSA private key, as produced
// by GenerateRSAKey.
func ParseRSAKeyPEM(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("cryptox: no PEM block found")
	}
	if block.Type != "RSA PRIVATE KEY" {
		return nil, fmt.Errorf("cryptox: unexpected PEM block type %q", block.Type)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse RSA key: %w", err)
	}
	return key, nil
}
