// Package tlsx provisions the self-signed localhost certificate the HTTPS
// listener boots with, and optionally imports it into the current user's
// trust store.
package tlsx

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cynit/hub/pkg/cryptox"
)

// Paths locates the three certificate files under a runtime directory.
type Paths struct {
	Dir      string
	KeyFile  string // localhost.key, PEM PKCS1
	CertFile string // localhost.crt, PEM X.509
	DERFile  string // localhost.cer, DER X.509
}

// CertPaths returns the fixed file layout under dir.
func CertPaths(dir string) Paths {
	return Paths{
		Dir:      dir,
		KeyFile:  filepath.Join(dir, "localhost.key"),
		CertFile: filepath.Join(dir, "localhost.crt"),
		DERFile:  filepath.Join(dir, "localhost.cer"),
	}
}

// EnsureLocalCertificate makes sure dir holds a usable localhost key pair,
// generating one on first run. An existing PEM pair is never regenerated;
// regeneration would invalidate material the user already trusted. When the
// PEM cert exists but the DER copy is missing, the DER copy is derived from
// it; that derivation is best-effort and never fails the call.
func EnsureLocalCertificate(log *slog.Logger, dir, product string) (Paths, error) {
	paths := CertPaths(dir)

	if fileExists(paths.CertFile) && fileExists(paths.KeyFile) {
		if !fileExists(paths.DERFile) {
			if err := deriveDER(paths); err != nil {
				log.Warn("failed to derive DER certificate, continuing without it",
					"path", paths.DERFile, "error", err)
			}
		}
		return paths, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Paths{}, fmt.Errorf("tlsx: failed to create certificate dir: %w", err)
	}

	keyPEM, err := cryptox.GenerateRSAKey(2048)
	if err != nil {
		return Paths{}, err
	}
	key, err := cryptox.ParseRSAKeyPEM(keyPEM)
	if err != nil {
		return Paths{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return Paths{}, fmt.Errorf("tlsx: failed to generate serial: %w", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Country:      []string{"BE"},
			Organization: []string{product},
			CommonName:   "localhost",
		},
		// Backdated a day so clock skew between host and container does
		// not make a fresh certificate unusable.
		NotBefore:             now.Add(-24 * time.Hour),
		NotAfter:              now.Add(825 * 24 * time.Hour),
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
		BasicConstraintsValid: true,
		IsCA:                  false,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return Paths{}, fmt.Errorf("tlsx: failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	if err := os.WriteFile(paths.KeyFile, keyPEM, 0o600); err != nil {
		return Paths{}, fmt.Errorf("tlsx: failed to write key: %w", err)
	}
	if err := os.WriteFile(paths.CertFile, certPEM, 0o644); err != nil {
		return Paths{}, fmt.Errorf("tlsx: failed to write certificate: %w", err)
	}
	if err := os.WriteFile(paths.DERFile, der, 0o644); err != nil {
		log.Warn("failed to write DER certificate, continuing without it",
			"path", paths.DERFile, "error", err)
	}

	log.Info("generated self-signed localhost certificate",
		"dir", dir, "not_after", tmpl.NotAfter.UTC().Format(time.RFC3339))

	return paths, nil
}

// deriveDER writes the DER copy from an existing PEM certificate.
func deriveDER(paths Paths) error {
	certPEM, err := os.ReadFile(paths.CertFile)
	if err != nil {
		return err
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return fmt.Errorf("tlsx: %s holds no certificate PEM block", paths.CertFile)
	}
	return os.WriteFile(paths.DERFile, block.Bytes, 0o644)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
