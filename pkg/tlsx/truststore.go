package tlsx

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// TrustStore imports the generated certificate into the current user's trust
// root so browsers stop warning about it. Import failures are advisory; the
// caller logs them and keeps going.
type TrustStore interface {
	TrustCurrentUser(ctx context.Context, derFile string) error
}

// NewPlatformTrustStore picks the trust store implementation for the current
// platform. Only Windows has one; everywhere else it is a no-op.
func NewPlatformTrustStore() TrustStore {
	if runtime.GOOS == "windows" {
		return &CertutilTrustStore{}
	}
	return &NoopTrustStore{}
}

// CertutilTrustStore shells out to certutil to add the certificate to the
// current user's Root store. Runs without elevation.
type CertutilTrustStore struct{}

func (s *CertutilTrustStore) TrustCurrentUser(ctx context.Context, derFile string) error {
	cmd := exec.CommandContext(ctx, "certutil", "-user", "-addstore", "Root", derFile)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("tlsx: certutil import failed: %w: %s", err, out)
	}
	return nil
}

// NoopTrustStore is used on platforms without a user trust store tool.
type NoopTrustStore struct{}

func (s *NoopTrustStore) TrustCurrentUser(ctx context.Context, derFile string) error {
	return nil
}
