package service

import (
	"context"
	"fmt"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/pkg/cryptox"
	"github.com/cynit/hub/pkg/jwkx"
)

// VaultService manages stored private JWKs. Keys are validated on the way in
// and encrypted with the master key before they hit the store.
type VaultService struct {
	Store store.Store
}

// Put validates and stores a private JWK under its kid. An explicit kid
// overrides the one inside the JWK.
func (s *VaultService) Put(ctx context.Context, kid, label string, jwkJSON []byte) (domain.VaultEntry, error) {
	jwk, err := jwkx.Parse(jwkJSON)
	if err != nil {
		return domain.VaultEntry{}, err
	}

	// Reject keys we could never sign with, before they are stored.
	if _, err := jwkx.ParseSigningKey(jwk); err != nil {
		return domain.VaultEntry{}, err
	}

	if kid == "" {
		kid = jwk.Kid
	}
	if kid == "" {
		return domain.VaultEntry{}, fmt.Errorf("service: vault entry needs a kid, none supplied and none in the JWK")
	}

	encrypted, err := cryptox.EncryptSecret(jwkJSON)
	if err != nil {
		return domain.VaultEntry{}, err
	}

	entry := domain.VaultEntry{
		Kid:   kid,
		Label: label,
		JWK:   encrypted,
	}
	if err := s.Store.Vault().Put(ctx, entry); err != nil {
		return domain.VaultEntry{}, err
	}

	// Return the entry without key material; listings never expose it.
	entry.JWK = nil
	return entry, nil
}

// Get returns the decrypted JWK bytes for a kid.
func (s *VaultService) Get(ctx context.Context, kid string) (domain.VaultEntry, error) {
	entry, err := s.Store.Vault().Get(ctx, kid)
	if err != nil {
		return domain.VaultEntry{}, err
	}

	decrypted, err := cryptox.DecryptSecret(entry.JWK)
	if err != nil {
		return domain.VaultEntry{}, fmt.Errorf("service: failed to decrypt vault entry %q: %w", kid, err)
	}
	entry.JWK = decrypted
	return entry, nil
}

// List returns all entries without key material.
func (s *VaultService) List(ctx context.Context) ([]domain.VaultEntry, error) {
	return s.Store.Vault().List(ctx)
}

// Delete removes an entry.
func (s *VaultService) Delete(ctx context.Context, kid string) error {
	return s.Store.Vault().Delete(ctx, kid)
}
