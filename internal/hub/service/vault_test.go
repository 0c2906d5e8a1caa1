package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cynit/hub/internal/hub/service"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/internal/hub/store/drivers/sqlite"
	"github.com/cynit/hub/pkg/cryptox"
	"github.com/cynit/hub/pkg/jwkx"
	"github.com/stretchr/testify/require"
)

func newVaultService(t *testing.T) *service.VaultService {
	t.Helper()

	os.Setenv("HUB_MASTER_KEY", "vault-service-test-key")
	t.Cleanup(func() {
		os.Unsetenv("HUB_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	dsn := "file:" + filepath.Join(t.TempDir(), "hub.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &service.VaultService{Store: st}
}

func TestVaultRoundTrip(t *testing.T) {
	vault := newVaultService(t)
	ctx := context.Background()

	jwkJSON := testJWKJSON(t, "client-42")

	entry, err := vault.Put(ctx, "", "integration client", jwkJSON)
	require.NoError(t, err)
	require.Equal(t, "client-42", entry.Kid)
	require.Nil(t, entry.JWK, "put must not echo key material")

	got, err := vault.Get(ctx, "client-42")
	require.NoError(t, err)
	require.JSONEq(t, string(jwkJSON), string(got.JWK))

	// At rest the entry is encrypted, not the raw JSON
	raw, err := vault.Store.Vault().Get(ctx, "client-42")
	require.NoError(t, err)
	require.NotEqual(t, jwkJSON, raw.JWK)
}

func TestVaultExplicitKidOverride(t *testing.T) {
	vault := newVaultService(t)

	entry, err := vault.Put(context.Background(), "alias", "", testJWKJSON(t, "inner-kid"))
	require.NoError(t, err)
	require.Equal(t, "alias", entry.Kid)
}

func TestVaultRejectsBadKeys(t *testing.T) {
	vault := newVaultService(t)
	ctx := context.Background()

	_, err := vault.Put(ctx, "k", "", []byte("{not json"))
	require.Error(t, err)

	_, err = vault.Put(ctx, "k", "", []byte(`{"kty":"OKP","kid":"nope"}`))
	require.ErrorIs(t, err, jwkx.ErrUnsupportedKeyType)

	_, err = vault.Put(ctx, "k", "", []byte(`{"kty":"oct","kid":"nope"}`))
	require.ErrorIs(t, err, jwkx.ErrMalformedKey)
}

func TestVaultRequiresKid(t *testing.T) {
	vault := newVaultService(t)

	jwkJSON := testJWKJSON(t, "")
	_, err := vault.Put(context.Background(), "", "", jwkJSON)
	require.Error(t, err)
}

func TestVaultDeleteAndList(t *testing.T) {
	vault := newVaultService(t)
	ctx := context.Background()

	_, err := vault.Put(ctx, "", "", testJWKJSON(t, "a"))
	require.NoError(t, err)
	_, err = vault.Put(ctx, "", "", testJWKJSON(t, "b"))
	require.NoError(t, err)

	entries, err := vault.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, vault.Delete(ctx, "a"))
	require.ErrorIs(t, vault.Delete(ctx, "a"), store.ErrNotFound)
}
