package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cynit/hub/internal/hub/domain"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/internal/hub/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "hub.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestVaultPutGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := domain.VaultEntry{
		Kid:   "client-1",
		Label: "acceptance client",
		JWK:   []byte("encrypted-bytes"),
	}
	require.NoError(t, st.Vault().Put(ctx, entry))

	got, err := st.Vault().Get(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, "client-1", got.Kid)
	require.Equal(t, "acceptance client", got.Label)
	require.Equal(t, []byte("encrypted-bytes"), got.JWK)
	require.False(t, got.CreatedAt.IsZero())
}

func TestVaultDuplicateKid(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := domain.VaultEntry{Kid: "dup", JWK: []byte("x")}
	require.NoError(t, st.Vault().Put(ctx, entry))

	err := st.Vault().Put(ctx, entry)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestVaultGetMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Vault().Get(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestVaultListOmitsJWK(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Vault().Put(ctx, domain.VaultEntry{Kid: "b", JWK: []byte("x")}))
	require.NoError(t, st.Vault().Put(ctx, domain.VaultEntry{Kid: "a", JWK: []byte("y")}))

	entries, err := st.Vault().List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Kid)
	require.Equal(t, "b", entries[1].Kid)
	require.Nil(t, entries[0].JWK)
}

func TestVaultDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Vault().Put(ctx, domain.VaultEntry{Kid: "gone", JWK: []byte("x")}))
	require.NoError(t, st.Vault().Delete(ctx, "gone"))

	_, err := st.Vault().Get(ctx, "gone")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, st.Vault().Delete(ctx, "gone"), store.ErrNotFound)
}

func TestPing(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))
}

func TestMigrationsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
}
