package cryptox_test

import (
	"os"
	"testing"

	"github.com/cynit/hub/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecret(t *testing.T) {
	os.Setenv("HUB_MASTER_KEY", "test-master-key-for-encryption-12345")
	t.Cleanup(func() {
		os.Unsetenv("HUB_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	testJWK := []byte(`{"kty":"EC","crv":"P-256","x":"abc","y":"def","d":"ghi","kid":"client-1"}`)

	encrypted, err := cryptox.EncryptSecret(testJWK)
	require.NoError(t, err)
	require.NotEmpty(t, encrypted)
	require.NotEqual(t, testJWK, encrypted, "encrypted data should differ from plaintext")

	decrypted, err := cryptox.DecryptSecret(encrypted)
	require.NoError(t, err)
	require.Equal(t, testJWK, decrypted, "decrypted data should match original")
}

func TestEncryptSecretRandomNonce(t *testing.T) {
	os.Setenv("HUB_MASTER_KEY", "test-master-key-multiple-times-xyz")
	t.Cleanup(func() {
		os.Unsetenv("HUB_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	testData := []byte("sensitive-vault-entry-12345")

	// Encrypt twice - random nonce means different ciphertexts
	encrypted1, err := cryptox.EncryptSecret(testData)
	require.NoError(t, err)

	encrypted2, err := cryptox.EncryptSecret(testData)
	require.NoError(t, err)

	require.NotEqual(t, encrypted1, encrypted2, "multiple encryptions should produce different ciphertexts")

	decrypted1, err := cryptox.DecryptSecret(encrypted1)
	require.NoError(t, err)
	require.Equal(t, testData, decrypted1)

	decrypted2, err := cryptox.DecryptSecret(encrypted2)
	require.NoError(t, err)
	require.Equal(t, testData, decrypted2)
}

func TestDecryptSecretRejectsTampered(t *testing.T) {
	os.Setenv("HUB_MASTER_KEY", "test-master-key-tamper-check")
	t.Cleanup(func() {
		os.Unsetenv("HUB_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	encrypted, err := cryptox.EncryptSecret([]byte("payload"))
	require.NoError(t, err)

	// Flip a bit in the ciphertext, GCM auth must fail
	encrypted[len(encrypted)-1] ^= 0x01
	_, err = cryptox.DecryptSecret(encrypted)
	require.Error(t, err)
}

func TestDecryptSecretTooShort(t *testing.T) {
	os.Setenv("HUB_MASTER_KEY", "test-master-key-short")
	t.Cleanup(func() {
		os.Unsetenv("HUB_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	_, err := cryptox.DecryptSecret([]byte{0x01, 0x02})
	require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
}
