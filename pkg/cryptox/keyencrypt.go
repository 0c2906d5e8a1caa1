package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Vault entries are sealed with AES-256-GCM under a process-wide master key.
// The key material comes from a file when SetMasterKeyPath was called, else
// from HUB_MASTER_KEY, else an ephemeral random key is generated so a dev
// instance still starts. Ephemeral keys do not survive a restart.

var (
	masterKeyOnce sync.Once
	masterKey     []byte
	masterKeyPath string
)

// ErrCiphertextTooShort is returned for sealed data shorter than a nonce.
var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// SetMasterKeyPath points the master key at a file. Must be called before
// the first EncryptSecret or DecryptSecret; later calls have no effect.
func SetMasterKeyPath(path string) {
	masterKeyPath = path
}

func loadMasterKey() ([]byte, error) {
	var material []byte

	switch {
	case masterKeyPath != "":
		data, err := os.ReadFile(masterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to read master key file: %w", err)
		}
		material = data
	case os.Getenv("HUB_MASTER_KEY") != "":
		material = []byte(os.Getenv("HUB_MASTER_KEY"))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("cryptox: failed to generate ephemeral master key: %w", err)
		}
	}

	// Whatever the source, SHA-256 turns it into exactly 32 key bytes.
	sum := sha256.Sum256(material)
	return sum[:], nil
}

func getMasterKey() ([]byte, error) {
	var err error
	masterKeyOnce.Do(func() {
		masterKey, err = loadMasterKey()
	})
	if err != nil {
		return nil, err
	}
	return masterKey, nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := getMasterKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptSecret seals secret material (a stored private JWK) under the
// master key. Output layout: nonce || ciphertext || tag, with a fresh
// random nonce per call.
func EncryptSecret(plaintext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptSecret opens data sealed by EncryptSecret. Tampered or truncated
// input fails authentication.
func DecryptSecret(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: decryption failed: %w", err)
	}
	return plaintext, nil
}

// ResetMasterKeyForTesting clears the loaded key so tests can swap sources.
func ResetMasterKeyForTesting() {
	masterKeyOnce = sync.Once{}
	masterKey = nil
}
