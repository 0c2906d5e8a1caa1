package domain

import "time"

// VaultEntry is a stored private JWK, identified by its kid. The JWK field
// holds the decrypted JSON; at rest it is encrypted with the master key.
type VaultEntry struct {
	Kid       string
	Label     string
	JWK       []byte
	CreatedAt time.Time
}
