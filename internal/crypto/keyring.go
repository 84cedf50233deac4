package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Keyring stores the database key across runs.
type Keyring interface {
	GetKey() (string, error)
	SetKey(key string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "multitimer"
	KeyName     = "prefs-db-key"
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// GenerateKey produces a random database key. The preferences store is not
// secret material, so no user prompt is involved; the key just keeps the
// database format uniform across platforms with a keyring.
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate database key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
