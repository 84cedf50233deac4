//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
)

// EnvKeyName holds the database key on platforms without a system keyring.
const EnvKeyName = "MULTITIMER_DB_KEY"

type fallbackKeyring struct{}

func newPlatformKeyring() Keyring {
	return &fallbackKeyring{}
}

// GetKey reads the database key from the environment.
func (k *fallbackKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKeyName)
	if key == "" {
		return "", fmt.Errorf("%s is not set", EnvKeyName)
	}

	return key, nil
}

// SetKey cannot persist anything without a keyring; it tells the caller how
// to carry the key across runs so the preferences database stays encrypted.
func (k *fallbackKeyring) SetKey(key string) error {
	if key == "" {
		return errors.New("database key cannot be empty")
	}

	return fmt.Errorf("no system keyring on this platform: export %s=%s to keep the preferences database encrypted", EnvKeyName, key)
}

// DeleteKey has nothing to delete; the key lives in the environment.
func (k *fallbackKeyring) DeleteKey() error {
	return fmt.Errorf("no system keyring on this platform: unset %s to discard the database key", EnvKeyName)
}

// IsAvailable reports whether a database key is present in the environment.
func (k *fallbackKeyring) IsAvailable() bool {
	return os.Getenv(EnvKeyName) != ""
}
