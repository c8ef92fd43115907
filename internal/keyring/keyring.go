package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/nhoffmann/punchout/internal/constants"
)

var (
	// ErrNotFound is returned when no master key is stored in the keyring
	ErrNotFound = errors.New("master key not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetMasterKey retrieves the credential-encryption master key from the OS
// keyring. Returns ErrNotFound if none is stored.
func GetMasterKey() (string, error) {
	key, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		// Wrap other keyring errors as unavailable
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

// SetMasterKey stores the credential-encryption master key in the OS keyring.
func SetMasterKey(key string) error {
	if key == "" {
		return errors.New("master key cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, key); err != nil {
		return fmt.Errorf("failed to store master key in keyring: %w", err)
	}
	return nil
}

// DeleteMasterKey removes the master key from the OS keyring.
func DeleteMasterKey() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete master key from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring is available but empty
	return err == nil || err == keyring.ErrNotFound
}
