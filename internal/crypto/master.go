package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/keyring"
)

// ResolveMasterKey returns the master secret used for credential
// encryption. Resolution order: environment override, OS keyring, then a
// deterministic machine/user-derived fallback. The fallback is acceptable
// for a single-user desktop tool only; it keeps credentials opaque on disk
// without requiring setup.
func ResolveMasterKey() (string, error) {
	if key := os.Getenv(constants.EnvMasterKey); key != "" {
		return key, nil
	}

	key, err := keyring.GetMasterKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable) {
		return "", err
	}

	return fallbackMasterKey(), nil
}

// fallbackMasterKey derives a stable secret from the machine hostname and
// the user's home directory.
func fallbackMasterKey() string {
	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", constants.AppName, hostname, home)))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
