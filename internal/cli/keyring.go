package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nhoffmann/punchout/internal/crypto"
	"github.com/nhoffmann/punchout/internal/keyring"
)

// KeyringCmd manages the credential master key in the OS keyring. A key
// stored here takes precedence over the machine/user fallback but is still
// overridden by the environment variable.
type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the credential master key in the OS keyring."`
	Clear  KeyringClearCmd  `cmd:"" help:"Remove the master key from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability and whether a key is stored." default:"1"`
}

type KeyringSetCmd struct {
	Key      string `short:"k" help:"Master key to store. Prompted for when omitted."`
	Generate bool   `help:"Generate a random master key instead of prompting."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if c.Generate && c.Key != "" {
		return errors.New("--generate and --key are mutually exclusive")
	}

	if c.Generate {
		key, err := crypto.NewToken(32)
		if err != nil {
			return fmt.Errorf("failed to generate master key: %w", err)
		}
		c.Key = key
	} else if c.Key == "" {
		prompt := huh.NewInput().
			Title("Master key").
			EchoMode(huh.EchoModePassword).
			Value(&c.Key)
		if err := prompt.Run(); err != nil {
			return err
		}
		if c.Key == "" {
			return errors.New("master key cannot be empty")
		}
	}

	if err := keyring.SetMasterKey(c.Key); err != nil {
		return err
	}

	fmt.Println("Master key stored in OS keyring")
	fmt.Println("Credentials stored under a different key are no longer readable; re-run 'punchout cred set' for each service")
	return nil
}

type KeyringClearCmd struct{}

func (c *KeyringClearCmd) Run(ctx *Context) error {
	if err := keyring.DeleteMasterKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No master key stored in OS keyring")
			return nil
		}
		return err
	}
	fmt.Println("Master key removed from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (c *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("OS keyring is not available on this system; the environment variable or machine fallback key is in use")
		return errors.New("keyring unavailable")
	}
	fmt.Println("OS keyring is available")

	_, err := keyring.GetMasterKey()
	switch {
	case err == nil:
		fmt.Println("A master key is stored")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("No master key stored; the environment variable or machine fallback key is in use")
	default:
		return err
	}
	return nil
}
