package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nhoffmann/punchout/internal/crypto"
)

type CredCmd struct {
	Set    CredSetCmd    `cmd:"" help:"Store a credential for a service."`
	List   CredListCmd   `cmd:"" help:"List stored credentials (never shows secrets)."`
	Delete CredDeleteCmd `cmd:"" help:"Delete a stored credential."`
}

type CredSetCmd struct {
	Service  string `arg:"" help:"Service name." default:"${default_service}"`
	Email    string `short:"u" help:"Account email/username." required:""`
	Password string `short:"s" help:"Secret. Prompted for when omitted."`
}

func (c *CredSetCmd) Run(ctx *Context) error {
	if c.Password == "" {
		prompt := huh.NewInput().
			Title(fmt.Sprintf("Password for %s", c.Service)).
			EchoMode(huh.EchoModePassword).
			Value(&c.Password)
		if err := prompt.Run(); err != nil {
			return err
		}
		if c.Password == "" {
			return errors.New("secret cannot be empty")
		}
	}

	if err := ctx.Store.StoreCredential(c.Service, c.Email, c.Password); err != nil {
		return err
	}
	fmt.Printf("Stored credential for %s (%s)\n", c.Service, c.Email)
	return nil
}

type CredListCmd struct{}

func (c *CredListCmd) Run(ctx *Context) error {
	infos, err := ctx.Store.ListCredentials()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No credentials stored")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("  %-20s %s (updated %s)\n", info.Service, info.Identity, info.UpdatedAt)
	}
	return nil
}

type CredDeleteCmd struct {
	Service string `arg:"" help:"Service name."`
}

func (c *CredDeleteCmd) Run(ctx *Context) error {
	deleted, err := ctx.Store.DeleteCredential(c.Service)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("No credential stored for %s\n", c.Service)
		return nil
	}
	fmt.Printf("Deleted credential for %s\n", c.Service)
	return nil
}

// decryptionHint converts a crypto error into actionable output.
func decryptionHint(err error) error {
	var dErr *crypto.DecryptionError
	if errors.As(err, &dErr) {
		return fmt.Errorf("%w (the master key may have changed; re-store the credential)", err)
	}
	return err
}
