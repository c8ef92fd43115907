package cli

import "fmt"

// Login and logout manage local sessions for the companion UI surfaces.
// A login requires a stored credential for the service so the session maps
// to a real identity.

type LoginCmd struct {
	Service    string `help:"Credential service to log in against." default:"${default_service}"`
	Persistent bool   `help:"Keep the session for 30 days."`
	Admin      bool   `hidden:"" help:"Mark the session as admin."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	cred, ok, err := ctx.Store.GetCredential(c.Service)
	if err != nil {
		return decryptionHint(err)
	}
	if !ok {
		return fmt.Errorf("no credential stored for %s; run 'punchout cred set' first", c.Service)
	}

	session, err := ctx.Store.CreateSession(cred.Identity, c.Persistent, c.Admin)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", session.Identity)
	fmt.Printf("Session token: %s\n", session.Token)
	if session.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", *session.ExpiresAt)
	}
	return nil
}

type LogoutCmd struct {
	Token   string `arg:"" optional:"" help:"Session token to clear. With --all, clears every session for the identity."`
	All     bool   `help:"Clear all sessions for the credential identity."`
	Service string `help:"Credential service, used with --all." default:"${default_service}"`
}

func (c *LogoutCmd) Run(ctx *Context) error {
	if c.All {
		cred, ok, err := ctx.Store.GetCredential(c.Service)
		if err != nil {
			return decryptionHint(err)
		}
		if !ok {
			return fmt.Errorf("no credential stored for %s", c.Service)
		}
		if err := ctx.Store.ClearSessionsForIdentity(cred.Identity); err != nil {
			return err
		}
		fmt.Printf("Cleared all sessions for %s\n", cred.Identity)
		return nil
	}

	if c.Token == "" {
		return fmt.Errorf("a session token is required unless --all is given")
	}
	if err := ctx.Store.ClearSession(c.Token); err != nil {
		return err
	}
	fmt.Println("Session cleared")
	return nil
}
