package models

// Credential is a decrypted stored secret for one external service.
type Credential struct {
	Service   string
	Identity  string
	Secret    string
	CreatedAt string
	UpdatedAt string
}

// CredentialInfo is the listing view of a credential. It never carries the
// secret.
type CredentialInfo struct {
	Service   string
	Identity  string
	CreatedAt string
	UpdatedAt string
}
