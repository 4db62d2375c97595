// Package auth decides which credentials, if any, apply to a source URL.
// It never stores credentials; it only reads them from configured files or
// the environment at resolve time.
package auth

import (
	"fmt"
	"os"
	"strings"
)

// Kind identifies how a fetch authenticates against a remote.
type Kind int

const (
	KindNone Kind = iota
	KindSSH
	KindHTTPSToken
	KindHTTPSBasic
)

// TokenUsername is the username sent alongside a bare HTTPS token.
const TokenUsername = "x-access-token"

// Environment variables consulted by Resolve.
const (
	EnvToken    = "GIT_TOKEN"
	EnvUsername = "GIT_USERNAME"
	EnvPassword = "GIT_PASSWORD"
	EnvSSHKey   = "ACDM_SSH_KEY"
)

// Descriptor carries the credentials for one remote.
type Descriptor struct {
	Kind     Kind
	KeyFile  string // SSH private key; empty means agent or ssh config
	Username string
	Secret   string
}

// Describe renders the descriptor with secrets masked.
func (d *Descriptor) Describe() string {
	if d == nil {
		return "None"
	}
	switch d.Kind {
	case KindSSH:
		if d.KeyFile == "" {
			return "SSH (agent)"
		}
		return fmt.Sprintf("SSH (key: %s)", d.KeyFile)
	case KindHTTPSToken:
		return "HTTP Token: ******"
	case KindHTTPSBasic:
		return fmt.Sprintf("HTTP Basic: %s:******", d.Username)
	default:
		return "None"
	}
}

// String implements fmt.Stringer so descriptors never print their secret.
func (d *Descriptor) String() string { return d.Describe() }

// Resolver maps source URLs to descriptors.
type Resolver struct {
	SSHKeyFile     string
	HTTPSTokenFile string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// NewResolver returns a Resolver that reads the environment of the process.
func NewResolver(sshKeyFile, httpsTokenFile string) *Resolver {
	return &Resolver{SSHKeyFile: sshKeyFile, HTTPSTokenFile: httpsTokenFile}
}

// Resolve returns the descriptor for url, or nil when the fetch should run
// without explicit credentials.
func (r *Resolver) Resolve(url string) (*Descriptor, error) {
	switch {
	case IsSSH(url):
		key := r.SSHKeyFile
		if key == "" {
			key = r.getenv(EnvSSHKey)
		}
		return &Descriptor{Kind: KindSSH, KeyFile: key}, nil

	case strings.HasPrefix(url, "https://"):
		token, err := r.token()
		if err != nil {
			return nil, err
		}
		if token != "" {
			return &Descriptor{Kind: KindHTTPSToken, Username: TokenUsername, Secret: token}, nil
		}
		user, pass := r.getenv(EnvUsername), r.getenv(EnvPassword)
		if user != "" && pass != "" {
			return &Descriptor{Kind: KindHTTPSBasic, Username: user, Secret: pass}, nil
		}
		return nil, nil
	}
	return nil, nil
}

// IsSSH reports whether url uses scp-like or ssh:// syntax.
func IsSSH(url string) bool {
	if strings.HasPrefix(url, "ssh://") {
		return true
	}
	if strings.Contains(url, "://") {
		return false
	}
	at := strings.Index(url, "@")
	colon := strings.Index(url, ":")
	return at > 0 && colon > at
}

func (r *Resolver) token() (string, error) {
	if r.HTTPSTokenFile != "" {
		data, err := os.ReadFile(r.HTTPSTokenFile) //nolint:gosec // configured token file
		if err != nil {
			return "", fmt.Errorf("reading HTTPS token file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(r.getenv(EnvToken)), nil
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}
