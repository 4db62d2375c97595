package git

import (
	"fmt"
	"strings"

	"github.com/wrale/acdm/internal/auth"
)

// Environment variables read by the inline credential helper.
const (
	envHelperUser     = "ACDM_GIT_USERNAME"
	envHelperPassword = "ACDM_GIT_PASSWORD"
)

// authArgs returns the extra environment and leading git flags that apply
// d to a network operation. A nil descriptor yields nothing.
func authArgs(d *auth.Descriptor) (env, flags []string) {
	if d == nil {
		return nil, nil
	}
	switch d.Kind {
	case auth.KindSSH:
		if d.KeyFile == "" {
			return nil, nil
		}
		// The path is shell-quoted to prevent injection via crafted filenames.
		sshCmd := fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=accept-new -o IdentitiesOnly=yes", shellQuote(d.KeyFile))
		return []string{"GIT_SSH_COMMAND=" + sshCmd}, nil

	case auth.KindHTTPSToken, auth.KindHTTPSBasic:
		// The secret travels in the environment; the helper only references it.
		env = []string{
			"GIT_TERMINAL_PROMPT=0",
			envHelperUser + "=" + d.Username,
			envHelperPassword + "=" + d.Secret,
		}
		flags = []string{
			"-c", "credential.helper=",
			"-c", fmt.Sprintf(`credential.helper=!f() { echo "username=$%s"; echo "password=$%s"; }; f`, envHelperUser, envHelperPassword),
		}
		return env, flags
	}
	return nil, nil
}

// insertGitFlags places flags ahead of the subcommand in args.
func insertGitFlags(args []string, flags ...string) []string {
	if len(flags) == 0 {
		return args
	}
	result := make([]string, 0, len(args)+len(flags))
	result = append(result, flags...)
	result = append(result, args...)
	return result
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
