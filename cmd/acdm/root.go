package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wrale/acdm/internal/engine"
	"github.com/wrale/acdm/internal/git"
	"github.com/wrale/acdm/internal/manifest"
	"github.com/wrale/acdm/internal/workspace"
)

// stdinIsTerminal gates every interactive prompt. Tests replace it.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "acdm",
		Short:         "Vendor selected paths of git repositories into your project",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", manifest.DefaultFile, "Path to the config file")
	pf.BoolP("force", "f", false, "Skip the clean workspace check and confirmations")
	pf.BoolP("quiet", "q", false, "Only print errors")
	pf.BoolP("verbose", "v", false, "Log debug output (same as --log-level debug)")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newIncludeCmd(),
		newUpdateCmd(),
		newStatusCmd(),
		newDoctorCmd(),
	)

	return cmd
}

// loadWorkspace loads the config selected by --config.
func loadWorkspace(cmd *cobra.Command) (*workspace.Context, error) {
	path, _ := cmd.Flags().GetString("config")
	return workspace.Load(path)
}

func newGitClient(logger *slog.Logger) *git.Client {
	return git.New(git.NewExecRunner(logger))
}

// requireClean enforces the clean workspace precondition unless --force is set.
func requireClean(ctx context.Context, cmd *cobra.Command, client *git.Client, root string) error {
	if force, _ := cmd.Flags().GetBool("force"); force {
		return nil
	}
	if err := engine.CheckWorkspace(ctx, client, root); err != nil {
		return withForceHint(err)
	}
	return nil
}

// commitConfig commits the config file alone. It is a no-op when
// skipCommit is set or the workspace is not versioned.
func commitConfig(ctx context.Context, cmd *cobra.Command, client *git.Client, ws *workspace.Context, message string) error {
	if skip, _ := cmd.Flags().GetBool("skip-commit"); skip {
		return nil
	}
	versioned, err := client.IsWorkTree(ctx, ws.Root)
	if err != nil || !versioned {
		return nil
	}
	return client.CommitPaths(ctx, ws.Root, message, filepath.Base(ws.ConfigPath))
}

// withForceHint points at --force when a precondition on the workspace failed.
func withForceHint(err error) error {
	var ue *engine.UncleanWorkspaceError
	var se *git.WorkspaceStateError
	if errors.As(err, &ue) || errors.As(err, &se) {
		return fmt.Errorf("%w\nhint: commit or stash your changes, or rerun with --force to skip this check", err)
	}
	return err
}
