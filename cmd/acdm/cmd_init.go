package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/git"
	"github.com/wrale/acdm/internal/manifest"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty config file",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	cmd.Flags().String("location", "", "Default parent directory for dependency targets")
	cmd.Flags().Bool("skip-commit", false, "Do not commit the new config file")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	location, _ := cmd.Flags().GetString("location")
	force, _ := cmd.Flags().GetBool("force")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	if _, err := manifest.Init(path, location, force); err != nil {
		if errors.Is(err, manifest.ErrExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	_, _ = fmt.Fprintf(stdout(cmd), "Created %s\n", path)

	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	if !git.IsGitInstalled() {
		logger.Warn("git is not installed; skipping commit")
		return nil
	}
	// Committing is best effort; the config exists either way.
	client := newGitClient(logger)
	if err := commitConfig(cmd.Context(), cmd, client, ws, "Initialize acdm"); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: git commit failed: %v\n", err)
	}
	return nil
}
