package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/git"
)

// remoteCheckTimeout bounds each ls-remote probe.
const remoteCheckTimeout = 30 * time.Second

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment for common issues",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	client := newGitClient(logger)

	// Check git.
	_, _ = fmt.Fprint(out, "Checking git... ")
	ver, gitErr := client.Version(cmd.Context())
	if gitErr != nil {
		_, _ = fmt.Fprintln(out, "NOT FOUND")
		_, _ = fmt.Fprintln(out, "  git is required. Install it from https://git-scm.com/")
		ok = false
	} else {
		_, _ = fmt.Fprintln(out, ver)
	}

	// Check config.
	path, _ := cmd.Flags().GetString("config")
	_, _ = fmt.Fprintf(out, "Checking %s... ", path)
	ws, loadErr := loadWorkspace(cmd)
	if loadErr != nil {
		_, _ = fmt.Fprintln(out, "FAILED")
		_, _ = fmt.Fprintf(out, "  %v\n", loadErr)
		ok = false
	} else {
		_, _ = fmt.Fprintf(out, "OK (%d dependencies)\n", len(ws.Config.Sources))
	}

	if ws != nil && gitErr == nil {
		resolver := ws.Resolver()
		for _, d := range ws.Config.Sources {
			_, _ = fmt.Fprintf(out, "  Checking %s (%s)... ", d.Name, d.Repo)
			a, rerr := resolver.Resolve(d.Repo)
			if rerr == nil {
				rerr = checkRemote(cmd.Context(), client, d.Repo, a)
			}
			if rerr != nil {
				_, _ = fmt.Fprintf(out, "FAILED (auth: %s)\n    %v\n", a.Describe(), rerr)
				ok = false
				continue
			}
			_, _ = fmt.Fprintf(out, "OK (auth: %s)\n", a.Describe())
		}
	}

	if ok {
		_, _ = fmt.Fprintln(out, "\nAll checks passed.")
		return nil
	}
	_, _ = fmt.Fprintln(out, "\nSome checks failed. See above for details.")
	return fmt.Errorf("doctor checks failed")
}

// checkRemote verifies that url is reachable with the resolved credentials.
func checkRemote(ctx context.Context, client *git.Client, url string, a *auth.Descriptor) error {
	ctx, cancel := context.WithTimeout(ctx, remoteCheckTimeout)
	defer cancel()
	return client.LsRemote(ctx, url, a)
}
