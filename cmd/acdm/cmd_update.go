package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/engine"
	"github.com/wrale/acdm/internal/fetch"
	"github.com/wrale/acdm/internal/lock"
	"github.com/wrale/acdm/internal/ui"
	"github.com/wrale/acdm/internal/workspace"
)

const defaultUpdateMessage = "Update dependencies"

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [name...]",
		Short: "Fetch dependencies and replace their targets",
		Long: `Fetch each selected dependency at its configured revision and replace
its target directory with the selected paths. Dependencies are updated in
config order and the run stops at the first failure. The result is
committed unless --skip-commit is given.`,
		RunE: runUpdate,
	}
	cmd.Flags().StringP("message", "m", defaultUpdateMessage, "Commit message")
	cmd.Flags().Bool("skip-commit", false, "Leave the changes uncommitted")
	cmd.Flags().String("backend", "", "Fetch backend: git or go-git (default from config, then git)")
	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("message")
	skipCommit, _ := cmd.Flags().GetBool("skip-commit")
	backend, _ := cmd.Flags().GetString("backend")
	force, _ := cmd.Flags().GetBool("force")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	deps, err := ws.Select(args)
	if err != nil {
		return err
	}

	if backend == "" {
		backend = ws.Config.Backend
	}
	client := newGitClient(logger)
	cloner, err := fetch.NewCloner(backend, client)
	if err != nil {
		return err
	}

	updater := engine.NewUpdater(fetch.NewSource(cloner, logger), engine.OSFileSystem{}, ws.Resolver(), logger)
	mgr := engine.NewManager(updater, client,
		engine.WithLogger(logger),
		engine.WithRecorder(newLockRecorder(ws)),
	)

	out := stdout(cmd)
	progress := ui.NewProgress(out, len(deps))
	opts := engine.UpdateOptions{
		Force: force,
		OnUpdated: func(r engine.Result) {
			progress.Done(r.Name, fmt.Sprintf("%s, %d files -> %s", shortCommit(r.Commit), r.Files, r.Target))
		},
	}
	if !skipCommit {
		opts.Message = message
	}
	if stdinIsTerminal() {
		opts.Confirm = confirmPurge(cmd.OutOrStdout())
	}

	results, err := mgr.UpdateAll(cmd.Context(), deps, ws.Root, opts)
	if err != nil {
		var de *engine.DependencyError
		if errors.As(err, &de) {
			progress.Fail(de.Name, de.Err)
		}
		if len(results) > 0 {
			progress.Log("%d of %d dependencies were updated and left uncommitted.", len(results), len(deps))
		}
		return withForceHint(err)
	}

	progress.Log("Updated %d %s.", len(results), plural(len(results), "dependency", "dependencies"))
	return nil
}

// lockRecorder writes successful results to the lock file.
type lockRecorder struct {
	path       string
	configured []string
	now        func() time.Time
}

func newLockRecorder(ws *workspace.Context) *lockRecorder {
	return &lockRecorder{
		path:       ws.LockPath,
		configured: ws.Config.Names(),
		now:        time.Now,
	}
}

func (r *lockRecorder) Record(results []engine.Result) error {
	entries := make(map[string]lock.Source, len(results))
	for _, res := range results {
		entries[res.Name] = lock.Source{
			URL:    res.URL,
			Rev:    res.Rev,
			Commit: res.Commit,
			Target: res.Target,
		}
	}
	_, err := lock.Update(r.path, entries, r.configured, version, r.now())
	return err
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
