package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/ui"
	"github.com/wrale/acdm/internal/workspace"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [name...]",
		Short: "Show the vendored state of each dependency",
		RunE:  runStatus,
	}
	cmd.Flags().BoolP("detailed", "d", false, "Show repository, paths, auth, size and locked commit")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

type depStatus struct {
	workspace.DependencyStatus
	Auth string `json:"auth"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	detailed, _ := cmd.Flags().GetBool("detailed")
	asJSON, _ := cmd.Flags().GetBool("json")

	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	deps := ws.Config.Sources
	if len(args) > 0 {
		if deps, err = ws.Select(args); err != nil {
			return err
		}
	}

	resolver := ws.Resolver()
	statuses := make([]depStatus, 0, len(deps))
	for _, d := range deps {
		s, err := ws.Inspect(d)
		if err != nil {
			return err
		}
		a, err := resolver.Resolve(d.Repo)
		if err != nil {
			return fmt.Errorf("resolving credentials for %s: %w", d.Name, err)
		}
		statuses = append(statuses, depStatus{DependencyStatus: s, Auth: a.Describe()})
	}

	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	headers := []string{"NAME", "STATE", "REV", "TARGET"}
	if detailed {
		headers = append(headers, "REPOSITORY", "PATHS", "AUTH", "FILES", "LOCKED")
	}
	tbl := ui.NewTable(out, headers...).WhenEmpty("No dependencies configured.")
	for _, s := range statuses {
		state := "fetched"
		if !s.Fetched {
			state = "not fetched"
		}
		row := []any{s.Name, state, s.Rev, s.Target}
		if detailed {
			row = append(row, s.Repo, s.Patterns, s.Auth, fileSummary(s.DependencyStatus), lockSummary(ws, s.Commit))
		}
		tbl.Row(row...)
	}
	return tbl.Flush()
}

func fileSummary(s workspace.DependencyStatus) string {
	if !s.Fetched {
		return ""
	}
	return fmt.Sprintf("%d (%s)", s.Files, humanize.Bytes(uint64(s.Bytes))) //nolint:gosec // sizes are non-negative
}

// lockSummary renders the locked commit and how long ago the lock was written.
func lockSummary(ws *workspace.Context, commit string) string {
	if commit == "" {
		return ""
	}
	if ws.Lock == nil || ws.Lock.GeneratedAt == "" {
		return shortCommit(commit)
	}
	at, err := time.Parse(time.RFC3339, ws.Lock.GeneratedAt)
	if err != nil {
		return shortCommit(commit)
	}
	return fmt.Sprintf("%s (%s)", shortCommit(commit), humanize.Time(at))
}
