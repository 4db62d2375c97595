package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/selector"
)

func newIncludeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "include-paths <name> <pattern>...",
		Aliases: []string{"include"},
		Short:   "Add paths or glob patterns to a dependency",
		Args:    cobra.MinimumNArgs(2),
		RunE:    runInclude,
	}
	cmd.Flags().Bool("skip-commit", false, "Do not commit the updated config file")
	return cmd
}

func runInclude(cmd *cobra.Command, args []string) error {
	name, patterns := args[0], args[1:]

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	if err := selector.Validate(patterns); err != nil {
		return err
	}
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	client := newGitClient(logger)
	if err := requireClean(cmd.Context(), cmd, client, ws.Root); err != nil {
		return err
	}

	added, err := ws.Config.IncludePaths(name, patterns)
	if err != nil {
		return err
	}
	out := stdout(cmd)
	if len(added) == 0 {
		_, _ = fmt.Fprintf(out, "No new paths for %s.\n", name)
		return nil
	}
	if err := ws.Save(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Included in %s: %s\n", name, strings.Join(added, ", "))
	_, _ = fmt.Fprintln(out, "Run 'acdm update "+name+"' to vendor the new paths.")

	return commitConfig(cmd.Context(), cmd, client, ws, "Include paths in "+name)
}
