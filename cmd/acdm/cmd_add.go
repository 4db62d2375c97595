package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/acdm/internal/manifest"
	"github.com/wrale/acdm/internal/selector"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Add a dependency to the config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAdd,
	}
	cmd.Flags().String("name", "", "Dependency name (default: repository base name)")
	cmd.Flags().String("rev", manifest.DefaultRev, "Branch, tag or commit to vendor")
	cmd.Flags().String("target", "", "Target directory (default: <location>/<name>)")
	cmd.Flags().StringSlice("include", nil, "Paths or glob patterns to vendor (default: everything)")
	cmd.Flags().Bool("skip-commit", false, "Do not commit the updated config file")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
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

	dep, err := collectDependency(cmd, ws.Config, args)
	if err != nil {
		return err
	}

	if err := ws.Config.AddDependency(dep); err != nil {
		return err
	}
	if err := ws.Save(); err != nil {
		return err
	}

	added := ws.Config.Find(dep.Name)
	_, _ = fmt.Fprintf(stdout(cmd), "Added %s (%s@%s) -> %s\n", added.Name, added.Repo, added.EffectiveRev(), added.Target)

	return commitConfig(cmd.Context(), cmd, client, ws, "Add dependency "+dep.Name)
}

// collectDependency builds the new dependency from flags, or prompts for it
// when no URL was given and stdin is a TTY.
func collectDependency(cmd *cobra.Command, cfg *manifest.Config, args []string) (manifest.Dependency, error) {
	if len(args) == 0 {
		if !stdinIsTerminal() {
			return manifest.Dependency{}, fmt.Errorf("no URL provided and stdin is not a TTY; provide the repository URL as an argument")
		}
		dep, err := interactiveAddDependency(cfg)
		if err != nil {
			return manifest.Dependency{}, fmt.Errorf("interactive add: %w", err)
		}
		return dep, nil
	}

	url := args[0]
	if url == "" {
		return manifest.Dependency{}, fmt.Errorf("empty URL is not allowed")
	}
	name, _ := cmd.Flags().GetString("name")
	rev, _ := cmd.Flags().GetString("rev")
	target, _ := cmd.Flags().GetString("target")
	include, _ := cmd.Flags().GetStringSlice("include")

	if name == "" {
		name = nameFromURL(url)
	}
	if name == "" {
		return manifest.Dependency{}, fmt.Errorf("cannot infer dependency name from URL %q; use --name", url)
	}
	if target == "" {
		target = cfg.DefaultTarget(name)
	}
	if err := selector.Validate(include); err != nil {
		return manifest.Dependency{}, err
	}

	return manifest.Dependency{
		Name:        name,
		Repo:        url,
		Rev:         rev,
		Target:      target,
		SparsePaths: include,
	}, nil
}
