package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wrale/acdm/internal/git"
	"github.com/wrale/acdm/internal/manifest"
)

// UpdateOptions controls a Manager run.
type UpdateOptions struct {
	// Message, when set, commits the result if the root is a work tree.
	Message string
	// Force skips the clean-workspace precondition and the confirmation.
	Force bool
	// Confirm is asked once, before any fetch, with the targets about to
	// be replaced. Returning false cancels the run.
	Confirm func(targets []string) (bool, error)
	// OnUpdated is called after each dependency succeeds.
	OnUpdated func(Result)
}

// Manager runs the Updater over a list of dependencies.
type Manager struct {
	updater    *Updater
	guard      Guard
	recorder   Recorder
	newScratch func() ScratchSpace
	logger     *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRecorder records results after every fully successful run.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// WithScratch overrides how the per-run scratch manager is created.
func WithScratch(f func() ScratchSpace) ManagerOption {
	return func(m *Manager) { m.newScratch = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns a Manager that updates with u and guards with g.
func NewManager(u *Updater, g Guard, opts ...ManagerOption) *Manager {
	m := &Manager{
		updater:    u,
		guard:      g,
		newScratch: NewScratch,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UpdateAll updates deps in order under root and stops at the first
// failure. Dependencies updated before the failure keep their new content
// and nothing is committed. The results of the dependencies that succeeded
// are returned alongside any error.
func (m *Manager) UpdateAll(ctx context.Context, deps []manifest.Dependency, root string, opts UpdateOptions) ([]Result, error) {
	versioned, err := m.precondition(ctx, root, opts.Force)
	if err != nil {
		return nil, err
	}

	if opts.Confirm != nil && !opts.Force {
		targets := make([]string, len(deps))
		for i, d := range deps {
			targets[i] = d.Target
		}
		ok, err := opts.Confirm(targets)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCanceled
		}
	}

	scratch := m.newScratch()
	defer func() {
		if err := scratch.ReleaseAll(); err != nil {
			m.logger.Warn("failed to release scratch directories", "error", err)
		}
	}()

	results := make([]Result, 0, len(deps))
	for _, dep := range deps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := m.updater.Update(ctx, scratch, dep, root)
		if err != nil {
			m.logger.Error("update stopped", "dependency", dep.Name, "error", err,
				"updated", len(results), "remaining", len(deps)-len(results)-1)
			return results, err
		}
		results = append(results, res)
		if opts.OnUpdated != nil {
			opts.OnUpdated(res)
		}
	}

	if m.recorder != nil {
		if err := m.recorder.Record(results); err != nil {
			return results, fmt.Errorf("recording results: %w", err)
		}
	}

	if opts.Message == "" || !versioned {
		return results, nil
	}
	if err := m.guard.StageAll(ctx, root); err != nil {
		return results, fmt.Errorf("staging changes: %w", err)
	}
	if err := m.guard.Commit(ctx, root, opts.Message); err != nil {
		return results, err
	}
	m.logger.Info("committed changes", "message", opts.Message)
	return results, nil
}

// precondition reports whether root is a work tree and, unless force is
// set, requires it to be a clean one.
func (m *Manager) precondition(ctx context.Context, root string, force bool) (bool, error) {
	if force {
		versioned, err := m.guard.IsWorkTree(ctx, root)
		if err != nil {
			m.logger.Debug("workspace state unavailable, continuing", "error", err)
			return false, nil
		}
		return versioned, nil
	}
	if err := CheckWorkspace(ctx, m.guard, root); err != nil {
		return false, err
	}
	return true, nil
}

// CheckWorkspace fails unless root is a git work tree with no uncommitted
// or untracked changes.
func CheckWorkspace(ctx context.Context, g Guard, root string) error {
	versioned, err := g.IsWorkTree(ctx, root)
	if err != nil {
		return err
	}
	if !versioned {
		return &git.WorkspaceStateError{Path: root, Err: git.ErrNotWorkTree}
	}

	state, err := g.State(ctx, root)
	if err != nil {
		return &git.WorkspaceStateError{Path: root, Err: err}
	}
	if !state.IsClean() {
		status, _ := g.ShortStatus(ctx, root)
		return &UncleanWorkspaceError{Root: root, State: state, Status: status}
	}
	return nil
}
