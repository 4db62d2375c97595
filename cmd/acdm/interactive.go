package main

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wrale/acdm/internal/manifest"
	"github.com/wrale/acdm/internal/selector"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// --- inputModel: bubbletea model for text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			val := m.textInput.Value()
			if m.validate != nil {
				if err := m.validate(val); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirmModel: bubbletea model for yes/no confirmation ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes := " Yes "
	no := " No "
	if m.value {
		yes = selectedStyle.Render(" Yes ")
	} else {
		no = selectedStyle.Render(" No ")
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

// --- prompt helpers ---

// promptInput asks for a line of text. An empty answer yields def.
func promptInput(title, def string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = def
	ti.Focus()

	wrapped := validate
	if validate != nil && def != "" {
		wrapped = func(s string) error {
			if strings.TrimSpace(s) == "" {
				s = def
			}
			return validate(s)
		}
	}

	m := inputModel{
		textInput: ti,
		title:     title,
		validate:  wrapped,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", fmt.Errorf("user aborted")
	}
	val := strings.TrimSpace(rm.textInput.Value())
	if val == "" {
		val = def
	}
	return val, nil
}

func promptConfirm(title string) (bool, error) {
	m := confirmModel{
		title: title,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, fmt.Errorf("user aborted")
	}
	return rm.value, nil
}

// nameFromURL extracts a dependency name from a Git URL.
// Handles both SSH (git@host:org/repo.git) and HTTPS (https://host/org/repo.git).
func nameFromURL(url string) string {
	url = strings.TrimRight(url, "/")

	// SSH format: git@github.com:org/repo.git
	if idx := strings.LastIndex(url, ":"); idx != -1 && !strings.Contains(url, "://") {
		url = url[idx+1:]
	}

	name := path.Base(url)
	name = strings.TrimSuffix(name, ".git")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// confirmPurge lists the targets about to be replaced and asks whether to
// continue.
func confirmPurge(out io.Writer) func(targets []string) (bool, error) {
	return func(targets []string) (bool, error) {
		_, _ = fmt.Fprintln(out, titleStyle.Render("The following directories will be purged and replaced:"))
		for _, t := range targets {
			_, _ = fmt.Fprintf(out, "  %s\n", targetStyle.Render(t))
		}
		return promptConfirm("Continue?")
	}
}

// interactiveAddDependency collects a new dependency from the user.
// Names already configured in cfg are rejected.
func interactiveAddDependency(cfg *manifest.Config) (manifest.Dependency, error) {
	url, err := promptInput("Enter Git repository URL", "", func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("repository URL is required")
		}
		if nameFromURL(s) == "" {
			return fmt.Errorf("cannot infer dependency name from URL")
		}
		return nil
	})
	if err != nil {
		return manifest.Dependency{}, err
	}

	name, err := promptInput("Name", nameFromURL(url), dependencyNameValidator(cfg))
	if err != nil {
		return manifest.Dependency{}, err
	}

	rev, err := promptInput("Revision (branch, tag or commit)", manifest.DefaultRev, nil)
	if err != nil {
		return manifest.Dependency{}, err
	}

	target, err := promptInput("Target directory", cfg.DefaultTarget(name), nil)
	if err != nil {
		return manifest.Dependency{}, err
	}

	patterns, err := promptInput("Paths to include (comma separated, empty for all)", "", func(s string) error {
		return selector.Validate(splitPatterns(s))
	})
	if err != nil {
		return manifest.Dependency{}, err
	}

	return manifest.Dependency{
		Name:        name,
		Repo:        url,
		Rev:         rev,
		Target:      target,
		SparsePaths: splitPatterns(patterns),
	}, nil
}

// dependencyNameValidator rejects empty, path-like and duplicate names.
func dependencyNameValidator(cfg *manifest.Config) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("name is required")
		}
		if s == "." || s == ".." {
			return fmt.Errorf("invalid name %q", s)
		}
		if strings.ContainsAny(s, "/\\") {
			return fmt.Errorf("name must not contain path separators")
		}
		if cfg.Find(s) != nil {
			return fmt.Errorf("dependency %q already exists", s)
		}
		return nil
	}
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
