package lock

// DefaultFile is the lock file name, stored next to acdm.toml.
const DefaultFile = "acdm.lock.yaml"

// File represents acdm.lock.yaml.
type File struct {
	Version     int                `yaml:"version"`
	GeneratedAt string             `yaml:"generated_at"`
	ToolVersion string             `yaml:"tool_version"`
	Sources     map[string]*Source `yaml:"sources"`
}

// Source records the vendored state of a single dependency.
type Source struct {
	URL    string `yaml:"url"`
	Rev    string `yaml:"rev"`
	Commit string `yaml:"commit"`
	Target string `yaml:"target"`
}
