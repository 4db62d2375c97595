package manifest

// DefaultFile is the configuration file name looked up by default.
const DefaultFile = "acdm.toml"

// DefaultRev is used when a dependency does not name a revision.
const DefaultRev = "main"

// TypeGit is the only supported repository type.
const TypeGit = "git"

// Config represents acdm.toml.
type Config struct {
	// Location is the default parent directory for new targets.
	Location string       `toml:"location,omitempty"`
	Backend  string       `toml:"backend,omitempty"`
	Auth     Auth         `toml:"auth,omitempty"`
	Sources  []Dependency `toml:"sources"`
}

// Auth points at credentials used when fetching.
type Auth struct {
	SSHKeyFile     string `toml:"ssh_key_file,omitempty"`
	HTTPSTokenFile string `toml:"https_token_file,omitempty"`
}

// Dependency is one vendored subtree of an external repository.
type Dependency struct {
	Name        string   `toml:"name"`
	Repo        string   `toml:"repo"`
	Rev         string   `toml:"rev"`
	Type        string   `toml:"type"`
	SparsePaths []string `toml:"sparse_paths"`
	Target      string   `toml:"target"`
}

// EffectiveRev returns the revision, defaulting to "main".
func (d *Dependency) EffectiveRev() string {
	if d.Rev != "" {
		return d.Rev
	}
	return DefaultRev
}

// EffectiveType returns the repository type, defaulting to "git".
func (d *Dependency) EffectiveType() string {
	if d.Type != "" {
		return d.Type
	}
	return TypeGit
}

// Names returns the dependency names in declaration order.
func (c *Config) Names() []string {
	out := make([]string, len(c.Sources))
	for i, d := range c.Sources {
		out[i] = d.Name
	}
	return out
}

// Find returns the dependency with the given name, or nil.
func (c *Config) Find(name string) *Dependency {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i]
		}
	}
	return nil
}
