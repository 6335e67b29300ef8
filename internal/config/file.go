package config

// File represents the structure of the .orphanscan configuration file.
// Every field is optional; unset fields fall back to the built-in
// defaults, and CLI flags override file values in turn.
type File struct {
	// Extension overrides the component-file extension (e.g. ".jsx").
	Extension string `yaml:"extension,omitempty"`

	// TestSuffix overrides the test-file exclusion suffix.
	TestSuffix string `yaml:"testSuffix,omitempty"`

	// EntryPoints replaces the default entry-point list when non-empty.
	// Paths are root-relative with forward slashes.
	EntryPoints []string `yaml:"entryPoints,omitempty"`

	// Workers overrides the scan-phase concurrency when positive.
	Workers int `yaml:"workers,omitempty"`
}

// Apply merges the file's settings into cfg.
// Only fields the file actually sets are applied, so the precedence
// order stays defaults < file < flags (the caller applies flags after).
func (f *File) Apply(cfg *Config) {
	if f.Extension != "" {
		cfg.Extension = f.Extension
	}
	if f.TestSuffix != "" {
		cfg.TestSuffix = f.TestSuffix
	}
	if len(f.EntryPoints) > 0 {
		cfg.EntryPoints = f.EntryPoints
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
}
