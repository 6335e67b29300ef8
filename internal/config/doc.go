// Package config provides configuration structures and utilities for
// orphanscan. It defines the scan options (root directories, component
// extension, test-file exclusion, entry points, concurrency) and the
// optional .orphanscan project file that overrides the built-in defaults.
package config
