// Package main provides the entry point for the orphanscan CLI.
//
// orphanscan finds potentially unused component files in a source tree.
// It indexes component files under a root directory, checks which
// component names appear in other files, and reports the ones nothing
// references.
//
// Usage:
//
//	orphanscan scan <directory>
//	orphanscan compare <directory>
//
// See --help for all available options.
package main

// main is the entry point for orphanscan.
func main() {
	Execute()
}
