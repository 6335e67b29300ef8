// Package main provides the entry point for the orphanscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for orphanscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphanscan",
		Short: "Find potentially unused component files in a source tree",
		Long: `orphanscan finds component files that nothing else references.

It indexes component files under a root directory (by default .tsx files,
excluding .test.tsx), checks whether each component's name appears inside
any other component file, and reports the files with no incoming
reference. Entry points such as index.tsx and App.tsx are excluded even
though nothing imports them by name.

The match is a plain substring check, so the report lists candidates for
removal rather than proven dead code. Review each hit before deleting.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
