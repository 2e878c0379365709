// Package main provides the entry point for the vscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for vscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vscan",
		Short: "Verbose error page detector for web applications",
		Long: `vscan fetches URLs and inspects the HTTP responses for verbose error
pages: stack traces, database error fragments, framework debug pages,
internal file paths, and version disclosures in headers.

Verbose error output tells an attacker exactly which framework, database,
and file layout a service runs on. vscan finds those pages before they do.`,
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
