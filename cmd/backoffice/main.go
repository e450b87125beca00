// Backoffice is a terminal client for browsing and editing customer records.
//
// It provides a full-screen interactive browser over a customer REST API,
// plus direct commands for listing, inspecting, and discovering servers.
//
// Usage:
//
//	backoffice [command] [flags]
//
// Running without arguments launches the interactive browser.
// See 'backoffice --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backoffice/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Customer Back-Office Terminal Client",
	Long: `A terminal client for the customer back-office API.

Browse, search, create, and edit customer records in a full-screen
interactive interface, or use the direct commands for scripting.

If no command is specified, the interactive browser launches.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backoffice %s (commit: %s)\n", version.Version, version.Commit)
	},
}
