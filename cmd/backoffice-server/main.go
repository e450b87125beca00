// Backoffice-server is a development server for the customer back-office API.
//
// It serves the customer REST endpoints and websocket change feed from an
// in-memory store, optionally seeded from a YAML fixture and announced over
// mDNS. It exists for local development and demos; nothing persists across
// restarts.
//
// Usage:
//
//	backoffice-server serve [flags]
//
// See 'backoffice-server serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"backoffice/internal/server"
	"backoffice/internal/version"
)

func main() {
	// A .env file in the working directory supplies environment defaults
	// during development; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backoffice-server",
	Short: "Customer Back-Office Development Server",
	Long: `A standalone development server for the customer back-office API.

Serves the customer list, detail, create, and update endpoints with the
same pagination envelope as the production backend, plus a websocket
change feed for live updates.

Note: All data is held in memory and lost on shutdown.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host     string
	port     int
	seedPath string
	pageSize int
	mdns     bool
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the customer API server and block until interrupted.

The store starts empty unless --seed points to a YAML fixture. With
--mdns the server announces itself so clients on the same network can
discover it without configuration.`,
	Example: `  # Start empty on the default port
  backoffice-server serve

  # Start with seed data and discovery announcement
  backoffice-server serve --seed testdata/customers.yaml --mdns

  # Small pages to exercise client pagination
  backoffice-server serve --seed testdata/customers.yaml --page-size 5

  # Custom address with debug logging
  backoffice-server serve --host 127.0.0.1 --port 9000 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen host (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8432, "Listen port")
	serveCmd.Flags().StringVar(&seedPath, "seed", "", "YAML fixture to load at startup")
	serveCmd.Flags().IntVar(&pageSize, "page-size", 0, "Customers per list page")
	serveCmd.Flags().BoolVar(&mdns, "mdns", false, "Announce the server over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(&server.Config{
		Host:     host,
		Port:     port,
		SeedPath: seedPath,
		PageSize: pageSize,
		Announce: mdns,
		LogLevel: logLevel,
	})
	if err != nil {
		return err
	}
	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backoffice-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
