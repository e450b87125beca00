package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"backoffice/internal/api"
	"backoffice/internal/config"
	"backoffice/internal/discovery"
	"backoffice/internal/logging"
	"backoffice/internal/telemetry"
	"backoffice/internal/tui"
)

// Command flags
var (
	serverURL      string
	timeoutSeconds int
	outputFormat   string
	searchTerm     string
	scanTimeout    int
	noLiveRefresh  bool
)

func init() {
	// Common flags for API commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (overrides config and discovery)")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0, "Request timeout in seconds")

	rootCmd.Flags().BoolVar(&noLiveRefresh, "no-live-refresh", false, "Disable change feed auto-refresh")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(discoverCmd)
}

// browseCmd launches the interactive customer browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive customer browser",
	Long: `Launch the full-screen interactive customer browser.

The browser provides a searchable, paginated customer table with
create and edit forms and a per-customer detail view. This is the
recommended interface for day-to-day use.`,
	Example: `  # Launch with the configured or discovered server
  backoffice browse
  # Or simply (browse is default):
  backoffice

  # Launch against a specific server
  backoffice browse --server http://10.0.0.5:8432/api`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&noLiveRefresh, "no-live-refresh", false, "Disable change feed auto-refresh")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, otlpEndpoint(settings))
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	client, err := newClient(ctx, settings)
	if err != nil {
		return err
	}

	app := tui.NewAppModel(client)
	if liveRefreshEnabled(settings) {
		app.EnableLiveRefresh(client)
	}
	return tui.Run(app)
}

// listCmd prints customers without the interactive UI
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	Long: `List customers from the back-office API.

Fetches the first page of customers, optionally filtered by a search
term matched against name, email, and company.`,
	Example: `  # List the first page of customers
  backoffice list

  # Search by name, email, or company
  backoffice list --search acme

  # JSON output for scripting
  backoffice list --format json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&searchTerm, "search", "", "Filter by name, email, or company")
	listCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newClient(ctx, settings)
	if err != nil {
		return err
	}

	page, err := fetchWithTokenRetry(ctx, client, func() (*api.CustomerPage, error) {
		return client.List(ctx, api.ListOptions{Search: searchTerm})
	})
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "compact":
		for _, c := range page.Results {
			fmt.Printf("%d\t%s\t%s\n", c.ID, c.DisplayName(), c.Email)
		}
	case "detailed":
		fallthrough
	default:
		fmt.Printf("Showing %d of %d customer(s)", len(page.Results), page.Count)
		if searchTerm != "" {
			fmt.Printf(" matching %q", searchTerm)
		}
		fmt.Println()
		fmt.Println()
		for _, c := range page.Results {
			printCustomer(&c)
			fmt.Println()
		}
		if page.HasNext() {
			fmt.Println("More results available; narrow the search or use the interactive browser.")
		}
	}

	return nil
}

// showCmd displays a single customer
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one customer record",
	Long: `Display the authoritative record for a single customer.

The record is always fetched fresh from the server, never from a
cached list.`,
	Example: `  # Show customer 42
  backoffice show 42

  # JSON output for scripting
  backoffice show 42 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid customer id %q", args[0])
	}

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newClient(ctx, settings)
	if err != nil {
		return err
	}

	record, err := fetchWithTokenRetry(ctx, client, func() (*api.Customer, error) {
		return client.Get(ctx, id)
	})
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("customer %d not found", id)
		}
		return fmt.Errorf("failed to fetch customer: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printCustomer(record)
	return nil
}

// Customer field flags shared by create and update
var (
	fieldName    string
	fieldEmail   string
	fieldPhone   string
	fieldCompany string
	fieldSource  string
	inactive     bool
)

func customerFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fieldName, "name", "", "Customer display name")
	cmd.Flags().StringVar(&fieldEmail, "email", "", "Contact email address")
	cmd.Flags().StringVar(&fieldPhone, "phone", "", "Contact phone number")
	cmd.Flags().StringVar(&fieldCompany, "company", "", "Company name")
	cmd.Flags().StringVar(&fieldSource, "source", "", "Acquisition source")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Mark the customer inactive")
}

// createCmd registers a new customer
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a customer",
	Long: `Register a new customer with the back-office API.

The server assigns the identifier; the stored record is printed back.`,
	Example: `  # Create a customer
  backoffice create --name "Jane Doe" --email jane@example.com --company "Acme Ltd"`,
	RunE: runCreate,
}

func init() {
	customerFieldFlags(createCmd)
	_ = createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newClient(ctx, settings)
	if err != nil {
		return err
	}

	created, err := fetchWithTokenRetry(ctx, client, func() (*api.Customer, error) {
		return client.Create(ctx, api.Customer{
			Name:     fieldName,
			Email:    fieldEmail,
			Phone:    fieldPhone,
			Company:  fieldCompany,
			Source:   fieldSource,
			IsActive: !inactive,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	fmt.Println("Created:")
	printCustomer(created)
	return nil
}

// updateCmd edits an existing customer
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a customer",
	Long: `Update an existing customer record.

The current record is fetched first; only the fields given as flags
change, everything else is kept as stored.`,
	Example: `  # Rename customer 42
  backoffice update 42 --name "Jane Smith"

  # Deactivate customer 42
  backoffice update 42 --inactive`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	customerFieldFlags(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid customer id %q", args[0])
	}

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newClient(ctx, settings)
	if err != nil {
		return err
	}

	record, err := fetchWithTokenRetry(ctx, client, func() (*api.Customer, error) {
		return client.Get(ctx, id)
	})
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("customer %d not found", id)
		}
		return fmt.Errorf("failed to fetch customer: %w", err)
	}

	if cmd.Flags().Changed("name") {
		record.Name = fieldName
	}
	if cmd.Flags().Changed("email") {
		record.Email = fieldEmail
	}
	if cmd.Flags().Changed("phone") {
		record.Phone = fieldPhone
	}
	if cmd.Flags().Changed("company") {
		record.Company = fieldCompany
	}
	if cmd.Flags().Changed("source") {
		record.Source = fieldSource
	}
	if cmd.Flags().Changed("inactive") {
		record.IsActive = !inactive
	}

	updated, err := client.Update(ctx, *record)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	fmt.Println("Updated:")
	printCustomer(updated)
	return nil
}

// discoverCmd finds API servers on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover back-office servers on the network",
	Long: `Discover back-office API servers using mDNS/DNS-SD.

Listens for service announcements and prints each discovered server
with the base URL a client would use to reach it.`,
	Example: `  # Browse with the default timeout
  backoffice discover

  # Quick 2-second browse
  backoffice discover --scan-timeout 2`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "scan-timeout", config.DefaultDiscoverTimeout, "Browse timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	fmt.Printf("Browsing for back-office servers (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	endpoints, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure a server is running with mDNS announcement enabled")
		fmt.Println("  - Check that your network allows multicast traffic")
		fmt.Println("  - Use --server to specify the URL manually")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(endpoints))
	for i, endpoint := range endpoints {
		fmt.Printf("%d. %s\n", i+1, endpoint.Instance)
		fmt.Printf("   Address: %s\n", endpoint.String())
		fmt.Printf("   URL:     %s\n", endpoint.BaseURL())
		fmt.Println()
	}
	fmt.Println("Use 'backoffice --server <url>' to connect to a specific server")

	return nil
}

// newClient builds the API client from flags, config, and discovery, in
// that order of precedence.
func newClient(ctx context.Context, settings *config.Settings) (*api.Client, error) {
	base := serverURL
	if base == "" {
		base = configuredServerURL(ctx, settings)
	}

	client := api.NewClient(base)

	timeout := timeoutSeconds
	if timeout <= 0 {
		timeout = settings.TimeoutSeconds()
	}
	client.SetTimeout(time.Duration(timeout) * time.Second)

	if token := config.APIToken(); token != "" {
		client.SetToken(token)
	}

	return client, nil
}

// configuredServerURL resolves the server URL from the environment and the
// config file, falling back to mDNS discovery when nothing is configured
// explicitly and discovery is enabled.
func configuredServerURL(ctx context.Context, settings *config.Settings) string {
	explicit := os.Getenv(config.ServerURLEnvVar) != "" ||
		(settings.Server != nil && settings.Server.URL != "")
	if explicit {
		return settings.ServerURL()
	}

	if settings.Discovery == nil || !settings.Discovery.Auto {
		return settings.ServerURL()
	}

	scanner := discovery.NewScanner()
	if settings.Discovery.TimeoutSeconds > 0 {
		scanner.Timeout = time.Duration(settings.Discovery.TimeoutSeconds) * time.Second
	}

	endpoint, err := scanner.First(ctx)
	if err != nil || endpoint == nil {
		return settings.ServerURL()
	}
	fmt.Fprintf(os.Stderr, "Using discovered server %s (%s)\n", endpoint.Instance, endpoint.BaseURL())
	return endpoint.BaseURL()
}

// fetchWithTokenRetry runs a fetch and, on an authentication failure with no
// token in the environment, prompts for one on the terminal and retries
// once. The token is kept in memory only.
func fetchWithTokenRetry[T any](ctx context.Context, client *api.Client, fetch func() (T, error)) (T, error) {
	result, err := fetch()
	if err == nil || !api.IsAuth(err) || config.APIToken() != "" {
		return result, err
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return result, err
	}

	fmt.Fprint(os.Stderr, "API token required. Token: ")
	raw, promptErr := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if promptErr != nil || len(raw) == 0 {
		return result, err
	}

	client.SetToken(string(raw))
	return fetch()
}

// liveRefreshEnabled reports whether the browser should subscribe to the
// change feed.
func liveRefreshEnabled(settings *config.Settings) bool {
	if noLiveRefresh {
		return false
	}
	return settings.List != nil && settings.List.LiveRefresh
}

// otlpEndpoint returns the configured trace collector endpoint, if any.
func otlpEndpoint(settings *config.Settings) string {
	if settings.Telemetry == nil {
		return ""
	}
	return settings.Telemetry.OTLPEndpoint
}

// printCustomer writes one customer in the detailed text format.
func printCustomer(c *api.Customer) {
	status := "inactive"
	if c.IsActive {
		status = "active"
	}
	fmt.Printf("#%d %s (%s)\n", c.ID, c.DisplayName(), status)
	if c.Email != "" {
		fmt.Printf("   Email:   %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Printf("   Phone:   %s\n", c.Phone)
	}
	if c.Company != "" {
		fmt.Printf("   Company: %s\n", c.Company)
	}
	if c.Source != "" {
		fmt.Printf("   Source:  %s\n", c.Source)
	}
	fmt.Printf("   Orders:  %d (%s spent)\n", c.TotalOrders, c.TotalSpent.StringFixed(2))
}
