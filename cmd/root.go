// ABOUTME: Root command for the booking CLI
// ABOUTME: Handles global flags, configuration, and shared command wiring

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/config"
	"github.com/nandasurya23/resource-booking-cli/internal/logger"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
	"github.com/nandasurya23/resource-booking-cli/internal/workflow"
)

var (
	apiURL     string
	jsonOutput bool
	timeout    time.Duration
	configDir  string
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "booking",
	Short: "Client for the resource booking service",
	Long: `booking is a command-line and terminal UI client for the resource booking service.

Users log in, list bookings, and request new ones. Admins can also approve
and cancel bookings. Run without a subcommand to open the terminal UI.

Exit codes:
  0 - Success
  1 - Request rejected (validation, permissions, or booking status)
  2 - Error (connectivity, authentication, server)

Environment Variables:
  BOOKING_API_URL         Backend API URL (default: http://localhost:8080)
  BOOKING_TIMEOUT         Request timeout (default: 10s)
  BOOKING_CONFIG_DIR      Session and catalog directory (default: ~/.config/booking)
  BOOKING_TIMEZONE        Zone for entered and displayed times (default: local)
  BOOKING_RATE_LIMIT      Max requests per second, 0 to disable (default: 0)
  BOOKING_RESOURCES_FILE  YAML resource catalog
  LOG_LEVEL, LOG_FORMAT   Logging (default: warn, text)`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		runTUICommand()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides BOOKING_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides BOOKING_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for the session file (overrides BOOKING_CONFIG_DIR)")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// env bundles what a command needs to talk to the backend
type env struct {
	cfg     *config.Config
	client  *client.Client
	store   *session.Store
	catalog booking.Catalog
}

// loadEnv builds the command environment from config, with flags taking
// priority over environment variables and defaults
func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithTimeout(cfg.Timeout)}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	return &env{
		cfg:     cfg,
		client:  client.New(cfg.APIURL, opts...),
		store:   session.NewStore(cfg.ConfigDir),
		catalog: catalog,
	}, nil
}

// newWorkflow creates a workflow over the persisted session
func (e *env) newWorkflow() *workflow.Workflow {
	return workflow.New(e.store, e.client)
}

// location returns the zone used for entered and displayed times
func (e *env) location() *time.Location {
	if e.cfg.Location == nil {
		return time.Local
	}
	return e.cfg.Location
}

// runCommand wires signal handling, logging, and config for a command body
// and exits with the code it returns
func runCommand(run func(ctx context.Context, w io.Writer, e *env) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(exitError)
	}
	logger.Init(os.Stderr, e.cfg.LogLevel, e.cfg.LogFormat)

	exitCode := run(ctx, os.Stdout, e)
	if exitCode != exitOK {
		os.Exit(exitCode)
	}
}

// exitCodeFor maps an error to the CLI exit code convention
func exitCodeFor(err error) int {
	var rejected *client.ValidationRejectedError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, workflow.ErrNoSession):
		return exitError
	case booking.IsRejected(err), workflow.IsCallerError(err), errors.As(err, &rejected):
		return exitRejected
	default:
		return exitError
	}
}

// describeError adds a hint for errors the user can fix directly
func describeError(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNoSession):
		return "not logged in, run 'booking login' first"
	case errors.Is(err, client.ErrUnauthenticated):
		return "session expired, run 'booking login' again"
	default:
		return err.Error()
	}
}
