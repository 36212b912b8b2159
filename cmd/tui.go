// ABOUTME: TUI command for the booking CLI
// ABOUTME: Launches the interactive terminal interface, also the default command

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/logger"
	"github.com/nandasurya23/resource-booking-cli/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal interface",
	Run: func(cmd *cobra.Command, args []string) {
		runTUICommand()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUICommand starts the TUI with logs redirected to the config directory
func runTUICommand() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	logFile, err := logger.InitFile(e.cfg.ConfigDir, e.cfg.LogLevel, e.cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
		logger.Init(io.Discard, e.cfg.LogLevel, e.cfg.LogFormat)
	} else {
		defer logFile.Close()
	}

	err = tui.Run(ctx, tui.Options{
		Store:    e.store,
		API:      e.client,
		Catalog:  e.catalog,
		Location: e.location(),
		Backend:  e.cfg.APIURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}
