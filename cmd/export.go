// ABOUTME: Export command for the booking CLI
// ABOUTME: Writes the current booking list to an Excel workbook

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookings to an .xlsx file",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runExport)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "bookings.xlsx", "Output file")
}

// runExport fetches bookings and saves them as a workbook
func runExport(ctx context.Context, w io.Writer, e *env) int {
	wf := e.newWorkflow()
	if err := wf.Refresh(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", describeError(err))
		return exitCodeFor(err)
	}

	bookings := wf.State().Bookings
	opts := export.Options{Catalog: e.catalog, Location: e.location()}
	if err := export.SaveXLSX(exportOutput, bookings, opts); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"file":     exportOutput,
			"bookings": len(bookings),
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Exported %d booking(s) to %s\n", len(bookings), exportOutput)
	}
	return exitOK
}
