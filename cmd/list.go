// ABOUTME: List and resources commands for the booking CLI
// ABOUTME: Prints bookings in backend order and the resource catalog

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings",
	Long:  `List the bookings visible to the logged-in user, in the order the backend returns them.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runList)
	},
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List bookable resources",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runResources)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resourcesCmd)
}

// runList fetches and prints bookings, returning an exit code
func runList(ctx context.Context, w io.Writer, e *env) int {
	wf := e.newWorkflow()
	if err := wf.Refresh(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", describeError(err))
		return exitCodeFor(err)
	}

	bookings := wf.State().Bookings
	if IsJSONOutput() {
		fmt.Fprintln(w, formatBookingsJSON(bookings, e.catalog))
	} else {
		fmt.Fprintln(w, formatBookingsHuman(bookings, e.catalog, e.location()))
	}
	return exitOK
}

// runResources prints the resource catalog
func runResources(ctx context.Context, w io.Writer, e *env) int {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(e.catalog.Resources, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s %s\n", "ID", "NAME")
	for _, r := range e.catalog.Resources {
		fmt.Fprintf(&sb, "%-4d %s\n", r.ID, r.Name)
	}
	fmt.Fprint(w, sb.String())
	return exitOK
}

// formatBookingsHuman renders bookings as an aligned table
func formatBookingsHuman(bookings []booking.Booking, catalog booking.Catalog, loc *time.Location) string {
	if len(bookings) == 0 {
		return "No bookings"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s %-20s %-16s %-16s %s\n", "ID", "RESOURCE", "START", "END", "STATUS")
	for _, b := range bookings {
		fmt.Fprintf(&sb, "%-5d %-20s %-16s %-16s %s\n",
			b.ID,
			truncate(catalog.Name(b.ResourceID), 20),
			booking.FormatDisplay(b.StartTime, loc),
			booking.FormatDisplay(b.EndTime, loc),
			b.Status.Label())
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// formatBookingsJSON renders bookings as JSON with resource names attached
func formatBookingsJSON(bookings []booking.Booking, catalog booking.Catalog) string {
	rows := make([]map[string]interface{}, len(bookings))
	for i, b := range bookings {
		rows[i] = map[string]interface{}{
			"id":            b.ID,
			"resource_id":   b.ResourceID,
			"resource_name": catalog.Name(b.ResourceID),
			"start_time":    booking.FormatWire(b.StartTime),
			"end_time":      booking.FormatWire(b.EndTime),
			"status":        b.Status,
		}
	}
	data, _ := json.MarshalIndent(rows, "", "  ")
	return string(data)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
