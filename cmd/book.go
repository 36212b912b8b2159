// ABOUTME: Book command for the booking CLI
// ABOUTME: Validates the requested window locally before submitting it

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
)

var (
	bookResource int
	bookStart    string
	bookEnd      string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Request a booking",
	Long: `Request a booking for a resource. Times are read in BOOKING_TIMEZONE
(default: local) unless they carry an explicit offset.

Accepted formats:
  2025-06-01 09:00
  2025-06-01T09:00
  2025-06-01T09:00:00+07:00

New bookings start as pending until an admin approves them.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runBook)
	},
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.Flags().IntVar(&bookResource, "resource", 0, "Resource ID (see 'booking resources')")
	bookCmd.Flags().StringVar(&bookStart, "start", "", "Start time")
	bookCmd.Flags().StringVar(&bookEnd, "end", "", "End time")
}

// runBook builds a draft from flags and submits it, returning an exit code
func runBook(ctx context.Context, w io.Writer, e *env) int {
	draft, err := buildDraft(e, bookResource, bookStart, bookEnd)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	wf := e.newWorkflow()
	resp, err := wf.Submit(ctx, draft)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", describeError(err))
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatBookJSON(resp))
	} else {
		fmt.Fprintln(w, formatBookHuman(resp, e.catalog.Name(draft.ResourceID)))
	}
	return exitOK
}

// buildDraft parses flag values into a draft. Unparseable or missing times
// are left nil so Validate reports them.
func buildDraft(e *env, resourceID int, start, end string) (booking.Draft, error) {
	if !e.catalog.Contains(resourceID) {
		return booking.Draft{}, &booking.RejectedError{Reason: fmt.Sprintf("unknown resource %d", resourceID)}
	}

	draft := booking.Draft{ResourceID: resourceID}
	if start != "" {
		t, err := booking.ParseWallClock(start, e.location())
		if err != nil {
			return booking.Draft{}, &booking.RejectedError{Reason: "start time: " + err.Error()}
		}
		draft.StartTime = &t
	}
	if end != "" {
		t, err := booking.ParseWallClock(end, e.location())
		if err != nil {
			return booking.Draft{}, &booking.RejectedError{Reason: "end time: " + err.Error()}
		}
		draft.EndTime = &t
	}
	return draft, nil
}

func formatBookHuman(resp *client.CreateBookingResponse, resource string) string {
	msg := resp.Message
	if msg == "" {
		msg = "Booking created"
	}
	return fmt.Sprintf("%s\nBooking:  #%d\nResource: %s\nStatus:   %s",
		msg, resp.BookingID, resource, resp.Status.Label())
}

func formatBookJSON(resp *client.CreateBookingResponse) string {
	data, _ := json.MarshalIndent(resp, "", "  ")
	return string(data)
}
