// ABOUTME: Whoami command for the booking CLI
// ABOUTME: Reports the saved session without contacting the backend

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami prints the role and token expiry of the saved session
func runWhoami(ctx context.Context, w io.Writer, e *env) int {
	sess, err := e.store.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(sess, e.store.Path(), time.Now()))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(sess, e.store.Path(), e.location(), time.Now()))
	}

	if !sess.Authenticated() {
		return exitError
	}
	return exitOK
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(sess session.Session, path string, loc *time.Location, now time.Time) string {
	if !sess.Authenticated() {
		return "Not logged in"
	}

	out := fmt.Sprintf("Role:     %s\nSession:  %s", roleLabel(sess.Role.String()), path)
	if exp, ok := sess.ExpiresAt(); ok {
		state := "valid"
		if sess.Expired(now) {
			state = "expired"
		}
		out += fmt.Sprintf("\nExpires:  %s (%s)", booking.FormatDisplay(exp, loc), state)
	}
	return out
}

// formatWhoamiJSON formats the session as JSON
func formatWhoamiJSON(sess session.Session, path string, now time.Time) string {
	output := map[string]interface{}{
		"authenticated": sess.Authenticated(),
		"role":          sess.EffectiveRole().String(),
		"session_file":  path,
	}
	if exp, ok := sess.ExpiresAt(); ok {
		output["expires_at"] = booking.FormatWire(exp)
		output["expired"] = sess.Expired(now)
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
