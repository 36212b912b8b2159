// ABOUTME: Login and logout commands for the booking CLI
// ABOUTME: Prompts for missing credentials and persists the session

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nandasurya23/resource-booking-cli/internal/tui/styles"
)

var (
	loginEmail    string
	loginPassword string
)

// promptCredentials asks for whatever the flags did not provide.
// Replaced in tests.
var promptCredentials = func(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(requireValue("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(requireValue("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run()
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the booking service",
	Long: `Log in with email and password. The session token and role are saved to
session.json in the config directory. Missing credentials are prompted for.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runLogin)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runLogout)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
}

// runLogin authenticates and loads bookings, returning an exit code
func runLogin(ctx context.Context, w io.Writer, e *env) int {
	email, password := strings.TrimSpace(loginEmail), loginPassword
	if err := promptCredentials(&email, &password); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(w, "Login cancelled")
			return exitError
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	wf := e.newWorkflow()
	err := wf.Login(ctx, email, password)
	// A failed login drops any restored session; only a refresh error after
	// a successful login leaves the new session in place.
	sess := wf.Session()
	if err != nil && !sess.Authenticated() {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	st := wf.State()
	if IsJSONOutput() {
		output := map[string]interface{}{
			"role":     sess.Role.String(),
			"bookings": len(st.Bookings),
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", roleLabel(sess.Role.String()))
		if err != nil {
			fmt.Fprintf(w, "Warning: could not load bookings: %v\n", err)
		} else {
			fmt.Fprintf(w, "%d booking(s) visible\n", len(st.Bookings))
		}
	}
	return exitOK
}

// runLogout clears the saved session
func runLogout(ctx context.Context, w io.Writer, e *env) int {
	if err := e.newWorkflow().Logout(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintln(w, "Logged out")
	return exitOK
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func roleLabel(role string) string {
	if role == "" {
		return "unknown role"
	}
	return role
}
