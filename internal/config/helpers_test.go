// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import "testing"

var configKeys = []string{
	"BOOKING_API_URL",
	"BOOKING_TIMEOUT",
	"BOOKING_RATE_LIMIT",
	"BOOKING_RATE_BURST",
	"BOOKING_CONFIG_DIR",
	"BOOKING_RESOURCES_FILE",
	"BOOKING_TIMEZONE",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

// withCleanEnv blanks every variable Load reads, then applies extra.
// t.Setenv restores the original values when the test ends.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanEnv(t, map[string]string{"BOOKING_TIMEOUT": "5s"})
//	}
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for key, value := range extra {
		t.Setenv(key, value)
	}
}
