// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("BOOKING_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Terminals that commonly ship with a Nerd Font configured
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Booking status
	Pending   = Icon{"\U000f051f", "◷"} // nf-md-timer_sand
	Approved  = Icon{"\U0000f058", "✓"} // nf-fa-check_circle
	Cancelled = Icon{"\U0000f057", "✗"} // nf-fa-times_circle

	// Status indicators
	CheckOK  = Icon{"\U0000f058", "✓"} // nf-fa-check_circle
	Warning  = Icon{"\U0000f071", "⚠"} // nf-fa-warning
	Critical = Icon{"\U0000f057", "✗"} // nf-fa-times_circle
	Info     = Icon{"\U0000f05a", "ℹ"} // nf-fa-info_circle

	// Domain
	Calendar = Icon{"\U0000f073", "▦"} // nf-fa-calendar
	Resource = Icon{"\U0000f1b2", "■"} // nf-fa-cube
	User     = Icon{"\U0000f007", "●"} // nf-fa-user
	Admin    = Icon{"\U0000f132", "⛊"} // nf-fa-shield

	// Actions
	Refresh = Icon{"\U000f0450", "↻"} // nf-md-refresh
	New     = Icon{"\U0000f067", "+"} // nf-fa-plus
	Approve = Icon{"\U0000f00c", "✔"} // nf-fa-check
	Cancel  = Icon{"\U0000f00d", "✘"} // nf-fa-times
	Logout  = Icon{"\U0000f08b", "←"} // nf-fa-sign_out
	Quit    = Icon{"\U000f05fc", "×"} // nf-md-exit_to_app

	// Application
	App = Icon{"\U0000f073", "◈"} // nf-fa-calendar
)
