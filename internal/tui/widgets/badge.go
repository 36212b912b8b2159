// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Maps booking statuses and session roles to colored badges

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// BookingLevel maps a booking status to a badge level.
// Pending needs attention, approved is settled, cancelled is terminal.
func BookingLevel(s booking.Status) StatusLevel {
	switch s {
	case booking.StatusPending:
		return StatusWarning
	case booking.StatusApproved:
		return StatusOK
	case booking.StatusCancelled:
		return StatusCritical
	default:
		return StatusNeutral
	}
}

// BookingIcon returns the plain icon for a booking status
func BookingIcon(s booking.Status) string {
	switch s {
	case booking.StatusPending:
		return icons.Pending.String()
	case booking.StatusApproved:
		return icons.Approved.String()
	case booking.StatusCancelled:
		return icons.Cancelled.String()
	default:
		return "?"
	}
}

// BookingBadge renders the status of a booking as a badge
func BookingBadge(s booking.Status) string {
	return Badge(s.Label(), BookingLevel(s))
}

// RoleBadge renders the session role, or nothing when logged out
func RoleBadge(r session.Role) string {
	switch r {
	case session.RoleAdmin:
		return Badge(icons.Admin.String()+" admin", StatusInfo)
	case session.RoleUser:
		return Badge(icons.User.String()+" user", StatusNeutral)
	default:
		return ""
	}
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)

	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	textStyle := lipgloss.NewStyle().Foreground(bg)
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}
