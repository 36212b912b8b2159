// ABOUTME: Booking list component for the main screen
// ABOUTME: Shows bookings in server order in a navigable table

package bookinglist

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/styles"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/widgets"
)

// Fixed column widths; the resource column takes what is left
const (
	idWidth     = 5
	timeWidth   = 16
	statusWidth = 12
	minResource = 12
)

// List displays the bookings visible to the session
type List struct {
	table    table.Model
	bookings []booking.Booking
	catalog  booking.Catalog
	loc      *time.Location
	hasData  bool
	width    int
	height   int
}

// New creates an empty booking list
func New(catalog booking.Catalog, loc *time.Location) *List {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)

	l := &List{catalog: catalog, loc: loc}
	l.table = table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithStyles(s),
	)
	return l
}

func columns(width int) []table.Column {
	// four separators of one column each between five cells
	resource := max(minResource, width-idWidth-2*timeWidth-statusWidth-10)
	return []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Resource", Width: resource},
		{Title: "Start", Width: timeWidth},
		{Title: "End", Width: timeWidth},
		{Title: "Status", Width: statusWidth},
	}
}

// Rows renders bookings as plain table rows in the order given.
// Cells carry no ANSI styling so the table can measure them.
func Rows(list []booking.Booking, catalog booking.Catalog, loc *time.Location) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, b := range list {
		rows = append(rows, table.Row{
			strconv.Itoa(b.ID),
			catalog.Name(b.ResourceID),
			booking.FormatDisplay(b.StartTime, loc),
			booking.FormatDisplay(b.EndTime, loc),
			widgets.BookingIcon(b.Status) + " " + b.Status.Label(),
		})
	}
	return rows
}

// SetBookings replaces the list. The cursor stays on the same booking id
// when it is still present.
func (l *List) SetBookings(list []booking.Booking, hasData bool) {
	selected, hadSelection := l.Selected()

	l.bookings = list
	l.hasData = hasData
	l.table.SetRows(Rows(list, l.catalog, l.loc))

	cursor := 0
	if hadSelection {
		for i, b := range list {
			if b.ID == selected.ID {
				cursor = i
				break
			}
		}
	}
	l.table.SetCursor(cursor)
}

// Selected returns the booking under the cursor
func (l *List) Selected() (booking.Booking, bool) {
	i := l.table.Cursor()
	if i < 0 || i >= len(l.bookings) {
		return booking.Booking{}, false
	}
	return l.bookings[i], true
}

// Len returns the number of bookings shown
func (l *List) Len() int {
	return len(l.bookings)
}

// SetSize updates the list dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.table.SetColumns(columns(width))
	l.table.SetWidth(width)
	// header plus its border
	l.table.SetHeight(max(1, height-2))
}

// Update handles navigation keys
func (l *List) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return cmd
}

// View renders the list
func (l *List) View() string {
	if !l.hasData {
		return styles.Subtitle.Render("Loading bookings...")
	}
	if len(l.bookings) == 0 {
		return styles.Subtitle.Render("No bookings yet. Press n to request one.")
	}
	return l.table.View()
}
