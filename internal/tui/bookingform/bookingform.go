// ABOUTME: New booking form as a bubbletea model
// ABOUTME: Uses huh forms with a step progress panel for resource and time window

package bookingform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/icons"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/styles"
)

// CompleteMsg is sent when the user finishes the form
type CompleteMsg struct {
	Draft booking.Draft
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

// Step names for progress indicator
var stepNames = []string{"Resource", "Time window"}

// Form collects a booking draft in two steps
type Form struct {
	catalog booking.Catalog
	loc     *time.Location
	form    *huh.Form
	step    int
	width   int

	// Form field values
	resourceID int
	start      string
	end        string
}

// New creates a booking form over the resources in catalog.
// Times are entered as wall-clock values in loc.
func New(catalog booking.Catalog, loc *time.Location) *Form {
	if loc == nil {
		loc = time.Local
	}
	f := &Form{catalog: catalog, loc: loc, step: 1}
	if len(catalog.Resources) > 0 {
		f.resourceID = catalog.Resources[0].ID
	}
	f.form = f.createResourceForm()
	return f
}

func (f *Form) createResourceForm() *huh.Form {
	options := make([]huh.Option[int], 0, len(f.catalog.Resources))
	for _, r := range f.catalog.Resources {
		options = append(options, huh.NewOption(fmt.Sprintf("%d  %s", r.ID, f.catalog.Name(r.ID)), r.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Resource").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(options...).
				Value(&f.resourceID),
		).Title("Step 1: Resource").
			Description("Choose what you want to book"),
	).WithTheme(styles.FormTheme())
}

func (f *Form) createTimeForm() *huh.Form {
	hint := fmt.Sprintf("YYYY-MM-DD HH:MM (%s)", f.loc.String())
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start").
				Description(hint).
				Placeholder("2025-06-01 09:00").
				Value(&f.start).
				Validate(f.validateTime),
			huh.NewInput().
				Title("End").
				Description(hint).
				Placeholder("2025-06-01 10:00").
				Value(&f.end).
				Validate(f.validateTime),
		).Title("Step 2: Time window").
			Description("Bookings must start in the future and end after they start"),
	).WithTheme(styles.FormTheme())
}

// validateTime only checks that input parses. Booking rules are applied when
// the draft is submitted, so an empty field is allowed through here.
func (f *Form) validateTime(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := booking.ParseWallClock(s, f.loc)
	return err
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f.advanceStep()
	case huh.StateAborted:
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	return f, cmd
}

func (f *Form) advanceStep() (tea.Model, tea.Cmd) {
	if f.step == 1 {
		f.step = 2
		f.form = f.createTimeForm()
		return f, f.form.Init()
	}

	draft := draftFromValues(f.resourceID, f.start, f.end, f.loc)
	return f, func() tea.Msg {
		return CompleteMsg{Draft: draft}
	}
}

// draftFromValues converts form input to a draft. Empty or unparseable times
// stay nil so validation reports them as missing.
func draftFromValues(resourceID int, start, end string, loc *time.Location) booking.Draft {
	d := booking.Draft{ResourceID: resourceID}
	if t, err := booking.ParseWallClock(start, loc); err == nil {
		d.StartTime = &t
	}
	if t, err := booking.ParseWallClock(end, loc); err == nil {
		d.EndTime = &t
	}
	return d
}

// SetWidth sets the form width for proper rendering
func (f *Form) SetWidth(width int) {
	f.width = width
}

// Step returns the current step, starting at 1
func (f *Form) Step() int {
	return f.step
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(f.renderProgress())
	sb.WriteString("\n\n")
	if f.step == 2 {
		sb.WriteString(styles.LabelStyle.Render("Resource"))
		sb.WriteString(styles.ValueStyle.Render(f.catalog.Name(f.resourceID)))
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.form.View())
	return sb.String()
}

// renderProgress renders the step progress panel
func (f *Form) renderProgress() string {
	width := f.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │"
	barWidth := width - 5
	filledWidth := (f.step * barWidth) / len(stepNames)
	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filledWidth))

	title := icons.Calendar.String() + " New booking"
	topFill := max(0, width-5-lipgloss.Width(title))
	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))

	return borderStyle.Render(strings.Join([]string{
		"┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", topFill) + "┐",
		"│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │",
		"│  " + filledBar + emptyBar + " │",
		"└" + strings.Repeat("─", width-2) + "┘",
	}, "\n"))
}
