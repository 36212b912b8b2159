// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/bookingform"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/bookinglist"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/icons"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/login"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/styles"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/widgets"
	"github.com/nandasurya23/resource-booking-cli/internal/workflow"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenBookings
	ScreenNewBooking
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Operations started from the TUI
const (
	opLogin   = "login"
	opLogout  = "logout"
	opRefresh = "refresh"
	opSubmit  = "submit"
	opApprove = "approve"
	opCancel  = "cancel"
)

// stateChangedMsg signals that the workflow published a new state
type stateChangedMsg struct{}

// actionDoneMsg is sent when a workflow call returns
type actionDoneMsg struct {
	op     string
	id     int
	status booking.Status
	err    error
}

// flash is a one-line outcome shown under the booking panes
type flash struct {
	text  string
	level widgets.StatusLevel
}

// Options configures the TUI
type Options struct {
	Store    workflow.SessionStore
	API      workflow.API
	Catalog  booking.Catalog
	Location *time.Location
	Backend  string
}

// App is the root model for the TUI
type App struct {
	ctx        context.Context
	wf         *workflow.Workflow
	changed    chan struct{}
	catalog    booking.Catalog
	loc        *time.Location
	backend    string
	screen     Screen
	width      int
	height     int
	state      workflow.State
	lastUpdate time.Time
	busy       string // in-flight admin action
	flash      flash
	spinner    spinner.Model

	// Child models
	login *login.Login
	list  *bookinglist.List
	form  *bookingform.Form
}

// New creates a new TUI application. The session is restored from opts.Store.
func New(ctx context.Context, opts Options) *App {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	a := &App{
		ctx:     ctx,
		changed: make(chan struct{}, 1),
		catalog: opts.Catalog,
		loc:     loc,
		backend: opts.Backend,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		list: bookinglist.New(opts.Catalog, loc),
	}

	a.wf = workflow.New(opts.Store, opts.API,
		workflow.WithLogger(slog.Default()),
		workflow.WithListener(func(workflow.State) {
			select {
			case a.changed <- struct{}{}:
			default:
			}
		}),
	)

	a.state = a.wf.State()
	if a.state.Kind == workflow.KindUnauthenticated {
		a.screen = ScreenLogin
		a.login = login.New("", a.state.Message)
	} else {
		a.screen = ScreenBookings
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.waitForChange()}
	if a.screen == ScreenLogin {
		cmds = append(cmds, a.login.Init())
	} else {
		cmds = append(cmds, a.run(opRefresh, 0, a.wf.Start))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(a.listWidth()-panelPadding, a.listHeight())
		if a.form != nil {
			a.form.SetWidth(a.frameWidth() - 1)
			return a.updateForm(msg)
		}
		if a.login != nil {
			return a.updateLogin(msg)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case stateChangedMsg:
		return a, tea.Batch(a.applyState(a.wf.State()), a.waitForChange())

	case actionDoneMsg:
		if msg.op == opApprove || msg.op == opCancel {
			a.busy = ""
		}
		cmd := a.applyState(a.wf.State())
		return a, tea.Batch(cmd, a.handleResult(msg))

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenBookings:
			return a.updateBookings(msg)
		case ScreenNewBooking:
			return a.updateForm(msg)
		}

	case login.SubmittedMsg:
		email, password := msg.Email, msg.Password
		return a, a.run(opLogin, 0, func(ctx context.Context) error {
			return a.wf.Login(ctx, email, password)
		})

	case login.CancelledMsg:
		return a, tea.Quit

	case bookingform.CompleteMsg:
		a.form = nil
		a.screen = ScreenBookings
		return a, a.submit(msg.Draft)

	case bookingform.CancelledMsg:
		a.form = nil
		a.screen = ScreenBookings
		return a, nil

	default:
		// Forward unknown messages to the active form (needed for huh form internals)
		switch {
		case a.screen == ScreenNewBooking && a.form != nil:
			return a.updateForm(msg)
		case a.screen == ScreenLogin && a.login != nil:
			return a.updateLogin(msg)
		}
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.login == nil {
		return a, nil
	}
	model, cmd := a.login.Update(msg)
	a.login = model.(*login.Login)
	return a, cmd
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a, nil
	}
	model, cmd := a.form.Update(msg)
	a.form = model.(*bookingform.Form)
	return a, cmd
}

func (a *App) updateBookings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.flash = flash{}
		return a, a.run(opRefresh, 0, a.wf.Refresh)
	case "n":
		a.flash = flash{}
		a.form = bookingform.New(a.catalog, a.loc)
		a.form.SetWidth(a.frameWidth() - 1)
		a.screen = ScreenNewBooking
		return a, a.form.Init()
	case "a":
		return a, a.adminAction(opApprove)
	case "c":
		return a, a.adminAction(opCancel)
	case "l":
		return a, a.run(opLogout, 0, func(context.Context) error {
			return a.wf.Logout()
		})
	}
	return a, a.list.Update(msg)
}

// adminAction starts op on the selected booking when the role and status allow it
func (a *App) adminAction(op string) tea.Cmd {
	b, ok := a.list.Selected()
	if !ok {
		return nil
	}

	canApprove, canCancel := a.wf.Actions(b)
	allowed, call := canApprove, a.wf.Approve
	if op == opCancel {
		allowed, call = canCancel, a.wf.Cancel
	}

	if !allowed {
		a.flash = flash{text: unavailableReason(op, b, a.wf.Role().IsAdmin()), level: widgets.StatusWarning}
		return nil
	}

	a.flash = flash{}
	a.busy = fmt.Sprintf("%s booking #%d...", progressVerb(op), b.ID)
	id := b.ID
	return a.run(op, id, func(ctx context.Context) error {
		return call(ctx, id)
	})
}

func unavailableReason(op string, b booking.Booking, admin bool) string {
	if !admin {
		return "Only admins can " + op + " bookings"
	}
	return fmt.Sprintf("Booking #%d is %s and cannot be %s", b.ID, b.Status, pastTense(op))
}

// applyState adopts a workflow snapshot. Losing the session returns to the login screen.
func (a *App) applyState(s workflow.State) tea.Cmd {
	a.state = s
	a.list.SetBookings(s.Bookings, s.HasData)
	if s.Kind == workflow.KindReady {
		a.lastUpdate = time.Now()
	}

	if s.Kind == workflow.KindUnauthenticated && a.screen != ScreenLogin {
		a.screen = ScreenLogin
		a.form = nil
		a.busy = ""
		a.flash = flash{}
		a.lastUpdate = time.Time{}
		a.login = login.New("", s.Message)
		return a.login.Init()
	}
	return nil
}

// handleResult turns a finished call into screen changes and a flash message
func (a *App) handleResult(msg actionDoneMsg) tea.Cmd {
	switch msg.op {
	case opLogin:
		if !a.wf.Session().Authenticated() {
			if a.login != nil {
				return a.login.Fail(describeError(msg.err))
			}
			return nil
		}
		a.screen = ScreenBookings
		a.login = nil
		a.flash = flash{text: "Logged in as " + roleLabel(a.wf.Role().String()), level: widgets.StatusOK}
		if msg.err != nil {
			a.flash = flash{text: "Logged in, but bookings could not be loaded: " + describeError(msg.err), level: widgets.StatusWarning}
		}

	case opLogout:
		a.login = login.New("", "Logged out")
		if msg.err != nil {
			a.login = login.New("", "Logged out, but the saved session could not be removed: "+msg.err.Error())
		}
		return a.login.Init()

	case opSubmit:
		switch {
		case msg.err == nil:
			a.flash = flash{text: fmt.Sprintf("Booking #%d requested (%s)", msg.id, msg.status), level: widgets.StatusOK}
		case booking.IsRejected(msg.err):
			a.flash = flash{text: "Not submitted: " + msg.err.Error(), level: widgets.StatusWarning}
		case !errors.Is(msg.err, client.ErrUnauthenticated):
			a.flash = flash{text: "Booking failed: " + describeError(msg.err), level: widgets.StatusCritical}
		}

	case opApprove, opCancel:
		switch {
		case msg.err == nil:
			a.flash = flash{text: fmt.Sprintf("Booking #%d %s", msg.id, pastTense(msg.op)), level: widgets.StatusOK}
		case !errors.Is(msg.err, client.ErrUnauthenticated):
			a.flash = flash{text: fmt.Sprintf("Could not %s #%d: %s", msg.op, msg.id, describeError(msg.err)), level: widgets.StatusCritical}
		}
	}
	return nil
}

func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrInvalidCredentials):
		return "invalid email or password"
	default:
		return err.Error()
	}
}

func roleLabel(role string) string {
	if role == "" {
		return "unknown role"
	}
	return role
}

func pastTense(op string) string {
	if op == opApprove {
		return "approved"
	}
	return "cancelled"
}

func progressVerb(op string) string {
	if op == opApprove {
		return "Approving"
	}
	return "Cancelling"
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenBookings:
		content = a.viewBookings()
	case ScreenNewBooking:
		content = a.viewForm()
	}

	return a.wrapWithFrame(content)
}

// viewLogin renders the login screen
func (a *App) viewLogin() string {
	if a.login == nil {
		return ""
	}
	width := min(a.frameWidth()-panelPadding, 64)
	return styles.ActivePanel.Width(width).Render(a.login.View())
}

// viewForm renders the new booking form
func (a *App) viewForm() string {
	if a.form == nil {
		return ""
	}
	return a.form.View()
}

// viewBookings renders the booking list with the details pane
func (a *App) viewBookings() string {
	title := styles.Title.Render(fmt.Sprintf("%s Bookings (%d)", icons.Calendar.String(), a.list.Len()))
	leftPane := styles.ActivePanel.Width(a.listWidth()).Render(title + "\n" + a.list.View())
	rightPane := styles.Panel.Width(a.detailsWidth()).Render(a.renderDetails())

	var panes string
	if a.width < minTerminalWidth {
		panes = lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	} else {
		panes = lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	}
	return panes + "\n" + a.renderStatus()
}

// renderDetails shows the selected booking and the actions available for it
func (a *App) renderDetails() string {
	var sb strings.Builder

	b, ok := a.list.Selected()
	if !ok {
		sb.WriteString(styles.Title.Render(icons.Info.String() + " Details"))
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render("No booking selected"))
	} else {
		sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Booking #%d", icons.Resource.String(), b.ID)))
		sb.WriteString("\n")
		detail := func(label, value string) {
			sb.WriteString(styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value) + "\n")
		}
		detail("Resource", a.catalog.Name(b.ResourceID))
		detail("Start", booking.FormatDisplay(b.StartTime, a.loc))
		detail("End", booking.FormatDisplay(b.EndTime, a.loc))
		detail("Duration", b.Duration().String())
		sb.WriteString(styles.LabelStyle.Render("Status") + widgets.BookingBadge(b.Status) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Title.Render("Actions"))
	sb.WriteString("\n")

	action := func(icon icons.Icon, key, label string, enabled bool) {
		text := fmt.Sprintf("%s %s %s", icon.String(), key, label)
		if !enabled {
			text = styles.DisabledStyle.Render(text)
		}
		sb.WriteString(text + "\n")
	}
	action(icons.Refresh, "r", "Refresh", true)
	action(icons.New, "n", "New booking", true)
	if a.wf.Role().IsAdmin() {
		canApprove, canCancel := false, false
		if ok {
			canApprove, canCancel = a.wf.Actions(b)
		}
		action(icons.Approve, "a", "Approve", canApprove)
		action(icons.Cancel, "c", "Cancel", canCancel)
	}
	action(icons.Logout, "l", "Log out", true)
	action(icons.Quit, "q", "Quit", true)

	return strings.TrimRight(sb.String(), "\n")
}

// renderStatus shows progress, the last outcome, or the last workflow error
func (a *App) renderStatus() string {
	switch {
	case a.busy != "":
		return a.spinner.View() + " " + a.busy
	case a.state.Kind == workflow.KindLoading:
		return a.spinner.View() + " Refreshing bookings..."
	case a.state.Kind == workflow.KindSubmitting:
		return a.spinner.View() + " Submitting booking..."
	case a.flash.text != "":
		return widgets.StatusText(a.flash.text, a.flash.level)
	case a.state.Kind == workflow.KindError:
		return widgets.StatusText(a.state.Message, widgets.StatusCritical)
	}
	return ""
}

// frameWidth is the terminal width less one column to avoid wrapping,
// clamped to a usable minimum
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// listWidth calculates the width for the booking list pane
func (a *App) listWidth() int {
	if a.width < minTerminalWidth {
		return a.frameWidth() - panelPadding
	}
	return (a.frameWidth() - panelPadding) * 3 / 5
}

// detailsWidth calculates the width for the details pane
func (a *App) detailsWidth() int {
	if a.width < minTerminalWidth {
		return a.frameWidth() - panelPadding
	}
	return a.frameWidth() - a.listWidth() - panelPadding
}

// listHeight calculates the table height inside the list pane
func (a *App) listHeight() int {
	// Total overhead:
	// - Header and footer: 2 lines, plus 2 newlines around content
	// - ActivePanel border+padding: 4 lines
	// - Pane title with margin: 2 lines
	// - Status line: 1 line
	return max(3, a.height-11)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Resource Booking"))

	// Right side: role and backend, dropping the backend when it does not fit
	rightText := ""
	if badge := widgets.RoleBadge(a.wf.Role()); badge != "" {
		rightText = badge + " "
	}
	if a.backend != "" {
		withBackend := contextStyle.Render(a.backend) + " " + rightText
		if lipgloss.Width(leftText)+lipgloss.Width(withBackend)+4 <= width {
			rightText = withBackend
		}
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"

	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Build keyboard shortcuts based on current screen
	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Quit"}
	case ScreenBookings:
		shortcuts = []string{"↑↓ Move", "r Refresh", "n New"}
		if a.wf.Role().IsAdmin() {
			shortcuts = append(shortcuts, "a Approve", "c Cancel")
		}
		shortcuts = append(shortcuts, "l Logout", "q Quit")
	case ScreenNewBooking:
		shortcuts = []string{"↑↓ Select", "Enter Confirm", "Esc Cancel"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styledShortcuts = append(styledShortcuts, styles.KeyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	leftText := " " + strings.Join(styledShortcuts, "  ") + " "

	// Right side status (last update time), shown only when it fits
	rightText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenBookings {
		rightText = statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
		if lipgloss.Width(leftText)+lipgloss.Width(rightText)+4 > width {
			rightText = ""
		}
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╰─ and ─╯
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"

	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// waitForChange blocks until the workflow publishes a state
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.changed:
			return stateChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// run wraps a workflow call in a command reporting its outcome
func (a *App) run(op string, id int, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{op: op, id: id, err: fn(a.ctx)}
	}
}

// submit creates a booking from draft
func (a *App) submit(draft booking.Draft) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.wf.Submit(a.ctx, draft)
		if err != nil {
			return actionDoneMsg{op: opSubmit, err: err}
		}
		return actionDoneMsg{op: opSubmit, id: resp.BookingID, status: resp.Status}
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, opts Options) error {
	app := New(ctx, opts)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
