// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Collects email and password with a huh form

package login

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nandasurya23/resource-booking-cli/internal/tui/styles"
	"github.com/nandasurya23/resource-booking-cli/internal/tui/widgets"
)

// SubmittedMsg is sent when the user submits credentials
type SubmittedMsg struct {
	Email    string
	Password string
}

// CancelledMsg is sent when the user leaves the login screen
type CancelledMsg struct{}

// Login wraps the credentials form
type Login struct {
	form     *huh.Form
	email    string
	password string
	message  string
	level    widgets.StatusLevel
	pending  bool
}

// New creates a login screen. message is shown above the form, e.g. after a
// forced logout.
func New(email, message string) *Login {
	l := &Login{email: email, message: message, level: widgets.StatusInfo}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	l.password = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&l.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required("password")),
		).Title("Sign in").
			Description("Log in to view and request bookings"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.pending {
		return l, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return l, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	switch l.form.State {
	case huh.StateCompleted:
		l.pending = true
		email, password := strings.TrimSpace(l.email), l.password
		return l, func() tea.Msg {
			return SubmittedMsg{Email: email, Password: password}
		}
	case huh.StateAborted:
		return l, func() tea.Msg { return CancelledMsg{} }
	}

	return l, cmd
}

// Fail shows err and resets the form for another attempt, keeping the email
func (l *Login) Fail(message string) tea.Cmd {
	l.message = message
	l.level = widgets.StatusCritical
	l.pending = false
	l.form = l.createForm()
	return l.form.Init()
}

// Pending reports whether a submitted login is awaiting the backend
func (l *Login) Pending() bool {
	return l.pending
}

// Email returns the email entered so far
func (l *Login) Email() string {
	return l.email
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	if l.message != "" {
		sb.WriteString(widgets.StatusText(l.message, l.level))
		sb.WriteString("\n\n")
	}
	if l.pending {
		sb.WriteString(styles.Subtitle.Render("Signing in as " + l.email + "..."))
		return sb.String()
	}
	sb.WriteString(l.form.View())
	sb.WriteString(styles.Help.Render(styles.KeyStyle.Render("esc") + " quit"))
	return sb.String()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errRequired(name)
		}
		return nil
	}
}

type errRequired string

func (e errRequired) Error() string {
	return string(e) + " is required"
}
