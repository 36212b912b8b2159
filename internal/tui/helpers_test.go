// ABOUTME: Test doubles for the TUI app
// ABOUTME: In-memory session store and booking backend

package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

type memStore struct {
	mu      sync.Mutex
	sess    session.Session
	cleared bool
}

func (s *memStore) Load() (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, nil
}

func (s *memStore) Save(sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = session.Session{}
	s.cleared = true
	return nil
}

type stubAPI struct {
	mu       sync.Mutex
	loginErr error
	listErr  error
	list     []booking.Booking
	created  []client.CreateBookingRequest
	actions  []string
}

func (f *stubAPI) Login(_ context.Context, email, _ string) (*client.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	role := "user"
	if email == "admin@example.com" {
		role = "admin"
	}
	return &client.LoginResponse{Token: role + "-token", Role: role}, nil
}

func (f *stubAPI) ListBookings(_ context.Context, _ string) ([]booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]booking.Booking(nil), f.list...), nil
}

func (f *stubAPI) CreateBooking(_ context.Context, _ string, req client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &client.CreateBookingResponse{Message: "created", BookingID: 9, Status: booking.StatusPending}, nil
}

func (f *stubAPI) ApproveBooking(_ context.Context, _ string, id int) error {
	return f.act("approve", id, booking.StatusApproved)
}

func (f *stubAPI) CancelBooking(_ context.Context, _ string, id int) error {
	return f.act("cancel", id, booking.StatusCancelled)
}

func (f *stubAPI) act(action string, id int, status booking.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Status = status
		}
	}
	return nil
}

func sampleBookings() []booking.Booking {
	start := time.Date(2030, 6, 1, 2, 0, 0, 0, time.UTC)
	return []booking.Booking{
		{ID: 1, ResourceID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: booking.StatusPending},
		{ID: 2, ResourceID: 2, StartTime: start, EndTime: start.Add(time.Hour), Status: booking.StatusApproved},
		{ID: 3, ResourceID: 3, StartTime: start, EndTime: start.Add(time.Hour), Status: booking.StatusCancelled},
	}
}

func newTestApp(t *testing.T, sess session.Session) (*App, *memStore, *stubAPI) {
	t.Helper()
	store := &memStore{sess: sess}
	api := &stubAPI{list: sampleBookings()}
	app := New(context.Background(), Options{
		Store:    store,
		API:      api,
		Catalog:  booking.DefaultCatalog(),
		Location: time.UTC,
		Backend:  "http://localhost:8080",
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return app, store, api
}

// loadedApp returns an app with bookings fetched for the given role
func loadedApp(t *testing.T, role session.Role) (*App, *memStore, *stubAPI) {
	t.Helper()
	app, store, api := newTestApp(t, session.Session{Token: role.String() + "-token", Role: role})
	step(t, app, app.run(opRefresh, 0, app.wf.Refresh))
	return app, store, api
}

// step runs cmd synchronously and feeds its message back into app
func step(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	app.Update(cmd())
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
