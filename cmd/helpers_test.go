// ABOUTME: Test helpers for command tests
// ABOUTME: Provides an in-memory booking backend and a command environment

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/config"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

// fakeBackend mimics the booking service closely enough for command tests
type fakeBackend struct {
	mu       sync.Mutex
	users    map[string]string // email -> role
	tokens   map[string]string // token -> role
	bookings []booking.Booking
	creates  int
	actions  int
	nextID   int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	start := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	fb := &fakeBackend{
		users: map[string]string{
			"admin@example.com": "admin",
			"user@example.com":  "user",
		},
		tokens: map[string]string{
			"admin-token": "admin",
			"user-token":  "user",
		},
		bookings: []booking.Booking{
			{ID: 1, ResourceID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: booking.StatusPending},
			{ID: 2, ResourceID: 2, StartTime: start, EndTime: start.Add(2 * time.Hour), Status: booking.StatusApproved},
			{ID: 3, ResourceID: 3, StartTime: start, EndTime: start.Add(time.Hour), Status: booking.StatusCancelled},
		},
		nextID: 4,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", fb.handleLogin)
	mux.HandleFunc("GET /bookings", fb.authed(fb.handleList))
	mux.HandleFunc("POST /bookings", fb.authed(fb.handleCreate))
	mux.HandleFunc("POST /bookings/{id}/{action}", fb.authed(fb.handleAction))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fb, server
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		fb.mu.Lock()
		role, ok := fb.tokens[token]
		fb.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, client.ErrorResponse{Error: "invalid token"})
			return
		}
		next(w, r, role)
	}
}

func (fb *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req client.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	role, ok := fb.users[req.Email]
	fb.mu.Unlock()
	if !ok || req.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, client.ErrorResponse{Error: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, client.LoginResponse{Token: role + "-token", Role: role})
}

func (fb *fakeBackend) handleList(w http.ResponseWriter, r *http.Request, role string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, fb.bookings)
}

func (fb *fakeBackend) handleCreate(w http.ResponseWriter, r *http.Request, role string) {
	var req client.CreateBookingRequest
	json.NewDecoder(r.Body).Decode(&req)

	start, err1 := time.Parse(time.RFC3339, req.StartTime)
	end, err2 := time.Parse(time.RFC3339, req.EndTime)
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, client.ErrorResponse{Error: "invalid time format"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.creates++
	for _, b := range fb.bookings {
		if b.ResourceID == req.ResourceID && b.Status != booking.StatusCancelled &&
			start.Before(b.EndTime) && b.StartTime.Before(end) {
			writeJSON(w, http.StatusConflict, client.ErrorResponse{Error: "resource already booked"})
			return
		}
	}

	id := fb.nextID
	fb.nextID++
	fb.bookings = append(fb.bookings, booking.Booking{
		ID: id, ResourceID: req.ResourceID, StartTime: start, EndTime: end, Status: booking.StatusPending,
	})
	writeJSON(w, http.StatusCreated, client.CreateBookingResponse{
		Message: "Booking created", BookingID: id, Status: booking.StatusPending,
	})
}

func (fb *fakeBackend) handleAction(w http.ResponseWriter, r *http.Request, role string) {
	if role != "admin" {
		writeJSON(w, http.StatusForbidden, client.ErrorResponse{Error: "forbidden"})
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, client.ErrorResponse{Error: "invalid id"})
		return
	}

	next := booking.StatusApproved
	if r.PathValue("action") == "cancel" {
		next = booking.StatusCancelled
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.actions++
	for i := range fb.bookings {
		if fb.bookings[i].ID == id {
			fb.bookings[i].Status = next
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, client.ErrorResponse{Error: "booking not found"})
}

func (fb *fakeBackend) status(id int) booking.Status {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	b, _ := booking.Find(fb.bookings, id)
	return b.Status
}

func (fb *fakeBackend) counts() (creates, actions int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.creates, fb.actions
}

// newTestEnv builds a command environment against serverURL with an
// optional pre-saved session
func newTestEnv(t *testing.T, serverURL string, sess session.Session) *env {
	t.Helper()

	cfg := &config.Config{
		APIURL:    serverURL,
		Timeout:   5 * time.Second,
		RateBurst: 1,
		ConfigDir: t.TempDir(),
		Location:  time.UTC,
		LogLevel:  "error",
	}
	store := session.NewStore(cfg.ConfigDir)
	if sess.Authenticated() {
		if err := store.Save(sess); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
	}

	return &env{
		cfg:     cfg,
		client:  client.New(serverURL, client.WithTimeout(cfg.Timeout)),
		store:   store,
		catalog: booking.DefaultCatalog(),
	}
}

func adminSession() session.Session {
	return session.Session{Token: "admin-token", Role: session.RoleAdmin}
}

func userSession() session.Session {
	return session.Session{Token: "user-token", Role: session.RoleUser}
}

// withJSONOutput enables --json for the duration of a test
func withJSONOutput(t *testing.T) {
	t.Helper()
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
}
