// ABOUTME: Booking workflow orchestrating session, validation, and API calls
// ABOUTME: Every mutation is followed by an authoritative refresh from the backend

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

// API is the subset of the backend client the workflow needs
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	ListBookings(ctx context.Context, token string) ([]booking.Booking, error)
	CreateBooking(ctx context.Context, token string, req client.CreateBookingRequest) (*client.CreateBookingResponse, error)
	ApproveBooking(ctx context.Context, token string, id int) error
	CancelBooking(ctx context.Context, token string, id int) error
}

// SessionStore persists the session between runs
type SessionStore interface {
	Load() (session.Session, error)
	Save(session.Session) error
	Clear() error
}

// Option configures a Workflow
type Option func(*Workflow)

// WithListener registers fn to receive the current state after every transition
func WithListener(fn func(State)) Option {
	return func(w *Workflow) {
		w.listener = fn
	}
}

// WithClock overrides the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithLogger sets the logger; defaults to slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = l
	}
}

// Workflow is safe for concurrent use. Intents are not serialized: two admin
// actions may be in flight at once, each followed by its own refresh.
type Workflow struct {
	store    SessionStore
	api      API
	listener func(State)
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	sess     session.Session
	state    State
	bookings []booking.Booking
	hasData  bool
	seq      uint64 // id of the latest refresh; older completions are dropped
	epoch    uint64 // bumped whenever the session changes

	notifyMu sync.Mutex
}

// New creates a workflow whose initial state comes from the persisted session
func New(store SessionStore, api API, opts ...Option) *Workflow {
	w := &Workflow{
		store:  store,
		api:    api,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	sess, err := store.Load()
	if err != nil {
		w.logger.Warn("Failed to load session, starting logged out", "error", err)
		sess = session.Session{}
	}

	switch {
	case !sess.Authenticated():
		w.state = State{Kind: KindUnauthenticated}
	case sess.Expired(w.now()):
		w.logger.Info("Stored session has expired")
		if err := store.Clear(); err != nil {
			w.logger.Warn("Failed to clear expired session", "error", err)
		}
		w.state = State{Kind: KindUnauthenticated, Message: "session expired, please log in again"}
	default:
		w.sess = sess
		w.state = State{Kind: KindAuthenticated, Role: sess.Role}
	}
	return w
}

// State returns a snapshot of the current state
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Session returns the session the workflow is acting for
func (w *Workflow) Session() session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess
}

// Role returns the effective role of the current session
func (w *Workflow) Role() session.Role {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess.EffectiveRole()
}

// Actions reports which admin actions the view should enable for b
func (w *Workflow) Actions(b booking.Booking) (approve, cancel bool) {
	if !w.Role().IsAdmin() {
		return false, false
	}
	return booking.CanApprove(b), booking.CanCancel(b)
}

// Start fetches bookings when a session was restored. It is a no-op when logged out.
func (w *Workflow) Start(ctx context.Context) error {
	w.mu.Lock()
	authenticated := w.sess.Authenticated()
	w.mu.Unlock()

	if !authenticated {
		return nil
	}
	return w.Refresh(ctx)
}

// Login authenticates, persists the session, and loads bookings. A failed
// attempt leaves the workflow logged out; the stored session is not touched.
func (w *Workflow) Login(ctx context.Context, email, password string) error {
	resp, err := w.api.Login(ctx, email, password)
	if err != nil {
		w.loginFailed(err)
		return err
	}

	role, ok := session.ParseRole(resp.Role)
	if !ok {
		w.logger.Warn("Backend returned unrecognized role", "role", resp.Role)
	}
	sess := session.Session{Token: resp.Token, Role: role}
	if err := w.store.Save(sess); err != nil {
		err = fmt.Errorf("login succeeded but session could not be saved: %w", err)
		w.loginFailed(err)
		return err
	}

	w.mu.Lock()
	w.sess = sess
	w.bookings = nil
	w.hasData = false
	w.seq++
	w.epoch++
	w.state = State{Kind: KindAuthenticated, Role: role}
	w.mu.Unlock()
	w.notify()

	w.logger.Info("Logged in", "role", role.String())
	return w.Refresh(ctx)
}

func (w *Workflow) loginFailed(err error) {
	w.mu.Lock()
	w.resetLocked(err.Error())
	w.state.Err = err
	w.mu.Unlock()
	w.notify()
}

// Logout clears the persisted session and returns to Unauthenticated
func (w *Workflow) Logout() error {
	err := w.store.Clear()

	w.mu.Lock()
	w.resetLocked("")
	w.mu.Unlock()
	w.notify()
	return err
}

// Refresh replaces the booking list with the backend's. On a transient failure
// the last known list is kept. A rejected token forces logout.
func (w *Workflow) Refresh(ctx context.Context) error {
	w.mu.Lock()
	if !w.sess.Authenticated() {
		w.mu.Unlock()
		return ErrNoSession
	}
	w.seq++
	seq := w.seq
	token := w.sess.Token
	w.state = w.withDataLocked(KindLoading, "", nil)
	w.mu.Unlock()
	w.notify()

	list, err := w.api.ListBookings(ctx, token)

	w.mu.Lock()
	if seq != w.seq {
		w.mu.Unlock()
		w.logger.Debug("Dropping superseded refresh", "seq", seq)
		return nil
	}

	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			w.mu.Unlock()
			w.forceLogout()
			return err
		}
		w.state = w.withDataLocked(KindError, err.Error(), err)
		w.mu.Unlock()
		w.notify()
		w.logger.Warn("Failed to refresh bookings", "error", err)
		return err
	}

	w.bookings = list
	w.hasData = true
	w.state = w.withDataLocked(KindReady, "", nil)
	w.mu.Unlock()
	w.notify()
	return nil
}

// Submit validates draft locally, creates the booking, then refreshes.
// A validation failure returns *booking.RejectedError and makes no network call.
// The refresh outcome is reported through State, not the returned error.
func (w *Workflow) Submit(ctx context.Context, draft booking.Draft) (*client.CreateBookingResponse, error) {
	w.mu.Lock()
	if !w.sess.Authenticated() {
		w.mu.Unlock()
		return nil, ErrNoSession
	}

	if err := booking.Validate(draft); err != nil {
		w.state = w.withDataLocked(KindError, err.Error(), err)
		w.mu.Unlock()
		w.notify()
		return nil, err
	}

	token := w.sess.Token
	epoch := w.epoch
	w.state = w.withDataLocked(KindSubmitting, "", nil)
	w.mu.Unlock()
	w.notify()

	req := client.NewCreateBookingRequest(draft.ResourceID, *draft.StartTime, *draft.EndTime)
	resp, err := w.api.CreateBooking(ctx, token, req)
	if err != nil {
		return nil, w.fail(epoch, err)
	}

	w.logger.Info("Booking created", "booking_id", resp.BookingID, "resource_id", draft.ResourceID)
	if err := w.Refresh(ctx); err != nil && !errors.Is(err, client.ErrUnauthenticated) {
		w.logger.Warn("Refresh after create failed", "error", err)
	}
	return resp, nil
}

// Approve approves a pending booking. Admin only.
func (w *Workflow) Approve(ctx context.Context, id int) error {
	return w.act(ctx, id, "approve", booking.CanApprove, w.api.ApproveBooking)
}

// Cancel cancels a booking that is not already cancelled. Admin only.
func (w *Workflow) Cancel(ctx context.Context, id int) error {
	return w.act(ctx, id, "cancel", booking.CanCancel, w.api.CancelBooking)
}

func (w *Workflow) act(ctx context.Context, id int, action string, eligible func(booking.Booking) bool, call func(context.Context, string, int) error) error {
	w.mu.Lock()
	token, err := w.checkActionLocked(id, action, eligible)
	epoch := w.epoch
	w.mu.Unlock()
	if err != nil {
		return err
	}

	if err := call(ctx, token, id); err != nil {
		return w.fail(epoch, err)
	}

	w.logger.Info("Booking updated", "booking_id", id, "action", action)
	if err := w.Refresh(ctx); err != nil && !errors.Is(err, client.ErrUnauthenticated) {
		w.logger.Warn("Refresh after "+action+" failed", "error", err)
	}
	return nil
}

// checkActionLocked gates admin actions on role and the last known status
func (w *Workflow) checkActionLocked(id int, action string, eligible func(booking.Booking) bool) (string, error) {
	if !w.sess.Authenticated() {
		return "", ErrNoSession
	}

	if !w.sess.Role.IsAdmin() {
		return "", fmt.Errorf("cannot %s booking %d: %w", action, id, ErrNotPermitted)
	}

	b, ok := booking.Find(w.bookings, id)
	if !ok {
		return "", fmt.Errorf("cannot %s booking %d: %w", action, id, ErrUnknownBooking)
	}
	if !eligible(b) {
		return "", fmt.Errorf("cannot %s booking %d (%s): %w", action, id, b.Status, ErrIneligible)
	}
	return w.sess.Token, nil
}

// fail records a backend failure for the session identified by epoch.
// Rejected tokens force logout. Failures that outlived their session are
// returned without touching the current one.
func (w *Workflow) fail(epoch uint64, err error) error {
	w.mu.Lock()
	stale := epoch != w.epoch
	w.mu.Unlock()
	if stale {
		w.logger.Debug("Ignoring failure from a previous session", "error", err)
		return err
	}

	if errors.Is(err, client.ErrUnauthenticated) {
		w.forceLogout()
		return err
	}

	w.mu.Lock()
	w.state = w.withDataLocked(KindError, err.Error(), err)
	w.mu.Unlock()
	w.notify()
	return err
}

func (w *Workflow) forceLogout() {
	w.logger.Info("Backend rejected session, logging out")
	if err := w.store.Clear(); err != nil {
		w.logger.Warn("Failed to clear session", "error", err)
	}

	w.mu.Lock()
	w.resetLocked("session expired, please log in again")
	w.state.Err = client.ErrUnauthenticated
	w.mu.Unlock()
	w.notify()
}

// resetLocked drops all session data. Bumping seq discards in-flight refreshes.
func (w *Workflow) resetLocked(message string) {
	w.sess = session.Session{}
	w.bookings = nil
	w.hasData = false
	w.seq++
	w.epoch++
	w.state = State{Kind: KindUnauthenticated, Message: message}
}

func (w *Workflow) withDataLocked(kind Kind, message string, err error) State {
	return State{
		Kind:     kind,
		Role:     w.sess.Role,
		Bookings: w.bookings,
		HasData:  w.hasData,
		Message:  message,
		Err:      err,
	}
}

// notify publishes the latest state. Listeners always see the newest snapshot,
// even when goroutines finish out of order.
func (w *Workflow) notify() {
	if w.listener == nil {
		return
	}
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	w.listener(w.State())
}
