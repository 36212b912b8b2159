// ABOUTME: Tests for the booking workflow state machine
// ABOUTME: Uses in-memory fakes for the backend API and session store

package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/client"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

type fakeStore struct {
	mu      sync.Mutex
	sess    session.Session
	loadErr error
	saveErr error
	cleared int
}

func (s *fakeStore) Load() (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, s.loadErr
}

func (s *fakeStore) Save(sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sess = sess
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = session.Session{}
	s.cleared++
	return nil
}

func (s *fakeStore) current() session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

type fakeAPI struct {
	mu       sync.Mutex
	role     string
	loginErr error
	listErr  error
	list     []booking.Booking
	createFn func(client.CreateBookingRequest) (*client.CreateBookingResponse, error)
	actionFn func(action string, id int) error
	calls    []string
	listHook func(n int)
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	f.record("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.LoginResponse{Token: "tok-" + email, Role: f.role}, nil
}

func (f *fakeAPI) ListBookings(ctx context.Context, token string) ([]booking.Booking, error) {
	f.record("list")
	if f.listHook != nil {
		f.listHook(f.count("list"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]booking.Booking(nil), f.list...), nil
}

func (f *fakeAPI) CreateBooking(ctx context.Context, token string, req client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
	f.record("create")
	if f.createFn != nil {
		return f.createFn(req)
	}
	return &client.CreateBookingResponse{Message: "Booking created", BookingID: 99, Status: booking.StatusPending}, nil
}

func (f *fakeAPI) ApproveBooking(ctx context.Context, token string, id int) error {
	f.record("approve")
	return f.action("approve", id)
}

func (f *fakeAPI) CancelBooking(ctx context.Context, token string, id int) error {
	f.record("cancel")
	return f.action("cancel", id)
}

func (f *fakeAPI) action(name string, id int) error {
	if f.actionFn != nil {
		return f.actionFn(name, id)
	}
	return nil
}

func (f *fakeAPI) setList(list []booking.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = list
}

func (f *fakeAPI) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func sampleBookings() []booking.Booking {
	base := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	return []booking.Booking{
		{ID: 1, ResourceID: 1, StartTime: base, EndTime: base.Add(time.Hour), Status: booking.StatusPending},
		{ID: 2, ResourceID: 2, StartTime: base, EndTime: base.Add(2 * time.Hour), Status: booking.StatusApproved},
		{ID: 3, ResourceID: 3, StartTime: base, EndTime: base.Add(time.Hour), Status: booking.StatusCancelled},
	}
}

func adminWorkflow(t *testing.T, api *fakeAPI) (*Workflow, *fakeStore) {
	t.Helper()
	store := &fakeStore{sess: session.Session{Token: "admin-token", Role: session.RoleAdmin}}
	w := New(store, api)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	return w, store
}

func TestNewWithoutSession(t *testing.T) {
	w := New(&fakeStore{}, &fakeAPI{})

	if got := w.State().Kind; got != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", got)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Errorf("expected no error starting logged out, got %v", err)
	}
}

func TestNewRestoresSession(t *testing.T) {
	store := &fakeStore{sess: session.Session{Token: "abc", Role: session.RoleUser}}
	w := New(store, &fakeAPI{})

	st := w.State()
	if st.Kind != KindAuthenticated {
		t.Errorf("expected authenticated, got %s", st.Kind)
	}
	if st.Role != session.RoleUser {
		t.Errorf("expected user role, got %v", st.Role)
	}
}

func TestNewLoadErrorStartsLoggedOut(t *testing.T) {
	store := &fakeStore{sess: session.Session{Token: "abc"}, loadErr: errors.New("disk on fire")}
	w := New(store, &fakeAPI{})

	if got := w.State().Kind; got != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", got)
	}
}

func TestNewExpiredTokenClearsSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	claims := jwt.MapClaims{"user_id": 1, "role": "admin", "exp": now.Add(-time.Minute).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	store := &fakeStore{sess: session.Session{Token: token, Role: session.RoleAdmin}}
	w := New(store, &fakeAPI{}, WithClock(func() time.Time { return now }))

	st := w.State()
	if st.Kind != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", st.Kind)
	}
	if st.Message == "" {
		t.Error("expected an expiry message")
	}
	if store.cleared != 1 {
		t.Errorf("expected store cleared once, got %d", store.cleared)
	}
}

func TestLoginThenReady(t *testing.T) {
	api := &fakeAPI{role: "user", list: sampleBookings()}
	store := &fakeStore{}

	var mu sync.Mutex
	var kinds []Kind
	w := New(store, api, WithListener(func(s State) {
		mu.Lock()
		kinds = append(kinds, s.Kind)
		mu.Unlock()
	}))

	if err := w.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := w.State()
	if st.Kind != KindReady {
		t.Errorf("expected ready, got %s", st.Kind)
	}
	if st.Role != session.RoleUser {
		t.Errorf("expected user role, got %v", st.Role)
	}
	if len(st.Bookings) != 3 || !st.HasData {
		t.Errorf("expected 3 bookings with data, got %d (hasData=%v)", len(st.Bookings), st.HasData)
	}
	if got := store.current(); got.Token != "tok-a@b.c" || got.Role != session.RoleUser {
		t.Errorf("expected persisted session, got %+v", got)
	}

	want := []Kind{KindAuthenticated, KindLoading, KindReady}
	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := &fakeAPI{loginErr: client.ErrInvalidCredentials}
	store := &fakeStore{}
	w := New(store, api)

	err := w.Login(context.Background(), "a@b.c", "wrong")
	if !errors.Is(err, client.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	st := w.State()
	if st.Kind != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", st.Kind)
	}
	if st.Message == "" {
		t.Error("expected a message describing the failure")
	}
	if store.current().Authenticated() {
		t.Error("expected nothing persisted")
	}
	if api.count("list") != 0 {
		t.Error("expected no list request after failed login")
	}
}

func TestLoginUnknownRoleIsNone(t *testing.T) {
	api := &fakeAPI{role: "superuser"}
	w := New(&fakeStore{}, api)

	if err := w.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.Role(); got != session.RoleNone {
		t.Errorf("expected RoleNone, got %v", got)
	}
}

func TestLoginSaveFailure(t *testing.T) {
	api := &fakeAPI{role: "user"}
	store := &fakeStore{saveErr: errors.New("read-only")}
	w := New(store, api)

	if err := w.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error when session cannot be saved")
	}
	if w.Session().Authenticated() {
		t.Error("expected session not adopted when save fails")
	}
}

func TestLoginFailureDropsRestoredSession(t *testing.T) {
	tests := []struct {
		name    string
		api     *fakeAPI
		saveErr error
	}{
		{name: "invalid credentials", api: &fakeAPI{loginErr: client.ErrInvalidCredentials}},
		{name: "network error", api: &fakeAPI{loginErr: &client.NetworkError{BaseURL: "http://x", Err: errors.New("refused")}}},
		{name: "save failure", api: &fakeAPI{role: "user"}, saveErr: errors.New("read-only")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.api.list = sampleBookings()
			w, store := adminWorkflow(t, tt.api)
			store.mu.Lock()
			store.saveErr = tt.saveErr
			store.mu.Unlock()

			if err := w.Login(context.Background(), "user@example.com", "wrong"); err == nil {
				t.Fatal("expected login error")
			}

			if w.Session().Authenticated() {
				t.Error("expected in-memory session dropped after failed login")
			}
			st := w.State()
			if st.Kind != KindUnauthenticated || st.Err == nil {
				t.Errorf("expected unauthenticated state carrying the error, got %s (%v)", st.Kind, st.Err)
			}
			if st.HasData || len(st.Bookings) != 0 {
				t.Error("expected previous bookings discarded")
			}
			if err := w.Refresh(context.Background()); !errors.Is(err, ErrNoSession) {
				t.Errorf("expected ErrNoSession from refresh, got %v", err)
			}
			if err := w.Approve(context.Background(), 1); !errors.Is(err, ErrNoSession) {
				t.Errorf("expected ErrNoSession from approve, got %v", err)
			}
			if tt.api.count("approve") != 0 {
				t.Error("expected no approve request with the old token")
			}
			if got := store.current().Token; got != "admin-token" {
				t.Errorf("expected stored session left alone, got token %q", got)
			}
		})
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	api := &fakeAPI{}
	w := New(&fakeStore{}, api)

	if err := w.Refresh(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	if api.total() != 0 {
		t.Errorf("expected no API calls, got %d", api.total())
	}
}

func TestRefreshUnauthorizedForcesLogout(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, store := adminWorkflow(t, api)

	api.setListErr(client.ErrUnauthenticated)
	err := w.Refresh(context.Background())
	if !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	st := w.State()
	if st.Kind != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", st.Kind)
	}
	if len(st.Bookings) != 0 || st.HasData {
		t.Error("expected bookings discarded on forced logout")
	}
	if store.current().Authenticated() {
		t.Error("expected persisted session cleared")
	}
	if w.Session().Authenticated() {
		t.Error("expected in-memory session cleared")
	}
}

func TestRefreshFailureKeepsBookings(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)

	netErr := &client.NetworkError{BaseURL: "http://x", Err: errors.New("boom")}
	api.setListErr(netErr)
	if err := w.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	st := w.State()
	if st.Kind != KindError {
		t.Errorf("expected error state, got %s", st.Kind)
	}
	if len(st.Bookings) != 3 || !st.HasData {
		t.Errorf("expected last known bookings kept, got %d", len(st.Bookings))
	}
	var ne *client.NetworkError
	if !errors.As(st.Err, &ne) {
		t.Errorf("expected NetworkError in state, got %v", st.Err)
	}
	if !w.Session().Authenticated() {
		t.Error("expected session kept on transient failure")
	}
}

func TestRefreshDropsSupersededResult(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()[:1]}
	store := &fakeStore{sess: session.Session{Token: "t", Role: session.RoleUser}}
	w := New(store, api)

	release := make(chan struct{})
	entered := make(chan struct{})
	api.listHook = func(n int) {
		if n == 1 {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() { done <- w.Refresh(context.Background()) }()
	<-entered

	// second refresh starts after the first and completes first
	api.setList(sampleBookings())
	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.setList(nil)
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error from superseded refresh: %v", err)
	}

	st := w.State()
	if st.Kind != KindReady {
		t.Errorf("expected ready, got %s", st.Kind)
	}
	if len(st.Bookings) != 3 {
		t.Errorf("expected newer result (3 bookings) to win, got %d", len(st.Bookings))
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestSubmitRejectsInvalidDraftWithoutRequest(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)
	before := api.total()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	draft := booking.Draft{ResourceID: 1, StartTime: ptr(start), EndTime: ptr(start.Add(-time.Hour))}

	resp, err := w.Submit(context.Background(), draft)
	if resp != nil {
		t.Error("expected no response")
	}
	var rejected *booking.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.Reason != booking.ReasonEndBeforeStart {
		t.Errorf("expected reason %q, got %q", booking.ReasonEndBeforeStart, rejected.Reason)
	}
	if api.total() != before {
		t.Errorf("expected no API calls, got %d new", api.total()-before)
	}

	st := w.State()
	if st.Kind != KindError || st.Message != booking.ReasonEndBeforeStart {
		t.Errorf("expected error state with reason, got %s %q", st.Kind, st.Message)
	}
	if len(st.Bookings) != 3 {
		t.Error("expected bookings kept after rejection")
	}
}

func TestSubmitMissingTimes(t *testing.T) {
	api := &fakeAPI{}
	w, _ := adminWorkflow(t, api)

	_, err := w.Submit(context.Background(), booking.Draft{ResourceID: 1})
	if !booking.IsRejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if api.count("create") != 0 {
		t.Error("expected no create request")
	}
}

func TestSubmitSuccessRefreshes(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()[:2]}
	w, _ := adminWorkflow(t, api)

	var sent client.CreateBookingRequest
	api.createFn = func(req client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
		sent = req
		api.setList(sampleBookings())
		return &client.CreateBookingResponse{Message: "Booking created", BookingID: 3, Status: booking.StatusPending}, nil
	}

	wib := time.FixedZone("WIB", 7*3600)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, wib)
	resp, err := w.Submit(context.Background(), booking.NewDraft(2, start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BookingID != 3 {
		t.Errorf("expected booking id 3, got %d", resp.BookingID)
	}
	if sent.StartTime != "2025-06-01T02:00:00Z" || sent.EndTime != "2025-06-01T03:00:00Z" {
		t.Errorf("expected UTC wire times, got %s / %s", sent.StartTime, sent.EndTime)
	}
	if sent.ResourceID != 2 {
		t.Errorf("expected resource 2, got %d", sent.ResourceID)
	}

	st := w.State()
	if st.Kind != KindReady || len(st.Bookings) != 3 {
		t.Errorf("expected ready with 3 bookings, got %s with %d", st.Kind, len(st.Bookings))
	}
}

func TestSubmitBackendRejection(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)
	api.createFn = func(client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
		return nil, &client.ValidationRejectedError{StatusCode: 409, Message: "resource already booked"}
	}

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	_, err := w.Submit(context.Background(), booking.NewDraft(1, start, start.Add(time.Hour)))

	var vr *client.ValidationRejectedError
	if !errors.As(err, &vr) {
		t.Fatalf("expected ValidationRejectedError, got %v", err)
	}
	st := w.State()
	if st.Kind != KindError || st.Message != "resource already booked" {
		t.Errorf("expected error state with backend message, got %s %q", st.Kind, st.Message)
	}
	if len(st.Bookings) != 3 {
		t.Error("expected bookings kept")
	}
}

func TestSubmitRefreshFailureStillSucceeds(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)
	api.createFn = func(client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
		api.setListErr(&client.RequestFailedError{Operation: "list bookings", StatusCode: 500})
		return &client.CreateBookingResponse{BookingID: 7, Status: booking.StatusPending}, nil
	}

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	resp, err := w.Submit(context.Background(), booking.NewDraft(1, start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("expected create success reported, got %v", err)
	}
	if resp == nil || resp.BookingID != 7 {
		t.Errorf("expected response for booking 7, got %+v", resp)
	}
	if got := w.State().Kind; got != KindError {
		t.Errorf("expected error state from failed refresh, got %s", got)
	}
}

func TestApproveAsUserNotPermitted(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	store := &fakeStore{sess: session.Session{Token: "t", Role: session.RoleUser}}
	w := New(store, api)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := w.State()

	for name, fn := range map[string]func(context.Context, int) error{"approve": w.Approve, "cancel": w.Cancel} {
		t.Run(name, func(t *testing.T) {
			err := fn(context.Background(), 1)
			if !errors.Is(err, ErrNotPermitted) {
				t.Errorf("expected ErrNotPermitted, got %v", err)
			}
			if !IsCallerError(err) {
				t.Error("expected caller error")
			}
		})
	}

	if api.count("approve")+api.count("cancel") != 0 {
		t.Error("expected no HTTP calls for non-admin")
	}
	if after := w.State(); after.Kind != before.Kind {
		t.Errorf("expected state unchanged, got %s", after.Kind)
	}
}

func TestApproveUnknownBooking(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)

	if err := w.Approve(context.Background(), 42); !errors.Is(err, ErrUnknownBooking) {
		t.Errorf("expected ErrUnknownBooking, got %v", err)
	}
	if api.count("approve") != 0 {
		t.Error("expected no approve request")
	}
}

func TestActionEligibility(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		approve bool
		wantErr error
	}{
		{name: "approve pending", id: 1, approve: true},
		{name: "approve approved", id: 2, approve: true, wantErr: ErrIneligible},
		{name: "approve cancelled", id: 3, approve: true, wantErr: ErrIneligible},
		{name: "cancel pending", id: 1},
		{name: "cancel approved", id: 2},
		{name: "cancel cancelled", id: 3, wantErr: ErrIneligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{list: sampleBookings()}
			w, _ := adminWorkflow(t, api)

			var err error
			if tt.approve {
				err = w.Approve(context.Background(), tt.id)
			} else {
				err = w.Cancel(context.Background(), tt.id)
			}

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if api.count("list") != 2 {
					t.Errorf("expected refresh after action, got %d lists", api.count("list"))
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if api.count("approve")+api.count("cancel") != 0 {
				t.Error("expected no HTTP call for ineligible booking")
			}
		})
	}
}

func TestCancelTwice(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)

	api.actionFn = func(action string, id int) error {
		list := sampleBookings()
		list[0].Status = booking.StatusCancelled
		api.setList(list)
		return nil
	}

	if err := w.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := booking.Find(w.State().Bookings, 1)
	if b.Status != booking.StatusCancelled {
		t.Errorf("expected cancelled after refresh, got %s", b.Status)
	}

	if err := w.Cancel(context.Background(), 1); !errors.Is(err, ErrIneligible) {
		t.Errorf("expected ErrIneligible on second cancel, got %v", err)
	}
	if api.count("cancel") != 1 {
		t.Errorf("expected one cancel request, got %d", api.count("cancel"))
	}
}

func TestActionUnauthorizedForcesLogout(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, store := adminWorkflow(t, api)
	api.actionFn = func(string, int) error { return client.ErrUnauthenticated }

	if err := w.Approve(context.Background(), 1); !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if got := w.State().Kind; got != KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", got)
	}
	if store.current().Authenticated() {
		t.Error("expected store cleared")
	}
}

func TestUnauthorizedFromPreviousSessionIgnored(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *Workflow) error
	}{
		{name: "approve", run: func(w *Workflow) error { return w.Approve(context.Background(), 1) }},
		{name: "submit", run: func(w *Workflow) error {
			start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
			_, err := w.Submit(context.Background(), booking.NewDraft(1, start, start.Add(time.Hour)))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{role: "admin", list: sampleBookings()}
			w, store := adminWorkflow(t, api)

			relogin := func() error {
				if err := w.Logout(); err != nil {
					t.Errorf("unexpected logout error: %v", err)
				}
				if err := w.Login(context.Background(), "second@example.com", "pw"); err != nil {
					t.Errorf("unexpected login error: %v", err)
				}
				return client.ErrUnauthenticated
			}
			api.actionFn = func(string, int) error { return relogin() }
			api.createFn = func(client.CreateBookingRequest) (*client.CreateBookingResponse, error) {
				return nil, relogin()
			}

			if err := tt.run(w); !errors.Is(err, client.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}

			if got := w.Session().Token; got != "tok-second@example.com" {
				t.Errorf("expected new session kept, got token %q", got)
			}
			if got := w.State().Kind; got != KindReady {
				t.Errorf("expected ready state for new session, got %s", got)
			}
			if got := store.current().Token; got != "tok-second@example.com" {
				t.Errorf("expected new session persisted, got token %q", got)
			}
			store.mu.Lock()
			cleared := store.cleared
			store.mu.Unlock()
			if cleared != 1 {
				t.Errorf("expected only the explicit logout to clear the store, got %d clears", cleared)
			}
		})
	}
}

func TestActionBackendFailureKeepsState(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)
	api.actionFn = func(string, int) error {
		return &client.RequestFailedError{Operation: "approve booking", StatusCode: 500, Message: "db down"}
	}

	err := w.Approve(context.Background(), 1)
	var rf *client.RequestFailedError
	if !errors.As(err, &rf) {
		t.Fatalf("expected RequestFailedError, got %v", err)
	}
	st := w.State()
	if st.Kind != KindError || len(st.Bookings) != 3 {
		t.Errorf("expected error state with bookings, got %s with %d", st.Kind, len(st.Bookings))
	}
}

func TestActionsGatedByRole(t *testing.T) {
	pending := sampleBookings()[0]
	cancelled := sampleBookings()[2]

	user := New(&fakeStore{sess: session.Session{Token: "t", Role: session.RoleUser}}, &fakeAPI{})
	if a, c := user.Actions(pending); a || c {
		t.Error("expected no actions for user")
	}

	admin := New(&fakeStore{sess: session.Session{Token: "t", Role: session.RoleAdmin}}, &fakeAPI{})
	if a, c := admin.Actions(pending); !a || !c {
		t.Error("expected approve and cancel for pending booking")
	}
	if a, c := admin.Actions(cancelled); a || c {
		t.Error("expected no actions for cancelled booking")
	}
}

func TestLogout(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, store := adminWorkflow(t, api)

	if err := w.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := w.State()
	if st.Kind != KindUnauthenticated || len(st.Bookings) != 0 {
		t.Errorf("expected empty unauthenticated state, got %s with %d", st.Kind, len(st.Bookings))
	}
	if store.current().Authenticated() {
		t.Error("expected store cleared")
	}
	if err := w.Approve(context.Background(), 1); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after logout, got %v", err)
	}
}

func TestStateSnapshotIsCopy(t *testing.T) {
	api := &fakeAPI{list: sampleBookings()}
	w, _ := adminWorkflow(t, api)

	st := w.State()
	st.Bookings[0].Status = booking.StatusCancelled

	if w.State().Bookings[0].Status != booking.StatusPending {
		t.Error("expected snapshot mutation not to affect workflow")
	}
}
