// ABOUTME: HTTP client for the resource booking backend
// ABOUTME: Attaches bearer auth and maps failures to typed errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout
const DefaultTimeout = 10 * time.Second

const userAgent = "booking-cli"

// Client is the API client for the resource booking backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	ResourceID int    `json:"resource_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// NewCreateBookingRequest converts a validated interval to wire form (UTC RFC 3339)
func NewCreateBookingRequest(resourceID int, start, end time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		ResourceID: resourceID,
		StartTime:  booking.FormatWire(start),
		EndTime:    booking.FormatWire(end),
	}
}

// CreateBookingResponse is returned when the backend accepts a booking
type CreateBookingResponse struct {
	Message   string         `json:"message"`
	BookingID int            `json:"booking_id"`
	Status    booking.Status `json:"status"`
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// Login calls POST /login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", "", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil, ErrInvalidCredentials
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, c.decodeError(ctx, err)
	}
	if login.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &login, nil
}

// ListBookings calls GET /bookings. Order is whatever the backend returns.
func (c *Client) ListBookings(ctx context.Context, token string) ([]booking.Booking, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	resp, err := c.do(ctx, http.MethodGet, "/bookings", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.handleErrorResponse("list bookings", resp)
	}

	var bookings []booking.Booking
	if err := json.NewDecoder(resp.Body).Decode(&bookings); err != nil {
		return nil, c.decodeError(ctx, err)
	}
	if bookings == nil {
		bookings = []booking.Booking{}
	}
	return bookings, nil
}

// CreateBooking calls POST /bookings
func (c *Client) CreateBooking(ctx context.Context, token string, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	resp, err := c.do(ctx, http.MethodPost, "/bookings", token, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp.Body)
			return nil, ErrUnauthenticated
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			if msg := decodeErrorMessage(resp.Body); msg != "" {
				return nil, &ValidationRejectedError{StatusCode: resp.StatusCode, Message: msg}
			}
		}
		return nil, &RequestFailedError{Operation: "create booking", StatusCode: resp.StatusCode}
	}

	var created CreateBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, c.decodeError(ctx, err)
	}
	return &created, nil
}

// ApproveBooking calls POST /bookings/{id}/approve
func (c *Client) ApproveBooking(ctx context.Context, token string, id int) error {
	return c.bookingAction(ctx, token, id, "approve")
}

// CancelBooking calls POST /bookings/{id}/cancel
func (c *Client) CancelBooking(ctx context.Context, token string, id int) error {
	return c.bookingAction(ctx, token, id, "cancel")
}

func (c *Client) bookingAction(ctx context.Context, token string, id int, action string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/bookings/%d/%s", id, action), token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return c.handleErrorResponse(action+" booking", resp)
	}
	drain(resp.Body)
	return nil
}

// do builds and sends a request, returning *NetworkError for transport failures
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait fails early when the deadline cannot be met
			return nil, &NetworkError{
				BaseURL:  c.baseURL,
				Err:      err,
				canceled: errors.Is(ctx.Err(), context.Canceled),
				timedOut: !errors.Is(ctx.Err(), context.Canceled),
			}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Request failed", "method", method, "path", path, "error", err)
		return nil, c.handleRequestError(ctx, err)
	}
	slog.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)
	return resp, nil
}

// handleRequestError converts transport and context errors to *NetworkError
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	netErr := &NetworkError{BaseURL: c.baseURL, Err: err}

	var timeoutErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		netErr.canceled = true
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		netErr.timedOut = true
	case errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		netErr.timedOut = true
	}
	return netErr
}

// decodeError reports a failed body read. A deadline or cancellation hit while
// reading is a *NetworkError like one hit before the response arrived.
func (c *Client) decodeError(ctx context.Context, err error) error {
	var timeoutErr net.Error
	if ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		(errors.As(err, &timeoutErr) && timeoutErr.Timeout()) {
		return c.handleRequestError(ctx, err)
	}
	return fmt.Errorf("invalid response from backend: %w", err)
}

// handleErrorResponse maps a non-success response from a protected endpoint
func (c *Client) handleErrorResponse(operation string, resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return ErrUnauthenticated
	}
	return &RequestFailedError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Message:    decodeErrorMessage(resp.Body),
	}
}

func decodeErrorMessage(body io.Reader) string {
	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&errResp); err != nil {
		return ""
	}
	return errResp.Error
}

func drain(body io.Reader) {
	io.Copy(io.Discard, io.LimitReader(body, 64<<10))
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
