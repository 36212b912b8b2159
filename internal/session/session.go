// ABOUTME: Session value and role enumeration for the booking client
// ABOUTME: Reads token expiry from unverified JWT claims when available

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role gates which mutating operations the client offers
type Role int

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
)

// ParseRole maps a persisted or wire role string to a Role.
// Unrecognized values yield RoleNone and false.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	default:
		return RoleNone, false
	}
}

// String returns the wire representation of the role
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return ""
	}
}

// IsAdmin reports whether r may approve and cancel bookings
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Session is the client's record of authentication and authorization
type Session struct {
	Token string
	Role  Role
}

// Authenticated reports whether the session carries a token.
// A role without a token does not count.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// EffectiveRole returns the role only when the session is authenticated
func (s Session) EffectiveRole() Role {
	if !s.Authenticated() {
		return RoleNone
	}
	return s.Role
}

// tokenClaims mirrors what the backend signs into its tokens
type tokenClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ExpiresAt returns the exp claim of a JWT token without verifying its signature.
// Opaque tokens and tokens without exp report false.
func (s Session) ExpiresAt() (time.Time, bool) {
	if s.Token == "" {
		return time.Time{}, false
	}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an expiry that has passed at now
func (s Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}
