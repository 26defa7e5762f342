package session

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"

	"github.com/parcelreg/parcel/internal/registry"
)

// Method records how the current credential was obtained.
type Method string

const (
	// MethodPassword marks a session created by a password login.
	MethodPassword Method = "password"

	// MethodToken marks a session backed by a personal token, typically
	// injected through the environment.
	MethodToken Method = "token"
)

// Session binds the active profile to exactly one credential. A cleared or
// expired session means the caller is unauthenticated.
type Session struct {
	Username string            `json:"username,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
	Token    string            `json:"token"`
	Method   Method            `json:"auth_method"`
	SavedAt  time.Time         `json:"saved_at"`
	Cached   *registry.Profile `json:"profile,omitempty"`
}

// Credential returns the bearer credential for authority calls.
func (s *Session) Credential() registry.Credential {
	if s == nil {
		return ""
	}
	return registry.Credential(s.Token)
}

// Authenticated reports whether the session carries a usable credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && !s.Expired()
}

// Expired reports whether a JWT session token is past its expiry. Opaque
// personal tokens carry no local expiry and are trusted until the authority
// rejects them.
func (s *Session) Expired() bool {
	if s == nil || s.Token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

// Fingerprint returns a short Base58 digest of the token, safe to log in
// place of the token itself.
func (s *Session) Fingerprint() string {
	if s == nil || s.Token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.Token))
	fp := base58.Encode(sum[:])
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return fp
}
