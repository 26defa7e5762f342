package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/registry"
)

// TokenEnv overrides the stored session with a personal token, letting
// scripted callers authenticate without a login. Cached profile fields from
// the stored session remain available for offline reads.
const TokenEnv = "PARCEL_AUTH_TOKEN"

// Store persists the active session for one local profile. Writes are
// atomic so an interrupted process never leaves a torn session file.
type Store struct {
	baseDir string
	profile string
}

// NewStore creates a session store rooted at baseDir. If baseDir is empty,
// ~/.parcel is used. The profile names the session file, so independent
// profiles never share a credential.
func NewStore(baseDir, profile string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".parcel")
	}
	if profile == "" {
		profile = "default"
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Str("profile", profile).Msg("session store initialized")

	return &Store{baseDir: baseDir, profile: profile}, nil
}

// Load reads the stored session. A missing file yields a nil session, not an
// error. If TokenEnv is set it takes precedence as a token-method credential.
func (s *Store) Load() (*Session, error) {
	sess, err := s.read()
	if err != nil {
		return nil, err
	}

	if tok := os.Getenv(TokenEnv); tok != "" {
		override := &Session{Token: tok, Method: MethodToken}
		if sess != nil {
			override.Username = sess.Username
			override.UserID = sess.UserID
			override.Cached = sess.Cached
		}
		log.Debug().Str("fingerprint", override.Fingerprint()).Msg("using personal token from environment")
		return override, nil
	}

	return sess, nil
}

// Require returns the stored session or an authentication error when no
// usable credential exists.
func (s *Store) Require() (*Session, error) {
	sess, err := s.Load()
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, registry.Errorf(registry.KindAuthentication, "you are not authorized, please log in to your registry account first")
	}
	return sess, nil
}

// Save persists the session atomically with 0600 permissions.
func (s *Store) Save(sess *Session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := s.path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	log.Debug().
		Str("profile", s.profile).
		Str("username", sess.Username).
		Str("fingerprint", sess.Fingerprint()).
		Msg("session saved")

	return nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Debug().Str("profile", s.profile).Msg("session cleared")
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.baseDir, s.profile+".session.json")
}

func (s *Store) read() (*Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	return &sess, nil
}
