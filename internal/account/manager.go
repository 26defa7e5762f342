// Package account implements the account lifecycle: registration, email
// verification, login and logout, profile reads and updates, password
// changes, personal-token issuance, and guarded destruction.
package account

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/guard"
	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/session"
)

// Manager drives account operations against the authority and keeps the
// local session store in step with them.
type Manager struct {
	authority registry.Authority
	store     *session.Store
	guard     *guard.Guard
}

// NewManager creates an account manager.
func NewManager(authority registry.Authority, store *session.Store) *Manager {
	return &Manager{
		authority: authority,
		store:     store,
		guard:     guard.New(authority),
	}
}

// Register creates a new, unverified account. The authority sends the
// confirmation email out of band; the account cannot log in until the
// emailed token is submitted through Verify.
func (m *Manager) Register(ctx context.Context, reg registry.Registration) (*registry.Account, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	acc, err := m.authority.Register(ctx, reg)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("username", acc.Profile.Username).Msg("account registered")

	return acc, nil
}

// Verify submits an emailed confirmation token and flips the account to
// verified.
func (m *Manager) Verify(ctx context.Context, token string) (*registry.Account, error) {
	if token == "" {
		return nil, registry.Errorf(registry.KindValidation, "verification token is required")
	}
	return m.authority.Verify(ctx, token)
}

// Login authenticates by username or email and stores the resulting session
// as the profile's single active identity.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*session.Session, error) {
	if identifier == "" || password == "" {
		return nil, registry.Errorf(registry.KindValidation, "username or email and password are required")
	}

	res, err := m.authority.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	profile := res.Account.Profile
	sess := &session.Session{
		Username: profile.Username,
		Token:    res.Token,
		Method:   session.MethodPassword,
		Cached:   &profile,
	}
	if err := m.store.Save(sess); err != nil {
		return nil, err
	}

	log.Debug().Str("username", sess.Username).Str("fingerprint", sess.Fingerprint()).Msg("logged in")

	return sess, nil
}

// Logout revokes the password session at the authority and clears the local
// session. Logging out with no active session is a no-op. Personal tokens
// issued earlier stay valid; logout only ends the password session.
func (m *Manager) Logout(ctx context.Context) error {
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		return nil
	}

	if sess.Method == session.MethodPassword {
		err := m.authority.Logout(ctx, sess.Credential())
		// An already-invalid session is as logged out as it gets.
		if err != nil && !registry.IsKind(err, registry.KindAuthentication) {
			return err
		}
	}

	return m.store.Clear()
}

// Show returns the account summary. The offline variant serves only profile
// fields cached by earlier logins and live reads, without touching the
// authority; the live variant also fetches owned packages and subscriptions
// and refreshes the cache.
func (m *Manager) Show(ctx context.Context, offline bool) (*registry.AccountSummary, error) {
	if offline {
		sess, err := m.store.Load()
		if err != nil {
			return nil, err
		}
		if sess == nil || sess.Cached == nil {
			return nil, registry.Errorf(registry.KindAuthentication, "no cached profile, please log in to your registry account first")
		}
		return &registry.AccountSummary{
			UserID:  sess.UserID,
			Profile: *sess.Cached,
		}, nil
	}

	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}

	summary, err := m.authority.Show(ctx, sess.Credential())
	if err != nil {
		return nil, err
	}

	sess.UserID = summary.UserID
	sess.Cached = &summary.Profile
	if err := m.store.Save(sess); err != nil {
		return nil, err
	}

	return summary, nil
}

// Token issues a new personal authentication token. The caller must hold a
// valid credential and still re-prove the password. Issuing a token never
// invalidates previously issued ones.
func (m *Manager) Token(ctx context.Context, password string) (string, error) {
	sess, err := m.store.Require()
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", registry.Errorf(registry.KindValidation, "password is required")
	}
	return m.authority.IssueToken(ctx, sess.Credential(), password)
}

// ChangePassword replaces the account password. The current session and any
// issued tokens stay valid.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if oldPassword == "" {
		return registry.Errorf(registry.KindValidation, "old password is required")
	}
	if err := registry.ValidatePassword(newPassword); err != nil {
		return err
	}
	return m.authority.ChangePassword(ctx, sess.Credential(), oldPassword, newPassword)
}

// Update mutates profile fields after re-proving the password. A changed
// email drops the account back to unverified and clears the local session;
// the caller must complete the email round trip and log in again. The
// returned bool reports whether that re-verification is now pending.
func (m *Manager) Update(ctx context.Context, upd registry.ProfileUpdate) (*registry.Account, bool, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, false, err
	}
	if upd.CurrentPassword == "" {
		return nil, false, registry.Errorf(registry.KindValidation, "current password is required")
	}
	if upd.Username != "" {
		if err := registry.ValidateName("username", upd.Username); err != nil {
			return nil, false, err
		}
	}
	if upd.Email != "" {
		if err := registry.ValidateEmail(upd.Email); err != nil {
			return nil, false, err
		}
	}

	acc, err := m.authority.UpdateProfile(ctx, sess.Credential(), upd)
	if err != nil {
		return nil, false, err
	}

	emailChanged := upd.Email != "" && (sess.Cached == nil || upd.Email != sess.Cached.Email)
	if emailChanged {
		// The prior session is no longer authenticated.
		if err := m.store.Clear(); err != nil {
			return nil, false, err
		}
		log.Debug().Str("username", acc.Profile.Username).Msg("email changed, session cleared pending re-verification")
		return acc, true, nil
	}

	sess.Username = acc.Profile.Username
	sess.Cached = &acc.Profile
	if err := m.store.Save(sess); err != nil {
		return nil, false, err
	}

	return acc, false, nil
}

// Destroy removes the account and all of its sessions and tokens. The
// dependency guard runs first: while any linked resource still references
// the account, the destroy is refused with the blocking count and nothing
// changes.
func (m *Manager) Destroy(ctx context.Context) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}

	resources, err := m.guard.Check(ctx, sess.Credential(), registry.ResourceOwner{Account: sess.Username})
	if err != nil {
		return err
	}
	if n := len(resources); n > 0 {
		name := sess.Username
		if name == "" {
			name = "current"
		}
		return registry.ConflictError(n,
			"we can not destroy the %s account due to %d linked resources from registry", name, n)
	}

	if err := m.authority.DestroyAccount(ctx, sess.Credential()); err != nil {
		return err
	}

	return m.store.Clear()
}
