package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/registrytest"
	"github.com/parcelreg/parcel/internal/session"
)

func newTestManager(t *testing.T) (*registrytest.Fake, *session.Store, *Manager) {
	t.Helper()
	t.Setenv(session.TokenEnv, "")

	fake := registrytest.New()
	store, err := session.NewStore(t.TempDir(), "default")
	require.NoError(t, err)
	return fake, store, NewManager(fake, store)
}

func aliceRegistration() registry.Registration {
	return registry.Registration{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cretpass",
		Firstname: "Alice",
		Lastname:  "Smith",
	}
}

// registerAndLogin walks a fresh account through the register, verify, and
// login steps so each test can start from an authenticated state.
func registerAndLogin(t *testing.T, fake *registrytest.Fake, m *Manager) {
	t.Helper()
	ctx := context.Background()

	_, err := m.Register(ctx, aliceRegistration())
	require.NoError(t, err)

	_, err = m.Verify(ctx, fake.VerificationToken("alice"))
	require.NoError(t, err)

	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	_, _, m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*registry.Registration)
	}{
		{"bad username", func(r *registry.Registration) { r.Username = "Not Valid" }},
		{"bad email", func(r *registry.Registration) { r.Email = "not-an-email" }},
		{"weak password", func(r *registry.Registration) { r.Password = "short" }},
		{"missing firstname", func(r *registry.Registration) { r.Firstname = "" }},
		{"missing lastname", func(r *registry.Registration) { r.Lastname = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := aliceRegistration()
			tt.mutate(&reg)
			_, err := m.Register(ctx, reg)
			require.Error(t, err)
			assert.True(t, registry.IsKind(err, registry.KindValidation))
		})
	}
}

func TestLoginRequiresVerification(t *testing.T) {
	fake, store, m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Register(ctx, aliceRegistration())
	require.NoError(t, err)

	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))

	// A failed login leaves no session behind.
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = m.Verify(ctx, fake.VerificationToken("alice"))
	require.NoError(t, err)

	sess2, err := m.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "alice", sess2.Username)
	assert.Equal(t, session.MethodPassword, sess2.Method)
}

func TestLoginByEmail(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	require.NoError(t, m.Logout(ctx))

	_, err := m.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
}

func TestLoginBadPassword(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	_, err := m.Login(ctx, "alice", "wrongpass1")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}

func TestLogoutIsIdempotent(t *testing.T) {
	fake, store, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	require.NoError(t, m.Logout(ctx))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Logging out with no active session succeeds quietly.
	require.NoError(t, m.Logout(ctx))
}

func TestShowLiveAndOffline(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	t.Run("offline after login has no user id", func(t *testing.T) {
		sum, err := m.Show(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, sum.UserID)
		assert.Equal(t, "alice", sum.Profile.Username)
		assert.Nil(t, sum.Packages)
		assert.Nil(t, sum.Subscriptions)
	})

	t.Run("live show populates and caches", func(t *testing.T) {
		sum, err := m.Show(ctx, false)
		require.NoError(t, err)
		assert.NotEmpty(t, sum.UserID)
		assert.NotNil(t, sum.Packages)
		assert.NotNil(t, sum.Subscriptions)
	})

	t.Run("offline after live show includes cached user id", func(t *testing.T) {
		sum, err := m.Show(ctx, true)
		require.NoError(t, err)
		assert.NotEmpty(t, sum.UserID)
		assert.Equal(t, "alice@example.com", sum.Profile.Email)
	})
}

func TestShowOfflineWithoutCache(t *testing.T) {
	_, _, m := newTestManager(t)

	_, err := m.Show(context.Background(), true)
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}

func TestShowRequiresSession(t *testing.T) {
	_, _, m := newTestManager(t)

	_, err := m.Show(context.Background(), false)
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}

func TestTokenSurvivesLogout(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	token, err := m.Token(ctx, "s3cretpass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, m.Logout(ctx))

	// The personal token still authenticates after the session is gone.
	t.Setenv(session.TokenEnv, token)
	sum, err := m.Show(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "alice", sum.Profile.Username)

	// And a second token can be issued on its strength.
	token2, err := m.Token(ctx, "s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestTokenRequiresPassword(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	_, err := m.Token(ctx, "")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindValidation))

	_, err = m.Token(ctx, "wrongpass1")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}

func TestChangePassword(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	require.NoError(t, m.ChangePassword(ctx, "s3cretpass", "newpass99"))

	// The current session stays valid across the change.
	_, err := m.Show(ctx, false)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))

	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.Error(t, err)

	_, err = m.Login(ctx, "alice", "newpass99")
	require.NoError(t, err)
}

func TestChangePasswordRejectsWeak(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)

	err := m.ChangePassword(context.Background(), "s3cretpass", "short")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindValidation))
}

func TestUpdateProfileFields(t *testing.T) {
	fake, store, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	acc, reverify, err := m.Update(ctx, registry.ProfileUpdate{
		CurrentPassword: "s3cretpass",
		Firstname:       "Alicia",
	})
	require.NoError(t, err)
	assert.False(t, reverify)
	assert.Equal(t, "Alicia", acc.Profile.Firstname)

	// The cache is refreshed in place, so offline reads see the change.
	sess, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, sess.Cached)
	assert.Equal(t, "Alicia", sess.Cached.Firstname)
}

func TestUpdateEmailInvalidatesSession(t *testing.T) {
	fake, store, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	_, reverify, err := m.Update(ctx, registry.ProfileUpdate{
		CurrentPassword: "s3cretpass",
		Email:           "alice@new.example.com",
	})
	require.NoError(t, err)
	assert.True(t, reverify)

	// The local session is gone and the remote one was revoked with it.
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Login stays refused until the new address is confirmed.
	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))

	_, err = m.Verify(ctx, fake.VerificationToken("alice"))
	require.NoError(t, err)

	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
}

func TestUpdateRequiresCurrentPassword(t *testing.T) {
	fake, _, m := newTestManager(t)
	registerAndLogin(t, fake, m)

	_, _, err := m.Update(context.Background(), registry.ProfileUpdate{Firstname: "Alicia"})
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindValidation))

	_, _, err = m.Update(context.Background(), registry.ProfileUpdate{
		CurrentPassword: "wrongpass1",
		Firstname:       "Alicia",
	})
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}

func TestDestroyBlockedByLinkedResources(t *testing.T) {
	fake, store, m := newTestManager(t)
	registerAndLogin(t, fake, m)
	ctx := context.Background()

	sess, err := store.Require()
	require.NoError(t, err)

	_, err = fake.PublishPackage(ctx, sess.Credential(), registry.PackageUpload{Name: "toolkit"})
	require.NoError(t, err)
	_, err = fake.PublishPackage(ctx, sess.Credential(), registry.PackageUpload{Name: "helpers"})
	require.NoError(t, err)

	err = m.Destroy(ctx)
	require.Error(t, err)
	e, ok := registry.AsError(err)
	require.True(t, ok)
	assert.Equal(t, registry.KindResourceConflict, e.Kind)
	assert.Equal(t, 2, e.Resources)
	assert.Contains(t, e.Message, "due to 2 linked resources from registry")

	// The account is untouched by the refused destroy.
	_, err = m.Show(ctx, false)
	require.NoError(t, err)

	require.NoError(t, fake.UnpublishPackage(ctx, sess.Credential(), "toolkit"))
	require.NoError(t, fake.UnpublishPackage(ctx, sess.Credential(), "helpers"))

	require.NoError(t, m.Destroy(ctx))

	// Destroy clears the local session with the account.
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	_, err = m.Login(ctx, "alice", "s3cretpass")
	require.Error(t, err)
}

func TestDestroyRequiresSession(t *testing.T) {
	_, _, m := newTestManager(t)

	err := m.Destroy(context.Background())
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindAuthentication))
}
