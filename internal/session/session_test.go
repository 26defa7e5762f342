package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expires time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestSessionExpired(t *testing.T) {
	t.Run("valid jwt", func(t *testing.T) {
		sess := &Session{Token: signedToken(t, time.Now().Add(time.Hour))}
		assert.False(t, sess.Expired())
		assert.True(t, sess.Authenticated())
	})

	t.Run("expired jwt", func(t *testing.T) {
		sess := &Session{Token: signedToken(t, time.Now().Add(-time.Hour))}
		assert.True(t, sess.Expired())
		assert.False(t, sess.Authenticated())
	})

	t.Run("opaque personal token never expires locally", func(t *testing.T) {
		sess := &Session{Token: "pat-opaque-token", Method: MethodToken}
		assert.False(t, sess.Expired())
		assert.True(t, sess.Authenticated())
	})

	t.Run("nil session", func(t *testing.T) {
		var sess *Session
		assert.False(t, sess.Expired())
		assert.False(t, sess.Authenticated())
	})
}

func TestSessionFingerprint(t *testing.T) {
	assert := assert.New(t)

	sess := &Session{Token: "pat-opaque-token"}
	fp := sess.Fingerprint()
	assert.Len(fp, 12)
	assert.NotContains(fp, "pat")

	// Stable for the same token, distinct for different ones.
	assert.Equal(fp, (&Session{Token: "pat-opaque-token"}).Fingerprint())
	assert.NotEqual(fp, (&Session{Token: "pat-other-token"}).Fingerprint())

	assert.Empty((&Session{}).Fingerprint())
}

func TestSessionCredential(t *testing.T) {
	assert := assert.New(t)

	var sess *Session
	assert.Empty(sess.Credential())

	sess = &Session{Token: "pat-opaque-token"}
	assert.EqualValues("pat-opaque-token", sess.Credential())
}
