package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf(t *testing.T) {
	assert := assert.New(t)

	err := Errorf(KindNotFound, "organization %s not found", "acme")
	assert.Equal("organization acme not found", err.Error())
	assert.Equal(KindNotFound, err.Kind)
	assert.Zero(err.Resources)
}

func TestConflictError(t *testing.T) {
	assert := assert.New(t)

	err := ConflictError(3, "account has %d linked resources in the registry", 3)
	assert.Equal(KindResourceConflict, err.Kind)
	assert.Equal(3, err.Resources)
}

func TestAsError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		e, ok := AsError(Errorf(KindValidation, "bad input"))
		require.True(t, ok)
		assert.Equal(t, KindValidation, e.Kind)
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to create organization: %w", Errorf(KindValidation, "bad input"))
		e, ok := AsError(wrapped)
		require.True(t, ok)
		assert.Equal(t, KindValidation, e.Kind)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := AsError(fmt.Errorf("boom"))
		assert.False(t, ok)
	})
}

func TestIsKind(t *testing.T) {
	assert := assert.New(t)

	err := Errorf(KindAuthentication, "invalid username or password")
	assert.True(IsKind(err, KindAuthentication))
	assert.False(IsKind(err, KindAuthorization))
	assert.False(IsKind(fmt.Errorf("boom"), KindTransport))
	assert.False(IsKind(nil, KindTransport))
}
