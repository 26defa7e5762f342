package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeamRef(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ref, err := ParseTeamRef("acme:core")
		require.NoError(t, err)
		assert.Equal(t, TeamRef{Org: "acme", Team: "core"}, ref)
		assert.Equal(t, "acme:core", ref.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "acme", ":core", "acme:", ":"} {
			_, err := ParseTeamRef(s)
			require.Error(t, err, s)
			assert.True(t, IsKind(err, KindValidation), s)
		}
	})

	t.Run("extra separator stays in team part", func(t *testing.T) {
		ref, err := ParseTeamRef("acme:core:extra")
		require.NoError(t, err)
		assert.Equal(t, "acme", ref.Org)
		assert.Equal(t, "core:extra", ref.Team)
	})
}
