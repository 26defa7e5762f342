package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/registrytest"
	"github.com/parcelreg/parcel/internal/session"
)

type testEnv struct {
	fake    *registrytest.Fake
	globals *Globals
	stdout  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(session.TokenEnv, "")

	stdout := &bytes.Buffer{}
	fake := registrytest.New()
	return &testEnv{
		fake:   fake,
		stdout: stdout,
		globals: &Globals{
			ConfigDir: t.TempDir(),
			authority: fake,
			stdout:    stdout,
			stdin:     strings.NewReader(""),
		},
	}
}

func (e *testEnv) output() string {
	out := e.stdout.String()
	e.stdout.Reset()
	return out
}

func (e *testEnv) lastJSON(t *testing.T) map[string]any {
	t.Helper()

	var v map[string]any
	require.NoError(t, json.Unmarshal(e.stdout.Bytes(), &v))
	e.stdout.Reset()
	return v
}

func (e *testEnv) login(t *testing.T, username string) {
	t.Helper()
	ctx := context.Background()

	register := &AccountRegisterCmd{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cretpass",
		Firstname: "Test",
		Lastname:  "User",
	}
	require.NoError(t, register.Run(ctx, e.globals))

	verify := &AccountVerifyCmd{Token: e.fake.VerificationToken(username)}
	require.NoError(t, verify.Run(ctx, e.globals))

	login := &AccountLoginCmd{Username: username, Password: "s3cretpass"}
	require.NoError(t, login.Run(ctx, e.globals))

	e.stdout.Reset()
}

func TestAccountLifecycleCommands(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	register := &AccountRegisterCmd{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cretpass",
		Firstname: "Alice",
		Lastname:  "Smith",
	}
	require.NoError(t, register.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Please check your mail to activate your account.")

	login := &AccountLoginCmd{Username: "alice", Password: "s3cretpass"}
	require.Error(t, login.Run(ctx, env.globals), "login before verification must fail")

	verify := &AccountVerifyCmd{Token: env.fake.VerificationToken("alice")}
	require.NoError(t, verify.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Your account has been verified!")

	require.NoError(t, login.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Successfully logged in!")

	show := &AccountShowCmd{}
	require.NoError(t, show.Run(ctx, env.globals))
	out := env.output()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "alice@example.com")

	logout := &AccountLogoutCmd{}
	require.NoError(t, logout.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Successfully logged out!")

	// A live show after logout is refused.
	require.Error(t, show.Run(ctx, env.globals))
}

func TestAccountShowJSON(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	env.globals.JSONOutput = true
	ctx := context.Background()

	t.Run("offline before a live show omits user_id", func(t *testing.T) {
		show := &AccountShowCmd{Offline: true}
		require.NoError(t, show.Run(ctx, env.globals))
		v := env.lastJSON(t)
		assert.NotContains(t, v, "user_id")
		assert.Nil(t, v["subscriptions"])
	})

	t.Run("live show has user_id and empty collections", func(t *testing.T) {
		show := &AccountShowCmd{}
		require.NoError(t, show.Run(ctx, env.globals))
		v := env.lastJSON(t)
		assert.NotEmpty(t, v["user_id"])
		assert.NotNil(t, v["subscriptions"])
	})

	t.Run("offline after live show keeps cached user_id", func(t *testing.T) {
		show := &AccountShowCmd{Offline: true}
		require.NoError(t, show.Run(ctx, env.globals))
		v := env.lastJSON(t)
		assert.NotEmpty(t, v["user_id"])
	})
}

func TestAccountTokenCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	ctx := context.Background()

	token := &AccountTokenCmd{Password: "s3cretpass"}
	require.NoError(t, token.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Personal Authentication Token: ")

	env.globals.JSONOutput = true
	require.NoError(t, token.Run(ctx, env.globals))
	v := env.lastJSON(t)
	assert.Equal(t, "success", v["status"])
	assert.NotEmpty(t, v["result"])
}

func TestAccountPasswordCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	ctx := context.Background()

	password := &AccountPasswordCmd{OldPassword: "s3cretpass", NewPassword: "newpass99"}
	require.NoError(t, password.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Password successfully changed!")
}

func TestAccountUpdateCommand(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	ctx := context.Background()

	t.Run("plain update", func(t *testing.T) {
		update := &AccountUpdateCmd{CurrentPassword: "s3cretpass", Firstname: "Alicia"}
		require.NoError(t, update.Run(ctx, env.globals))
		out := env.output()
		assert.Contains(t, out, "Profile successfully updated!")
		assert.NotContains(t, out, "re-login")
	})

	t.Run("email change asks for re-verification", func(t *testing.T) {
		update := &AccountUpdateCmd{CurrentPassword: "s3cretpass", Email: "alice@new.example.com"}
		require.NoError(t, update.Run(ctx, env.globals))
		assert.Contains(t, env.output(), "Please check your mail to verify your new email address and re-login.")

		// The invalidated session refuses further authenticated commands.
		show := &AccountShowCmd{}
		require.Error(t, show.Run(ctx, env.globals))
	})
}

func TestAccountDestroyCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("declined confirmation aborts", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t, "alice")
		env.globals.stdin = strings.NewReader("n\n")

		destroy := &AccountDestroyCmd{}
		require.NoError(t, destroy.Run(ctx, env.globals))
		assert.Contains(t, env.output(), "Aborted.")

		// The account is untouched.
		show := &AccountShowCmd{}
		require.NoError(t, show.Run(ctx, env.globals))
	})

	t.Run("confirmed destroy", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t, "alice")
		env.globals.stdin = strings.NewReader("y\n")

		destroy := &AccountDestroyCmd{}
		require.NoError(t, destroy.Run(ctx, env.globals))
		assert.Contains(t, env.output(), "Account has been destroyed.")

		login := &AccountLoginCmd{Username: "alice", Password: "s3cretpass"}
		require.Error(t, login.Run(ctx, env.globals))
	})

	t.Run("blocked by linked resources", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t, "alice")

		app, err := env.globals.App()
		require.NoError(t, err)
		sess, err := app.Store.Require()
		require.NoError(t, err)
		_, err = env.fake.PublishPackage(ctx, sess.Credential(), registry.PackageUpload{Name: "toolkit"})
		require.NoError(t, err)

		destroy := &AccountDestroyCmd{Force: true}
		err = destroy.Run(ctx, env.globals)
		require.Error(t, err)
		e, ok := registry.AsError(err)
		require.True(t, ok)
		assert.Equal(t, registry.KindResourceConflict, e.Kind)
		assert.Equal(t, 1, e.Resources)
	})
}

func TestOrgCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	ctx := context.Background()

	create := &OrgCreateCmd{Orgname: "acme", Email: "contact@acme.example.com", Displayname: "Acme Corp"}
	require.NoError(t, create.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "The acme organization has been successfully created.")

	list := &OrgListCmd{}
	require.NoError(t, list.Run(ctx, env.globals))
	out := env.output()
	assert.Contains(t, out, "ORGNAME")
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "Acme Corp")

	t.Run("json list", func(t *testing.T) {
		env.globals.JSONOutput = true
		defer func() { env.globals.JSONOutput = false }()

		require.NoError(t, list.Run(ctx, env.globals))
		var orgs []registry.Organization
		require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &orgs))
		env.stdout.Reset()
		require.Len(t, orgs, 1)
		assert.Equal(t, "acme", orgs[0].Orgname)
		require.Len(t, orgs[0].Owners, 1)
		assert.Equal(t, "alice", orgs[0].Owners[0].Username)
	})

	update := &OrgUpdateCmd{Orgname: "acme", Displayname: "Acme Incorporated"}
	require.NoError(t, update.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "successfully updated")

	destroy := &OrgDestroyCmd{Orgname: "acme", Force: true}
	require.NoError(t, destroy.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Organization acme has been destroyed.")
}

func TestOrgOwnerCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "bob")
	env.login(t, "alice")
	ctx := context.Background()

	create := &OrgCreateCmd{Orgname: "acme", Email: "contact@acme.example.com"}
	require.NoError(t, create.Run(ctx, env.globals))
	env.stdout.Reset()

	add := &OrgAddCmd{Orgname: "acme", Username: "bob"}
	require.NoError(t, add.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "The bob owner has been successfully added to the acme organization.")

	remove := &OrgRemoveCmd{Orgname: "acme", Username: "bob"}
	require.NoError(t, remove.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "The bob owner has been successfully removed from the acme organization.")

	// Alice is now the last owner.
	removeAlice := &OrgRemoveCmd{Orgname: "acme", Username: "alice"}
	err := removeAlice.Run(ctx, env.globals)
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindInvariantViolation))
}

func TestTeamCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "bob")
	env.login(t, "alice")
	ctx := context.Background()

	orgCreate := &OrgCreateCmd{Orgname: "acme", Email: "contact@acme.example.com"}
	require.NoError(t, orgCreate.Run(ctx, env.globals))
	env.stdout.Reset()

	create := &TeamCreateCmd{Team: "acme:core", Description: "Core maintainers"}
	require.NoError(t, create.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "The acme:core team has been successfully created.")

	add := &TeamAddCmd{Team: "acme:core", Username: "bob"}
	require.NoError(t, add.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "The bob member has been successfully added to the acme:core team.")

	list := &TeamListCmd{Orgname: "acme"}
	require.NoError(t, list.Run(ctx, env.globals))
	out := env.output()
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "Core maintainers")
	assert.Contains(t, out, "bob")

	remove := &TeamRemoveCmd{Team: "acme:core", Username: "bob"}
	require.NoError(t, remove.Run(ctx, env.globals))
	env.stdout.Reset()

	update := &TeamUpdateCmd{Team: "acme:core", Name: "maintainers"}
	require.NoError(t, update.Run(ctx, env.globals))
	env.stdout.Reset()

	destroy := &TeamDestroyCmd{Team: "acme:maintainers", Force: true}
	require.NoError(t, destroy.Run(ctx, env.globals))
	assert.Contains(t, env.output(), "Team acme:maintainers has been destroyed.")
}

func TestTeamRefParsedAtBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	ctx := context.Background()

	create := &TeamCreateCmd{Team: "no-separator"}
	err := create.Run(ctx, env.globals)
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindValidation))

	add := &TeamAddCmd{Team: ":core", Username: "alice"}
	err = add.Run(ctx, env.globals)
	require.Error(t, err)
	assert.True(t, registry.IsKind(err, registry.KindValidation))
}

func TestSuccessEnvelope(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")
	env.globals.JSONOutput = true
	ctx := context.Background()

	logout := &AccountLogoutCmd{}
	require.NoError(t, logout.Run(ctx, env.globals))
	v := env.lastJSON(t)
	assert.Equal(t, "success", v["status"])
	assert.Equal(t, "Successfully logged out!", v["message"])
}
