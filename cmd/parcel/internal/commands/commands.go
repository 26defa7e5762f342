// Package commands maps the account, organization, team, and package
// managers onto the parcel command surface.
package commands

import (
	"io"
	"os"

	"github.com/parcelreg/parcel/internal/account"
	"github.com/parcelreg/parcel/internal/client"
	"github.com/parcelreg/parcel/internal/org"
	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/session"
	"github.com/parcelreg/parcel/internal/team"
)

// Globals carries the root flags shared by every command.
type Globals struct {
	Debug      bool
	JSONOutput bool
	Registry   string
	Profile    string
	ConfigDir  string
	Version    string

	// Test seams; nil means the real thing.
	authority registry.Authority
	stdin     io.Reader
	stdout    io.Writer
}

// App bundles the wired managers for one invocation.
type App struct {
	Accounts  *account.Manager
	Orgs      *org.Manager
	Teams     *team.Manager
	Authority registry.Authority
	Store     *session.Store
}

// App wires managers from config, flags, and the session store.
func (g *Globals) App() (*App, error) {
	cfg, err := session.LoadConfig(g.ConfigDir)
	if err != nil {
		return nil, err
	}

	registryURL := cfg.RegistryURL
	if g.Registry != "" {
		registryURL = g.Registry
	}
	profile := cfg.Profile
	if g.Profile != "" {
		profile = g.Profile
	}

	store, err := session.NewStore(g.ConfigDir, profile)
	if err != nil {
		return nil, err
	}

	authority := g.authority
	if authority == nil {
		authority = client.New(client.DefaultConfig(registryURL))
	}

	return &App{
		Accounts:  account.NewManager(authority, store),
		Orgs:      org.NewManager(authority, store),
		Teams:     team.NewManager(authority, store),
		Authority: authority,
		Store:     store,
	}, nil
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

func (g *Globals) in() io.Reader {
	if g.stdin != nil {
		return g.stdin
	}
	return os.Stdin
}
