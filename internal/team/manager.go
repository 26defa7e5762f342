// Package team implements the team lifecycle inside an organization:
// creation, listing, member mutation with set semantics, renames, and
// destruction. Teams are addressed by a structured (org, team) key; the
// "org:team" string form is parsed at the command boundary only.
package team

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/session"
)

// Manager drives team operations against the authority.
type Manager struct {
	authority registry.Authority
	store     *session.Store
}

// NewManager creates a team manager.
func NewManager(authority registry.Authority, store *session.Store) *Manager {
	return &Manager{authority: authority, store: store}
}

// Create adds a team to an existing organization. The caller must be an org
// owner; the team name must be unique within the org.
func (m *Manager) Create(ctx context.Context, ref registry.TeamRef, description string) (*registry.Team, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	teamRec, err := m.authority.CreateTeam(ctx, sess.Credential(), ref, description)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("org", ref.Org).Str("team", teamRec.Name).Msg("team created")

	return teamRec, nil
}

// List returns the organization's teams in creation order. Member ordering
// within a team is not guaranteed.
func (m *Manager) List(ctx context.Context, orgname string) ([]registry.Team, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	if err := registry.ValidateName("orgname", orgname); err != nil {
		return nil, err
	}
	return m.authority.ListTeams(ctx, sess.Credential(), orgname)
}

// AddMember adds an account to the team. Membership is a set, so adding an
// existing member is a no-op.
func (m *Manager) AddMember(ctx context.Context, ref registry.TeamRef, username string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := registry.ValidateName("username", username); err != nil {
		return err
	}
	return m.authority.AddMember(ctx, sess.Credential(), ref, username)
}

// RemoveMember removes an account from the team. Removing an account that
// is not a member is a no-op, mirroring AddMember's set semantics; an
// unknown org, team, or account is still a NotFound error.
func (m *Manager) RemoveMember(ctx context.Context, ref registry.TeamRef, username string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := registry.ValidateName("username", username); err != nil {
		return err
	}
	return m.authority.RemoveMember(ctx, sess.Credential(), ref, username)
}

// Update renames a team within its organization or changes its description.
// Name uniqueness is re-checked by the authority.
func (m *Manager) Update(ctx context.Context, ref registry.TeamRef, upd registry.TeamUpdate) (*registry.Team, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if upd.Name != "" {
		if err := registry.ValidateName("teamname", upd.Name); err != nil {
			return nil, err
		}
	}
	return m.authority.UpdateTeam(ctx, sess.Credential(), ref, upd)
}

// Destroy removes a team. Requires org-owner privilege; teams are not
// referenced by packages, so no dependency guard applies.
func (m *Manager) Destroy(ctx context.Context, ref registry.TeamRef) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}
	return m.authority.DestroyTeam(ctx, sess.Credential(), ref)
}

func validateRef(ref registry.TeamRef) error {
	if err := registry.ValidateName("orgname", ref.Org); err != nil {
		return err
	}
	return registry.ValidateName("teamname", ref.Team)
}
