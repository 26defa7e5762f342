// Package org implements the organization lifecycle: creation, listing,
// owner mutation under the at-least-one-owner invariant, renames, and
// guarded destruction.
package org

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/guard"
	"github.com/parcelreg/parcel/internal/registry"
	"github.com/parcelreg/parcel/internal/session"
)

// Manager drives organization operations against the authority.
type Manager struct {
	authority registry.Authority
	store     *session.Store
	guard     *guard.Guard
}

// NewManager creates an organization manager.
func NewManager(authority registry.Authority, store *session.Store) *Manager {
	return &Manager{
		authority: authority,
		store:     store,
		guard:     guard.New(authority),
	}
}

// Create registers a new organization. The authenticated caller becomes its
// sole initial owner.
func (m *Manager) Create(ctx context.Context, spec registry.OrgSpec) (*registry.Organization, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	if err := registry.ValidateName("orgname", spec.Orgname); err != nil {
		return nil, err
	}
	if err := registry.ValidateEmail(spec.Email); err != nil {
		return nil, err
	}

	orgRec, err := m.authority.CreateOrg(ctx, sess.Credential(), spec)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("orgname", orgRec.Orgname).Msg("organization created")

	return orgRec, nil
}

// List returns the organizations the caller owns, in creation order.
func (m *Manager) List(ctx context.Context) ([]registry.Organization, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	return m.authority.ListOrgs(ctx, sess.Credential())
}

// AddOwner appends an account to the owner list. Adding an existing owner is
// a no-op on the authority side.
func (m *Manager) AddOwner(ctx context.Context, orgname, username string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := registry.ValidateName("orgname", orgname); err != nil {
		return err
	}
	if err := registry.ValidateName("username", username); err != nil {
		return err
	}
	return m.authority.AddOwner(ctx, sess.Credential(), orgname, username)
}

// RemoveOwner removes an account from the owner list. Removing the last
// owner is refused locally before the authority is consulted; removing a
// non-owner is a NotFound error, so a typo never passes silently.
func (m *Manager) RemoveOwner(ctx context.Context, orgname, username string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := registry.ValidateName("orgname", orgname); err != nil {
		return err
	}
	if err := registry.ValidateName("username", username); err != nil {
		return err
	}

	orgRec, err := m.authority.GetOrg(ctx, sess.Credential(), orgname)
	if err != nil {
		return err
	}

	found := false
	for _, owner := range orgRec.Owners {
		if owner.Username == username {
			found = true
			break
		}
	}
	if !found {
		return registry.Errorf(registry.KindNotFound, "%s is not an owner of the %s organization", username, orgname)
	}
	if len(orgRec.Owners) == 1 {
		return registry.Errorf(registry.KindInvariantViolation,
			"can not remove %s, the %s organization must keep at least one owner", username, orgname)
	}

	return m.authority.RemoveOwner(ctx, sess.Credential(), orgname, username)
}

// Update renames an organization or changes its display fields. Uniqueness
// of a new orgname is enforced by the authority; a lost-update rejection on
// concurrent renames surfaces as a normal error.
func (m *Manager) Update(ctx context.Context, orgname string, upd registry.OrgUpdate) (*registry.Organization, error) {
	sess, err := m.store.Require()
	if err != nil {
		return nil, err
	}
	if err := registry.ValidateName("orgname", orgname); err != nil {
		return nil, err
	}
	if upd.Orgname != "" {
		if err := registry.ValidateName("orgname", upd.Orgname); err != nil {
			return nil, err
		}
	}
	if upd.Email != "" {
		if err := registry.ValidateEmail(upd.Email); err != nil {
			return nil, err
		}
	}
	return m.authority.UpdateOrg(ctx, sess.Credential(), orgname, upd)
}

// Destroy removes an organization. The caller must be an owner, and the
// dependency guard refuses the destroy with the blocking count while any
// org-scoped linked resource remains.
func (m *Manager) Destroy(ctx context.Context, orgname string) error {
	sess, err := m.store.Require()
	if err != nil {
		return err
	}
	if err := registry.ValidateName("orgname", orgname); err != nil {
		return err
	}

	orgRec, err := m.authority.GetOrg(ctx, sess.Credential(), orgname)
	if err != nil {
		return err
	}
	if sess.Username != "" {
		owner := false
		for _, o := range orgRec.Owners {
			if o.Username == sess.Username {
				owner = true
				break
			}
		}
		if !owner {
			return registry.Errorf(registry.KindAuthorization,
				"only owners of the %s organization can destroy it", orgname)
		}
	}

	resources, err := m.guard.Check(ctx, sess.Credential(), registry.ResourceOwner{Org: orgname})
	if err != nil {
		return err
	}
	if n := len(resources); n > 0 {
		return registry.ConflictError(n,
			"we can not destroy the %s organization due to %d linked resources from registry", orgname, n)
	}

	return m.authority.DestroyOrg(ctx, sess.Credential(), orgname)
}
