// Package guard queries the linked resources of an account or organization
// before a destructive operation. A destroy proceeds only when the entity has
// no linked resources; otherwise the caller surfaces the count and aborts
// with no partial state change.
package guard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/registry"
)

// Guard performs the dependency lookup backing destructive operations.
type Guard struct {
	authority registry.Authority
}

// New creates a guard over the given authority.
func New(authority registry.Authority) *Guard {
	return &Guard{authority: authority}
}

// Check returns the linked resources still referencing the owner. An empty
// result means destruction may proceed.
func (g *Guard) Check(ctx context.Context, cred registry.Credential, owner registry.ResourceOwner) ([]registry.LinkedResource, error) {
	resources, err := g.authority.LinkedResources(ctx, cred, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked resources: %w", err)
	}

	log.Debug().
		Str("account", owner.Account).
		Str("org", owner.Org).
		Int("linked", len(resources)).
		Msg("dependency check")

	return resources, nil
}
