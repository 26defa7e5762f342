package registry

import (
	"fmt"
	"strings"
)

// Profile holds the mutable identity fields of an account.
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Account is the authority's record of a registered user.
type Account struct {
	UserID   string  `json:"user_id"`
	Profile  Profile `json:"profile"`
	Verified bool    `json:"verified"`
}

// Package is a published registry package attributed to an account or
// organization.
type Package struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Subscription describes a paid plan attached to an account.
type Subscription struct {
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

// AccountSummary is the payload of an account show. The offline variant
// carries only cached profile fields; the live variant adds the user ID,
// owned packages, and subscriptions as reported by the authority.
type AccountSummary struct {
	UserID        string         `json:"user_id,omitempty"`
	Profile       Profile        `json:"profile"`
	Packages      []Package      `json:"packages,omitempty"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// Member identifies an account inside an owner or member list.
type Member struct {
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Organization groups accounts under a shared namespace. The owner list is
// ordered and never empty.
type Organization struct {
	Orgname     string   `json:"orgname"`
	Displayname string   `json:"displayname"`
	Email       string   `json:"email"`
	Owners      []Member `json:"owners"`
}

// Team is a named subset of accounts within an organization. Membership is a
// set; the authority does not guarantee member ordering.
type Team struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []Member `json:"members"`
}

// TeamRef addresses a team by its composite key. The "org:team" string form
// exists only at the command boundary; everything below it works with this
// struct.
type TeamRef struct {
	Org  string
	Team string
}

// ParseTeamRef parses the "org:team" form used on the command line.
func ParseTeamRef(s string) (TeamRef, error) {
	org, team, ok := strings.Cut(s, ":")
	if !ok || org == "" || team == "" {
		return TeamRef{}, Errorf(KindValidation, "invalid team %q, expected the orgname:teamname format", s)
	}
	return TeamRef{Org: org, Team: team}, nil
}

func (r TeamRef) String() string {
	return fmt.Sprintf("%s:%s", r.Org, r.Team)
}

// LinkedResource is a registry object whose existence blocks destruction of
// its owning account or organization.
type LinkedResource struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ResourceOwner identifies the entity whose linked resources are being
// queried. Exactly one field is set.
type ResourceOwner struct {
	Account string `json:"account,omitempty"`
	Org     string `json:"org,omitempty"`
}
