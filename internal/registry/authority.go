package registry

import "context"

// Credential is the bearer token attached to authenticated calls. It is
// either a session token from a password login or a personal token issued by
// IssueToken; the two channels are independent.
type Credential string

// Registration carries the fields of a new account.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// ProfileUpdate mutates profile fields. Empty fields are left unchanged.
// CurrentPassword must re-prove the caller's password regardless of the
// credential in use.
type ProfileUpdate struct {
	CurrentPassword string `json:"current_password"`
	Username        string `json:"username,omitempty"`
	Email           string `json:"email,omitempty"`
	Firstname       string `json:"firstname,omitempty"`
	Lastname        string `json:"lastname,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// OrgSpec carries the fields of a new organization.
type OrgSpec struct {
	Orgname     string `json:"orgname"`
	Email       string `json:"email"`
	Displayname string `json:"displayname"`
}

// OrgUpdate renames an organization or changes its display fields. Empty
// fields are left unchanged.
type OrgUpdate struct {
	Orgname     string `json:"orgname,omitempty"`
	Email       string `json:"email,omitempty"`
	Displayname string `json:"displayname,omitempty"`
}

// TeamUpdate renames a team within its organization or changes its
// description. Empty fields are left unchanged.
type TeamUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// PackageUpload carries a package archive for publication. Org is empty for
// packages published under the caller's own account.
type PackageUpload struct {
	Name    string `json:"name"`
	Org     string `json:"org,omitempty"`
	Archive []byte `json:"archive"`
}

// Authority is the remote registry holding the canonical account, org, team,
// and package records. Implementations return *Error values so callers can
// branch on the failure kind; any other error is treated as transport-level.
//
// The authority's transactional guarantees are authoritative: local checks
// exist only to fail fast, and a remote rejection is surfaced as a normal
// error, never retried for non-idempotent operations.
type Authority interface {
	// Accounts and sessions.
	Register(ctx context.Context, reg Registration) (*Account, error)
	Verify(ctx context.Context, token string) (*Account, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Logout(ctx context.Context, cred Credential) error
	Show(ctx context.Context, cred Credential) (*AccountSummary, error)
	UpdateProfile(ctx context.Context, cred Credential, upd ProfileUpdate) (*Account, error)
	ChangePassword(ctx context.Context, cred Credential, oldPassword, newPassword string) error
	IssueToken(ctx context.Context, cred Credential, password string) (string, error)
	DestroyAccount(ctx context.Context, cred Credential) error

	// Organizations.
	CreateOrg(ctx context.Context, cred Credential, spec OrgSpec) (*Organization, error)
	ListOrgs(ctx context.Context, cred Credential) ([]Organization, error)
	GetOrg(ctx context.Context, cred Credential, orgname string) (*Organization, error)
	UpdateOrg(ctx context.Context, cred Credential, orgname string, upd OrgUpdate) (*Organization, error)
	DestroyOrg(ctx context.Context, cred Credential, orgname string) error
	AddOwner(ctx context.Context, cred Credential, orgname, username string) error
	RemoveOwner(ctx context.Context, cred Credential, orgname, username string) error

	// Teams.
	CreateTeam(ctx context.Context, cred Credential, ref TeamRef, description string) (*Team, error)
	ListTeams(ctx context.Context, cred Credential, orgname string) ([]Team, error)
	UpdateTeam(ctx context.Context, cred Credential, ref TeamRef, upd TeamUpdate) (*Team, error)
	DestroyTeam(ctx context.Context, cred Credential, ref TeamRef) error
	AddMember(ctx context.Context, cred Credential, ref TeamRef, username string) error
	RemoveMember(ctx context.Context, cred Credential, ref TeamRef, username string) error

	// Packages and the dependency lookup backing the destroy guard.
	PublishPackage(ctx context.Context, cred Credential, pkg PackageUpload) (*Package, error)
	UnpublishPackage(ctx context.Context, cred Credential, name string) error
	LinkedResources(ctx context.Context, cred Credential, owner ResourceOwner) ([]LinkedResource, error)
}
