// Package registrytest provides an in-memory authority for tests. It
// enforces the same rules the real registry does (uniqueness, verification
// state, the last-owner invariant, linked-resource blocking) so manager and
// command tests can exercise full lifecycles without a network.
package registrytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/parcelreg/parcel/internal/registry"
)

type accountRecord struct {
	id       string
	profile  registry.Profile
	password string
	verified bool
}

type teamRecord struct {
	id          string
	name        string
	description string
	members     []*accountRecord
}

type orgRecord struct {
	orgname     string
	displayname string
	email       string
	owners      []*accountRecord
	teamOrder   []string
	teams       map[string]*teamRecord
}

type packageRecord struct {
	name    string
	account string
	org     string
}

// Fake is an in-memory registry.Authority.
type Fake struct {
	mu            sync.Mutex
	signingKey    []byte
	accounts      map[string]*accountRecord // by username
	orgs          map[string]*orgRecord
	orgOrder      []string
	sessions      map[string]*accountRecord
	tokens        map[string]*accountRecord
	verifications map[string]*accountRecord
	packages      []*packageRecord
}

var _ registry.Authority = (*Fake)(nil)

// New creates an empty fake authority.
func New() *Fake {
	return &Fake{
		signingKey:    []byte("registrytest-signing-key"),
		accounts:      make(map[string]*accountRecord),
		orgs:          make(map[string]*orgRecord),
		sessions:      make(map[string]*accountRecord),
		tokens:        make(map[string]*accountRecord),
		verifications: make(map[string]*accountRecord),
	}
}

// VerificationToken returns the pending confirmation token for a username,
// standing in for the email channel a real deployment delivers it through.
func (f *Fake) VerificationToken(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for token, acc := range f.verifications {
		if acc.profile.Username == username {
			return token
		}
	}
	return ""
}

func errNotAuthorized() error {
	return registry.Errorf(registry.KindAuthentication, "you are not authorized, please log in to your registry account first")
}

// caller resolves a credential to an account. Both session tokens and
// personal tokens are accepted; the two channels are revoked independently.
func (f *Fake) caller(cred registry.Credential) (*accountRecord, error) {
	if acc, ok := f.sessions[string(cred)]; ok {
		return acc, nil
	}
	if acc, ok := f.tokens[string(cred)]; ok {
		return acc, nil
	}
	return nil, errNotAuthorized()
}

func (f *Fake) findByIdentifier(identifier string) *accountRecord {
	if acc, ok := f.accounts[identifier]; ok {
		return acc
	}
	for _, acc := range f.accounts {
		if acc.profile.Email == identifier {
			return acc
		}
	}
	return nil
}

func (f *Fake) mintSessionToken(acc *accountRecord) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "parcel-registry",
		Subject:   acc.profile.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	f.sessions[token] = acc
	return token, nil
}

func (f *Fake) account(acc *accountRecord) *registry.Account {
	return &registry.Account{
		UserID:   acc.id,
		Profile:  acc.profile,
		Verified: acc.verified,
	}
}

func member(acc *accountRecord) registry.Member {
	return registry.Member{
		Username:  acc.profile.Username,
		Firstname: acc.profile.Firstname,
		Lastname:  acc.profile.Lastname,
	}
}

// Register creates an unverified account and queues a confirmation token in
// place of the verification email.
func (f *Fake) Register(_ context.Context, reg registry.Registration) (*registry.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[reg.Username]; ok {
		return nil, registry.Errorf(registry.KindValidation, "username %s is already taken", reg.Username)
	}
	for _, acc := range f.accounts {
		if acc.profile.Email == reg.Email {
			return nil, registry.Errorf(registry.KindValidation, "email %s is already registered", reg.Email)
		}
	}

	acc := &accountRecord{
		id: uuid.NewString(),
		profile: registry.Profile{
			Username:  reg.Username,
			Email:     reg.Email,
			Firstname: reg.Firstname,
			Lastname:  reg.Lastname,
		},
		password: reg.Password,
	}
	f.accounts[reg.Username] = acc
	f.verifications[uuid.NewString()] = acc

	return f.account(acc), nil
}

// Verify flips an account to verified and consumes the token.
func (f *Fake) Verify(_ context.Context, token string) (*registry.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.verifications[token]
	if !ok {
		return nil, registry.Errorf(registry.KindNotFound, "unknown or expired verification token")
	}
	delete(f.verifications, token)
	acc.verified = true

	return f.account(acc), nil
}

// Login authenticates by username or email. Only verified accounts may log
// in.
func (f *Fake) Login(_ context.Context, identifier, password string) (*registry.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc := f.findByIdentifier(identifier)
	if acc == nil || acc.password != password {
		return nil, registry.Errorf(registry.KindAuthentication, "invalid username or password")
	}
	if !acc.verified {
		return nil, registry.Errorf(registry.KindAuthentication, "account is not verified, please confirm your email address first")
	}

	token, err := f.mintSessionToken(acc)
	if err != nil {
		return nil, err
	}

	return &registry.LoginResult{Token: token, Account: *f.account(acc)}, nil
}

// Logout revokes a session token. Personal tokens are unaffected.
func (f *Fake) Logout(_ context.Context, cred registry.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.sessions[string(cred)]; !ok {
		return errNotAuthorized()
	}
	delete(f.sessions, string(cred))
	return nil
}

// Show returns the live summary with owned packages and subscriptions.
func (f *Fake) Show(_ context.Context, cred registry.Credential) (*registry.AccountSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}

	packages := []registry.Package{}
	for _, pkg := range f.packages {
		if pkg.account == acc.profile.Username {
			packages = append(packages, registry.Package{
				Name: pkg.name,
				Path: pkg.account + "/" + pkg.name,
			})
		}
	}

	return &registry.AccountSummary{
		UserID:        acc.id,
		Profile:       acc.profile,
		Packages:      packages,
		Subscriptions: []registry.Subscription{},
	}, nil
}

// UpdateProfile mutates profile fields after re-proving the password. An
// email change drops the account to unverified, queues a fresh confirmation
// token, and revokes every session token; personal tokens survive.
func (f *Fake) UpdateProfile(_ context.Context, cred registry.Credential, upd registry.ProfileUpdate) (*registry.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	if upd.CurrentPassword != acc.password {
		return nil, registry.Errorf(registry.KindAuthentication, "invalid password")
	}

	if upd.Username != "" && upd.Username != acc.profile.Username {
		if _, ok := f.accounts[upd.Username]; ok {
			return nil, registry.Errorf(registry.KindValidation, "username %s is already taken", upd.Username)
		}
		delete(f.accounts, acc.profile.Username)
		acc.profile.Username = upd.Username
		f.accounts[upd.Username] = acc
	}
	if upd.Firstname != "" {
		acc.profile.Firstname = upd.Firstname
	}
	if upd.Lastname != "" {
		acc.profile.Lastname = upd.Lastname
	}
	if upd.Email != "" && upd.Email != acc.profile.Email {
		for _, other := range f.accounts {
			if other != acc && other.profile.Email == upd.Email {
				return nil, registry.Errorf(registry.KindValidation, "email %s is already registered", upd.Email)
			}
		}
		acc.profile.Email = upd.Email
		acc.verified = false
		f.verifications[uuid.NewString()] = acc
		for token, owner := range f.sessions {
			if owner == acc {
				delete(f.sessions, token)
			}
		}
	}

	return f.account(acc), nil
}

// ChangePassword replaces the password. Sessions and tokens stay valid.
func (f *Fake) ChangePassword(_ context.Context, cred registry.Credential, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return err
	}
	if oldPassword != acc.password {
		return registry.Errorf(registry.KindAuthentication, "invalid old password")
	}
	acc.password = newPassword
	return nil
}

// IssueToken mints a personal token. Previously issued tokens stay valid.
func (f *Fake) IssueToken(_ context.Context, cred registry.Credential, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return "", err
	}
	if password != acc.password {
		return "", registry.Errorf(registry.KindAuthentication, "invalid password")
	}

	token := "pat-" + uuid.NewString()
	f.tokens[token] = acc
	return token, nil
}

// DestroyAccount removes the calling account, its sessions, and its tokens.
// The destroy is refused while packages are still attributed to the account.
// If the account was the sole owner of an organization, the organization is
// removed with it.
func (f *Fake) DestroyAccount(_ context.Context, cred registry.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return err
	}

	n := 0
	for _, pkg := range f.packages {
		if pkg.account == acc.profile.Username {
			n++
		}
	}
	if n > 0 {
		return registry.ConflictError(n, "account has %d linked resources in the registry", n)
	}

	for token, owner := range f.sessions {
		if owner == acc {
			delete(f.sessions, token)
		}
	}
	for token, owner := range f.tokens {
		if owner == acc {
			delete(f.tokens, token)
		}
	}
	for token, owner := range f.verifications {
		if owner == acc {
			delete(f.verifications, token)
		}
	}

	for _, orgname := range append([]string(nil), f.orgOrder...) {
		org := f.orgs[orgname]
		org.owners = removeAccount(org.owners, acc)
		for _, team := range org.teams {
			team.members = removeAccount(team.members, acc)
		}
		if len(org.owners) == 0 {
			f.removeOrg(orgname)
		}
	}

	delete(f.accounts, acc.profile.Username)
	return nil
}

func removeAccount(list []*accountRecord, acc *accountRecord) []*accountRecord {
	out := list[:0]
	for _, a := range list {
		if a != acc {
			out = append(out, a)
		}
	}
	return out
}

func (f *Fake) removeOrg(orgname string) {
	delete(f.orgs, orgname)
	for i, name := range f.orgOrder {
		if name == orgname {
			f.orgOrder = append(f.orgOrder[:i], f.orgOrder[i+1:]...)
			break
		}
	}
}

func (f *Fake) organization(org *orgRecord) *registry.Organization {
	owners := make([]registry.Member, 0, len(org.owners))
	for _, acc := range org.owners {
		owners = append(owners, member(acc))
	}
	return &registry.Organization{
		Orgname:     org.orgname,
		Displayname: org.displayname,
		Email:       org.email,
		Owners:      owners,
	}
}

func (f *Fake) team(t *teamRecord) *registry.Team {
	members := make([]registry.Member, 0, len(t.members))
	for _, acc := range t.members {
		members = append(members, member(acc))
	}
	return &registry.Team{
		ID:          t.id,
		Name:        t.name,
		Description: t.description,
		Members:     members,
	}
}

func (f *Fake) isOwner(org *orgRecord, acc *accountRecord) bool {
	for _, owner := range org.owners {
		if owner == acc {
			return true
		}
	}
	return false
}

// CreateOrg registers an organization with the caller as sole owner.
func (f *Fake) CreateOrg(_ context.Context, cred registry.Credential, spec registry.OrgSpec) (*registry.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	if _, ok := f.orgs[spec.Orgname]; ok {
		return nil, registry.Errorf(registry.KindValidation, "organization %s already exists", spec.Orgname)
	}

	org := &orgRecord{
		orgname:     spec.Orgname,
		displayname: spec.Displayname,
		email:       spec.Email,
		owners:      []*accountRecord{acc},
		teams:       make(map[string]*teamRecord),
	}
	f.orgs[spec.Orgname] = org
	f.orgOrder = append(f.orgOrder, spec.Orgname)

	return f.organization(org), nil
}

// ListOrgs returns the organizations the caller owns, oldest first.
func (f *Fake) ListOrgs(_ context.Context, cred registry.Credential) ([]registry.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}

	orgs := []registry.Organization{}
	for _, orgname := range f.orgOrder {
		org := f.orgs[orgname]
		if f.isOwner(org, acc) {
			orgs = append(orgs, *f.organization(org))
		}
	}
	return orgs, nil
}

// GetOrg returns one organization.
func (f *Fake) GetOrg(_ context.Context, cred registry.Credential, orgname string) (*registry.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.caller(cred); err != nil {
		return nil, err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return nil, registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}
	return f.organization(org), nil
}

// UpdateOrg renames an organization or changes its display fields.
func (f *Fake) UpdateOrg(_ context.Context, cred registry.Credential, orgname string, upd registry.OrgUpdate) (*registry.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return nil, registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}
	if !f.isOwner(org, acc) {
		return nil, registry.Errorf(registry.KindAuthorization, "only owners can update the %s organization", orgname)
	}

	if upd.Orgname != "" && upd.Orgname != orgname {
		if _, ok := f.orgs[upd.Orgname]; ok {
			return nil, registry.Errorf(registry.KindValidation, "organization %s already exists", upd.Orgname)
		}
		delete(f.orgs, orgname)
		f.orgs[upd.Orgname] = org
		org.orgname = upd.Orgname
		for i, name := range f.orgOrder {
			if name == orgname {
				f.orgOrder[i] = upd.Orgname
			}
		}
		for _, pkg := range f.packages {
			if pkg.org == orgname {
				pkg.org = upd.Orgname
			}
		}
	}
	if upd.Displayname != "" {
		org.displayname = upd.Displayname
	}
	if upd.Email != "" {
		org.email = upd.Email
	}

	return f.organization(org), nil
}

// DestroyOrg removes an organization and its teams. Owner-only, and refused
// while org-scoped packages remain.
func (f *Fake) DestroyOrg(_ context.Context, cred registry.Credential, orgname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}
	if !f.isOwner(org, acc) {
		return registry.Errorf(registry.KindAuthorization, "only owners can destroy the %s organization", orgname)
	}

	n := 0
	for _, pkg := range f.packages {
		if pkg.org == orgname {
			n++
		}
	}
	if n > 0 {
		return registry.ConflictError(n, "organization has %d linked resources in the registry", n)
	}

	f.removeOrg(orgname)
	return nil
}

// AddOwner appends an account to the owner list; adding an existing owner is
// a no-op.
func (f *Fake) AddOwner(_ context.Context, cred registry.Credential, orgname, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	caller, err := f.caller(cred)
	if err != nil {
		return err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}
	if !f.isOwner(org, caller) {
		return registry.Errorf(registry.KindAuthorization, "only owners can manage the %s organization", orgname)
	}
	acc, ok := f.accounts[username]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "user %s not found", username)
	}
	if f.isOwner(org, acc) {
		return nil
	}
	org.owners = append(org.owners, acc)
	return nil
}

// RemoveOwner removes an account from the owner list. Removing the last
// owner is refused; removing a non-owner is a not-found error.
func (f *Fake) RemoveOwner(_ context.Context, cred registry.Credential, orgname, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	caller, err := f.caller(cred)
	if err != nil {
		return err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}
	if !f.isOwner(org, caller) {
		return registry.Errorf(registry.KindAuthorization, "only owners can manage the %s organization", orgname)
	}
	acc, ok := f.accounts[username]
	if !ok || !f.isOwner(org, acc) {
		return registry.Errorf(registry.KindNotFound, "%s is not an owner of the %s organization", username, orgname)
	}
	if len(org.owners) == 1 {
		return registry.Errorf(registry.KindInvariantViolation,
			"the %s organization must keep at least one owner", orgname)
	}
	org.owners = removeAccount(org.owners, acc)
	return nil
}

func (f *Fake) orgTeam(cred registry.Credential, ref registry.TeamRef) (*accountRecord, *orgRecord, *teamRecord, error) {
	caller, err := f.caller(cred)
	if err != nil {
		return nil, nil, nil, err
	}
	org, ok := f.orgs[ref.Org]
	if !ok {
		return nil, nil, nil, registry.Errorf(registry.KindNotFound, "organization %s not found", ref.Org)
	}
	team, ok := org.teams[ref.Team]
	if !ok {
		return nil, nil, nil, registry.Errorf(registry.KindNotFound, "team %s not found", ref)
	}
	return caller, org, team, nil
}

// CreateTeam adds a team to an organization. Owner-only; names are unique
// within the org.
func (f *Fake) CreateTeam(_ context.Context, cred registry.Credential, ref registry.TeamRef, description string) (*registry.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	caller, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	org, ok := f.orgs[ref.Org]
	if !ok {
		return nil, registry.Errorf(registry.KindNotFound, "organization %s not found", ref.Org)
	}
	if !f.isOwner(org, caller) {
		return nil, registry.Errorf(registry.KindAuthorization, "only owners can manage teams of the %s organization", ref.Org)
	}
	if _, ok := org.teams[ref.Team]; ok {
		return nil, registry.Errorf(registry.KindValidation, "team %s already exists in the %s organization", ref.Team, ref.Org)
	}

	team := &teamRecord{
		id:          uuid.NewString(),
		name:        ref.Team,
		description: description,
	}
	org.teams[ref.Team] = team
	org.teamOrder = append(org.teamOrder, ref.Team)

	return f.team(team), nil
}

// ListTeams returns an organization's teams, oldest first.
func (f *Fake) ListTeams(_ context.Context, cred registry.Credential, orgname string) ([]registry.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.caller(cred); err != nil {
		return nil, err
	}
	org, ok := f.orgs[orgname]
	if !ok {
		return nil, registry.Errorf(registry.KindNotFound, "organization %s not found", orgname)
	}

	teams := []registry.Team{}
	for _, name := range org.teamOrder {
		teams = append(teams, *f.team(org.teams[name]))
	}
	return teams, nil
}

// UpdateTeam renames a team or changes its description.
func (f *Fake) UpdateTeam(_ context.Context, cred registry.Credential, ref registry.TeamRef, upd registry.TeamUpdate) (*registry.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	caller, org, team, err := f.orgTeam(cred, ref)
	if err != nil {
		return nil, err
	}
	if !f.isOwner(org, caller) {
		return nil, registry.Errorf(registry.KindAuthorization, "only owners can manage teams of the %s organization", ref.Org)
	}

	if upd.Name != "" && upd.Name != team.name {
		if _, ok := org.teams[upd.Name]; ok {
			return nil, registry.Errorf(registry.KindValidation, "team %s already exists in the %s organization", upd.Name, ref.Org)
		}
		delete(org.teams, team.name)
		org.teams[upd.Name] = team
		for i, name := range org.teamOrder {
			if name == team.name {
				org.teamOrder[i] = upd.Name
			}
		}
		team.name = upd.Name
	}
	if upd.Description != "" {
		team.description = upd.Description
	}

	return f.team(team), nil
}

// DestroyTeam removes a team. Owner-only; no dependency guard applies.
func (f *Fake) DestroyTeam(_ context.Context, cred registry.Credential, ref registry.TeamRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	caller, org, team, err := f.orgTeam(cred, ref)
	if err != nil {
		return err
	}
	if !f.isOwner(org, caller) {
		return registry.Errorf(registry.KindAuthorization, "only owners can manage teams of the %s organization", ref.Org)
	}

	delete(org.teams, team.name)
	for i, name := range org.teamOrder {
		if name == team.name {
			org.teamOrder = append(org.teamOrder[:i], org.teamOrder[i+1:]...)
			break
		}
	}
	return nil
}

// AddMember adds an account to a team; adding an existing member is a no-op.
func (f *Fake) AddMember(_ context.Context, cred registry.Credential, ref registry.TeamRef, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, _, team, err := f.orgTeam(cred, ref)
	if err != nil {
		return err
	}
	acc, ok := f.accounts[username]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "user %s not found", username)
	}
	for _, m := range team.members {
		if m == acc {
			return nil
		}
	}
	team.members = append(team.members, acc)
	return nil
}

// RemoveMember removes an account from a team; removing a non-member is a
// no-op.
func (f *Fake) RemoveMember(_ context.Context, cred registry.Credential, ref registry.TeamRef, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, _, team, err := f.orgTeam(cred, ref)
	if err != nil {
		return err
	}
	acc, ok := f.accounts[username]
	if !ok {
		return registry.Errorf(registry.KindNotFound, "user %s not found", username)
	}
	team.members = removeAccount(team.members, acc)
	return nil
}

// PublishPackage records a package attributed to the caller or, when Org is
// set, to that organization.
func (f *Fake) PublishPackage(_ context.Context, cred registry.Credential, pkg registry.PackageUpload) (*registry.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	if pkg.Name == "" {
		return nil, registry.Errorf(registry.KindValidation, "package name is required")
	}
	for _, existing := range f.packages {
		if existing.name == pkg.Name {
			return nil, registry.Errorf(registry.KindValidation, "package %s is already published", pkg.Name)
		}
	}

	rec := &packageRecord{name: pkg.Name}
	owner := acc.profile.Username
	if pkg.Org != "" {
		org, ok := f.orgs[pkg.Org]
		if !ok {
			return nil, registry.Errorf(registry.KindNotFound, "organization %s not found", pkg.Org)
		}
		if !f.isOwner(org, acc) {
			return nil, registry.Errorf(registry.KindAuthorization, "only owners can publish under the %s organization", pkg.Org)
		}
		rec.org = pkg.Org
		owner = pkg.Org
	} else {
		rec.account = acc.profile.Username
	}
	f.packages = append(f.packages, rec)

	return &registry.Package{Name: pkg.Name, Path: owner + "/" + pkg.Name}, nil
}

// UnpublishPackage removes a package the caller may administer.
func (f *Fake) UnpublishPackage(_ context.Context, cred registry.Credential, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return err
	}

	for i, pkg := range f.packages {
		if pkg.name != name {
			continue
		}
		if pkg.account != acc.profile.Username {
			if pkg.org == "" || !f.isOwner(f.orgs[pkg.org], acc) {
				return registry.Errorf(registry.KindAuthorization, "you do not own the %s package", name)
			}
		}
		f.packages = append(f.packages[:i], f.packages[i+1:]...)
		return nil
	}
	return registry.Errorf(registry.KindNotFound, "package %s not found", name)
}

// LinkedResources returns the packages still attributed to the owner. An
// empty owner refers to the calling account.
func (f *Fake) LinkedResources(_ context.Context, cred registry.Credential, owner registry.ResourceOwner) ([]registry.LinkedResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, err := f.caller(cred)
	if err != nil {
		return nil, err
	}
	if owner.Account == "" && owner.Org == "" {
		owner.Account = acc.profile.Username
	}

	resources := []registry.LinkedResource{}
	for _, pkg := range f.packages {
		match := (owner.Account != "" && pkg.account == owner.Account) ||
			(owner.Org != "" && pkg.org == owner.Org)
		if match {
			resources = append(resources, registry.LinkedResource{Type: "package", Name: pkg.name})
		}
	}
	return resources, nil
}
