// Package client implements the Authority contract over the registry's HTTP
// JSON API. It attaches the bearer credential and a request ID to every
// call, decodes the structured error envelope into kind-tagged errors, and
// retries idempotent reads with exponential backoff. Writes are never
// retried; a remote rejection is surfaced to the caller as-is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parcelreg/parcel/internal/registry"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the authority endpoint, without a trailing slash.
	BaseURL string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// CacheDir enables a persistent GET cache; empty means in-memory.
	CacheDir string

	// MaxRetries caps attempts for idempotent GETs. Values below one
	// disable retrying.
	MaxRetries int
}

// DefaultConfig returns the stock client configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// Client talks to the remote authority. It implements registry.Authority.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

var _ registry.Authority = (*Client)(nil)

// New creates an authority client.
func New(cfg Config) *Client {
	httpClient := NewCachingHTTPClient(cfg.CacheDir)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		maxRetries: cfg.MaxRetries,
	}
}

type errorEnvelope struct {
	Error *registry.Error `json:"error"`
}

// do performs one API call. GETs may be retried on transport failures and
// 5xx responses; everything else runs exactly once.
func (c *Client) do(ctx context.Context, cred registry.Credential, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := func() ([]byte, error) {
		return c.attempt(ctx, cred, method, path, payload)
	}

	var data []byte
	var err error
	if method == http.MethodGet && c.maxRetries > 1 {
		data, err = backoff.Retry(ctx, attempt,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(uint(c.maxRetries)))
	} else {
		data, err = attempt()
	}
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return registry.Errorf(registry.KindTransport, "failed to decode registry response: %v", err)
		}
	}

	return nil
}

func (c *Client) attempt(ctx context.Context, cred registry.Credential, method, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(registry.Errorf(registry.KindTransport, "invalid request: %v", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	log.Debug().Str("method", method).Str("path", path).Msg("registry request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures are retryable for GETs.
		return nil, registry.Errorf(registry.KindTransport, "registry unreachable: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, registry.Errorf(registry.KindTransport, "failed to read registry response: %v", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	apiErr := decodeError(resp.StatusCode, data)
	if resp.StatusCode >= 500 {
		return nil, apiErr
	}
	return nil, backoff.Permanent(apiErr)
}

// decodeError maps an error response to a kind-tagged error, trusting the
// authority's own kind when the envelope carries one.
func decodeError(status int, data []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error != nil && env.Error.Kind != "" {
		return env.Error
	}
	return registry.Errorf(kindForStatus(status), "registry returned %d %s", status, http.StatusText(status))
}

func kindForStatus(status int) registry.Kind {
	switch status {
	case http.StatusBadRequest:
		return registry.KindValidation
	case http.StatusUnauthorized:
		return registry.KindAuthentication
	case http.StatusForbidden:
		return registry.KindAuthorization
	case http.StatusNotFound:
		return registry.KindNotFound
	case http.StatusConflict:
		return registry.KindResourceConflict
	case http.StatusUnprocessableEntity:
		return registry.KindInvariantViolation
	default:
		return registry.KindTransport
	}
}

func orgPath(orgname string, rest ...string) string {
	p := "/v1/orgs/" + url.PathEscape(orgname)
	for _, seg := range rest {
		p += "/" + url.PathEscape(seg)
	}
	return p
}

func teamPath(ref registry.TeamRef, rest ...string) string {
	return orgPath(ref.Org, append([]string{"teams", ref.Team}, rest...)...)
}

// Register creates a new unverified account.
func (c *Client) Register(ctx context.Context, reg registry.Registration) (*registry.Account, error) {
	var acc registry.Account
	if err := c.do(ctx, "", http.MethodPost, "/v1/accounts", reg, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Verify submits an emailed confirmation token.
func (c *Client) Verify(ctx context.Context, token string) (*registry.Account, error) {
	var acc registry.Account
	body := map[string]string{"token": token}
	if err := c.do(ctx, "", http.MethodPost, "/v1/accounts/verify", body, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Login exchanges a username or email plus password for a session token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*registry.LoginResult, error) {
	var res registry.LoginResult
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, "", http.MethodPost, "/v1/sessions", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout revokes the session credential.
func (c *Client) Logout(ctx context.Context, cred registry.Credential) error {
	return c.do(ctx, cred, http.MethodDelete, "/v1/sessions", nil, nil)
}

// Show returns the live account summary including packages and
// subscriptions.
func (c *Client) Show(ctx context.Context, cred registry.Credential) (*registry.AccountSummary, error) {
	var sum registry.AccountSummary
	if err := c.do(ctx, cred, http.MethodGet, "/v1/account", nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// UpdateProfile mutates profile fields.
func (c *Client) UpdateProfile(ctx context.Context, cred registry.Credential, upd registry.ProfileUpdate) (*registry.Account, error) {
	var acc registry.Account
	if err := c.do(ctx, cred, http.MethodPatch, "/v1/account", upd, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, cred registry.Credential, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.do(ctx, cred, http.MethodPost, "/v1/account/password", body, nil)
}

// IssueToken mints a new personal token after re-proving the password.
func (c *Client) IssueToken(ctx context.Context, cred registry.Credential, password string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	body := map[string]string{"password": password}
	if err := c.do(ctx, cred, http.MethodPost, "/v1/account/tokens", body, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

// DestroyAccount removes the calling account.
func (c *Client) DestroyAccount(ctx context.Context, cred registry.Credential) error {
	return c.do(ctx, cred, http.MethodDelete, "/v1/account", nil, nil)
}

// CreateOrg registers a new organization owned by the caller.
func (c *Client) CreateOrg(ctx context.Context, cred registry.Credential, spec registry.OrgSpec) (*registry.Organization, error) {
	var o registry.Organization
	if err := c.do(ctx, cred, http.MethodPost, "/v1/orgs", spec, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrgs returns the organizations the caller owns.
func (c *Client) ListOrgs(ctx context.Context, cred registry.Credential) ([]registry.Organization, error) {
	var orgs []registry.Organization
	if err := c.do(ctx, cred, http.MethodGet, "/v1/orgs", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrg returns one organization.
func (c *Client) GetOrg(ctx context.Context, cred registry.Credential, orgname string) (*registry.Organization, error) {
	var o registry.Organization
	if err := c.do(ctx, cred, http.MethodGet, orgPath(orgname), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrg renames an organization or changes its display fields.
func (c *Client) UpdateOrg(ctx context.Context, cred registry.Credential, orgname string, upd registry.OrgUpdate) (*registry.Organization, error) {
	var o registry.Organization
	if err := c.do(ctx, cred, http.MethodPatch, orgPath(orgname), upd, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// DestroyOrg removes an organization.
func (c *Client) DestroyOrg(ctx context.Context, cred registry.Credential, orgname string) error {
	return c.do(ctx, cred, http.MethodDelete, orgPath(orgname), nil, nil)
}

// AddOwner appends an account to the organization's owner list.
func (c *Client) AddOwner(ctx context.Context, cred registry.Credential, orgname, username string) error {
	body := map[string]string{"username": username}
	return c.do(ctx, cred, http.MethodPost, orgPath(orgname, "owners"), body, nil)
}

// RemoveOwner removes an account from the organization's owner list.
func (c *Client) RemoveOwner(ctx context.Context, cred registry.Credential, orgname, username string) error {
	return c.do(ctx, cred, http.MethodDelete, orgPath(orgname, "owners", username), nil, nil)
}

// CreateTeam adds a team to an organization.
func (c *Client) CreateTeam(ctx context.Context, cred registry.Credential, ref registry.TeamRef, description string) (*registry.Team, error) {
	var t registry.Team
	body := map[string]string{"name": ref.Team, "description": description}
	if err := c.do(ctx, cred, http.MethodPost, orgPath(ref.Org, "teams"), body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTeams returns the organization's teams.
func (c *Client) ListTeams(ctx context.Context, cred registry.Credential, orgname string) ([]registry.Team, error) {
	var teams []registry.Team
	if err := c.do(ctx, cred, http.MethodGet, orgPath(orgname, "teams"), nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpdateTeam renames a team or changes its description.
func (c *Client) UpdateTeam(ctx context.Context, cred registry.Credential, ref registry.TeamRef, upd registry.TeamUpdate) (*registry.Team, error) {
	var t registry.Team
	if err := c.do(ctx, cred, http.MethodPatch, teamPath(ref), upd, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DestroyTeam removes a team.
func (c *Client) DestroyTeam(ctx context.Context, cred registry.Credential, ref registry.TeamRef) error {
	return c.do(ctx, cred, http.MethodDelete, teamPath(ref), nil, nil)
}

// AddMember adds an account to a team.
func (c *Client) AddMember(ctx context.Context, cred registry.Credential, ref registry.TeamRef, username string) error {
	body := map[string]string{"username": username}
	return c.do(ctx, cred, http.MethodPost, teamPath(ref, "members"), body, nil)
}

// RemoveMember removes an account from a team.
func (c *Client) RemoveMember(ctx context.Context, cred registry.Credential, ref registry.TeamRef, username string) error {
	return c.do(ctx, cred, http.MethodDelete, teamPath(ref, "members", username), nil, nil)
}

// PublishPackage uploads a package archive.
func (c *Client) PublishPackage(ctx context.Context, cred registry.Credential, pkg registry.PackageUpload) (*registry.Package, error) {
	var p registry.Package
	if err := c.do(ctx, cred, http.MethodPost, "/v1/packages", pkg, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnpublishPackage removes a published package.
func (c *Client) UnpublishPackage(ctx context.Context, cred registry.Credential, name string) error {
	return c.do(ctx, cred, http.MethodDelete, "/v1/packages/"+url.PathEscape(name), nil, nil)
}

// LinkedResources returns the registry objects blocking destruction of the
// given owner. An empty owner refers to the calling account.
func (c *Client) LinkedResources(ctx context.Context, cred registry.Credential, owner registry.ResourceOwner) ([]registry.LinkedResource, error) {
	q := url.Values{}
	if owner.Account != "" {
		q.Set("account", owner.Account)
	}
	if owner.Org != "" {
		q.Set("org", owner.Org)
	}
	path := "/v1/resources"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resources []registry.LinkedResource
	if err := c.do(ctx, cred, http.MethodGet, path, nil, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}
