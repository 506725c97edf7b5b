package ranger

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ranger-acl/rangeracl/internal/domain/policy"
	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

const defaultTimeout = 10 * time.Second

// Client is the outbound adapter (C2) for the policy source's REST API. It
// implements both the policy-fetch port the refresher (C3) calls and
// subject.Source, the raw per-user lookup the subject resolver (C4) wraps
// with caching.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the given policy-source base URL and basic-auth
// credentials, with a hardened default transport (TLS 1.2 minimum, bounded
// idle connections) matching the rest of this codebase's outbound clients.
func New(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, path string) ([]byte, int, error) {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, &TransportError{Op: "build request", Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: "read body", Err: err}
	}
	return body, resp.StatusCode, nil
}

// FetchPolicies retrieves and normalizes every policy for serviceName.
func (c *Client) FetchPolicies(ctx context.Context, serviceName string) ([]policy.Policy, error) {
	path := fmt.Sprintf("/service/public/v2/api/service/%s/policy", url.PathEscape(serviceName))
	body, status, err := c.do(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &TransportError{Op: "fetch policies", Err: fmt.Errorf("unexpected status %d", status)}
	}
	policies, err := parsePoliciesResponse(body)
	if err != nil {
		return nil, &TransportError{Op: "parse policies", Err: err}
	}
	return policies, nil
}

// FetchServiceDefID resolves a service-definition name to its numeric id.
// ok is false when the service def does not exist (HTTP 404), which the
// caller should treat as "use a fallback id", not as a transport failure.
func (c *Client) FetchServiceDefID(ctx context.Context, name string) (id int64, ok bool, err error) {
	path := fmt.Sprintf("/service/public/v2/api/servicedef/name/%s", url.PathEscape(name))
	body, status, err := c.do(ctx, path)
	if err != nil {
		return 0, false, err
	}
	if status == http.StatusNotFound {
		return 0, false, nil
	}
	if status != http.StatusOK {
		return 0, false, &TransportError{Op: "fetch servicedef", Err: fmt.Errorf("unexpected status %d", status)}
	}

	var def struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &def); err != nil {
		return 0, false, &TransportError{Op: "parse servicedef", Err: err}
	}
	return def.ID, true, nil
}

// GetUserAttributes implements subject.Source: a 404 from the policy
// source's user endpoint means "unknown user", reported as a zero-value
// Attributes with no error so the resolver can negative-cache it.
func (c *Client) GetUserAttributes(ctx context.Context, username string) (subject.Attributes, error) {
	path := fmt.Sprintf("/service/xusers/users/userName/%s", url.PathEscape(username))
	body, status, err := c.do(ctx, path)
	if err != nil {
		return subject.Attributes{}, err
	}
	if status == http.StatusNotFound {
		return subject.Attributes{}, nil
	}
	if status != http.StatusOK {
		return subject.Attributes{}, &TransportError{Op: "fetch user", Err: fmt.Errorf("unexpected status %d", status)}
	}

	raw, err := parseUserResponse(body)
	if err != nil {
		return subject.Attributes{}, &TransportError{Op: "parse user", Err: err}
	}

	groups := make([]string, 0, len(raw.GroupNameList))
	for _, g := range raw.GroupNameList {
		groups = append(groups, g)
	}
	return subject.Attributes{Groups: groups, Roles: raw.UserRoleList}, nil
}

var _ subject.Source = (*Client)(nil)
