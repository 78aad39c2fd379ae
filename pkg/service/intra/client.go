package intra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
	"github.com/secmon-lab/slotwatch/pkg/utils/safe"
)

// Default endpoints of the intra platform
const (
	DefaultSignInURL   = "https://signin.intra.42.fr/users/sign_in"
	DefaultProjectsURL = "https://projects.intra.42.fr/projects"
	DefaultProfileURL  = "https://profile.intra.42.fr"

	// DefaultDebugProject reroutes to the caller's own profile slots endpoint
	DefaultDebugProject = "42"
)

const (
	defaultRequestTimeout = 3 * time.Second
	defaultRetryInterval  = 2 * time.Second
	defaultMaxAttempts    = 10
)

// Client owns one authenticated HTTP session against the intra. The transport
// is used only by the polling loop's sequential calls, so no locking is
// needed.
type Client struct {
	login    string
	password string

	signInURL    string
	projectsURL  string
	profileURL   string
	debugProject string

	retryInterval time.Duration
	maxAttempts   int

	httpClient *http.Client
	connected  bool
}

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoints overrides the intra endpoints
func WithEndpoints(signInURL, projectsURL, profileURL string) Option {
	return func(c *Client) {
		c.signInURL = signInURL
		c.projectsURL = projectsURL
		c.profileURL = profileURL
	}
}

// WithDebugProject overrides the debug project identifier
func WithDebugProject(project string) Option {
	return func(c *Client) {
		c.debugProject = project
	}
}

// WithRetryInterval overrides the backoff between slot query attempts
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// WithMaxAttempts overrides the slot query retry budget
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// New establishes an authenticated session. Sign-in happens exactly once per
// client; the caller builds a new client when credentials change.
func New(ctx context.Context, login, password string, opts ...Option) (*Client, error) {
	c := &Client{
		login:         login,
		password:      password,
		signInURL:     DefaultSignInURL,
		projectsURL:   DefaultProjectsURL,
		profileURL:    DefaultProfileURL,
		debugProject:  DefaultDebugProject,
		retryInterval: defaultRetryInterval,
		maxAttempts:   defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create cookie jar", goerr.T(types.TagAuthNetwork))
		}
		c.httpClient.Jar = jar
	}

	if err := c.signIn(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// signIn fetches the sign-in page, extracts the authenticity token and posts
// the login form. Session cookies travel through the client's jar.
func (c *Client) signIn(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.signInURL, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build sign-in request", goerr.T(types.TagAuthNetwork))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "network error while fetching the sign-in page",
			goerr.V("url", c.signInURL), goerr.T(types.TagAuthNetwork))
	}
	defer safe.Close(ctx, resp.Body)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to parse the sign-in page", goerr.T(types.TagAuthNetwork))
	}
	token, ok := doc.Find(`input[name="authenticity_token"]`).Attr("value")
	if !ok {
		return goerr.New("authenticity token not found in the sign-in page",
			goerr.V("url", c.signInURL), goerr.T(types.TagAuthNetwork))
	}

	form := url.Values{
		"utf8":               {"✓"},
		"authenticity_token": {token},
		"user[login]":        {c.login},
		"user[password]":     {c.password},
		"commit":             {"Sign in"},
	}
	postReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signInURL, strings.NewReader(form.Encode()))
	if err != nil {
		return goerr.Wrap(err, "failed to build sign-in form request", goerr.T(types.TagAuthNetwork))
	}
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	postResp, err := c.httpClient.Do(postReq)
	if err != nil {
		return goerr.Wrap(err, "network error while signing in to the intra",
			goerr.V("login", c.login), goerr.T(types.TagAuthNetwork))
	}
	defer safe.Close(ctx, postResp.Body)

	postDoc, err := goquery.NewDocumentFromReader(postResp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to parse the sign-in response", goerr.T(types.TagAuthNetwork))
	}
	if banner := postDoc.Find("div.alert-danger"); banner.Length() > 0 {
		return goerr.New("the intra refused the credentials",
			goerr.V("login", c.login),
			goerr.V("reason", strings.TrimSpace(banner.Text())),
			goerr.T(types.TagAuthRejected))
	}

	c.connected = true
	logging.From(ctx).Info("signed in to the intra", "login", c.login)
	return nil
}

// Credentials returns the identity this session was established with
func (c *Client) Credentials() (string, string) {
	return c.login, c.password
}

// Close releases idle transport connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) slotsURL(project string, start, end time.Time) string {
	base := c.projectsURL + "/" + project
	if project == c.debugProject {
		base = c.profileURL
	}
	return fmt.Sprintf("%s/slots.json?start=%s&end=%s",
		base, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// QuerySlots retrieves the slot listing of a project within the date range.
// Transient transport failures are retried with a fixed backoff until the
// attempt budget is spent; the budget is per call, not per process.
func (c *Client) QuerySlots(ctx context.Context, project string, start, end time.Time) ([]model.Slot, error) {
	if !c.connected {
		return nil, goerr.New("slot query on an unauthenticated session",
			goerr.V("project", project), goerr.T(types.TagSlotQuery))
	}

	logger := logging.From(ctx)
	endpoint := c.slotsURL(project, start, end)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		slots, err := c.fetchSlots(ctx, endpoint, project)
		if err == nil {
			return slots, nil
		}
		lastErr = err

		if attempt < c.maxAttempts {
			logger.Debug("failed attempt to get project slots, retrying",
				"project", project, "attempt", attempt, "max", c.maxAttempts, "error", err.Error())
			select {
			case <-ctx.Done():
				return nil, goerr.Wrap(ctx.Err(), "slot query cancelled",
					goerr.V("project", project), goerr.T(types.TagSlotQuery))
			case <-time.After(c.retryInterval):
			}
		}
	}

	return nil, goerr.Wrap(lastErr, "unable to retrieve available project slots",
		goerr.V("project", project),
		goerr.V("attempts", c.maxAttempts),
		goerr.T(types.TagSlotQuery))
}

func (c *Client) fetchSlots(ctx context.Context, endpoint, project string) ([]model.Slot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build slot query request", goerr.V("url", endpoint))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "slot query request failed", goerr.V("url", endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	// Unknown project and inaccessible corrections are operator mistakes,
	// not failures: warn and keep the loop going.
	switch resp.StatusCode {
	case http.StatusNotFound:
		logging.From(ctx).Warn("project does not exist", "project", project)
		return nil, nil
	case http.StatusForbidden:
		logging.From(ctx).Warn("no access to any correction slots for project", "project", project)
		return nil, nil
	}

	var slots []model.Slot
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slot listing",
			goerr.V("url", endpoint), goerr.V("status", resp.StatusCode))
	}

	return slots, nil
}
