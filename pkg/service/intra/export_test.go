package intra

import (
	"context"
	"net/http"
)

// NewConnected builds a client that skips the sign-in handshake, for tests
// that exercise the slot query path in isolation.
func NewConnected(login, password string, opts ...Option) *Client {
	c := &Client{
		login:         login,
		password:      password,
		signInURL:     DefaultSignInURL,
		projectsURL:   DefaultProjectsURL,
		profileURL:    DefaultProfileURL,
		debugProject:  DefaultDebugProject,
		retryInterval: defaultRetryInterval,
		maxAttempts:   defaultMaxAttempts,
		connected:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return c
}

// SignIn exposes the handshake for tests
func (c *Client) SignIn(ctx context.Context) error {
	return c.signIn(ctx)
}

// Connected reports the session state for tests
func (c *Client) Connected() bool {
	return c.connected
}

// SetDisconnected drops the session state for tests
func (c *Client) SetDisconnected() {
	c.connected = false
}
