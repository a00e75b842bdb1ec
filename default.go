package igapi

import (
	"context"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// SetDefault installs c as the application's default client. It is meant for
// main packages and scripts; library code should pass a *Client explicitly.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

// Default returns the client installed with SetDefault, or nil.
func Default() *Client {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClient
}

// LoginDefault creates a client, logs it in and installs it as the default.
func LoginDefault(ctx context.Context, config *Config) (*Client, error) {
	c, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	if _, err := c.Login(ctx, false); err != nil {
		return nil, err
	}
	SetDefault(c)
	return c, nil
}
