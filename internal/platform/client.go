// Package platform is the REST client for the custodial wallet platform. It
// covers the slice of the API this service uses: named EVM accounts, smart
// accounts, the testnet faucet and user-operation submission.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds client configuration. KeySecret and WalletSecret are
// PEM-encoded EC private keys; they may be empty, in which case signed
// requests fail when first attempted rather than at construction.
type Config struct {
	BaseURL      string
	KeyID        string
	KeySecret    string
	WalletSecret string
	Timeout      time.Duration
}

// Client talks to the wallet platform API.
type Client struct {
	base       *url.URL
	httpClient *http.Client

	keyID        string
	keySecret    string
	walletSecret string
}

// New builds a platform client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("platform base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse platform base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base:         base,
		httpClient:   &http.Client{Timeout: timeout},
		keyID:        cfg.KeyID,
		keySecret:    cfg.KeySecret,
		walletSecret: cfg.WalletSecret,
	}, nil
}

// do issues a signed request and decodes the JSON response into out. Non-2xx
// responses surface as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse request path: %w", err)
	}
	endpoint := c.base.JoinPath(rel.Path)
	endpoint.RawQuery = rel.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	bearer, err := c.SignRequest(method, endpoint.Path)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	if method != http.MethodGet && c.walletSecret != "" {
		walletAuth, err := c.signWalletAuth(payload)
		if err != nil {
			return err
		}
		req.Header.Set("X-Wallet-Auth", walletAuth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Host returns the API host the client is bound to.
func (c *Client) Host() string {
	return c.base.Host
}
