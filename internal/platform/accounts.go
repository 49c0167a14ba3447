package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Account is a platform-managed EVM account addressed by logical name.
type Account struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SmartAccount is a contract account owned by a separate signer account.
type SmartAccount struct {
	Address string   `json:"address"`
	Name    string   `json:"name"`
	Owners  []string `json:"owners"`
}

// SmartAccountPage is one page of the smart-account listing.
type SmartAccountPage struct {
	Accounts      []SmartAccount `json:"accounts"`
	NextPageToken string         `json:"nextPageToken"`
}

// GetAccountByName resolves a named account, returning ErrNotFound when no
// account carries the name.
func (c *Client) GetAccountByName(ctx context.Context, name string) (Account, error) {
	var out Account
	err := c.do(ctx, http.MethodGet, "/v2/evm/accounts/by-name/"+url.PathEscape(name), nil, &out)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, fmt.Errorf("account %q: %w", name, err)
		}
		return Account{}, err
	}
	return out, nil
}

// CreateAccount provisions a named account. A name collision surfaces as
// ErrAlreadyExists.
func (c *Client) CreateAccount(ctx context.Context, name string) (Account, error) {
	var out Account
	err := c.do(ctx, http.MethodPost, "/v2/evm/accounts", map[string]string{"name": name}, &out)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Account{}, fmt.Errorf("account %q: %w", name, err)
		}
		return Account{}, err
	}
	return out, nil
}

// ListSmartAccounts fetches one page of smart accounts. Pass an empty token
// for the first page; follow NextPageToken until it comes back empty.
func (c *Client) ListSmartAccounts(ctx context.Context, pageToken string) (SmartAccountPage, error) {
	path := "/v2/evm/smart-accounts"
	if pageToken != "" {
		path += "?pageToken=" + url.QueryEscape(pageToken)
	}
	var out SmartAccountPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return SmartAccountPage{}, err
	}
	return out, nil
}

// CreateSmartAccount provisions a named smart account owned by the given
// signer address. A name collision surfaces as ErrAlreadyExists.
func (c *Client) CreateSmartAccount(ctx context.Context, name, owner string) (SmartAccount, error) {
	var out SmartAccount
	body := map[string]string{"name": name, "owner": owner}
	err := c.do(ctx, http.MethodPost, "/v2/evm/smart-accounts", body, &out)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return SmartAccount{}, fmt.Errorf("smart account %q: %w", name, err)
		}
		return SmartAccount{}, err
	}
	return out, nil
}
