// Package wallet resolves the service's platform-managed accounts by logical
// name, creating them on first use.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/p2d/serverwallet/internal/platform"
)

// Outcome says how a resolution completed.
type Outcome int

const (
	// OutcomeFound means the name already resolved to an account.
	OutcomeFound Outcome = iota
	// OutcomeCreated means the account was created by this call.
	OutcomeCreated
	// OutcomeFoundAfterConflict means creation raced with another writer and
	// the account was picked up on a follow-up lookup.
	OutcomeFoundAfterConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeFoundAfterConflict:
		return "found_after_conflict"
	default:
		return "found"
	}
}

// Resolution is the result of a get-or-create call. The name-to-address
// mapping is stable for the lifetime of the deployment.
type Resolution struct {
	Address string
	Name    string
	Outcome Outcome
}

// API is the slice of the platform client the provisioner needs.
type API interface {
	GetAccountByName(ctx context.Context, name string) (platform.Account, error)
	CreateAccount(ctx context.Context, name string) (platform.Account, error)
	ListSmartAccounts(ctx context.Context, pageToken string) (platform.SmartAccountPage, error)
	CreateSmartAccount(ctx context.Context, name, owner string) (platform.SmartAccount, error)
}

// Provisioner performs idempotent name-based account resolution.
type Provisioner struct {
	api API
}

// NewProvisioner builds a provisioner over the platform API.
func NewProvisioner(api API) *Provisioner {
	return &Provisioner{api: api}
}

// Account resolves the named signer account, creating it when absent.
func (p *Provisioner) Account(ctx context.Context, name string) (Resolution, error) {
	account, err := p.api.GetAccountByName(ctx, name)
	if err == nil {
		return Resolution{Address: account.Address, Name: account.Name, Outcome: OutcomeFound}, nil
	}
	if !errors.Is(err, platform.ErrNotFound) {
		return Resolution{}, err
	}

	created, err := p.api.CreateAccount(ctx, name)
	if err == nil {
		return Resolution{Address: created.Address, Name: created.Name, Outcome: OutcomeCreated}, nil
	}
	if !errors.Is(err, platform.ErrAlreadyExists) {
		return Resolution{}, err
	}

	// Lost a create race; the account exists now.
	account, err = p.api.GetAccountByName(ctx, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup after create conflict: %w", err)
	}
	return Resolution{Address: account.Address, Name: account.Name, Outcome: OutcomeFoundAfterConflict}, nil
}

// SmartAccount resolves the named smart account owned by the given signer
// address, creating it when absent. Lookup pages through the listing until
// the name matches or the page token runs out.
func (p *Provisioner) SmartAccount(ctx context.Context, name, owner string) (Resolution, error) {
	account, found, err := p.findSmartAccount(ctx, name)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		return Resolution{Address: account.Address, Name: account.Name, Outcome: OutcomeFound}, nil
	}

	created, err := p.api.CreateSmartAccount(ctx, name, owner)
	if err == nil {
		return Resolution{Address: created.Address, Name: created.Name, Outcome: OutcomeCreated}, nil
	}
	if !errors.Is(err, platform.ErrAlreadyExists) {
		return Resolution{}, err
	}

	account, found, err = p.findSmartAccount(ctx, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup after create conflict: %w", err)
	}
	if !found {
		return Resolution{}, fmt.Errorf("smart account %q reported existing but not listed", name)
	}
	return Resolution{Address: account.Address, Name: account.Name, Outcome: OutcomeFoundAfterConflict}, nil
}

func (p *Provisioner) findSmartAccount(ctx context.Context, name string) (platform.SmartAccount, bool, error) {
	pageToken := ""
	for {
		page, err := p.api.ListSmartAccounts(ctx, pageToken)
		if err != nil {
			return platform.SmartAccount{}, false, err
		}
		for _, account := range page.Accounts {
			if account.Name == name {
				return account, true, nil
			}
		}
		if page.NextPageToken == "" {
			return platform.SmartAccount{}, false, nil
		}
		pageToken = page.NextPageToken
	}
}
