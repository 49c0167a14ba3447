// Package dispatch implements the transfer dispatcher: one workflow that
// resolves the service wallet, runs a policy to pick what to send, and
// submits the resulting user operation.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p2d/serverwallet/internal/notification"
	"github.com/p2d/serverwallet/internal/platform"
	"github.com/p2d/serverwallet/internal/transfer"
	"github.com/p2d/serverwallet/internal/wallet"
)

// Accounts resolves the service's named accounts.
type Accounts interface {
	Account(ctx context.Context, name string) (wallet.Resolution, error)
	SmartAccount(ctx context.Context, name, owner string) (wallet.Resolution, error)
}

// Submitter sends user operations on behalf of the smart account.
type Submitter interface {
	SendUserOperation(ctx context.Context, smartAccount, network string, calls []transfer.Call) (platform.UserOperation, error)
}

// Config carries the dispatcher's fixed identifiers.
type Config struct {
	Network          string
	OwnerName        string
	SmartAccountName string
}

// Service executes dispatches against the platform.
type Service struct {
	accounts  Accounts
	submitter Submitter
	notifier  notification.Notifier
	logger    *slog.Logger
	cfg       Config
}

// NewService wires a dispatch service.
func NewService(accounts Accounts, submitter Submitter, notifier notification.Notifier, logger *slog.Logger, cfg Config) *Service {
	return &Service{accounts: accounts, submitter: submitter, notifier: notifier, logger: logger, cfg: cfg}
}

// Result is a completed dispatch.
type Result struct {
	Hash string
	Plan Plan
}

// Dispatch resolves the smart account, applies the policy and submits the
// transfer. The wallet is re-resolved by name on every call; provisioning is
// idempotent so concurrent dispatches converge on the same address.
func (s *Service) Dispatch(ctx context.Context, policy Policy, to, amount string) (Result, error) {
	owner, err := s.accounts.Account(ctx, s.cfg.OwnerName)
	if err != nil {
		return Result{}, fmt.Errorf("resolve owner account: %w", err)
	}

	smart, err := s.accounts.SmartAccount(ctx, s.cfg.SmartAccountName, owner.Address)
	if err != nil {
		return Result{}, fmt.Errorf("resolve smart account: %w", err)
	}

	plan, err := policy(ctx, to, amount)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("dispatching transfer",
		"to", to,
		"amount", plan.AmountLabel(),
		"from", smart.Address,
		"network", s.cfg.Network,
	)

	op, err := s.submitter.SendUserOperation(ctx, smart.Address, s.cfg.Network, []transfer.Call{plan.Call})
	if err != nil {
		s.logger.Error("transfer submission failed", "to", to, "error", err)
		return Result{}, err
	}

	s.logger.Info("transfer submitted", "to", to, "user_op", op.Hash, "status", op.Status)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:      notification.KindTransferDispatched,
			Recipient: to,
			Body:      fmt.Sprintf("Sent %s (op %s)", plan.AmountLabel(), op.Hash),
		})
	}

	return Result{Hash: op.Hash, Plan: plan}, nil
}
