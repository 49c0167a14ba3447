// Package boot runs the one-time startup sequence: provision the service
// wallet and ask the faucet for testnet funds. Nothing here may prevent the
// HTTP server from starting; every failure is logged and swallowed.
package boot

import (
	"context"
	"log/slog"

	"github.com/p2d/serverwallet/internal/chain"
	"github.com/p2d/serverwallet/internal/wallet"
)

// Accounts resolves the service's named accounts.
type Accounts interface {
	Account(ctx context.Context, name string) (wallet.Resolution, error)
	SmartAccount(ctx context.Context, name, owner string) (wallet.Resolution, error)
}

// Faucet requests testnet funds for an address.
type Faucet interface {
	RequestFaucet(ctx context.Context, address, network, token string) (string, error)
}

// Receipts awaits on-chain confirmation of a transaction.
type Receipts interface {
	WaitForReceipt(ctx context.Context, hash string) (*chain.Receipt, error)
}

// Config carries the startup parameters.
type Config struct {
	Network          string
	OwnerName        string
	SmartAccountName string
	// FaucetToken is the faucet asset to request; empty skips the request.
	FaucetToken string
	// WaitForReceipt blocks startup until the faucet transaction confirms.
	WaitForReceipt bool
}

// Hook is the startup sequence.
type Hook struct {
	accounts Accounts
	faucet   Faucet
	receipts Receipts
	logger   *slog.Logger
	cfg      Config
}

// New builds the startup hook. receipts may be nil when confirmation waiting
// is disabled.
func New(accounts Accounts, faucet Faucet, receipts Receipts, logger *slog.Logger, cfg Config) *Hook {
	return &Hook{accounts: accounts, faucet: faucet, receipts: receipts, logger: logger, cfg: cfg}
}

// Run provisions the wallet and requests faucet funds.
func (h *Hook) Run(ctx context.Context) {
	owner, err := h.accounts.Account(ctx, h.cfg.OwnerName)
	if err != nil {
		h.logger.Error("startup: provision owner account failed", "name", h.cfg.OwnerName, "error", err)
		return
	}

	smart, err := h.accounts.SmartAccount(ctx, h.cfg.SmartAccountName, owner.Address)
	if err != nil {
		h.logger.Error("startup: provision smart account failed", "name", h.cfg.SmartAccountName, "error", err)
		return
	}

	h.logger.Info("smart account ready",
		"address", smart.Address,
		"outcome", smart.Outcome.String(),
		"owner", owner.Address,
	)

	if h.cfg.FaucetToken == "" {
		return
	}

	hash, err := h.faucet.RequestFaucet(ctx, smart.Address, h.cfg.Network, h.cfg.FaucetToken)
	if err != nil {
		h.logger.Warn("startup: faucet request failed", "token", h.cfg.FaucetToken, "error", err)
		return
	}

	h.logger.Info("requested faucet funds",
		"token", h.cfg.FaucetToken,
		"tx", hash,
		"explorer", explorerTxURL(h.cfg.Network, hash),
	)

	if !h.cfg.WaitForReceipt || h.receipts == nil {
		return
	}

	receipt, err := h.receipts.WaitForReceipt(ctx, hash)
	if err != nil {
		h.logger.Warn("startup: faucet confirmation wait failed", "tx", hash, "error", err)
		return
	}
	h.logger.Info("faucet transaction confirmed", "tx", hash, "block", receipt.BlockNumber)
}

func explorerTxURL(network, hash string) string {
	switch network {
	case "base-sepolia":
		return "https://sepolia.basescan.org/tx/" + hash
	case "base":
		return "https://basescan.org/tx/" + hash
	default:
		return hash
	}
}
