package dispatch

import (
	"context"
	"fmt"

	"github.com/p2d/serverwallet/internal/transfer"
)

// Plan is a policy's decision: the encoded call plus the labels the response
// carries back to the client.
type Plan struct {
	Call       transfer.Call
	Asset      transfer.Asset
	AmountText string
	// RewardKind is set only by reward policies ("eth" or "usdc").
	RewardKind string
}

// AmountLabel renders the human-readable amount string, e.g. "1.0 USDC".
func (p Plan) AmountLabel() string {
	return p.AmountText + " " + p.Asset.Symbol
}

// Policy decides what a dispatch sends. The amount argument is the request's
// textual amount; reward policies ignore it.
type Policy func(ctx context.Context, to, amount string) (Plan, error)

// FixedTransfer moves the caller-requested amount of a single asset.
func FixedTransfer(asset transfer.Asset) Policy {
	return func(_ context.Context, to, amount string) (Plan, error) {
		call, err := transfer.EncodeTransfer(asset, to, amount)
		if err != nil {
			return Plan{}, err
		}
		return Plan{Call: call, Asset: asset, AmountText: amount}, nil
	}
}

// BalanceSource reads an address's native balance. Implementations report
// zero on failure.
type BalanceSource interface {
	Native(ctx context.Context, address string) float64
}

// RewardAmounts are the two fixed reward sizes as decimal strings.
type RewardAmounts struct {
	Native string
	Token  string
}

// Reward sends a fixed native-currency amount to recipients with exactly zero
// native balance and a fixed token amount to everyone else. The branch is
// exact equality to zero, not a threshold.
func Reward(balances BalanceSource, amounts RewardAmounts) Policy {
	return func(ctx context.Context, to, _ string) (Plan, error) {
		observed := balances.Native(ctx, to)

		asset := transfer.USDC
		amount := amounts.Token
		kind := "usdc"
		if observed == 0 {
			asset = transfer.ETH
			amount = amounts.Native
			kind = "eth"
		}

		call, err := transfer.EncodeTransfer(asset, to, amount)
		if err != nil {
			return Plan{}, fmt.Errorf("encode %s reward: %w", kind, err)
		}
		return Plan{Call: call, Asset: asset, AmountText: amount, RewardKind: kind}, nil
	}
}
