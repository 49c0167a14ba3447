// Package balance queries the platform's token-balance API for on-chain
// balances.
package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// The native asset shows up in the token list under a well-known placeholder
// contract address rather than a real deployment.
const (
	nativePlaceholder = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	nativeSymbol      = "ETH"
)

// Signer produces a bearer token scoped to one method and path.
type Signer interface {
	SignRequest(method, path string) (string, error)
}

// Checker reads balances for addresses on a single network. Lookups never
// fail: any error reads as a zero balance.
type Checker struct {
	base       *url.URL
	network    string
	signer     Signer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewChecker builds a balance checker against the given API base.
func NewChecker(baseURL, network string, signer Signer, logger *slog.Logger) (*Checker, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse balance API base URL: %w", err)
	}
	return &Checker{
		base:       base,
		network:    network,
		signer:     signer,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

type balancePayload struct {
	Balances []struct {
		Token struct {
			ContractAddress string `json:"contractAddress"`
			Symbol          string `json:"symbol"`
		} `json:"token"`
		Amount struct {
			Amount   string `json:"amount"`
			Decimals int    `json:"decimals"`
		} `json:"amount"`
	} `json:"balances"`
}

// Native returns the address's native-currency balance in human units, or
// zero when the query fails or the asset is absent from the result set.
func (c *Checker) Native(ctx context.Context, address string) float64 {
	endpoint := c.base.JoinPath("/v2/evm/token-balances", c.network, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		c.logger.Warn("balance request build failed", "address", address, "error", err)
		return 0
	}

	bearer, err := c.signer.SignRequest(http.MethodGet, endpoint.Path)
	if err != nil {
		c.logger.Warn("balance request signing failed", "address", address, "error", err)
		return 0
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("balance query failed", "address", address, "error", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("balance query returned non-200", "address", address, "status", resp.StatusCode)
		return 0
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("balance response read failed", "address", address, "error", err)
		return 0
	}

	var payload balancePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("balance response decode failed", "address", address, "error", err)
		return 0
	}

	for _, entry := range payload.Balances {
		if !strings.EqualFold(entry.Token.ContractAddress, nativePlaceholder) {
			continue
		}
		if !strings.EqualFold(entry.Token.Symbol, nativeSymbol) {
			continue
		}
		return toHuman(entry.Amount.Amount, entry.Amount.Decimals)
	}
	return 0
}

// toHuman scales an integer base-unit amount down by the asset's decimals.
func toHuman(amount string, decimals int) float64 {
	units, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Float).Quo(new(big.Float).SetInt(units), new(big.Float).SetInt(scale))
	human, _ := value.Float64()
	return human
}
