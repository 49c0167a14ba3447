package platform

import (
	"context"
	"net/http"
)

// RequestFaucet asks the testnet faucet to deposit the given token into the
// address and returns the resulting transaction hash.
func (c *Client) RequestFaucet(ctx context.Context, address, network, token string) (string, error) {
	body := map[string]string{
		"address": address,
		"network": network,
		"token":   token,
	}
	var out struct {
		TransactionHash string `json:"transactionHash"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/evm/faucet", body, &out); err != nil {
		return "", err
	}
	return out.TransactionHash, nil
}
