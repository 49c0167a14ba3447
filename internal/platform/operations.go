package platform

import (
	"context"
	"net/http"
	"net/url"

	"github.com/p2d/serverwallet/internal/transfer"
)

// UserOperation is the handle returned for a submitted user operation. The
// hash is passed through to clients unmodified.
type UserOperation struct {
	Hash   string `json:"userOpHash"`
	Status string `json:"status"`
}

type operationCall struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data,omitempty"`
}

// SendUserOperation submits the calls as a single user operation from the
// smart account on the given network.
func (c *Client) SendUserOperation(ctx context.Context, smartAccount, network string, calls []transfer.Call) (UserOperation, error) {
	wireCalls := make([]operationCall, 0, len(calls))
	for _, call := range calls {
		value := "0"
		if call.Value != nil {
			value = call.Value.String()
		}
		wireCalls = append(wireCalls, operationCall{To: call.To, Value: value, Data: call.Data})
	}

	body := map[string]any{
		"network": network,
		"calls":   wireCalls,
	}

	path := "/v2/evm/smart-accounts/" + url.PathEscape(smartAccount) + "/user-operations"
	var out UserOperation
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return UserOperation{}, err
	}
	return out, nil
}
