package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/p2d/serverwallet/internal/logging"
	"github.com/p2d/serverwallet/internal/middleware"
	"github.com/p2d/serverwallet/internal/platform"
	"github.com/p2d/serverwallet/internal/transfer"
	"github.com/p2d/serverwallet/internal/wallet"
)

type fakeAccounts struct {
	calls int
}

func (f *fakeAccounts) Account(_ context.Context, name string) (wallet.Resolution, error) {
	f.calls++
	return wallet.Resolution{Address: "0xowner", Name: name, Outcome: wallet.OutcomeFound}, nil
}

func (f *fakeAccounts) SmartAccount(_ context.Context, name, _ string) (wallet.Resolution, error) {
	f.calls++
	return wallet.Resolution{Address: "0xsmart", Name: name, Outcome: wallet.OutcomeFound}, nil
}

type fakeSubmitter struct {
	err   error
	calls []submission
}

type submission struct {
	smartAccount string
	network      string
	calls        []transfer.Call
}

func (f *fakeSubmitter) SendUserOperation(_ context.Context, smartAccount, network string, calls []transfer.Call) (platform.UserOperation, error) {
	f.calls = append(f.calls, submission{smartAccount: smartAccount, network: network, calls: calls})
	if f.err != nil {
		return platform.UserOperation{}, f.err
	}
	return platform.UserOperation{Hash: "0xop", Status: "broadcast"}, nil
}

type testEnv struct {
	app       *fiber.App
	accounts  *fakeAccounts
	submitter *fakeSubmitter
	balance   *staticBalance
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	accounts := &fakeAccounts{}
	submitter := &fakeSubmitter{}
	bal := &staticBalance{}

	service := NewService(accounts, submitter, nil, logging.Discard(), Config{
		Network:          "base-sepolia",
		OwnerName:        "p2d-owner",
		SmartAccountName: "p2d-smart",
	})
	handler := NewHandler(service, FixedTransfer(transfer.USDC), Reward(bal, testRewardAmounts()))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.JSONError})
	app.Post("/send", handler.Send)
	app.Post("/reward", handler.Reward)

	return &testEnv{app: app, accounts: accounts, submitter: submitter, balance: bal}
}

func (e *testEnv) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode body %q: %v", payload, err)
	}
	return resp.StatusCode, decoded
}

func TestSendMissingToRejected(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/send", `{"amount": 1.0}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Missing `to` or `amount`" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestSendMissingAmountRejected(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/send", `{"to": "`+testRecipient+`"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Missing `to` or `amount`" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestSendNonPositiveAmountRejected(t *testing.T) {
	env := newTestEnv(t)

	for _, amount := range []string{"0", "-1.5"} {
		status, _ := env.post(t, "/send", `{"to": "`+testRecipient+`", "amount": `+amount+`}`)
		if status != fiber.StatusBadRequest {
			t.Fatalf("amount %s: expected 400, got %d", amount, status)
		}
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestSendNonNumericAmountRejected(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.post(t, "/send", `{"to": "`+testRecipient+`", "amount": "lots"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestSendMalformedBodyRejected(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/send", `{"to": `)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Invalid JSON body" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestSendStringAmountAccepted(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/send", `{"to": "`+testRecipient+`", "amount": "1.0"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["amount"] != "1.0 USDC" {
		t.Fatalf("unexpected amount %q", body["amount"])
	}
	if len(env.submitter.calls) != 1 {
		t.Fatalf("expected one submission, got %d", len(env.submitter.calls))
	}
}

func TestSendCompletes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/send", `{"to": "`+testRecipient+`", "amount": 1.0}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "completed" {
		t.Fatalf("unexpected status %q", body["status"])
	}
	if body["transaction_hash"] != "0xop" {
		t.Fatalf("unexpected hash %q", body["transaction_hash"])
	}
	if body["amount"] != "1.0 USDC" {
		t.Fatalf("unexpected amount %q", body["amount"])
	}

	if len(env.submitter.calls) != 1 {
		t.Fatalf("expected one submission, got %d", len(env.submitter.calls))
	}
	sub := env.submitter.calls[0]
	if sub.smartAccount != "0xsmart" || sub.network != "base-sepolia" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if len(sub.calls) != 1 || sub.calls[0].To != transfer.USDC.Contract {
		t.Fatalf("expected an ERC-20 call, got %+v", sub.calls)
	}
}

func TestSendDownstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.submitter.err = errors.New("provider exploded")

	status, body := env.post(t, "/send", `{"to": "`+testRecipient+`", "amount": 1.0}`)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "provider exploded") {
		t.Fatalf("expected failure text in error, got %q", msg)
	}

	// No retry, no second attempt.
	if len(env.submitter.calls) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(env.submitter.calls))
	}
}

func TestRewardMissingToRejected(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/reward", `{}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Missing `to`" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if env.accounts.calls != 0 || len(env.submitter.calls) != 0 {
		t.Fatal("expected no downstream calls")
	}
}

func TestRewardMalformedBodyRejected(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.post(t, "/reward", `not json`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Invalid JSON body" {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestRewardNewRecipientGetsNative(t *testing.T) {
	env := newTestEnv(t)
	env.balance.value = 0

	status, body := env.post(t, "/reward", `{"to": "`+testRecipient+`"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["reward_type"] != "eth" {
		t.Fatalf("expected eth reward, got %q", body["reward_type"])
	}
	if body["amount"] != "0.00001 ETH" {
		t.Fatalf("unexpected amount %q", body["amount"])
	}

	sub := env.submitter.calls[0]
	if sub.calls[0].To != testRecipient || sub.calls[0].Data != "" {
		t.Fatalf("expected native transfer to recipient, got %+v", sub.calls[0])
	}
}

func TestRewardExistingRecipientGetsToken(t *testing.T) {
	env := newTestEnv(t)
	env.balance.value = 0.25

	status, body := env.post(t, "/reward", `{"to": "`+testRecipient+`"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["reward_type"] != "usdc" {
		t.Fatalf("expected usdc reward, got %q", body["reward_type"])
	}
	if body["amount"] != "0.01 USDC" {
		t.Fatalf("unexpected amount %q", body["amount"])
	}

	sub := env.submitter.calls[0]
	if sub.calls[0].To != transfer.USDC.Contract {
		t.Fatalf("expected token contract call, got %+v", sub.calls[0])
	}
}
