package dispatch

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/p2d/serverwallet/internal/transfer"
)

// Handler exposes the transfer endpoints. Both routes run the same dispatch
// workflow under different policies.
type Handler struct {
	service *Service
	send    Policy
	reward  Policy
}

// NewHandler builds the dispatch HTTP handler.
func NewHandler(service *Service, send, reward Policy) *Handler {
	return &Handler{service: service, send: send, reward: reward}
}

// amountField decodes a JSON amount given either as a number or as a numeric
// string, keeping the request's textual form either way.
type amountField struct {
	json.Number
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.Number = json.Number(s)
		return nil
	}
	return json.Unmarshal(b, &a.Number)
}

type sendRequest struct {
	To     string      `json:"to"`
	Amount amountField `json:"amount"`
}

type rewardRequest struct {
	To string `json:"to"`
}

// Send dispatches a caller-specified amount to the recipient.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid JSON body")
	}
	if req.To == "" || req.Amount.Number == "" {
		return fiber.NewError(http.StatusBadRequest, "Missing `to` or `amount`")
	}

	value, err := req.Amount.Float64()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "`amount` must be a number")
	}
	if value <= 0 {
		return fiber.NewError(http.StatusBadRequest, "Amount must be positive")
	}
	if _, err := transfer.ParseAddress(req.To); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Dispatch(c.UserContext(), h.send, req.To, req.Amount.String())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":           "completed",
		"transaction_hash": result.Hash,
		"amount":           result.Plan.AmountLabel(),
	})
}

// Reward dispatches a balance-conditioned reward to the recipient.
func (h *Handler) Reward(c *fiber.Ctx) error {
	var req rewardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid JSON body")
	}
	if req.To == "" {
		return fiber.NewError(http.StatusBadRequest, "Missing `to`")
	}
	if _, err := transfer.ParseAddress(req.To); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Dispatch(c.UserContext(), h.reward, req.To, "")
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":           "completed",
		"transaction_hash": result.Hash,
		"reward_type":      result.Plan.RewardKind,
		"reward_amount":    result.Plan.AmountText,
		"amount":           result.Plan.AmountLabel(),
	})
}
