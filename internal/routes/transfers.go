package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p2d/serverwallet/internal/dispatch"
)

// RegisterTransferRoutes wires the transfer dispatch endpoints.
func RegisterTransferRoutes(r fiber.Router, h *dispatch.Handler) {
	r.Post("/send", h.Send)
	r.Post("/reward", h.Reward)
}
