package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nono-wallet/nono_wallet/internal/payments"
)

// RegisterPaymentRoutes wires transfer endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/transfers", h.Transfer)
}
