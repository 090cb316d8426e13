package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nono-wallet/nono_wallet/internal/history"
)

// RegisterHistoryRoutes wires transaction listing and export endpoints.
func RegisterHistoryRoutes(r fiber.Router, h *history.Handler) {
	r.Get("/wallets/:walletId/transactions", h.List)
	r.Get("/wallets/:walletId/transactions/export", h.Export)
}
