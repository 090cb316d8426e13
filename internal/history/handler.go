package history

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
)

// Handler exposes transaction listing and CSV export endpoints over the
// query engine.
type Handler struct {
	queries *ledger.QueryEngine
	logger  *slog.Logger
}

// NewHandler builds a history handler.
func NewHandler(queries *ledger.QueryEngine, logger *slog.Logger) *Handler {
	return &Handler{queries: queries, logger: logger}
}

type transactionResponse struct {
	ID                   int64     `json:"id"`
	WalletID             string    `json:"wallet_id"`
	Type                 string    `json:"type"`
	Amount               int64     `json:"amount"`
	BalanceAfter         int64     `json:"balance_after"`
	CounterpartyWalletID string    `json:"counterparty_wallet_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// List returns one page of a wallet's history as JSON.
func (h *Handler) List(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	page := ledger.Page{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	records, err := h.queries.List(c.UserContext(), walletID, filter, page)
	if err != nil {
		return mapError(err)
	}

	out := make([]transactionResponse, 0, len(records))
	for _, tx := range records {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id":    walletID,
		"transactions": out,
	})
}

// Export streams the wallet's filtered history as CSV. Validation happens
// before the status line is committed; failures mid-stream can only be
// logged and the stream truncated.
func (h *Handler) Export(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	if err := h.queries.Validate(c.UserContext(), walletID, filter); err != nil {
		return mapError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions-`+walletID+`.csv"`)

	queries := h.queries
	logger := h.logger
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The request context is gone once streaming starts.
		ctx, cancel := contextWithExportTimeout()
		defer cancel()

		sink := NewCSVWriter(w)
		err := queries.Export(ctx, walletID, filter, func(tx ledger.Transaction) error {
			return sink.Write(tx)
		})
		if err == nil {
			err = sink.Flush()
		}
		if err != nil && logger != nil {
			logger.Error("csv export aborted", slog.String("wallet_id", walletID), slog.Any("error", err))
		}
	})
	return nil
}

// exportTimeout bounds a single CSV export end to end.
const exportTimeout = 5 * time.Minute

func contextWithExportTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), exportTimeout)
}

func parseFilter(c *fiber.Ctx) (ledger.Filter, error) {
	var f ledger.Filter

	if typ := c.Query("type"); typ != "" {
		switch typ {
		case ledger.TypeDeposit, ledger.TypeWithdraw, ledger.TypeTransferOut, ledger.TypeTransferIn:
			f.Type = typ
		default:
			return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "unknown transaction type "+typ)
		}
	}
	if from := c.Query("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "from must be RFC3339")
		}
		f.From = ts
	}
	if to := c.Query("to"); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "to must be RFC3339")
		}
		f.To = ts
	}
	return f, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "wallet not found")
	case errors.Is(err, ledger.ErrInvalidRange):
		return fiber.NewError(http.StatusBadRequest, "from must not be after to")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func toResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                   tx.ID,
		WalletID:             tx.WalletID,
		Type:                 tx.Type,
		Amount:               tx.Amount,
		BalanceAfter:         tx.BalanceAfter,
		CounterpartyWalletID: tx.CounterpartyWalletID,
		CreatedAt:            tx.CreatedAt,
	}
}
