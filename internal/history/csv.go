package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
)

// CSVWriter renders transaction records as CSV rows, one record at a time.
// It consumes query engine output and performs no ledger logic.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

var csvHeader = []string{"id", "wallet_id", "type", "amount", "balance_after", "counterparty_wallet_id", "created_at"}

// NewCSVWriter wraps the destination writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write emits one record, writing the header first when needed.
func (c *CSVWriter) Write(tx ledger.Transaction) error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write([]string{
		strconv.FormatInt(tx.ID, 10),
		tx.WalletID,
		tx.Type,
		strconv.FormatInt(tx.Amount, 10),
		strconv.FormatInt(tx.BalanceAfter, 10),
		tx.CounterpartyWalletID,
		tx.CreatedAt.Format(time.RFC3339Nano),
	})
}

// Flush writes any buffered rows, emitting the header even for an empty
// result so the file is never blank.
func (c *CSVWriter) Flush() error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	c.w.Flush()
	return c.w.Error()
}
