package history

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
)

func TestCSVWriterRendersRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	when := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	records := []ledger.Transaction{
		{ID: 1, WalletID: "w1", Type: ledger.TypeDeposit, Amount: 200, BalanceAfter: 200, CreatedAt: when},
		{ID: 2, WalletID: "w1", Type: ledger.TypeTransferOut, Amount: 50, BalanceAfter: 150, CounterpartyWalletID: "w2", CreatedAt: when.Add(time.Minute)},
	}
	for _, tx := range records {
		if err := w.Write(tx); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][6] != "created_at" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "deposit" || rows[1][3] != "200" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][5] != "w2" {
		t.Fatalf("counterparty column missing: %v", rows[2])
	}
}

func TestCSVWriterEmptyExportStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
