package routes

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nono-wallet/nono_wallet/internal/config"
	"github.com/nono-wallet/nono_wallet/internal/logging"
)

const testKey = "test-api-key"

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppName:  "nono-wallet",
		AppEnv:   "development",
		APIKey:   testKey,
		LockWait: time.Second,
	}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-API-Key", testKey)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded := map[string]any{}
	if len(payload) > 0 && strings.Contains(resp.Header.Get(fiber.HeaderContentType), "json") {
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestRequestsWithoutAPIKeyRejected(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/wallets", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}

func TestWalletLifecycleOverHTTP(t *testing.T) {
	app := setupApp(t)

	status, created := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets", `{}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create wallet: status %d", status)
	}
	walletID, _ := created["id"].(string)
	if walletID == "" {
		t.Fatalf("wallet id missing: %v", created)
	}

	status, dep := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets/"+walletID+"/deposit", `{"amount":200}`)
	if status != fiber.StatusCreated {
		t.Fatalf("deposit: status %d body %v", status, dep)
	}
	if dep["balance"].(float64) != 200 {
		t.Fatalf("deposit balance = %v", dep["balance"])
	}

	status, wd := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets/"+walletID+"/withdraw", `{"amount":50}`)
	if status != fiber.StatusCreated {
		t.Fatalf("withdraw: status %d body %v", status, wd)
	}
	if wd["balance"].(float64) != 150 {
		t.Fatalf("withdraw balance = %v", wd["balance"])
	}

	status, bal := doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/"+walletID+"/balance", "")
	if status != fiber.StatusOK || bal["balance"].(float64) != 150 {
		t.Fatalf("balance: status %d body %v", status, bal)
	}

	status, list := doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/"+walletID+"/transactions", "")
	if status != fiber.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	txs := list["transactions"].([]any)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	first := txs[0].(map[string]any)
	second := txs[1].(map[string]any)
	if first["balance_after"].(float64) != 200 || second["balance_after"].(float64) != 150 {
		t.Fatalf("balance_after sequence wrong: %v then %v", first["balance_after"], second["balance_after"])
	}
}

func TestWithdrawBeyondBalanceOverHTTP(t *testing.T) {
	app := setupApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets", `{"initial_deposit":100}`)
	walletID := created["id"].(string)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets/"+walletID+"/withdraw", `{"amount":150}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}

	_, bal := doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/"+walletID+"/balance", "")
	if bal["balance"].(float64) != 100 {
		t.Fatalf("balance changed after failed withdraw: %v", bal["balance"])
	}
}

func TestTransferOverHTTP(t *testing.T) {
	app := setupApp(t)

	_, a := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets", `{"initial_deposit":100}`)
	_, b := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets", `{}`)
	aID := a["id"].(string)
	bID := b["id"].(string)

	body := fmt.Sprintf(`{"from_wallet_id":%q,"to_wallet_id":%q,"amount":75}`, aID, bID)
	status, res := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", body)
	if status != fiber.StatusCreated {
		t.Fatalf("transfer: status %d body %v", status, res)
	}
	if res["from_balance"].(float64) != 25 || res["to_balance"].(float64) != 75 {
		t.Fatalf("unexpected balances: %v", res)
	}

	_, outList := doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/"+aID+"/transactions?type=transfer_out", "")
	outs := outList["transactions"].([]any)
	if len(outs) != 1 {
		t.Fatalf("expected one transfer_out, got %d", len(outs))
	}
	if outs[0].(map[string]any)["counterparty_wallet_id"].(string) != bID {
		t.Fatalf("counterparty mismatch: %v", outs[0])
	}

	selfBody := fmt.Sprintf(`{"from_wallet_id":%q,"to_wallet_id":%q,"amount":10}`, aID, aID)
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", selfBody)
	if status != fiber.StatusBadRequest {
		t.Fatalf("self transfer: expected 400, got %d", status)
	}
}

func TestExportCSVOverHTTP(t *testing.T) {
	app := setupApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/v1/wallets", `{"initial_deposit":300}`)
	walletID := created["id"].(string)
	doJSON(t, app, fiber.MethodPost, "/api/v1/wallets/"+walletID+"/withdraw", `{"amount":100}`)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/wallets/"+walletID+"/transactions/export", nil)
	req.Header.Set("X-API-Key", testKey)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.Contains(ct, "text/csv") {
		t.Fatalf("content type %q", ct)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "deposit" || rows[2][2] != "withdraw" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestListUnknownWalletOverHTTP(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/missing/transactions", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/wallets/missing/transactions?from=2025-02-02T00:00:00Z&to=2025-01-01T00:00:00Z", "")
	if status != fiber.StatusNotFound && status != fiber.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", status)
	}
}
