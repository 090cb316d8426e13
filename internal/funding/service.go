package funding

import (
	"context"
	"time"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
)

// Service coordinates deposits into and withdrawals out of wallets through
// the ledger engine.
type Service struct {
	engine *ledger.Engine
}

// NewService prepares a funding service.
func NewService(engine *ledger.Engine) *Service {
	return &Service{engine: engine}
}

// Result represents the domain outcome of a funding operation.
type Result struct {
	TransactionID int64
	WalletID      string
	Type          string
	Amount        int64
	Balance       int64
	CompletedAt   time.Time
}

// Deposit credits the wallet.
func (s *Service) Deposit(ctx context.Context, walletID string, amount int64) (Result, error) {
	tx, err := s.engine.Deposit(ctx, walletID, amount)
	if err != nil {
		return Result{}, err
	}
	return toResult(tx), nil
}

// Withdraw debits the wallet.
func (s *Service) Withdraw(ctx context.Context, walletID string, amount int64) (Result, error) {
	tx, err := s.engine.Withdraw(ctx, walletID, amount)
	if err != nil {
		return Result{}, err
	}
	return toResult(tx), nil
}

func toResult(tx ledger.Transaction) Result {
	return Result{
		TransactionID: tx.ID,
		WalletID:      tx.WalletID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Balance:       tx.BalanceAfter,
		CompletedAt:   tx.CreatedAt,
	}
}
