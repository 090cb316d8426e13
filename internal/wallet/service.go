package wallet

import (
	"context"
	"time"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
)

// Service exposes wallet provisioning and balance reads over the ledger
// engine.
type Service struct {
	engine *ledger.Engine
}

// NewService builds a wallet service instance.
func NewService(engine *ledger.Engine) *Service {
	return &Service{engine: engine}
}

// CreateInput captures data required to create a wallet. OwnerID and Name are
// optional labels stored on the wallet. An InitialDeposit greater than zero
// funds the wallet right after creation and shows up in the history as an
// ordinary deposit.
type CreateInput struct {
	OwnerID        string
	Name           string
	InitialDeposit int64
}

// Balance encapsulates available funds for a wallet.
type Balance struct {
	WalletID string
	Amount   int64
	AsOf     time.Time
}

// Create provisions a wallet, optionally applying an initial deposit.
func (s *Service) Create(ctx context.Context, input CreateInput) (ledger.Wallet, error) {
	if input.InitialDeposit < 0 {
		return ledger.Wallet{}, ledger.ErrInvalidAmount
	}
	w, err := s.engine.CreateWallet(ctx, input.OwnerID, input.Name)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if input.InitialDeposit > 0 {
		tx, err := s.engine.Deposit(ctx, w.ID, input.InitialDeposit)
		if err != nil {
			return ledger.Wallet{}, err
		}
		w.Balance = tx.BalanceAfter
	}
	return w, nil
}

// Get retrieves the wallet record.
func (s *Service) Get(ctx context.Context, id string) (ledger.Wallet, error) {
	return s.engine.GetBalance(ctx, id)
}

// Balance returns the wallet's current balance.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	w, err := s.engine.GetBalance(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: w.ID, Amount: w.Balance, AsOf: time.Now().UTC()}, nil
}
