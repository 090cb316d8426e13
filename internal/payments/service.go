package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/nono-wallet/nono_wallet/internal/ledger"
	"github.com/nono-wallet/nono_wallet/internal/notification"
)

// Service posts wallet-to-wallet transfers through the ledger engine.
type Service struct {
	engine   *ledger.Engine
	notifier notification.Notifier
}

// NewService constructs a payment service.
func NewService(engine *ledger.Engine, notifier notification.Notifier) *Service {
	return &Service{engine: engine, notifier: notifier}
}

// TransferInput captures the data needed to move funds between wallets.
type TransferInput struct {
	FromWalletID string
	ToWalletID   string
	Amount       int64
}

// TransferResult describes the ledger outcome of a transfer: the paired
// transfer_out/transfer_in record ids and both resulting balances.
type TransferResult struct {
	OutTransactionID int64
	InTransactionID  int64
	FromBalance      int64
	ToBalance        int64
	CompletedAt      time.Time
}

// Transfer posts the balanced record pair between two wallets.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	res, err := s.engine.Transfer(ctx, input.FromWalletID, input.ToWalletID, input.Amount)
	if err != nil {
		return TransferResult{}, err
	}

	outcome := TransferResult{
		OutTransactionID: res.Out.ID,
		InTransactionID:  res.In.ID,
		FromBalance:      res.Out.BalanceAfter,
		ToBalance:        res.In.BalanceAfter,
		CompletedAt:      res.Out.CreatedAt,
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:     notification.KindTransferReceived,
			WalletID: input.ToWalletID,
			Body:     fmt.Sprintf("You received %d from wallet %s", input.Amount, input.FromWalletID),
		})
	}

	return outcome, nil
}
