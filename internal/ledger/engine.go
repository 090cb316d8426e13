package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultLockWait bounds how long a mutation waits on a contended wallet
// before failing with ErrBusy.
const DefaultLockWait = 5 * time.Second

// Engine applies balance mutations against the store. It is the sole writer:
// every mutation funnels through a per-wallet exclusive lock and a single
// Store.InTx boundary, so operations are atomic and same-wallet operations
// are totally ordered. Reads bypass the locks; both backends provide
// point-in-time consistent reads.
type Engine struct {
	store    Store
	locks    *lockTable
	logger   *slog.Logger
	lockWait time.Duration
}

// NewEngine builds the ledger engine. A lockWait <= 0 falls back to
// DefaultLockWait.
func NewEngine(store Store, logger *slog.Logger, lockWait time.Duration) *Engine {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Engine{store: store, locks: newLockTable(), logger: logger, lockWait: lockWait}
}

// TransferResult pairs the two records written by a transfer.
type TransferResult struct {
	Out Transaction
	In  Transaction
}

// CreateWallet provisions a wallet with a zero balance. No transaction record
// is written; a wallet starts with no history.
func (e *Engine) CreateWallet(ctx context.Context, ownerID, name string) (Wallet, error) {
	return e.store.Wallets().Create(ctx, ownerID, name)
}

// GetBalance reads the wallet without taking its lock.
func (e *Engine) GetBalance(ctx context.Context, walletID string) (Wallet, error) {
	return e.store.Wallets().Get(ctx, walletID)
}

// Deposit credits the wallet and appends the matching record in one atomic
// boundary. Returns the appended record; its BalanceAfter is the new balance.
func (e *Engine) Deposit(ctx context.Context, walletID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if err := e.locks.acquire(walletID, e.lockWait); err != nil {
		return Transaction{}, err
	}
	defer e.locks.release(walletID)

	var appended Transaction
	now := time.Now().UTC()
	err := e.store.InTx(ctx, func(wallets WalletStore, log TransactionLog) error {
		w, err := wallets.Get(ctx, walletID)
		if err != nil {
			return err
		}
		newBalance := w.Balance + amount
		if err := wallets.SetBalance(ctx, walletID, newBalance); err != nil {
			return err
		}
		appended, err = log.Append(ctx, Record{
			WalletID:     walletID,
			Type:         TypeDeposit,
			Amount:       amount,
			BalanceAfter: newBalance,
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		return Transaction{}, e.fail("deposit", walletID, err)
	}
	return appended, nil
}

// Withdraw debits the wallet, failing with ErrInsufficientFunds and no
// mutation when the balance cannot cover the amount.
func (e *Engine) Withdraw(ctx context.Context, walletID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if err := e.locks.acquire(walletID, e.lockWait); err != nil {
		return Transaction{}, err
	}
	defer e.locks.release(walletID)

	var appended Transaction
	now := time.Now().UTC()
	err := e.store.InTx(ctx, func(wallets WalletStore, log TransactionLog) error {
		w, err := wallets.Get(ctx, walletID)
		if err != nil {
			return err
		}
		if w.Balance < amount {
			return ErrInsufficientFunds
		}
		newBalance := w.Balance - amount
		if err := wallets.SetBalance(ctx, walletID, newBalance); err != nil {
			return err
		}
		appended, err = log.Append(ctx, Record{
			WalletID:     walletID,
			Type:         TypeWithdraw,
			Amount:       amount,
			BalanceAfter: newBalance,
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		return Transaction{}, e.fail("withdraw", walletID, err)
	}
	return appended, nil
}

// Transfer moves amount between two wallets as one atomic boundary spanning
// both: two balance updates and a transfer_out/transfer_in record pair
// sharing a timestamp. Both wallet locks are taken in ascending identifier
// order regardless of argument position, which is the sole deadlock
// prevention mechanism.
func (e *Engine) Transfer(ctx context.Context, fromID, toID string, amount int64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	if fromID == toID {
		return TransferResult{}, ErrInvalidTransfer
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	if err := e.locks.acquire(first, e.lockWait); err != nil {
		return TransferResult{}, err
	}
	defer e.locks.release(first)
	if err := e.locks.acquire(second, e.lockWait); err != nil {
		return TransferResult{}, err
	}
	defer e.locks.release(second)

	var result TransferResult
	now := time.Now().UTC()
	err := e.store.InTx(ctx, func(wallets WalletStore, log TransactionLog) error {
		from, err := wallets.Get(ctx, fromID)
		if err != nil {
			return err
		}
		to, err := wallets.Get(ctx, toID)
		if err != nil {
			return err
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}
		if err := wallets.SetBalance(ctx, fromID, from.Balance-amount); err != nil {
			return err
		}
		if err := wallets.SetBalance(ctx, toID, to.Balance+amount); err != nil {
			return err
		}
		result.Out, err = log.Append(ctx, Record{
			WalletID:             fromID,
			Type:                 TypeTransferOut,
			Amount:               amount,
			BalanceAfter:         from.Balance - amount,
			CounterpartyWalletID: toID,
			CreatedAt:            now,
		})
		if err != nil {
			return err
		}
		result.In, err = log.Append(ctx, Record{
			WalletID:             toID,
			Type:                 TypeTransferIn,
			Amount:               amount,
			BalanceAfter:         to.Balance + amount,
			CounterpartyWalletID: fromID,
			CreatedAt:            now,
		})
		return err
	})
	if err != nil {
		return TransferResult{}, e.fail("transfer", fromID, err)
	}
	return result, nil
}

// fail logs invariant violations before propagating; they indicate corrupted
// engine state and must never pass silently.
func (e *Engine) fail(op, walletID string, err error) error {
	if errors.Is(err, ErrInvariantViolation) && e.logger != nil {
		e.logger.Error("ledger invariant violated",
			slog.String("op", op),
			slog.String("wallet_id", walletID),
			slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}
