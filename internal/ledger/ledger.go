package ledger

import (
	"context"
	"errors"
	"time"
)

// Transaction types recorded in the log. A transfer always writes one
// transfer_out on the source wallet and one transfer_in on the destination.
const (
	TypeDeposit     = "deposit"
	TypeWithdraw    = "withdraw"
	TypeTransferOut = "transfer_out"
	TypeTransferIn  = "transfer_in"
)

var (
	// ErrNotFound indicates the wallet identifier is unknown.
	ErrNotFound = errors.New("wallet not found")

	// ErrInvalidAmount rejects non-positive operation amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidTransfer rejects transfers where source and destination match.
	ErrInvalidTransfer = errors.New("cannot transfer to the same wallet")

	// ErrInsufficientFunds occurs when a withdrawal or transfer exceeds the
	// source wallet's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidRange rejects history filters whose lower bound exceeds the upper.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrBusy indicates a wallet lock could not be acquired within the bounded
	// wait. It is the only retryable error in the taxonomy.
	ErrBusy = errors.New("wallet busy")

	// ErrInvariantViolation is the store's defensive guard against a negative
	// balance reaching durable state. Unreachable under correct engine
	// operation; treated as fatal to the request and logged.
	ErrInvariantViolation = errors.New("balance invariant violation")
)

// Wallet is an account holding a non-negative balance in the smallest
// currency unit. The balance is a projection of the wallet's transaction
// history: replaying the log in id order always reproduces it. OwnerID and
// Name are optional labels set at creation; the ledger never interprets them.
type Wallet struct {
	ID        string
	OwnerID   string
	Name      string
	Balance   int64
	CreatedAt time.Time
}

// Transaction is one immutable record of a balance-affecting event.
// CounterpartyWalletID is set only on transfer records and names the other
// half of the transfer pair; the pair shares a creation timestamp.
type Transaction struct {
	ID                   int64
	WalletID             string
	Type                 string
	Amount               int64
	BalanceAfter         int64
	CounterpartyWalletID string
	CreatedAt            time.Time
}

// Signed returns the amount with the sign it contributes to the wallet's
// balance: deposits and incoming transfers positive, withdrawals and
// outgoing transfers negative.
func (t Transaction) Signed() int64 {
	switch t.Type {
	case TypeWithdraw, TypeTransferOut:
		return -t.Amount
	default:
		return t.Amount
	}
}

// Record is the payload handed to TransactionLog.Append; the log assigns the
// id at write time.
type Record struct {
	WalletID             string
	Type                 string
	Amount               int64
	BalanceAfter         int64
	CounterpartyWalletID string
	CreatedAt            time.Time
}

// Filter narrows a wallet's history. Zero values mean "no bound"; time bounds
// are inclusive.
type Filter struct {
	Type string
	From time.Time
	To   time.Time
}

// Validate reports ErrInvalidRange when the bounds cross.
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return ErrInvalidRange
	}
	return nil
}

// Page applies offset/limit after filtering. Limit <= 0 means unlimited at
// the store level; the query engine caps it before it gets here.
type Page struct {
	Offset int
	Limit  int
}

// WalletStore is the durable record of wallet identity and current balance.
type WalletStore interface {
	// Create allocates a new identifier with a zero balance. ownerID and
	// name may be empty.
	Create(ctx context.Context, ownerID, name string) (Wallet, error)
	// Get returns ErrNotFound for unknown identifiers.
	Get(ctx context.Context, walletID string) (Wallet, error)
	// SetBalance is called only by the engine inside Store.InTx. It returns
	// ErrInvariantViolation for a negative balance.
	SetBalance(ctx context.Context, walletID string, balance int64) error
}

// TransactionLog is the durable, append-only transaction history. Append is
// the only write; no update or delete exists.
type TransactionLog interface {
	// Append assigns the next monotonically increasing id and persists the
	// record.
	Append(ctx context.Context, rec Record) (Transaction, error)
	// ListByWallet returns one wallet's records matching the filter, ordered
	// by id ascending, with offset/limit applied after filtering. Each call
	// re-queries the store.
	ListByWallet(ctx context.Context, walletID string, f Filter, p Page) ([]Transaction, error)
}

// Store binds both halves of the ledger to one durable backend.
type Store interface {
	Wallets() WalletStore
	Log() TransactionLog
	// InTx runs fn inside a single atomic boundary: every SetBalance and
	// Append issued through the passed views commits as a unit, or leaves no
	// trace when fn returns an error. No reader ever observes a partial
	// boundary.
	InTx(ctx context.Context, fn func(WalletStore, TransactionLog) error) error
}
