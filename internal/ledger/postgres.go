package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// WalletStore / TransactionLog code serve plain reads and transactional
// writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists the ledger in PostgreSQL. InTx maps the atomic
// boundary onto one database transaction; wallet reads inside the boundary
// take FOR UPDATE row locks, so the data stays consistent even if a second
// process writes to the same database.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the wallet and transaction tables when absent. The
// CHECK constraints mirror the store contract: balances never negative,
// amounts strictly positive, history append-only via a bigserial id.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS wallets (
            id UUID PRIMARY KEY,
            owner_id TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT '',
            balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE TABLE IF NOT EXISTS transactions (
            id BIGSERIAL PRIMARY KEY,
            wallet_id UUID NOT NULL REFERENCES wallets (id),
            type TEXT NOT NULL CHECK (type IN ('deposit','withdraw','transfer_out','transfer_in')),
            amount BIGINT NOT NULL CHECK (amount > 0),
            balance_after BIGINT NOT NULL CHECK (balance_after >= 0),
            counterparty_wallet_id UUID,
            created_at TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_transactions_wallet_id ON transactions (wallet_id, id);`
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) Wallets() WalletStore { return pgWallets{q: s.db} }
func (s *PostgresStore) Log() TransactionLog  { return pgLog{q: s.db} }

func (s *PostgresStore) InTx(ctx context.Context, fn func(WalletStore, TransactionLog) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(pgWallets{q: tx, forUpdate: true}, pgLog{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgWallets struct {
	q         querier
	forUpdate bool
}

func (w pgWallets) Create(ctx context.Context, ownerID, name string) (Wallet, error) {
	id := uuid.New()
	var created Wallet
	var createdID uuid.UUID
	row := w.q.QueryRow(ctx, `INSERT INTO wallets (id, owner_id, name, balance) VALUES ($1, $2, $3, 0)
        RETURNING id, owner_id, name, balance, created_at`, id, ownerID, name)
	if err := row.Scan(&createdID, &created.OwnerID, &created.Name, &created.Balance, &created.CreatedAt); err != nil {
		return Wallet{}, err
	}
	created.ID = createdID.String()
	created.CreatedAt = created.CreatedAt.UTC()
	return created, nil
}

func (w pgWallets) Get(ctx context.Context, walletID string) (Wallet, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	query := `SELECT id, owner_id, name, balance, created_at FROM wallets WHERE id = $1`
	if w.forUpdate {
		query += ` FOR UPDATE`
	}
	var out Wallet
	var outID uuid.UUID
	if err := w.q.QueryRow(ctx, query, id).Scan(&outID, &out.OwnerID, &out.Name, &out.Balance, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	out.ID = outID.String()
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}

func (w pgWallets) SetBalance(ctx context.Context, walletID string, balance int64) error {
	if balance < 0 {
		return ErrInvariantViolation
	}
	id, err := uuid.Parse(walletID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := w.q.Exec(ctx, `UPDATE wallets SET balance = $2 WHERE id = $1`, id, balance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgLog struct {
	q querier
}

func (l pgLog) Append(ctx context.Context, rec Record) (Transaction, error) {
	walletID, err := uuid.Parse(rec.WalletID)
	if err != nil {
		return Transaction{}, ErrNotFound
	}
	var counterparty *uuid.UUID
	if rec.CounterpartyWalletID != "" {
		cp, err := uuid.Parse(rec.CounterpartyWalletID)
		if err != nil {
			return Transaction{}, ErrNotFound
		}
		counterparty = &cp
	}

	tx := Transaction{
		WalletID:             rec.WalletID,
		Type:                 rec.Type,
		Amount:               rec.Amount,
		BalanceAfter:         rec.BalanceAfter,
		CounterpartyWalletID: rec.CounterpartyWalletID,
		CreatedAt:            rec.CreatedAt,
	}
	row := l.q.QueryRow(ctx, `INSERT INTO transactions
        (wallet_id, type, amount, balance_after, counterparty_wallet_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		walletID, rec.Type, rec.Amount, rec.BalanceAfter, counterparty, rec.CreatedAt)
	if err := row.Scan(&tx.ID); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (l pgLog) ListByWallet(ctx context.Context, walletID string, f Filter, p Page) ([]Transaction, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return nil, ErrNotFound
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, wallet_id, type, amount, balance_after, counterparty_wallet_id, created_at
        FROM transactions WHERE wallet_id = $1`)
	args := []any{id}
	if f.Type != "" {
		args = append(args, f.Type)
		fmt.Fprintf(&sb, " AND type = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY id ASC")
	if p.Limit > 0 {
		args = append(args, p.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := l.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	for rows.Next() {
		var tx Transaction
		var owner uuid.UUID
		var counterparty *uuid.UUID
		if err := rows.Scan(&tx.ID, &owner, &tx.Type, &tx.Amount, &tx.BalanceAfter, &counterparty, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.WalletID = owner.String()
		if counterparty != nil {
			tx.CounterpartyWalletID = counterparty.String()
		}
		tx.CreatedAt = tx.CreatedAt.UTC()
		out = append(out, tx)
	}
	return out, rows.Err()
}
