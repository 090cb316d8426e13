package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is the in-memory Store backend used by unit tests and dev mode.
// One RWMutex guards all state; InTx holds the write lock for the whole
// boundary and restores a snapshot on failure, so readers never observe a
// partial boundary. Boundaries serialize globally here, which is fine at this
// backend's scale.
type memoryStore struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
	history []Transaction
	nextID  int64
}

// NewMemoryStore creates a concurrency-safe in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{wallets: make(map[string]Wallet)}
}

func (s *memoryStore) Wallets() WalletStore { return memoryWallets{s: s} }
func (s *memoryStore) Log() TransactionLog  { return memoryLog{s: s} }

func (s *memoryStore) InTx(_ context.Context, fn func(WalletStore, TransactionLog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	if err := fn(memoryWallets{s: s, inTx: true}, memoryLog{s: s, inTx: true}); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	wallets    map[string]Wallet
	historyLen int
	nextID     int64
}

func (s *memoryStore) snapshotLocked() memorySnapshot {
	wallets := make(map[string]Wallet, len(s.wallets))
	for id, w := range s.wallets {
		wallets[id] = w
	}
	return memorySnapshot{wallets: wallets, historyLen: len(s.history), nextID: s.nextID}
}

func (s *memoryStore) restoreLocked(snap memorySnapshot) {
	s.wallets = snap.wallets
	s.history = s.history[:snap.historyLen]
	s.nextID = snap.nextID
}

// memoryWallets implements WalletStore over the shared store. When inTx is
// set the caller already holds the write lock.
type memoryWallets struct {
	s    *memoryStore
	inTx bool
}

func (v memoryWallets) Create(_ context.Context, ownerID, name string) (Wallet, error) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	w := Wallet{ID: uuid.NewString(), OwnerID: ownerID, Name: name, Balance: 0, CreatedAt: time.Now().UTC()}
	v.s.wallets[w.ID] = w
	return w, nil
}

func (v memoryWallets) Get(_ context.Context, walletID string) (Wallet, error) {
	if !v.inTx {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
	}
	w, ok := v.s.wallets[walletID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (v memoryWallets) SetBalance(_ context.Context, walletID string, balance int64) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	if balance < 0 {
		return ErrInvariantViolation
	}
	w, ok := v.s.wallets[walletID]
	if !ok {
		return ErrNotFound
	}
	w.Balance = balance
	v.s.wallets[walletID] = w
	return nil
}

// memoryLog implements TransactionLog over the shared store.
type memoryLog struct {
	s    *memoryStore
	inTx bool
}

func (v memoryLog) Append(_ context.Context, rec Record) (Transaction, error) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	if _, ok := v.s.wallets[rec.WalletID]; !ok {
		return Transaction{}, ErrNotFound
	}
	v.s.nextID++
	tx := Transaction{
		ID:                   v.s.nextID,
		WalletID:             rec.WalletID,
		Type:                 rec.Type,
		Amount:               rec.Amount,
		BalanceAfter:         rec.BalanceAfter,
		CounterpartyWalletID: rec.CounterpartyWalletID,
		CreatedAt:            rec.CreatedAt,
	}
	v.s.history = append(v.s.history, tx)
	return tx, nil
}

func (v memoryLog) ListByWallet(_ context.Context, walletID string, f Filter, p Page) ([]Transaction, error) {
	if !v.inTx {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
	}
	matched := make([]Transaction, 0)
	for _, tx := range v.s.history {
		if tx.WalletID != walletID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && tx.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.CreatedAt.After(f.To) {
			continue
		}
		matched = append(matched, tx)
	}
	if p.Offset >= len(matched) {
		return []Transaction{}, nil
	}
	matched = matched[p.Offset:]
	if p.Limit > 0 && len(matched) > p.Limit {
		matched = matched[:p.Limit]
	}
	out := make([]Transaction, len(matched))
	copy(out, matched)
	return out, nil
}
