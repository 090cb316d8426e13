package ledger

import (
	"sync"
	"time"
)

// lockTable hands out one exclusive lock per wallet identifier. Entries are
// reference counted so the table does not grow with the number of wallets
// ever touched, only with the number currently contended.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*walletLock
}

type walletLock struct {
	// ch has capacity one; holding the token means owning the lock, which
	// makes a bounded wait a plain select against a timer.
	ch   chan struct{}
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*walletLock)}
}

// acquire blocks until the wallet lock is owned or the wait elapses, in which
// case it returns ErrBusy and the caller may retry.
func (t *lockTable) acquire(walletID string, wait time.Duration) error {
	t.mu.Lock()
	l, ok := t.locks[walletID]
	if !ok {
		l = &walletLock{ch: make(chan struct{}, 1)}
		t.locks[walletID] = l
	}
	l.refs++
	t.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-timer.C:
		t.unref(walletID)
		return ErrBusy
	}
}

func (t *lockTable) release(walletID string) {
	t.mu.Lock()
	l := t.locks[walletID]
	t.mu.Unlock()

	<-l.ch
	t.unref(walletID)
}

func (t *lockTable) unref(walletID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l := t.locks[walletID]
	l.refs--
	if l.refs == 0 {
		delete(t.locks, walletID)
	}
}
