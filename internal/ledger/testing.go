package ledger

// SeedBalance is a test helper that overwrites a wallet balance when the
// store is the in-memory backend. It writes no history record, so tests that
// check the replay invariant should fund wallets through Deposit instead.
func SeedBalance(s Store, walletID string, balance int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if w, exists := mem.wallets[walletID]; exists {
			w.Balance = balance
			mem.wallets[walletID] = w
		}
	}
}
