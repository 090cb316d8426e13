package ledger

import "context"

const (
	// DefaultPageSize applies when a caller omits the limit.
	DefaultPageSize = 50
	// MaxPageSize caps any single listing page.
	MaxPageSize = 500

	// exportBatchSize is how many records the export path pulls per query.
	exportBatchSize = 500
	// ExportCeiling bounds a single export so one request cannot scan the
	// log without limit.
	ExportCeiling = 100_000
)

// QueryEngine provides read-only, filtered, paginated access to the
// transaction log. It never takes wallet locks; both store backends give
// point-in-time consistent reads.
type QueryEngine struct {
	store Store
}

// NewQueryEngine builds the read side of the ledger.
func NewQueryEngine(store Store) *QueryEngine {
	return &QueryEngine{store: store}
}

// Validate checks the wallet exists and the filter bounds are ordered,
// without touching the log. The export handler calls this before committing
// an HTTP status to the stream.
func (q *QueryEngine) Validate(ctx context.Context, walletID string, f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := q.store.Wallets().Get(ctx, walletID)
	return err
}

// List returns one page of the wallet's history, oldest first. A zero or
// negative limit falls back to DefaultPageSize and anything above MaxPageSize
// is clamped; an offset past the end yields an empty page, not an error.
func (q *QueryEngine) List(ctx context.Context, walletID string, f Filter, p Page) ([]Transaction, error) {
	if err := q.Validate(ctx, walletID, f); err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return q.store.Log().ListByWallet(ctx, walletID, f, p)
}

// Export streams the wallet's filtered history record-by-record through fn,
// pulling batches from the log so unbounded result sets are never
// materialized. It stops at ExportCeiling records; fn returning an error
// aborts the stream.
func (q *QueryEngine) Export(ctx context.Context, walletID string, f Filter, fn func(Transaction) error) error {
	if err := q.Validate(ctx, walletID, f); err != nil {
		return err
	}
	for offset := 0; offset < ExportCeiling; {
		limit := exportBatchSize
		if remaining := ExportCeiling - offset; remaining < limit {
			limit = remaining
		}
		batch, err := q.store.Log().ListByWallet(ctx, walletID, f, Page{Offset: offset, Limit: limit})
		if err != nil {
			return err
		}
		for _, tx := range batch {
			if err := fn(tx); err != nil {
				return err
			}
		}
		if len(batch) < limit {
			return nil
		}
		offset += len(batch)
	}
	return nil
}
