package ledger

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store persists ledger records. Implementations are append-only; nothing in
// the interface can mutate or remove a record once written.
type Store interface {
	// Append writes a single completed-run record.
	Append(ctx context.Context, rec Record) error
	// List returns the records matching the filter in append order.
	List(ctx context.Context, f Filter) ([]Record, error)
	// HasSuccess reports whether the named harness already has a SUCCESS
	// record. Campaign resume uses this to skip finished chunks.
	HasSuccess(ctx context.Context, harness string) (bool, error)
}
