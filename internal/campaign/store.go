package campaign

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store persists campaign state. Harness-level results live in the run
// ledger; the campaign store only tracks the runs themselves.
type Store interface {
	Create(ctx context.Context, c Campaign) error
	Update(ctx context.Context, c Campaign) error
	Get(ctx context.Context, id uuid.UUID) (Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
}

// Claimer coordinates harness ownership between concurrent executors, so
// two workers never enumerate the same chunk. A nil Claimer in the service
// means single-executor operation.
type Claimer interface {
	// TryClaim acquires the named harness for this executor. It returns
	// false when another executor already holds it.
	TryClaim(ctx context.Context, harness string) (bool, error)
	// Release frees the claim after the harness result is recorded.
	Release(ctx context.Context, harness string) error
}
