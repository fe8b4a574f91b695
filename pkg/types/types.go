// Package types defines the core contracts of the repository binding
// engine: the generic repository contract, the descriptor resolved for
// every discovered candidate, and the narrow interfaces through which
// external collaborators (transaction manager, access objects) are
// consumed.
package types

import "context"

// Operation is a unit of work executed against the bound access object.
// The context carries the transaction boundary when one is active, so the
// operation's own data access joins it. The returned error is always
// propagated to the caller unchanged.
type Operation[A any] func(ctx context.Context, access A) (any, error)

// VoidOperation is an Operation with no result, used for transactional
// blocks inside template operations.
type VoidOperation[A any] func(ctx context.Context, access A) error

// TemplateOperation is the body of a template-mode dispatch. It receives
// an extended view of the repository that can compose transactional
// blocks, delegate atomic/simple calls, generate identifiers, and batch
// mutate.
type TemplateOperation[R any, D any, ID comparable, A any] func(ops TemplateOperations[R, D, ID, A]) (any, error)

// TemplateOperations is the extended view handed to template operations.
type TemplateOperations[R any, D any, ID comparable, A any] interface {
	// Transactional runs op against the access object inside a
	// transaction boundary, discarding any result.
	Transactional(ctx context.Context, op VoidOperation[A]) error

	// AtomicOperation delegates to the owning repository's atomic mode.
	AtomicOperation(ctx context.Context, op Operation[A]) (any, error)

	// SimpleOperation delegates to the owning repository's simple mode.
	SimpleOperation(ctx context.Context, op Operation[A]) (any, error)

	// GenerateNextID returns the next identifier from the sequence
	// registered under key for this repository's identifier type.
	GenerateNextID(key string) (ID, error)

	// BatchInsert persists all records as a single logical unit.
	BatchInsert(ctx context.Context, records []R) error

	// BatchUpdate updates all records as a single logical unit.
	BatchUpdate(ctx context.Context, records []R) error
}

// Repository is the generic repository contract. A facade bound to an
// access object of type A implements it; user-declared repository
// interfaces embed an instantiation of it (directly or through
// intermediate interfaces) and are served by a proxy forwarding to the
// matching facade.
//
// R is the record (row) shape, D the domain-object shape, ID the
// identifier type, and A the access-object type.
type Repository[R any, D any, ID comparable, A any] interface {
	// AtomicOperation executes op inside a transaction boundary. Any
	// failure inside op is observed by the boundary and re-propagated
	// unchanged.
	AtomicOperation(ctx context.Context, op Operation[A]) (any, error)

	// SimpleOperation executes op without a transaction boundary.
	SimpleOperation(ctx context.Context, op Operation[A]) (any, error)

	// TemplateOperation executes op against the extended template view.
	TemplateOperation(ctx context.Context, op TemplateOperation[R, D, ID, A]) (any, error)

	// GenerateNextID resolves the sequence registered under key for ID
	// and returns its next value.
	GenerateNextID(key string) (ID, error)

	// BatchInsert persists all records as a single logical unit. A nil
	// or empty slice is a no-op.
	BatchInsert(ctx context.Context, records []R) error

	// BatchUpdate updates all records as a single logical unit. A nil
	// or empty slice is a no-op.
	BatchUpdate(ctx context.Context, records []R) error

	// Lookup loads the domain object identified by id through the
	// access object's Finder capability.
	Lookup(ctx context.Context, id ID) (D, error)
}

// TxManager demarcates a transaction boundary around an operation. It is
// supplied by the surrounding infrastructure; implementations must return
// the callback's error unchanged so callers can react to the original
// failure.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTxManager runs the callback without any transaction boundary.
type NoopTxManager struct{}

// WithinTx implements TxManager.
func (NoopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
