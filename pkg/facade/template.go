package facade

import (
	"context"

	"github.com/repobind/repobind/pkg/types"
)

// templateOps is the extended view handed to template operations. It
// composes the owning facade's atomic and simple modes and adds
// transactional blocks, identifier generation, and batch mutation.
type templateOps[R any, D any, ID comparable, A any] struct {
	facade *Facade[R, D, ID, A]
}

var _ types.TemplateOperations[struct{}, struct{}, int64, *struct{}] = templateOps[struct{}, struct{}, int64, *struct{}]{}

// Transactional runs op inside a transaction boundary, discarding any
// result. The operation's error is re-propagated unchanged.
func (t templateOps[R, D, ID, A]) Transactional(ctx context.Context, op types.VoidOperation[A]) error {
	_, err := t.facade.execute("transactional", func() (any, error) {
		return nil, t.facade.tx.WithinTx(ctx, func(ctx context.Context) error {
			return op(ctx, t.facade.access)
		})
	})
	return err
}

func (t templateOps[R, D, ID, A]) AtomicOperation(ctx context.Context, op types.Operation[A]) (any, error) {
	return t.facade.AtomicOperation(ctx, op)
}

func (t templateOps[R, D, ID, A]) SimpleOperation(ctx context.Context, op types.Operation[A]) (any, error) {
	return t.facade.SimpleOperation(ctx, op)
}

func (t templateOps[R, D, ID, A]) GenerateNextID(key string) (ID, error) {
	return t.facade.GenerateNextID(key)
}

func (t templateOps[R, D, ID, A]) BatchInsert(ctx context.Context, records []R) error {
	return t.facade.BatchInsert(ctx, records)
}

func (t templateOps[R, D, ID, A]) BatchUpdate(ctx context.Context, records []R) error {
	return t.facade.BatchUpdate(ctx, records)
}
