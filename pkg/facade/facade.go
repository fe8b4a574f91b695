// Package facade implements the generic repository facade: one instance
// per discovered access object, executing atomic, simple, and template
// operations against it with uniform logging, timing, and error
// propagation.
package facade

import (
	"context"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/logging"
	"github.com/repobind/repobind/pkg/sequence"
	"github.com/repobind/repobind/pkg/types"
)

// Facade is the generic repository implementation bound to a single
// access object. It is immutable after construction and safe for
// concurrent use.
type Facade[R any, D any, ID comparable, A any] struct {
	access    A
	sequences *sequence.Registry
	tx        types.TxManager
	logger    zerolog.Logger
	table     string
}

// New creates a facade bound to access. Missing collaborators degrade to
// safe defaults: no transaction manager means no boundary, an empty
// sequence registry means every GenerateNextID fails with a configuration
// error.
func New[R any, D any, ID comparable, A any](access A, deps types.FacadeDeps) *Facade[R, D, ID, A] {
	tx := deps.Tx
	if tx == nil {
		tx = types.NoopTxManager{}
	}
	seqs := deps.Sequences
	if seqs == nil {
		seqs = sequence.NewRegistry()
	}

	return &Facade[R, D, ID, A]{
		access:    access,
		sequences: seqs,
		tx:        tx,
		logger:    logging.GetLogger("facade"),
		table:     resolveTableName(access),
	}
}

// CandidateFor creates an access-object discovery candidate for access,
// binding the facade's type parameters at compile time. Discovery calls
// Build once per registration; the resolved descriptor is still read
// reflectively off the candidate type.
func CandidateFor[R any, D any, ID comparable, A any](access A) types.Candidate {
	return types.Candidate{
		Type:     reflect.TypeOf((*A)(nil)).Elem(),
		Instance: access,
		Build: func(deps types.FacadeDeps) any {
			return New[R, D, ID, A](access, deps)
		},
	}
}

// Descriptor returns the four type identities this facade is bound to.
func (f *Facade[R, D, ID, A]) Descriptor() types.Descriptor {
	return types.Descriptor{
		Record: reflect.TypeOf((*R)(nil)).Elem(),
		Domain: reflect.TypeOf((*D)(nil)).Elem(),
		ID:     reflect.TypeOf((*ID)(nil)).Elem(),
		Access: reflect.TypeOf((*A)(nil)).Elem(),
	}
}

// Access returns the bound access object.
func (f *Facade[R, D, ID, A]) Access() A {
	return f.access
}

// AtomicOperation executes op against the access object inside a
// transaction boundary. The boundary observes any failure inside op; the
// original error is re-propagated unchanged.
func (f *Facade[R, D, ID, A]) AtomicOperation(ctx context.Context, op types.Operation[A]) (any, error) {
	return f.execute("atomicOperation", func() (any, error) {
		var result any
		err := f.tx.WithinTx(ctx, func(ctx context.Context) error {
			r, err := op(ctx, f.access)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// SimpleOperation executes op against the access object without a
// transaction boundary.
func (f *Facade[R, D, ID, A]) SimpleOperation(ctx context.Context, op types.Operation[A]) (any, error) {
	return f.execute("simpleOperation", func() (any, error) {
		return op(ctx, f.access)
	})
}

// TemplateOperation executes op against the extended template view.
func (f *Facade[R, D, ID, A]) TemplateOperation(ctx context.Context, op types.TemplateOperation[R, D, ID, A]) (any, error) {
	return f.execute("templateOperation", func() (any, error) {
		return op(templateOps[R, D, ID, A]{facade: f})
	})
}

// GenerateNextID resolves the sequence registered under key for this
// facade's identifier type and returns its next value.
func (f *Facade[R, D, ID, A]) GenerateNextID(key string) (ID, error) {
	var zero ID

	result, err := f.execute("generateNextId", func() (any, error) {
		seq, err := f.sequences.Resolve(reflect.TypeOf((*ID)(nil)).Elem(), key)
		if err != nil {
			return nil, err
		}
		return seq.Next()
	})
	if err != nil {
		return zero, err
	}

	id, ok := result.(ID)
	if !ok {
		return zero, errors.Newf(errors.ErrIDTypeMismatch, "sequence '%s' issued %T, want %s", key, result, reflect.TypeOf((*ID)(nil)).Elem())
	}
	return id, nil
}

// BatchInsert persists all records as a single logical unit. A nil or
// empty slice performs no mutation and returns immediately.
func (f *Facade[R, D, ID, A]) BatchInsert(ctx context.Context, records []R) error {
	return f.batch(ctx, "batchInsert", records, func(bw types.BatchWriter[R], ctx context.Context) error {
		return bw.InsertAll(ctx, records)
	})
}

// BatchUpdate updates all records as a single logical unit. A nil or
// empty slice performs no mutation and returns immediately.
func (f *Facade[R, D, ID, A]) BatchUpdate(ctx context.Context, records []R) error {
	return f.batch(ctx, "batchUpdate", records, func(bw types.BatchWriter[R], ctx context.Context) error {
		return bw.UpdateAll(ctx, records)
	})
}

// Lookup loads the domain object identified by id through the access
// object's Finder capability.
func (f *Facade[R, D, ID, A]) Lookup(ctx context.Context, id ID) (D, error) {
	var zero D

	result, err := f.execute("lookup", func() (any, error) {
		finder, ok := any(f.access).(types.Finder[ID, D])
		if !ok {
			return nil, errors.Newf(errors.ErrNotImplemented, "access object %s does not support lookup", f.table)
		}
		return finder.FindByID(ctx, id)
	})
	if err != nil {
		return zero, err
	}
	return result.(D), nil
}

func (f *Facade[R, D, ID, A]) batch(ctx context.Context, operation string, records []R, fn func(bw types.BatchWriter[R], ctx context.Context) error) error {
	if len(records) == 0 {
		f.logger.Debug().Str("operation", operation).Str("table", f.table).Msg("Skipping batch operation, empty input")
		return nil
	}

	_, err := f.execute(operation, func() (any, error) {
		bw, ok := any(f.access).(types.BatchWriter[R])
		if !ok {
			return nil, errors.Newf(errors.ErrNotImplemented, "access object %s does not support batch mutation", f.table)
		}
		return nil, f.tx.WithinTx(ctx, func(ctx context.Context) error {
			return fn(bw, ctx)
		})
	})
	return err
}

// execute wraps every public operation: capture start time, run, log
// elapsed time and operation name, and re-propagate the original failure
// unchanged.
func (f *Facade[R, D, ID, A]) execute(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		f.logger.Error().
			Str("operation", operation).
			Str("table", f.table).
			Str("code", string(operationCode(err))).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("Operation failed")
		return nil, err
	}

	f.logger.Debug().
		Str("operation", operation).
		Str("table", f.table).
		Dur("elapsed", elapsed).
		Msg("Operation completed")
	return result, nil
}

// operationCode classifies a propagated failure for the error log. Coded
// errors keep their own code; anything raised inside a user-supplied
// operation body surfaces as an operation failure. The error itself is
// never rewrapped.
func operationCode(err error) errors.ErrorCode {
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return code
	}
	return errors.ErrOperationFailure
}

// resolveTableName is best effort: a TableNamer capability wins, the
// access object's type name is the fallback, and any panic during
// resolution degrades to a placeholder.
func resolveTableName(access any) (name string) {
	defer func() {
		if recover() != nil {
			name = "<unresolved>"
		}
	}()

	if tn, ok := access.(types.TableNamer); ok {
		return tn.TableName()
	}

	t := reflect.TypeOf(access)
	if t == nil {
		return "<unresolved>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "<unresolved>"
	}
	return t.Name()
}
