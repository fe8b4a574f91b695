package facade

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/sequence"
	"github.com/repobind/repobind/pkg/types"
)

var _ types.Repository[orderRecord, order, int64, *memDAO] = (*Facade[orderRecord, order, int64, *memDAO])(nil)

type orderRecord struct {
	ID   int64
	Name string
}

type order struct {
	ID   int64
	Name string
}

// memDAO is an in-memory access object with the full capability set.
type memDAO struct {
	types.Base[orderRecord, order, int64]
	rows     map[int64]orderRecord
	inserted [][]orderRecord
	updated  [][]orderRecord
}

func newMemDAO() *memDAO {
	return &memDAO{rows: make(map[int64]orderRecord)}
}

func (d *memDAO) TableName() string { return "orders" }

func (d *memDAO) InsertAll(ctx context.Context, records []orderRecord) error {
	d.inserted = append(d.inserted, records)
	for _, r := range records {
		d.rows[r.ID] = r
	}
	return nil
}

func (d *memDAO) UpdateAll(ctx context.Context, records []orderRecord) error {
	d.updated = append(d.updated, records)
	for _, r := range records {
		d.rows[r.ID] = r
	}
	return nil
}

func (d *memDAO) FindByID(ctx context.Context, id int64) (order, error) {
	row, ok := d.rows[id]
	if !ok {
		return order{}, errors.Newf(errors.ErrNotFound, "no row %d", id)
	}
	return order{ID: row.ID, Name: row.Name}, nil
}

// bareDAO has no optional capabilities.
type bareDAO struct {
	types.Base[orderRecord, order, int64]
}

// recordingTx counts transaction boundaries and observed failures.
type recordingTx struct {
	boundaries int
	failures   int
}

func (m *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.boundaries++
	if err := fn(ctx); err != nil {
		m.failures++
		return err
	}
	return nil
}

func newTestFacade(dao *memDAO) (*Facade[orderRecord, order, int64, *memDAO], *recordingTx, *sequence.Registry) {
	tx := &recordingTx{}
	seqs := sequence.NewRegistry()
	f := New[orderRecord, order, int64](dao, types.FacadeDeps{Sequences: seqs, Tx: tx})
	return f, tx, seqs
}

func TestAtomicOperation(t *testing.T) {
	t.Run("runs inside a transaction boundary", func(t *testing.T) {
		f, tx, _ := newTestFacade(newMemDAO())

		result, err := f.AtomicOperation(context.Background(), func(ctx context.Context, dao *memDAO) (any, error) {
			return "done", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "done", result)
		assert.Equal(t, 1, tx.boundaries)
	})

	t.Run("boundary observes the failure and it propagates unchanged", func(t *testing.T) {
		f, tx, _ := newTestFacade(newMemDAO())
		boom := stderrors.New("constraint violated")

		_, err := f.AtomicOperation(context.Background(), func(ctx context.Context, dao *memDAO) (any, error) {
			return nil, boom
		})

		assert.Same(t, boom, err, "error must not be wrapped or replaced")
		assert.Equal(t, 1, tx.failures)
	})
}

func TestSimpleOperation(t *testing.T) {
	t.Run("runs without a boundary", func(t *testing.T) {
		f, tx, _ := newTestFacade(newMemDAO())

		result, err := f.SimpleOperation(context.Background(), func(ctx context.Context, dao *memDAO) (any, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.Equal(t, 0, tx.boundaries)
	})

	t.Run("failure propagates unchanged", func(t *testing.T) {
		f, _, _ := newTestFacade(newMemDAO())
		boom := stderrors.New("boom")

		_, err := f.SimpleOperation(context.Background(), func(ctx context.Context, dao *memDAO) (any, error) {
			return nil, boom
		})

		assert.Equal(t, boom, err)
	})
}

func TestTemplateOperation(t *testing.T) {
	f, tx, seqs := newTestFacade(newMemDAO())
	require.NoError(t, seqs.Register("orders_seq", sequence.NewCounter[int64](1000)))
	ctx := context.Background()

	result, err := f.TemplateOperation(ctx, func(ops types.TemplateOperations[orderRecord, order, int64, *memDAO]) (any, error) {
		id, err := ops.GenerateNextID("orders_seq")
		if err != nil {
			return nil, err
		}

		if err := ops.BatchInsert(ctx, []orderRecord{{ID: id, Name: "widget"}}); err != nil {
			return nil, err
		}

		err = ops.Transactional(ctx, func(ctx context.Context, dao *memDAO) error {
			dao.rows[id] = orderRecord{ID: id, Name: "widget-renamed"}
			return nil
		})
		if err != nil {
			return nil, err
		}

		return ops.SimpleOperation(ctx, func(ctx context.Context, dao *memDAO) (any, error) {
			return dao.rows[id].Name, nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, "widget-renamed", result)
	// one boundary for the batch insert, one for the transactional block
	assert.Equal(t, 2, tx.boundaries)
}

func TestGenerateNextID(t *testing.T) {
	t.Run("issues sequential identifiers", func(t *testing.T) {
		f, _, seqs := newTestFacade(newMemDAO())
		require.NoError(t, seqs.Register("orders_seq", sequence.NewCounter[int64](1000)))

		id, err := f.GenerateNextID("orders_seq")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), id)

		id, err = f.GenerateNextID("orders_seq")
		require.NoError(t, err)
		assert.Equal(t, int64(1001), id)
	})

	t.Run("missing sequence fails loudly", func(t *testing.T) {
		f, _, _ := newTestFacade(newMemDAO())

		_, err := f.GenerateNextID("orders_seq")
		assert.True(t, errors.IsErrorCode(err, errors.ErrSequenceNotConfigured), "got %v", err)
	})
}

func TestBatchOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input is a no-op", func(t *testing.T) {
		dao := newMemDAO()
		f, tx, _ := newTestFacade(dao)

		require.NoError(t, f.BatchInsert(ctx, nil))
		require.NoError(t, f.BatchInsert(ctx, []orderRecord{}))
		require.NoError(t, f.BatchUpdate(ctx, nil))

		assert.Empty(t, dao.inserted)
		assert.Empty(t, dao.updated)
		assert.Equal(t, 0, tx.boundaries)
	})

	t.Run("insert runs as a single unit", func(t *testing.T) {
		dao := newMemDAO()
		f, tx, _ := newTestFacade(dao)

		records := []orderRecord{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
		require.NoError(t, f.BatchInsert(ctx, records))

		require.Len(t, dao.inserted, 1)
		assert.Equal(t, records, dao.inserted[0])
		assert.Equal(t, 1, tx.boundaries)
	})

	t.Run("update runs as a single unit", func(t *testing.T) {
		dao := newMemDAO()
		f, _, _ := newTestFacade(dao)

		require.NoError(t, f.BatchUpdate(ctx, []orderRecord{{ID: 1, Name: "a2"}}))
		require.Len(t, dao.updated, 1)
	})

	t.Run("access object without batch capability", func(t *testing.T) {
		f := New[orderRecord, order, int64](&bareDAO{}, types.FacadeDeps{})

		err := f.BatchInsert(ctx, []orderRecord{{ID: 1}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotImplemented), "got %v", err)
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the finder capability", func(t *testing.T) {
		dao := newMemDAO()
		dao.rows[7] = orderRecord{ID: 7, Name: "widget"}
		f, _, _ := newTestFacade(dao)

		got, err := f.Lookup(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, order{ID: 7, Name: "widget"}, got)
	})

	t.Run("missing row propagates the access object's error", func(t *testing.T) {
		f, _, _ := newTestFacade(newMemDAO())

		_, err := f.Lookup(ctx, 404)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound), "got %v", err)
	})

	t.Run("access object without finder capability", func(t *testing.T) {
		f := New[orderRecord, order, int64](&bareDAO{}, types.FacadeDeps{})

		_, err := f.Lookup(ctx, 1)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotImplemented), "got %v", err)
	})
}

func TestDescriptor(t *testing.T) {
	f, _, _ := newTestFacade(newMemDAO())

	desc := f.Descriptor()
	require.NoError(t, desc.Validate())
	assert.Equal(t, "*facade.memDAO", desc.Access.String())
}

func TestResolveTableName(t *testing.T) {
	assert.Equal(t, "orders", resolveTableName(newMemDAO()))
	assert.Equal(t, "bareDAO", resolveTableName(&bareDAO{}))
	assert.Equal(t, "<unresolved>", resolveTableName(nil))
}

func TestCandidateFor(t *testing.T) {
	dao := newMemDAO()
	cand := CandidateFor[orderRecord, order, int64](dao)

	assert.Equal(t, "*facade.memDAO", cand.Type.String())
	assert.Same(t, dao, cand.Instance)
	require.NotNil(t, cand.Build)

	built := cand.Build(types.FacadeDeps{})
	f, ok := built.(*Facade[orderRecord, order, int64, *memDAO])
	require.True(t, ok, "Build returned %T", built)
	assert.Same(t, dao, f.Access())
}

func TestOperationCode(t *testing.T) {
	t.Run("uncoded failures classify as operation failures", func(t *testing.T) {
		assert.Equal(t, errors.ErrOperationFailure, operationCode(stderrors.New("boom")))
	})

	t.Run("coded failures keep their code", func(t *testing.T) {
		err := errors.New(errors.ErrSequenceNotConfigured, "no sequence")
		assert.Equal(t, errors.ErrSequenceNotConfigured, operationCode(err))
	})
}
