package proxy_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/facade"
	"github.com/repobind/repobind/pkg/proxy"
	"github.com/repobind/repobind/pkg/sequence"
	"github.com/repobind/repobind/pkg/types"
)

type orderRecord struct {
	ID   int64
	Name string
}

type order struct {
	ID   int64
	Name string
}

type orderDAO struct {
	types.Base[orderRecord, order, int64]
	rows map[int64]orderRecord
}

func (d *orderDAO) FindByID(ctx context.Context, id int64) (order, error) {
	row, ok := d.rows[id]
	if !ok {
		return order{}, errors.Newf(errors.ErrNotFound, "no row %d", id)
	}
	return order{ID: row.ID, Name: row.Name}, nil
}

type orderRepository interface {
	types.Repository[orderRecord, order, int64, *orderDAO]
}

// extendedRepository asks for more than the facade can serve.
type extendedRepository interface {
	types.Repository[orderRecord, order, int64, *orderDAO]
	Archive(ctx context.Context) error
}

type unrelated interface {
	Close() error
}

func newOrderFacade(t *testing.T) *facade.Facade[orderRecord, order, int64, *orderDAO] {
	t.Helper()

	seqs := sequence.NewRegistry()
	require.NoError(t, seqs.Register("orders_seq", sequence.NewCounter[int64](1000)))

	dao := &orderDAO{rows: map[int64]orderRecord{7: {ID: 7, Name: "widget"}}}
	return facade.New[orderRecord, order, int64](dao, types.FacadeDeps{Sequences: seqs})
}

func TestBindValidation(t *testing.T) {
	f := newOrderFacade(t)

	tests := []struct {
		name   string
		iface  reflect.Type
		target any
	}{
		{"non-interface type", reflect.TypeOf((*orderDAO)(nil)).Elem(), f},
		{"nil type", nil, f},
		{"the contract itself", reflect.TypeOf((*types.Repository[orderRecord, order, int64, *orderDAO])(nil)).Elem(), f},
		{"interface without the contract", reflect.TypeOf((*unrelated)(nil)).Elem(), f},
		{"interface the facade cannot serve", reflect.TypeOf((*extendedRepository)(nil)).Elem(), f},
		{"nil facade", reflect.TypeOf((*orderRepository)(nil)).Elem(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := proxy.Bind(tt.iface, tt.target)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidProxyTarget), "got %v", err)
		})
	}
}

func TestBind(t *testing.T) {
	f := newOrderFacade(t)

	h, err := proxy.Bind(reflect.TypeOf((*orderRepository)(nil)).Elem(), f)
	require.NoError(t, err)

	assert.Equal(t, reflect.TypeOf((*orderRepository)(nil)).Elem(), h.Interface())
	assert.True(t, h.Descriptor().Matches(f.Descriptor()))

	t.Run("typed access forwards to the facade", func(t *testing.T) {
		repo, err := proxy.As[orderRepository](h)
		require.NoError(t, err)

		id, err := repo.GenerateNextID("orders_seq")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), id)

		id, err = repo.GenerateNextID("orders_seq")
		require.NoError(t, err)
		assert.Equal(t, int64(1001), id)
	})

	t.Run("typed access to the wrong contract fails", func(t *testing.T) {
		_, err := proxy.As[unrelated](h)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidProxyTarget), "got %v", err)
	})

	t.Run("string composes interface and facade", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(h.String(), "orderRepository("), "got %q", h.String())
	})
}

func TestInvoke(t *testing.T) {
	f := newOrderFacade(t)
	h, err := proxy.Bind(reflect.TypeOf((*orderRepository)(nil)).Elem(), f)
	require.NoError(t, err)

	t.Run("forwards arguments and returns the facade's result", func(t *testing.T) {
		results, err := h.Invoke("Lookup", context.Background(), int64(7))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, order{ID: 7, Name: "widget"}, results[0])
	})

	t.Run("propagates failures unchanged", func(t *testing.T) {
		boom := stderrors.New("boom")
		op := func(ctx context.Context, dao *orderDAO) (any, error) { return nil, boom }

		_, err := h.Invoke("SimpleOperation", context.Background(), op)
		assert.Same(t, boom, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := h.Invoke("Archive", context.Background())
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound), "got %v", err)
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := h.Invoke("Lookup", context.Background())
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})

	t.Run("wrong argument type", func(t *testing.T) {
		_, err := h.Invoke("Lookup", context.Background(), "seven")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})
}
