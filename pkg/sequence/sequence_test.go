package sequence

import (
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repobind/repobind/pkg/errors"
)

func TestCounter(t *testing.T) {
	t.Run("issues values from start", func(t *testing.T) {
		c := NewCounter[int64](1000)

		v, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(1000), v)

		v, err = c.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(1001), v)
	})

	t.Run("reports value type", func(t *testing.T) {
		c := NewCounter[int32](1)
		assert.Equal(t, reflect.TypeOf((*int32)(nil)).Elem(), c.ValueType())
	})

	t.Run("concurrent next yields distinct values", func(t *testing.T) {
		const n = 200
		c := NewCounter[int64](0)

		var mu sync.Mutex
		var wg sync.WaitGroup
		values := make([]int64, 0, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.Next()
				require.NoError(t, err)
				mu.Lock()
				values = append(values, v.(int64))
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, values, n)
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		for i, v := range values {
			assert.Equal(t, int64(i), v, "values must be distinct and gapless")
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("resolve registered sequence", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register("orders_seq", NewCounter[int64](1000)))

		seq, err := reg.Resolve(reflect.TypeOf((*int64)(nil)).Elem(), "orders_seq")
		require.NoError(t, err)

		v, err := seq.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(1000), v)
	})

	t.Run("missing sequence is a configuration fault", func(t *testing.T) {
		reg := NewRegistry()

		_, err := reg.Resolve(reflect.TypeOf((*int64)(nil)).Elem(), "orders_seq")
		assert.True(t, errors.IsErrorCode(err, errors.ErrSequenceNotConfigured), "got %v", err)
	})

	t.Run("same name different id type resolves independently", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register("seq", NewCounter[int64](1)))
		require.NoError(t, reg.Register("seq", NewCounter[int32](100)))

		seq64, err := reg.Resolve(reflect.TypeOf((*int64)(nil)).Elem(), "seq")
		require.NoError(t, err)
		v, _ := seq64.Next()
		assert.Equal(t, int64(1), v)

		seq32, err := reg.Resolve(reflect.TypeOf((*int32)(nil)).Elem(), "seq")
		require.NoError(t, err)
		v, _ = seq32.Next()
		assert.Equal(t, int32(100), v)
	})

	t.Run("duplicate key rejected", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register("seq", NewCounter[int64](1)))

		err := reg.Register("seq", NewCounter[int64](500))
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "got %v", err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Register("", NewCounter[int64](1))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})

	t.Run("register all", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.RegisterAll(map[string]Sequence{
			"orders_seq":    NewCounter[int64](1000),
			"customers_seq": NewCounter[int64](1),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Count())
	})
}
