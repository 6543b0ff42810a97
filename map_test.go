package cell

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

func TestMapPerKeyOnce(t *testing.T) {
	t.Parallel()

	var m Map[string, int]
	var calls atomic.Int64

	a, err := m.GetOrInit("a", func() (int, error) {
		calls.Inc()
		return 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, *a)

	// Same key: the factory is ignored.
	a2, err := m.GetOrInit("a", func() (int, error) {
		calls.Inc()
		return 100, nil
	})
	require.NoError(t, err)
	require.Same(t, a, a2)
	require.Equal(t, int64(1), calls.Load())

	// Different key: its own construction.
	b, err := m.GetOrInit("b", func() (int, error) {
		calls.Inc()
		return 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, *b)
	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, 2, m.Len())
}

func TestMapFailureRetryPerKey(t *testing.T) {
	t.Parallel()

	var m Map[string, int]
	wantErr := xerrors.New("no backend")

	_, err := m.GetOrInit("k", func() (int, error) { return 0, wantErr })
	require.ErrorIs(t, err, wantErr)
	_, ok := m.TryGet("k")
	require.False(t, ok)

	// A failed key is still counted as attempted.
	require.Equal(t, 1, m.Len())

	p, err := m.GetOrInit("k", func() (int, error) { return 3, nil })
	require.NoError(t, err)
	require.Equal(t, 3, *p)

	got, ok := m.TryGet("k")
	require.True(t, ok)
	require.Same(t, p, got)
}

func TestMapTryGetUnknownKey(t *testing.T) {
	t.Parallel()

	var m Map[int, string]
	_, ok := m.TryGet(7)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}

func TestMapNilFactoryPanics(t *testing.T) {
	t.Parallel()

	var m Map[string, int]
	require.Panics(t, func() {
		_, _ = m.GetOrInit("k", nil)
	})
}

func TestMapConcurrentStress(t *testing.T) {
	t.Parallel()

	const (
		keys   = 10
		perKey = 100
	)

	var m Map[string, int]
	counts := make([]*atomic.Int64, keys)
	for i := range counts {
		counts[i] = atomic.NewInt64(0)
	}

	var eg errgroup.Group
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("key-%d", k)
		want := k * 11
		count := counts[k]
		for i := 0; i < perKey; i++ {
			eg.Go(func() error {
				p, err := m.GetOrInit(key, func() (int, error) {
					count.Inc()
					return want, nil
				})
				if err != nil {
					return err
				}
				if *p != want {
					return xerrors.Errorf("key %s: got %d, want %d", key, *p, want)
				}
				return nil
			})
		}
	}
	require.NoError(t, eg.Wait())

	for i, c := range counts {
		require.Equal(t, int64(1), c.Load(), "key %d factory count", i)
	}
	require.Equal(t, keys, m.Len())
}
