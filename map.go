package cell

import "sync"

// Map is a keyed collection of cells: each key's value is constructed at
// most once, with the same winner/waiter and failure-retry semantics as a
// single Cell. The zero Map is ready to use.
type Map[K comparable, V any] struct {
	cells sync.Map // K -> *Cell[V]
}

// GetOrInit returns the value for key, running factory to construct it if
// the key has no published value yet.
func (m *Map[K, V]) GetOrInit(key K, factory func() (V, error)) (*V, error) {
	if factory == nil {
		panic("cell: nil factory")
	}
	return m.cell(key).GetOrInit(factory)
}

// TryGet returns key's published value without blocking, or (nil, false)
// if the key has none.
func (m *Map[K, V]) TryGet(key K) (*V, bool) {
	c, ok := m.cells.Load(key)
	if !ok {
		return nil, false
	}
	return c.(*Cell[V]).TryGet()
}

// Len returns the number of keys for which construction has been attempted,
// whether or not a value was published.
func (m *Map[K, V]) Len() int {
	n := 0
	m.cells.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *Map[K, V]) cell(key K) *Cell[V] {
	if c, ok := m.cells.Load(key); ok {
		return c.(*Cell[V])
	}
	c, _ := m.cells.LoadOrStore(key, new(Cell[V]))
	return c.(*Cell[V])
}
