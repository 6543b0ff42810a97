package cell

// Cell holds at most one value of type T, constructed on first access and
// shared read-only by every caller for the rest of the cell's lifetime.
// The zero Cell is ready to use. A Cell must not be copied after first use.
type Cell[T any] struct {
	guard Guard
	value T
}

// GetOrInit returns the cell's value, running factory to construct it if no
// value has been published yet. Under concurrent first access exactly one
// caller runs its factory; the rest block until that round resolves.
//
// The first factory to return nil error wins permanently: subsequent calls
// ignore their factory argument entirely and return the already-published
// value. If the running factory fails, its error is returned to the caller
// and to every goroutine that waited on that round, and the cell stays
// empty so a later call may retry. The returned pointer is stable for the
// life of the cell and is never nil on success.
//
// factory must not call back into the same cell; doing so panics. A nil
// factory panics.
func (c *Cell[T]) GetOrInit(factory func() (T, error)) (*T, error) {
	if factory == nil {
		panic("cell: nil factory")
	}
	err := c.guard.Do(func() error {
		v, err := factory()
		if err != nil {
			return err
		}
		c.value = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c.value, nil
}

// TryGet returns the published value without blocking, or (nil, false) if
// no value has been published yet.
func (c *Cell[T]) TryGet() (*T, bool) {
	if !c.guard.Done() {
		return nil, false
	}
	return &c.value, true
}

// Done reports whether the cell has published a value.
func (c *Cell[T]) Done() bool {
	return c.guard.Done()
}

// Stats returns a snapshot of the cell's guard counters.
func (c *Cell[T]) Stats() Stats {
	return c.guard.Stats()
}
