package cell

// Option configures a Value at creation time.
type Option[T any] func(*valueConfig)

type valueConfig struct {
	eager bool
}

// Eager makes New run the first construction attempt before returning. If
// the eager attempt fails the cell stays empty and the error surfaces from
// the first Load, which runs the factory again.
func Eager[T any]() Option[T] {
	return func(c *valueConfig) {
		c.eager = true
	}
}

// Value is a Cell with its factory bound at creation time, for the common
// case where the construction recipe is known up front and callers only
// ever read.
type Value[T any] struct {
	cell    Cell[T]
	factory func() (T, error)
}

// New returns a Value that constructs its content with factory on first
// Load. If factory is nil, it panics.
func New[T any](factory func() (T, error), opts ...Option[T]) *Value[T] {
	if factory == nil {
		panic("cell: nil factory")
	}
	var cfg valueConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	v := &Value[T]{factory: factory}
	if cfg.eager {
		// A failed eager attempt resets the guard; the first Load
		// reports the error of its own attempt.
		_, _ = v.cell.GetOrInit(factory)
	}
	return v
}

// Load returns the value, constructing it on first call. See
// Cell.GetOrInit for the concurrency and failure semantics.
func (v *Value[T]) Load() (*T, error) {
	return v.cell.GetOrInit(v.factory)
}

// TryGet returns the value without constructing or blocking.
func (v *Value[T]) TryGet() (*T, bool) {
	return v.cell.TryGet()
}

// Done reports whether the value has been constructed.
func (v *Value[T]) Done() bool {
	return v.cell.Done()
}

// Stats returns a snapshot of the underlying guard counters.
func (v *Value[T]) Stats() Stats {
	return v.cell.Stats()
}

// Fn wraps factory into a function that constructs on first call and
// returns the same pointer on every subsequent call. If factory is nil,
// it panics.
func Fn[T any](factory func() (T, error)) func() (*T, error) {
	if factory == nil {
		panic("cell: nil factory")
	}
	var c Cell[T]
	return func() (*T, error) {
		return c.GetOrInit(factory)
	}
}
