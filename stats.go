package cell

import "go.uber.org/atomic"

// Stats is a snapshot of a guard's instrumentation counters. It exists so
// callers (and tests) can assert scheduling behavior, such as the ready
// path never entering the slow path, without resorting to timing.
type Stats struct {
	// Attempts counts factory invocations that started.
	Attempts uint64
	// Failures counts attempts that ended in an error or a panic.
	Failures uint64
	// SlowPaths counts Enter calls that missed the ready fast path and
	// went through the round lock.
	SlowPaths uint64
}

type counters struct {
	attempts  atomic.Uint64
	failures  atomic.Uint64
	slowPaths atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Attempts:  c.attempts.Load(),
		Failures:  c.failures.Load(),
		SlowPaths: c.slowPaths.Load(),
	}
}
