// Package cell provides lazy, concurrency-safe, exactly-once initialization
// of shared values.
//
// A Cell holds at most one value, constructs it on first access and shares
// it read-only with every caller. Under concurrent first access exactly one
// goroutine runs the factory; the rest wait for that round to resolve. Once
// a value is published, reads cost a single atomic load. A failed factory
// resolves its waiters with the error and leaves the cell empty, so a later
// call may retry.
//
//	var users cell.Cell[*Registry]
//
//	func Users() (*Registry, error) {
//		r, err := users.GetOrInit(loadRegistry)
//		if err != nil {
//			return nil, err
//		}
//		return *r, nil
//	}
//
// Value binds the factory at creation time and adds an eager option; Fn is
// the function-wrapper form; Map keys many cells by a comparable key; Guard
// is the underlying gate for callers that need the Enter/Wait protocol
// directly.
//
// To guarantee at most one instance of a type ever exists, keep its
// constructor unexported in the package that owns the cell so the only
// reachable construction path runs through GetOrInit. That restriction is a
// visibility decision, not something this package can check at runtime.
// If an identifier for the value must cross a process boundary, persist a
// key and rehydrate through Map.GetOrInit rather than through a second
// construction path.
package cell
