package cell

import (
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/xerrors"
)

// ErrFactoryPanic is delivered to goroutines waiting on an initialization
// round whose factory panicked. The panic itself is rethrown on the
// goroutine that ran the factory.
var ErrFactoryPanic = xerrors.New("cell: factory panicked before publishing a value")

// Guard states. ready is terminal; a failed round returns the guard to
// uninitialized so a later call may retry.
const (
	stateUninitialized uint32 = iota
	stateInitializing
	stateReady
)

// Role tells a caller of Enter what it must do next.
type Role uint8

const (
	// RoleReady means a value has already been published; proceed without
	// further synchronization.
	RoleReady Role = iota
	// RoleWinner means the caller claimed this initialization round. It
	// must run its factory and then call Succeed or Fail.
	RoleWinner
	// RoleWaiter means another goroutine holds the round; call Wait.
	RoleWaiter
)

// attempt is a single initialization round. err is written before done is
// closed, so a receive from done orders the read of err.
type attempt struct {
	done chan struct{}
	err  error
}

// Guard ensures an initialization function runs at most once, even under
// concurrent first access. Once a round succeeds the guard is ready forever
// and every subsequent check is a single atomic load. A round that fails
// resolves all of its waiters with the error and returns the guard to the
// uninitialized state.
//
// The zero Guard is ready to use. A Guard must not be copied after first use.
type Guard struct {
	state atomic.Uint32
	mu    sync.Mutex
	round *attempt
	owner int64 // goroutine id of the round holder, 0 when idle

	counters counters
}

// Enter joins the race to initialize. Exactly one concurrent caller per
// round receives RoleWinner and must resolve the round with Succeed or
// Fail; callers that receive RoleWaiter must call Wait. Once the guard is
// ready every caller receives RoleReady at the cost of one atomic load.
//
// Calling Enter from inside the running round's own factory panics rather
// than deadlocking.
func (g *Guard) Enter() Role {
	role, _ := g.enter()
	return role
}

func (g *Guard) enter() (Role, *attempt) {
	if g.state.Load() == stateReady {
		return RoleReady, nil
	}
	g.counters.slowPaths.Inc()
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state.Load() {
	case stateReady:
		return RoleReady, nil
	case stateInitializing:
		if g.owner != 0 && g.owner == goid() {
			panic("cell: factory reentered its own cell")
		}
		return RoleWaiter, g.round
	}
	g.round = &attempt{done: make(chan struct{})}
	g.owner = goid()
	g.state.Store(stateInitializing)
	return RoleWinner, g.round
}

// Wait blocks until the current round resolves. It returns nil if the round
// published a value and the round's error if its factory failed; in the
// failure case the guard is uninitialized again and the caller may retry.
func (g *Guard) Wait() error {
	g.mu.Lock()
	a := g.round
	g.mu.Unlock()
	if a == nil {
		panic("cell: Wait without an initialization round")
	}
	<-a.done
	return a.err
}

// Succeed publishes the round as complete. Everything the winner wrote
// before Succeed is visible to any goroutine that observes the guard ready.
// Only the goroutine that received RoleWinner may call it.
func (g *Guard) Succeed() {
	g.checkOwner()
	g.resolve(nil)
}

// Fail resolves the round with err, delivering it to all waiters and
// returning the guard to the uninitialized state. Only the goroutine that
// received RoleWinner may call it.
func (g *Guard) Fail(err error) {
	if err == nil {
		panic("cell: Fail with nil error")
	}
	g.checkOwner()
	g.resolve(err)
}

func (g *Guard) checkOwner() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Load() != stateInitializing {
		panic("cell: round resolved without a winner")
	}
	if g.owner != 0 && g.owner != goid() {
		panic("cell: round resolved by a goroutine that did not win it")
	}
}

func (g *Guard) resolve(err error) {
	g.mu.Lock()
	a := g.round
	a.err = err
	g.owner = 0
	if err == nil {
		g.state.Store(stateReady)
	} else {
		g.counters.failures.Inc()
		g.state.Store(stateUninitialized)
	}
	g.mu.Unlock()
	close(a.done)
}

// Do runs init at most once per guard, driving the Enter protocol on the
// caller's behalf. The first call to return nil makes the guard ready;
// afterwards Do returns nil immediately without running init. If init
// returns an error the guard rolls back so a later Do may retry, and every
// goroutine waiting on that round receives the same error. If init panics
// the waiters receive ErrFactoryPanic and the panic is rethrown here.
//
// init must not call Do (or Enter) on the same guard; doing so panics.
// A nil init panics.
func (g *Guard) Do(init func() error) error {
	if init == nil {
		panic("cell: nil init function")
	}
	role, a := g.enter()
	switch role {
	case RoleReady:
		return nil
	case RoleWaiter:
		<-a.done
		return a.err
	}
	return g.run(init)
}

func (g *Guard) run(init func() error) (err error) {
	g.counters.attempts.Inc()
	completed := false
	defer func() {
		switch {
		case !completed:
			// init is panicking; unblock waiters before unwinding.
			g.resolve(ErrFactoryPanic)
		case err != nil:
			g.resolve(err)
		default:
			g.resolve(nil)
		}
	}()
	err = init()
	completed = true
	return err
}

// Done reports whether the guard has published a value.
func (g *Guard) Done() bool {
	return g.state.Load() == stateReady
}

// Stats returns a snapshot of the guard's instrumentation counters.
func (g *Guard) Stats() Stats {
	return g.counters.snapshot()
}
