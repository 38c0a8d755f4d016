package resilience

import "sync"

// SingleFlight collapses concurrent calls sharing a key into one execution.
// The zero value is ready to use.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn unless another goroutine is already running it for the same
// key. Waiters receive that call's result with shared set to true.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flightResult)
	}
	if existing, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-existing.done
		return existing.val, existing.err, true
	}

	current := &flightResult{done: make(chan struct{})}
	g.inflight[key] = current
	g.mu.Unlock()

	current.val, current.err = fn()
	close(current.done)

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return current.val, current.err, false
}
