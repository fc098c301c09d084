// Package barrier implements the rendezvous point the benchmark workers meet
// at before and after their timed copy.
package barrier

import "sync"

// Barrier blocks callers of Wait until exactly n of them have arrived, then
// releases all of them together. It is reusable: the same n parties can meet
// again, which the workers do twice per trial ("ready" and "done").
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	round   uint64
}

// New returns a barrier for n parties. It panics if n < 1.
func New(n int) *Barrier {
	if n < 1 {
		panic("barrier: parties must be at least 1")
	}
	b := &Barrier{parties: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of arrivals required to release the barrier.
func (b *Barrier) Parties() int { return b.parties }

// Wait blocks until all parties have called Wait for the current round.
// It returns true to exactly one caller per round, the last to arrive.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.round++
		b.cond.Broadcast()
		return true
	}

	for round == b.round {
		b.cond.Wait()
	}
	return false
}
