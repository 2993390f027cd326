package runner

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many child processes may be alive at once
type Pool struct {
	maxJobs        int
	sem            *semaphore.Weighted
	mu             sync.Mutex
	inUse          int
	peak           int
	onSlotsChanged func(available int) // Callback when slots change
}

// NewPool creates a pool with the given capacity. A capacity below 1 is
// raised to 1.
func NewPool(maxJobs int) *Pool {
	if maxJobs < 1 {
		maxJobs = 1
	}
	return &Pool{
		maxJobs: maxJobs,
		sem:     semaphore.NewWeighted(int64(maxJobs)),
	}
}

// SetOnSlotsChanged sets a callback to be invoked when slot availability changes
func (p *Pool) SetOnSlotsChanged(callback func(available int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSlotsChanged = callback
}

// Acquire blocks until a slot is free or ctx is done
func (p *Pool) Acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.claimed()
	return nil
}

func (p *Pool) claimed() {
	p.mu.Lock()
	p.inUse++
	if p.inUse > p.peak {
		p.peak = p.inUse
	}
	callback := p.onSlotsChanged
	available := p.maxJobs - p.inUse
	p.mu.Unlock()

	// Notify outside of lock to avoid deadlock
	if callback != nil {
		callback(available)
	}
}

// Release returns a slot to the pool. Releasing an idle pool is a no-op.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.inUse == 0 {
		p.mu.Unlock()
		return
	}
	p.inUse--
	callback := p.onSlotsChanged
	available := p.maxJobs - p.inUse
	p.sem.Release(1)
	p.mu.Unlock()

	if callback != nil {
		callback(available)
	}
}

// Available returns the number of free slots
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxJobs - p.inUse
}

// InUse returns the number of claimed slots
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Peak returns the highest number of slots ever claimed at once
func (p *Pool) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// MaxJobs returns the pool capacity
func (p *Pool) MaxJobs() int {
	return p.maxJobs
}
