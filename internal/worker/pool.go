package worker

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

type task func()

// Gauge is the slice of prometheus.Gauge the pool reports queue depth to.
type Gauge interface {
	Inc()
	Dec()
}

type Pool struct {
	wg    sync.WaitGroup
	jobs  chan task
	depth Gauge
	log   *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool starts n workers over a queue of the given size. depth may be nil.
func NewPool(n, queue int, depth Gauge, log *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if queue < 1 {
		queue = 1024
	}
	p := &Pool{jobs: make(chan task, queue), depth: depth, log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job task) {
	if p.depth != nil {
		p.depth.Dec()
	}
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("worker task panic", "err", rec, "stack", string(debug.Stack()))
		}
	}()
	job()
}

// Submit enqueues f without blocking. It reports false when the pool is
// stopped or the queue is full.
func (p *Pool) Submit(f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	if p.depth != nil {
		p.depth.Inc()
	}
	select {
	case p.jobs <- f:
		return true
	default:
		if p.depth != nil {
			p.depth.Dec()
		}
		return false
	}
}

// Stop drains queued work and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
