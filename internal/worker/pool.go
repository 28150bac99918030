package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/rentacar-backend/internal/metrics"
)

type task func()

// Pool runs fire-and-forget side effects (events, cache writes) off the
// request path.
type Pool struct {
	wg     sync.WaitGroup
	jobs   chan task
	log    *slog.Logger
	mu     sync.RWMutex
	closed bool
}

func NewPool(n int, log *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker job panicked", "panic", r)
		}
	}()
	job()
}

// Submit enqueues f. After Stop the job runs inline so nothing is lost
// during shutdown.
func (p *Pool) Submit(f func()) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.run(f)
		return
	}
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
	p.mu.RUnlock()
}

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
