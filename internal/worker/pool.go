package worker

import (
	"context"
	"sync"
)

// Task is one unit of work producing an R
type Task[R any] func(ctx context.Context) R

type indexed[R any] struct {
	index int
	value R
}

type queued[R any] struct {
	index int
	task  Task[R]
}

// Pool runs tasks on a fixed number of goroutines and returns results in
// submission order.
type Pool[R any] struct {
	workers   int
	queue     chan queued[R]
	results   chan indexed[R]
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.Mutex
	submitted int
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers: workers,
		queue:   make(chan queued[R], workers*2),
		results: make(chan indexed[R], workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool[R]) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			out := indexed[R]{index: job.index, value: job.task(p.ctx)}
			select {
			case p.results <- out:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit enqueues a task. It returns false if the pool was cancelled first.
func (p *Pool[R]) Submit(task Task[R]) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- queued[R]{index: index, task: task}:
		return true
	}
}

// Wait closes the queue, waits for every task and returns results ordered
// by submission. Tasks dropped by cancellation leave a zero value.
func (p *Pool[R]) Wait() []R {
	p.mu.Lock()
	n := p.submitted
	p.mu.Unlock()

	close(p.queue)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	out := make([]R, n)
	for r := range p.results {
		out[r.index] = r.value
	}
	p.cancel()
	return out
}

// Shutdown cancels in-flight work and stops the workers
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
