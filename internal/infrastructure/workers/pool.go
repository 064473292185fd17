package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a unit of work. Panics are recovered and reported through the pool logger.
type Task func()

// Stats describes pool activity
type Stats struct {
	Size      int
	Submitted uint64
	Completed uint64
	Panics    uint64
}

// Pool runs tasks on a fixed set of goroutines
type Pool struct {
	size   int
	tasks  chan Task
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	submitted atomic.Uint64
	completed atomic.Uint64
	panics    atomic.Uint64
}

// NewPool starts size workers. A non-positive size defaults to 4.
func NewPool(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		size:   size,
		tasks:  make(chan Task, size),
		logger: logger,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error("Worker task panicked", zap.String("panic", fmt.Sprint(r)))
		}
		p.completed.Add(1)
	}()
	task()
}

// Submit queues task, blocking until a worker slot frees up or ctx ends.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Stats returns a snapshot of pool counters
func (p *Pool) Stats() Stats {
	return Stats{
		Size:      p.size,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panics:    p.panics.Load(),
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
