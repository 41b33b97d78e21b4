// Package workerpool provides the bounded pool of goroutines that runs
// blocking driver calls off the caller's goroutine.
package workerpool

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit after the pool has been closed.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Config represents the configuration for a Pool instance.
type Config struct {
	// Workers is the number of goroutines executing submitted tasks.
	// Zero means runtime.NumCPU(). Must not be negative.
	Workers int
	// QueueSize is the capacity of the pending-task queue. Zero means
	// the default of 128. Must not be negative. Submit only blocks when
	// the queue is full.
	QueueSize int
}

// Pool executes submitted tasks on a fixed set of worker goroutines.
// Tasks are picked up in submission order, but completion order across
// workers is unspecified; callers needing ordering must wait for one
// task's result before submitting the next.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates a Pool with the specified limits and starts its workers.
func NewPool(config Config) (*Pool, error) {
	if config.Workers < 0 {
		return nil, errors.New("workers cannot be negative")
	}
	if config.QueueSize < 0 {
		return nil, errors.New("queue size cannot be negative")
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.QueueSize == 0 {
		config.QueueSize = 128
	}

	p := &Pool{
		tasks: make(chan func(), config.QueueSize),
	}

	for i := 0; i < config.Workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	return p, nil
}

// run drains the task channel until the pool is closed.
func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task for execution. It never runs the task on the
// calling goroutine. If the pool is closed, ErrPoolClosed is returned.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.tasks <- task
	return nil
}

// Close stops accepting tasks, waits for already-submitted ones to finish,
// and joins the workers. Subsequent calls are no-ops.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}
