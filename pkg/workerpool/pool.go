// Package workerpool provides a bounded goroutine pool with backpressure.
//
// Submit never blocks: when every worker is busy and the queue is full it
// returns ErrPoolFull and the caller decides what to drop. Order
// notifications go through a pool so a slow SMTP server cannot pile up
// goroutines behind checkout traffic.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) { ... }
package workerpool

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

type Pool struct {
	mu     sync.RWMutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	size   int
}

// New starts size workers with a queue of 2×size pending tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan func(), size*2), size: size}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued. Shutdown waits for pending
// SubmitWait calls to finish queueing.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, runs everything already queued and waits
// for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
