package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when work is submitted to a closed pool.
var ErrClosed = errors.New("parallel: pool closed")

// Task is a unit of work. A task should return promptly once ctx is done.
type Task func(ctx context.Context) error

// WorkerPool runs tasks on a fixed set of goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so one slow task does not hold back work queued behind it.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup

	// mu orders submission against Close: queues only receive work while
	// done is open, so the workers' final drain sees every queued task.
	mu      sync.RWMutex
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// Non-positive values use GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
			continue
		default:
		}

		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task and waits for all of them.
//
// The first error cancels the context passed to the remaining tasks and is
// returned once every started task has finished. Tasks not yet started when
// ctx is cancelled are skipped. On a closed pool ExecuteAll returns
// ErrClosed without running anything. A concurrent Close waits until the
// tasks are queued, and the queued tasks still run.
func (p *WorkerPool) ExecuteAll(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return ErrClosed
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel(err)
		})
	}

	wg.Add(len(tasks))
	for i, task := range tasks {
		fn := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx); err != nil {
				fail(err)
			}
		}

		p.queues[i%p.workers] <- fn
	}
	p.mu.RUnlock()
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return firstErr
}

// Close stops the pool after the queued work has run. It is safe to call
// more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// Run executes tasks on a temporary pool of the given size and returns the
// first error.
func Run(ctx context.Context, workers int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p := NewWorkerPool(min(max(workers, 0), len(tasks)))
	defer p.Close()
	return p.ExecuteAll(ctx, tasks)
}
