package photonmap

import (
	"context"
	"sync"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/shooting"
)

// WorkerPool runs one shooting pass per worker. Workers pull units from a
// shared channel and deposit into their pass's private maps, so the only
// shared state during shooting is the channel itself.
type WorkerPool struct {
	passes     []*shooting.Pass
	numWorkers int
	checkpoint func(ctx context.Context) error
	wg         sync.WaitGroup
	cancel     context.CancelFunc

	mu  sync.Mutex
	err error
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// checkpoint, if non-nil, is called by every pass before each ring.
func NewWorkerPool(tracer shooting.Tracer, settings config.Photons, numWorkers int, checkpoint func(ctx context.Context) error) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = config.DefaultWorkers()
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		checkpoint: checkpoint,
	}
	for i := 0; i < numWorkers; i++ {
		wp.passes = append(wp.passes, shooting.NewPass(i, tracer, settings))
	}
	return wp
}

// Passes returns the workers' passes, in worker order
func (wp *WorkerPool) Passes() []*shooting.Pass {
	return wp.passes
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Start begins all workers on units. The first worker error cancels the others.
func (wp *WorkerPool) Start(ctx context.Context, units <-chan shooting.Unit) {
	ctx, wp.cancel = context.WithCancel(ctx)

	for _, pass := range wp.passes {
		if wp.checkpoint != nil {
			pass.Checkpoint = func() error { return wp.checkpoint(ctx) }
		}
		wp.wg.Add(1)
		go wp.run(ctx, pass, units)
	}
}

// Wait blocks until every worker has returned and reports the first error
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	if wp.cancel != nil {
		wp.cancel()
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.err
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context, pass *shooting.Pass, units <-chan shooting.Unit) {
	defer wp.wg.Done()

	if err := pass.Run(ctx, units); err != nil {
		wp.mu.Lock()
		if wp.err == nil {
			wp.err = err
		}
		wp.mu.Unlock()
		wp.cancel()
	}
}
