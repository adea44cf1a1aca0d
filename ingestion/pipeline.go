package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/index"
)

// DefaultBatchSize is the number of datasets prepared concurrently before
// the writer applies them.
const DefaultBatchSize = 1000

// PrepareFunc turns a dataset into an indexable document. It runs on pool
// workers and must not mutate shared state.
type PrepareFunc func(ctx context.Context, ds core.Dataset) (index.Prepared, error)

// ApplyFunc commits a prepared document. Calls are serialized and follow
// input order.
type ApplyFunc func(ctx context.Context, p index.Prepared) error

// Pipeline orchestrates batched, concurrent preparation of datasets.
type Pipeline struct {
	pool      *ants.Pool
	ownsPool  bool
	batchSize int
	monitor   Monitor
	progress  *ProgressTracker
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.releasePool()
		p.pool = pool
		p.ownsPool = true
		return nil
	}
}

// WithPool uses a pool owned by the caller. Release leaves it running.
func WithPool(pool *ants.Pool) Option {
	return func(p *Pipeline) error {
		if pool == nil {
			return nil
		}
		p.releasePool()
		p.pool = pool
		p.ownsPool = false
		return nil
	}
}

// WithBatchSize sets how many datasets are prepared per batch.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithMonitor sets the monitor notified of batch progress.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithProgress reports every processed dataset to tracker.
// The tracker must be started by the caller.
func WithProgress(tracker *ProgressTracker) Option {
	return func(p *Pipeline) error {
		p.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		batchSize: DefaultBatchSize,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		poolSize := runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		p.pool = pool
		p.ownsPool = true
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Run prepares and applies datasets. Per-item failures are wrapped in
// ItemError and returned together; a cancelled context stops the run before
// the next batch and is returned with the failures seen so far.
func (p *Pipeline) Run(ctx context.Context, datasets []core.Dataset, prepare PrepareFunc, apply ApplyFunc) error {
	if prepare == nil {
		return ErrPrepareRequired
	}
	if apply == nil {
		return ErrApplyRequired
	}

	var errs *multierror.Error
	for start := 0; start < len(datasets); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		end := min(start+p.batchSize, len(datasets))
		failed := p.runBatch(ctx, start, datasets[start:end], prepare, apply)
		for _, err := range failed {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (p *Pipeline) runBatch(ctx context.Context, offset int, batch []core.Dataset, prepare PrepareFunc, apply ApplyFunc) []error {
	begin := time.Now()
	p.monitor.BatchStarted(len(batch))

	prepared := make([]index.Prepared, len(batch))
	prepErrs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i, ds := range batch {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			prepared[i], prepErrs[i] = prepare(ctx, ds)
		}
		if err := p.pool.Submit(task); err != nil {
			p.logger.Warn("pool rejected preparation task, running inline", "err", err)
			task()
		}
	}
	wg.Wait()

	var failed []error
	for i := range batch {
		err := prepErrs[i]
		if err == nil {
			err = apply(ctx, prepared[i])
		}
		if err != nil {
			failed = append(failed, &ItemError{Index: offset + i, Err: err})
		}
	}

	applied := len(batch) - len(failed)
	elapsed := time.Since(begin)
	p.monitor.BatchFinished(applied, len(failed), elapsed)
	if p.progress != nil {
		p.progress.Increment(len(batch))
	}
	p.logger.Debug("batch processed", "offset", offset, "applied", applied, "failed", len(failed), "elapsed", elapsed)
	return failed
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.releasePool()
	p.pool = nil
}

func (p *Pipeline) releasePool() {
	if p.pool != nil && p.ownsPool {
		p.pool.Release()
	}
}
