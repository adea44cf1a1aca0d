// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package boox

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/boox/cache"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
	"github.com/poiesic/boox/history"
	"github.com/poiesic/boox/index"
	"github.com/poiesic/boox/ingestion"
	"github.com/poiesic/boox/search"
)

// Engine indexes datasets and answers queries. It is safe for concurrent use.
type Engine struct {
	// mu guards config and model. SetState swaps both under the write lock.
	mu     sync.RWMutex
	config core.Config
	model  *index.Model

	cache   *cache.ResultCache
	history *history.Tracker

	// Ingestion and search use separate pools: pooled scoring runs under the
	// read lock, while queued preparations wait for it.
	ingestPool *ants.Pool
	searchPool *ants.Pool
	pipeline   *ingestion.Pipeline
	sequential *search.Executor
	pooled     *search.Executor

	encoderOpts      []encoder.Option
	poolSize         int
	batchSize        int
	historySize      int
	searchMonitor    search.SearchMonitor
	ingestionMonitor ingestion.Monitor
	logger           *slog.Logger
	closed           atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithEncoderOptions sets the normalizer, tokenizer, stemmer and phonetic
// strategies of the engine's encoder.
func WithEncoderOptions(opts ...encoder.Option) Option {
	return func(e *Engine) error {
		e.encoderOpts = append(e.encoderOpts, opts...)
		return nil
	}
}

// WithPoolSize sets the size of each worker pool used by asynchronous
// ingestion and search. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many datasets asynchronous ingestion prepares per batch.
// Default is ingestion.DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			return ingestion.ErrInvalidBatchSize
		}
		e.batchSize = size
		return nil
	}
}

// WithHistorySize sets how many recent queries are retained.
// Default is history.DefaultCapacity.
func WithHistorySize(size int) Option {
	return func(e *Engine) error {
		e.historySize = size
		return nil
	}
}

// WithSearchMonitor sets the monitor notified of every search.
func WithSearchMonitor(monitor search.SearchMonitor) Option {
	return func(e *Engine) error {
		e.searchMonitor = monitor
		return nil
	}
}

// WithIngestionMonitor sets the monitor notified of asynchronous ingestion batches.
func WithIngestionMonitor(monitor ingestion.Monitor) Option {
	return func(e *Engine) error {
		e.ingestionMonitor = monitor
		return nil
	}
}

// New creates an empty engine. The configuration's ID field defaults to
// core.DefaultIDField.
func New(cfg core.Config, opts ...Option) (*Engine, error) {
	cfg = cfg.WithDefaults()
	if err := core.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	e := &Engine{
		config:           cfg,
		poolSize:         poolSize,
		batchSize:        ingestion.DefaultBatchSize,
		searchMonitor:    search.NoopMonitor(),
		ingestionMonitor: ingestion.NoopMonitor(),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.searchMonitor == nil {
		e.searchMonitor = search.NoopMonitor()
	}
	if e.ingestionMonitor == nil {
		e.ingestionMonitor = ingestion.NoopMonitor()
	}

	e.model = index.New(cfg.Features, encoder.New(e.encoderOpts...))
	e.cache = cache.New(e.logger)
	e.history = history.NewTracker(e.historySize)

	var err error
	if e.ingestPool, err = ants.NewPool(e.poolSize); err != nil {
		return nil, err
	}
	if e.searchPool, err = ants.NewPool(e.poolSize); err != nil {
		e.Close()
		return nil, err
	}

	e.pipeline, err = ingestion.NewPipeline(
		ingestion.WithPool(e.ingestPool),
		ingestion.WithBatchSize(e.batchSize),
		ingestion.WithMonitor(e.ingestionMonitor),
		ingestion.WithLogger(e.logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.sequential, err = search.NewExecutor(
		search.WithMonitor(e.searchMonitor),
		search.WithLogger(e.logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.pooled, err = search.NewExecutor(
		search.WithPool(e.searchPool),
		search.WithMonitor(e.searchMonitor),
		search.WithLogger(e.logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.logger = e.logger.With("component", "engine")
	return e, nil
}

// Close releases the worker pools. Synchronous operations keep working on a
// closed engine; asynchronous ones return ErrEngineClosed.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	for _, pool := range []*ants.Pool{e.ingestPool, e.searchPool} {
		if pool != nil {
			pool.Release()
		}
	}
	return nil
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() core.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Clone()
}

// Encoder returns the encoder shared by indexing and search.
func (e *Engine) Encoder() *encoder.Encoder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.Encoder()
}
