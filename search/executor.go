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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
	"github.com/poiesic/boox/index"
	"github.com/poiesic/boox/result"
)

// DefaultChunkSize is the number of query codes scored per pool task.
const DefaultChunkSize = 16

// Index is the read side of an inverted index used for scoring.
type Index interface {
	Encoder() *encoder.Encoder
	Fields() []string
	OrderedPostings(field, code string) []index.Posting
	IDF(code string) float64
	Terms() map[string]struct{}
	Document(id string) (*core.Document, bool)
}

var _ Index = (*index.Model)(nil)

// MatchingCoefficientFunc rates how well a document's attributes match a query.
// Positive values add value*maxScore to the document's score.
type MatchingCoefficientFunc func(ctx context.Context, enc *encoder.Encoder, query string, attributes core.Attributes) (float64, error)

// Request describes one scoring run. Query must already be normalized.
type Request struct {
	Query               string
	HighlightTag        [2]string
	UseQueryVector      bool
	MatchingCoefficient MatchingCoefficientFunc
}

// Executor scores queries against an Index.
type Executor struct {
	pool      *ants.Pool
	chunkSize int
	monitor   SearchMonitor
	logger    *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithPool spreads scoring over a worker pool owned by the caller.
// A nil pool scores sequentially.
func WithPool(pool *ants.Pool) Option {
	return func(e *Executor) error {
		e.pool = pool
		return nil
	}
}

// WithChunkSize sets how many query codes each pool task scores.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(e *Executor) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		e.chunkSize = size
		return nil
	}
}

// WithMonitor sets the monitor notified of encoding and scoring progress.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Executor) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// NewExecutor creates a sequential executor unless WithPool is given.
func NewExecutor(opts ...Option) (*Executor, error) {
	e := &Executor{
		chunkSize: DefaultChunkSize,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search-executor")
	return e, nil
}

// Execute returns every matching document ranked by descending score.
// Equal scores keep candidate order: integer-like IDs ascending, then other
// IDs in the order they were first matched.
func (e *Executor) Execute(ctx context.Context, idx Index, req Request) ([]*result.SearchResult, error) {
	results, err := e.Score(ctx, idx, req)
	if err != nil {
		return nil, err
	}
	if req.MatchingCoefficient != nil {
		if err := e.ApplyCoefficient(ctx, idx.Encoder(), results, req.MatchingCoefficient); err != nil {
			return nil, err
		}
	}
	Rank(results)
	return results, nil
}

// Score returns the raw-scored candidates in candidate order, unranked.
// req.MatchingCoefficient is ignored. Results only reference immutable
// document data, so callers may release any index lock before using them.
func (e *Executor) Score(ctx context.Context, idx Index, req Request) ([]*result.SearchResult, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	enc := idx.Encoder()
	codes := enc.Encode(req.Query)
	e.monitor.AfterEncoding(codes)

	var queryTF map[string]float64
	if req.UseQueryVector {
		queryTF = QueryTermFrequencies(codes, idx.Terms())
	}

	acc, err := e.accumulate(ctx, idx, codes, queryTF)
	if err != nil {
		return nil, err
	}
	results := acc.results(enc, idx, req)
	e.monitor.AfterScoring(len(results))
	e.logger.Debug("scored query", "query", req.Query, "codes", len(codes), "candidates", len(results))
	return results, nil
}

// QueryTermFrequencies computes query-side term frequencies for the codes the
// index knows. Repeated codes accumulate once per repetition.
func QueryTermFrequencies(codes []string, terms map[string]struct{}) map[string]float64 {
	tf := make(map[string]float64)
	for _, code := range codes {
		if _, ok := terms[code]; ok {
			tf[code] += index.TermFrequency(codes, code)
		}
	}
	return tf
}

// Rank sorts results by descending score, keeping the order of equal scores.
func Rank(results []*result.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// MaxScore returns the highest score, or 0 when every score is below zero.
func MaxScore(results []*result.SearchResult) float64 {
	highest := 0.0
	for _, r := range results {
		if r.Score > highest {
			highest = r.Score
		}
	}
	return highest
}

func (e *Executor) accumulate(ctx context.Context, idx Index, codes []string, queryTF map[string]float64) (*accumulator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields := idx.Fields()
	if e.pool == nil || len(codes) <= e.chunkSize {
		return scoreCodes(idx, fields, codes, queryTF), nil
	}

	chunks := (len(codes) + e.chunkSize - 1) / e.chunkSize
	partials := make([]*accumulator, chunks)
	var wg sync.WaitGroup
	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		start := i * e.chunkSize
		end := min(start+e.chunkSize, len(codes))
		chunk := codes[start:end]
		slot := i

		wg.Add(1)
		task := func() {
			defer wg.Done()
			partials[slot] = scoreCodes(idx, fields, chunk, queryTF)
		}
		if err := e.pool.Submit(task); err != nil {
			e.logger.Warn("pool rejected scoring task, running inline", "err", err)
			task()
		}
	}
	wg.Wait()

	merged := newAccumulator()
	for _, p := range partials {
		merged.merge(p)
	}
	return merged, nil
}

// ApplyCoefficient adds maxScore*coefficient to every result whose
// coefficient is positive, where maxScore is the highest score before any
// adjustment. The first failing call aborts the pass without changing scores.
func (e *Executor) ApplyCoefficient(ctx context.Context, enc *encoder.Encoder, results []*result.SearchResult, fn MatchingCoefficientFunc) error {
	highest := MaxScore(results)
	coefficients := make([]float64, len(results))
	errs := make([]error, len(results))

	compute := func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		coefficients[i], errs[i] = fn(ctx, enc, results[i].Query, results[i].Attributes)
	}

	if e.pool == nil {
		for i := range results {
			compute(i)
			if errs[i] != nil {
				break
			}
		}
	} else {
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			task := func() {
				defer wg.Done()
				compute(i)
			}
			if err := e.pool.Submit(task); err != nil {
				task()
			}
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return err
		}
		return fmt.Errorf("%w: document %q: %w", ErrMatchingCoefficient, results[i].ID, err)
	}

	for i, c := range coefficients {
		if c > 0 {
			results[i].Score += highest * c
		}
	}
	return nil
}

func scoreCodes(idx Index, fields []string, codes []string, queryTF map[string]float64) *accumulator {
	acc := newAccumulator()
	for _, code := range codes {
		qtf := queryTF[code]
		for _, field := range fields {
			postings := idx.OrderedPostings(field, code)
			if len(postings) == 0 {
				continue
			}
			idf := idx.IDF(code)
			for _, p := range postings {
				acc.add(p.DocID, contribution{tfidf: p.TF * idf, queryTFIDF: qtf * idf})
			}
		}
	}
	return acc
}

type contribution struct {
	tfidf      float64
	queryTFIDF float64
}

type candidate struct {
	id            string
	contributions []contribution
}

// accumulator collects contributions per document in match order. Sums are
// taken only once all contributions are known so that chunked and sequential
// scoring add the same terms in the same order.
type accumulator struct {
	byID  map[string]*candidate
	order []*candidate
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]*candidate)}
}

func (a *accumulator) add(id string, c contribution) {
	cand, ok := a.byID[id]
	if !ok {
		cand = &candidate{id: id}
		a.byID[id] = cand
		a.order = append(a.order, cand)
	}
	cand.contributions = append(cand.contributions, c)
}

func (a *accumulator) merge(other *accumulator) {
	if other == nil {
		return
	}
	for _, cand := range other.order {
		for _, c := range cand.contributions {
			a.add(cand.id, c)
		}
	}
}

func (a *accumulator) results(enc *encoder.Encoder, idx Index, req Request) []*result.SearchResult {
	ordered := append([]*candidate(nil), a.order...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ai, aok := index.ArrayIndex(ordered[i].id)
		bi, bok := index.ArrayIndex(ordered[j].id)
		if aok && bok {
			return ai < bi
		}
		return aok && !bok
	})

	results := make([]*result.SearchResult, 0, len(ordered))
	for _, cand := range ordered {
		doc, ok := idx.Document(cand.id)
		if !ok {
			continue
		}
		r := result.New(enc, req.Query, doc, req.HighlightTag)
		if req.UseQueryVector {
			var dot, querySquare float64
			for _, c := range cand.contributions {
				dot += c.tfidf * c.queryTFIDF
				querySquare += c.queryTFIDF * c.queryTFIDF
			}
			r.Score = dot / (math.Sqrt(querySquare) * doc.Magnitude)
		} else {
			for _, c := range cand.contributions {
				r.Score += c.tfidf
			}
		}
		results = append(results, r)
	}
	return results
}
