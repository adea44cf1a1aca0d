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


// Package metrics exposes engine activity as Prometheus metrics.
//
// A Collector implements both search.SearchMonitor and ingestion.Monitor, so
// one value can be handed to boox.WithSearchMonitor and
// boox.WithIngestionMonitor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/boox/ingestion"
	"github.com/poiesic/boox/result"
	"github.com/poiesic/boox/search"
)

const namespace = "boox"

var (
	_ search.SearchMonitor = (*Collector)(nil)
	_ ingestion.Monitor    = (*Collector)(nil)
)

// Collector holds the Prometheus collectors for one engine.
type Collector struct {
	SearchesTotal     prometheus.Counter
	SearchErrorsTotal prometheus.Counter
	ZeroResultsTotal  prometheus.Counter
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
	SearchesInFlight  prometheus.Gauge
	SearchResults     prometheus.Histogram
	SearchCandidates  prometheus.Histogram
	QueryCodes        prometheus.Histogram
	BatchesTotal      prometheus.Counter
	DocumentsTotal    *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
}

// New creates a Collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches started.",
		}),
		SearchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Total number of searches that failed.",
		}),
		ZeroResultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_zero_results_total",
			Help:      "Total number of successful searches that returned no results.",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of searches answered from the ranking cache.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of searches scored against the index.",
		}),
		SearchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "searches_in_flight",
			Help:      "Number of searches currently running.",
		}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
		}),
		SearchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_candidates",
			Help:      "Number of documents scored per uncached search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		QueryCodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_codes",
			Help:      "Number of phonetic codes per encoded query.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_batches_total",
			Help:      "Total number of ingestion batches processed.",
		}),
		DocumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_documents_total",
			Help:      "Total number of ingested datasets by status (applied, failed).",
		}, []string{"status"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_batch_duration_seconds",
			Help:      "Time taken to prepare and apply one ingestion batch.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	for _, collector := range []prometheus.Collector{
		c.SearchesTotal, c.SearchErrorsTotal, c.ZeroResultsTotal,
		c.CacheHitsTotal, c.CacheMissesTotal, c.SearchesInFlight,
		c.SearchResults, c.SearchCandidates, c.QueryCodes,
		c.BatchesTotal, c.DocumentsTotal, c.BatchDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) Start(_ string) {
	c.SearchesTotal.Inc()
	c.SearchesInFlight.Inc()
}

func (c *Collector) AfterExpansion(_ string) {}

func (c *Collector) CacheHit(_ string, _ int) {
	c.CacheHitsTotal.Inc()
}

func (c *Collector) AfterEncoding(codes []string) {
	c.QueryCodes.Observe(float64(len(codes)))
}

func (c *Collector) AfterScoring(candidates int) {
	c.CacheMissesTotal.Inc()
	c.SearchCandidates.Observe(float64(candidates))
}

func (c *Collector) Finish(results []*result.SearchResult, err error) {
	c.SearchesInFlight.Dec()
	if err != nil {
		c.SearchErrorsTotal.Inc()
		return
	}
	if len(results) == 0 {
		c.ZeroResultsTotal.Inc()
	}
	c.SearchResults.Observe(float64(len(results)))
}

func (c *Collector) BatchStarted(_ int) {
	c.BatchesTotal.Inc()
}

func (c *Collector) BatchFinished(applied, failed int, elapsed time.Duration) {
	c.DocumentsTotal.WithLabelValues("applied").Add(float64(applied))
	c.DocumentsTotal.WithLabelValues("failed").Add(float64(failed))
	c.BatchDuration.Observe(elapsed.Seconds())
}
