package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boox"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/metrics"
	"github.com/poiesic/boox/result"
)

// gathered returns the summed counter or gauge value, or the histogram sample
// count, of every metric family by name.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestCollector_Events(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	c.Start("a")
	c.AfterExpansion("a")
	c.AfterEncoding([]string{"A000"})
	c.AfterScoring(3)
	c.Finish([]*result.SearchResult{{}, {}}, nil)

	c.Start("a")
	c.CacheHit("a", 2)
	c.Finish(nil, nil)

	c.Start("b")
	c.Finish(nil, errors.New("boom"))

	c.BatchStarted(10)
	c.BatchFinished(8, 2, 15*time.Millisecond)

	got := gathered(t, reg)
	assert.Equal(t, 3.0, got["boox_searches_total"])
	assert.Equal(t, 1.0, got["boox_search_errors_total"])
	assert.Equal(t, 1.0, got["boox_search_zero_results_total"])
	assert.Equal(t, 1.0, got["boox_cache_hits_total"])
	assert.Equal(t, 1.0, got["boox_cache_misses_total"])
	assert.Equal(t, 0.0, got["boox_searches_in_flight"])
	assert.Equal(t, 2.0, got["boox_search_results"])
	assert.Equal(t, 1.0, got["boox_search_candidates"])
	assert.Equal(t, 1.0, got["boox_ingestion_batches_total"])
	assert.Equal(t, 10.0, got["boox_ingestion_documents_total"])
	assert.Equal(t, 1.0, got["boox_ingestion_batch_duration_seconds"])
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestCollector_WithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	engine, err := boox.New(core.Config{Features: []string{"text"}},
		boox.WithSearchMonitor(c),
		boox.WithIngestionMonitor(c),
		boox.WithPoolSize(2),
	)
	require.NoError(t, err)
	defer engine.Close()

	require.NoError(t, engine.AddDocuments(context.Background(), []core.Dataset{
		{"id": "1", "text": "alpha beta"},
		{"id": "2", "text": "gamma"},
	}))

	_, err = engine.Search(context.Background(), "alpha", nil)
	require.NoError(t, err)
	_, err = engine.Search(context.Background(), "alpha", nil)
	require.NoError(t, err)

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["boox_searches_total"])
	assert.Equal(t, 1.0, got["boox_cache_hits_total"])
	assert.Equal(t, 1.0, got["boox_cache_misses_total"])
	assert.Equal(t, 2.0, got["boox_ingestion_documents_total"])
}
