package history

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *Tracker, queries ...string) {
	for _, q := range queries {
		t.Record(q)
	}
}

func TestRecent(t *testing.T) {
	tr := NewTracker(0)
	record(tr, "lorem ipsum", "dolor sit")

	assert.Equal(t, []string{"dolor sit", "lorem ipsum"}, tr.Recent(0))
	assert.Equal(t, []string{"dolor sit"}, tr.Recent(1))
	assert.Empty(t, NewTracker(0).Recent(5))
}

func TestRecentCapacity(t *testing.T) {
	tr := NewTracker(3)
	record(tr, "a", "b", "c", "d")
	assert.Equal(t, []string{"d", "c", "b"}, tr.Recent(10))

	def := NewTracker(0)
	for i := 0; i < 150; i++ {
		def.Record(fmt.Sprintf("q%d", i))
	}
	assert.Len(t, def.Recent(1000), DefaultCapacity)
	assert.Equal(t, "q149", def.Recent(1)[0])
}

func TestPopular(t *testing.T) {
	tr := NewTracker(0)
	record(tr, "lorem ipsum", "lorem ipsum", "dolor sit")

	assert.Equal(t, []Popularity{
		{Query: "lorem ipsum", Count: 2},
		{Query: "dolor sit", Count: 1},
	}, tr.Popular(0))

	tie := NewTracker(0)
	record(tie, "b", "a", "c", "a")
	assert.Equal(t, []Popularity{{"a", 2}, {"b", 1}, {"c", 1}}, tie.Popular(10))
	assert.Len(t, tie.Popular(1), 1)
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		queries []string
		prefix  string
		opts    *SuggestionOptions
		want    []string
	}{
		{
			name:    "defaults",
			queries: []string{"document 1", "document 2", "document 3"},
			prefix:  "doc",
			want:    []string{"document 1", "document 2", "document 3"},
		},
		{
			name:    "threshold",
			queries: []string{"document 1", "document 3", "document 2", "document 3"},
			prefix:  "doc",
			opts:    &SuggestionOptions{Threshold: 2},
			want:    []string{"document 3"},
		},
		{
			name:    "filter and limit",
			queries: []string{"document 1", "document 3", "document 2", "document 3"},
			prefix:  "doc",
			opts: &SuggestionOptions{
				Limit:  3,
				Filter: func(s string) bool { return !strings.Contains(s, "2") },
			},
			want: []string{"document 3", "document 1"},
		},
		{
			name:    "case insensitive prefix",
			queries: []string{"Lorem", "other"},
			prefix:  "LO",
			want:    []string{"Lorem"},
		},
		{
			name:    "limit applies after filtering",
			queries: []string{"a1", "a2", "a3"},
			prefix:  "a",
			opts:    &SuggestionOptions{Limit: 1, Filter: func(s string) bool { return s != "a1" }},
			want:    []string{"a2"},
		},
		{
			name:   "no history",
			prefix: "x",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(0)
			record(tr, tt.queries...)
			assert.Equal(t, tt.want, tr.Suggestions(tt.prefix, tt.opts))
		})
	}
}

func TestCountsAndRestore(t *testing.T) {
	tr := NewTracker(0)
	record(tr, "x", "y", "x")

	counts := tr.Counts()
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, counts)
	counts["x"] = 99
	assert.Equal(t, 2, tr.Counts()["x"], "Counts returns a copy")

	tr.Restore(map[string]int{"b": 1, "a": 1, "c": 3, "zero": 0})
	assert.Equal(t, []Popularity{{"c", 3}, {"a", 1}, {"b", 1}}, tr.Popular(10))
	assert.Equal(t, []string{"x"}, tr.Recent(1), "recent history survives restore")

	tr.Reset()
	assert.Empty(t, tr.Counts())
	assert.Empty(t, tr.Recent(10))
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Record("q")
				_ = tr.Suggestions("q", nil)
			}
		}()
	}
	wg.Wait()

	require.Len(t, tr.Popular(1), 1)
	assert.Equal(t, 1000, tr.Popular(1)[0].Count)
}
