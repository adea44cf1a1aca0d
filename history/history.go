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


package history

import (
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultCapacity is the number of recent queries retained.
	DefaultCapacity = 100
	// DefaultLimit bounds history, popularity and suggestion listings.
	DefaultLimit = 10
	// DefaultThreshold is the minimum count for a query to be suggested.
	DefaultThreshold = 1
)

// Popularity is a query and the number of times it was searched.
type Popularity struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// SuggestionOptions tunes Suggestions. A nil value uses all defaults.
type SuggestionOptions struct {
	// Threshold is the minimum search count; <= 0 means DefaultThreshold.
	Threshold int
	// Limit caps the suggestions returned; <= 0 means DefaultLimit.
	Limit int
	// Filter drops suggestions for which it returns false.
	Filter func(suggestion string) bool
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	capacity int
	recent   []string
	counts   map[string]int
	order    []string
}

// NewTracker creates an empty tracker. capacity <= 0 means DefaultCapacity.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		capacity: capacity,
		counts:   make(map[string]int),
	}
}

// Record notes one search for query.
func (t *Tracker) Record(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = append(t.recent, "")
	copy(t.recent[1:], t.recent)
	t.recent[0] = query
	if len(t.recent) > t.capacity {
		t.recent = t.recent[:t.capacity]
	}

	if _, ok := t.counts[query]; !ok {
		t.order = append(t.order, query)
	}
	t.counts[query]++
}

// Recent returns up to limit queries, newest first.
func (t *Tracker) Recent(limit int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := min(normalizeLimit(limit), len(t.recent))
	out := make([]string, n)
	copy(out, t.recent[:n])
	return out
}

// Popular returns up to limit queries by descending count.
// Equal counts keep the order in which queries were first seen.
func (t *Tracker) Popular(limit int) []Popularity {
	ranked := t.ranked()
	return ranked[:min(normalizeLimit(limit), len(ranked))]
}

// Suggestions returns popular queries starting with prefix, compared
// case-insensitively, most popular first.
func (t *Tracker) Suggestions(prefix string, opts *SuggestionOptions) []string {
	var o SuggestionOptions
	if opts != nil {
		o = *opts
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	limit := normalizeLimit(o.Limit)
	prefix = strings.ToLower(prefix)

	suggestions := []string{}
	for _, p := range t.ranked() {
		if len(suggestions) == limit {
			break
		}
		if p.Count < o.Threshold || !strings.HasPrefix(strings.ToLower(p.Query), prefix) {
			continue
		}
		if o.Filter != nil && !o.Filter(p.Query) {
			continue
		}
		suggestions = append(suggestions, p.Query)
	}
	return suggestions
}

// Counts returns a copy of the per-query counts.
func (t *Tracker) Counts() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]int, len(t.counts))
	for q, c := range t.counts {
		out[q] = c
	}
	return out
}

// Restore replaces the popularity counts. Recent history is left untouched.
// Restored queries are ordered by key, since maps carry no first-seen order.
func (t *Tracker) Restore(counts map[string]int) {
	order := make([]string, 0, len(counts))
	restored := make(map[string]int, len(counts))
	for q, c := range counts {
		if c <= 0 {
			continue
		}
		order = append(order, q)
		restored[q] = c
	}
	sort.Strings(order)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts = restored
	t.order = order
}

// Reset forgets everything.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = nil
	t.counts = make(map[string]int)
	t.order = nil
}

func (t *Tracker) ranked() []Popularity {
	t.mu.RLock()
	ranked := make([]Popularity, len(t.order))
	for i, q := range t.order {
		ranked[i] = Popularity{Query: q, Count: t.counts[q]}
	}
	t.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
