package boox

import (
	"context"
	"fmt"

	"github.com/poiesic/boox/cache"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/storage"
)

// Stats summarizes the engine's contents and cache usage.
type Stats struct {
	Documents int         `json:"documents"`
	Terms     int         `json:"terms"`
	Queries   int         `json:"queries"`
	Cache     cache.Stats `json:"cache"`
}

// State returns a deep copy of the configuration, documents, inverted index
// and popularity counts.
func (e *Engine) State() *core.State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docs := e.model.Documents()
	state := &core.State{
		Configs:         e.config.Clone(),
		Documents:       make(map[string]*core.Document, len(docs)),
		Features:        e.model.Features().Clone(),
		PopularSearches: e.history.Counts(),
	}
	for id, doc := range docs {
		state.Documents[id] = doc.Clone()
	}
	return state
}

// SetState replaces all live data with a snapshot. It is never merged:
// configuration, documents, index and popularity are swapped together.
// Recent history is kept and cached rankings are dropped.
func (e *Engine) SetState(state *core.State) error {
	if err := core.ValidateState(state); err != nil {
		e.logger.Error("error occurred while restoring state", "err", err)
		return err
	}
	cfg := state.Configs.WithDefaults()
	docs := make(map[string]*core.Document, len(state.Documents))
	for id, doc := range state.Documents {
		docs[id] = doc.Clone()
	}
	features := state.Features.Clone()
	if features == nil {
		features = core.Features{}
	}

	e.mu.Lock()
	e.config = cfg
	e.model.Restore(cfg.Features, docs, features)
	e.history.Restore(state.PopularSearches)
	e.mu.Unlock()

	e.cache.Reset()
	e.logger.Debug("state restored", "documents", len(docs), "fields", len(features))
	return nil
}

// Stats reports index size, distinct query count and cache statistics.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	documents := e.model.Len()
	terms := len(e.model.Terms())
	e.mu.RUnlock()

	return Stats{
		Documents: documents,
		Terms:     terms,
		Queries:   len(e.history.Counts()),
		Cache:     e.cache.Stats(),
	}
}

// Save writes the current state to store.
func (e *Engine) Save(ctx context.Context, store storage.StateStore) error {
	if store == nil {
		return ErrStoreRequired
	}
	if err := store.SaveState(ctx, e.State()); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Load replaces the current state with the one held by store.
func (e *Engine) Load(ctx context.Context, store storage.StateStore) error {
	if store == nil {
		return ErrStoreRequired
	}
	state, err := store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	return e.SetState(state)
}
