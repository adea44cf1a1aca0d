package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/storage"
)

// recordPrefixes lists every key prefix owned by a StateRepository.
var recordPrefixes = []string{configKey, documentPrefix, fieldPrefix, postingsPrefix, popularPrefix}

// SaveStats counts what the last SaveState did.
type SaveStats struct {
	Written int
	Skipped int
	Deleted int
}

// StateRepository implements storage.StateStore for BadgerDB. Each document,
// posting list and popularity count is its own record, so saving a state
// that differs little from the stored one rewrites little.
type StateRepository struct {
	backend *Backend

	mu     sync.Mutex
	closed bool
	last   SaveStats
}

var _ storage.StateStore = (*StateRepository)(nil)

// NewStateRepository creates a StateRepository over backend.
// The repository does not own the backend; close it separately.
func NewStateRepository(backend *Backend) *StateRepository {
	return &StateRepository{backend: backend}
}

// Close marks the repository closed. The backend stays open.
func (r *StateRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// LastSave returns the counts of the most recent successful SaveState.
func (r *StateRepository) LastSave() SaveStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *StateRepository) checkOpen() error {
	if r.closed || r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// SaveState writes every record of state, skipping records whose stored
// bytes already hash to the same digest, and deletes records state no
// longer holds. Writes go through a WriteBatch and are not atomic.
func (r *StateRepository) SaveState(ctx context.Context, state *core.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}

	records, err := encodeState(state)
	if err != nil {
		return err
	}
	existing, err := r.storedDigests(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var stats SaveStats
	err = r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i, k := range keys {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			value := records[k]
			if digest, ok := existing[k]; ok && storage.SameDigest(value, digest) {
				stats.Skipped++
				continue
			}
			if err := wb.Set([]byte(k), value); err != nil {
				return err
			}
			stats.Written++
		}
		for k := range existing {
			if _, keep := records[k]; keep {
				continue
			}
			if err := wb.Delete([]byte(k)); err != nil {
				return err
			}
			stats.Deleted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	r.last = stats
	r.backend.logger.Debug("state saved", "written", stats.Written, "skipped", stats.Skipped, "deleted", stats.Deleted)
	return nil
}

// LoadState reads the stored state. It returns storage.ErrNotFound when no
// state was ever saved.
func (r *StateRepository) LoadState(ctx context.Context) (*core.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var state *core.State
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(configKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		var cfg core.Config
		if err := item.Value(func(val []byte) error {
			cfg, err = storage.UnmarshalConfig(val)
			return err
		}); err != nil {
			return err
		}
		state = core.NewState(cfg)

		err = scanPrefix(ctx, tx, documentPrefix, func(key, val []byte) error {
			doc, err := storage.UnmarshalDocument(val)
			if err != nil {
				return fmt.Errorf("document %q: %w", key, err)
			}
			state.Documents[doc.ID] = doc
			return nil
		})
		if err != nil {
			return err
		}

		err = scanPrefix(ctx, tx, fieldPrefix, func(key, _ []byte) error {
			field, _ := trimKeyPrefix(key, fieldPrefix)
			state.Features[field] = core.Encodings{}
			return nil
		})
		if err != nil {
			return err
		}

		err = scanPrefix(ctx, tx, postingsPrefix, func(key, val []byte) error {
			field, code, ok := parsePostingsKey(key)
			if !ok {
				return fmt.Errorf("%w: malformed postings key %q", storage.ErrSerializationFailed, key)
			}
			postings, err := storage.UnmarshalPostings(val)
			if err != nil {
				return fmt.Errorf("postings %q/%q: %w", field, code, err)
			}
			encodings, ok := state.Features[field]
			if !ok {
				encodings = core.Encodings{}
				state.Features[field] = encodings
			}
			encodings[code] = postings
			return nil
		})
		if err != nil {
			return err
		}

		return scanPrefix(ctx, tx, popularPrefix, func(key, val []byte) error {
			query, _ := trimKeyPrefix(key, popularPrefix)
			count, err := storage.UnmarshalCount(val)
			if err != nil {
				return fmt.Errorf("popular search %q: %w", query, err)
			}
			state.PopularSearches[query] = count
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Clear deletes every stored record.
func (r *StateRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.backend.DropPrefix(recordPrefixes...)
}

// storedDigests hashes the value of every stored record.
func (r *StateRepository) storedDigests(ctx context.Context) (map[string][]byte, error) {
	digests := make(map[string][]byte)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range recordPrefixes {
			err := scanPrefix(ctx, tx, prefix, func(key, val []byte) error {
				digests[string(key)] = storage.Digest(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return digests, err
}

// scanPrefix calls fn for every key under prefix. key and val are only valid
// during the call.
func scanPrefix(ctx context.Context, tx *badger.Txn, prefix string, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := iter.Item()
		key := item.Key()
		if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
			return err
		}
	}
	return nil
}

// encodeState renders state as key/value records.
func encodeState(state *core.State) (map[string][]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state is nil", storage.ErrSerializationFailed)
	}
	records := make(map[string][]byte, 1+len(state.Documents)+len(state.PopularSearches))
	records[configKey] = storage.MarshalConfig(state.Configs)

	for id, doc := range state.Documents {
		if doc == nil {
			continue
		}
		data, err := storage.MarshalDocument(doc)
		if err != nil {
			return nil, err
		}
		records[string(makeDocumentKey(id))] = data
	}
	for field, encodings := range state.Features {
		records[string(makeFieldKey(field))] = []byte{}
		for code, postings := range encodings {
			records[string(makePostingsKey(field, code))] = storage.MarshalPostings(postings)
		}
	}
	for query, count := range state.PopularSearches {
		records[string(makePopularKey(query))] = storage.MarshalCount(count)
	}
	return records, nil
}
