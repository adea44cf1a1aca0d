package boox

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/index"
	"github.com/poiesic/boox/ingestion"
)

type mutation int

const (
	mutationAdd mutation = iota
	mutationUpdate
)

func (m mutation) failureMessage() string {
	if m == mutationUpdate {
		return "error occurred while updating document"
	}
	return "error occurred while adding document"
}

// AddDocumentSync indexes one dataset. The error is also logged.
func (e *Engine) AddDocumentSync(ds core.Dataset) error {
	return e.mutateOne(ds, mutationAdd)
}

// AddDocument indexes one dataset unless ctx is already done.
func (e *Engine) AddDocument(ctx context.Context, ds core.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.mutateOne(ds, mutationAdd)
}

// AddDocumentsSync indexes datasets one after another. Failed datasets are
// skipped; every failure is logged and returned together.
func (e *Engine) AddDocumentsSync(datasets []core.Dataset) error {
	return e.mutateAll(datasets, mutationAdd)
}

// AddDocuments indexes datasets through the worker pool. Documents are
// prepared concurrently and applied in input order. Failed datasets are
// skipped; every failure is logged and returned together.
func (e *Engine) AddDocuments(ctx context.Context, datasets []core.Dataset) error {
	return e.mutateAsync(ctx, datasets, mutationAdd)
}

// UpdateDocumentSync replaces the indexed document with the dataset's ID,
// adding it if absent.
func (e *Engine) UpdateDocumentSync(ds core.Dataset) error {
	return e.mutateOne(ds, mutationUpdate)
}

// UpdateDocument is UpdateDocumentSync unless ctx is already done.
func (e *Engine) UpdateDocument(ctx context.Context, ds core.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.mutateOne(ds, mutationUpdate)
}

// UpdateDocumentsSync updates datasets one after another.
func (e *Engine) UpdateDocumentsSync(datasets []core.Dataset) error {
	return e.mutateAll(datasets, mutationUpdate)
}

// UpdateDocuments updates datasets through the worker pool.
func (e *Engine) UpdateDocuments(ctx context.Context, datasets []core.Dataset) error {
	return e.mutateAsync(ctx, datasets, mutationUpdate)
}

// RemoveDocument drops a document from the index.
// It reports false when no document has the ID.
func (e *Engine) RemoveDocument(id string) bool {
	e.mu.Lock()
	if _, ok := e.model.Document(id); !ok {
		e.mu.Unlock()
		return false
	}
	e.model.Remove(id)
	e.mu.Unlock()

	e.cache.Reset()
	return true
}

// Document returns a copy of an indexed document.
func (e *Engine) Document(id string) (*core.Document, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc, ok := e.model.Document(id)
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.Len()
}

func (e *Engine) mutateOne(ds core.Dataset, m mutation) error {
	p, err := e.prepare(ds, m)
	if err == nil {
		err = e.apply(p, m)
	}
	if err != nil {
		e.logger.Error(m.failureMessage(), "err", err)
	}
	return err
}

func (e *Engine) mutateAll(datasets []core.Dataset, m mutation) error {
	var errs *multierror.Error
	for i, ds := range datasets {
		if err := e.mutateOne(ds, m); err != nil {
			errs = multierror.Append(errs, &ingestion.ItemError{Index: i, Err: err})
		}
	}
	return errs.ErrorOrNil()
}

func (e *Engine) mutateAsync(ctx context.Context, datasets []core.Dataset, m mutation) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	prepare := func(_ context.Context, ds core.Dataset) (index.Prepared, error) {
		p, err := e.prepare(ds, m)
		if err != nil {
			e.logger.Error(m.failureMessage(), "err", err)
		}
		return p, err
	}
	apply := func(_ context.Context, p index.Prepared) error {
		err := e.apply(p, m)
		if err != nil {
			e.logger.Error(m.failureMessage(), "err", err)
		}
		return err
	}
	return e.pipeline.Run(ctx, datasets, prepare, apply)
}

// prepare builds and encodes a document without touching the index.
func (e *Engine) prepare(ds core.Dataset, m mutation) (index.Prepared, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, err := buildDocument(e.config, ds)
	if err != nil {
		return index.Prepared{}, err
	}
	if m == mutationAdd {
		if _, exists := e.model.Document(doc.ID); exists {
			return index.Prepared{}, &DuplicateDocumentError{ID: doc.ID}
		}
	}
	return e.model.Prepare(doc), nil
}

// apply commits a prepared document. Duplicates are checked again because
// another writer may have added the ID since preparation.
func (e *Engine) apply(p index.Prepared, m mutation) error {
	e.mu.Lock()
	id := p.Document.ID
	_, exists := e.model.Document(id)
	switch {
	case m == mutationAdd && exists:
		e.mu.Unlock()
		return &DuplicateDocumentError{ID: id}
	case m == mutationUpdate && exists:
		e.model.Remove(id)
	}
	e.model.Apply(p)
	e.mu.Unlock()

	e.cache.Reset()
	return nil
}

// buildDocument copies the truthy feature and attribute values of a dataset.
func buildDocument(cfg core.Config, ds core.Dataset) (*core.Document, error) {
	id, ok := core.DocumentID(ds[cfg.ID])
	if !ok {
		return nil, &MissingIDError{Field: cfg.ID}
	}
	doc := &core.Document{ID: id, Attributes: core.Attributes{}}
	for _, key := range cfg.AttributeKeys() {
		if v, ok := ds[key]; ok && core.IsTruthy(v) {
			doc.Attributes[key] = v
		}
	}
	return doc, nil
}
