// Package registry caches the backend's document listing in memory.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/docsense/docsense/internal/backend"
)

// ErrNotFound is returned when a document id is not in the registry.
var ErrNotFound = errors.New("document not found")

// Backend is the subset of the backend client the registry needs.
type Backend interface {
	ListDocuments(ctx context.Context) ([]backend.Document, error)
	DeleteDocument(ctx context.Context, docID string) error
}

// Registry maps document identifiers to metadata. Each Refresh
// replaces the mapping wholesale; there is no incremental merge, so
// the cache is always a snapshot of one listing response. Concurrent
// refreshes are last-write-wins.
type Registry struct {
	mu      sync.Mutex
	docs    map[string]backend.Document
	backend Backend
}

func New(b Backend) *Registry {
	return &Registry{
		docs:    make(map[string]backend.Document),
		backend: b,
	}
}

// Refresh fetches the full listing and replaces the in-memory
// mapping, returning the fresh listing.
func (r *Registry) Refresh(ctx context.Context) ([]backend.Document, error) {
	docs, err := r.backend.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]backend.Document, len(docs))
	for _, d := range docs {
		fresh[d.ID] = d
	}

	r.mu.Lock()
	r.docs = fresh
	r.mu.Unlock()

	return docs, nil
}

// Lookup returns the metadata for a document id.
func (r *Registry) Lookup(id string) (backend.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return backend.Document{}, ErrNotFound
	}
	return doc, nil
}

// Remove deletes the document on the backend and then refreshes the
// listing. The local mapping is never updated optimistically; removal
// is only visible once the backend has confirmed the delete.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if err := r.backend.DeleteDocument(ctx, id); err != nil {
		return err
	}
	_, err := r.Refresh(ctx)
	return err
}

// Len reports how many documents the registry currently holds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}
