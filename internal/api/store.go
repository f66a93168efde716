package api

import (
	"sort"
	"sync"
	"time"

	"github.com/samcharles93/fbxcore/internal/export"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

type documentRecord struct {
	Summary DocumentSummary
	Doc     *fbx.Document
}

// DocumentStore owns the documents uploaded to the server. Readers hold
// the read lock for as long as they touch a document so that Delete never
// closes one in use.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*documentRecord
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*documentRecord),
	}
}

// Add takes ownership of doc and returns its summary.
func (s *DocumentStore) Add(name string, size int64, doc *fbx.Document, now time.Time) (DocumentSummary, error) {
	st, err := export.Collect(doc)
	if err != nil {
		return DocumentSummary{}, err
	}
	sum := DocumentSummary{
		ID:        newDocumentID(),
		Object:    "fbx.document",
		Name:      name,
		Size:      size,
		CreatedAt: now.Unix(),
		Stats:     st,
	}

	s.mu.Lock()
	s.docs[sum.ID] = &documentRecord{Summary: sum, Doc: doc}
	s.mu.Unlock()

	return sum, nil
}

// Get returns the summary recorded when id was added.
func (s *DocumentStore) Get(id string) (DocumentSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	if !ok {
		return DocumentSummary{}, false
	}
	return rec.Summary, true
}

// With runs fn on the document stored under id.
func (s *DocumentStore) With(id string, fn func(doc *fbx.Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	return fn(rec.Doc)
}

// List returns every summary, oldest first.
func (s *DocumentStore) List() []DocumentSummary {
	s.mu.RLock()
	out := make([]DocumentSummary, 0, len(s.docs))
	for _, rec := range s.docs {
		out = append(out, rec.Summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Delete closes and forgets the document stored under id.
func (s *DocumentStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[id]
	if !ok {
		return false
	}
	_ = rec.Doc.Close()
	delete(s.docs, id)
	return true
}

// Close closes every stored document.
func (s *DocumentStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.docs {
		_ = rec.Doc.Close()
		delete(s.docs, id)
	}
}
