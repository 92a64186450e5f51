package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Document),
	}
}

// Save persists a copy of the document in memory.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	// Copy to ensure isolation, similar to serialization
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.Key()] = copied
	return nil
}

// Load retrieves a copy of the document from memory.
func (s *Store) Load(ctx context.Context, corpusID, docID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[domain.DocumentKey(corpusID, docID)]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	// Copy on read so callers can't mutate the stored document by pointer
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, corpusID, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, domain.DocumentKey(corpusID, docID))
	return nil
}

// List returns the sorted document IDs of a corpus.
func (s *Store) List(ctx context.Context, corpusID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0)
	for _, doc := range s.data {
		if doc.CorpusID == corpusID {
			ids = append(ids, doc.DocID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
