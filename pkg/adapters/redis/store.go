package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "strata:"

// Store implements ports.DocumentStore using Redis.
// Documents are stored as JSON under prefix+"doc:"+corpus/doc, and each corpus keeps a
// sorted-set index of its document IDs scored by expiry time.
type Store struct {
	client backend.UniversalClient
	ttl    time.Duration
	prefix string
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires documents after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix (default "strata:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewFromClient creates a store over an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) docKey(corpusID, docID string) string {
	return s.prefix + "doc:" + domain.DocumentKey(corpusID, docID)
}

func (s *Store) indexKey(corpusID string) string {
	return s.prefix + "index:" + corpusID
}

// Save writes the document and updates its corpus index atomically.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	score := math.Inf(1)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(doc.CorpusID, doc.DocID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(doc.CorpusID), backend.Z{Score: score, Member: doc.DocID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save document to redis: %w", err)
	}
	return nil
}

// Load reads a document. Missing or expired documents yield domain.ErrDocumentNotFound.
func (s *Store) Load(ctx context.Context, corpusID, docID string) (*domain.Document, error) {
	data, err := s.client.Get(ctx, s.docKey(corpusID, docID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document from redis: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, corpusID, docID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.docKey(corpusID, docID))
	pipe.ZRem(ctx, s.indexKey(corpusID), docID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete document from redis: %w", err)
	}
	return nil
}

// List returns the sorted document IDs of a corpus. Expired entries are pruned lazily.
func (s *Store) List(ctx context.Context, corpusID string) ([]string, error) {
	index := s.indexKey(corpusID)
	if s.ttl > 0 {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		if err := s.client.ZRemRangeByScore(ctx, index, "-inf", "("+now).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune index: %w", err)
		}
	}

	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
