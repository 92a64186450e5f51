package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/strata/pkg/domain"
)

// Store implements ports.DocumentStore on SQLite.
// Each document is one JSON row; the views table indexes which views a document carries.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
	corpus_id TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	body TEXT NOT NULL,
	generation INTEGER NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY(corpus_id, doc_id)
);

CREATE TABLE IF NOT EXISTS document_views (
	corpus_id TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	view TEXT NOT NULL,
	producer TEXT,
	generation INTEGER NOT NULL,
	PRIMARY KEY(corpus_id, doc_id, view),
	FOREIGN KEY(corpus_id, doc_id) REFERENCES documents(corpus_id, doc_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_document_views_view ON document_views(corpus_id, view);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Save upserts the document and rewrites its view index in one transaction.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents(corpus_id, doc_id, body, generation, updated_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(corpus_id, doc_id) DO UPDATE SET
	body = excluded.body,
	generation = excluded.generation,
	updated_at = excluded.updated_at`,
		doc.CorpusID, doc.DocID, string(body), int64(doc.Generation()), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_views WHERE corpus_id = ? AND doc_id = ?`, doc.CorpusID, doc.DocID); err != nil {
		return fmt.Errorf("clear views: %w", err)
	}
	for _, v := range doc.Views() {
		_, err := tx.ExecContext(ctx, `
INSERT INTO document_views(corpus_id, doc_id, view, producer, generation)
VALUES(?, ?, ?, ?, ?)`,
			doc.CorpusID, doc.DocID, v.Name, v.Producer, int64(v.Generation))
		if err != nil {
			return fmt.Errorf("index view %s: %w", v.Name, err)
		}
	}

	return tx.Commit()
}

// Load reads a document, returning domain.ErrDocumentNotFound when absent.
func (s *Store) Load(ctx context.Context, corpusID, docID string) (*domain.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE corpus_id = ? AND doc_id = ?`, corpusID, docID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal([]byte(body), doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Delete removes a document and its view index.
func (s *Store) Delete(ctx context.Context, corpusID, docID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE corpus_id = ? AND doc_id = ?`, corpusID, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns the sorted doc IDs of a corpus.
func (s *Store) List(ctx context.Context, corpusID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT doc_id FROM documents WHERE corpus_id = ? ORDER BY doc_id`, corpusID)
}

// ListWithView returns the sorted doc IDs of a corpus that carry view.
func (s *Store) ListWithView(ctx context.Context, corpusID, view string) ([]string, error) {
	return s.queryIDs(ctx,
		`SELECT doc_id FROM document_views WHERE corpus_id = ? AND view = ? ORDER BY doc_id`, corpusID, view)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
