package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
)

type documentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new DocumentRepository implementation
func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Insert(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("inserting document: id=%s, name=%s, size=%d", doc.ID, doc.Name, len(doc.Content))

	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, name, content) VALUES (?, ?, ?)
`, doc.ID, doc.Name, doc.Content)
	if err != nil {
		log.Error("failed to insert document: %v", err)
	}
	return err
}

func (r *documentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")

	var doc models.Document
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, content, created_at FROM documents WHERE id = ?
`, id).Scan(&doc.ID, &doc.Name, &doc.Content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("document not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get document: %v", err)
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, content, created_at FROM documents ORDER BY created_at DESC
`)
	if err != nil {
		log.Error("failed to query documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.CreatedAt); err != nil {
			log.Error("failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []string) error {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("replacing chunks: document_id=%s, count=%d", documentID, len(chunks))

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, documentID); err != nil {
			return err
		}
		for i, chunk := range chunks {
			if _, err := t.ExecContext(ctx, `
INSERT INTO document_chunks (document_id, chunk_index, content) VALUES (?, ?, ?)
`, documentID, i, chunk); err != nil {
				return fmt.Errorf("insert chunk %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *documentRepository) ChunksForDocuments(ctx context.Context, documentIDs []string) ([]models.DocumentChunk, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	if len(documentIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(documentIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, chunk_index, content
FROM document_chunks
WHERE document_id IN (`+placeholders+`)
ORDER BY document_id, chunk_index
`, args...)
	if err != nil {
		log.Error("failed to query chunks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var c models.DocumentChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content); err != nil {
			log.Error("failed to scan chunk row: %v", err)
			return nil, err
		}
		chunks = append(chunks, c)
	}
	log.Debug("found %d chunks for %d documents", len(chunks), len(documentIDs))
	return chunks, rows.Err()
}
