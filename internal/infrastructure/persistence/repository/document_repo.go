package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
	"github.com/garyjia/claims-portal/internal/infrastructure/persistence/sqlite"
)

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a document slot
func (r *DocumentRepository) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (id, claim_id, document_type, status, comments, reviewed_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		d.ID, d.ClaimID, d.DocumentType, d.Status, d.Comments, d.ReviewedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document",
			zap.String("claim_id", d.ClaimID), zap.String("document_type", d.DocumentType), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByClaimAndType retrieves a document slot with its files
func (r *DocumentRepository) GetByClaimAndType(ctx context.Context, claimID, documentType string) (*entity.Document, error) {
	query := `
		SELECT id, claim_id, document_type, status, comments, reviewed_by, created_at, updated_at
		FROM documents
		WHERE claim_id = ? AND document_type = ?`

	var d entity.Document
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, claimID, documentType).Scan(
		&d.ID, &d.ClaimID, &d.DocumentType, &d.Status, &d.Comments, &d.ReviewedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document",
			zap.String("claim_id", claimID), zap.String("document_type", documentType), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	files, err := r.filesFor(ctx, `WHERE document_id = ?`, d.ID)
	if err != nil {
		return nil, err
	}
	d.Files = files[d.ID]
	if d.Files == nil {
		d.Files = []entity.DocumentFile{}
	}
	return &d, nil
}

// ListByClaim returns every document of a claim with files, by creation order
func (r *DocumentRepository) ListByClaim(ctx context.Context, claimID string) ([]*entity.Document, error) {
	query := `
		SELECT id, claim_id, document_type, status, comments, reviewed_by, created_at, updated_at
		FROM documents
		WHERE claim_id = ?
		ORDER BY created_at, document_type`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []*entity.Document{}
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.DocumentType, &d.Status, &d.Comments, &d.ReviewedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	files, err := r.filesFor(ctx, `WHERE document_id IN (SELECT id FROM documents WHERE claim_id = ?)`, claimID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Files = files[d.ID]
		if d.Files == nil {
			d.Files = []entity.DocumentFile{}
		}
	}
	return docs, nil
}

// UpdateStatus records a review decision
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status workflow.State, comments, reviewedBy string) error {
	query := `UPDATE documents SET status = ?, comments = ?, reviewed_by = ?, updated_at = ? WHERE id = ?`

	res, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, status, comments, reviewedBy, r.now(), id)
	if err != nil {
		r.logger.Error("Failed to update document status", zap.String("document_id", id), zap.Error(err))
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update document status: document %s not found", id)
	}
	return nil
}

// AddFile inserts a stored file and sets its ID
func (r *DocumentRepository) AddFile(ctx context.Context, f *entity.DocumentFile) error {
	query := `
		INSERT INTO document_files (document_id, name, storage_key, url, size, content_type, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		f.DocumentID, f.Name, f.StorageKey, f.URL, f.Size, f.ContentType, f.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add document file", zap.String("document_id", f.DocumentID), zap.Error(err))
		return fmt.Errorf("failed to add document file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	f.ID = id
	return nil
}

// GetFile retrieves a stored file by ID
func (r *DocumentRepository) GetFile(ctx context.Context, id int64) (*entity.DocumentFile, error) {
	files, err := r.filesFor(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	for _, list := range files {
		if len(list) > 0 {
			f := list[0]
			return &f, nil
		}
	}
	return nil, nil
}

// DeleteFile removes a stored file record
func (r *DocumentRepository) DeleteFile(ctx context.Context, id int64) error {
	if _, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM document_files WHERE id = ?`, id); err != nil {
		r.logger.Error("Failed to delete document file", zap.Int64("file_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// filesFor loads files matching where, grouped by document ID in upload order
func (r *DocumentRepository) filesFor(ctx context.Context, where string, args ...interface{}) (map[string][]entity.DocumentFile, error) {
	query := `
		SELECT id, document_id, name, storage_key, url, size, content_type, uploaded_at
		FROM document_files ` + where + `
		ORDER BY uploaded_at, id`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load document files", zap.Error(err))
		return nil, fmt.Errorf("failed to load document files: %w", err)
	}
	defer rows.Close()

	out := map[string][]entity.DocumentFile{}
	for rows.Next() {
		var f entity.DocumentFile
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Name, &f.StorageKey, &f.URL, &f.Size, &f.ContentType, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document file: %w", err)
		}
		out[f.DocumentID] = append(out[f.DocumentID], f)
	}
	return out, rows.Err()
}
