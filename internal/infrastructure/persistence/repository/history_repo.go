package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Create appends a history entry
func (r *HistoryRepository) Create(ctx context.Context, h *entity.ClaimHistory) error {
	query := `
		INSERT INTO claim_history (claim_id, actor_id, previous_status, new_status, action, comments, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		h.ClaimID, h.ActorID, h.PreviousStatus, h.NewStatus, h.Action, h.Comments, h.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history", zap.String("claim_id", h.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	h.ID = id
	return nil
}

// ListByClaim returns a claim's history, oldest first
func (r *HistoryRepository) ListByClaim(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error) {
	query := `
		SELECT id, claim_id, actor_id, previous_status, new_status, action, comments, timestamp
		FROM claim_history
		WHERE claim_id = ?
		ORDER BY timestamp, id`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []*entity.ClaimHistory{}
	for rows.Next() {
		var h entity.ClaimHistory
		if err := rows.Scan(&h.ID, &h.ClaimID, &h.ActorID, &h.PreviousStatus, &h.NewStatus, &h.Action, &h.Comments, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
