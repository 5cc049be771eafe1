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

// ProfileRepository implements port.ProfileRepository
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) port.ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// Upsert inserts the profile or updates the existing one with the same
// owner and policy number. The stored ID and creation time are kept and
// copied back into p.
func (r *ProfileRepository) Upsert(ctx context.Context, p *entity.InsuredProfile) error {
	query := `
		INSERT INTO insured_profiles (id, owner_id, name, email, policy_number, check_digit, insurer, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, policy_number) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			check_digit = excluded.check_digit,
			insurer = excluded.insurer,
			updated_at = excluded.updated_at
		RETURNING id, created_at`

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Email, p.PolicyNumber, p.CheckDigit, p.Insurer, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert profile",
			zap.String("owner_id", p.OwnerID), zap.String("policy_number", p.PolicyNumber), zap.Error(err))
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// ListByOwner returns an owner's saved profiles by name
func (r *ProfileRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.InsuredProfile, error) {
	query := `
		SELECT id, owner_id, name, email, policy_number, check_digit, insurer, created_at, updated_at
		FROM insured_profiles
		WHERE owner_id = ?
		ORDER BY name, policy_number`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list profiles", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*entity.InsuredProfile{}
	for rows.Next() {
		var p entity.InsuredProfile
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Email, &p.PolicyNumber, &p.CheckDigit, &p.Insurer, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}
