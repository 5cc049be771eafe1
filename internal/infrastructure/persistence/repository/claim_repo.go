package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
	"github.com/garyjia/claims-portal/internal/infrastructure/persistence/sqlite"
)

const claimColumns = `
	id, owner_id, contact_email, contact_phone,
	insured_name, insured_email, policy_number, check_digit, insurer,
	tipo_reclamo, tipo_siniestro, servicios, cirugia_especializada,
	descripcion, fecha_siniestro, numero_reclamo, numero_reclamo_aseguradora,
	status, status_comments, created_at, updated_at, updated_by`

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, c *entity.Claim) error {
	services, err := json.Marshal(nonNil(c.Services))
	if err != nil {
		return fmt.Errorf("failed to encode services: %w", err)
	}

	query := `INSERT INTO claims (` + claimColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		c.ID, c.OwnerID, c.ContactEmail, c.ContactPhone,
		c.Insured.Name, c.Insured.Email, c.Insured.PolicyNumber, c.Insured.CheckDigit, c.Insured.Insurer,
		c.Category, c.IncidentCategory, string(services), c.SpecializedSurgery,
		c.Description, nullTime(c.IncidentDate), c.ReportedClaimNumber, c.InsurerClaimNumber,
		c.Status, c.StatusComments, c.CreatedAt, c.UpdatedAt, c.UpdatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("claim_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	c, err := scanClaim(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.String("claim_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return c, nil
}

// List returns claims matching q, newest first
func (r *ClaimRepository) List(ctx context.Context, q port.ClaimQuery) ([]*entity.Claim, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if !q.IncludeArchived {
		where = append(where, "status != ?")
		args = append(args, workflow.StateArchived)
	}
	if len(q.Statuses) > 0 {
		marks := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			marks[i] = "?"
			args = append(args, s)
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := []*entity.Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// UpdateStatus sets status, comments and the editor
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id string, status workflow.State, comments, updatedBy string) error {
	query := `UPDATE claims SET status = ?, status_comments = ?, updated_by = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "update claim status", id, query, status, comments, updatedBy, r.now(), id)
}

// UpdateContact writes the contact and insured-party fields
func (r *ClaimRepository) UpdateContact(ctx context.Context, c *entity.Claim) error {
	query := `
		UPDATE claims SET
			contact_email = ?, contact_phone = ?,
			insured_name = ?, insured_email = ?, policy_number = ?, check_digit = ?, insurer = ?,
			updated_by = ?, updated_at = ?
		WHERE id = ?`
	return r.execOne(ctx, "update claim contact", c.ID, query,
		c.ContactEmail, c.ContactPhone,
		c.Insured.Name, c.Insured.Email, c.Insured.PolicyNumber, c.Insured.CheckDigit, c.Insured.Insurer,
		c.UpdatedBy, c.UpdatedAt, c.ID,
	)
}

// SetInsurerClaimNumber records the insurer-assigned claim number
func (r *ClaimRepository) SetInsurerClaimNumber(ctx context.Context, id, number, updatedBy string) error {
	query := `UPDATE claims SET numero_reclamo_aseguradora = ?, updated_by = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "set insurer claim number", id, query, number, updatedBy, r.now(), id)
}

func (r *ClaimRepository) execOne(ctx context.Context, op, id, query string, args ...interface{}) error {
	res, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, zap.String("claim_id", id), zap.Error(err))
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to %s: claim %s not found", op, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(s scanner) (*entity.Claim, error) {
	var (
		c            entity.Claim
		services     string
		incidentDate sql.NullTime
	)
	err := s.Scan(
		&c.ID, &c.OwnerID, &c.ContactEmail, &c.ContactPhone,
		&c.Insured.Name, &c.Insured.Email, &c.Insured.PolicyNumber, &c.Insured.CheckDigit, &c.Insured.Insurer,
		&c.Category, &c.IncidentCategory, &services, &c.SpecializedSurgery,
		&c.Description, &incidentDate, &c.ReportedClaimNumber, &c.InsurerClaimNumber,
		&c.Status, &c.StatusComments, &c.CreatedAt, &c.UpdatedAt, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	c.Services = []string{}
	if services != "" {
		if err := json.Unmarshal([]byte(services), &c.Services); err != nil {
			return nil, fmt.Errorf("failed to decode services: %w", err)
		}
	}
	if incidentDate.Valid {
		t := incidentDate.Time
		c.IncidentDate = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
