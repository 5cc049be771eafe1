package port

import (
	"context"

	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// ClaimQuery filters claim listings. An empty OwnerID lists globally.
type ClaimQuery struct {
	OwnerID         string
	Statuses        []workflow.State
	IncludeArchived bool
	Limit           int
	Offset          int
}

// ClaimRepository defines persistence operations for Claim.
// Lookups return (nil, nil) when the claim does not exist.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id string) (*entity.Claim, error)
	List(ctx context.Context, q ClaimQuery) ([]*entity.Claim, error)
	UpdateStatus(ctx context.Context, id string, status workflow.State, comments, updatedBy string) error
	UpdateContact(ctx context.Context, claim *entity.Claim) error
	SetInsurerClaimNumber(ctx context.Context, id, number, updatedBy string) error
}

// DocumentRepository defines persistence operations for Document and its files
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByClaimAndType(ctx context.Context, claimID, documentType string) (*entity.Document, error)
	ListByClaim(ctx context.Context, claimID string) ([]*entity.Document, error)
	UpdateStatus(ctx context.Context, id string, status workflow.State, comments, reviewedBy string) error
	AddFile(ctx context.Context, file *entity.DocumentFile) error
	GetFile(ctx context.Context, id int64) (*entity.DocumentFile, error)
	DeleteFile(ctx context.Context, id int64) error
}

// ProfileRepository defines persistence operations for InsuredProfile
type ProfileRepository interface {
	// Upsert inserts or updates by (owner_id, policy_number)
	Upsert(ctx context.Context, profile *entity.InsuredProfile) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.InsuredProfile, error)
}

// HistoryRepository defines persistence operations for ClaimHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.ClaimHistory) error
	ListByClaim(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
