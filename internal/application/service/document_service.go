package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/checklist"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/event"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// DocumentService manages document uploads and staff review
type DocumentService interface {
	UploadFiles(ctx context.Context, p entity.Principal, claimID, documentType string, files []UploadFile) (*UploadResult, error)
	ListDocuments(ctx context.Context, p entity.Principal, claimID string) ([]*entity.Document, error)
	GetChecklist(ctx context.Context, p entity.Principal, claimID string) (*ClaimChecklist, error)
	SetDocumentStatus(ctx context.Context, p entity.Principal, claimID, documentType string, requested workflow.State, comments string) (*DocumentReview, error)
	DeleteFile(ctx context.Context, p entity.Principal, claimID string, fileID int64) error
}

// UploadFile is one file of an upload batch
type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadPolicy limits accepted files
type UploadPolicy struct {
	MaxFileSize  int64
	MaxFiles     int
	AllowedTypes []string
}

// UploadResult lists the files stored by a batch. On a mid-batch failure it
// holds the files committed before the failure.
type UploadResult struct {
	Document *entity.Document     `json:"document"`
	Stored   []entity.DocumentFile `json:"stored"`
}

// ClaimChecklist is a claim's required documents with upload progress
type ClaimChecklist struct {
	Checklist checklist.Checklist `json:"checklist"`
	Progress  checklist.Progress  `json:"progress"`
}

// DocumentReview is the outcome of SetDocumentStatus
type DocumentReview struct {
	Document *entity.Document `json:"document"`
	Claim    *entity.Claim    `json:"claim"`
	Promoted bool             `json:"promoted"`
}

type documentServiceImpl struct {
	claimRepo   port.ClaimRepository
	docRepo     port.DocumentRepository
	historyRepo port.HistoryRepository
	storage     port.ObjectStorage
	txManager   port.TransactionManager
	dispatcher  dispatcher.Dispatcher
	policy      UploadPolicy
	logger      Logger

	now   func() time.Time
	newID func() string

	keyMu   sync.Mutex
	lastKey int64
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	claimRepo port.ClaimRepository,
	docRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	storage port.ObjectStorage,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	policy UploadPolicy,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		claimRepo:   claimRepo,
		docRepo:     docRepo,
		historyRepo: historyRepo,
		storage:     storage,
		txManager:   txManager,
		dispatcher:  d,
		policy:      policy,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// UploadFiles stores files into a document slot one at a time, in order.
// Each file is committed before the next starts; a failure leaves earlier
// files in place and returns them alongside the error.
func (s *documentServiceImpl) UploadFiles(ctx context.Context, p entity.Principal, claimID, documentType string, files []UploadFile) (*UploadResult, error) {
	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID)
	if err != nil {
		return nil, err
	}
	if claim.IsArchived() {
		return nil, invalid("claim", "archived claims do not accept uploads")
	}
	if !claim.Checklist().Contains(documentType) {
		return nil, invalid("document_type", fmt.Sprintf("%q is not required for this claim", documentType))
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByClaimAndType(ctx, claimID, documentType)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		now := s.now()
		doc = &entity.Document{
			ID:           s.newID(),
			ClaimID:      claimID,
			DocumentType: documentType,
			Status:       workflow.StatePending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.docRepo.Create(ctx, doc); err != nil {
			s.logger.Error("Failed to create document", "error", err, "claim_id", claimID, "document_type", documentType)
			return nil, err
		}
	}

	result := &UploadResult{Document: doc, Stored: []entity.DocumentFile{}}
	for i, f := range files {
		uploadedAt := s.now()
		key := objectKey(claimID, documentType, s.keyTimestamp(uploadedAt), f.Name)

		obj, err := s.storage.Put(ctx, key, f.Content, f.ContentType)
		if err != nil {
			s.logger.Error("Failed to store file", "error", err, "claim_id", claimID, "index", i, "name", f.Name)
			return result, fmt.Errorf("store file %s: %w", f.Name, err)
		}

		rec := entity.DocumentFile{
			DocumentID:  doc.ID,
			Name:        f.Name,
			StorageKey:  obj.Key,
			URL:         obj.URL,
			Size:        obj.Size,
			ContentType: f.ContentType,
			UploadedAt:  uploadedAt,
		}
		if err := s.docRepo.AddFile(ctx, &rec); err != nil {
			s.logger.Error("Failed to record file", "error", err, "claim_id", claimID, "key", key)
			return result, fmt.Errorf("record file %s: %w", f.Name, err)
		}

		doc.Files = append(doc.Files, rec)
		result.Stored = append(result.Stored, rec)
	}

	s.logger.Info("Files uploaded", "claim_id", claimID, "document_type", documentType, "count", len(result.Stored))
	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeDocumentUploaded, claimID, p.Subject, map[string]any{
		"document_type": documentType,
		"count":         len(result.Stored),
	}))
	return result, nil
}

// ListDocuments returns a claim's documents with their files, labelled
// with the display name used by the claim's category
func (s *documentServiceImpl) ListDocuments(ctx context.Context, p entity.Principal, claimID string) ([]*entity.Document, error) {
	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.ListByClaim(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "claim_id", claimID)
		return nil, err
	}
	for _, d := range docs {
		d.DisplayName, _ = checklist.Lookup(claim.Category, d.DocumentType)
	}
	return docs, nil
}

// GetChecklist resolves the claim's required documents and matches uploads
func (s *documentServiceImpl) GetChecklist(ctx context.Context, p entity.Principal, claimID string) (*ClaimChecklist, error) {
	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.ListByClaim(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "claim_id", claimID)
		return nil, err
	}

	states := make([]checklist.DocumentState, len(docs))
	for i, d := range docs {
		states[i] = checklist.DocumentState{Key: d.DocumentType, Status: d.Status.String(), FileCount: len(d.Files)}
	}

	cl := claim.Checklist()
	return &ClaimChecklist{Checklist: cl, Progress: checklist.ComputeProgress(cl, states)}, nil
}

// SetDocumentStatus records a staff review of one document. Approvals and
// rejections without a comment are stored as pending. When the stored status
// is approved and every document of the claim is approved, a pending claim is
// promoted to verified. If the promotion fails after the review was stored,
// the review is returned together with an error wrapping ErrAutoPromotion.
func (s *documentServiceImpl) SetDocumentStatus(ctx context.Context, p entity.Principal, claimID, documentType string, requested workflow.State, comments string) (*DocumentReview, error) {
	if !p.CanReview() {
		return nil, ErrForbidden
	}
	if !requested.IsDocumentState() {
		return nil, invalid("status", fmt.Sprintf("unknown document status %q", requested))
	}

	claim, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID)
	if err != nil {
		return nil, err
	}
	doc, err := s.docRepo.GetByClaimAndType(ctx, claimID, documentType)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentType, ErrNotFound)
	}

	comments = strings.TrimSpace(comments)
	final := workflow.FinalDocumentStatus(requested, comments)
	if final != doc.Status {
		if err := fireDocument(ctx, doc.Status, final); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, final, comments, p.Subject); err != nil {
		s.logger.Error("Failed to update document status", "error", err, "document_id", doc.ID)
		return nil, err
	}
	prev := doc.Status
	doc.Status = final
	doc.Comments = comments
	doc.ReviewedBy = p.Subject
	doc.UpdatedAt = s.now()

	s.logger.Info("Document reviewed", "claim_id", claimID, "document_type", documentType,
		"requested", requested, "status", final, "reviewer", p.Subject)

	reviewed := event.New(event.TypeDocumentReviewed, claimID, p.Subject, map[string]any{
		"document_type": documentType,
		"from":          prev.String(),
		"to":            final.String(),
	})
	s.dispatcher.DispatchAsync(ctx, reviewed)

	review := &DocumentReview{Document: doc, Claim: claim}
	if final != workflow.StateApproved {
		return review, nil
	}

	promoted, err := s.autoPromote(ctx, claimID, reviewed.CorrelationID)
	if err != nil {
		s.logger.Error("Auto-promotion failed after document review", "error", err, "claim_id", claimID)
		return review, fmt.Errorf("%w: %v", ErrAutoPromotion, err)
	}
	if promoted != nil {
		review.Claim = promoted
		review.Promoted = true
	}
	return review, nil
}

// DeleteFile removes a stored file and its record
func (s *documentServiceImpl) DeleteFile(ctx context.Context, p entity.Principal, claimID string, fileID int64) error {
	if !p.CanManageFiles() {
		return ErrForbidden
	}
	if _, err := loadAccessibleClaim(ctx, s.claimRepo, p, claimID); err != nil {
		return err
	}

	file, err := s.docRepo.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}
	if file == nil {
		return fmt.Errorf("file %d: %w", fileID, ErrNotFound)
	}

	docs, err := s.docRepo.ListByClaim(ctx, claimID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	owned := false
	for _, d := range docs {
		if d.ID == file.DocumentID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("file %d: %w", fileID, ErrNotFound)
	}

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Error("Failed to delete stored file", "error", err, "key", file.StorageKey)
		return fmt.Errorf("delete stored file: %w", err)
	}
	if err := s.docRepo.DeleteFile(ctx, fileID); err != nil {
		s.logger.Error("Failed to delete file record", "error", err, "file_id", fileID)
		return err
	}

	s.logger.Info("File deleted", "claim_id", claimID, "file_id", fileID, "actor", p.Subject)
	return nil
}

// autoPromote re-reads the claim's documents and verifies a pending claim
// when all of them are approved. It returns the promoted claim, or nil when
// no promotion applies.
func (s *documentServiceImpl) autoPromote(ctx context.Context, claimID, correlationID string) (*entity.Claim, error) {
	docs, err := s.docRepo.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	states := entity.DocumentStatuses(docs)
	if !workflow.AllApproved(states) {
		return nil, nil
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
	}
	if claim.Status != workflow.StatePending {
		return nil, nil
	}

	sm := workflow.BuildClaimStateMachine(claim.Status)
	if err := sm.Fire(workflow.WithDocumentStates(ctx, states), workflow.TriggerAutoVerify); err != nil {
		if errors.Is(err, workflow.ErrGuardFailed) {
			return nil, nil
		}
		return nil, err
	}

	now := s.now()
	next := sm.State()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.UpdateStatus(txCtx, claimID, next, claim.StatusComments, entity.SystemActor); err != nil {
			return fmt.Errorf("update claim status: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.ClaimHistory{
			ClaimID:        claimID,
			ActorID:        entity.SystemActor,
			PreviousStatus: claim.Status.String(),
			NewStatus:      next.String(),
			Action:         entity.ActionAutoVerify,
			Comments:       "all documents approved",
			Timestamp:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Claim auto-verified", "claim_id", claimID, "documents", len(docs))
	s.dispatcher.DispatchAsync(ctx, event.NewWithCorrelation(event.TypeClaimAutoVerified, claimID, entity.SystemActor, map[string]any{
		"from": claim.Status.String(),
		"to":   next.String(),
	}, correlationID))

	claim.Status = next
	claim.UpdatedAt = now
	claim.UpdatedBy = entity.SystemActor
	return claim, nil
}

func (s *documentServiceImpl) validateFiles(files []UploadFile) error {
	var errs ValidationErrors
	if len(files) == 0 {
		errs.add("files", "at least one file is required")
	}
	if s.policy.MaxFiles > 0 && len(files) > s.policy.MaxFiles {
		errs.add("files", fmt.Sprintf("at most %d files per upload", s.policy.MaxFiles))
	}
	for _, f := range files {
		if len(f.Content) == 0 {
			errs.add("files", fmt.Sprintf("%s is empty", f.Name))
		}
		if s.policy.MaxFileSize > 0 && int64(len(f.Content)) > s.policy.MaxFileSize {
			errs.add("files", fmt.Sprintf("%s exceeds %d bytes", f.Name, s.policy.MaxFileSize))
		}
		if !s.allowedType(f.ContentType) {
			errs.add("files", fmt.Sprintf("%s has unsupported type %q", f.Name, f.ContentType))
		}
	}
	return errs.err()
}

func (s *documentServiceImpl) allowedType(contentType string) bool {
	if len(s.policy.AllowedTypes) == 0 {
		return true
	}
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, t := range s.policy.AllowedTypes {
		if strings.EqualFold(t, base) {
			return true
		}
	}
	return false
}

// keyTimestamp returns a millisecond timestamp strictly greater than the
// previous one so keys within a batch never collide
func (s *documentServiceImpl) keyTimestamp(t time.Time) int64 {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	ts := t.UnixMilli()
	if ts <= s.lastKey {
		ts = s.lastKey + 1
	}
	s.lastKey = ts
	return ts
}

func fireDocument(ctx context.Context, current, target workflow.State) error {
	if !current.IsDocumentState() {
		return fmt.Errorf("%w: %s", workflow.ErrInvalidState, current)
	}
	trigger, ok := workflow.DocumentTriggerFor(target)
	if !ok {
		return fmt.Errorf("%w: %s -> %s", workflow.ErrInvalidTransition, current, target)
	}
	return workflow.BuildDocumentStateMachine(current).Fire(ctx, trigger)
}

// objectKey builds {claimId}/{documentType}/{timestamp}.{ext}
func objectKey(claimID, documentType string, ts int64, name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%d.%s", claimID, documentType, ts, ext)
}
