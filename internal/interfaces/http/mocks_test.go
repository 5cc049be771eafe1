package http

import (
	"context"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

type mockClaimService struct {
	service.ClaimService
	submitFunc    func(ctx context.Context, p entity.Principal, in service.SubmitClaimInput) (*entity.Claim, error)
	getFunc       func(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error)
	listFunc      func(ctx context.Context, p entity.Principal, f service.ListFilter) ([]*entity.Claim, error)
	setStatusFunc func(ctx context.Context, p entity.Principal, id string, status workflow.State, comments string) (*entity.Claim, error)
	archiveFunc   func(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error)
}

func (m *mockClaimService) SubmitClaim(ctx context.Context, p entity.Principal, in service.SubmitClaimInput) (*entity.Claim, error) {
	return m.submitFunc(ctx, p, in)
}

func (m *mockClaimService) GetClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error) {
	return m.getFunc(ctx, p, id)
}

func (m *mockClaimService) ListClaims(ctx context.Context, p entity.Principal, f service.ListFilter) ([]*entity.Claim, error) {
	return m.listFunc(ctx, p, f)
}

func (m *mockClaimService) SetClaimStatus(ctx context.Context, p entity.Principal, id string, status workflow.State, comments string) (*entity.Claim, error) {
	return m.setStatusFunc(ctx, p, id, status, comments)
}

func (m *mockClaimService) ArchiveClaim(ctx context.Context, p entity.Principal, id string) (*entity.Claim, error) {
	return m.archiveFunc(ctx, p, id)
}

type mockDocumentService struct {
	service.DocumentService
	uploadFunc    func(ctx context.Context, p entity.Principal, claimID, documentType string, files []service.UploadFile) (*service.UploadResult, error)
	setStatusFunc func(ctx context.Context, p entity.Principal, claimID, documentType string, requested workflow.State, comments string) (*service.DocumentReview, error)
	deleteFunc    func(ctx context.Context, p entity.Principal, claimID string, fileID int64) error
}

func (m *mockDocumentService) UploadFiles(ctx context.Context, p entity.Principal, claimID, documentType string, files []service.UploadFile) (*service.UploadResult, error) {
	return m.uploadFunc(ctx, p, claimID, documentType, files)
}

func (m *mockDocumentService) SetDocumentStatus(ctx context.Context, p entity.Principal, claimID, documentType string, requested workflow.State, comments string) (*service.DocumentReview, error) {
	return m.setStatusFunc(ctx, p, claimID, documentType, requested, comments)
}

func (m *mockDocumentService) DeleteFile(ctx context.Context, p entity.Principal, claimID string, fileID int64) error {
	return m.deleteFunc(ctx, p, claimID, fileID)
}

type mockNotificationService struct {
	sendFunc func(ctx context.Context, p entity.Principal, claimID, message string) error
}

func (m *mockNotificationService) SendStatusUpdate(ctx context.Context, p entity.Principal, claimID, message string) error {
	return m.sendFunc(ctx, p, claimID, message)
}

func (m *mockNotificationService) RegisterHandlers(d dispatcher.Dispatcher) {}

type mockExportService struct {
	exportFunc func(ctx context.Context, p entity.Principal, f service.ListFilter) ([]byte, error)
}

func (m *mockExportService) ExportClaims(ctx context.Context, p entity.Principal, f service.ListFilter) ([]byte, error) {
	return m.exportFunc(ctx, p, f)
}

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}
