package service

import (
	"context"
	"fmt"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
)

// ExportService renders the staff claim table as a spreadsheet
type ExportService interface {
	ExportClaims(ctx context.Context, p entity.Principal, f ListFilter) ([]byte, error)
}

type exportServiceImpl struct {
	claims   ClaimService
	exporter port.ClaimExporter
	logger   Logger
}

// NewExportService creates a new ExportService
func NewExportService(claims ClaimService, exporter port.ClaimExporter, logger Logger) ExportService {
	return &exportServiceImpl{claims: claims, exporter: exporter, logger: logger}
}

func (s *exportServiceImpl) ExportClaims(ctx context.Context, p entity.Principal, f ListFilter) ([]byte, error) {
	if !p.IsStaff() {
		return nil, ErrForbidden
	}

	claims, err := s.claims.ListClaims(ctx, p, f)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Export(claims)
	if err != nil {
		s.logger.Error("Failed to export claims", "error", err, "count", len(claims))
		return nil, fmt.Errorf("export claims: %w", err)
	}

	s.logger.Info("Claims exported", "count", len(claims), "actor", p.Subject)
	return data, nil
}
