package port

import "github.com/garyjia/claims-portal/internal/domain/entity"

// ClaimExporter renders claims into a downloadable spreadsheet
type ClaimExporter interface {
	Export(claims []*entity.Claim) ([]byte, error)
}
