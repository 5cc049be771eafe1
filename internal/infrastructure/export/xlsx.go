package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
)

// SheetName is the name of the claims worksheet
const SheetName = "Reclamos"

var headers = []string{
	"ID", "Asegurado", "Póliza", "Aseguradora", "Tipo de Reclamo", "Servicios",
	"Estado", "Nº Reclamo Aseguradora", "Correo", "Teléfono", "Creado", "Actualizado",
}

// XLSXExporter implements port.ClaimExporter with an excelize workbook
type XLSXExporter struct {
	logger *zap.Logger
}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter(logger *zap.Logger) port.ClaimExporter {
	return &XLSXExporter{logger: logger}
}

// Export writes one row per claim below a bold header row
func (e *XLSXExporter) Export(claims []*entity.Claim) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range claims {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			c.ID,
			c.Insured.Name,
			c.Insured.PolicyNumber,
			c.Insured.Insurer,
			c.Category,
			strings.Join(c.Services, ", "),
			c.Status.Label(),
			c.InsurerClaimNumber,
			c.ContactEmail,
			c.ContactPhone,
			c.CreatedAt.Format("2006-01-02 15:04"),
			c.UpdatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for claim %s: %w", c.ID, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 20); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported claims workbook", zap.Int("rows", len(claims)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
