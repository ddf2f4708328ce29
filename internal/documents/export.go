package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"payroll-portal/payroll-portal-backend/pkg/dates"
)

const exportSheetName = "Documents"

// exportPageSize bounds a single export; payroll histories are monthly so
// this covers decades of periods.
const exportPageSize = 1000

// ExportToExcel renders the caller's document history as an XLSX workbook.
func (s *documentService) ExportToExcel(ctx context.Context, userID string) ([]byte, error) {
	docs, _, err := s.repo.ListByUserAndStatus(ctx, userID, nil, 1, exportPageSize)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()
	file.SetSheetName("Sheet1", exportSheetName)

	headers := []string{
		"Document ID", "Period Start", "Period End", "Status",
		"Original Hash", "Signed Hash", "Created At", "Signed At",
	}
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build header style: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		file.SetCellValue(exportSheetName, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	file.SetCellStyle(exportSheetName, "A1", last, headerStyle)

	for i, doc := range docs {
		row := i + 2
		periodStart, _ := dates.ToExternal(doc.PeriodStart)
		periodEnd, _ := dates.ToExternal(doc.PeriodEnd)

		values := []interface{}{
			doc.ID,
			periodStart,
			periodEnd,
			string(doc.Status),
			doc.OriginalHash,
			deref(doc.SignedHash),
			doc.CreatedAt.Format(time.RFC3339),
			formatTime(doc.SignedAt),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			file.SetCellValue(exportSheetName, cell, value)
		}
	}

	file.SetColWidth(exportSheetName, "A", "A", 38)
	file.SetColWidth(exportSheetName, "E", "F", 66)
	file.SetColWidth(exportSheetName, "B", "D", 14)
	file.SetColWidth(exportSheetName, "G", "H", 22)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
