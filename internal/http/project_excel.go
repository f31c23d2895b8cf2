package httpapi

import (
	"bytes"
	"fmt"

	"summitly-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ProjectSheetHeader 项目导出表头
var ProjectSheetHeader = []string{
	"Name",
	"Slug",
	"City",
	"Province",
	"Address",
	"Status",
	"Progress",
	"Featured",
	"Price From",
	"Price To",
	"Occupancy Date",
	"Created At",
}

// projectSheetColumnWidths 各列宽度，与表头一一对应
var projectSheetColumnWidths = []float64{
	30, // Name
	30, // Slug
	15, // City
	12, // Province
	35, // Address
	12, // Status
	20, // Progress
	10, // Featured
	15, // Price From
	15, // Price To
	15, // Occupancy Date
	22, // Created At
}

// GenerateProjectExport 生成项目清单 Excel
func GenerateProjectExport(projects []*domain.Project) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Projects"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := writeSheetHeader(f, sheetName, ProjectSheetHeader, projectSheetColumnWidths); err != nil {
		f.Close()
		return nil, err
	}

	for rowIdx, p := range projects {
		row := rowIdx + 2

		featured := "No"
		if p.Featured {
			featured = "Yes"
		}
		progressLabel, _ := domain.ProgressLabel(p.Progress)
		var priceFrom, priceTo any
		if p.PriceFrom.Valid {
			priceFrom = p.PriceFrom.Float64
		}
		if p.PriceTo.Valid {
			priceTo = p.PriceTo.Float64
		}

		values := []any{
			p.Name,
			p.Slug,
			p.City,
			p.Province,
			p.Address,
			p.Status,
			progressLabel,
			featured,
			priceFrom,
			priceTo,
			p.OccupancyDate,
			p.CreatedAt,
		}
		for colIdx, value := range values {
			if value == nil || value == "" {
				continue
			}
			if err := setCellValue(f, sheetName, colIdx+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
