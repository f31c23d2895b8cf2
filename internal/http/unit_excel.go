package httpapi

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"summitly-data/internal/domain"
	"summitly-data/internal/service"

	"github.com/xuri/excelize/v2"
)

// UnitSheetHeader 户型价目表表头（导入/导出共用同一布局）
var UnitSheetHeader = []string{
	"Unit Number",
	"Model",
	"Beds",
	"Baths",
	"Area (sqft)",
	"Price",
	"Floor",
	"Exposure",
	"MLS Number",
	"Available",
}

// unitSheetColumnWidths 各列宽度，与表头一一对应
var unitSheetColumnWidths = []float64{
	15, // Unit Number
	20, // Model
	10, // Beds
	10, // Baths
	12, // Area (sqft)
	15, // Price
	10, // Floor
	12, // Exposure
	15, // MLS Number
	12, // Available
}

// GenerateUnitImportTemplate 生成价目表导入模板（只有表头）
func GenerateUnitImportTemplate() ([]byte, error) {
	return generateUnitExcel(nil)
}

// GenerateUnitExport 生成户型价目表 Excel
func GenerateUnitExport(units []*domain.Unit) ([]byte, error) {
	return generateUnitExcel(units)
}

// generateUnitExcel 生成价目表 Excel 文件
// units 为空时只生成表头
func generateUnitExcel(units []*domain.Unit) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Units"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := writeSheetHeader(f, sheetName, UnitSheetHeader, unitSheetColumnWidths); err != nil {
		f.Close()
		return nil, err
	}

	// 写入数据
	for rowIdx, u := range units {
		row := rowIdx + 2 // 从第2行开始（第1行是表头）

		mls := ""
		if u.MLSNumber.Valid {
			mls = u.MLSNumber.String
		}
		available := "No"
		if u.Available {
			available = "Yes"
		}

		values := []any{
			u.UnitNumber,
			u.ModelName,
			u.Beds,
			u.Baths,
			u.AreaSqft,
			u.Price,
			u.Floor,
			u.Exposure,
			mls,
			available,
		}
		for colIdx, value := range values {
			if value == "" {
				continue
			}
			if err := setCellValue(f, sheetName, colIdx+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
	}

	// 冻结表头
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

// ParseUnitImport 解析价目表 Excel 为导入行
// 表头行跳过，整行空白忽略，列顺序按表头名匹配（容忍调整过列序的文件）
func ParseUnitImport(data []byte) ([]service.UnitImportRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	// 表头列名 → 列号
	headerMap := make(map[string]int)
	for i, cell := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(cell))] = i
	}

	cellAt := func(row []string, header string) string {
		idx, ok := headerMap[header]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := make([]service.UnitImportRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // Excel 行号（第1行是表头）

		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		out = append(out, service.UnitImportRow{
			Row:        rowNum,
			UnitNumber: cellAt(row, "unit number"),
			ModelName:  cellAt(row, "model"),
			Beds:       lenientFloat(cellAt(row, "beds")),
			Baths:      lenientFloat(cellAt(row, "baths")),
			AreaSqft:   int(lenientFloat(cellAt(row, "area (sqft)"))),
			Price:      lenientFloat(cellAt(row, "price")),
			Floor:      cellAt(row, "floor"),
			Exposure:   cellAt(row, "exposure"),
			MLSNumber:  cellAt(row, "mls number"),
			Available:  parseYesNo(cellAt(row, "available")),
		})
	}

	return out, nil
}

// writeSheetHeader 写入带样式的表头行并设置列宽（冻结由调用方处理）
func writeSheetHeader(f *excelize.File, sheetName string, headers []string, widths []float64) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := 0; i < len(headers); i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(widths) && widths[i] > 0 {
			if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	return nil
}

// setCellValue 设置单元格值
func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// lenientFloat 宽松解析数值（容忍 "$1,234.50"、空白，解析失败按 0）
func lenientFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseYesNo 解析在售列（空白按在售处理）
func parseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no", "n", "false", "0":
		return false
	default:
		return true
	}
}
