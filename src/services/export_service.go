package services

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/security/validation"
)

// exportHeader matches the agreed spreadsheet contract; one data row per
// (adduser, Fullname, marketid, company) group.
var exportHeader = []string{
	"marketid", "company", "adduser", "Fullname",
	"Total Qty", "Total Accessory", "Total Profit",
	"Tier", "Bonus %", "Bonus",
}

// BuildBonusWorkbook serializes export rows into an xlsx workbook with a bold
// centered header row and columns sized to their content.
func BuildBonusWorkbook(rows []models.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	widths := make([]int, len(exportHeader))
	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
		widths[col] = len(name)
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return nil, fmt.Errorf("styling header row: %w", err)
	}

	for i, row := range rows {
		values := []interface{}{
			validation.SanitizeForFormulaInjection(row.MarketID),
			validation.SanitizeForFormulaInjection(row.Company),
			validation.SanitizeForFormulaInjection(row.AddUser),
			validation.SanitizeForFormulaInjection(row.Fullname),
			row.TotalQty,
			row.TotalAccessory,
			row.TotalProfit,
			row.Tier,
			row.BonusPct,
			row.Bonus,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
			if w := displayWidth(v); w > widths[col] {
				widths[col] = w
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		// Small padding so content doesn't touch the column edge.
		if err := f.SetColWidth(sheet, name, name, float64(width)+2); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func displayWidth(v interface{}) int {
	switch value := v.(type) {
	case string:
		return len(value)
	case float64:
		return len(strconv.FormatFloat(value, 'f', 2, 64))
	default:
		return 0
	}
}
