package services

import (
	"database/sql"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

// SnapshotFilename builds the timestamped download name for the raw store
// file, e.g. data-20250131T120000.sqlite.
func SnapshotFilename(now time.Time) string {
	return "data-" + now.Format("20060102T150405") + ".sqlite"
}

// BuildWorkbook renders every transaction into a spreadsheet with a fixed
// column order and widths. The caller owns the returned file.
func BuildWorkbook(db *sql.DB) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	headers := []interface{}{"Amount", "Date", "Category", "Description", "Created At"}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		f.Close()
		return nil, err
	}
	widths := map[string]float64{"A": 15, "B": 15, "C": 20, "D": 30, "E": 20}
	for col, width := range widths {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			f.Close()
			return nil, err
		}
	}

	rows, err := db.Query("SELECT amount, date, category, description, created_at FROM transactions")
	if err != nil {
		f.Close()
		return nil, err
	}
	defer rows.Close()

	line := 2
	for rows.Next() {
		var amount sql.NullFloat64
		var date, category, description, createdAt sql.NullString
		if err := rows.Scan(&amount, &date, &category, &description, &createdAt); err != nil {
			f.Close()
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []interface{}{amount.Float64, date.String, category.String, description.String, createdAt.String}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
		line++
	}
	if err := rows.Err(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
