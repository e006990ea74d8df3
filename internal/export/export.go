// Package export writes the reporter's tabular outputs: CSV files and the
// two-sheet workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/q8810247/air-quality-insights/internal/common"
	"github.com/q8810247/air-quality-insights/internal/series"
	"github.com/q8810247/air-quality-insights/internal/stats"
)

// SampleRowCap bounds the workbook's sample sheet.
const SampleRowCap = 5000

var statsHeader = []string{
	"city_id", "city_name", "variable",
	"count", "mean", "median", "mode", "std", "min", "max",
}

// mergedHeader is the merged table's fixed column order: key, weather
// columns, air columns, then the display name.
var mergedHeader = append(append([]string{"city_id", "timestamp"}, series.Variables...), "city_name")

// StatsCSV writes the tidy statistics table. Undefined statistics (the
// sample standard deviation of a single observation) come out as empty
// cells.
func StatsCSV(path string, rows []stats.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stats csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		if err := w.Write(statsRecord(r)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MergedCSV writes the full merged table in fixed column order. Absent
// measurements are empty cells.
func MergedCSV(path string, t series.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create merged csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(mergedHeader); err != nil {
		f.Close()
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(mergedRecord(row)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Workbook writes the statistics sheet plus a sample of merged rows, capped
// at SampleRowCap.
func Workbook(path string, rows []stats.Row, t series.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "stats"); err != nil {
		return err
	}
	if err := f.SetSheetRow("stats", "A1", headerRow(statsHeader)); err != nil {
		return err
	}
	for i, r := range rows {
		row := []interface{}{
			r.CityID, r.CityName, r.Variable, r.Count,
			cellValue(r.Mean), cellValue(r.Median), cellValue(r.Mode),
			cellValue(r.Std), cellValue(r.Min), cellValue(r.Max),
		}
		if err := f.SetSheetRow("stats", fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("sample"); err != nil {
		return err
	}
	if err := f.SetSheetRow("sample", "A1", headerRow(mergedHeader)); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if i >= SampleRowCap {
			break
		}
		cells := []interface{}{row.CityID, row.Hour.Format(common.TimeLayout)}
		for _, v := range series.Variables {
			if x, ok := row.Value(v); ok && !math.IsNaN(x) && !math.IsInf(x, 0) {
				cells = append(cells, x)
			} else {
				cells = append(cells, nil)
			}
		}
		cells = append(cells, row.CityName)
		if err := f.SetSheetRow("sample", fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func statsRecord(r stats.Row) []string {
	return []string{
		fmt.Sprintf("%d", r.CityID),
		r.CityName,
		r.Variable,
		fmt.Sprintf("%d", r.Count),
		numCell(r.Mean),
		numCell(r.Median),
		numCell(r.Mode),
		numCell(r.Std),
		numCell(r.Min),
		numCell(r.Max),
	}
}

func mergedRecord(row series.Row) []string {
	rec := make([]string, 0, len(mergedHeader))
	rec = append(rec, fmt.Sprintf("%d", row.CityID), row.Hour.Format(common.TimeLayout))
	for _, v := range series.Variables {
		if x, ok := row.Value(v); ok {
			rec = append(rec, numCell(x))
		} else {
			rec = append(rec, "")
		}
	}
	return append(rec, row.CityName)
}

func headerRow(names []string) *[]interface{} {
	row := make([]interface{}, len(names))
	for i, name := range names {
		row[i] = name
	}
	return &row
}

// numCell renders a statistic for CSV; non-finite values come out empty.
func numCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return common.FormatCell(v)
}

// cellValue boxes a statistic for the workbook; non-finite values become
// empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
