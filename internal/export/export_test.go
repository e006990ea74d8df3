package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/q8810247/air-quality-insights/internal/series"
	"github.com/q8810247/air-quality-insights/internal/stats"
)

func sampleTable() series.Table {
	points := []series.Point{
		{CityID: 1, Time: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), Values: map[string]float64{"temperature": 30.1, "humidity": 70}},
		{CityID: 1, Time: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), Values: map[string]float64{"temperature": 31}},
	}
	air := []series.Point{
		{CityID: 1, Time: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), Values: map[string]float64{"aqi": 3}},
	}
	t := series.Merge(points, air)
	t.AttachNames(map[int]string{1: "Hanoi"})
	return t
}

func sampleStats() []stats.Row {
	return []stats.Row{
		{CityID: 1, CityName: "Hanoi", Variable: "aqi", Count: 1, Mean: 3, Median: 3, Mode: 3, Std: math.NaN(), Min: 3, Max: 3},
		{CityID: 1, CityName: "Hanoi", Variable: "temperature", Count: 2, Mean: 30.55, Median: 30.55, Mode: 30.1, Std: 0.6363961030678928, Min: 30.1, Max: 31},
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestStatsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	if err := StatsCSV(path, sampleStats()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readAll(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	wantHeader := []string{"city_id", "city_name", "variable", "count", "mean", "median", "mode", "std", "min", "max"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("header = %v", records[0])
	}
	// Undefined std renders as an empty cell.
	if records[1][7] != "" {
		t.Fatalf("NaN std should be empty, got %q", records[1][7])
	}
	if records[2][4] != "30.55" {
		t.Fatalf("mean cell = %q", records[2][4])
	}
}

func TestMergedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	if err := MergedCSV(path, sampleTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readAll(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}

	wantHeader := []string{
		"city_id", "timestamp",
		"temperature", "humidity", "wind_speed",
		"aqi", "pm2_5", "pm10", "co", "no", "no2", "o3", "so2",
		"city_name",
	}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("header = %v", records[0])
	}

	first := records[1]
	if first[0] != "1" || first[1] != "2025-08-01 09:00:00" {
		t.Fatalf("unexpected key cells: %v", first)
	}
	if first[2] != "30.1" || first[5] != "3" {
		t.Fatalf("unexpected value cells: %v", first)
	}
	// Unmeasured variables are empty, not zero.
	if first[4] != "" {
		t.Fatalf("wind_speed should be empty, got %q", first[4])
	}
	if first[len(first)-1] != "Hanoi" {
		t.Fatalf("city_name = %q", first[len(first)-1])
	}

	second := records[2]
	if second[3] != "" || second[5] != "" {
		t.Fatalf("10:00 row should have empty humidity and aqi: %v", second)
	}
}

func TestWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	if err := Workbook(path, sampleStats(), sampleTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"stats", "sample"}) {
		t.Fatalf("sheets = %v", sheets)
	}

	got, err := f.GetCellValue("stats", "C2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "aqi" {
		t.Fatalf("stats!C2 = %q", got)
	}

	// NaN std must be an empty cell, not a broken number.
	got, err = f.GetCellValue("stats", "H2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "" {
		t.Fatalf("stats!H2 = %q, want empty", got)
	}

	got, err = f.GetCellValue("sample", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "2025-08-01 09:00:00" {
		t.Fatalf("sample!B2 = %q", got)
	}
}
