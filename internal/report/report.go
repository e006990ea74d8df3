// Package report orchestrates a reporting run: read the two hourly series,
// join them, describe them, and write the requested exports and figures.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/q8810247/air-quality-insights/internal/charts"
	"github.com/q8810247/air-quality-insights/internal/export"
	"github.com/q8810247/air-quality-insights/internal/series"
	"github.com/q8810247/air-quality-insights/internal/stats"
)

var validate = validator.New()

// Chart sets rendered by every run.
var (
	lineVariables = []string{"temperature", "aqi"}
	boxVariables  = []string{"aqi", "temperature", "humidity"}
	histVariables = []string{"aqi", "temperature"}
)

// Params are one run's parameters, bound from command-line flags.
type Params struct {
	DaysBack  int    `validate:"min=1"`
	CityIDs   []int  `validate:"required,min=1"`
	OutDir    string `validate:"required"`
	SaveCSV   bool
	SaveExcel bool
	Source    string `validate:"oneof=postgres csv"`
	CSVFile   string `validate:"required_if=Source csv"`
}

// Source provides the two hourly series for a run.
type Source interface {
	WeatherSeries(ctx context.Context, daysBack int, cityIDs []int) ([]series.Point, error)
	AirSeries(ctx context.Context, daysBack int, cityIDs []int) ([]series.Point, error)
}

// Runner executes reporting runs against a fixed source and city set.
type Runner struct {
	source Source
	names  map[int]string
	logger *slog.Logger
}

func NewRunner(source Source, names map[int]string, logger *slog.Logger) *Runner {
	return &Runner{source: source, names: names, logger: logger}
}

// Run executes one full reporting pass. Unlike collection, nothing here
// degrades: any read, export, or render failure fails the run.
func (r *Runner) Run(ctx context.Context, p Params) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid report params: %w", err)
	}
	logger := r.logger.With("run", uuid.NewString())

	weather, err := r.source.WeatherSeries(ctx, p.DaysBack, p.CityIDs)
	if err != nil {
		return fmt.Errorf("read weather series: %w", err)
	}
	air, err := r.source.AirSeries(ctx, p.DaysBack, p.CityIDs)
	if err != nil {
		return fmt.Errorf("read air series: %w", err)
	}
	logger.Info("series loaded", "weatherRows", len(weather), "airRows", len(air))

	table := series.Merge(weather, air)
	table.AttachNames(r.names)
	logger.Info("series merged", "rows", len(table.Rows))

	described := stats.Describe(table, r.names)
	logger.Info("statistics computed", "rows", len(described))
	for i, row := range described {
		if i == 5 {
			break
		}
		logger.Debug("stat",
			"variable", row.Variable,
			"city", row.CityName,
			"count", row.Count,
			"mean", row.Mean,
		)
	}

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if p.SaveCSV {
		if err := export.StatsCSV("descriptive_stats.csv", described); err != nil {
			return err
		}
		if err := export.MergedCSV("merged_data_preview.csv", table); err != nil {
			return err
		}
		logger.Info("csv exports written",
			"stats", "descriptive_stats.csv",
			"merged", "merged_data_preview.csv",
		)
	}
	if p.SaveExcel {
		if err := export.Workbook("descriptive_stats.xlsx", described, table); err != nil {
			return err
		}
		logger.Info("workbook written", "file", "descriptive_stats.xlsx")
	}

	for _, v := range lineVariables {
		if err := charts.Line(table, v, p.OutDir); err != nil {
			return err
		}
	}
	for _, v := range boxVariables {
		if err := charts.BoxByCity(table, v, p.OutDir); err != nil {
			return err
		}
	}
	for _, v := range histVariables {
		if err := charts.HistWithStats(table, v, p.OutDir); err != nil {
			return err
		}
	}
	if err := charts.CorrHeatmap(table, p.OutDir); err != nil {
		return err
	}
	logger.Info("figures rendered", "dir", filepath.Clean(p.OutDir))

	return nil
}
