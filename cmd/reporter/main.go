package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/q8810247/air-quality-insights/internal/city"
	"github.com/q8810247/air-quality-insights/internal/config"
	"github.com/q8810247/air-quality-insights/internal/logging"
	"github.com/q8810247/air-quality-insights/internal/report"
	"github.com/q8810247/air-quality-insights/internal/store"
)

func main() {
	var (
		daysBack  = flag.Int("days-back", 45, "lookback window in days")
		cities    = flag.String("cities", "1,2", "comma-separated city ids")
		outDir    = flag.String("outdir", "figures", "directory for rendered figures")
		saveCSV   = flag.Bool("save-csv", false, "write stats and merged-table CSV files")
		saveExcel = flag.Bool("save-excel", false, "write the two-sheet workbook")
		source    = flag.String("source", "postgres", "series source: postgres or csv")
		csvFile   = flag.String("csv-file", "", "snapshot file to read when source is csv")
	)
	flag.Parse()

	cfg, err := config.LoadReporter()
	if err != nil {
		logging.New("dev", slog.LevelInfo, "reporter").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, "reporter")

	params := report.Params{
		DaysBack:  *daysBack,
		CityIDs:   city.ParseIDList(*cities),
		OutDir:    *outDir,
		SaveCSV:   *saveCSV,
		SaveExcel: *saveExcel,
		Source:    *source,
		CSVFile:   *csvFile,
	}

	var src report.Source
	switch params.Source {
	case "csv":
		src = store.NewCSVSource(params.CSVFile, cfg.Cities, cfg.CaptureZone)
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is not set")
			os.Exit(1)
		}
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		src = pg
	default:
		logger.Error("unknown source", "source", params.Source)
		os.Exit(1)
	}

	runner := report.NewRunner(src, city.NameMap(cfg.Cities), logger)
	if err := runner.Run(context.Background(), params); err != nil {
		logger.Error("report run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("report complete", "outdir", params.OutDir)
}
