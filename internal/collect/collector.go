package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/q8810247/air-quality-insights/internal/city"
	"github.com/q8810247/air-quality-insights/internal/common"
	"github.com/q8810247/air-quality-insights/internal/owm"
)

// WeatherSource and AirSource are the two upstream fetch boundaries. Each is
// attempted exactly once per city per run.
type WeatherSource interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (owm.WeatherObs, error)
}

type AirSource interface {
	CurrentAirQuality(ctx context.Context, lat, lon float64) (owm.AirObs, error)
}

// RunReport summarizes one completed capture run.
type RunReport struct {
	RunID      string    `json:"runId"`
	CapturedAt time.Time `json:"capturedAt"`
	Rows       int       `json:"rows"`
	Degraded   []string  `json:"degraded,omitempty"`
	File       string    `json:"file"`
}

// Collector captures one snapshot row per configured city and rewrites the
// output file on every run.
type Collector struct {
	weather WeatherSource
	air     AirSource
	cities  []city.City
	zone    *time.Location
	outPath string
	runs    *RunStore
	logger  *slog.Logger
}

func New(weather WeatherSource, air AirSource, cities []city.City, zone *time.Location, outPath string, runs *RunStore, logger *slog.Logger) *Collector {
	return &Collector{
		weather: weather,
		air:     air,
		cities:  cities,
		zone:    zone,
		outPath: outPath,
		runs:    runs,
		logger:  logger,
	}
}

// Run executes one capture: a single timestamp is taken for the whole run,
// each city's two sources are fetched in order, and the output file is
// rewritten from scratch. A failed fetch degrades that source's cells to the
// sentinel without aborting the run; only writing the file can fail it.
func (c *Collector) Run(ctx context.Context) (RunReport, error) {
	runID := uuid.NewString()
	capturedAt := time.Now().In(c.zone)
	stamp := capturedAt.Format(common.TimeLayout)

	rows := make([]Snapshot, 0, len(c.cities))
	var degraded []string

	for _, ct := range c.cities {
		if err := ctx.Err(); err != nil {
			return RunReport{}, err
		}
		if ct.Lat == nil || ct.Lon == nil {
			degraded = append(degraded, fmt.Sprintf("%s: no coordinates", ct.Name))
			rows = append(rows, Snapshot{Datetime: stamp, City: ct.Name})
			continue
		}

		snap := Snapshot{Datetime: stamp, City: ct.Name}

		if w, err := c.weather.CurrentWeather(ctx, *ct.Lat, *ct.Lon); err != nil {
			c.logger.Debug("weather fetch degraded", "run", runID, "city", ct.Name, "error", err)
			degraded = append(degraded, fmt.Sprintf("%s: weather: %v", ct.Name, err))
		} else {
			snap.Weather = &w
		}

		if a, err := c.air.CurrentAirQuality(ctx, *ct.Lat, *ct.Lon); err != nil {
			c.logger.Debug("air quality fetch degraded", "run", runID, "city", ct.Name, "error", err)
			degraded = append(degraded, fmt.Sprintf("%s: air: %v", ct.Name, err))
		} else {
			snap.Air = &a
		}

		rows = append(rows, snap)
	}

	if err := WriteSnapshotFile(c.outPath, rows); err != nil {
		return RunReport{}, err
	}

	report := RunReport{
		RunID:      runID,
		CapturedAt: capturedAt,
		Rows:       len(rows),
		Degraded:   degraded,
		File:       c.outPath,
	}
	if c.runs != nil {
		c.runs.Save(report, rows)
	}

	c.logger.Info("capture run complete",
		"run", runID,
		"rows", report.Rows,
		"degraded", len(degraded),
		"file", c.outPath,
	)
	return report, nil
}
