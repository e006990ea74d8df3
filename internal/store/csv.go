package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/q8810247/air-quality-insights/internal/city"
	"github.com/q8810247/air-quality-insights/internal/common"
	"github.com/q8810247/air-quality-insights/internal/series"
)

// column name in the snapshot file -> variable name in the series.
var csvWeatherColumns = map[string]string{
	"temp":       "temperature",
	"humidity":   "humidity",
	"wind_speed": "wind_speed",
}

var csvAirColumns = map[string]string{
	"aqi":   "aqi",
	"pm2_5": "pm2_5",
	"pm10":  "pm10",
	"co":    "co",
	"no":    "no",
	"no2":   "no2",
	"o3":    "o3",
	"so2":   "so2",
}

// CSVSource reads a collector snapshot file as the two hourly series. The
// sentinel, blank, and unparseable cells all load as missing values; rows
// with an unknown city name or a broken timestamp are skipped entirely.
type CSVSource struct {
	path string
	ids  map[string]int
	zone *time.Location
}

// NewCSVSource reads snapshots from path. Cities provide the name-to-id
// mapping; zone is the offset the snapshot timestamps were rendered in.
func NewCSVSource(path string, cities []city.City, zone *time.Location) *CSVSource {
	ids := make(map[string]int, len(cities))
	for _, c := range cities {
		ids[c.Name] = c.ID
	}
	return &CSVSource{path: path, ids: ids, zone: zone}
}

// WeatherSeries loads the weather-side columns of the snapshot file.
func (s *CSVSource) WeatherSeries(_ context.Context, daysBack int, cityIDs []int) ([]series.Point, error) {
	return s.load(daysBack, cityIDs, csvWeatherColumns)
}

// AirSeries loads the air-side columns of the snapshot file.
func (s *CSVSource) AirSeries(_ context.Context, daysBack int, cityIDs []int) ([]series.Point, error) {
	return s.load(daysBack, cityIDs, csvAirColumns)
}

func (s *CSVSource) load(daysBack int, cityIDs []int, columns map[string]string) ([]series.Point, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{"datetime", "city"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("snapshot file missing %q column", required)
		}
	}

	wanted := make(map[int]struct{}, len(cityIDs))
	for _, id := range cityIDs {
		wanted[id] = struct{}{}
	}
	cutoff := time.Now().In(s.zone).AddDate(0, 0, -daysBack)

	var out []series.Point
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot row: %w", err)
		}

		id, ok := s.ids[rec[idx["city"]]]
		if !ok {
			continue
		}
		if _, ok := wanted[id]; !ok {
			continue
		}
		ts, err := time.ParseInLocation(common.TimeLayout, rec[idx["datetime"]], s.zone)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}

		values := make(map[string]float64, len(columns))
		for col, variable := range columns {
			pos, ok := idx[col]
			if !ok || pos >= len(rec) {
				continue
			}
			if v, ok := common.ParseCell(rec[pos]); ok {
				values[variable] = v
			}
		}
		out = append(out, series.Point{CityID: id, Time: ts, Values: values})
	}
	return out, nil
}
