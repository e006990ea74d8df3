// Package store provides the reporter's data sources: the historical
// Postgres warehouse and, as a fallback, a collector snapshot file.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/q8810247/air-quality-insights/internal/series"
)

//go:embed sql/select-weather-hourly.sql
var selectWeatherHourlySQL string

//go:embed sql/select-air-hourly.sql
var selectAirHourlySQL string

// Postgres reads the two historical hourly series. One connection pool is
// opened per reporter run and closed when the run ends.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the warehouse and verifies the connection.
func OpenPostgres(connURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", connURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// WeatherSeries reads hour-truncated weather rows for the cities within the
// lookback window. NULL measurements become absent values, not zeros.
func (p *Postgres) WeatherSeries(ctx context.Context, daysBack int, cityIDs []int) ([]series.Point, error) {
	rows, err := p.db.QueryContext(ctx, selectWeatherHourlySQL, pq.Array(cityIDs), daysBack)
	if err != nil {
		return nil, fmt.Errorf("query weather series: %w", err)
	}
	defer closeRows(rows, "weather series")

	var out []series.Point
	for rows.Next() {
		var (
			cityID          int
			ts              time.Time
			temp, hum, wind sql.NullFloat64
		)
		if err := rows.Scan(&cityID, &ts, &temp, &hum, &wind); err != nil {
			return nil, fmt.Errorf("scan weather row: %w", err)
		}

		values := make(map[string]float64, 3)
		putNullable(values, "temperature", temp)
		putNullable(values, "humidity", hum)
		putNullable(values, "wind_speed", wind)

		out = append(out, series.Point{CityID: cityID, Time: ts, Values: values})
	}
	return out, rows.Err()
}

// AirSeries reads hour-truncated air-quality rows for the cities within the
// lookback window.
func (p *Postgres) AirSeries(ctx context.Context, daysBack int, cityIDs []int) ([]series.Point, error) {
	rows, err := p.db.QueryContext(ctx, selectAirHourlySQL, pq.Array(cityIDs), daysBack)
	if err != nil {
		return nil, fmt.Errorf("query air series: %w", err)
	}
	defer closeRows(rows, "air series")

	var out []series.Point
	for rows.Next() {
		var (
			cityID int
			ts     time.Time
			cols   [8]sql.NullFloat64
		)
		if err := rows.Scan(&cityID, &ts,
			&cols[0], &cols[1], &cols[2], &cols[3],
			&cols[4], &cols[5], &cols[6], &cols[7]); err != nil {
			return nil, fmt.Errorf("scan air row: %w", err)
		}

		values := make(map[string]float64, len(cols))
		names := []string{"aqi", "pm2_5", "pm10", "co", "no", "no2", "o3", "so2"}
		for i, name := range names {
			putNullable(values, name, cols[i])
		}

		out = append(out, series.Point{CityID: cityID, Time: ts, Values: values})
	}
	return out, rows.Err()
}

func putNullable(values map[string]float64, name string, v sql.NullFloat64) {
	if v.Valid {
		values[name] = v.Float64
	}
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}
