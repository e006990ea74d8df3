// Package series aligns raw observation rows into hourly series and joins
// the weather and air-quality sides into one table keyed by (city, hour).
package series

import (
	"sort"
	"time"

	"github.com/q8810247/air-quality-insights/internal/city"
)

// Variables lists every numeric measurement column, weather first then air,
// matching the merged table's column order.
var Variables = []string{
	"temperature", "humidity", "wind_speed",
	"aqi", "pm2_5", "pm10", "co", "no", "no2", "o3", "so2",
}

// WeatherVariables and AirVariables are the column sets each source carries.
// The two sets are disjoint.
var (
	WeatherVariables = Variables[:3]
	AirVariables     = Variables[3:]
)

// IsVariable reports whether name is a recognized measurement column.
func IsVariable(name string) bool {
	for _, v := range Variables {
		if v == name {
			return true
		}
	}
	return false
}

// Point is one observation for a city from a single source. Values holds
// only the measurements that were actually present; a missing measurement
// simply has no key.
type Point struct {
	CityID int
	Time   time.Time
	Values map[string]float64
}

// Row is one merged table row: the union of both sources' values for a
// (city, hour) key, with the display name attached afterwards.
type Row struct {
	CityID   int
	Hour     time.Time
	Values   map[string]float64
	CityName string
}

// Table is the merged join output, sorted by (city, hour).
type Table struct {
	Rows []Row
}

// TruncateHour aligns t to the top of its hour, in UTC.
func TruncateHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

type pointKey struct {
	cityID int
	hour   int64
}

// Build folds raw points into an hourly series: timestamps truncate to the
// hour and the first point per (city, hour) in input order wins. Later
// points inside an already-seen hour are dropped, which makes the alignment
// deterministic for any input order.
func Build(points []Point) []Point {
	seen := make(map[pointKey]struct{}, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		hour := TruncateHour(p.Time)
		k := pointKey{cityID: p.CityID, hour: hour.Unix()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Point{CityID: p.CityID, Time: hour, Values: p.Values})
	}
	return out
}

// Merge outer-joins two hourly series on (city, hour). Each input is aligned
// with Build first, so sub-hourly duplicates resolve before the join. Every
// key present in either series yields exactly one row; a source without the
// key contributes no columns. Because the two sides carry disjoint column
// sets, the join is commutative in source order.
func Merge(a, b []Point) Table {
	merged := make(map[pointKey]map[string]float64)

	fold := func(points []Point) {
		for _, p := range Build(points) {
			k := pointKey{cityID: p.CityID, hour: p.Time.Unix()}
			values, ok := merged[k]
			if !ok {
				values = make(map[string]float64, len(p.Values))
				merged[k] = values
			}
			for name, v := range p.Values {
				values[name] = v
			}
		}
	}
	fold(a)
	fold(b)

	keys := make([]pointKey, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cityID != keys[j].cityID {
			return keys[i].cityID < keys[j].cityID
		}
		return keys[i].hour < keys[j].hour
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, Row{
			CityID: k.cityID,
			Hour:   time.Unix(k.hour, 0).UTC(),
			Values: merged[k],
		})
	}
	return Table{Rows: rows}
}

// AttachNames sets each row's display name from the lookup; ids not in the
// lookup fall back to their decimal form.
func (t *Table) AttachNames(names map[int]string) {
	for i := range t.Rows {
		t.Rows[i].CityName = city.DisplayName(names, t.Rows[i].CityID)
	}
}

// CityIDs returns the distinct city ids present in the table, ascending.
func (t Table) CityIDs() []int {
	var ids []int
	seen := make(map[int]struct{})
	for _, r := range t.Rows {
		if _, ok := seen[r.CityID]; ok {
			continue
		}
		seen[r.CityID] = struct{}{}
		ids = append(ids, r.CityID)
	}
	sort.Ints(ids)
	return ids
}

// Value looks up one measurement on a row.
func (r Row) Value(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}
