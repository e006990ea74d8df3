// Package stats computes per-city descriptive statistics over the merged
// hourly table, one tidy row per (city, variable) pair.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/q8810247/air-quality-insights/internal/city"
	"github.com/q8810247/air-quality-insights/internal/series"
)

// Row is one tidy statistics record.
type Row struct {
	CityID   int
	CityName string
	Variable string
	Count    int
	Mean     float64
	Median   float64
	Mode     float64
	Std      float64
	Min      float64
	Max      float64
}

// Describe computes descriptive statistics for every recognized variable of
// every city in the table. Non-finite observations are excluded up front;
// a (city, variable) pair with zero remaining observations produces no row.
// With a single observation the sample standard deviation is undefined and
// the row carries NaN there. Output is sorted by (variable, city id).
func Describe(t series.Table, names map[int]string) []Row {
	samples := make(map[int]map[string][]float64)
	var cityIDs []int

	for _, row := range t.Rows {
		byVar, ok := samples[row.CityID]
		if !ok {
			byVar = make(map[string][]float64)
			samples[row.CityID] = byVar
			cityIDs = append(cityIDs, row.CityID)
		}
		for _, v := range series.Variables {
			x, ok := row.Value(v)
			if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			byVar[v] = append(byVar[v], x)
		}
	}
	sort.Ints(cityIDs)

	var rows []Row
	for _, id := range cityIDs {
		for _, v := range series.Variables {
			xs := samples[id][v]
			if len(xs) == 0 {
				continue
			}

			sorted := make([]float64, len(xs))
			copy(sorted, xs)
			sort.Float64s(sorted)

			rows = append(rows, Row{
				CityID:   id,
				CityName: city.DisplayName(names, id),
				Variable: v,
				Count:    len(xs),
				Mean:     stat.Mean(xs, nil),
				Median:   median(sorted),
				Mode:     mode(sorted),
				Std:      stat.StdDev(xs, nil),
				Min:      floats.Min(xs),
				Max:      floats.Max(xs),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Variable != rows[j].Variable {
			return rows[i].Variable < rows[j].Variable
		}
		return rows[i].CityID < rows[j].CityID
	})
	return rows
}

// median of a sorted sample: the middle value, or the average of the two
// middle values for an even count.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mode of a sorted sample: the most frequent value; ties break toward the
// smallest value, which ascending order gives for free.
func mode(sorted []float64) float64 {
	best, bestN := sorted[0], 1
	cur, curN := sorted[0], 1
	for _, v := range sorted[1:] {
		if v == cur {
			curN++
		} else {
			cur, curN = v, 1
		}
		if curN > bestN {
			best, bestN = cur, curN
		}
	}
	return best
}
