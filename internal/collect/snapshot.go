package collect

import (
	"github.com/q8810247/air-quality-insights/internal/common"
	"github.com/q8810247/air-quality-insights/internal/owm"
)

// Header is the exact column order of the snapshot file.
var Header = []string{
	"datetime", "city",
	"temp", "humidity", "weather", "wind_speed",
	"aqi", "co", "no", "no2", "o3", "so2", "pm2_5", "pm10",
}

// Snapshot is one capture-run row: a city's weather and air-quality readings
// under the run's shared timestamp. A nil source means that fetch failed and
// every one of its cells renders as the sentinel; the row itself is still a
// valid terminal state.
type Snapshot struct {
	Datetime string          `json:"datetime"`
	City     string          `json:"city"`
	Weather  *owm.WeatherObs `json:"weather,omitempty"`
	Air      *owm.AirObs     `json:"air,omitempty"`
}

// Record flattens the snapshot into the Header column order.
func (s Snapshot) Record() []string {
	rec := make([]string, 0, len(Header))
	rec = append(rec, s.Datetime, s.City)

	if w := s.Weather; w != nil {
		rec = append(rec,
			common.FormatCell(w.Temp),
			common.FormatCell(w.Humidity),
			w.Condition,
			common.FormatCell(w.WindSpeed),
		)
	} else {
		for i := 0; i < 4; i++ {
			rec = append(rec, common.Unavailable)
		}
	}

	if a := s.Air; a != nil {
		rec = append(rec,
			common.FormatCell(a.AQI),
			common.FormatCell(a.CO),
			common.FormatCell(a.NO),
			common.FormatCell(a.NO2),
			common.FormatCell(a.O3),
			common.FormatCell(a.SO2),
			common.FormatCell(a.PM25),
			common.FormatCell(a.PM10),
		)
	} else {
		for i := 0; i < 8; i++ {
			rec = append(rec, common.Unavailable)
		}
	}

	return rec
}
