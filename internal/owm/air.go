package owm

import (
	"context"
	"fmt"
)

// AirObs is a normalized air-quality reading: the 1..5 quality index plus
// pollutant concentrations in µg/m³.
type AirObs struct {
	AQI  float64 `json:"aqi"`
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// CurrentAirQuality fetches the current air pollution reading for the
// coordinates. Every expected component must be present or the fetch fails.
func (c *Client) CurrentAirQuality(ctx context.Context, lat, lon float64) (AirObs, error) {
	var payload struct {
		List []struct {
			Main *struct {
				AQI *float64 `json:"aqi"`
			} `json:"main"`
			Components *struct {
				CO   *float64 `json:"co"`
				NO   *float64 `json:"no"`
				NO2  *float64 `json:"no2"`
				O3   *float64 `json:"o3"`
				SO2  *float64 `json:"so2"`
				PM25 *float64 `json:"pm2_5"`
				PM10 *float64 `json:"pm10"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := c.getJSON(ctx, "/data/2.5/air_pollution", coordQuery(lat, lon), &payload); err != nil {
		return AirObs{}, err
	}

	if len(payload.List) == 0 {
		return AirObs{}, fmt.Errorf("%w: list[0]", errMissingField)
	}
	entry := payload.List[0]
	if entry.Main == nil || entry.Main.AQI == nil {
		return AirObs{}, fmt.Errorf("%w: list[0].main.aqi", errMissingField)
	}
	comp := entry.Components
	if comp == nil {
		return AirObs{}, fmt.Errorf("%w: list[0].components", errMissingField)
	}
	required := []struct {
		name string
		val  *float64
	}{
		{"co", comp.CO},
		{"no", comp.NO},
		{"no2", comp.NO2},
		{"o3", comp.O3},
		{"so2", comp.SO2},
		{"pm2_5", comp.PM25},
		{"pm10", comp.PM10},
	}
	for _, f := range required {
		if f.val == nil {
			return AirObs{}, fmt.Errorf("%w: list[0].components.%s", errMissingField, f.name)
		}
	}

	return AirObs{
		AQI:  *entry.Main.AQI,
		CO:   *comp.CO,
		NO:   *comp.NO,
		NO2:  *comp.NO2,
		O3:   *comp.O3,
		SO2:  *comp.SO2,
		PM25: *comp.PM25,
		PM10: *comp.PM10,
	}, nil
}
