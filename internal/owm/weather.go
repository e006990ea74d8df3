package owm

import (
	"context"
	"fmt"
)

// WeatherObs is a normalized current-weather reading.
type WeatherObs struct {
	Temp      float64 `json:"temp"`
	Humidity  float64 `json:"humidity"`
	Condition string  `json:"condition"`
	WindSpeed float64 `json:"windSpeed"`
}

// CurrentWeather fetches the current conditions for the coordinates, metric
// units. Pointer fields in the payload distinguish absent from zero; any
// absent field fails the fetch rather than defaulting.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (WeatherObs, error) {
	values := coordQuery(lat, lon)
	values.Set("units", "metric")

	var payload struct {
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main *string `json:"main"`
		} `json:"weather"`
		Wind *struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := c.getJSON(ctx, "/data/2.5/weather", values, &payload); err != nil {
		return WeatherObs{}, err
	}

	switch {
	case payload.Main == nil:
		return WeatherObs{}, fmt.Errorf("%w: main", errMissingField)
	case payload.Main.Temp == nil:
		return WeatherObs{}, fmt.Errorf("%w: main.temp", errMissingField)
	case payload.Main.Humidity == nil:
		return WeatherObs{}, fmt.Errorf("%w: main.humidity", errMissingField)
	case len(payload.Weather) == 0 || payload.Weather[0].Main == nil:
		return WeatherObs{}, fmt.Errorf("%w: weather[0].main", errMissingField)
	case payload.Wind == nil || payload.Wind.Speed == nil:
		return WeatherObs{}, fmt.Errorf("%w: wind.speed", errMissingField)
	}

	return WeatherObs{
		Temp:      *payload.Main.Temp,
		Humidity:  *payload.Main.Humidity,
		Condition: *payload.Weather[0].Main,
		WindSpeed: *payload.Wind.Speed,
	}, nil
}
