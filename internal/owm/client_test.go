package owm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const weatherBody = `{
	"main": {"temp": 30.12, "humidity": 70},
	"weather": [{"main": "Clouds"}],
	"wind": {"speed": 2.06}
}`

const airBody = `{
	"list": [{
		"main": {"aqi": 3},
		"components": {
			"co": 267.03, "no": 0.05, "no2": 6.17, "o3": 80.83,
			"so2": 7.15, "pm2_5": 15.73, "pm10": 21.94
		}
	}]
}`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") == "" {
			t.Errorf("request missing appid: %s", r.URL)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, NewClientAt(srv.Client(), "test-key", srv.URL)
}

func TestCurrentWeather(t *testing.T) {
	_, client := newServer(t, http.StatusOK, weatherBody)

	obs, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Temp != 30.12 || obs.Humidity != 70 {
		t.Fatalf("unexpected reading: %+v", obs)
	}
	if obs.Condition != "Clouds" {
		t.Fatalf("expected Clouds, got %q", obs.Condition)
	}
	if obs.WindSpeed != 2.06 {
		t.Fatalf("unexpected wind speed: %v", obs.WindSpeed)
	}
}

func TestCurrentWeatherMissingField(t *testing.T) {
	// No wind block at all: the whole fetch must fail, not default to zero.
	_, client := newServer(t, http.StatusOK, `{
		"main": {"temp": 30.12, "humidity": 70},
		"weather": [{"main": "Clouds"}]
	}`)

	if _, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for missing wind.speed")
	}
}

func TestCurrentWeatherWrongType(t *testing.T) {
	// A string where a number belongs fails the fetch outright.
	_, client := newServer(t, http.StatusOK, `{
		"main": {"temp": "hot", "humidity": 70},
		"weather": [{"main": "Clouds"}],
		"wind": {"speed": 2.06}
	}`)

	if _, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for non-numeric temp")
	}
}

func TestCurrentWeatherBadStatus(t *testing.T) {
	_, client := newServer(t, http.StatusUnauthorized, `{"cod":401}`)

	if _, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestCurrentWeatherNoAPIKey(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, weatherBody)
	client := NewClientAt(srv.Client(), "", srv.URL)

	if _, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestCurrentAirQuality(t *testing.T) {
	_, client := newServer(t, http.StatusOK, airBody)

	obs, err := client.CurrentAirQuality(context.Background(), 21.0285, 105.8542)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.AQI != 3 {
		t.Fatalf("unexpected aqi: %v", obs.AQI)
	}
	if obs.CO != 267.03 || obs.PM25 != 15.73 || obs.PM10 != 21.94 {
		t.Fatalf("unexpected components: %+v", obs)
	}
}

func TestCurrentAirQualityMissingComponent(t *testing.T) {
	_, client := newServer(t, http.StatusOK, `{
		"list": [{
			"main": {"aqi": 3},
			"components": {"co": 267.03}
		}]
	}`)

	if _, err := client.CurrentAirQuality(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for missing components")
	}
}

func TestCurrentAirQualityEmptyList(t *testing.T) {
	_, client := newServer(t, http.StatusOK, `{"list": []}`)

	if _, err := client.CurrentAirQuality(context.Background(), 21.0285, 105.8542); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestTransportErrorOmitsAPIKey(t *testing.T) {
	// Nothing listens on port 1: the dial fails before any response. The
	// error must name the endpoint but never the appid query.
	client := NewClientAt(&http.Client{Timeout: time.Second}, "secret-key-123", "http://127.0.0.1:1")

	_, err := client.CurrentWeather(context.Background(), 21.0285, 105.8542)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-key-123") {
		t.Fatalf("error text leaks the api key: %v", err)
	}
	if !strings.Contains(err.Error(), "/data/2.5/weather") {
		t.Fatalf("error should name the endpoint: %v", err)
	}
}
