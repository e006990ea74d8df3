package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/q8810247/air-quality-insights/internal/collect"
	"github.com/q8810247/air-quality-insights/internal/owm"
)

func newTestApp(runs *collect.RunStore) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, runs)
	return app
}

func seedRun(runs *collect.RunStore) collect.RunReport {
	report := collect.RunReport{
		RunID:      "run-1",
		CapturedAt: time.Date(2025, 8, 1, 16, 0, 0, 0, time.UTC),
		Rows:       2,
		File:       "weather_air_quality.csv",
	}
	rows := []collect.Snapshot{
		{Datetime: "2025-08-01 23:00:00", City: "Hanoi", Weather: &owm.WeatherObs{Temp: 30.1, Humidity: 70, Condition: "Clouds", WindSpeed: 2.1}},
		{Datetime: "2025-08-01 23:00:00", City: "Danang"},
	}
	runs.Save(report, rows)
	return report
}

// TestRunsLastBeforeAnyRun verifies the API reports 404 until a capture run
// has completed.
func TestRunsLastBeforeAnyRun(t *testing.T) {
	app := newTestApp(collect.NewRunStore())

	for _, path := range []string{"/api/v1/runs/last", "/api/v1/snapshots/latest"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusNotFound, resp.StatusCode)
		}
	}
}

func TestRunsLastReturnsReport(t *testing.T) {
	runs := collect.NewRunStore()
	want := seedRun(runs)
	app := newTestApp(runs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/last", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var got collect.RunReport
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.RunID != want.RunID {
		t.Fatalf("expected run id %q, got %q", want.RunID, got.RunID)
	}
	if got.Rows != want.Rows {
		t.Fatalf("expected %d rows, got %d", want.Rows, got.Rows)
	}
}

func TestSnapshotsLatestCityFilter(t *testing.T) {
	runs := collect.NewRunStore()
	seedRun(runs)
	app := newTestApp(runs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/latest?city=hanoi", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		RunID     string             `json:"runId"`
		Snapshots []collect.Snapshot `json:"snapshots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(body.Snapshots))
	}
	if body.Snapshots[0].City != "Hanoi" {
		t.Fatalf("expected Hanoi row, got %q", body.Snapshots[0].City)
	}

	// Unknown city yields 404, not an empty list.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/latest?city=Hue", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
