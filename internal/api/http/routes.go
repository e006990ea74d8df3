package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/q8810247/air-quality-insights/internal/collect"
)

// RegisterRoutes wires the operational HTTP handlers into the Fiber app. The
// API is read-only: it exposes what the most recent capture run produced.
func RegisterRoutes(app *fiber.App, runs *collect.RunStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/snapshots/latest", func(c *fiber.Ctx) error {
		// One store read keeps the rows paired with their run.
		report, rows, err := runs.LastRun()
		if err != nil {
			if errors.Is(err, collect.ErrNoRuns) {
				return fiber.NewError(fiber.StatusNotFound, "no completed capture runs yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read last run")
		}

		if city := c.Query("city"); city != "" {
			filtered := rows[:0]
			for _, row := range rows {
				if strings.EqualFold(row.City, city) {
					filtered = append(filtered, row)
				}
			}
			if len(filtered) == 0 {
				return fiber.NewError(fiber.StatusNotFound, "no snapshot for requested city")
			}
			rows = filtered
		}

		return c.JSON(fiber.Map{
			"runId":      report.RunID,
			"capturedAt": report.CapturedAt,
			"snapshots":  rows,
		})
	})

	v1.Get("/runs/last", func(c *fiber.Ctx) error {
		report, err := runs.LastReport()
		if err != nil {
			if errors.Is(err, collect.ErrNoRuns) {
				return fiber.NewError(fiber.StatusNotFound, "no completed capture runs yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read last run")
		}
		return c.JSON(report)
	})
}
