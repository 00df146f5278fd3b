package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/home-dashboard-aggregation/internal/dashboard"
	"github.com/i474232898/home-dashboard-aggregation/internal/store"
)

// internalError is the only body a client sees when a snapshot fails.
const internalError = "Internal Server Error"

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *dashboard.Service, probes *store.MemoryStore) {
	app.Get("/", func(c *fiber.Ctx) error {
		snapshot, err := service.Snapshot(c.UserContext())
		if err != nil {
			// Details stay in the server log.
			slog.Error("dashboard snapshot failed",
				"request_id", c.Locals("requestid"),
				"variant", string(service.Variant()),
				"error", err,
			)
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusInternalServerError).SendString(internalError)
		}

		return c.JSON(snapshot)
	})

	app.Get("/health/upstreams", func(c *fiber.Ctx) error {
		results := []store.ProbeResult{}
		if probes != nil {
			results = probes.LatestAll()
		}

		status := "ok"
		for _, r := range results {
			if !r.OK {
				status = "degraded"
				break
			}
		}

		return c.JSON(fiber.Map{
			"status":    status,
			"upstreams": results,
		})
	})

	app.Get("/health/upstreams/:upstream", func(c *fiber.Ctx) error {
		name := c.Params("upstream")
		if probes == nil {
			return fiber.NewError(fiber.StatusNotFound, "no probe results for upstream")
		}

		latest, err := probes.Latest(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe results for upstream")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read probe results")
		}
		history, err := probes.History(name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read probe results")
		}

		return c.JSON(fiber.Map{
			"upstream": name,
			"latest":   latest,
			"history":  history,
		})
	})
}
