package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"fuelapi/internal/guard"
	"fuelapi/internal/http/middleware"
	"fuelapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /api/fuel-records requires a bearer token.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	svc service.FuelRecordService,
	g guard.Guard,
	tokens middleware.TokenParser,
	limits UploadLimits,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/api/brands", ListBrands(svc))

	records := app.Group("/api/fuel-records", middleware.Auth(tokens))
	records.Post("/upload-receipt", UploadReceipt(svc, g, limits))
	records.Get("/", ListRecords(svc))
	records.Get("/summary", Summary(svc))
	records.Get("/range", ListRecordsBetween(svc))
	records.Get("/auth-test", AuthTest())
	records.Get("/:id", GetRecord(svc))
	records.Patch("/:id", UpdateRecord(svc))
	records.Delete("/:id", DeleteRecord(svc))
}
