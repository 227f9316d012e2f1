package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator *tracking.Coordinator
	Queries     *tracking.QueryService
	Reports     *tracking.ReportUseCase
	LocationUC  *usecase.LocationUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Movimientos y consultas de ubicación
	trk := api.Group("/tracking")
	trackingHandler := NewTrackingHandler(deps.Coordinator, deps.Queries, deps.Reports)
	trk.Post("/moves", writers, trackingHandler.Move)
	trk.Delete("/items/:kind/:id", writers, trackingHandler.Remove)
	trk.Get("/items/:kind/:id", trackingHandler.GetItem)
	trk.Get("/items/:kind/:id/history", trackingHandler.History)
	trk.Get("/locations/:code/items", trackingHandler.ItemsAt)
	trk.Get("/locations/:code/report.pdf", trackingHandler.LocationReport)
	trk.Get("/movements/recent", trackingHandler.Recent)

	// Directorio de ubicaciones
	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", locationHandler.List)
	locations.Get("/:code", locationHandler.GetByCode)
	locations.Post("/", RequireRole(RoleAdmin), locationHandler.Create)
	locations.Patch("/:code", RequireRole(RoleAdmin), locationHandler.Update)
}
