package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/services"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, liveHub *services.LiveHub) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/matches", matchService.GetMatches)
	app.Get("/matches/:id", matchService.GetMatchByID)
	app.Get("/live/stream", liveHub.StreamMatchUpdates)

	// 🔐 Admin routes — user context plus ADMIN role
	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireRole("ADMIN"))

	admin.Post("/matches", matchService.CreateMatch)
	admin.Patch("/matches/:id", matchService.UpdateMatch)
	admin.Post("/matches/:id/calculate-points", matchService.CalculatePoints)
}
