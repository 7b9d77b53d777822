package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/services"
)

func SetupPredictionRoutes(app *fiber.App, predictionService *services.PredictionService) {
	// 🔐 Secured routes — require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/predictions", predictionService.SubmitPrediction)
	secured.Get("/predictions", predictionService.GetPredictions)
}
