package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	// 🔐 Secured routes — require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/auth/sync", userService.SyncUser)
	secured.Get("/users/:id/stats", userService.GetUserStats)
	secured.Get("/users/:id/achievements", userService.GetUserAchievements)

	// 🔐 Admin routes
	admin := secured.Group("/admin", middleware.RequireRole("ADMIN"))
	admin.Get("/users", userService.GetAllUsers)
	admin.Patch("/users/:id/role", userService.UpdateUserRole)
}
