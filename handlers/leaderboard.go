package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stephancmorris/league-fan-hub/services"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// 🔓 Public — the board is readable without user context; a forwarded
	// X-User-ID just enriches the response with the caller's rank.
	app.Get("/leaderboard", leaderboardService.GetLeaderboard)
}
