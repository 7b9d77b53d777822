package services

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/models"
)

type UserService struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService
}

func NewUserService(db *gorm.DB, leaderboard *LeaderboardService) *UserService {
	return &UserService{DB: db, Leaderboard: leaderboard}
}

// SyncUser handles POST /auth/sync. The gateway calls it after login so the
// local users table mirrors the identity provider. Upserts on auth_id.
func (s *UserService) SyncUser(c *fiber.Ctx) error {
	authID := middleware.AuthID(c)

	var req struct {
		Email   string  `json:"email"`
		Name    string  `json:"name"`
		Picture *string `json:"picture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}
	if req.Name == "" {
		req.Name = req.Email
	}

	now := time.Now()
	user := models.User{
		ID:          uuid.NewString(),
		AuthID:      authID,
		Email:       req.Email,
		Name:        req.Name,
		Picture:     req.Picture,
		Role:        models.RoleUser,
		LastLoginAt: &now,
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "auth_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "name", "picture", "last_login_at", "updated_at",
		}),
	}).Create(&user).Error
	if err != nil {
		log.Printf("❌ user sync failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sync user"})
	}

	// Re-read so existing users get their stored row back, not the insert
	// candidate.
	if err := s.DB.First(&user, "auth_id = ?", authID).Error; err != nil {
		log.Printf("❌ user sync readback failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sync user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func (s *UserService) resolveUser(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "auth_id = ?", middleware.AuthID(c)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserStats handles GET /users/:id/stats. Users can only read their own
// stats.
func (s *UserService) GetUserStats(c *fiber.Ctx) error {
	user, err := s.resolveUser(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ stats: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}
	if c.Params("id") != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	// Resolved predictions only, newest first. Unresolved ones count for
	// nothing here, volume included.
	var resolved []models.Prediction
	if err := s.DB.
		Where("user_id = ? AND is_correct IS NOT NULL", user.ID).
		Order("created_at DESC").
		Find(&resolved).Error; err != nil {
		log.Printf("❌ stats: prediction fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}

	totalPoints := 0
	correctCount := 0
	results := make([]bool, len(resolved))
	for i, p := range resolved {
		totalPoints += p.Points
		ok := p.IsCorrect != nil && *p.IsCorrect
		if ok {
			correctCount++
		}
		results[i] = ok
	}

	accuracy := 0
	if len(resolved) > 0 {
		accuracy = int(math.Round(float64(correctCount) / float64(len(resolved)) * 100))
	}

	recentForm := results
	if len(recentForm) > 5 {
		recentForm = recentForm[:5]
	}

	allTimeRank := 0
	weeklyRank := 0
	if rank, err := s.Leaderboard.GetUserRank(user.ID, TimeframeAllTime); err == nil && rank != nil {
		allTimeRank = rank.Rank
	}
	if rank, err := s.Leaderboard.GetUserRank(user.ID, TimeframeWeek); err == nil && rank != nil {
		weeklyRank = rank.Rank
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"totalPredictions":   len(resolved),
			"correctPredictions": correctCount,
			"accuracy":           accuracy,
			"totalPoints":        totalPoints,
			"currentStreak":      CurrentStreak(results),
			"bestStreak":         BestStreak(results),
			"recentForm":         recentForm,
			"rank": fiber.Map{
				"allTime": allTimeRank,
				"weekly":  weeklyRank,
			},
		},
	})
}

// GetUserAchievements handles GET /users/:id/achievements. Returns unlocked
// badges plus the closest locked badge per category.
func (s *UserService) GetUserAchievements(c *fiber.Ctx) error {
	user, err := s.resolveUser(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ achievements: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}
	if c.Params("id") != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var resolved []models.Prediction
	if err := s.DB.
		Where("user_id = ? AND is_correct IS NOT NULL", user.ID).
		Order("created_at DESC").
		Find(&resolved).Error; err != nil {
		log.Printf("❌ achievements: prediction fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	totalPoints := 0
	correctCount := 0
	results := make([]bool, len(resolved))
	for i, p := range resolved {
		totalPoints += p.Points
		ok := p.IsCorrect != nil && *p.IsCorrect
		if ok {
			correctCount++
		}
		results[i] = ok
	}

	accuracy := 0.0
	if len(resolved) > 0 {
		accuracy = float64(correctCount) / float64(len(resolved)) * 100
	}

	stats := UserStatSnapshot{
		TotalPredictions: len(resolved),
		Accuracy:         accuracy,
		CurrentStreak:    CurrentStreak(results),
		TotalPoints:      totalPoints,
	}

	unlocked := CheckAchievements(stats)

	next := fiber.Map{}
	if n := GetNextAchievement(CategoryPredictions, float64(stats.TotalPredictions)); n != nil {
		next["predictions"] = n
	}
	if n := GetNextAchievement(CategoryAccuracy, stats.Accuracy); n != nil {
		next["accuracy"] = n
	}
	if n := GetNextAchievement(CategoryStreak, float64(stats.CurrentStreak)); n != nil {
		next["streak"] = n
	}
	if n := GetNextAchievement(CategoryPoints, float64(stats.TotalPoints)); n != nil {
		next["points"] = n
	}

	return c.JSON(fiber.Map{
		"achievements": unlocked,
		"next":         next,
	})
}

// GetAllUsers handles GET /admin/users.
func (s *UserService) GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		log.Printf("❌ list users failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	type userWithCount struct {
		models.User
		PredictionCount int64 `json:"prediction_count"`
	}

	counts := make(map[string]int64, len(users))
	var rows []struct {
		UserID string
		Total  int64
	}
	if err := s.DB.Model(&models.Prediction{}).
		Select("user_id, COUNT(id) AS total").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		log.Printf("❌ list users: prediction counts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}

	out := make([]userWithCount, len(users))
	for i, u := range users {
		out[i] = userWithCount{User: u, PredictionCount: counts[u.ID]}
	}
	return c.JSON(fiber.Map{"users": out})
}

// UpdateUserRole handles PATCH /admin/users/:id/role.
func (s *UserService) UpdateUserRole(c *fiber.Ctx) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	role := models.UserRole(req.Role)
	if role != models.RoleUser && role != models.RoleAdmin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role must be USER or ADMIN"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ update role: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
	}

	if err := s.DB.Model(&user).Update("role", role).Error; err != nil {
		log.Printf("❌ update role for %s failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
	}

	log.Printf("✅ Role updated for %s: %s", user.Email, role)
	user.Role = role
	return c.JSON(fiber.Map{"user": user})
}
