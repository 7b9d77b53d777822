package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/models"
)

type PredictionService struct {
	DB *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{DB: db}
}

// resolveUser maps the Gateway-asserted subject to a stored user.
func (s *PredictionService) resolveUser(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	err := s.DB.Where("auth_id = ?", middleware.AuthID(c)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SubmitPrediction handles POST /predictions.
// A prediction is accepted only while the match is UPCOMING, before kickoff,
// for one of the two listed teams, and only once per (user, match).
func (s *PredictionService) SubmitPrediction(c *fiber.Ctx) error {
	user, err := s.resolveUser(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ submit prediction: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit prediction"})
	}

	var req struct {
		MatchID         string `json:"match_id"`
		PredictedWinner string `json:"predicted_winner"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MatchID == "" || req.PredictedWinner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: match_id, predicted_winner",
		})
	}

	var match models.Match
	if err := s.DB.First(&match, "id = ?", req.MatchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("❌ submit prediction: match lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit prediction"})
	}

	if match.Status != models.MatchUpcoming {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Predictions can only be made for upcoming matches",
		})
	}
	if !time.Now().Before(match.KickoffTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Predictions are locked - match has already started",
		})
	}
	if req.PredictedWinner != match.HomeTeam && req.PredictedWinner != match.AwayTeam {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Predicted winner must be one of the match teams",
		})
	}

	var existing models.Prediction
	err = s.DB.Where("user_id = ? AND match_id = ?", user.ID, match.ID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You have already made a prediction for this match",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("❌ submit prediction: duplicate check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit prediction"})
	}

	prediction := models.Prediction{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		MatchID:         match.ID,
		PredictedWinner: req.PredictedWinner,
		Points:          0,   // stamped after match completion
		IsCorrect:       nil, // unresolved until the match is scored
	}
	if err := s.DB.Create(&prediction).Error; err != nil {
		// The unique (user_id, match_id) index backstops a concurrent double submit.
		log.Printf("❌ submit prediction: insert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit prediction"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Prediction submitted successfully",
		"prediction": fiber.Map{
			"id":               prediction.ID,
			"predicted_winner": prediction.PredictedWinner,
			"match": fiber.Map{
				"home_team":    match.HomeTeam,
				"away_team":    match.AwayTeam,
				"kickoff_time": match.KickoffTime,
			},
		},
	})
}

// GetPredictions handles GET /predictions — the caller's own predictions,
// newest first, with the match embedded.
// Query: match_id (exact), status (UPCOMING|LIVE|COMPLETED on the match).
func (s *PredictionService) GetPredictions(c *fiber.Ctx) error {
	user, err := s.resolveUser(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ list predictions: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch predictions"})
	}

	q := s.DB.Model(&models.Prediction{}).
		Preload("Match").
		Where("predictions.user_id = ?", user.ID)

	if matchID := c.Query("match_id"); matchID != "" {
		q = q.Where("predictions.match_id = ?", matchID)
	}
	if status := c.Query("status"); status != "" {
		matchStatus := models.MatchStatus(strings.ToUpper(status))
		if !models.ValidMatchStatus(matchStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status. Must be one of UPCOMING, LIVE, COMPLETED",
			})
		}
		q = q.Joins("JOIN matches ON matches.id = predictions.match_id").
			Where("matches.status = ?", matchStatus)
	}

	var predictions []models.Prediction
	if err := q.Order("predictions.created_at DESC").Find(&predictions).Error; err != nil {
		log.Printf("❌ list predictions failed for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch predictions"})
	}

	return c.JSON(fiber.Map{"predictions": predictions})
}
