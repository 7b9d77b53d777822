package services

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stephancmorris/league-fan-hub/models"
	"github.com/stephancmorris/league-fan-hub/utils"
)

type MatchService struct {
	DB          *gorm.DB
	Broadcaster Broadcaster
}

func NewMatchService(db *gorm.DB, broadcaster Broadcaster) *MatchService {
	return &MatchService{DB: db, Broadcaster: broadcaster}
}

// matchWithCount is the list-view shape: the fixture plus how many
// predictions ride on it.
type matchWithCount struct {
	models.Match
	PredictionCount int64 `json:"prediction_count"`
}

// GetMatches handles GET /matches.
// Query: round, status, limit (default 20). Ordered by kickoff, then round.
func (s *MatchService) GetMatches(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	q := s.DB.Model(&models.Match{})
	if roundStr := c.Query("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "round must be an integer"})
		}
		q = q.Where("round = ?", round)
	}
	if status := c.Query("status"); status != "" {
		matchStatus := models.MatchStatus(strings.ToUpper(status))
		if !models.ValidMatchStatus(matchStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status. Must be one of UPCOMING, LIVE, COMPLETED",
			})
		}
		q = q.Where("status = ?", matchStatus)
	}

	var matches []models.Match
	if err := q.Order("kickoff_time ASC, round ASC").Limit(limit).Find(&matches).Error; err != nil {
		log.Printf("❌ list matches failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch matches"})
	}

	counts, err := s.predictionCounts(matches)
	if err != nil {
		log.Printf("❌ prediction counts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch matches"})
	}

	out := make([]matchWithCount, len(matches))
	for i, m := range matches {
		out[i] = matchWithCount{Match: m, PredictionCount: counts[m.ID]}
	}
	return c.JSON(fiber.Map{"matches": out})
}

func (s *MatchService) predictionCounts(matches []models.Match) (map[string]int64, error) {
	counts := make(map[string]int64, len(matches))
	if len(matches) == 0 {
		return counts, nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	var rows []struct {
		MatchID string
		Total   int64
	}
	err := s.DB.Model(&models.Prediction{}).
		Where("match_id IN ?", ids).
		Select("match_id, COUNT(id) AS total").
		Group("match_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MatchID] = row.Total
	}
	return counts, nil
}

// GetMatchByID handles GET /matches/:id.
func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("❌ get match failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch match"})
	}
	return c.JSON(fiber.Map{"match": match})
}

// CreateMatch handles POST /admin/matches (multipart form). Team logos are
// optional uploads pushed to object storage.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	homeTeam := strings.TrimSpace(c.FormValue("home_team"))
	awayTeam := strings.TrimSpace(c.FormValue("away_team"))
	roundStr := c.FormValue("round")
	kickoffStr := c.FormValue("kickoff_time")
	venue := c.FormValue("venue")
	competition := c.FormValue("competition")

	if homeTeam == "" || awayTeam == "" || roundStr == "" || kickoffStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "home_team, away_team, round, and kickoff_time are required",
		})
	}
	if homeTeam == awayTeam {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "home_team and away_team must differ"})
	}

	round, err := strconv.Atoi(roundStr)
	if err != nil || round < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "round must be a positive integer"})
	}

	kickoff, err := time.Parse(time.RFC3339, kickoffStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid kickoff_time (use RFC3339)"})
	}

	season := time.Now().Year()
	if seasonStr := c.FormValue("season"); seasonStr != "" {
		if n, err := strconv.Atoi(seasonStr); err == nil {
			season = n
		} else {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "season must be an integer"})
		}
	}

	match := &models.Match{
		ID:          uuid.NewString(),
		Round:       round,
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		Status:      models.MatchUpcoming,
		KickoffTime: kickoff,
		Venue:       venue,
		Season:      season,
		Competition: competition,
	}

	// Optional logo uploads → object storage.
	if file, err := c.FormFile("home_logo"); err == nil && file.Size > 0 {
		url, err := utils.UploadTeamLogo(file, homeTeam)
		if err != nil {
			log.Printf("❌ home logo upload failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload home team logo"})
		}
		match.HomeTeamLogo = &url
	}
	if file, err := c.FormFile("away_logo"); err == nil && file.Size > 0 {
		url, err := utils.UploadTeamLogo(file, awayTeam)
		if err != nil {
			log.Printf("❌ away logo upload failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload away team logo"})
		}
		match.AwayTeamLogo = &url
	}

	if err := s.DB.Create(match).Error; err != nil {
		log.Printf("❌ create match failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create match"})
	}

	log.Printf("✅ Match created: %s vs %s (round %d)", homeTeam, awayTeam, round)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"match": match})
}

// UpdateMatch handles PATCH /admin/matches/:id — a free-form partial update
// of score, status, current minute and half. Score or status changes produce
// live-update events for the relay.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("❌ update match: lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update match"})
	}

	var req struct {
		HomeScore     *int    `json:"home_score"`
		AwayScore     *int    `json:"away_score"`
		Status        *string `json:"status"`
		CurrentMinute *int    `json:"current_minute"`
		Half          *string `json:"half"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	scoreChanged := false
	statusChanged := false

	if req.HomeScore != nil {
		updates["home_score"] = *req.HomeScore
		scoreChanged = true
	}
	if req.AwayScore != nil {
		updates["away_score"] = *req.AwayScore
		scoreChanged = true
	}
	if req.Status != nil {
		status := models.MatchStatus(strings.ToUpper(*req.Status))
		if !models.ValidMatchStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status. Must be one of UPCOMING, LIVE, COMPLETED",
			})
		}
		updates["status"] = status
		statusChanged = true
	}
	if req.CurrentMinute != nil {
		updates["current_minute"] = *req.CurrentMinute
	}
	if req.Half != nil {
		half := models.MatchHalf(strings.ToUpper(*req.Half))
		if !models.ValidMatchHalf(half) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid half. Must be one of FIRST_HALF, HALF_TIME, SECOND_HALF, FULL_TIME",
			})
		}
		updates["half"] = half
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No recognized fields to update"})
	}
	if scoreChanged {
		updates["last_score_time"] = time.Now()
	}

	if err := s.DB.Model(&match).Updates(updates).Error; err != nil {
		log.Printf("❌ update match %s failed: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update match"})
	}

	// Reload so the response and the broadcast carry what was stored.
	if err := s.DB.First(&match, "id = ?", match.ID).Error; err != nil {
		log.Printf("❌ update match %s: reload failed: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update match"})
	}

	if s.Broadcaster != nil {
		now := time.Now().UTC().Format(time.RFC3339)
		if scoreChanged {
			s.Broadcaster.Broadcast(models.MatchUpdate{
				MatchID: match.ID,
				Type:    models.MatchUpdateScore,
				Data: map[string]interface{}{
					"home_score": match.HomeScore,
					"away_score": match.AwayScore,
					"updated_at": now,
				},
			})
		}
		if statusChanged {
			s.Broadcaster.Broadcast(models.MatchUpdate{
				MatchID: match.ID,
				Type:    models.MatchUpdateStatus,
				Data: map[string]interface{}{
					"status":         match.Status,
					"current_minute": match.CurrentMinute,
					"half":           match.Half,
					"updated_at":     now,
				},
			})
		}
	}

	return c.JSON(fiber.Map{"match": match})
}

// CalculatePoints handles POST /admin/matches/:id/calculate-points.
// Every prediction on a COMPLETED match with final scores is stamped with
// (is_correct, points) in one transaction, so the leaderboard never sees a
// half-updated match. Safe to re-run: the scoring rule is idempotent.
func (s *MatchService) CalculatePoints(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("❌ calculate points: lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate points"})
	}

	if match.Status != models.MatchCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Points can only be calculated for completed matches",
		})
	}
	if match.HomeScore == nil || match.AwayScore == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Match must have final scores to calculate points",
		})
	}

	var predictions []models.Prediction
	if err := s.DB.Where("match_id = ?", match.ID).Find(&predictions).Error; err != nil {
		log.Printf("❌ calculate points: prediction fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate points"})
	}
	if len(predictions) == 0 {
		return c.JSON(fiber.Map{"message": "No predictions found for this match", "updated": 0})
	}

	correctCount := 0
	totalPoints := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range predictions {
			isCorrect := IsPredictionCorrect(predictions[i].PredictedWinner, &match)
			points := CalculatePredictionPoints(predictions[i].PredictedWinner, &match)

			if err := tx.Model(&models.Prediction{}).
				Where("id = ?", predictions[i].ID).
				Updates(map[string]interface{}{
					"is_correct": isCorrect,
					"points":     points,
				}).Error; err != nil {
				return err
			}

			if isCorrect {
				correctCount++
			}
			totalPoints += points
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ calculate points for match %s failed: %v", match.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate points"})
	}

	log.Printf("✅ Points calculated for %s vs %s: %d predictions, %d correct, %d points awarded",
		match.HomeTeam, match.AwayTeam, len(predictions), correctCount, totalPoints)

	return c.JSON(fiber.Map{
		"message": "Points calculated successfully",
		"updated": len(predictions),
		"stats": fiber.Map{
			"totalPredictions":   len(predictions),
			"correctPredictions": correctCount,
			"totalPointsAwarded": totalPoints,
		},
	})
}
