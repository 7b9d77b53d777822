package services

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/models"
)

func newStatsApp(db *gorm.DB) *fiber.App {
	svc := NewUserService(db, NewLeaderboardService(db))
	app := fiber.New()
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/users/:id/stats", svc.GetUserStats)
	return app
}

func seedPrediction(t *testing.T, db *gorm.DB, userID string, createdAt time.Time, isCorrect *bool, points int) {
	t.Helper()
	match := models.Match{
		ID:          uuid.NewString(),
		Round:       1,
		HomeTeam:    "Broncos",
		AwayTeam:    "Storm",
		Status:      models.MatchCompleted,
		KickoffTime: createdAt.Add(time.Hour),
	}
	require.NoError(t, db.Create(&match).Error)
	require.NoError(t, db.Create(&models.Prediction{
		ID:              uuid.NewString(),
		UserID:          userID,
		MatchID:         match.ID,
		PredictedWinner: "Broncos",
		Points:          points,
		IsCorrect:       isCorrect,
		CreatedAt:       createdAt,
	}).Error)
}

func TestGetUserStats_CountsResolvedOnly(t *testing.T) {
	db := newTestDB(t)
	user := models.User{ID: uuid.NewString(), AuthID: "auth0|stats", Email: "stats@example.com", Name: "Stats"}
	require.NoError(t, db.Create(&user).Error)

	// Oldest to newest: a miss, two hits, then two still-unresolved picks.
	base := time.Now().Add(-3 * time.Hour)
	seedPrediction(t, db, user.ID, base, boolPtr(false), 0)
	seedPrediction(t, db, user.ID, base.Add(10*time.Minute), boolPtr(true), 10)
	seedPrediction(t, db, user.ID, base.Add(20*time.Minute), boolPtr(true), 15)
	seedPrediction(t, db, user.ID, base.Add(30*time.Minute), nil, 0)
	seedPrediction(t, db, user.ID, base.Add(40*time.Minute), nil, 0)

	app := newStatsApp(db)
	req := httptest.NewRequest("GET", "/users/"+user.ID+"/stats", nil)
	req.Header.Set("X-User-ID", user.AuthID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Stats struct {
			TotalPredictions   int `json:"totalPredictions"`
			CorrectPredictions int `json:"correctPredictions"`
			Accuracy           int `json:"accuracy"`
			TotalPoints        int `json:"totalPoints"`
			CurrentStreak      int `json:"currentStreak"`
			BestStreak         int `json:"bestStreak"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	// Unresolved picks count for nothing.
	assert.Equal(t, 3, payload.Stats.TotalPredictions)
	assert.Equal(t, 2, payload.Stats.CorrectPredictions)
	assert.Equal(t, 67, payload.Stats.Accuracy)
	assert.Equal(t, 25, payload.Stats.TotalPoints)
	assert.Equal(t, 2, payload.Stats.CurrentStreak)
	assert.Equal(t, 2, payload.Stats.BestStreak)
}

func TestGetUserStats_OwnStatsOnly(t *testing.T) {
	db := newTestDB(t)
	user := models.User{ID: uuid.NewString(), AuthID: "auth0|owner", Email: "owner@example.com", Name: "Owner"}
	other := models.User{ID: uuid.NewString(), AuthID: "auth0|other", Email: "other@example.com", Name: "Other"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&other).Error)

	app := newStatsApp(db)
	req := httptest.NewRequest("GET", "/users/"+other.ID+"/stats", nil)
	req.Header.Set("X-User-ID", user.AuthID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
