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

	"github.com/stephancmorris/league-fan-hub/models"
)

func TestWeekStartDate(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)

	// Wednesday → back to Monday of the same week.
	wed := time.Date(2026, time.August, 26, 15, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, loc), weekStartDate(wed))

	// Monday itself → midnight that day.
	mon := time.Date(2026, time.August, 24, 9, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, loc), weekStartDate(mon))

	// Sunday → Monday six days back, not tomorrow.
	sun := time.Date(2026, time.August, 30, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, loc), weekStartDate(sun))
}

func TestRoundAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, roundAccuracy(0, 0))
	assert.Equal(t, 50.0, roundAccuracy(1, 2))
	assert.Equal(t, 66.7, roundAccuracy(2, 3))
	assert.Equal(t, 33.3, roundAccuracy(1, 3))
	assert.Equal(t, 100.0, roundAccuracy(7, 7))
}

func TestSortAndRank(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: "a", TotalPoints: 50, Accuracy: 60, TotalPredictions: 10},
		{UserID: "b", TotalPoints: 80, Accuracy: 40, TotalPredictions: 20},
		{UserID: "c", TotalPoints: 50, Accuracy: 75, TotalPredictions: 8},
		{UserID: "d", TotalPoints: 50, Accuracy: 60, TotalPredictions: 12},
	}

	sortAndRank(entries)

	// Points first, then accuracy, then volume.
	assert.Equal(t, []string{"b", "c", "d", "a"}, []string{
		entries[0].UserID, entries[1].UserID, entries[2].UserID, entries[3].UserID,
	})
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestSortAndRank_HigherPointsNeverRankWorse(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: "low", TotalPoints: 10, Accuracy: 100, TotalPredictions: 1},
		{UserID: "high", TotalPoints: 100, Accuracy: 10, TotalPredictions: 50},
	}
	sortAndRank(entries)
	assert.Equal(t, "high", entries[0].UserID)
	assert.Less(t, entries[0].Rank, entries[1].Rank)
}

func TestPaginate(t *testing.T) {
	entries := make([]LeaderboardEntry, 10)
	for i := range entries {
		entries[i] = LeaderboardEntry{Rank: i + 1}
	}

	page1 := paginate(entries, 4, 0)
	page2 := paginate(entries, 4, 4)
	page3 := paginate(entries, 4, 8)

	require.Len(t, page1, 4)
	require.Len(t, page2, 4)
	require.Len(t, page3, 2)

	// Pages concatenate back into the full ordering, ranks staying global.
	next := 1
	for _, page := range [][]LeaderboardEntry{page1, page2, page3} {
		for _, e := range page {
			assert.Equal(t, next, e.Rank)
			next++
		}
	}

	assert.Empty(t, paginate(entries, 4, 10))
	assert.Empty(t, paginate(entries, 4, 100))
}

// Validation rejects bad input before any data access, so a nil DB is safe
// here.
func TestGetLeaderboard_Validation(t *testing.T) {
	app := fiber.New()
	svc := NewLeaderboardService(nil)
	app.Get("/leaderboard", svc.GetLeaderboard)

	t.Run("invalid timeframe", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/leaderboard?timeframe=month", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, `Invalid timeframe. Must be "week" or "all-time"`, payload["error"])
	})

	t.Run("limit too large", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/leaderboard?limit=500", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("limit zero", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/leaderboard?limit=0", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

type leaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Error       string             `json:"error"`
	Pagination  struct {
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
		HasMore bool `json:"hasMore"`
	} `json:"pagination"`
}

func getLeaderboard(t *testing.T, app *fiber.App, url string) leaderboardResponse {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload leaderboardResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestGetLeaderboard_HasMore(t *testing.T) {
	db := newTestDB(t)
	for i, points := range []int{30, 20, 10} {
		user := models.User{
			ID:     uuid.NewString(),
			AuthID: "auth0|board" + string(rune('a'+i)),
			Email:  string(rune('a'+i)) + "@example.com",
			Name:   "Player " + string(rune('A'+i)),
		}
		require.NoError(t, db.Create(&user).Error)
		seedPrediction(t, db, user.ID, time.Now().Add(-time.Hour), boolPtr(true), points)
	}

	app := fiber.New()
	app.Get("/leaderboard", NewLeaderboardService(db).GetLeaderboard)

	// Full page: returned count equals the limit, so more pages are assumed.
	full := getLeaderboard(t, app, "/leaderboard?limit=2")
	require.Len(t, full.Leaderboard, 2)
	assert.True(t, full.Pagination.HasMore)
	assert.Equal(t, 30, full.Leaderboard[0].TotalPoints)
	assert.Equal(t, 1, full.Leaderboard[0].Rank)

	// Short page: fewer rows than the limit ends pagination.
	short := getLeaderboard(t, app, "/leaderboard?limit=10")
	require.Len(t, short.Leaderboard, 3)
	assert.False(t, short.Pagination.HasMore)
}

// An aggregation failure must not surface as a 500: the payload stays
// structurally valid with an empty board and an advisory message.
func TestGetLeaderboard_DegradesOnFailure(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	app := fiber.New()
	app.Get("/leaderboard", NewLeaderboardService(db).GetLeaderboard)

	payload := getLeaderboard(t, app, "/leaderboard?timeframe=week&limit=25")
	assert.Empty(t, payload.Leaderboard)
	assert.NotNil(t, payload.Leaderboard, "board must be [] not null")
	assert.Equal(t, "Unable to load leaderboard. Please try again later.", payload.Error)
	assert.Equal(t, 25, payload.Pagination.Limit)
	assert.False(t, payload.Pagination.HasMore)
}
