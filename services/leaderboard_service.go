package services

import (
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/stephancmorris/league-fan-hub/models"
)

const (
	TimeframeWeek    = "week"
	TimeframeAllTime = "all-time"
)

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	UserID             string  `json:"user_id"`
	UserName           string  `json:"user_name"`
	UserPicture        *string `json:"user_picture"`
	TotalPoints        int     `json:"total_points"`
	TotalPredictions   int     `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	Accuracy           float64 `json:"accuracy"`
	Rank               int     `json:"rank"`
	Streak             int     `json:"streak"`
}

type LeaderboardOptions struct {
	Timeframe string
	Limit     int
	Offset    int
}

// UserRank is a user's position computed without materializing the full
// sorted leaderboard.
type UserRank struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"totalUsers"`
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// weekStartDate returns the most recent Monday 00:00:00 in now's location.
// On a Sunday that is the Monday six days back.
func weekStartDate(now time.Time) time.Time {
	daysBack := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		daysBack = 6
	}
	start := now.AddDate(0, 0, -daysBack)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

// resolvedInWindow starts a fresh query over resolved predictions in the
// requested timeframe. Each call returns a new chain — GORM chains mutate.
func (s *LeaderboardService) resolvedInWindow(timeframe string) *gorm.DB {
	q := s.DB.Model(&models.Prediction{}).Where("is_correct IS NOT NULL")
	if timeframe == TimeframeWeek {
		q = q.Where("predictions.created_at >= ?", weekStartDate(time.Now()))
	}
	return q
}

type userAggregate struct {
	UserID      string
	TotalPoints int
	TotalCount  int
}

// CalculateLeaderboard runs the full pipeline: window filter → group by user
// → per-user correct count → identity join → streaks (all-time only) → sort
// → rank → paginate. Only users with at least one resolved prediction in the
// window appear.
func (s *LeaderboardService) CalculateLeaderboard(opts LeaderboardOptions) ([]LeaderboardEntry, error) {
	if opts.Timeframe == "" {
		opts.Timeframe = TimeframeAllTime
	}
	if opts.Limit == 0 {
		opts.Limit = 100
	}

	var aggregates []userAggregate
	if err := s.resolvedInWindow(opts.Timeframe).
		Select("user_id, COALESCE(SUM(points), 0) AS total_points, COUNT(id) AS total_count").
		Group("user_id").
		Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	if len(aggregates) == 0 {
		return []LeaderboardEntry{}, nil
	}

	userIDs := make([]string, len(aggregates))
	for i, agg := range aggregates {
		userIDs[i] = agg.UserID
	}

	// Correct counts, independently of the sum aggregation.
	var correctRows []struct {
		UserID       string
		CorrectCount int
	}
	if err := s.resolvedInWindow(opts.Timeframe).
		Where("is_correct = ? AND user_id IN ?", true, userIDs).
		Select("user_id, COUNT(id) AS correct_count").
		Group("user_id").
		Scan(&correctRows).Error; err != nil {
		return nil, err
	}
	correctByUser := make(map[string]int, len(correctRows))
	for _, row := range correctRows {
		correctByUser[row.UserID] = row.CorrectCount
	}

	// Display identity.
	var users []models.User
	if err := s.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	usersByID := make(map[string]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(aggregates))
	for _, agg := range aggregates {
		entry := LeaderboardEntry{
			UserID:             agg.UserID,
			UserName:           "Anonymous",
			TotalPoints:        agg.TotalPoints,
			TotalPredictions:   agg.TotalCount,
			CorrectPredictions: correctByUser[agg.UserID],
			Accuracy:           roundAccuracy(correctByUser[agg.UserID], agg.TotalCount),
		}
		if u, ok := usersByID[agg.UserID]; ok {
			if u.Name != "" {
				entry.UserName = u.Name
			}
			entry.UserPicture = u.Picture
		}

		// Streaks only make sense all-time; they always scan full history,
		// not the weekly window.
		if opts.Timeframe == TimeframeAllTime {
			streak, err := s.userCurrentStreak(agg.UserID)
			if err != nil {
				return nil, err
			}
			entry.Streak = streak
		}

		entries = append(entries, entry)
	}

	sortAndRank(entries)
	return paginate(entries, opts.Limit, opts.Offset), nil
}

// userCurrentStreak reads the user's most recent resolved predictions and
// counts the run of correct ones from the top.
func (s *LeaderboardService) userCurrentStreak(userID string) (int, error) {
	var results []bool
	err := s.DB.Model(&models.Prediction{}).
		Where("user_id = ? AND is_correct IS NOT NULL", userID).
		Order("created_at DESC").
		Limit(streakLookback).
		Pluck("is_correct", &results).Error
	if err != nil {
		return 0, err
	}
	return CurrentStreak(results), nil
}

// GetUserRank computes a user's rank as 1 + the number of distinct users with
// a strictly greater in-window point sum. This deliberately ignores the
// accuracy and prediction-count tie-breaks the full leaderboard sort uses, so
// it can disagree with a paginated position among tied users — a documented
// trade for not materializing the whole board.
func (s *LeaderboardService) GetUserRank(userID, timeframe string) (*UserRank, error) {
	var userTotal int
	if err := s.resolvedInWindow(timeframe).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&userTotal).Error; err != nil {
		return nil, err
	}

	var aheadIDs []string
	if err := s.resolvedInWindow(timeframe).
		Group("user_id").
		Having("COALESCE(SUM(points), 0) > ?", userTotal).
		Pluck("user_id", &aheadIDs).Error; err != nil {
		return nil, err
	}

	var totalUsers int64
	if err := s.resolvedInWindow(timeframe).
		Distinct("user_id").
		Count(&totalUsers).Error; err != nil {
		return nil, err
	}

	return &UserRank{
		Rank:       len(aheadIDs) + 1,
		TotalUsers: int(totalUsers),
	}, nil
}

// roundAccuracy returns correct/total as a percentage with one decimal.
func roundAccuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

// sortAndRank orders entries by points desc, then accuracy desc, then total
// predictions desc, and assigns 1-based sequential ranks. The tie-breaks make
// the order deterministic, so ranks are always unique with no gaps.
func sortAndRank(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		return a.TotalPredictions > b.TotalPredictions
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// paginate slices [offset, offset+limit) off the fully ranked list. Ranks on
// the returned entries stay global.
func paginate(entries []LeaderboardEntry, limit, offset int) []LeaderboardEntry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []LeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

// GetLeaderboard handles GET /leaderboard.
// Query: timeframe=week|all-time (default all-time), limit 1..100
// (default 100), offset >= 0 (default 0).
//
// The leaderboard is a non-critical read: if the aggregation fails we return
// a structurally valid empty payload with an advisory message instead of a
// 500. The caller's own rank is best-effort and never fails the response.
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	timeframe := c.Query("timeframe", TimeframeAllTime)
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if timeframe != TimeframeWeek && timeframe != TimeframeAllTime {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `Invalid timeframe. Must be "week" or "all-time"`,
		})
	}
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Limit must be between 1 and 100",
		})
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.CalculateLeaderboard(LeaderboardOptions{
		Timeframe: timeframe,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		log.Printf("⚠️ leaderboard aggregation failed: %v", err)
		return c.JSON(fiber.Map{
			"leaderboard":     []LeaderboardEntry{},
			"currentUserRank": nil,
			"timeframe":       timeframe,
			"pagination": fiber.Map{
				"limit":   limit,
				"offset":  offset,
				"hasMore": false,
			},
			"error": "Unable to load leaderboard. Please try again later.",
		})
	}

	// Attach the requesting user's rank when the gateway forwarded an
	// identity. Failures here are swallowed — the rank is an enhancement.
	var currentUserRank *UserRank
	if authID := c.Get("X-User-ID"); authID != "" {
		var user models.User
		if err := s.DB.Where("auth_id = ?", authID).First(&user).Error; err == nil {
			if rank, err := s.GetUserRank(user.ID, timeframe); err == nil {
				currentUserRank = rank
			} else {
				log.Printf("⚠️ rank lookup failed for user %s: %v", user.ID, err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"leaderboard":     entries,
		"currentUserRank": currentUserRank,
		"timeframe":       timeframe,
		"pagination": fiber.Map{
			"limit":   limit,
			"offset":  offset,
			"hasMore": len(entries) == limit,
		},
	})
}
