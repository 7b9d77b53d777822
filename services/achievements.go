package services

import (
	"math"
	"sort"
)

type AchievementCategory string

const (
	CategoryPredictions AchievementCategory = "predictions"
	CategoryAccuracy    AchievementCategory = "accuracy"
	CategoryStreak      AchievementCategory = "streak"
	CategoryPoints      AchievementCategory = "points"
)

// Achievement is one badge in the fixed catalog.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Requirement int                 `json:"requirement"`
	Category    AchievementCategory `json:"category"`
}

// Achievements is the full catalog, grouped by category with ascending
// thresholds.
var Achievements = []Achievement{
	// Prediction milestones
	{ID: "first_prediction", Name: "Getting Started", Description: "Make your first prediction", Icon: "🎯", Requirement: 1, Category: CategoryPredictions},
	{ID: "prediction_10", Name: "Regular", Description: "Make 10 predictions", Icon: "📊", Requirement: 10, Category: CategoryPredictions},
	{ID: "prediction_50", Name: "Dedicated Fan", Description: "Make 50 predictions", Icon: "🏆", Requirement: 50, Category: CategoryPredictions},
	{ID: "prediction_100", Name: "Century Maker", Description: "Make 100 predictions", Icon: "💯", Requirement: 100, Category: CategoryPredictions},

	// Accuracy
	{ID: "accuracy_50", Name: "On Target", Description: "Achieve 50% accuracy (min 10 predictions)", Icon: "🎪", Requirement: 50, Category: CategoryAccuracy},
	{ID: "accuracy_70", Name: "Sharp Shooter", Description: "Achieve 70% accuracy (min 20 predictions)", Icon: "🎯", Requirement: 70, Category: CategoryAccuracy},
	{ID: "accuracy_90", Name: "Oracle", Description: "Achieve 90% accuracy (min 30 predictions)", Icon: "🔮", Requirement: 90, Category: CategoryAccuracy},

	// Streaks
	{ID: "streak_3", Name: "Hot Streak", Description: "Get 3 correct predictions in a row", Icon: "🔥", Requirement: 3, Category: CategoryStreak},
	{ID: "streak_5", Name: "On Fire", Description: "Get 5 correct predictions in a row", Icon: "🚀", Requirement: 5, Category: CategoryStreak},
	{ID: "streak_10", Name: "Unstoppable", Description: "Get 10 correct predictions in a row", Icon: "⭐", Requirement: 10, Category: CategoryStreak},

	// Points
	{ID: "points_100", Name: "Points Collector", Description: "Earn 100 total points", Icon: "💰", Requirement: 100, Category: CategoryPoints},
	{ID: "points_500", Name: "High Scorer", Description: "Earn 500 total points", Icon: "💎", Requirement: 500, Category: CategoryPoints},
	{ID: "points_1000", Name: "Legend", Description: "Earn 1000 total points", Icon: "👑", Requirement: 1000, Category: CategoryPoints},
}

// UserStatSnapshot is the aggregate view the evaluator works from.
type UserStatSnapshot struct {
	TotalPredictions int
	Accuracy         float64
	CurrentStreak    int
	TotalPoints      int
}

// accuracyMinPredictions is the sample-size guard for accuracy badges: a
// lucky 1-for-1 record must not count as "90% accuracy".
func accuracyMinPredictions(requirement int) int {
	switch {
	case requirement < 70:
		return 10
	case requirement < 90:
		return 20
	default:
		return 30
	}
}

// CheckAchievements returns every badge the stats have earned.
func CheckAchievements(stats UserStatSnapshot) []Achievement {
	earned := []Achievement{}

	for _, a := range Achievements {
		switch a.Category {
		case CategoryPredictions:
			if stats.TotalPredictions >= a.Requirement {
				earned = append(earned, a)
			}
		case CategoryAccuracy:
			if stats.TotalPredictions >= accuracyMinPredictions(a.Requirement) &&
				stats.Accuracy >= float64(a.Requirement) {
				earned = append(earned, a)
			}
		case CategoryStreak:
			if stats.CurrentStreak >= a.Requirement {
				earned = append(earned, a)
			}
		case CategoryPoints:
			if stats.TotalPoints >= a.Requirement {
				earned = append(earned, a)
			}
		}
	}

	return earned
}

// NextAchievement pairs the first unmet badge of a category with the
// percentage progress towards it.
type NextAchievement struct {
	Achievement Achievement `json:"achievement"`
	Progress    int         `json:"progress"`
}

// GetNextAchievement scans a category's ladder in ascending threshold order
// and returns the first threshold currentValue has not reached, or nil when
// the whole ladder is done. Callers should clamp Progress for display.
func GetNextAchievement(category AchievementCategory, currentValue float64) *NextAchievement {
	ladder := make([]Achievement, 0, 4)
	for _, a := range Achievements {
		if a.Category == category {
			ladder = append(ladder, a)
		}
	}
	sort.Slice(ladder, func(i, j int) bool { return ladder[i].Requirement < ladder[j].Requirement })

	for _, a := range ladder {
		if currentValue < float64(a.Requirement) {
			progress := int(math.Round(currentValue / float64(a.Requirement) * 100))
			return &NextAchievement{Achievement: a, Progress: progress}
		}
	}

	return nil
}
