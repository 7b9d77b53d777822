package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementIDs(earned []Achievement) []string {
	ids := make([]string, len(earned))
	for i, a := range earned {
		ids[i] = a.ID
	}
	return ids
}

func TestCheckAchievements_FreshUser(t *testing.T) {
	earned := CheckAchievements(UserStatSnapshot{})
	assert.Empty(t, earned)
}

func TestCheckAchievements_FirstPrediction(t *testing.T) {
	earned := CheckAchievements(UserStatSnapshot{TotalPredictions: 1})
	assert.Equal(t, []string{"first_prediction"}, achievementIDs(earned))
}

func TestCheckAchievements_AccuracyNeedsSampleSize(t *testing.T) {
	// 95% over 5 predictions is not enough volume for any accuracy badge.
	earned := CheckAchievements(UserStatSnapshot{TotalPredictions: 5, Accuracy: 95})
	assert.NotContains(t, achievementIDs(earned), "accuracy_50")
	assert.NotContains(t, achievementIDs(earned), "accuracy_70")
	assert.NotContains(t, achievementIDs(earned), "accuracy_90")

	// Same accuracy over 30 predictions unlocks the whole ladder.
	earned = CheckAchievements(UserStatSnapshot{TotalPredictions: 30, Accuracy: 95})
	ids := achievementIDs(earned)
	assert.Contains(t, ids, "accuracy_50")
	assert.Contains(t, ids, "accuracy_70")
	assert.Contains(t, ids, "accuracy_90")
}

func TestCheckAchievements_AccuracyMidTier(t *testing.T) {
	// 75% over 15 predictions: enough volume for the 50% badge (min 10) but
	// not the 70% badge (min 20).
	earned := CheckAchievements(UserStatSnapshot{TotalPredictions: 15, Accuracy: 75})
	ids := achievementIDs(earned)
	assert.Contains(t, ids, "accuracy_50")
	assert.NotContains(t, ids, "accuracy_70")
}

func TestCheckAchievements_StreakAndPoints(t *testing.T) {
	earned := CheckAchievements(UserStatSnapshot{
		TotalPredictions: 60,
		Accuracy:         40,
		CurrentStreak:    5,
		TotalPoints:      520,
	})
	ids := achievementIDs(earned)

	assert.Contains(t, ids, "prediction_50")
	assert.NotContains(t, ids, "prediction_100")
	assert.Contains(t, ids, "streak_3")
	assert.Contains(t, ids, "streak_5")
	assert.NotContains(t, ids, "streak_10")
	assert.Contains(t, ids, "points_100")
	assert.Contains(t, ids, "points_500")
	assert.NotContains(t, ids, "points_1000")
}

func TestGetNextAchievement_Progress(t *testing.T) {
	next := GetNextAchievement(CategoryPredictions, 5)
	require.NotNil(t, next)
	assert.Equal(t, "prediction_10", next.Achievement.ID)
	assert.Equal(t, 50, next.Progress)
}

func TestGetNextAchievement_SkipsMetThresholds(t *testing.T) {
	next := GetNextAchievement(CategoryPoints, 250)
	require.NotNil(t, next)
	assert.Equal(t, "points_500", next.Achievement.ID)
	assert.Equal(t, 50, next.Progress)
}

func TestGetNextAchievement_LadderComplete(t *testing.T) {
	assert.Nil(t, GetNextAchievement(CategoryStreak, 10))
	assert.Nil(t, GetNextAchievement(CategoryPredictions, 250))
}
