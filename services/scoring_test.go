package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stephancmorris/league-fan-hub/models"
)

func completedMatch(home, away int) *models.Match {
	return &models.Match{
		HomeTeam:  "Broncos",
		AwayTeam:  "Storm",
		HomeScore: &home,
		AwayScore: &away,
		Status:    models.MatchCompleted,
	}
}

func TestMatchWinner(t *testing.T) {
	assert.Equal(t, "Broncos", MatchWinner(completedMatch(24, 12)))
	assert.Equal(t, "Storm", MatchWinner(completedMatch(10, 30)))
	assert.Equal(t, "", MatchWinner(completedMatch(18, 18)), "draw has no winner")

	noScores := &models.Match{HomeTeam: "Broncos", AwayTeam: "Storm"}
	assert.Equal(t, "", MatchWinner(noScores))
}

func TestCalculatePredictionPoints_CorrectWinner(t *testing.T) {
	// Margin under the bonus threshold: base points only.
	points := CalculatePredictionPoints("Broncos", completedMatch(20, 10))
	assert.Equal(t, 10, points)
}

func TestCalculatePredictionPoints_MarginBonus(t *testing.T) {
	// Margin exactly at the threshold earns the bonus.
	assert.Equal(t, 15, CalculatePredictionPoints("Broncos", completedMatch(24, 12)))

	// One point short of the threshold does not.
	assert.Equal(t, 10, CalculatePredictionPoints("Broncos", completedMatch(23, 12)))

	// Bonus applies to away winners too.
	assert.Equal(t, 15, CalculatePredictionPoints("Storm", completedMatch(0, 40)))
}

func TestCalculatePredictionPoints_Incorrect(t *testing.T) {
	assert.Equal(t, 0, CalculatePredictionPoints("Storm", completedMatch(24, 12)))
}

func TestCalculatePredictionPoints_Draw(t *testing.T) {
	match := completedMatch(18, 18)
	assert.False(t, IsPredictionCorrect("Broncos", match))
	assert.False(t, IsPredictionCorrect("Storm", match))
	assert.Equal(t, 0, CalculatePredictionPoints("Broncos", match))
	assert.Equal(t, 0, CalculatePredictionPoints("Storm", match))
}

func TestCalculatePredictionPoints_MissingScores(t *testing.T) {
	home := 20
	match := &models.Match{HomeTeam: "Broncos", AwayTeam: "Storm", HomeScore: &home}
	assert.False(t, IsPredictionCorrect("Broncos", match))
	assert.Equal(t, 0, CalculatePredictionPoints("Broncos", match))
}

func TestCalculatePredictionPoints_Idempotent(t *testing.T) {
	match := completedMatch(30, 6)
	first := CalculatePredictionPoints("Broncos", match)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CalculatePredictionPoints("Broncos", match))
	}
}
