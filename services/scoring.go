package services

import (
	"github.com/stephancmorris/league-fan-hub/models"
)

// Points awarded for correct predictions.
const (
	PointsCorrectWinner  = 10
	PointsMarginBonus    = 5 // extra for a blowout win
	MarginBonusThreshold = 12
)

// MatchWinner returns the winning team name, or "" when there is no winner
// (missing scores or a draw).
func MatchWinner(match *models.Match) string {
	if match.HomeScore == nil || match.AwayScore == nil {
		return ""
	}
	if *match.HomeScore == *match.AwayScore {
		return ""
	}
	if *match.HomeScore > *match.AwayScore {
		return match.HomeTeam
	}
	return match.AwayTeam
}

// IsPredictionCorrect reports whether predictedWinner names the actual
// winner. Draws and matches without final scores are never correct,
// whatever was predicted.
func IsPredictionCorrect(predictedWinner string, match *models.Match) bool {
	winner := MatchWinner(match)
	return winner != "" && predictedWinner == winner
}

// CalculatePredictionPoints returns the points a prediction earns: 10 for
// picking the winner, plus 5 when the winning margin is 12 or more.
// Incorrect predictions earn 0. Pure function — an admin retrying the point
// calculation gets the same stamps.
func CalculatePredictionPoints(predictedWinner string, match *models.Match) int {
	if !IsPredictionCorrect(predictedWinner, match) {
		return 0
	}

	points := PointsCorrectWinner

	margin := *match.HomeScore - *match.AwayScore
	if margin < 0 {
		margin = -margin
	}
	if margin >= MarginBonusThreshold {
		points += PointsMarginBonus
	}

	return points
}
