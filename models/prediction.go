package models

import "time"

// Prediction is a user's single guess for a single match. IsCorrect is
// tri-state: nil until the match is scored, then true/false stamped exactly
// once by the point calculation. The (UserID, MatchID) pair is unique.
type Prediction struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string    `gorm:"not null;uniqueIndex:idx_predictions_user_match;index" json:"user_id"`
	MatchID         string    `gorm:"not null;uniqueIndex:idx_predictions_user_match;index" json:"match_id"`
	PredictedWinner string    `gorm:"not null" json:"predicted_winner"` // must equal the match's home or away team name
	Points          int       `gorm:"default:0" json:"points"`
	IsCorrect       *bool     `json:"is_correct"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Match Match `json:"match,omitempty" gorm:"foreignKey:MatchID"`
}
