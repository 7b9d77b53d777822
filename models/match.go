package models

import "time"

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "UPCOMING"
	MatchLive      MatchStatus = "LIVE"
	MatchCompleted MatchStatus = "COMPLETED"
)

func ValidMatchStatus(s MatchStatus) bool {
	return s == MatchUpcoming || s == MatchLive || s == MatchCompleted
}

type MatchHalf string

const (
	FirstHalf  MatchHalf = "FIRST_HALF"
	HalfTime   MatchHalf = "HALF_TIME"
	SecondHalf MatchHalf = "SECOND_HALF"
	FullTime   MatchHalf = "FULL_TIME"
)

func ValidMatchHalf(h MatchHalf) bool {
	return h == FirstHalf || h == HalfTime || h == SecondHalf || h == FullTime
}

// Match is a single fixture. Scores stay nil until play starts; anything that
// scores predictions must treat nil (or equal) scores as "no winner".
// Half and CurrentMinute only mean something while the match is LIVE.
type Match struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	Round         int         `gorm:"index;not null" json:"round"`
	HomeTeam      string      `gorm:"not null" json:"home_team"`
	AwayTeam      string      `gorm:"not null" json:"away_team"`
	HomeTeamLogo  *string     `json:"home_team_logo,omitempty"`
	AwayTeamLogo  *string     `json:"away_team_logo,omitempty"`
	HomeScore     *int        `json:"home_score"`
	AwayScore     *int        `json:"away_score"`
	Status        MatchStatus `gorm:"type:varchar(16);default:'UPCOMING';index" json:"status"`
	Half          *MatchHalf  `gorm:"type:varchar(16)" json:"half,omitempty"`
	CurrentMinute *int        `json:"current_minute,omitempty"`
	KickoffTime   time.Time   `gorm:"not null;index" json:"kickoff_time"`
	LastScoreTime *time.Time  `json:"last_score_time,omitempty"`
	Venue         string      `json:"venue"`
	Season        int         `json:"season"`
	Competition   string      `json:"competition"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// MatchUpdate is the event value produced when an admin changes a match.
// The live relay delivers it to subscribers; producing the value and
// delivering it are deliberately separate concerns.
type MatchUpdate struct {
	MatchID string                 `json:"matchId"`
	Type    string                 `json:"type"` // "score" | "status"
	Data    map[string]interface{} `json:"data"`
}

const (
	MatchUpdateScore  = "score"
	MatchUpdateStatus = "status"
)
