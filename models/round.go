package models

import "time"

type RoundStatus string

const (
	RoundStatusPending    RoundStatus = "pending"
	RoundStatusInProgress RoundStatus = "in_progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// Round is one scoring iteration within a game. Round numbers are 1-based
// and gapless within a game.
type Round struct {
	ID          string      `json:"id"`
	GameID      string      `json:"game_id"`
	Status      RoundStatus `json:"status"`
	RoundNumber int         `json:"round_number"`
	WinnerID    *string     `json:"winner_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Scores []*Score `json:"scores,omitempty"`
}

type Score struct {
	ID        string    `json:"id"`
	RoundID   string    `json:"round_id"`
	PlayerID  string    `json:"player_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Player *Player `json:"player,omitempty"`
}
