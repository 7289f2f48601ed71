package models

import "time"

// Player is the scoring identity of a user. The three stat fields are
// persisted aggregates, updated only when a game is finished. Lower
// TotalScore means a better standing.
type Player struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	TotalScore  int       `json:"total_score"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
