package models

import "time"

type GameStatus string

const (
	GameStatusActive   GameStatus = "active"
	GameStatusFinished GameStatus = "finished"
)

type Game struct {
	ID        string     `json:"id"`
	HostID    string     `json:"host_id"`
	Status    GameStatus `json:"status"`
	WinnerID  *string    `json:"winner_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GamePlayer is the join row between a game and a participating player.
type GamePlayer struct {
	ID       string    `json:"id"`
	GameID   string    `json:"game_id"`
	PlayerID string    `json:"player_id"`
	IsHost   int       `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`

	Player *Player `json:"player,omitempty"`
}

// GameDetails is the fully assembled view of a game: participants in join
// order plus rounds (ordered by round number) with their scores.
type GameDetails struct {
	Game
	Players []*GamePlayer `json:"players"`
	Rounds  []*Round      `json:"rounds"`
}

// GameSummary is a single row of the game history list.
type GameSummary struct {
	ID           string     `json:"id"`
	Status       GameStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	HostName     string     `json:"host_name"`
	HostAvatar   *string    `json:"host_avatar,omitempty"`
	PlayerCount  int        `json:"player_count"`
	CurrentRound *int       `json:"current_round,omitempty"`
}

// RecentGameEntry is one player's line in a recent game: their total and
// average across the game's rounds.
type RecentGameEntry struct {
	GameID       string     `json:"game_id"`
	Status       GameStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	PlayerID     string     `json:"player_id"`
	PlayerName   string     `json:"player_name"`
	PlayerAvatar *string    `json:"player_avatar,omitempty"`
	TotalScore   int        `json:"total_score"`
	AvgScore     float64    `json:"avg_score"`
}
