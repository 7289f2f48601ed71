package models

// PlayerAnalytics aggregates a player's performance across all their games.
// WeeklyScores holds seven Monday-first buckets of score sums grouped by the
// weekday each round was played.
type PlayerAnalytics struct {
	TotalGames   int        `json:"total_games"`
	TotalRounds  int        `json:"total_rounds"`
	TotalScore   int        `json:"total_score"`
	AverageScore float64    `json:"average_score"`
	WinRate      float64    `json:"win_rate"`
	WeeklyScores [7]float64 `json:"weekly_scores"`
}
