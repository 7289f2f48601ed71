package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lowcard/uno-tracker/models"
)

func makeRound(number int, scores map[string]int) *models.Round {
	round := &models.Round{
		ID:          uuid.NewString(),
		RoundNumber: number,
		Status:      models.RoundStatusCompleted,
	}
	for playerID, value := range scores {
		round.Scores = append(round.Scores, &models.Score{
			ID:       uuid.NewString(),
			RoundID:  round.ID,
			PlayerID: playerID,
			Score:    value,
		})
	}
	return round
}

func Test_TotalScore_SumsAcrossRounds(t *testing.T) {
	rounds := []*models.Round{
		makeRound(1, map[string]int{"a": 5, "b": 10}),
		makeRound(2, map[string]int{"a": 3, "b": 2}),
	}

	require.Equal(t, 8, TotalScore(rounds, "a"))
	require.Equal(t, 12, TotalScore(rounds, "b"))
	require.Equal(t, 0, TotalScore(rounds, "missing"))
}

func Test_TotalScore_HandlesNegativeAndZero(t *testing.T) {
	rounds := []*models.Round{
		makeRound(1, map[string]int{"a": -5}),
		makeRound(2, map[string]int{"a": 0}),
		makeRound(3, map[string]int{"a": 2}),
	}

	require.Equal(t, -3, TotalScore(rounds, "a"))
}

func Test_Totals_ConservesGameSum(t *testing.T) {
	rounds := []*models.Round{
		makeRound(1, map[string]int{"a": 5, "b": 10, "c": 7}),
		makeRound(2, map[string]int{"a": 3, "b": 2, "c": 1}),
	}

	totals := Totals(rounds)

	sumOfTotals := 0
	for _, v := range totals {
		sumOfTotals += v
	}
	sumOfScores := 0
	for _, r := range rounds {
		for _, s := range r.Scores {
			sumOfScores += s.Score
		}
	}
	require.Equal(t, sumOfScores, sumOfTotals)
}

func Test_AverageScore_AvoidsDivisionByZero(t *testing.T) {
	require.Equal(t, 0.0, AverageScore(nil, "a"))

	rounds := []*models.Round{
		makeRound(1, map[string]int{"a": 5}),
		makeRound(2, map[string]int{"a": 10}),
	}
	require.InDelta(t, 7.5, AverageScore(rounds, "a"), 1e-9)
}

func Test_Winner_LowestTotalWins(t *testing.T) {
	totals := map[string]int{"a": 8, "b": 12}

	winnerID, total, ok := Winner(totals, []string{"a", "b"})

	require.True(t, ok)
	require.Equal(t, "a", winnerID)
	require.Equal(t, 8, total)
}

func Test_Winner_TieGoesToEarliestJoiner(t *testing.T) {
	totals := map[string]int{"a": 10, "b": 10, "c": 10}

	winnerID, _, ok := Winner(totals, []string{"b", "c", "a"})

	require.True(t, ok)
	require.Equal(t, "b", winnerID)
}

func Test_Winner_NoParticipants(t *testing.T) {
	_, _, ok := Winner(map[string]int{}, nil)
	require.False(t, ok)
}

func Test_SortLeaderboard_ZeroGamePlayersSortLast(t *testing.T) {
	players := []*models.Player{
		{ID: "fresh", TotalScore: 0, GamesPlayed: 0},
		{ID: "heavy", TotalScore: 500, GamesPlayed: 20},
		{ID: "light", TotalScore: 12, GamesPlayed: 2},
	}

	SortLeaderboard(players)

	require.Equal(t, "light", players[0].ID)
	require.Equal(t, "heavy", players[1].ID)
	require.Equal(t, "fresh", players[2].ID)
}

func Test_SortLeaderboard_TiesBrokenByGamesPlayed(t *testing.T) {
	players := []*models.Player{
		{ID: "few", TotalScore: 30, GamesPlayed: 3},
		{ID: "many", TotalScore: 30, GamesPlayed: 9},
	}

	SortLeaderboard(players)

	require.Equal(t, "many", players[0].ID)
	require.Equal(t, "few", players[1].ID)
}

func Test_AverageBackfill_RoundsToInteger(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"rounds half up", []int{5, 10}, 8},
		{"exact average", []int{4, 6}, 5},
		{"single score", []int{7}, 7},
		{"empty round", nil, 0},
		{"negative scores", []int{-4, -5}, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AverageBackfill(tt.existing))
		})
	}
}

func Test_WeekdayBucket_MondayFirstSundayLast(t *testing.T) {
	monday := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())
	require.Equal(t, 0, WeekdayBucket(monday))

	sunday := time.Date(2024, time.January, 7, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())
	require.Equal(t, 6, WeekdayBucket(sunday))

	wednesday := time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 2, WeekdayBucket(wednesday))
}
