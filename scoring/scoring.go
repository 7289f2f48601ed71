// Package scoring contains the pure derivation rules of the score ledger:
// totals, averages, winner determination, leaderboard ordering and the
// late-joiner backfill policy. Lower score is better throughout. Nothing in
// this package touches the database.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/lowcard/uno-tracker/models"
)

// TotalScore sums a player's scores across all rounds. A round without an
// entry for the player contributes 0.
func TotalScore(rounds []*models.Round, playerID string) int {
	total := 0
	for _, round := range rounds {
		for _, s := range round.Scores {
			if s.PlayerID == playerID {
				total += s.Score
			}
		}
	}
	return total
}

// AverageScore is the player's total divided by the round count, never
// dividing by zero.
func AverageScore(rounds []*models.Round, playerID string) float64 {
	n := len(rounds)
	if n == 0 {
		n = 1
	}
	return float64(TotalScore(rounds, playerID)) / float64(n)
}

// Totals computes the per-player sum across all rounds.
func Totals(rounds []*models.Round) map[string]int {
	totals := make(map[string]int)
	for _, round := range rounds {
		for _, s := range round.Scores {
			totals[s.PlayerID] += s.Score
		}
	}
	return totals
}

// Winner picks the participant with the lowest total. Ties are broken by
// join order: joinOrder must list participant IDs ordered by when they
// joined the game, earliest first. Returns false when joinOrder is empty.
func Winner(totals map[string]int, joinOrder []string) (string, int, bool) {
	if len(joinOrder) == 0 {
		return "", 0, false
	}
	winnerID := joinOrder[0]
	best := totals[winnerID]
	for _, id := range joinOrder[1:] {
		if totals[id] < best {
			winnerID = id
			best = totals[id]
		}
	}
	return winnerID, best, true
}

// SortLeaderboard orders players for the global leaderboard: players who
// have never finished a game sort last; the rest ascend by total score,
// with ties broken by more games played.
func SortLeaderboard(players []*models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if (a.GamesPlayed == 0) != (b.GamesPlayed == 0) {
			return a.GamesPlayed > 0
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore < b.TotalScore
		}
		return a.GamesPlayed > b.GamesPlayed
	})
}

// BackfillPolicy decides the score a late joiner receives for a round that
// was played before they joined, given the round's existing scores.
type BackfillPolicy func(existing []int) int

// AverageBackfill assigns the average of the round's existing scores,
// rounded to the integer storage type. A newcomer therefore neither gains
// nor loses ground relative to the players already in the game.
func AverageBackfill(existing []int) int {
	if len(existing) == 0 {
		return 0
	}
	sum := 0
	for _, s := range existing {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(existing))))
}

// ZeroBackfill assigns nothing, leaving the newcomer with the best possible
// start. Kept as an alternative policy; not wired by default.
func ZeroBackfill([]int) int { return 0 }

// MondayFirstIndex converts a Sunday-first weekday number (0 = Sunday, the
// numbering shared by time.Weekday and Postgres EXTRACT(DOW)) to a
// Monday-first bucket index, so Sunday lands in the last bucket (6).
func MondayFirstIndex(dow int) int {
	return (dow + 6) % 7
}

// WeekdayBucket maps a timestamp to its Monday-first weekday index.
func WeekdayBucket(t time.Time) int {
	return MondayFirstIndex(int(t.Weekday()))
}
