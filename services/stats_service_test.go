package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
)

type fakePlayerRepo struct {
	players map[string]*models.Player
}

func (f *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	panic("not used in test")
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return player, nil
}

func (f *fakePlayerRepo) GetByUserID(ctx context.Context, userID string) (*models.Player, error) {
	panic("not used in test")
}

func (f *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	players := make([]*models.Player, 0, len(f.players))
	for _, p := range f.players {
		players = append(players, p)
	}
	return players, nil
}

func (f *fakePlayerRepo) UpdateName(ctx context.Context, id string, name string) error {
	panic("not used in test")
}

func (f *fakePlayerRepo) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	panic("not used in test")
}

func (f *fakePlayerRepo) ApplyGameResult(ctx context.Context, exec repositories.SQLExecutor, playerID string, scoreDelta int, won bool) error {
	player, ok := f.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.TotalScore += scoreDelta
	player.GamesPlayed++
	if won {
		player.GamesWon++
	}
	return nil
}

type fakeStatsRepo struct {
	gamesPlayed  int
	gamesWon     int
	roundStats   repositories.RoundStats
	weeklyTotals map[int]float64
}

func (f *fakeStatsRepo) CountGamesPlayed(ctx context.Context, playerID string) (int, error) {
	return f.gamesPlayed, nil
}

func (f *fakeStatsRepo) CountGamesWon(ctx context.Context, playerID string) (int, error) {
	return f.gamesWon, nil
}

func (f *fakeStatsRepo) GetRoundStats(ctx context.Context, playerID string) (*repositories.RoundStats, error) {
	stats := f.roundStats
	return &stats, nil
}

func (f *fakeStatsRepo) GetWeeklyTotals(ctx context.Context, playerID string) (map[int]float64, error) {
	return f.weeklyTotals, nil
}

func Test_Leaderboard_RanksPlayers(t *testing.T) {
	playerRepo := &fakePlayerRepo{players: map[string]*models.Player{
		"a": {ID: "a", Name: "Anna", TotalScore: 40, GamesPlayed: 5},
		"b": {ID: "b", Name: "Ben", TotalScore: 25, GamesPlayed: 3},
		"c": {ID: "c", Name: "Cleo", TotalScore: 0, GamesPlayed: 0},
	}}
	svc := NewStatsService(playerRepo, &fakeStatsRepo{})

	players, err := svc.Leaderboard(context.Background())

	require.NoError(t, err)
	require.Len(t, players, 3)
	require.Equal(t, "b", players[0].ID)
	require.Equal(t, "a", players[1].ID)
	// never played, ranked last despite the zero total
	require.Equal(t, "c", players[2].ID)
}

func Test_PlayerAnalytics_ComputesRates(t *testing.T) {
	playerRepo := &fakePlayerRepo{players: map[string]*models.Player{
		"a": {ID: "a", Name: "Anna"},
	}}
	statsRepo := &fakeStatsRepo{
		gamesPlayed: 4,
		gamesWon:    1,
		roundStats:  repositories.RoundStats{TotalRounds: 12, TotalScore: 96, AverageScore: 8},
		weeklyTotals: map[int]float64{
			0: 30, // Sunday in Postgres day-of-week numbering
			1: 20, // Monday
			3: 46, // Wednesday
		},
	}
	svc := NewStatsService(playerRepo, statsRepo)

	analytics, err := svc.PlayerAnalytics(context.Background(), "a")

	require.NoError(t, err)
	require.Equal(t, 4, analytics.TotalGames)
	require.Equal(t, 12, analytics.TotalRounds)
	require.Equal(t, 96, analytics.TotalScore)
	require.InDelta(t, 8.0, analytics.AverageScore, 1e-9)
	require.InDelta(t, 0.25, analytics.WinRate, 1e-9)

	// Monday-first buckets, Sunday last
	require.Equal(t, [7]float64{20, 0, 46, 0, 0, 0, 30}, analytics.WeeklyScores)
}

func Test_PlayerAnalytics_ZeroGames(t *testing.T) {
	playerRepo := &fakePlayerRepo{players: map[string]*models.Player{
		"a": {ID: "a", Name: "Anna"},
	}}
	svc := NewStatsService(playerRepo, &fakeStatsRepo{weeklyTotals: map[int]float64{}})

	analytics, err := svc.PlayerAnalytics(context.Background(), "a")

	require.NoError(t, err)
	require.Zero(t, analytics.WinRate)
	require.Zero(t, analytics.TotalGames)
}

func Test_PlayerAnalytics_UnknownPlayer(t *testing.T) {
	svc := NewStatsService(&fakePlayerRepo{players: map[string]*models.Player{}}, &fakeStatsRepo{})

	_, err := svc.PlayerAnalytics(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}
