package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
	"github.com/lowcard/uno-tracker/scoring"
)

type StatsService interface {
	Leaderboard(ctx context.Context) ([]*models.Player, error)
	PlayerAnalytics(ctx context.Context, playerID string) (*models.PlayerAnalytics, error)
}

type statsService struct {
	playerRepo repositories.PlayerRepository
	statsRepo  repositories.StatsRepository
}

func NewStatsService(playerRepo repositories.PlayerRepository, statsRepo repositories.StatsRepository) StatsService {
	return &statsService{
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
	}
}

// Leaderboard returns all players in ranking order: lower persisted total
// first, players who never finished a game last.
func (s *statsService) Leaderboard(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players for leaderboard: %w", err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	scoring.SortLeaderboard(players)
	return players, nil
}

// PlayerAnalytics aggregates a player's cross-game performance. The four
// component queries are independent, so they run concurrently.
func (s *statsService) PlayerAnalytics(ctx context.Context, playerID string) (*models.PlayerAnalytics, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to resolve player %s: %w", playerID, err)
	}

	var (
		totalGames   int
		gamesWon     int
		roundStats   *repositories.RoundStats
		weeklyTotals map[int]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalGames, err = s.statsRepo.CountGamesPlayed(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		gamesWon, err = s.statsRepo.CountGamesWon(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		roundStats, err = s.statsRepo.GetRoundStats(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		weeklyTotals, err = s.statsRepo.GetWeeklyTotals(gctx, playerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute analytics for player %s: %w", playerID, err)
	}

	analytics := &models.PlayerAnalytics{
		TotalGames:   totalGames,
		TotalRounds:  roundStats.TotalRounds,
		TotalScore:   roundStats.TotalScore,
		AverageScore: roundStats.AverageScore,
	}
	if totalGames > 0 {
		analytics.WinRate = float64(gamesWon) / float64(totalGames)
	}

	// Postgres reports Sunday as day 0; the buckets are Monday-first with
	// Sunday in the last slot.
	for dow, total := range weeklyTotals {
		analytics.WeeklyScores[scoring.MondayFirstIndex(dow)] = total
	}

	return analytics, nil
}
