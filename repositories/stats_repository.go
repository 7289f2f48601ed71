package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// RoundStats are a player's raw aggregates over every score row they own.
type RoundStats struct {
	TotalRounds  int
	TotalScore   int
	AverageScore float64
}

type StatsRepository interface {
	CountGamesPlayed(ctx context.Context, playerID string) (int, error)
	CountGamesWon(ctx context.Context, playerID string) (int, error)
	GetRoundStats(ctx context.Context, playerID string) (*RoundStats, error)
	// GetWeeklyTotals sums the player's scores grouped by the Postgres
	// day-of-week (0 = Sunday) of the round's creation time.
	GetWeeklyTotals(ctx context.Context, playerID string) (map[int]float64, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) CountGamesPlayed(ctx context.Context, playerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_players WHERE player_id = $1`, playerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games for player %s: %w", playerID, err)
	}
	return count, nil
}

func (r *postgresStatsRepository) CountGamesWon(ctx context.Context, playerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE winner_id = $1`, playerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wins for player %s: %w", playerID, err)
	}
	return count, nil
}

func (r *postgresStatsRepository) GetRoundStats(ctx context.Context, playerID string) (*RoundStats, error) {
	query := `
		SELECT COUNT(round_id), COALESCE(SUM(score), 0), COALESCE(AVG(score), 0)
		FROM scores
		WHERE player_id = $1`

	stats := &RoundStats{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&stats.TotalRounds,
		&stats.TotalScore,
		&stats.AverageScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute round stats for player %s: %w", playerID, err)
	}
	return stats, nil
}

func (r *postgresStatsRepository) GetWeeklyTotals(ctx context.Context, playerID string) (map[int]float64, error) {
	query := `
		SELECT CAST(EXTRACT(DOW FROM r.created_at) AS int), COALESCE(SUM(s.score), 0)
		FROM scores s
		JOIN rounds r ON r.id = s.round_id
		WHERE s.player_id = $1
		GROUP BY 1`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekly totals for player %s: %w", playerID, err)
	}
	defer rows.Close()

	totals := make(map[int]float64)
	for rows.Next() {
		var (
			dow   int
			total float64
		)
		if err := rows.Scan(&dow, &total); err != nil {
			return nil, fmt.Errorf("failed to scan weekly total row: %w", err)
		}
		totals[dow] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly total rows: %w", err)
	}
	return totals, nil
}
