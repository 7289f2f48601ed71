package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/lowcard/uno-tracker/models"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameHostInvalid = errors.New("game host conflict or invalid")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	// GetForUpdate locks the game row for the duration of the surrounding
	// transaction, serializing round-number assignment and game-end.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error)
	SetFinished(ctx context.Context, exec SQLExecutor, id string, winnerID string) error
	Delete(ctx context.Context, id string) error
	ListSummaries(ctx context.Context) ([]*models.GameSummary, error)
	ListRecentEntries(ctx context.Context, limit int) ([]*models.RecentGameEntry, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO games (host_id)
		VALUES ($1)
		RETURNING id, status, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, game.HostID).Scan(
		&game.ID,
		&game.Status,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrGameHostInvalid
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func scanGame(row interface{ Scan(...interface{}) error }, g *models.Game) error {
	return row.Scan(
		&g.ID,
		&g.HostID,
		&g.Status,
		&g.WinnerID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `
		SELECT id, host_id, status, winner_id, created_at, updated_at
		FROM games
		WHERE id = $1`

	game := &models.Game{}
	if err := scanGame(r.db.QueryRowContext(ctx, query, id), game); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %s: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Game, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, host_id, status, winner_id, created_at, updated_at
		FROM games
		WHERE id = $1
		FOR UPDATE`

	game := &models.Game{}
	if err := scanGame(executor.QueryRowContext(ctx, query, id), game); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to lock game %s: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) SetFinished(ctx context.Context, exec SQLExecutor, id string, winnerID string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE games
		SET status = 'finished', winner_id = $1, updated_at = now()
		WHERE id = $2 AND status = 'active'`

	result, err := executor.ExecContext(ctx, query, winnerID, id)
	if err != nil {
		return fmt.Errorf("failed to finish game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) ListSummaries(ctx context.Context) ([]*models.GameSummary, error) {
	query := `
		SELECT g.id, g.status, g.created_at,
		       h.name, h.avatar_url,
		       COUNT(DISTINCT gp.id),
		       MAX(r.round_number)
		FROM games g
		JOIN players h ON h.id = g.host_id
		LEFT JOIN game_players gp ON gp.game_id = g.id
		LEFT JOIN rounds r ON r.game_id = g.id
		GROUP BY g.id, h.name, h.avatar_url
		ORDER BY g.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list game summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.GameSummary
	for rows.Next() {
		s := &models.GameSummary{}
		if err := rows.Scan(
			&s.ID,
			&s.Status,
			&s.CreatedAt,
			&s.HostName,
			&s.HostAvatar,
			&s.PlayerCount,
			&s.CurrentRound,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game summary rows: %w", err)
	}
	return summaries, nil
}

func (r *postgresGameRepository) ListRecentEntries(ctx context.Context, limit int) ([]*models.RecentGameEntry, error) {
	// The limit applies to games, not to player rows, so the last game in
	// the result is never truncated.
	query := `
		SELECT g.id, g.status, g.created_at,
		       p.id, p.name, p.avatar_url,
		       COALESCE(SUM(s.score), 0),
		       COALESCE(AVG(s.score), 0)
		FROM (
			SELECT id, status, created_at
			FROM games
			ORDER BY created_at DESC
			LIMIT $1
		) g
		JOIN game_players gp ON gp.game_id = g.id
		JOIN players p ON p.id = gp.player_id
		LEFT JOIN rounds r ON r.game_id = g.id
		LEFT JOIN scores s ON s.round_id = r.id AND s.player_id = p.id
		GROUP BY g.id, g.status, g.created_at, p.id, p.name, p.avatar_url
		ORDER BY g.created_at DESC, p.name`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}
	defer rows.Close()

	var entries []*models.RecentGameEntry
	for rows.Next() {
		e := &models.RecentGameEntry{}
		if err := rows.Scan(
			&e.GameID,
			&e.Status,
			&e.CreatedAt,
			&e.PlayerID,
			&e.PlayerName,
			&e.PlayerAvatar,
			&e.TotalScore,
			&e.AvgScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recent game row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent game rows: %w", err)
	}
	return entries, nil
}
