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
	ErrGamePlayerConflict      = errors.New("player is already in this game")
	ErrGamePlayerGameInvalid   = errors.New("game player game conflict or invalid")
	ErrGamePlayerPlayerInvalid = errors.New("game player player conflict or invalid")
)

type GamePlayerRepository interface {
	Add(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error
	// ListByGame returns join rows in join order with player records attached.
	ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]*models.GamePlayer, error)
	Remove(ctx context.Context, exec SQLExecutor, gameID, playerID string) (bool, error)
}

type postgresGamePlayerRepository struct {
	db *sql.DB
}

func NewPostgresGamePlayerRepository(db *sql.DB) GamePlayerRepository {
	return &postgresGamePlayerRepository{db: db}
}

func (r *postgresGamePlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGamePlayerRepository) Add(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO game_players (game_id, player_id, is_host)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := executor.QueryRowContext(ctx, query,
		gp.GameID,
		gp.PlayerID,
		gp.IsHost,
	).Scan(&gp.ID, &gp.JoinedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrGamePlayerConflict
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "game_players_game_id_fkey" {
					return ErrGamePlayerGameInvalid
				}
				return ErrGamePlayerPlayerInvalid
			}
		}
		return fmt.Errorf("failed to add player %s to game %s: %w", gp.PlayerID, gp.GameID, err)
	}
	return nil
}

func (r *postgresGamePlayerRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]*models.GamePlayer, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT gp.id, gp.game_id, gp.player_id, gp.is_host, gp.joined_at,
		       p.id, p.user_id, p.name, p.email, p.avatar_url,
		       p.total_score, p.games_played, p.games_won, p.created_at, p.updated_at
		FROM game_players gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id = $1
		ORDER BY gp.joined_at, gp.id`

	rows, err := executor.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var participants []*models.GamePlayer
	for rows.Next() {
		gp := &models.GamePlayer{Player: &models.Player{}}
		if err := rows.Scan(
			&gp.ID,
			&gp.GameID,
			&gp.PlayerID,
			&gp.IsHost,
			&gp.JoinedAt,
			&gp.Player.ID,
			&gp.Player.UserID,
			&gp.Player.Name,
			&gp.Player.Email,
			&gp.Player.AvatarURL,
			&gp.Player.TotalScore,
			&gp.Player.GamesPlayed,
			&gp.Player.GamesWon,
			&gp.Player.CreatedAt,
			&gp.Player.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game player row: %w", err)
		}
		participants = append(participants, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game player rows: %w", err)
	}
	return participants, nil
}

// Remove deletes the join row and reports whether one existed, so callers
// can treat removal of a non-participant as a no-op.
func (r *postgresGamePlayerRepository) Remove(ctx context.Context, exec SQLExecutor, gameID, playerID string) (bool, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM game_players WHERE game_id = $1 AND player_id = $2`

	result, err := executor.ExecContext(ctx, query, gameID, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to remove player %s from game %s: %w", playerID, gameID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}
