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
	ErrScoreConflict      = errors.New("score already recorded for this round and player")
	ErrScoreRoundInvalid  = errors.New("score round conflict or invalid")
	ErrScorePlayerInvalid = errors.New("score player conflict or invalid")
)

type ScoreRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.Score) error
	DeleteByGameAndPlayer(ctx context.Context, exec SQLExecutor, gameID, playerID string) (int64, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO scores (round_id, player_id, score)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	for _, s := range scores {
		err := executor.QueryRowContext(ctx, query,
			s.RoundID,
			s.PlayerID,
			s.Score,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Code {
				case "23505": // unique_violation on (round_id, player_id)
					return ErrScoreConflict
				case "23503": // foreign_key_violation
					if pqErr.Constraint == "scores_round_id_fkey" {
						return ErrScoreRoundInvalid
					}
					return ErrScorePlayerInvalid
				}
			}
			return fmt.Errorf("failed to insert score for player %s in round %s: %w", s.PlayerID, s.RoundID, err)
		}
	}
	return nil
}

// DeleteByGameAndPlayer removes the player's scores across every round of
// the game and reports how many rows went away.
func (r *postgresScoreRepository) DeleteByGameAndPlayer(ctx context.Context, exec SQLExecutor, gameID, playerID string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `
		DELETE FROM scores
		WHERE player_id = $1
		  AND round_id IN (SELECT id FROM rounds WHERE game_id = $2)`

	result, err := executor.ExecContext(ctx, query, playerID, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scores for player %s in game %s: %w", playerID, gameID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}
