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
	ErrRoundNotFound       = errors.New("round not found")
	ErrRoundNumberConflict = errors.New("round number already taken for this game")
	ErrRoundGameInvalid    = errors.New("round game conflict or invalid")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	// NextRoundNumber computes max(round_number)+1 for the game, 1 when the
	// game has no rounds. Callers must hold the game row lock to keep the
	// number unique under concurrent submissions.
	NextRoundNumber(ctx context.Context, exec SQLExecutor, gameID string) (int, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]*models.Round, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (game_id, status, round_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	if round.Status == "" {
		round.Status = models.RoundStatusCompleted
	}

	err := executor.QueryRowContext(ctx, query,
		round.GameID,
		round.Status,
		round.RoundNumber,
	).Scan(&round.ID, &round.CreatedAt, &round.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation on (game_id, round_number)
				return ErrRoundNumberConflict
			case "23503": // foreign_key_violation
				return ErrRoundGameInvalid
			}
		}
		return fmt.Errorf("failed to create round %d for game %s: %w", round.RoundNumber, round.GameID, err)
	}
	return nil
}

func (r *postgresRoundRepository) NextRoundNumber(ctx context.Context, exec SQLExecutor, gameID string) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COALESCE(MAX(round_number), 0) + 1 FROM rounds WHERE game_id = $1`

	var next int
	if err := executor.QueryRowContext(ctx, query, gameID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next round number for game %s: %w", gameID, err)
	}
	return next, nil
}

// ListByGame returns the game's rounds ordered by round number, each with
// its scores attached.
func (r *postgresRoundRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID string) ([]*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT r.id, r.game_id, r.status, r.round_number, r.winner_id, r.created_at, r.updated_at,
		       s.id, s.round_id, s.player_id, s.score, s.created_at, s.updated_at
		FROM rounds r
		LEFT JOIN scores s ON s.round_id = r.id
		WHERE r.game_id = $1
		ORDER BY r.round_number, s.created_at, s.id`

	rows, err := executor.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var (
		result  []*models.Round
		current *models.Round
	)
	for rows.Next() {
		round := &models.Round{}
		var (
			scoreID        sql.NullString
			scoreRoundID   sql.NullString
			scorePlayerID  sql.NullString
			scoreValue     sql.NullInt64
			scoreCreatedAt sql.NullTime
			scoreUpdatedAt sql.NullTime
		)
		if err := rows.Scan(
			&round.ID,
			&round.GameID,
			&round.Status,
			&round.RoundNumber,
			&round.WinnerID,
			&round.CreatedAt,
			&round.UpdatedAt,
			&scoreID,
			&scoreRoundID,
			&scorePlayerID,
			&scoreValue,
			&scoreCreatedAt,
			&scoreUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}

		if current == nil || current.ID != round.ID {
			current = round
			result = append(result, current)
		}
		if scoreID.Valid {
			current.Scores = append(current.Scores, &models.Score{
				ID:        scoreID.String,
				RoundID:   scoreRoundID.String,
				PlayerID:  scorePlayerID.String,
				Score:     int(scoreValue.Int64),
				CreatedAt: scoreCreatedAt.Time,
				UpdatedAt: scoreUpdatedAt.Time,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round rows: %w", err)
	}
	return result, nil
}
