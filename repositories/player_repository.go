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
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerConflict    = errors.New("player already exists for this user")
	ErrPlayerUserInvalid = errors.New("player user conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByUserID(ctx context.Context, userID string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UpdateName(ctx context.Context, id string, name string) error
	UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error
	ApplyGameResult(ctx context.Context, exec SQLExecutor, playerID string, scoreDelta int, won bool) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, user_id, name, email, avatar_url, total_score, games_played, games_won, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }, p *models.Player) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.AvatarURL,
		&p.TotalScore,
		&p.GamesPlayed,
		&p.GamesWon,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (user_id, name, email, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, total_score, games_played, games_won, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		player.UserID,
		player.Name,
		player.Email,
		player.AvatarURL,
	).Scan(
		&player.ID,
		&player.TotalScore,
		&player.GamesPlayed,
		&player.GamesWon,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrPlayerConflict
			case "23503": // foreign_key_violation
				return ErrPlayerUserInvalid
			}
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player := &models.Player{}
	err := scanPlayer(r.db.QueryRowContext(ctx, query, id), player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %s: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByUserID(ctx context.Context, userID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE user_id = $1`

	player := &models.Player{}
	err := scanPlayer(r.db.QueryRowContext(ctx, query, userID), player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by user id %s: %w", userID, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		if err := scanPlayer(rows, player); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateName(ctx context.Context, id string, name string) error {
	query := `UPDATE players SET name = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update player name: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	query := `UPDATE players SET avatar_url = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update player avatar: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// ApplyGameResult adds a finished game's total onto the player's persisted
// aggregates. Runs inside the game-end transaction.
func (r *postgresPlayerRepository) ApplyGameResult(ctx context.Context, exec SQLExecutor, playerID string, scoreDelta int, won bool) error {
	executor := r.getExecutor(exec)
	wonDelta := 0
	if won {
		wonDelta = 1
	}
	query := `
		UPDATE players
		SET total_score  = total_score + $1,
		    games_played = games_played + 1,
		    games_won    = games_won + $2,
		    updated_at   = now()
		WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, scoreDelta, wonDelta, playerID)
	if err != nil {
		return fmt.Errorf("failed to apply game result for player %s: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
