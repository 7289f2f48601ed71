package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lowcard/uno-tracker/live"
	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
	"github.com/lowcard/uno-tracker/scoring"
)

// GameEventBroadcaster is the slice of the live hub the game service needs.
type GameEventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type GameService interface {
	CreateGame(ctx context.Context, hostID string, playerIDs []string) (*models.GameDetails, error)
	GetGameDetails(ctx context.Context, gameID string) (*models.GameDetails, error)
	ListGames(ctx context.Context) ([]*models.GameSummary, error)
	ListRecentGames(ctx context.Context, limit int) ([]*models.RecentGameEntry, error)
	AddRound(ctx context.Context, gameID string, scoresByPlayer map[string]int) (*models.Round, error)
	AddParticipant(ctx context.Context, gameID, playerID string) (*models.GameDetails, error)
	RemoveParticipant(ctx context.Context, gameID, playerID string) (*models.GameDetails, error)
	EndGame(ctx context.Context, gameID string) (*models.GameDetails, error)
	DiscardGame(ctx context.Context, gameID string) error
}

type gameService struct {
	gameRepo       repositories.GameRepository
	gamePlayerRepo repositories.GamePlayerRepository
	roundRepo      repositories.RoundRepository
	scoreRepo      repositories.ScoreRepository
	playerRepo     repositories.PlayerRepository
	backfill       scoring.BackfillPolicy
	hub            GameEventBroadcaster
	logger         *slog.Logger

	// runTx wraps every mutation; swappable so the transitions can be
	// exercised without a live database.
	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func NewGameService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	gamePlayerRepo repositories.GamePlayerRepository,
	roundRepo repositories.RoundRepository,
	scoreRepo repositories.ScoreRepository,
	playerRepo repositories.PlayerRepository,
	backfill scoring.BackfillPolicy,
	hub GameEventBroadcaster,
	logger *slog.Logger,
) GameService {
	return &gameService{
		gameRepo:       gameRepo,
		gamePlayerRepo: gamePlayerRepo,
		roundRepo:      roundRepo,
		scoreRepo:      scoreRepo,
		playerRepo:     playerRepo,
		backfill:       backfill,
		hub:            hub,
		logger:         logger,
		runTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return runInTx(ctx, db, fn)
		},
	}
}

func (s *gameService) CreateGame(ctx context.Context, hostID string, playerIDs []string) (*models.GameDetails, error) {
	distinct := make([]string, 0, len(playerIDs))
	seen := make(map[string]bool, len(playerIDs))
	hostIncluded := false
	for _, id := range playerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		distinct = append(distinct, id)
		if id == hostID {
			hostIncluded = true
		}
	}

	if len(distinct) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if !hostIncluded {
		return nil, ErrHostNotParticipant
	}

	game := &models.Game{HostID: hostID}
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.gameRepo.Create(ctx, tx, game); err != nil {
			if errors.Is(err, repositories.ErrGameHostInvalid) {
				return ErrPlayerNotFound
			}
			return err
		}
		for _, playerID := range distinct {
			isHost := 0
			if playerID == hostID {
				isHost = 1
			}
			gp := &models.GamePlayer{GameID: game.ID, PlayerID: playerID, IsHost: isHost}
			if err := s.gamePlayerRepo.Add(ctx, tx, gp); err != nil {
				if errors.Is(err, repositories.ErrGamePlayerPlayerInvalid) {
					return ErrPlayerNotFound
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetGameDetails(ctx, game.ID)
}

func (s *gameService) GetGameDetails(ctx context.Context, gameID string) (*models.GameDetails, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	participants, err := s.gamePlayerRepo.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.roundRepo.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}

	return &models.GameDetails{Game: *game, Players: participants, Rounds: rounds}, nil
}

func (s *gameService) ListGames(ctx context.Context) ([]*models.GameSummary, error) {
	summaries, err := s.gameRepo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		return []*models.GameSummary{}, nil
	}
	return summaries, nil
}

func (s *gameService) ListRecentGames(ctx context.Context, limit int) ([]*models.RecentGameEntry, error) {
	if limit <= 0 {
		limit = 3
	}
	entries, err := s.gameRepo.ListRecentEntries(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return []*models.RecentGameEntry{}, nil
	}
	return entries, nil
}

// AddRound records one scoring iteration. Every current participant must
// have an explicit entry in scoresByPlayer; omissions are rejected instead
// of being silently zero-filled, so a forgotten entry never masquerades as
// a scored zero.
func (s *gameService) AddRound(ctx context.Context, gameID string, scoresByPlayer map[string]int) (*models.Round, error) {
	round := &models.Round{GameID: gameID}

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		game, err := s.lockActiveGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		participants, err := s.gamePlayerRepo.ListByGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		participantIDs := make(map[string]bool, len(participants))
		for _, gp := range participants {
			participantIDs[gp.PlayerID] = true
			if _, ok := scoresByPlayer[gp.PlayerID]; !ok {
				return fmt.Errorf("%w: missing score for player %s", ErrScoresIncomplete, gp.PlayerID)
			}
		}
		for playerID := range scoresByPlayer {
			if !participantIDs[playerID] {
				return fmt.Errorf("%w: player %s", ErrScoreUnknownPlayer, playerID)
			}
		}

		next, err := s.roundRepo.NextRoundNumber(ctx, tx, game.ID)
		if err != nil {
			return err
		}
		round.RoundNumber = next
		if err := s.roundRepo.Create(ctx, tx, round); err != nil {
			if errors.Is(err, repositories.ErrRoundNumberConflict) {
				return ErrRoundConflict
			}
			return err
		}

		scores := make([]*models.Score, 0, len(participants))
		for _, gp := range participants {
			scores = append(scores, &models.Score{
				RoundID:  round.ID,
				PlayerID: gp.PlayerID,
				Score:    scoresByPlayer[gp.PlayerID],
			})
		}
		if err := s.scoreRepo.BatchCreate(ctx, tx, scores); err != nil {
			return err
		}
		round.Scores = scores
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, gameID, live.EventRoundAdded)
	return round, nil
}

// AddParticipant joins a player to an in-progress game. Their scores for
// already played rounds are backfilled by the configured policy, so a
// newcomer does not start with an unfairly low cumulative score in a
// lower-is-better game.
func (s *gameService) AddParticipant(ctx context.Context, gameID, playerID string) (*models.GameDetails, error) {
	joined := false

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		game, err := s.lockActiveGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		gp := &models.GamePlayer{GameID: game.ID, PlayerID: playerID}
		if err := s.gamePlayerRepo.Add(ctx, tx, gp); err != nil {
			if errors.Is(err, repositories.ErrGamePlayerConflict) {
				return nil // already in the game
			}
			if errors.Is(err, repositories.ErrGamePlayerPlayerInvalid) {
				return ErrPlayerNotFound
			}
			return err
		}
		joined = true

		rounds, err := s.roundRepo.ListByGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}
		if len(rounds) == 0 {
			return nil
		}

		backfilled := make([]*models.Score, 0, len(rounds))
		for _, round := range rounds {
			existing := make([]int, 0, len(round.Scores))
			for _, sc := range round.Scores {
				existing = append(existing, sc.Score)
			}
			backfilled = append(backfilled, &models.Score{
				RoundID:  round.ID,
				PlayerID: playerID,
				Score:    s.backfill(existing),
			})
		}
		return s.scoreRepo.BatchCreate(ctx, tx, backfilled)
	})
	if err != nil {
		return nil, err
	}

	if joined {
		s.broadcast(ctx, gameID, live.EventPlayerJoined)
	}
	return s.GetGameDetails(ctx, gameID)
}

// RemoveParticipant drops a player from the game along with all of their
// scores in it. Removing a player who is not in the game is a no-op.
func (s *gameService) RemoveParticipant(ctx context.Context, gameID, playerID string) (*models.GameDetails, error) {
	removed := false

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		game, err := s.lockActiveGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if _, err := s.scoreRepo.DeleteByGameAndPlayer(ctx, tx, game.ID, playerID); err != nil {
			return err
		}
		removed, err = s.gamePlayerRepo.Remove(ctx, tx, game.ID, playerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.broadcast(ctx, gameID, live.EventPlayerLeft)
	}
	return s.GetGameDetails(ctx, gameID)
}

// EndGame finishes the game exactly once: it determines the winner (lowest
// total, ties broken by earliest join), marks the game finished and folds
// each participant's game total into their persisted aggregates, all in one
// transaction.
func (s *gameService) EndGame(ctx context.Context, gameID string) (*models.GameDetails, error) {
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		game, err := s.gameRepo.GetForUpdate(ctx, tx, gameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if game.Status == models.GameStatusFinished {
			return ErrGameAlreadyFinished
		}

		rounds, err := s.roundRepo.ListByGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}
		if len(rounds) == 0 {
			return ErrGameHasNoRounds
		}

		participants, err := s.gamePlayerRepo.ListByGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}
		joinOrder := make([]string, 0, len(participants))
		for _, gp := range participants {
			joinOrder = append(joinOrder, gp.PlayerID)
		}

		totals := scoring.Totals(rounds)
		winnerID, winnerTotal, ok := scoring.Winner(totals, joinOrder)
		if !ok {
			return fmt.Errorf("game %s has rounds but no participants", game.ID)
		}

		if err := s.gameRepo.SetFinished(ctx, tx, game.ID, winnerID); err != nil {
			return err
		}
		for _, playerID := range joinOrder {
			if err := s.playerRepo.ApplyGameResult(ctx, tx, playerID, totals[playerID], playerID == winnerID); err != nil {
				return err
			}
		}

		s.logger.Info("game finished",
			slog.String("game_id", game.ID),
			slog.String("winner_id", winnerID),
			slog.Int("winner_total", winnerTotal),
			slog.Int("rounds", len(rounds)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, gameID, live.EventGameFinished)
	return s.GetGameDetails(ctx, gameID)
}

// DiscardGame hard-deletes the game; rounds and scores go with it via
// cascades and no player aggregates are touched.
func (s *gameService) DiscardGame(ctx context.Context, gameID string) error {
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	return nil
}

func (s *gameService) lockActiveGame(ctx context.Context, tx *sql.Tx, gameID string) (*models.Game, error) {
	game, err := s.gameRepo.GetForUpdate(ctx, tx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.Status != models.GameStatusActive {
		return nil, ErrGameNotActive
	}
	return game, nil
}

// broadcast publishes the fresh game state to the game's room after a
// committed mutation. Failures only cost the notification, never the write.
func (s *gameService) broadcast(ctx context.Context, gameID string, eventType string) {
	details, err := s.GetGameDetails(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return
		}
		s.logger.Error("failed to load game details for broadcast",
			slog.String("game_id", gameID),
			slog.Any("error", err),
		)
		return
	}
	room := live.GameRoom(gameID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    eventType,
		Payload: details,
		RoomID:  room,
	})
}
