package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/repositories"
	"github.com/lowcard/uno-tracker/scoring"
)

type fakeGameRepo struct {
	games   map[string]*models.Game
	deleted []string
	nextID  int
}

func (f *fakeGameRepo) Create(ctx context.Context, exec repositories.SQLExecutor, game *models.Game) error {
	f.nextID++
	game.ID = fmt.Sprintf("game-%d", f.nextID)
	game.Status = models.GameStatusActive
	game.CreatedAt = time.Now()
	game.UpdatedAt = game.CreatedAt
	f.games[game.ID] = game
	return nil
}

func (f *fakeGameRepo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return game, nil
}

func (f *fakeGameRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Game, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeGameRepo) SetFinished(ctx context.Context, exec repositories.SQLExecutor, id string, winnerID string) error {
	game, ok := f.games[id]
	if !ok || game.Status != models.GameStatusActive {
		return repositories.ErrGameNotFound
	}
	winner := winnerID
	game.Status = models.GameStatusFinished
	game.WinnerID = &winner
	return nil
}

func (f *fakeGameRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(f.games, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeGameRepo) ListSummaries(ctx context.Context) ([]*models.GameSummary, error) {
	return nil, nil
}

func (f *fakeGameRepo) ListRecentEntries(ctx context.Context, limit int) ([]*models.RecentGameEntry, error) {
	return nil, nil
}

type fakeGamePlayerRepo struct {
	byGame map[string][]*models.GamePlayer
}

func (f *fakeGamePlayerRepo) Add(ctx context.Context, exec repositories.SQLExecutor, gp *models.GamePlayer) error {
	for _, existing := range f.byGame[gp.GameID] {
		if existing.PlayerID == gp.PlayerID {
			return repositories.ErrGamePlayerConflict
		}
	}
	gp.ID = fmt.Sprintf("join-%s-%s", gp.GameID, gp.PlayerID)
	// monotonically increasing join times keep the join order deterministic
	gp.JoinedAt = time.Unix(int64(len(f.byGame[gp.GameID])), 0)
	f.byGame[gp.GameID] = append(f.byGame[gp.GameID], gp)
	return nil
}

func (f *fakeGamePlayerRepo) ListByGame(ctx context.Context, exec repositories.SQLExecutor, gameID string) ([]*models.GamePlayer, error) {
	return f.byGame[gameID], nil
}

func (f *fakeGamePlayerRepo) Remove(ctx context.Context, exec repositories.SQLExecutor, gameID, playerID string) (bool, error) {
	joins := f.byGame[gameID]
	for i, gp := range joins {
		if gp.PlayerID == playerID {
			f.byGame[gameID] = append(joins[:i:i], joins[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeRoundRepo struct {
	byGame map[string][]*models.Round
	nextID int
}

func (f *fakeRoundRepo) Create(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	for _, existing := range f.byGame[round.GameID] {
		if existing.RoundNumber == round.RoundNumber {
			return repositories.ErrRoundNumberConflict
		}
	}
	f.nextID++
	round.ID = fmt.Sprintf("round-%d", f.nextID)
	round.Status = models.RoundStatusCompleted
	round.CreatedAt = time.Now()
	f.byGame[round.GameID] = append(f.byGame[round.GameID], round)
	return nil
}

func (f *fakeRoundRepo) NextRoundNumber(ctx context.Context, exec repositories.SQLExecutor, gameID string) (int, error) {
	max := 0
	for _, r := range f.byGame[gameID] {
		if r.RoundNumber > max {
			max = r.RoundNumber
		}
	}
	return max + 1, nil
}

func (f *fakeRoundRepo) ListByGame(ctx context.Context, exec repositories.SQLExecutor, gameID string) ([]*models.Round, error) {
	return f.byGame[gameID], nil
}

func (f *fakeRoundRepo) find(roundID string) *models.Round {
	for _, rounds := range f.byGame {
		for _, r := range rounds {
			if r.ID == roundID {
				return r
			}
		}
	}
	return nil
}

type fakeScoreRepo struct {
	rounds *fakeRoundRepo
}

func (f *fakeScoreRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, scores []*models.Score) error {
	for _, s := range scores {
		round := f.rounds.find(s.RoundID)
		if round == nil {
			return repositories.ErrScoreRoundInvalid
		}
		for _, existing := range round.Scores {
			if existing.PlayerID == s.PlayerID {
				return repositories.ErrScoreConflict
			}
		}
		s.ID = fmt.Sprintf("score-%s-%s", s.RoundID, s.PlayerID)
		round.Scores = append(round.Scores, s)
	}
	return nil
}

func (f *fakeScoreRepo) DeleteByGameAndPlayer(ctx context.Context, exec repositories.SQLExecutor, gameID, playerID string) (int64, error) {
	var deleted int64
	for _, round := range f.rounds.byGame[gameID] {
		kept := round.Scores[:0]
		for _, s := range round.Scores {
			if s.PlayerID == playerID {
				deleted++
				continue
			}
			kept = append(kept, s)
		}
		round.Scores = kept
	}
	return deleted, nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToRoom(roomID string, message interface{}) {}

type gameFixture struct {
	games   *fakeGameRepo
	joins   *fakeGamePlayerRepo
	rounds  *fakeRoundRepo
	players *fakePlayerRepo
	svc     *gameService
}

func newGameFixture() *gameFixture {
	games := &fakeGameRepo{games: map[string]*models.Game{}}
	joins := &fakeGamePlayerRepo{byGame: map[string][]*models.GamePlayer{}}
	rounds := &fakeRoundRepo{byGame: map[string][]*models.Round{}}
	players := &fakePlayerRepo{players: map[string]*models.Player{}}

	svc := &gameService{
		gameRepo:       games,
		gamePlayerRepo: joins,
		roundRepo:      rounds,
		scoreRepo:      &fakeScoreRepo{rounds: rounds},
		playerRepo:     players,
		backfill:       scoring.AverageBackfill,
		hub:            noopBroadcaster{},
		logger:         slog.Default(),
		runTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return fn(nil)
		},
	}
	return &gameFixture{games: games, joins: joins, rounds: rounds, players: players, svc: svc}
}

// seedGame creates an active game with the given participants, first one
// hosting.
func (f *gameFixture) seedGame(t *testing.T, playerIDs ...string) string {
	t.Helper()
	for _, id := range playerIDs {
		f.players.players[id] = &models.Player{ID: id, Name: id}
	}
	details, err := f.svc.CreateGame(context.Background(), playerIDs[0], playerIDs)
	require.NoError(t, err)
	return details.ID
}

func Test_CreateGame_RequiresTwoDistinctPlayers(t *testing.T) {
	svc := newGameFixture().svc

	_, err := svc.CreateGame(context.Background(), "host", []string{"host"})
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	// duplicates collapse to one distinct player
	_, err = svc.CreateGame(context.Background(), "host", []string{"host", "host", "host"})
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = svc.CreateGame(context.Background(), "host", nil)
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func Test_CreateGame_RequiresHostAmongPlayers(t *testing.T) {
	svc := newGameFixture().svc

	_, err := svc.CreateGame(context.Background(), "host", []string{"a", "b"})
	require.ErrorIs(t, err, ErrHostNotParticipant)
}

func Test_CreateGame_PersistsGameWithJoinRows(t *testing.T) {
	f := newGameFixture()

	details, err := f.svc.CreateGame(context.Background(), "a", []string{"a", "b"})

	require.NoError(t, err)
	require.Equal(t, models.GameStatusActive, details.Status)
	require.Equal(t, "a", details.HostID)
	require.Len(t, details.Players, 2)
	require.Equal(t, 1, details.Players[0].IsHost)
	require.Equal(t, 0, details.Players[1].IsHost)
	require.Empty(t, details.Rounds)
}

func Test_AddRound_AssignsSequentialNumbers(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")

	first, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)
	second, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 3, "b": 2})
	require.NoError(t, err)

	require.Equal(t, 1, first.RoundNumber)
	require.Equal(t, 2, second.RoundNumber)
	require.Len(t, f.rounds.byGame[gameID], 2)

	require.Equal(t, 8, scoring.TotalScore(f.rounds.byGame[gameID], "a"))
	require.Equal(t, 12, scoring.TotalScore(f.rounds.byGame[gameID], "b"))
}

func Test_AddRound_RejectsMissingScores(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")

	// "b" has no entry; the omission must not become a silent zero
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5})

	require.ErrorIs(t, err, ErrScoresIncomplete)
	require.Empty(t, f.rounds.byGame[gameID])
}

func Test_AddRound_RejectsUnknownPlayer(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")

	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10, "z": 1})

	require.ErrorIs(t, err, ErrScoreUnknownPlayer)
	require.Empty(t, f.rounds.byGame[gameID])
}

func Test_AddRound_RefusesFinishedGame(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)
	_, err = f.svc.EndGame(context.Background(), gameID)
	require.NoError(t, err)

	_, err = f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 1, "b": 1})

	require.ErrorIs(t, err, ErrGameNotActive)
}

func Test_AddParticipant_BackfillsExistingRounds(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)
	_, err = f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 3, "b": 2})
	require.NoError(t, err)

	f.players.players["c"] = &models.Player{ID: "c", Name: "c"}
	details, err := f.svc.AddParticipant(context.Background(), gameID, "c")

	require.NoError(t, err)
	require.Len(t, details.Players, 3)

	// round averages: (5+10)/2 = 8 (rounded), (3+2)/2 = 3 (rounded)
	rounds := f.rounds.byGame[gameID]
	require.Equal(t, 8, scoring.TotalScore(rounds[:1], "c"))
	require.Equal(t, 11, scoring.TotalScore(rounds, "c"))
}

func Test_AddParticipant_AlreadyJoinedIsNoOp(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)

	details, err := f.svc.AddParticipant(context.Background(), gameID, "b")

	require.NoError(t, err)
	require.Len(t, details.Players, 2)
	// no backfill rows for a player who was already in the game
	require.Len(t, f.rounds.byGame[gameID][0].Scores, 2)
}

func Test_RemoveParticipant_DeletesScoresAndJoinRow(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b", "c")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10, "c": 7})
	require.NoError(t, err)

	details, err := f.svc.RemoveParticipant(context.Background(), gameID, "c")

	require.NoError(t, err)
	require.Len(t, details.Players, 2)
	require.Len(t, f.rounds.byGame[gameID][0].Scores, 2)
	require.Equal(t, 0, scoring.TotalScore(f.rounds.byGame[gameID], "c"))

	// removing again is a no-op
	details, err = f.svc.RemoveParticipant(context.Background(), gameID, "c")
	require.NoError(t, err)
	require.Len(t, details.Players, 2)
}

func Test_EndGame_AppliesStatsExactlyOnce(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)
	_, err = f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 3, "b": 2})
	require.NoError(t, err)

	details, err := f.svc.EndGame(context.Background(), gameID)

	require.NoError(t, err)
	require.Equal(t, models.GameStatusFinished, details.Status)
	require.NotNil(t, details.WinnerID)
	require.Equal(t, "a", *details.WinnerID)

	require.Equal(t, 8, f.players.players["a"].TotalScore)
	require.Equal(t, 1, f.players.players["a"].GamesPlayed)
	require.Equal(t, 1, f.players.players["a"].GamesWon)
	require.Equal(t, 12, f.players.players["b"].TotalScore)
	require.Equal(t, 1, f.players.players["b"].GamesPlayed)
	require.Equal(t, 0, f.players.players["b"].GamesWon)

	// finishing again must fail and must not touch the aggregates
	_, err = f.svc.EndGame(context.Background(), gameID)
	require.ErrorIs(t, err, ErrGameAlreadyFinished)
	require.Equal(t, 1, f.players.players["a"].GamesPlayed)
	require.Equal(t, 1, f.players.players["a"].GamesWon)
	require.Equal(t, 8, f.players.players["a"].TotalScore)
}

func Test_EndGame_TieGoesToEarliestJoiner(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 7, "b": 7})
	require.NoError(t, err)

	details, err := f.svc.EndGame(context.Background(), gameID)

	require.NoError(t, err)
	require.Equal(t, "a", *details.WinnerID)
}

func Test_EndGame_RefusesGameWithoutRounds(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")

	_, err := f.svc.EndGame(context.Background(), gameID)

	require.ErrorIs(t, err, ErrGameHasNoRounds)
	require.Equal(t, models.GameStatusActive, f.games.games[gameID].Status)
}

func Test_GetGameDetails_AssemblesNestedState(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")
	_, err := f.svc.AddRound(context.Background(), gameID, map[string]int{"a": 5, "b": 10})
	require.NoError(t, err)

	details, err := f.svc.GetGameDetails(context.Background(), gameID)

	require.NoError(t, err)
	require.Equal(t, gameID, details.ID)
	require.Len(t, details.Players, 2)
	require.Len(t, details.Rounds, 1)
	require.Equal(t, 1, details.Rounds[0].RoundNumber)
	require.Equal(t, 5, scoring.TotalScore(details.Rounds, "a"))
	require.Equal(t, 10, scoring.TotalScore(details.Rounds, "b"))
}

func Test_GetGameDetails_UnknownGame(t *testing.T) {
	f := newGameFixture()

	_, err := f.svc.GetGameDetails(context.Background(), "missing")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func Test_DiscardGame_DeletesExistingGame(t *testing.T) {
	f := newGameFixture()
	gameID := f.seedGame(t, "a", "b")

	err := f.svc.DiscardGame(context.Background(), gameID)

	require.NoError(t, err)
	require.Equal(t, []string{gameID}, f.games.deleted)
}

func Test_DiscardGame_UnknownGame(t *testing.T) {
	f := newGameFixture()

	err := f.svc.DiscardGame(context.Background(), "missing")
	require.ErrorIs(t, err, ErrGameNotFound)
}
