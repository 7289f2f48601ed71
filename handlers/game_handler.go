package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lowcard/uno-tracker/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gameService services.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// @Summary Create a game with its participants
// @Security BearerAuth
// @Tags games
// @Accept json
// @Produce json
// @Success 201
// @Failure 400
// @Router /games [post]
func (h *GameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		HostID    string   `json:"host_id"`
		PlayerIDs []string `json:"player_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.HostID == "" {
		badRequestResponse(w, r, errors.New("host_id is required"))
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), input.HostID, input.PlayerIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary List game history
// @Security BearerAuth
// @Tags games
// @Produce json
// @Success 200
// @Router /games [get]
func (h *GameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.ListGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary List recent games with per-player totals
// @Security BearerAuth
// @Tags games
// @Produce json
// @Param limit query int false "Number of games"
// @Success 200
// @Router /games/recent [get]
func (h *GameHandler) RecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 3
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = parsed
	}

	entries, err := h.gameService.ListRecentGames(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Get full game details
// @Security BearerAuth
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200
// @Failure 404
// @Router /games/{gameID} [get]
func (h *GameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGameDetails(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Record a round of scores
// @Security BearerAuth
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 201
// @Failure 400
// @Failure 409
// @Router /games/{gameID}/rounds [post]
func (h *GameHandler) AddRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Scores map[string]int `json:"scores"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Scores) == 0 {
		badRequestResponse(w, r, errors.New("scores are required"))
		return
	}

	round, err := h.gameService.AddRound(r.Context(), id, input.Scores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Add a player to an active game
// @Security BearerAuth
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200
// @Failure 409
// @Router /games/{gameID}/players [post]
func (h *GameHandler) AddPlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID string `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID == "" {
		badRequestResponse(w, r, errors.New("player_id is required"))
		return
	}

	game, err := h.gameService.AddParticipant(r.Context(), id, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Remove a player and their scores from a game
// @Security BearerAuth
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID"
// @Param playerID path string true "Player ID"
// @Success 200
// @Router /games/{gameID}/players/{playerID} [delete]
func (h *GameHandler) RemovePlayerHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.RemoveParticipant(r.Context(), gameID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Finish a game and apply player aggregates
// @Security BearerAuth
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200
// @Failure 409
// @Router /games/{gameID}/end [post]
func (h *GameHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.EndGame(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Discard a game and all of its rounds
// @Security BearerAuth
// @Tags games
// @Param gameID path string true "Game ID"
// @Success 204
// @Failure 404
// @Router /games/{gameID} [delete]
func (h *GameHandler) DiscardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.DiscardGame(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
