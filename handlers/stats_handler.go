package handlers

import (
	"net/http"

	"github.com/lowcard/uno-tracker/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// @Summary Global leaderboard, lowest total first
// @Security BearerAuth
// @Tags stats
// @Produce json
// @Success 200
// @Router /stats/leaderboard [get]
func (h *StatsHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.statsService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Cross-game analytics for a player
// @Security BearerAuth
// @Tags stats
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200
// @Failure 404
// @Router /stats/players/{playerID} [get]
func (h *StatsHandler) PlayerAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	analytics, err := h.statsService.PlayerAnalytics(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"analytics": analytics}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
