package handlers

import (
	"errors"
	"net/http"

	"github.com/lowcard/uno-tracker/middleware"
	"github.com/lowcard/uno-tracker/models"
	"github.com/lowcard/uno-tracker/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// @Summary List all players
// @Security BearerAuth
// @Tags players
// @Produce json
// @Success 200
// @Router /players [get]
func (h *PlayerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Get a player by id
// @Security BearerAuth
// @Tags players
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200
// @Failure 404
// @Router /players/{playerID} [get]
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MeHandler resolves the acting player from the token.
// @Summary Get the authenticated player
// @Security BearerAuth
// @Tags players
// @Produce json
// @Success 200
// @Failure 401
// @Router /players/me [get]
func (h *PlayerHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	player, ok := h.currentPlayer(w, r)
	if !ok {
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// @Summary Update the authenticated player's name
// @Security BearerAuth
// @Tags players
// @Accept json
// @Produce json
// @Success 200
// @Failure 400
// @Router /players/me [patch]
func (h *PlayerHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	player, ok := h.currentPlayer(w, r)
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.playerService.UpdateName(r.Context(), player.ID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

const maxAvatarBytes = 5 << 20 // 5MB

// @Summary Upload the authenticated player's avatar
// @Security BearerAuth
// @Tags players
// @Accept mpfd
// @Produce json
// @Param avatar formData file true "Avatar image (png or jpeg)"
// @Success 200
// @Failure 400
// @Router /players/me/avatar [post]
func (h *PlayerHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	player, ok := h.currentPlayer(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		badRequestResponse(w, r, errors.New("request is not a valid multipart form"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, errors.New("avatar file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	updated, err := h.playerService.UploadAvatar(r.Context(), player.ID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) currentPlayer(w http.ResponseWriter, r *http.Request) (*models.Player, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return nil, false
	}

	player, err := h.playerService.GetByUserID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, false
	}
	return player, true
}
