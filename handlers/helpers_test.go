package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lowcard/uno-tracker/services"
)

func Test_ReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid body", body: `{"name": "Anna"}`},
		{name: "empty body", body: ``, wantErr: "body must not be empty"},
		{name: "malformed json", body: `{"name":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"naame": "Anna"}`, wantErr: "unknown key"},
		{name: "wrong type", body: `{"name": 42}`, wantErr: "incorrect JSON type"},
		{name: "multiple values", body: `{"name": "Anna"}{"name": "Ben"}`, wantErr: "single JSON value"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := readJSON(rec, req, &dst)

			if tc.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, "Anna", dst.Name)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func Test_MapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "game not found", err: services.ErrGameNotFound, wantStatus: http.StatusNotFound},
		{name: "player not found", err: services.ErrPlayerNotFound, wantStatus: http.StatusNotFound},
		{name: "not enough players", err: services.ErrNotEnoughPlayers, wantStatus: http.StatusBadRequest},
		{name: "scores incomplete", err: services.ErrScoresIncomplete, wantStatus: http.StatusBadRequest},
		{name: "no rounds to score", err: services.ErrGameHasNoRounds, wantStatus: http.StatusBadRequest},
		{name: "game not active", err: services.ErrGameNotActive, wantStatus: http.StatusConflict},
		{name: "already finished", err: services.ErrGameAlreadyFinished, wantStatus: http.StatusConflict},
		{name: "round conflict", err: services.ErrRoundConflict, wantStatus: http.StatusConflict},
		{name: "bad credentials", err: services.ErrAuthInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "email taken", err: services.ErrAuthEmailTaken, wantStatus: http.StatusConflict},
		{name: "unexpected error", err: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			mapServiceErrorToHTTP(rec, req, tc.err)

			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.Contains(t, rec.Body.String(), "error")
		})
	}
}

func Test_GetUUIDFromURL(t *testing.T) {
	newRequest := func(param, value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(param, value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("valid uuid", func(t *testing.T) {
		req := newRequest("gameID", "7f9c24e5-2c33-4b33-b7a0-9d6f1c2e8a11")
		id, err := getUUIDFromURL(req, "gameID")
		require.NoError(t, err)
		require.Equal(t, "7f9c24e5-2c33-4b33-b7a0-9d6f1c2e8a11", id)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		req := newRequest("gameID", "not-a-uuid")
		_, err := getUUIDFromURL(req, "gameID")
		require.Error(t, err)
	})

	t.Run("missing param", func(t *testing.T) {
		req := newRequest("gameID", "")
		_, err := getUUIDFromURL(req, "playerID")
		require.Error(t, err)
	})
}
