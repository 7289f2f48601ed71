package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/lowcard/uno-tracker/docs"
	"github.com/lowcard/uno-tracker/handlers"
	"github.com/lowcard/uno-tracker/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	gameHandler *handlers.GameHandler,
	statsHandler *handlers.StatsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Live updates; the socket itself is read-only so no token is required
	// for the upgrade.
	router.Get("/ws/games/{gameID}", webSocketHandler.ServeWs)

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", playerHandler.ListHandler)
		r.Get("/me", playerHandler.MeHandler)
		r.Patch("/me", playerHandler.UpdateMeHandler)
		r.Post("/me/avatar", playerHandler.UploadAvatarHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)
	})

	router.Route("/games", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", gameHandler.CreateHandler)
		r.Get("/", gameHandler.ListHandler)
		r.Get("/recent", gameHandler.RecentHandler)
		r.Get("/{gameID}", gameHandler.GetByIDHandler)
		r.Delete("/{gameID}", gameHandler.DiscardHandler)
		r.Post("/{gameID}/rounds", gameHandler.AddRoundHandler)
		r.Post("/{gameID}/players", gameHandler.AddPlayerHandler)
		r.Delete("/{gameID}/players/{playerID}", gameHandler.RemovePlayerHandler)
		r.Post("/{gameID}/end", gameHandler.EndHandler)
	})

	router.Route("/stats", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/leaderboard", statsHandler.LeaderboardHandler)
		r.Get("/players/{playerID}", statsHandler.PlayerAnalyticsHandler)
	})
}
