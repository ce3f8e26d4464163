package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/moltblox/tournament-engine/handlers"
	"github.com/moltblox/tournament-engine/middleware"
)

// SetupRoutes wires all HTTP endpoints. Reads are public; every mutation
// is restricted to the operator.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read endpoints.
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/bracket", tournamentHandler.BracketHandler)
		r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)
		r.Get("/{tournamentID}/prizes", tournamentHandler.PrizesHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListRoundHandler)
		r.Get("/{tournamentID}/matches/{matchUID}", matchHandler.GetMatchHandler)

		// Players register themselves; the entry fee debit is the gate.
		r.Post("/{tournamentID}/register", tournamentHandler.RegisterHandler)

		// Operator-only mutations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("operator"))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/start", tournamentHandler.StartHandler)
			r.Post("/{tournamentID}/cancel", tournamentHandler.CancelHandler)
			r.Post("/{tournamentID}/banner", tournamentHandler.UploadBannerHandler)
			r.Post("/{tournamentID}/matches/{matchUID}/result", tournamentHandler.SubmitResultHandler)
			r.Patch("/{tournamentID}/matches/{matchUID}/status", matchHandler.UpdateStatusHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
