package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchcenter/server/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListMatchesHandler)
		r.Post("/", matchHandler.CreateMatchHandler)

		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", matchHandler.GetMatchHandler)
			r.Put("/", matchHandler.UpdateMatchHandler)
			r.Delete("/", matchHandler.DeleteMatchHandler)

			r.Post("/events", matchHandler.AppendEventHandler)
			r.Delete("/events/{position}", matchHandler.RemoveEventHandler)
		})
	})

	router.Get("/ws", webSocketHandler.ServeWS)
}
