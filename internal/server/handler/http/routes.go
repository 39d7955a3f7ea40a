package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/middleware"
)

// RouterDeps bundles everything the router needs: handlers, the token
// resolver for the auth middlewares, the rate limiter and the logger.
type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Tracks    *TrackHandler
	Playlists *PlaylistHandler

	Tokens         middleware.TokenResolver
	Limiter        *middleware.RateLimiter
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

// NewRouter assembles the API under /api. Catalog reads take optional auth so
// anonymous viewers see public entries; every mutation except play counting
// requires a valid access token.
func NewRouter(deps RouterDeps) http.Handler {
	requireAuth := middleware.RequireAuth(deps.Tokens, WriteError)
	optionalAuth := middleware.OptionalAuth(deps.Tokens, WriteError)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(deps.Logger))
	r.Use(deps.Limiter.Handler)
	r.Use(chiMiddleware.Timeout(deps.RequestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(chiMiddleware.AllowContentType("application/json")).Group(func(r chi.Router) {
				r.Post("/register", deps.Auth.Register)
				r.Post("/login", deps.Auth.Login)
				r.Post("/refresh", deps.Auth.Refresh)
			})
			r.With(requireAuth).Post("/logout", deps.Auth.Logout)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", deps.Users.Me)
			r.With(chiMiddleware.AllowContentType("application/json")).Patch("/", deps.Users.UpdateMe)
			r.With(chiMiddleware.AllowContentType("application/json")).Put("/password", deps.Users.ChangePassword)
		})

		r.Route("/tracks", func(r chi.Router) {
			r.With(optionalAuth).Get("/", deps.Tracks.List)
			r.With(optionalAuth).Get("/{id}", deps.Tracks.Get)
			r.Post("/{id}/play", deps.Tracks.IncrementPlay)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/", deps.Tracks.Create)
				r.With(chiMiddleware.AllowContentType("application/json")).Patch("/{id}", deps.Tracks.Update)
				r.Delete("/{id}", deps.Tracks.Delete)
			})
		})

		r.Route("/playlists", func(r chi.Router) {
			r.With(optionalAuth).Get("/", deps.Playlists.List)
			r.With(requireAuth).Get("/followed", deps.Playlists.ListFollowed)
			r.With(optionalAuth).Get("/{id}", deps.Playlists.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				jsonOnly := chiMiddleware.AllowContentType("application/json")
				r.With(jsonOnly).Post("/", deps.Playlists.Create)
				r.With(jsonOnly).Patch("/{id}", deps.Playlists.Update)
				r.Delete("/{id}", deps.Playlists.Delete)
				r.With(jsonOnly).Post("/{id}/tracks", deps.Playlists.AddTrack)
				r.With(jsonOnly).Post("/{id}/tracks/batch", deps.Playlists.AddTracksBatch)
				r.Delete("/{id}/tracks/{trackId}", deps.Playlists.RemoveTrack)
				r.With(jsonOnly).Put("/{id}/tracks/order", deps.Playlists.Reorder)
				r.Post("/{id}/follow", deps.Playlists.ToggleFollow)
				r.Post("/{id}/duplicate", deps.Playlists.Duplicate)
			})
		})
	})

	return r
}
