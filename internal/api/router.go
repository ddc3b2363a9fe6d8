package api

import (
	"net/http"

	"github.com/dom/account-service/internal/api/handlers"
	"github.com/dom/account-service/internal/api/middleware"
	"github.com/dom/account-service/internal/api/response"
	"github.com/dom/account-service/internal/config"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/service"
	"github.com/dom/account-service/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	})

	cookies := handlers.CookieSettings{
		AccessTTL:  cfg.AccessTokenExpiry,
		RefreshTTL: cfg.RefreshTokenExpiry,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cookies, cfg.UploadDir, cfg.MaxUploadBytes, log)
	profileHandler := handlers.NewProfileHandler(services.Profile, cfg.UploadDir, cfg.MaxUploadBytes, log)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Verifier, cfg.CORSOrigin, log)

	requireAuth := middleware.Auth(services.Verifier, services.Profile, log)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.RefreshToken)

			// Token checked by the handler, also accepted as ?token=
			r.Get("/events", wsHandler.Handle)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/logout", authHandler.Logout)
				r.Post("/change-password", authHandler.ChangePassword)
				r.Get("/current-user", profileHandler.CurrentUser)
				r.Patch("/update-details", profileHandler.UpdateDetails)
				r.Patch("/avatar", profileHandler.UpdateAvatar)
				r.Patch("/cover-image", profileHandler.UpdateCoverImage)
				r.Get("/watch-history", profileHandler.WatchHistory)
			})
		})
	})

	return r
}
