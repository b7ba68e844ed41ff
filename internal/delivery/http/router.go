package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventcalendar/internal/delivery/http/controllers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// RouterConfig carries the controllers and settings NewRouter wires together.
type RouterConfig struct {
	Events *controllers.EventController
	Auth   *controllers.AuthController
	Users  *controllers.UserController
	Health *controllers.HealthController

	Authenticator domain.Authenticator
	WritePolicy   domain.WritePolicy
	// UploadDir, when set, is served under /uploads/.
	UploadDir string
	Logger    *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Authenticator, cfg.Logger)
	admin := func(h http.HandlerFunc) http.HandlerFunc { return auth(middleware.RequireAdmin(h)) }
	// Under the owner policy any signed-in user may write; the service still
	// checks ownership on update and delete.
	write := admin
	if cfg.WritePolicy == domain.WritePolicyAdminOrOwner {
		write = auth
	}

	// Events
	mux.HandleFunc("GET /events/public", cfg.Events.ListPublic)
	mux.HandleFunc("GET /events/public/calendar.ics", cfg.Events.PublicCalendar)
	mux.HandleFunc("GET /events", auth(cfg.Events.List))
	mux.HandleFunc("GET /events/range/{start}/{end}", auth(cfg.Events.ListRange))
	mux.HandleFunc("GET /events/{id}", auth(cfg.Events.Get))
	mux.HandleFunc("POST /events", write(cfg.Events.Create))
	mux.HandleFunc("PUT /events/{id}", write(cfg.Events.Update))
	mux.HandleFunc("DELETE /events/{id}", write(cfg.Events.Delete))

	// Auth
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /auth/forgot-password", cfg.Auth.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", cfg.Auth.ResetPassword)
	mux.HandleFunc("GET /auth/profile", auth(cfg.Auth.Profile))
	mux.HandleFunc("PUT /auth/profile", auth(cfg.Auth.UpdateProfile))
	mux.HandleFunc("POST /auth/change-password", auth(cfg.Auth.ChangePassword))
	mux.HandleFunc("POST /auth/logout", auth(cfg.Auth.Logout))

	// Users
	mux.HandleFunc("GET /users", admin(cfg.Users.List))
	mux.HandleFunc("GET /users/stats", admin(cfg.Users.Stats))
	mux.HandleFunc("GET /users/{id}", admin(cfg.Users.Get))
	mux.HandleFunc("PUT /users/{id}", admin(cfg.Users.Update))
	mux.HandleFunc("DELETE /users/{id}", admin(cfg.Users.Delete))
	mux.HandleFunc("PUT /users/{id}/role", admin(cfg.Users.SetRole))
	mux.HandleFunc("PATCH /users/{id}/toggle-active", admin(cfg.Users.ToggleActive))

	mux.HandleFunc("GET /health", cfg.Health.Health)

	if cfg.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
