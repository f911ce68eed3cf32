package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fitness/internal/auth"
	"fitness/internal/config"
	"fitness/internal/db"
	"fitness/internal/metrics"
	"fitness/internal/service"
)

type Services struct {
	Accounts *service.AccountService
	Users    *service.UserService
	History  *service.HistoryService
}

type Server struct {
	router *chi.Mux
	config *config.Config
}

func NewServer(
	cfg *config.Config,
	database *db.DB,
	userRepo *db.UserRepository,
	jwtService *auth.JWTService,
	services Services,
) (*Server, error) {
	resolver, err := NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("configuring client IP resolver: %w", err)
	}

	accountHandler := NewAccountHandler(services.Accounts)
	userHandler := NewUserHandler(services.Users)
	historyHandler := NewHistoryHandler(services.History)
	healthHandler := NewHealthHandler(database)

	authMiddleware := NewAuthMiddleware(jwtService, userRepo)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(slogRequestLogger(resolver))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHTTP)
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(1 << 20)) // 1 MB

		r.With(rateLimit(resolver, 5, time.Minute)).Post("/register_user", accountHandler.Register)
		r.With(rateLimit(resolver, 10, time.Minute)).Post("/signin_admin", accountHandler.SignInAdmin)
		r.With(rateLimit(resolver, 10, time.Minute)).Get("/verify-email", accountHandler.VerifyEmail)
		r.With(rateLimit(resolver, 3, time.Minute)).Post("/resend-verification", accountHandler.ResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Get("/admin", userHandler.ListUsers)
			r.Get("/admin/{id}", userHandler.GetUser)
			r.Put("/admin/{id}", userHandler.UpdateUser)
			r.Delete("/admin/{id}", userHandler.DeleteUser)

			r.Get("/get_user", userHandler.GetMe)
			r.Post("/exercise_done", historyHandler.ExerciseDone)
			r.Post("/day_done", historyHandler.DayDone)
		})

		r.Post("/workouts_history", historyHandler.AppendWorkoutBlock)
		r.Put("/{id}", userHandler.UpdateUserUnauthenticated)
	})

	return &Server{
		router: r,
		config: cfg,
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
