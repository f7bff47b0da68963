package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"guitarworks/api/internal/config"
	"guitarworks/api/internal/events"
	"guitarworks/api/internal/i18n"
	"guitarworks/api/internal/middleware"
	"guitarworks/api/internal/repository"
	"guitarworks/api/internal/service"
)

// Pinger checks one backing service for the health endpoint.
type Pinger func(ctx context.Context) error

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	messages *i18n.Catalog
	auth     *service.AuthService
	admin    *service.AdminService
	limiter  *middleware.RateLimiter
	pingers  map[string]Pinger
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	publisher := events.NewRedisPublisher(cache, cfg.Redis.Stream)
	messages := i18n.New(cfg.I18n.Locale)

	auth := service.NewAuthService(userRepo, sessionRepo, publisher, messages, cfg.Security, log)
	admin := service.NewAdminService(userRepo, sessionRepo, publisher, log)

	pingers := map[string]Pinger{
		"database": db.Ping,
		"cache": func(ctx context.Context) error {
			return cache.Ping(ctx).Err()
		},
	}

	return newHandlerSet(log, cfg, messages, auth, admin, pingers)
}

func newHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	messages *i18n.Catalog,
	auth *service.AuthService,
	admin *service.AdminService,
	pingers map[string]Pinger,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		messages: messages,
		auth:     auth,
		admin:    admin,
		limiter:  middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		pingers:  pingers,
	}
}

// Messages exposes the catalog so the server can share it with global middleware.
func (h HandlerSet) Messages() *i18n.Catalog {
	return h.messages
}

// Resolver is what the CurrentUser middleware calls on every request.
func (h HandlerSet) Resolver() middleware.CurrentUserResolver {
	return h.auth
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	validSession := middleware.RequireValidSession(h.cfg.Security.CookieSecure)
	guestOnly := middleware.RequireGuest(h.messages)
	userOnly := middleware.RequireUser(h.messages)
	throttle := middleware.RateLimit(h.limiter, h.messages)

	v1 := router.Group("/v1")
	{
		v1.GET("/session", validSession, h.Session)

		v1.GET("/register", validSession, guestOnly, h.RegisterPage)
		v1.POST("/register", throttle, h.RegisterAccount)

		v1.GET("/login", validSession, guestOnly, h.LoginPage)
		v1.POST("/login", throttle, h.Login)

		v1.POST("/logout", h.Logout)

		v1.GET("/mypage", validSession, userOnly, h.Mypage)
	}

	admin := v1.Group("/admin")
	admin.Use(
		validSession,
		userOnly,
		middleware.RequireAdmin(h.cfg.IsAdmin, h.messages),
	)
	admin.GET("/users", h.AdminListUsers)
	admin.DELETE("/users/:id", h.AdminDeleteUser)
	admin.GET("/sessions", h.AdminListSessions)
	admin.DELETE("/sessions/:id", h.AdminDeleteSession)
}
