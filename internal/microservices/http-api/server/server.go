// Package server assembles the HTTP API: repositories, services, handlers
// and the middleware chain.
package server

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is everything the handlers call.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CatalogService
	Genres     service.CatalogService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
}

// NewServices wires the gorm repositories into the services.
func NewServices(db *gorm.DB, tokens service.TokenIssuer, notifier service.CodeNotifier, log *zap.Logger, authOpts service.AuthOptions) Services {
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	genres := repository.NewGenreRepository(db)
	titles := repository.NewTitleRepository(db)
	reviews := repository.NewReviewRepository(db)
	comments := repository.NewCommentRepository(db)

	return Services{
		Auth:       service.NewAuthService(users, tokens, notifier, log, authOpts),
		Users:      service.NewUserService(users),
		Categories: service.NewCategoryService(categories),
		Genres:     service.NewGenreService(genres),
		Titles:     service.NewTitleService(titles, categories, genres),
		Reviews:    service.NewReviewService(reviews, titles),
		Comments:   service.NewCommentService(comments, reviews),
	}
}

// Options configure the router.
type Options struct {
	Log             *zap.Logger
	CORSOrigins     []string
	DefaultPageSize int
	// AuthLimiter throttles /auth per client IP when set.
	AuthLimiter *ratelimit.KeyedRateLimiter
	// Health reports whether dependencies are reachable.
	Health func(ctx context.Context) error
}

// NewRouter builds the gin engine serving /api/v1 and /healthz.
func NewRouter(svcs Services, opts Options) (*gin.Engine, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Log),
		middleware.Recovery(opts.Log),
		cors.New(corsConfig(opts.CORSOrigins)),
	)
	r.NoRoute(middleware.NoRoute)

	r.GET("/healthz", healthz(opts.Health))

	hopts := handler.Options{Log: opts.Log, DefaultPageSize: opts.DefaultPageSize}
	v1 := r.Group("/api/v1", middleware.Authenticate(svcs.Auth))

	var authMW []gin.HandlerFunc
	if opts.AuthLimiter != nil {
		authMW = append(authMW, middleware.RateLimit(opts.AuthLimiter))
	}
	handler.NewAuthHandler(svcs.Auth, hopts).RegisterRoutes(v1, authMW...)
	handler.NewUserHandler(svcs.Users, hopts).RegisterRoutes(v1)
	handler.NewCatalogHandler("/categories", svcs.Categories, hopts).RegisterRoutes(v1)
	handler.NewCatalogHandler("/genres", svcs.Genres, hopts).RegisterRoutes(v1)
	handler.NewTitleHandler(svcs.Titles, hopts).RegisterRoutes(v1)
	handler.NewReviewHandler(svcs.Reviews, hopts).RegisterRoutes(v1)
	handler.NewCommentHandler(svcs.Comments, hopts).RegisterRoutes(v1)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
