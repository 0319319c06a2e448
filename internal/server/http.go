package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/minidrive-backend/internal/auth"
	"github.com/lk2023060901/minidrive-backend/internal/auth/middleware"
	authservice "github.com/lk2023060901/minidrive-backend/internal/auth/service"
	"github.com/lk2023060901/minidrive-backend/internal/conf"
	fileservice "github.com/lk2023060901/minidrive-backend/internal/file/service"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	userservice "github.com/lk2023060901/minidrive-backend/internal/user/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HTTPServer serves the REST API
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	jwtManager *auth.JWTManager,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	fileService *fileservice.FileService,
	redisClient *redis.Client,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")

	authService.RegisterRoutes(api,
		middleware.LoginRateLimiter(redisClient, log),
		middleware.SignupRateLimiter(redisClient, log),
	)

	authed := api.Group("", middleware.JWTAuth(jwtManager, log))
	adminOnly := middleware.RequireAdmin()
	fileService.RegisterRoutes(authed, adminOnly)
	userService.RegisterRoutes(authed, adminOnly)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
