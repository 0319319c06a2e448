package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lk2023060901/minidrive-backend/internal/auth"
	authbiz "github.com/lk2023060901/minidrive-backend/internal/auth/biz"
	authservice "github.com/lk2023060901/minidrive-backend/internal/auth/service"
	"github.com/lk2023060901/minidrive-backend/internal/conf"
	"github.com/lk2023060901/minidrive-backend/internal/data"
	filebiz "github.com/lk2023060901/minidrive-backend/internal/file/biz"
	filedata "github.com/lk2023060901/minidrive-backend/internal/file/data"
	fileservice "github.com/lk2023060901/minidrive-backend/internal/file/service"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"github.com/lk2023060901/minidrive-backend/internal/server"
	userbiz "github.com/lk2023060901/minidrive-backend/internal/user/biz"
	userdata "github.com/lk2023060901/minidrive-backend/internal/user/data"
	userservice "github.com/lk2023060901/minidrive-backend/internal/user/service"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize repositories
	userRepo := userdata.NewUserRepo(d.DB)
	fileRepo := filedata.NewFileRepo(d.DB)
	blobStore := filedata.NewMinIOBlobStore(d.MinIOClient, config.MinIO.Bucket)

	// Initialize use cases
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer)
	authUseCase := authbiz.NewAuthUseCase(userRepo, jwtManager)
	fileUseCase := filebiz.NewFileUseCase(fileRepo, blobStore, config.Upload.MaxSizeBytes, log)
	userUseCase := userbiz.NewUserUseCase(userRepo, fileUseCase)

	// Initialize services
	authService := authservice.NewAuthService(authUseCase, log)
	userService := userservice.NewUserService(userUseCase, log)
	fileService := fileservice.NewFileService(fileUseCase, log)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(config, log, jwtManager, authService, userService, fileService, d.RedisClient)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
