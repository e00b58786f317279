package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/yungbote/routinely-backend/internal/cache"
  "github.com/yungbote/routinely-backend/internal/db"
  "github.com/yungbote/routinely-backend/internal/handlers"
  "github.com/yungbote/routinely-backend/internal/logger"
  "github.com/yungbote/routinely-backend/internal/middleware"
  "github.com/yungbote/routinely-backend/internal/observability"
  "github.com/yungbote/routinely-backend/internal/repos"
  "github.com/yungbote/routinely-backend/internal/sendgrid"
  "github.com/yungbote/routinely-backend/internal/server"
  "github.com/yungbote/routinely-backend/internal/services"
  "github.com/yungbote/routinely-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Tracing
  shutdownTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "routinely",
    Environment: utils.GetEnv("ENVIRONMENT", "development", log),
  })
  if shutdownTracing != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownTracing(ctx)
    }()
  }

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  otpTokenRepo := repos.NewOtpTokenRepo(thePG, log)
  routineRepo := repos.NewRoutineRepo(thePG, log)
  taskRepo := repos.NewTaskRepo(thePG, log)
  progressRepo := repos.NewProgressRepo(thePG, log)

  // Stats cache (optional)
  statsCache, err := cache.New(log)
  if err != nil {
    log.Warn("Redis cache unavailable, metrics computed on every read", "error", err)
    statsCache = nil
  }

  // Mailer (optional; verification emails fail without it)
  mailer, err := sendgrid.NewFromEnv(log)
  if err != nil {
    log.Warn("SendGrid unavailable, verification emails will fail", "error", err)
    mailer = nil
  }

  // Services
  log.Info("Setting up services from main...")
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo)
  verificationService := services.NewVerificationService(thePG, log, userRepo, otpTokenRepo, authService, mailer)
  routineService := services.NewRoutineService(thePG, log, routineRepo, taskRepo, progressRepo, statsCache)
  progressService := services.NewProgressService(thePG, log, routineRepo, taskRepo, progressRepo, statsCache)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  verificationHandler := handlers.NewVerificationHandler(verificationService, authService)
  routineHandler := handlers.NewRoutineHandler(routineService)
  progressHandler := handlers.NewProgressHandler(progressService)

  // Middleware
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:         authHandler,
    AuthMiddleware:      authMiddleware,
    UserHandler:         userHandler,
    VerificationHandler: verificationHandler,
    RoutineHandler:      routineHandler,
    ProgressHandler:     progressHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  log.Info("Server listening", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
