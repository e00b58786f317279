package server

import (
  "strings"
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/yungbote/routinely-backend/internal/handlers"
  "github.com/yungbote/routinely-backend/internal/middleware"
  "github.com/yungbote/routinely-backend/internal/utils"
)

type RouterConfig struct {
  AuthHandler         *handlers.AuthHandler
  AuthMiddleware      *middleware.AuthMiddleware
  UserHandler         *handlers.UserHandler
  VerificationHandler *handlers.VerificationHandler
  RoutineHandler      *handlers.RoutineHandler
  ProgressHandler     *handlers.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("routinely"))

  origins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000", nil), ",")
  for i := range origins {
    origins[i] = strings.TrimSpace(origins[i])
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api/v1")
  {
    api.POST("/user", cfg.AuthHandler.Register)
    api.POST("/user/login", cfg.AuthHandler.Login)
    api.POST("/verify/sendemail", cfg.VerificationHandler.SendVerificationEmail)
    api.POST("/verify", cfg.VerificationHandler.VerifyOTP)
  }

  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  {
    protected.POST("/user/refresh-token", cfg.AuthHandler.Refresh)
    protected.POST("/user/logout", cfg.AuthHandler.Logout)
    protected.GET("/user/me", cfg.UserHandler.GetMe)

    protected.POST("/routine", cfg.RoutineHandler.Create)
    protected.GET("/routine", cfg.RoutineHandler.List)
    protected.GET("/routine/active", cfg.RoutineHandler.GetActive)
    protected.DELETE("/routine/:routineId", cfg.RoutineHandler.Delete)

    protected.POST("/progress", cfg.ProgressHandler.AddTaskProgress)
  }

  return router
}
