package v1

import (
	"log/slog"
	"net/http"

	"go-matchmaking-backend/internal/delivery/http/middleware"
	"go-matchmaking-backend/internal/delivery/http/response"
	"go-matchmaking-backend/internal/domain"
	"go-matchmaking-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	MatchUC  domain.MatchUsecase
	HealthUC usecase.HealthUsecase
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(deps.Log))

	api := r.Group("/api/v1")

	// Liveness probe
	api.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		response.Success(c, code, "System status", status)
	})

	NewMatchHandler(api, deps.MatchUC)

	return r
}
