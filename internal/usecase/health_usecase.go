package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	db    *pgxpool.Pool
	redis *goredis.Client
}

func NewHealthUsecase(db *pgxpool.Pool, redis *goredis.Client) HealthUsecase {
	return &healthUsecase{db: db, redis: redis}
}

// Check reports liveness. A failing cache tier degrades the status but the
// process stays serviceable; requests fall back to direct computation.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "healthy",
		"database": "ok",
		"cache":    "ok",
	}

	if u.db == nil || u.db.Ping(ctx) != nil {
		status["database"] = "unreachable"
		status["status"] = "degraded"
	}

	if u.redis == nil {
		status["cache"] = "disabled"
	} else if u.redis.Ping(ctx).Err() != nil {
		status["cache"] = "unreachable"
		status["status"] = "degraded"
	}

	return status
}
