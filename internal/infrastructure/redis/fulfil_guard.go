package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/farmstock-api/internal/application/workflow"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/pkg/logger"
)

var _ workflow.FulfilGuard = (*FulfilGuard)(nil)

// FulfilGuard candado por solicitud con redislock. Si otro proceso tiene el candado devuelve
// domain.ErrTransientStore; si Redis no responde continúa sin candado (el estado en BD decide).
type FulfilGuard struct {
	locker *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewFulfilGuard construye el candado.
func NewFulfilGuard(rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) *FulfilGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FulfilGuard{locker: redislock.New(rdb), ttl: ttl, log: log}
}

// Acquire obtiene el candado para key con unos pocos reintentos cortos.
func (g *FulfilGuard) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := g.locker.Obtain(ctx, "lock:"+key, g.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 3),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.Transient("fulfil guard", err)
	}
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("error obteniendo candado redis; se continúa sin candado")
		return func() {}, nil
	}
	return func() {
		// ctx puede estar vencido al liberar; el TTL cubre ese caso.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			g.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado redis")
		}
	}, nil
}
