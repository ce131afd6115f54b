// file: internals/features/attendance/events/service/dispatch_guard.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DispatchGuard mencegah dua instance pipeline men-dispatch notifikasi
// untuk event yang sama bersamaan. Guard bersifat best-effort di atas
// kebijakan processed_at; tanpa guard, kebijakan processed_at tetap jalan.
type DispatchGuard interface {
	TryAcquire(ctx context.Context, eventID uuid.UUID) bool
	Release(ctx context.Context, eventID uuid.UUID)
}

/* =========================
   Redis guard (SETNX + TTL)
========================= */

const dispatchGuardTTL = 2 * time.Minute

type RedisDispatchGuard struct {
	client *redis.Client
}

// NewRedisDispatchGuard: addr kosong → tanpa guard (return nil).
func NewRedisDispatchGuard(addr, password string) *RedisDispatchGuard {
	if addr == "" {
		return nil
	}
	return &RedisDispatchGuard{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
	}
}

func (g *RedisDispatchGuard) key(eventID uuid.UUID) string {
	return "absensiku:notify:event:" + eventID.String()
}

func (g *RedisDispatchGuard) TryAcquire(ctx context.Context, eventID uuid.UUID) bool {
	ok, err := g.client.SetNX(ctx, g.key(eventID), 1, dispatchGuardTTL).Result()
	if err != nil {
		// Redis down bukan alasan menahan notifikasi; fallback ke
		// kebijakan processed_at saja.
		log.Printf("[WARN] dispatch guard redis err: %v", err)
		return true
	}
	return ok
}

func (g *RedisDispatchGuard) Release(ctx context.Context, eventID uuid.UUID) {
	if err := g.client.Del(ctx, g.key(eventID)).Err(); err != nil {
		log.Printf("[WARN] dispatch guard release err: %v", err)
	}
}
