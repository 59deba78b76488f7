package managers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"server-notes/internal/config"
)

const throttleKeyPrefix = "mail-cooldown:"

// ThrottleMgr limits how often an action may be performed for a given key.
type ThrottleMgr interface {
	// Allow reports whether the action for key may run now and starts the cooldown if so.
	Allow(ctx context.Context, action, key string) (bool, error)
}

// SetNXClient is the part of the Redis client the throttle needs.
type SetNXClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisThrottleManager keeps cooldowns as expiring keys in Redis, so they are shared between instances.
type RedisThrottleManager struct {
	Client   SetNXClient
	Cooldown time.Duration
}

// Allow implements ThrottleMgr. SET NX only succeeds for the first caller within the cooldown.
func (tm *RedisThrottleManager) Allow(ctx context.Context, action, key string) (bool, error) {
	return tm.Client.SetNX(ctx, throttleKeyPrefix+action+":"+key, 1, tm.Cooldown).Result()
}

// NoopThrottleManager allows every action. It is used when no Redis is configured.
type NoopThrottleManager struct{}

// Allow implements ThrottleMgr.
func (tm *NoopThrottleManager) Allow(context.Context, string, string) (bool, error) {
	return true, nil
}

// NewThrottleManager creates a Redis backed ThrottleMgr, or a no-op one if no Redis address is configured.
func NewThrottleManager(cfg config.Redis) ThrottleMgr {
	if cfg.Addr == "" {
		log.Info("No Redis configured, mail cooldown is disabled")
		return &NoopThrottleManager{}
	}

	log.Info("Initializing throttle manager")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisThrottleManager{Client: client, Cooldown: cfg.Cooldown}
}
