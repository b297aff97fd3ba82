package presence

import (
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/redis"
	"context"
	"strconv"
	"time"
)

// 实例异常退出时计数无法归还，靠过期兜底；在线用户每次新上线都会续期
const presenceTTL = 24 * time.Hour

// RedisTracker 以 Redis 计数记录用户在几个实例上在线
type RedisTracker struct{}

func NewRedisTracker() *RedisTracker {
	return &RedisTracker{}
}

func presenceKey(userID uint64) string {
	return consts.IMPresenceKey + strconv.FormatUint(userID, 10)
}

func (RedisTracker) Join(ctx context.Context, userID uint64) (int64, error) {
	return redis.IncrWithExpiration(ctx, presenceKey(userID), presenceTTL)
}

func (RedisTracker) Leave(ctx context.Context, userID uint64) (int64, error) {
	return redis.DecrOrDelete(ctx, presenceKey(userID))
}

func (RedisTracker) Count(ctx context.Context, userID uint64) (int64, error) {
	return redis.GetInt(ctx, presenceKey(userID))
}
