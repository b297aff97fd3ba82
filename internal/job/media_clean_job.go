package job

import (
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	sweepBatchSize = 100
	sweepTimeout   = 5 * time.Minute
)

// OrphanSweeper 重试删除已解除引用但文件删除失败的附件
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, limit int) (int, error)
}

// Locker 分布式锁，多实例部署时同一时刻只有一个实例执行清理
type Locker interface {
	TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, value string)
}

type redisLocker struct{}

func (redisLocker) TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return redis.TryLock(ctx, key, value, ttl, 0)
}

func (redisLocker) Unlock(ctx context.Context, key, value string) {
	redis.UnLock(ctx, key, value)
}

type MediaCleanupJob struct {
	sweeper OrphanSweeper
	locker  Locker
}

func NewMediaCleanupJob(sweeper OrphanSweeper) *MediaCleanupJob {
	return &MediaCleanupJob{sweeper: sweeper, locker: redisLocker{}}
}

func NewMediaCleanupJobWithLocker(sweeper OrphanSweeper, locker Locker) *MediaCleanupJob {
	return &MediaCleanupJob{sweeper: sweeper, locker: locker}
}

// Run 实现 cron.Job，分批清理直到没有孤儿附件
func (s *MediaCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	token := uuid.NewString()
	ok, err := s.locker.TryLock(ctx, consts.MediaSweepLock, token, sweepTimeout)
	if err != nil {
		log.Error("failed to acquire media sweep lock", "err", err)
		return
	}
	if !ok {
		return
	}
	defer s.locker.Unlock(context.Background(), consts.MediaSweepLock, token)

	total := 0
	for {
		n, err := s.sweeper.SweepOrphans(ctx, sweepBatchSize)
		total += n
		if err != nil {
			log.Error("media sweep aborted", "cleaned_count", total, "err", err)
			return
		}
		if n < sweepBatchSize || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		log.Info("media cleanup job finished", "cleaned_count", total)
	}
}
