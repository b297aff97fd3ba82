package service

import (
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/redis"
	"Rendezvous/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

const (
	blockCacheTTL         = 30 * time.Minute
	blockCachePlaceholder = "-"
)

type UserBlockService interface {
	GetBlockedIDs(ctx context.Context, userID uint64) ([]uint64, error)
	Block(ctx context.Context, blockerID, blockedID uint64) error
	Unblock(ctx context.Context, blockerID, blockedID uint64) error
	InvalidateCache(ctx context.Context, userIDs ...uint64) error
}

type userBlockServiceImpl struct {
	blockRepo repository.UserBlockRepo
}

func NewUserBlockService(blockRepo repository.UserBlockRepo) UserBlockService {
	return &userBlockServiceImpl{blockRepo: blockRepo}
}

// GetBlockedIDs 优先读缓存，空集合以占位成员缓存
func (s *userBlockServiceImpl) GetBlockedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	key := consts.UserBlockKey + strconv.FormatUint(userID, 10)

	exists, err := redis.Exists(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "block cache unavailable", "err", err)
	}
	if err == nil && exists {
		members, err := redis.GetSet(ctx, key)
		if err == nil {
			return parseBlockMembers(members), nil
		}
		log.WarnContext(ctx, "block cache read failed", "key", key, "err", err)
	}

	ids, err := s.blockRepo.GetBlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	members := make([]string, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatUint(id, 10)
	}
	if err = redis.SetMembersWithExpiration(ctx, key, members, blockCachePlaceholder, blockCacheTTL); err != nil {
		log.WarnContext(ctx, "block cache write failed", "key", key, "err", err)
	}
	return ids, nil
}

func (s *userBlockServiceImpl) Block(ctx context.Context, blockerID, blockedID uint64) error {
	if blockerID == 0 || blockedID == 0 {
		return ErrInvalidRequest
	}
	if blockerID == blockedID {
		return ErrBlockSelf
	}
	err := s.blockRepo.CreateUserBlock(ctx, &model.UserBlock{
		BlockerID: blockerID,
		BlockedID: blockedID,
	})
	if err != nil {
		return err
	}
	return s.InvalidateCache(ctx, blockerID)
}

func (s *userBlockServiceImpl) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	if blockerID == 0 || blockedID == 0 {
		return ErrInvalidRequest
	}
	if err := s.blockRepo.DeleteUserBlock(ctx, blockerID, blockedID); err != nil {
		return err
	}
	return s.InvalidateCache(ctx, blockerID)
}

func (s *userBlockServiceImpl) InvalidateCache(ctx context.Context, userIDs ...uint64) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, consts.UserBlockKey+strconv.FormatUint(id, 10))
	}
	return redis.DeleteKey(ctx, keys...)
}

func parseBlockMembers(members []string) []uint64 {
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		if m == blockCachePlaceholder {
			continue
		}
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
