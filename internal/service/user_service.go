package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/minio"
	"Rendezvous/internal/pkg/redis"
	"Rendezvous/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

const profileCacheTTL = time.Hour

// UserService 用户资料投影，账户本身由外部身份服务维护
type UserService interface {
	GetProfilesByIDs(ctx context.Context, ids []uint64) ([]*dto.UserProfileDTO, error)
	InvalidateProfile(ctx context.Context, ids ...uint64) error
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
	}
}

func (s *UserServiceImpl) GetProfilesByIDs(ctx context.Context, ids []uint64) ([]*dto.UserProfileDTO, error) {
	ids = uniqueIDs(ids)
	mp := make(map[uint64]*dto.UserProfileDTO, len(ids))
	newIds := make([]uint64, 0, len(ids))

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = consts.UserSimpleInfoKey + strconv.FormatUint(id, 10)
	}
	values, err := redis.MGetValues(ctx, keys...)
	if err != nil {
		// 缓存不可用时直接回源
		log.WarnContext(ctx, "profile cache unavailable", "err", err)
		values = nil
	}
	for i, id := range ids {
		if i < len(values) {
			if str, ok := values[i].(string); ok && str != "" {
				profile := &dto.UserProfileDTO{}
				if err = json.Unmarshal([]byte(str), profile); err == nil {
					mp[id] = profile
					continue
				}
			}
		}
		newIds = append(newIds, id)
	}

	if len(newIds) > 0 {
		userDetails, err := s.userRepo.GetProfilesByIDs(ctx, newIds)
		if err != nil {
			return nil, err
		}
		for _, userDetail := range userDetails {
			profile := &dto.UserProfileDTO{}
			if err = copier.Copy(profile, userDetail); err != nil {
				return nil, err
			}
			if userDetail.Bio != nil {
				profile.Bio = *userDetail.Bio
			}
			if userDetail.AvatarURL == "" {
				userDetail.AvatarURL = consts.DefaultAvatarURL
			}
			profile.AvatarURL = minio.GetPublicURL(userDetail.AvatarURL)
			mp[userDetail.UserID] = profile

			jsonStr, err := json.Marshal(profile)
			if err != nil {
				return nil, err
			}
			key := consts.UserSimpleInfoKey + strconv.FormatUint(userDetail.UserID, 10)
			if err = redis.SetWithExpiration(ctx, key, string(jsonStr), profileCacheTTL); err != nil {
				log.WarnContext(ctx, "profile cache write failed", "key", key, "err", err)
			}
		}
	}

	profiles := make([]*dto.UserProfileDTO, 0, len(ids))
	for _, id := range ids {
		if mp[id] == nil {
			continue
		}
		profiles = append(profiles, mp[id])
	}
	return profiles, nil
}

// InvalidateProfile 资料变更后删除缓存
func (s *UserServiceImpl) InvalidateProfile(ctx context.Context, ids ...uint64) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, consts.UserSimpleInfoKey+strconv.FormatUint(id, 10))
	}
	return redis.DeleteKey(ctx, keys...)
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
