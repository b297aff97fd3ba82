package repository

import (
	"Rendezvous/internal/model"
	"context"

	"gorm.io/gorm"
)

var profileColumns = []string{"user_id", "nickname", "avatar_url", "bio"}

// UserRepo 只读访问账户服务维护的用户资料
type UserRepo interface {
	GetProfilesByIDs(ctx context.Context, ids []uint64) ([]*model.UserDetail, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

// GetProfilesByIDs 不存在的用户直接缺省，不报错
func (s *userRepoImpl) GetProfilesByIDs(ctx context.Context, ids []uint64) ([]*model.UserDetail, error) {
	profiles := make([]*model.UserDetail, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	err := s.db.WithContext(ctx).
		Select(profileColumns).
		Where("user_id IN ?", ids).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
