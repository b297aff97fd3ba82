package repository

import (
	"Rendezvous/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBlockRepo interface {
	GetBlockedIDs(ctx context.Context, blockerID uint64) ([]uint64, error)
	CreateUserBlock(ctx context.Context, block *model.UserBlock) error
	DeleteUserBlock(ctx context.Context, blockerID, blockedID uint64) error
}

type UserBlockRepoImpl struct {
	db *gorm.DB
}

func NewUserBlockRepo(db *gorm.DB) UserBlockRepo {
	return &UserBlockRepoImpl{db: db}
}

// GetBlockedIDs 获取用户拉黑的所有用户 ID
func (s *UserBlockRepoImpl) GetBlockedIDs(ctx context.Context, blockerID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).
		Model(&model.UserBlock{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// CreateUserBlock 拉黑，重复拉黑视为成功
func (s *UserBlockRepoImpl) CreateUserBlock(ctx context.Context, block *model.UserBlock) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(block).Error
}

func (s *UserBlockRepoImpl) DeleteUserBlock(ctx context.Context, blockerID, blockedID uint64) error {
	return s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.UserBlock{}).Error
}
