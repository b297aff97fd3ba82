package repository

import (
	"Rendezvous/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type MediaRepo interface {
	CreateMedia(ctx context.Context, media *model.Media) error
	GetMediaByID(ctx context.Context, id uint64) (*model.Media, error)
	GetMediaByIDs(ctx context.Context, ids []uint64) ([]*model.Media, error)
	MarkOrphaned(ctx context.Context, id uint64) error
	ListOrphaned(ctx context.Context, limit int) ([]*model.Media, error)
	DeleteMedia(ctx context.Context, id uint64) error
}

type mediaRepoImpl struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) MediaRepo {
	return &mediaRepoImpl{db: db}
}

func (s *mediaRepoImpl) CreateMedia(ctx context.Context, media *model.Media) error {
	if media.Status == 0 {
		media.Status = model.MediaStatusActive
	}
	return s.db.WithContext(ctx).Create(media).Error
}

// GetMediaByID 只返回有效附件，不存在或已孤立返回 nil, nil
func (s *mediaRepoImpl) GetMediaByID(ctx context.Context, id uint64) (*model.Media, error) {
	var media model.Media
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.MediaStatusActive).
		First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &media, nil
}

// GetMediaByIDs 批量查询有效附件，结果顺序不保证
func (s *mediaRepoImpl) GetMediaByIDs(ctx context.Context, ids []uint64) ([]*model.Media, error) {
	medias := make([]*model.Media, 0, len(ids))
	if len(ids) == 0 {
		return medias, nil
	}
	err := s.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, model.MediaStatusActive).
		Find(&medias).Error
	return medias, err
}

// MarkOrphaned 标记为孤立对象，等待定时任务删除
func (s *mediaRepoImpl) MarkOrphaned(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Media{}).
		Where("id = ?", id).
		Update("status", model.MediaStatusOrphaned).Error
}

func (s *mediaRepoImpl) ListOrphaned(ctx context.Context, limit int) ([]*model.Media, error) {
	medias := make([]*model.Media, 0)
	err := s.db.WithContext(ctx).
		Where("status = ?", model.MediaStatusOrphaned).
		Order("updated_at ASC").
		Limit(limit).
		Find(&medias).Error
	return medias, err
}

func (s *mediaRepoImpl) DeleteMedia(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Delete(&model.Media{}, id).Error
}
