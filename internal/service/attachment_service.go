package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/repository"
	"bytes"
	"context"
	"io"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BlobStore 对象存储
type BlobStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
	URL(objectName string) string
}

// UploadFile 待上传的附件
type UploadFile struct {
	FileName string
	Size     int64
	Reader   io.ReadSeeker
}

type AttachmentService interface {
	Upload(ctx context.Context, uploaderID uint64, file *UploadFile) (*dto.MediaDTO, error)
	UploadAll(ctx context.Context, uploaderID uint64, files []*UploadFile) ([]*model.Media, error)
	Resolve(ctx context.Context, ids []uint64) ([]*dto.MediaDTO, error)
	GetAttachment(ctx context.Context, id uint64) (*dto.MediaDTO, error)
	RemoveAttachment(ctx context.Context, mediaID uint64) error
	SweepOrphans(ctx context.Context, limit int) (int, error)
}

type attachmentServiceImpl struct {
	mediaRepo   repository.MediaRepo
	messageRepo mongo.MessageRepo
	blobs       BlobStore
}

func NewAttachmentService(mediaRepo repository.MediaRepo, messageRepo mongo.MessageRepo, blobs BlobStore) AttachmentService {
	return &attachmentServiceImpl{
		mediaRepo:   mediaRepo,
		messageRepo: messageRepo,
		blobs:       blobs,
	}
}

func (s *attachmentServiceImpl) Upload(ctx context.Context, uploaderID uint64, file *UploadFile) (*dto.MediaDTO, error) {
	media, err := s.upload(ctx, uploaderID, file)
	if err != nil {
		return nil, err
	}
	return s.toDTO(media), nil
}

// UploadAll 并发上传，任意一个失败则整体失败并回收已上传的对象
func (s *attachmentServiceImpl) UploadAll(ctx context.Context, uploaderID uint64, files []*UploadFile) ([]*model.Media, error) {
	medias := make([]*model.Media, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			media, err := s.upload(gCtx, uploaderID, file)
			if err != nil {
				return err
			}
			medias[i] = media
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, media := range medias {
			if media != nil {
				s.discard(context.WithoutCancel(ctx), media)
			}
		}
		return nil, err
	}
	return medias, nil
}

func (s *attachmentServiceImpl) upload(ctx context.Context, uploaderID uint64, file *UploadFile) (*model.Media, error) {
	if file == nil || file.Reader == nil {
		return nil, ErrInvalidRequest
	}
	contentType, err := util.GetSafeContentType(file.Reader)
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidRequest, err.Error())
	}

	var reader io.Reader = file.Reader
	var width, height int
	if strings.HasPrefix(contentType, "image/") {
		data, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, errors.WithMessage(ErrInvalidRequest, err.Error())
		}
		if w, h, err := util.ImageDimensions(data); err == nil {
			width, height = w, h
		} else {
			log.WarnContext(ctx, "failed to decode image dimensions", "file", file.FileName, "err", err)
		}
		reader = bytes.NewReader(data)
	}

	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + path.Ext(file.FileName)
	fileKey, err := s.blobs.Put(ctx, objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(ctx, "blob upload failed", "object", objectName, "err", err)
		return nil, errors.WithMessage(ErrDependencyFailure, err.Error())
	}

	media := &model.Media{
		ObjectKey:  fileKey,
		FileName:   file.FileName,
		MimeType:   contentType,
		Size:       file.Size,
		Width:      width,
		Height:     height,
		UploaderID: uploaderID,
		Status:     model.MediaStatusActive,
	}
	if err = s.mediaRepo.CreateMedia(ctx, media); err != nil {
		if rmErr := s.blobs.Remove(context.WithoutCancel(ctx), fileKey); rmErr != nil {
			log.WarnContext(ctx, "failed to roll back blob", "object", fileKey, "err", rmErr)
		}
		return nil, err
	}
	log.InfoContext(ctx, "media upload success", "mediaId", media.ID, "type", contentType)
	return media, nil
}

// discard 回收未被任何消息引用的附件，删除失败交给清理任务
func (s *attachmentServiceImpl) discard(ctx context.Context, media *model.Media) {
	if err := s.blobs.Remove(ctx, media.ObjectKey); err != nil {
		log.WarnContext(ctx, "failed to discard blob", "mediaId", media.ID, "err", err)
		if err = s.mediaRepo.MarkOrphaned(ctx, media.ID); err != nil {
			log.ErrorContext(ctx, "failed to mark media orphaned", "mediaId", media.ID, "object", media.ObjectKey, "err", err)
		}
		return
	}
	if err := s.mediaRepo.DeleteMedia(ctx, media.ID); err != nil {
		log.WarnContext(ctx, "failed to discard media row", "mediaId", media.ID, "err", err)
	}
}

// Resolve 按输入顺序解析附件，无法解析的 ID 直接丢弃
func (s *attachmentServiceImpl) Resolve(ctx context.Context, ids []uint64) ([]*dto.MediaDTO, error) {
	res := make([]*dto.MediaDTO, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	medias, err := s.mediaRepo.GetMediaByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	mp := make(map[uint64]*model.Media, len(medias))
	for _, m := range medias {
		mp[m.ID] = m
	}
	for _, id := range ids {
		if m, ok := mp[id]; ok {
			res = append(res, s.toDTO(m))
		}
	}
	return res, nil
}

func (s *attachmentServiceImpl) GetAttachment(ctx context.Context, id uint64) (*dto.MediaDTO, error) {
	media, err := s.mediaRepo.GetMediaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, ErrAttachmentNotFound
	}
	return s.toDTO(media), nil
}

// RemoveAttachment 先清除所有消息中的引用，再删除对象；对象删除失败只留下孤立对象
func (s *attachmentServiceImpl) RemoveAttachment(ctx context.Context, mediaID uint64) error {
	media, err := s.mediaRepo.GetMediaByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if media == nil {
		return ErrAttachmentNotFound
	}

	scrubbed, err := s.messageRepo.RemoveAttachment(ctx, mediaID)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "attachment references scrubbed", "mediaId", mediaID, "messages", scrubbed)

	if err = s.blobs.Remove(ctx, media.ObjectKey); err != nil {
		log.WarnContext(ctx, "blob delete failed, media left for sweep", "mediaId", mediaID, "err", err)
		if err = s.mediaRepo.MarkOrphaned(ctx, mediaID); err != nil {
			return err
		}
		return nil
	}
	return s.mediaRepo.DeleteMedia(ctx, mediaID)
}

// SweepOrphans 重试删除孤立对象，返回清理数量
func (s *attachmentServiceImpl) SweepOrphans(ctx context.Context, limit int) (int, error) {
	medias, err := s.mediaRepo.ListOrphaned(ctx, limit)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, media := range medias {
		if err = s.blobs.Remove(ctx, media.ObjectKey); err != nil {
			log.WarnContext(ctx, "orphan blob delete failed", "mediaId", media.ID, "err", err)
			continue
		}
		if err = s.mediaRepo.DeleteMedia(ctx, media.ID); err != nil {
			log.WarnContext(ctx, "orphan media row delete failed", "mediaId", media.ID, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *attachmentServiceImpl) toDTO(m *model.Media) *dto.MediaDTO {
	return &dto.MediaDTO{
		ID:         m.ID,
		URL:        s.blobs.URL(m.ObjectKey),
		FileName:   m.FileName,
		MimeType:   m.MimeType,
		Size:       m.Size,
		Width:      m.Width,
		Height:     m.Height,
		UploaderID: m.UploaderID,
		CreatedAt:  m.CreatedAt,
	}
}
