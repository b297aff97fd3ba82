package repository

import (
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/util"
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var conversationSortColumns = map[string]string{
	util.SortCreatedAt: "created_at",
	util.SortUpdatedAt: "updated_at",
}

// ErrDuplicateConversation 并发创建同一对用户的会话时命中唯一索引
var ErrDuplicateConversation = errors.New("duplicate conversation")

type ConversationRepo interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	GetConversationByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID uint64, page util.Page) ([]*model.Conversation, int64, error)
	UpdateLastMessage(ctx context.Context, convID uint64, messageID string, preview string) error
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// CreateConversation 创建会话，PeerKey 唯一索引兜底并发重复创建
func (s *conversationRepoImpl) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	conv.PeerKey = model.BuildPeerKey(conv.SenderID, conv.ReceiverID)
	err := s.db.WithContext(ctx).Create(conv).Error
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrDuplicateConversation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateConversation
	}
	return err
}

// GetConversation 根据会话 ID 获取会话，不存在返回 nil, nil
func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, convID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetConversationByPair 按无序用户对查找会话，两种顺序都要匹配
func (s *conversationRepoImpl) GetConversationByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// ListByUser 查询用户参与的会话，服务端分页排序
func (s *conversationRepoImpl) ListByUser(ctx context.Context, userID uint64, page util.Page) ([]*model.Conversation, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*model.Conversation{}, 0, nil
	}

	column, ok := conversationSortColumns[page.SortField]
	if !ok {
		column = "updated_at"
	}
	order := column + " ASC, id ASC"
	if page.Desc {
		order = column + " DESC, id DESC"
	}

	convs := make([]*model.Conversation, 0, page.PageSize)
	err := query.Order(order).
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

// UpdateLastMessage 无条件覆盖会话的最后一条消息摘要
func (s *conversationRepoImpl) UpdateLastMessage(ctx context.Context, convID uint64, messageID string, preview string) error {
	result := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", convID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"last_message":    preview,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
