package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/repository"
	"context"
	"errors"
	log "log/slog"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type ConversationService interface {
	CreateConversation(ctx context.Context, userA, userB uint64) (*dto.ConversationDTO, error)
	ListConversations(ctx context.Context, userID uint64, page util.Page) (*dto.PageResult[*dto.ConversationDTO], error)
	GetConversation(ctx context.Context, id uint64) (*dto.ConversationDTO, error)
	UpdateLastMessage(ctx context.Context, convID uint64, messageID string, preview string) error
}

type conversationServiceImpl struct {
	convRepo     repository.ConversationRepo
	messageRepo  mongo.MessageRepo
	userService  UserService
	blockService UserBlockService
	assembler    *messageAssembler
}

func NewConversationService(
	convRepo repository.ConversationRepo,
	messageRepo mongo.MessageRepo,
	userService UserService,
	blockService UserBlockService,
	attachmentService AttachmentService,
) ConversationService {
	return &conversationServiceImpl{
		convRepo:     convRepo,
		messageRepo:  messageRepo,
		userService:  userService,
		blockService: blockService,
		assembler:    &messageAssembler{messageRepo: messageRepo, attachments: attachmentService},
	}
}

// CreateConversation 同一对用户只存在一个会话，重复创建返回已有会话
func (s *conversationServiceImpl) CreateConversation(ctx context.Context, userA, userB uint64) (*dto.ConversationDTO, error) {
	if userA == 0 || userB == 0 || userA == userB {
		return nil, ErrInvalidRequest
	}

	conv, err := s.convRepo.GetConversationByPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &model.Conversation{
			SenderID:   userA,
			ReceiverID: userB,
		}
		err = s.convRepo.CreateConversation(ctx, conv)
		if errors.Is(err, repository.ErrDuplicateConversation) {
			// 并发创建，唯一索引兜底后重新读取
			conv, err = s.convRepo.GetConversationByPair(ctx, userA, userB)
		}
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, UnExpectedError
		}
		log.InfoContext(ctx, "conversation created", "conversationId", conv.ID, "users", []uint64{userA, userB})
	}

	items, err := s.enrich(ctx, []*model.Conversation{conv}, false)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// ListConversations 分页查询后按拉黑名单过滤，总数扣除过滤掉的条数
func (s *conversationServiceImpl) ListConversations(ctx context.Context, userID uint64, page util.Page) (*dto.PageResult[*dto.ConversationDTO], error) {
	if userID == 0 {
		return nil, ErrInvalidRequest
	}
	convs, total, err := s.convRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	blockedIDs, err := s.blockService.GetBlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	blocked := make(map[uint64]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}

	visible := make([]*model.Conversation, 0, len(convs))
	for _, conv := range convs {
		if _, ok := blocked[conv.PeerOf(userID)]; ok {
			continue
		}
		visible = append(visible, conv)
	}
	total -= int64(len(convs) - len(visible))
	if total < 0 {
		total = 0
	}

	items, err := s.enrich(ctx, visible, true)
	if err != nil {
		return nil, err
	}
	return &dto.PageResult[*dto.ConversationDTO]{
		Items:      items,
		TotalItems: total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *conversationServiceImpl) GetConversation(ctx context.Context, id uint64) (*dto.ConversationDTO, error) {
	conv, err := s.convRepo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	items, err := s.enrich(ctx, []*model.Conversation{conv}, true)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// UpdateLastMessage 无条件覆盖最后一条消息摘要
func (s *conversationServiceImpl) UpdateLastMessage(ctx context.Context, convID uint64, messageID string, preview string) error {
	if convID == 0 || messageID == "" {
		return ErrInvalidRequest
	}
	if err := checkTextLength(preview); err != nil {
		return err
	}
	err := s.convRepo.UpdateLastMessage(ctx, convID, messageID, previewOf(preview))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.WithMessagef(ErrConversationNotFound, "conversation %d", convID)
	}
	return err
}

// enrich 批量补充双方资料和最后一条消息
func (s *conversationServiceImpl) enrich(ctx context.Context, convs []*model.Conversation, withLastMessage bool) ([]*dto.ConversationDTO, error) {
	res := make([]*dto.ConversationDTO, 0, len(convs))
	if len(convs) == 0 {
		return res, nil
	}

	userIDs := make([]uint64, 0, len(convs)*2)
	lastIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		userIDs = append(userIDs, conv.SenderID, conv.ReceiverID)
		if withLastMessage && conv.LastMessageID != nil && *conv.LastMessageID != "" {
			lastIDs = append(lastIDs, *conv.LastMessageID)
		}
	}

	profiles, err := s.userService.GetProfilesByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	profileMap := make(map[uint64]*dto.UserProfileDTO, len(profiles))
	for _, p := range profiles {
		profileMap[p.UserID] = p
	}

	lastMap := make(map[string]*dto.MessageDTO, len(lastIDs))
	if len(lastIDs) > 0 {
		msgs, err := s.messageRepo.GetByIDs(ctx, lastIDs)
		if err != nil {
			return nil, err
		}
		items, err := s.assembler.assemble(ctx, msgs, false)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			lastMap[item.ID] = item
		}
	}

	for _, conv := range convs {
		item := &dto.ConversationDTO{
			ID:            conv.ID,
			SenderID:      conv.SenderID,
			ReceiverID:    conv.ReceiverID,
			Sender:        profileMap[conv.SenderID],
			Receiver:      profileMap[conv.ReceiverID],
			LastMessageID: conv.LastMessageID,
			LastMessage:   conv.LastMessage,
			CreatedAt:     conv.CreatedAt,
			UpdatedAt:     conv.UpdatedAt,
		}
		if conv.LastMessageID != nil {
			item.LastMessageInfo = lastMap[*conv.LastMessageID]
		}
		res = append(res, item)
	}
	return res, nil
}
