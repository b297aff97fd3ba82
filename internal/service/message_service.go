package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type MessageService interface {
	CreateMessage(ctx context.Context, req *dto.CreateMessageReq, files []*UploadFile) (*dto.MessageDTO, error)
	FindByID(ctx context.Context, id string) (*dto.MessageDTO, error)
	FindByConversationID(ctx context.Context, convID uint64, page util.Page) (*dto.PageResult[*dto.MessageDTO], error)
	UpdateContent(ctx context.Context, id string, text string, needsTranslation bool) (*dto.MessageDTO, error)
	UpdateDeletionStatus(ctx context.Context, id string, isDeleted bool) (*dto.MessageDTO, error)
	RemoveAttachment(ctx context.Context, mediaID uint64) error
	MarkConversationRead(ctx context.Context, convID uint64, readerID uint64) (*dto.MessagesReadDTO, error)
}

type messageServiceImpl struct {
	messageRepo         mongo.MessageRepo
	convRepo            repository.ConversationRepo
	conversationService ConversationService
	attachmentService   AttachmentService
	contentBuilder      ContentBuilder
	assembler           *messageAssembler
}

func NewMessageService(
	messageRepo mongo.MessageRepo,
	convRepo repository.ConversationRepo,
	conversationService ConversationService,
	attachmentService AttachmentService,
	contentBuilder ContentBuilder,
) MessageService {
	return &messageServiceImpl{
		messageRepo:         messageRepo,
		convRepo:            convRepo,
		conversationService: conversationService,
		attachmentService:   attachmentService,
		contentBuilder:      contentBuilder,
		assembler:           &messageAssembler{messageRepo: messageRepo, attachments: attachmentService},
	}
}

// CreateMessage 组装正文、上传附件、落库，然后同步更新会话摘要
func (s *messageServiceImpl) CreateMessage(ctx context.Context, req *dto.CreateMessageReq, files []*UploadFile) (*dto.MessageDTO, error) {
	if req == nil || req.ConversationID == 0 || req.SenderID == 0 || req.ReceiverID == 0 {
		return nil, ErrInvalidRequest
	}
	text := ""
	if req.Text != nil {
		text = *req.Text
	}
	hasText := strings.TrimSpace(text) != ""
	if err := checkTextLength(text); err != nil {
		return nil, err
	}
	if !hasText && len(files) == 0 && len(req.AttachmentIDs) == 0 {
		return nil, errors.WithMessage(ErrInvalidRequest, "empty message")
	}
	if limit := imConfig().MaxAttachments; limit > 0 && len(files)+len(req.AttachmentIDs) > limit {
		return nil, errors.WithMessagef(ErrInvalidRequest, "too many attachments, max %d", limit)
	}
	if req.MessageType != "" && !mongo.ValidMessageType(req.MessageType) {
		return nil, errors.WithMessagef(ErrInvalidRequest, "unknown message type %q", req.MessageType)
	}

	conv, err := s.convRepo.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasMember(req.SenderID) || !conv.HasMember(req.ReceiverID) || req.SenderID == req.ReceiverID {
		return nil, errors.WithMessage(ErrInvalidRequest, "users are not participants of the conversation")
	}

	if len(files) == 0 && len(req.AttachmentIDs) > 0 {
		if err = s.checkAttachmentOwner(ctx, req.SenderID, req.AttachmentIDs); err != nil {
			return nil, err
		}
	}

	var repliedTo *string
	if req.RepliedToMessageID != nil && *req.RepliedToMessageID != "" {
		target, err := s.messageRepo.GetByID(ctx, *req.RepliedToMessageID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, errors.WithMessage(ErrMessageNotFound, "reply target")
		}
		repliedTo = req.RepliedToMessageID
	}

	var content *mongo.MessageContent
	if hasText {
		content, err = s.contentBuilder.Build(ctx, text, req.NeedsTranslation)
		if err != nil {
			return nil, err
		}
	}

	attachmentIDs := req.AttachmentIDs
	firstMime := ""
	if len(files) > 0 {
		medias, err := s.attachmentService.UploadAll(ctx, req.SenderID, files)
		if err != nil {
			return nil, err
		}
		attachmentIDs = make([]uint64, 0, len(medias))
		for _, m := range medias {
			attachmentIDs = append(attachmentIDs, m.ID)
		}
		firstMime = medias[0].MimeType
	}

	msg := &mongo.Message{
		ConversationID:     req.ConversationID,
		SenderID:           req.SenderID,
		ReceiverID:         req.ReceiverID,
		Content:            content,
		MessageType:        s.messageTypeOf(ctx, req.MessageType, hasText, firstMime, attachmentIDs),
		Status:             mongo.MessageStatusSent,
		RepliedToMessageID: repliedTo,
		Attachments:        attachmentIDs,
	}
	if err = s.messageRepo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	// 摘要更新失败不回滚消息，下一条消息会覆盖
	if err = s.conversationService.UpdateLastMessage(ctx, msg.ConversationID, msg.Hex(), text); err != nil {
		log.ErrorContext(ctx, "failed to update last message", "conversationId", msg.ConversationID, "messageId", msg.Hex(), "err", err)
	}

	return s.assembler.assembleOne(ctx, msg, true)
}

// checkAttachmentOwner 引用已有附件时，附件必须存在且由发送者上传
func (s *messageServiceImpl) checkAttachmentOwner(ctx context.Context, senderID uint64, ids []uint64) error {
	medias, err := s.attachmentService.Resolve(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint64]struct{}, len(medias))
	for _, m := range medias {
		if m.UploaderID != senderID {
			return errors.WithMessagef(UnauthorizedError, "attachment %d", m.ID)
		}
		found[m.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return errors.WithMessagef(ErrAttachmentNotFound, "attachment %d", id)
		}
	}
	return nil
}

func (s *messageServiceImpl) messageTypeOf(ctx context.Context, requested string, hasText bool, firstMime string, attachmentIDs []uint64) string {
	if requested != "" {
		return requested
	}
	if hasText || len(attachmentIDs) == 0 {
		return mongo.MessageTypeText
	}
	if firstMime == "" {
		medias, err := s.attachmentService.Resolve(ctx, attachmentIDs[:1])
		if err == nil && len(medias) > 0 {
			firstMime = medias[0].MimeType
		}
	}
	return util.MessageTypeOf(firstMime)
}

// FindByID 不存在返回 nil
func (s *messageServiceImpl) FindByID(ctx context.Context, id string) (*dto.MessageDTO, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	return s.assembler.assembleOne(ctx, msg, true)
}

func (s *messageServiceImpl) FindByConversationID(ctx context.Context, convID uint64, page util.Page) (*dto.PageResult[*dto.MessageDTO], error) {
	if convID == 0 {
		return nil, ErrInvalidRequest
	}
	msgs, total, err := s.messageRepo.ListByConversation(ctx, convID, page)
	if err != nil {
		return nil, err
	}
	items, err := s.assembler.assemble(ctx, msgs, true)
	if err != nil {
		return nil, err
	}
	return &dto.PageResult[*dto.MessageDTO]{
		Items:      items,
		TotalItems: total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

// UpdateContent 重新生成正文；若是会话最后一条消息，同步刷新摘要
func (s *messageServiceImpl) UpdateContent(ctx context.Context, id string, text string, needsTranslation bool) (*dto.MessageDTO, error) {
	if id == "" || strings.TrimSpace(text) == "" {
		return nil, ErrInvalidRequest
	}
	if err := checkTextLength(text); err != nil {
		return nil, err
	}
	content, err := s.contentBuilder.Build(ctx, text, needsTranslation)
	if err != nil {
		return nil, err
	}
	msg, err := s.messageRepo.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	conv, err := s.convRepo.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		log.WarnContext(ctx, "failed to load conversation after edit", "conversationId", msg.ConversationID, "err", err)
	} else if conv != nil && conv.LastMessageID != nil && *conv.LastMessageID == msg.Hex() {
		if err = s.conversationService.UpdateLastMessage(ctx, conv.ID, msg.Hex(), text); err != nil {
			log.ErrorContext(ctx, "failed to refresh last message", "conversationId", conv.ID, "err", err)
		}
	}

	return s.assembler.assembleOne(ctx, msg, true)
}

// UpdateDeletionStatus 只切换标记，不影响附件和回复
func (s *messageServiceImpl) UpdateDeletionStatus(ctx context.Context, id string, isDeleted bool) (*dto.MessageDTO, error) {
	if id == "" {
		return nil, ErrInvalidRequest
	}
	msg, err := s.messageRepo.UpdateDeletion(ctx, id, isDeleted)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return s.assembler.assembleOne(ctx, msg, true)
}

func (s *messageServiceImpl) RemoveAttachment(ctx context.Context, mediaID uint64) error {
	if mediaID == 0 {
		return ErrInvalidRequest
	}
	return s.attachmentService.RemoveAttachment(ctx, mediaID)
}

// MarkConversationRead 将会话中发给 reader 的未读消息标记为已读
func (s *messageServiceImpl) MarkConversationRead(ctx context.Context, convID uint64, readerID uint64) (*dto.MessagesReadDTO, error) {
	if convID == 0 || readerID == 0 {
		return nil, ErrInvalidRequest
	}
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasMember(readerID) {
		return nil, UnauthorizedError
	}
	count, err := s.messageRepo.MarkRead(ctx, convID, readerID, time.Now())
	if err != nil {
		return nil, err
	}
	return &dto.MessagesReadDTO{
		ConversationID: convID,
		ReaderID:       readerID,
		PeerID:         conv.PeerOf(readerID),
		Count:          count,
	}, nil
}
