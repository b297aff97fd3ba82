package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/mongo"
	"context"
	log "log/slog"

	"github.com/jinzhu/copier"
)

// messageAssembler 读取时解析附件与被回复消息，解析不到的引用置空
type messageAssembler struct {
	messageRepo mongo.MessageRepo
	attachments AttachmentService
}

func (a *messageAssembler) assemble(ctx context.Context, msgs []*mongo.Message, withReply bool) ([]*dto.MessageDTO, error) {
	res := make([]*dto.MessageDTO, 0, len(msgs))
	if len(msgs) == 0 {
		return res, nil
	}

	mediaIDs := make([]uint64, 0)
	replyIDs := make([]string, 0)
	for _, m := range msgs {
		mediaIDs = append(mediaIDs, m.Attachments...)
		if withReply && m.RepliedToMessageID != nil && *m.RepliedToMessageID != "" {
			replyIDs = append(replyIDs, *m.RepliedToMessageID)
		}
	}

	replies := make(map[string]*mongo.Message)
	if len(replyIDs) > 0 {
		found, err := a.messageRepo.GetByIDs(ctx, replyIDs)
		if err != nil {
			log.WarnContext(ctx, "failed to resolve reply targets", "err", err)
		}
		for _, r := range found {
			replies[r.Hex()] = r
			mediaIDs = append(mediaIDs, r.Attachments...)
		}
	}

	medias, err := a.attachments.Resolve(ctx, mediaIDs)
	if err != nil {
		return nil, err
	}
	mediaMap := make(map[uint64]*dto.MediaDTO, len(medias))
	for _, m := range medias {
		mediaMap[m.ID] = m
	}

	for _, m := range msgs {
		item := toMessageDTO(m, mediaMap)
		if withReply && m.RepliedToMessageID != nil {
			if r, ok := replies[*m.RepliedToMessageID]; ok {
				item.RepliedToMessage = toMessageDTO(r, mediaMap)
			}
		}
		res = append(res, item)
	}
	return res, nil
}

func (a *messageAssembler) assembleOne(ctx context.Context, msg *mongo.Message, withReply bool) (*dto.MessageDTO, error) {
	items, err := a.assemble(ctx, []*mongo.Message{msg}, withReply)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func toMessageDTO(m *mongo.Message, mediaMap map[uint64]*dto.MediaDTO) *dto.MessageDTO {
	item := &dto.MessageDTO{
		ID:                 m.Hex(),
		ConversationID:     m.ConversationID,
		SenderID:           m.SenderID,
		ReceiverID:         m.ReceiverID,
		MessageType:        m.MessageType,
		Status:             m.Status,
		ReadAt:             m.ReadAt,
		RepliedToMessageID: m.RepliedToMessageID,
		Attachments:        make([]*dto.MediaDTO, 0, len(m.Attachments)),
		IsDeleted:          m.IsDeleted,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Content != nil {
		item.Content = &dto.MessageContentDTO{}
		_ = copier.Copy(item.Content, m.Content)
	}
	for _, id := range m.Attachments {
		if media, ok := mediaMap[id]; ok {
			item.Attachments = append(item.Attachments, media)
		}
	}
	return item
}
