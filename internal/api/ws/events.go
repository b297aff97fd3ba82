package ws

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/service"
	"context"
	"slices"

	"github.com/goccy/go-json"
)

// authorize 写操作要求已鉴权，且只能以自己的身份操作；匿名连接只能查询在线状态
func authorize(peer Peer, userID uint64) error {
	if peer.UserID() == 0 || peer.UserID() != userID {
		return service.UnauthorizedError
	}
	return nil
}

func (g *Gateway) checkUserOnlineStatus(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.CheckOnlineStatusPayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if payload.UserIDToCheck == 0 {
		return nil, service.ErrInvalidRequest
	}
	status := &dto.UserStatusDTO{
		UserID:   payload.UserIDToCheck,
		IsOnline: g.registry.IsOnline(ctx, payload.UserIDToCheck),
	}
	_ = peer.Send(EventUserOnlineStatus, status)
	return status, nil
}

func (g *Gateway) sendMessage(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.SendMessagePayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if payload.SenderID == 0 {
		payload.SenderID = peer.UserID()
	}
	if err := authorize(peer, payload.SenderID); err != nil {
		return nil, err
	}

	msg, err := g.messages.CreateMessage(ctx, &dto.CreateMessageReq{
		ConversationID:     payload.ConversationID,
		SenderID:           payload.SenderID,
		ReceiverID:         payload.ReceiverID,
		Text:               payload.Message,
		MessageType:        payload.MessageType,
		RepliedToMessageID: payload.RepliedToMessage,
		AttachmentIDs:      payload.AttachmentIDs,
		NeedsTranslation:   payload.NeedsTranslation,
	}, nil)
	if err != nil {
		return nil, err
	}

	g.dispatcher.ToUsers(ctx, EventNewMessage, msg, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

func (g *Gateway) editMessage(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.EditMessagePayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if payload.MessageID == "" || payload.UpdatedMessage == "" {
		return nil, service.ErrInvalidRequest
	}
	if _, err := g.lookup(ctx, peer, payload.MessageID); err != nil {
		return nil, err
	}

	msg, err := g.messages.UpdateContent(ctx, payload.MessageID, payload.UpdatedMessage, payload.NeedsTranslation)
	if err != nil {
		return nil, err
	}

	g.dispatcher.ToUsers(ctx, EventMessageEdited, msg, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

func (g *Gateway) toggleMessageDeletion(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.ToggleDeletionPayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if payload.MessageID == "" {
		return nil, service.ErrInvalidRequest
	}
	if _, err := g.lookup(ctx, peer, payload.MessageID); err != nil {
		return nil, err
	}

	msg, err := g.messages.UpdateDeletionStatus(ctx, payload.MessageID, payload.IsDeleted)
	if err != nil {
		return nil, err
	}

	g.dispatcher.ToUsers(ctx, EventMessageDeletionToggled, msg, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

func (g *Gateway) deleteAttachment(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.DeleteAttachmentPayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if payload.MessageID == "" || payload.AttachmentID == 0 {
		return nil, service.ErrInvalidRequest
	}
	msg, err := g.lookup(ctx, peer, payload.MessageID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(msg.Attachments, func(m *dto.MediaDTO) bool {
		return m.ID == payload.AttachmentID
	})
	if idx < 0 {
		return nil, service.ErrAttachmentNotFound
	}
	// 附件删除是全局的，只有上传者可以删除
	if err = authorize(peer, msg.Attachments[idx].UploaderID); err != nil {
		return nil, err
	}

	if err = g.messages.RemoveAttachment(ctx, payload.AttachmentID); err != nil {
		return nil, err
	}

	notice := &dto.AttachmentDeletedDTO{MessageID: payload.MessageID, AttachmentID: payload.AttachmentID}
	g.dispatcher.ToUsers(ctx, EventAttachmentDeleted, notice, msg.SenderID, msg.ReceiverID)
	return notice, nil
}

func (g *Gateway) markMessagesRead(ctx context.Context, peer Peer, data json.RawMessage) (any, error) {
	payload := &dto.MarkReadPayload{}
	if err := decode(data, payload); err != nil {
		return nil, err
	}
	if err := authorize(peer, peer.UserID()); err != nil {
		return nil, err
	}

	res, err := g.messages.MarkConversationRead(ctx, payload.ConversationID, peer.UserID())
	if err != nil {
		return nil, err
	}
	if res.Count > 0 {
		g.dispatcher.ToUsers(ctx, EventMessagesRead, res, res.ReaderID, res.PeerID)
	}
	return res, nil
}

// lookup 先确认消息存在，再要求调用方是发送者
func (g *Gateway) lookup(ctx context.Context, peer Peer, messageID string) (*dto.MessageDTO, error) {
	msg, err := g.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, service.ErrMessageNotFound
	}
	if err = authorize(peer, msg.SenderID); err != nil {
		return nil, err
	}
	return msg, nil
}
